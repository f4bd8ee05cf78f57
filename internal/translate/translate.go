package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rivo/uniseg"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/watchsub/watchsub/internal/subs"
)

// Item is one translation unit carrying the context window a grouped
// cue needs (spec §4.9).
type Item struct {
	Cue      *subs.Cue
	CurText  string
	PrevText string
	NextText string
	FullText string
}

// Mode selects how items are batched per call.
type Mode string

const (
	ModeContextAware Mode = "context_aware"
	ModeBulk         Mode = "bulk"
)

// Options configures one translation run (spec §4.9).
type Options struct {
	Mode                 Mode
	SrcLang, DstLang     string
	BatchLines           int
	MaxConcurrent        int
	Retry                int
	IsCJK                bool
	MaxCharsPerLine      int
}

// FailedBatchLog receives the text of any batch that failed the
// line-count invariant, for the per-language translate-failed log
// (spec §4.4/§4.9).
type FailedBatchLog interface {
	LogFailedBatch(items []Item, reason string)
}

// Translator drives the whole pipeline: cache lookup, batching,
// line-count invariant enforcement, and per-item fallback.
type Translator struct {
	model   ChatModel
	cache   *Cache
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewTranslator(model ChatModel, cache *Cache, rps float64, log zerolog.Logger) *Translator {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Translator{model: model, cache: cache, limiter: limiter, log: log}
}

// Translate runs items through cache-then-network translation, honouring
// Options.Mode and fanning batches out across up to Options.MaxConcurrent
// concurrent calls, and writes each item's translation into its Cue.TextDst.
func (t *Translator) Translate(ctx context.Context, items []Item, opt Options, failLog FailedBatchLog) error {
	pending := make([]Item, 0, len(items))
	for _, it := range items {
		key := CacheKey(opt.SrcLang, opt.DstLang, it.CurText)
		if cached, ok := t.cache.Get(key); ok {
			it.Cue.TextDst = cached
			t.cache.Put(key, cached)
			continue
		}
		pending = append(pending, it)
	}

	batchSize := 1
	if opt.Mode == ModeBulk && opt.BatchLines > 0 {
		batchSize = opt.BatchLines
	}

	var batches [][]Item
	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batches = append(batches, pending[start:end])
	}

	maxConcurrent := opt.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	errs := make(chan error, len(batches))

	for _, batch := range batches {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			errs <- ctx.Err()
			continue
		}
		wg.Add(1)
		go func(batch []Item) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := t.translateBatch(ctx, batch, opt, failLog); err != nil {
				errs <- err
			}
		}(batch)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) translateBatch(ctx context.Context, batch []Item, opt Options, failLog FailedBatchLog) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("translate: rate limiter: %w", err)
		}
	}

	prompt, systemPrompt := buildPrompt(batch, opt)
	raw, err := t.model.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return t.fallbackEachIndividually(ctx, batch, opt, failLog, "request error: "+err.Error())
	}

	lines, ok := parseResponse(raw, opt.Mode, len(batch))
	if !ok {
		if failLog != nil {
			failLog.LogFailedBatch(batch, "line-count invariant violated")
		}
		return t.fallbackEachIndividually(ctx, batch, opt, failLog, "line-count mismatch")
	}

	for i, it := range batch {
		it.Cue.TextDst = lines[i]
		t.cache.Put(CacheKey(opt.SrcLang, opt.DstLang, it.CurText), lines[i])
	}
	return nil
}

// fallbackEachIndividually retries each item with a single-item call; on
// repeated failure it falls back to the original source text verbatim
// (spec §4.9).
func (t *Translator) fallbackEachIndividually(ctx context.Context, batch []Item, opt Options, failLog FailedBatchLog, reason string) error {
	for _, it := range batch {
		var translated string
		succeeded := false
		for attempt := 0; attempt <= opt.Retry; attempt++ {
			if t.limiter != nil {
				if err := t.limiter.Wait(ctx); err != nil {
					return fmt.Errorf("translate: rate limiter: %w", err)
				}
			}
			prompt, systemPrompt := buildPrompt([]Item{it}, Options{Mode: ModeContextAware, SrcLang: opt.SrcLang, DstLang: opt.DstLang})
			raw, err := t.model.Complete(ctx, systemPrompt, prompt)
			if err != nil {
				continue
			}
			lines, ok := parseResponse(raw, ModeContextAware, 1)
			if !ok {
				continue
			}
			translated = lines[0]
			succeeded = true
			break
		}
		if !succeeded {
			t.log.Warn().Str("reason", reason).Msg("translation item falling back to source text verbatim")
			translated = it.CurText
		}
		it.Cue.TextDst = translated
		t.cache.Put(CacheKey(opt.SrcLang, opt.DstLang, it.CurText), translated)
	}
	return nil
}

func buildPrompt(batch []Item, opt Options) (prompt, systemPrompt string) {
	systemPrompt = fmt.Sprintf("Translate subtitle lines from %s to %s. Preserve meaning and tone, return only the translation(s).", opt.SrcLang, opt.DstLang)

	if opt.Mode == ModeBulk {
		var b strings.Builder
		for i, it := range batch {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, it.CurText)
		}
		return b.String(), systemPrompt
	}

	it := batch[0]
	var b strings.Builder
	if it.PrevText != "" {
		fmt.Fprintf(&b, "Previous: %s\n", it.PrevText)
	}
	fmt.Fprintf(&b, "Translate: %s\n", it.CurText)
	if it.NextText != "" {
		fmt.Fprintf(&b, "Next: %s\n", it.NextText)
	}
	return b.String(), systemPrompt
}

var bulkLinePrefix = regexp.MustCompile(`^\s*\[(\d+)\]\s*`)

// parseResponse splits raw into one line per expected item, stripping
// [n] prefixes in bulk mode, and enforces the line-count invariant.
func parseResponse(raw string, mode Mode, expected int) ([]string, bool) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	var out []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if mode == ModeBulk {
			if m := bulkLinePrefix.FindStringSubmatchIndex(l); m != nil {
				l = bulkLinePrefix.ReplaceAllString(l, "")
			}
		}
		out = append(out, l)
	}
	if len(out) != expected {
		return nil, false
	}
	return out, true
}

// WrapCJK applies MaxCharsPerLine wrapping to CJK targets by grapheme
// chunking (spec §4.9 post-translation step).
func WrapCJK(text string, maxCharsPerLine int) string {
	if maxCharsPerLine <= 0 {
		return text
	}
	var lines []string
	var cur strings.Builder
	count := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		cur.WriteString(gr.Str())
		count++
		if count >= maxCharsPerLine {
			lines = append(lines, cur.String())
			cur.Reset()
			count = 0
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, "\n")
}
