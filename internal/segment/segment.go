// Package segment turns a recognizer's raw transcript into validated cues
// (spec §4.8): sentence-level emission in "auto" mode, plus a short-cue
// merge pass in "post" mode.
package segment

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/watchsub/watchsub/internal/subs"
)

// Word is one word-level timing entry from a recognizer result, present
// only when the backend supports word timestamps.
type Word struct {
	Text    string
	StartMS int64
	EndMS   int64
}

// Sentence is one recognizer-reported sentence: a text span, its
// boundaries, and optionally the words making it up.
type Sentence struct {
	Text    string
	StartMS int64
	EndMS   int64
	Words   []Word
}

// Options controls the break points and merge thresholds for both modes,
// sourced from configuration (spec §4.8).
type Options struct {
	Mode               string // "auto" or "post"
	IsCJK              bool
	MaxDurationSeconds float64
	MaxChars           int
	MinDurationSeconds float64
	MinChars           int
	MergeGapMs         int64
}

var breakPunctuation = "。！？!?"

// Segment converts sentences into cues per Options.Mode. "auto" emits one
// cue per sentence, or splits by word-group caps when word timings are
// present; "post" additionally merges cues under the min thresholds into
// a neighbour.
func Segment(sentences []Sentence, opt Options) []*subs.Cue {
	var cues []*subs.Cue
	for _, s := range sentences {
		if len(s.Words) == 0 {
			cues = append(cues, &subs.Cue{StartMS: s.StartMS, EndMS: s.EndMS, Text: s.Text})
			continue
		}
		cues = append(cues, splitByWords(s.Words, opt)...)
	}
	for i, c := range cues {
		c.Index = i + 1
	}

	if opt.Mode == "post" {
		cues = mergeShortCues(cues, opt)
	}

	for i, c := range cues {
		c.Index = i + 1
	}
	return cues
}

// splitByWords groups a sentence's words into cues bounded by
// MaxDurationSeconds/MaxChars, breaking eagerly at any break-punctuation
// rune.
func splitByWords(words []Word, opt Options) []*subs.Cue {
	var cues []*subs.Cue
	var cur []Word
	var curText strings.Builder

	flush := func() {
		if len(cur) == 0 {
			return
		}
		cues = append(cues, &subs.Cue{
			StartMS: cur[0].StartMS,
			EndMS:   cur[len(cur)-1].EndMS,
			Text:    strings.TrimSpace(curText.String()),
		})
		cur = nil
		curText.Reset()
	}

	for _, w := range words {
		if len(cur) > 0 {
			dur := float64(w.EndMS-cur[0].StartMS) / 1000.0
			chars := graphemeCount(curText.String()) + graphemeCount(w.Text)
			if dur > opt.MaxDurationSeconds || chars > opt.MaxChars {
				flush()
			}
		}
		if curText.Len() > 0 && !opt.IsCJK {
			curText.WriteByte(' ')
		}
		curText.WriteString(w.Text)
		cur = append(cur, w)

		if endsWithBreak(w.Text) {
			flush()
		}
	}
	flush()
	return cues
}

func endsWithBreak(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	r := []rune(text)
	return strings.ContainsRune(breakPunctuation, r[len(r)-1])
}

func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// mergeShortCues implements the §4.8 "post" short-merge: a cue under the
// min duration or char thresholds is merged forward if the gap allows and
// the combination stays within 1.3x the max caps; otherwise merged
// backward.
func mergeShortCues(cues []*subs.Cue, opt Options) []*subs.Cue {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(cues); i++ {
			c := cues[i]
			dur := float64(c.Duration()) / 1000.0
			chars := graphemeCount(c.Text)
			if dur >= opt.MinDurationSeconds && chars >= opt.MinChars {
				continue
			}
			if i+1 < len(cues) && canMerge(c, cues[i+1], opt) {
				cues = mergeAt(cues, i, i+1, opt.IsCJK)
				changed = true
				break
			}
			if i > 0 && canMerge(cues[i-1], c, opt) {
				cues = mergeAt(cues, i-1, i, opt.IsCJK)
				changed = true
				break
			}
		}
	}
	return cues
}

func canMerge(a, b *subs.Cue, opt Options) bool {
	gap := b.StartMS - a.EndMS
	if gap > opt.MergeGapMs {
		return false
	}
	combinedDur := float64(b.EndMS-a.StartMS) / 1000.0
	combinedChars := graphemeCount(a.Text) + graphemeCount(b.Text)
	return combinedDur <= opt.MaxDurationSeconds*1.3 && float64(combinedChars) <= float64(opt.MaxChars)*1.3
}

func mergeAt(cues []*subs.Cue, i, j int, isCJK bool) []*subs.Cue {
	merged := &subs.Cue{
		StartMS: cues[i].StartMS,
		EndMS:   cues[j].EndMS,
		Text:    mergeText(cues[i].Text, cues[j].Text, isCJK),
	}
	out := make([]*subs.Cue, 0, len(cues)-1)
	out = append(out, cues[:i]...)
	out = append(out, merged)
	out = append(out, cues[j+1:]...)
	return out
}

func mergeText(a, b string, cjk bool) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if cjk {
		return a + b
	}
	return a + " " + b
}
