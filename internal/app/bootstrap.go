// Package app wires the concrete ASR recognizer, translation model and
// metadata resolver chosen from a Settings snapshot into a
// jobstate.Pipeline, the single place bootstrap (spec §4.4's opening
// paragraph) constructs the per-process collaborators cmd/watch.go and
// cmd/run.go share.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/watchsub/watchsub/internal/asr"
	"github.com/watchsub/watchsub/internal/config"
	"github.com/watchsub/watchsub/internal/jobstate"
	"github.com/watchsub/watchsub/internal/media"
	"github.com/watchsub/watchsub/internal/metadata"
	"github.com/watchsub/watchsub/internal/queue"
	"github.com/watchsub/watchsub/internal/segment"
	"github.com/watchsub/watchsub/internal/subs"
	"github.com/watchsub/watchsub/internal/translate"
)

// App bundles every per-process singleton a job needs.
type App struct {
	Settings  *config.Settings
	Pipeline  *jobstate.Pipeline
	Log       zerolog.Logger
	JobSem    *queue.Semaphore
	FFmpegSem *queue.Semaphore
}

// Build constructs every collaborator named in Settings: the ASR
// recognizer (offline via Replicate or realtime via websocket, per
// EffectiveASRMode), the translation model (OpenRouter or any
// OpenAI-compatible endpoint), the SQLite translation cache, and the
// weighted metadata providers, then assembles the pipeline orchestrator.
func Build(settings *config.Settings, log zerolog.Logger) (*App, error) {
	probe := media.NewMediaProbe(log)

	recognizer, err := buildRecognizer(settings, log)
	if err != nil {
		return nil, fmt.Errorf("app: build recognizer: %w", err)
	}

	var store asr.ObjectStore
	if settings.OSSEndpoint != "" {
		s3store, err := asr.NewS3ObjectStore(context.Background(), settings.OSSEndpoint, "auto",
			settings.OSSAccessKeyID, settings.OSSAccessKeySecret, settings.OSSBucket, settings.OSSPrefix,
			settings.OSSPresignExpire)
		if err != nil {
			log.Warn().Err(err).Msg("app: object store unavailable, offline ASR upload will fail")
		} else {
			store = s3store
		}
	}

	model := buildChatModel(settings)
	var cache *translate.Cache
	if settings.CacheDB != "" {
		cachePath := settings.CacheDB
		if filepath.Dir(cachePath) == "." {
			cachePath = filepath.Join(settings.CacheDir, cachePath)
		}
		cache, err = translate.OpenCache(cachePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("app: translation cache unavailable, proceeding uncached")
		}
	}
	translator := translate.NewTranslator(model, cache, settings.LLMRPS, log)

	resolver := buildMetadataResolver(settings)

	jobSem := queue.NewSemaphore(maxOr1(settings.MaxActiveJobs))
	ffmpegSem := queue.NewSemaphore(maxOr1(settings.FFmpegConcurrency))
	queue.InstallFFmpegGate(ffmpegSem)

	pipeline := &jobstate.Pipeline{
		Probe: probe,
		Recognize: func(ctx context.Context, cfg *config.JobConfig, audioPath string, track media.AudioTrack) ([]*subs.Cue, error) {
			return recognize(ctx, recognizer, store, resolver, cfg, audioPath, track, log)
		},
		Translate: func(ctx context.Context, cfg *config.JobConfig, cues []*subs.Cue) (map[string]string, error) {
			return translateAll(ctx, translator, model, cfg, cues, log)
		},
		Log: log,
	}

	return &App{Settings: settings, Pipeline: pipeline, Log: log, JobSem: jobSem, FFmpegSem: ffmpegSem}, nil
}

func maxOr1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func buildRecognizer(settings *config.Settings, log zerolog.Logger) (asr.Recognizer, error) {
	mode := settings.ASRMode
	if mode == "" || mode == "auto" {
		if settings.ASRRealtimeStreamingEnabled {
			mode = "realtime"
		} else {
			mode = "offline"
		}
	}
	if mode == "realtime" {
		return asr.NewWebsocketRecognizer(settings.ASRRealtimeURL, settings.ASRRealtimeAPIKey, log), nil
	}
	owner, name := splitModelRef(settings.ASRModel)
	return asr.NewReplicateRecognizer(settings.ReplicateAPIToken, owner, name, log)
}

func splitModelRef(ref string) (owner, name string) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == '/' {
			return ref[:i], ref[i+1:]
		}
	}
	return "", ref
}

func buildChatModel(settings *config.Settings) translate.ChatModel {
	if settings.OpenRouterAPIKey != "" {
		return translate.NewOpenRouterModel(settings.OpenRouterAPIKey, settings.LLMModel)
	}
	return translate.NewOpenAICompatModel(settings.LLMBaseURL, settings.LLMAPIKey, settings.LLMModel, settings.LLMTemperature, int64(settings.LLMMaxTokens))
}

func buildMetadataResolver(settings *config.Settings) *metadata.Resolver {
	var providers []metadata.Provider
	if settings.TMDBEnabled {
		providers = append(providers, metadata.NewTMDBProvider(settings.TMDBAPIKey, settings.TMDBBaseURL, settings.MetadataMinTitleSimilarity))
	}
	if settings.BangumiEnabled {
		providers = append(providers, metadata.NewBangumiProvider(settings.BangumiBaseURL, settings.MetadataMinTitleSimilarity))
	}
	if settings.WMDBEnabled {
		providers = append(providers, metadata.NewWMDBProvider(settings.WMDBBaseURL, settings.MetadataMinTitleSimilarity))
	}
	return metadata.NewResolver(providers, settings.MetadataCacheTTL, settings.MetadataMinConfidence)
}

func recognize(ctx context.Context, rec asr.Recognizer, store asr.ObjectStore, resolver *metadata.Resolver, cfg *config.JobConfig, audioPath string, track media.AudioTrack, log zerolog.Logger) ([]*subs.Cue, error) {
	opt := asr.Options{
		LanguageHints:       cfg.LanguageHints,
		SemanticPunctuation: cfg.ASRSemanticPunctuationEnabled,
		MaxSilenceMs:        cfg.ASRMaxSentenceSilence,
		MultiThreshold:      cfg.ASRMultiThresholdModeEnabled,
	}

	mode := cfg.EffectiveASRMode()

	hotwords := buildHotwordsFor(ctx, resolver, cfg)
	cleanupHotwords := resolveHotwordOptions(ctx, rec, cfg, hotwords, mode, &opt, log)
	defer cleanupHotwords()

	var sentences []segment.Sentence
	var err error
	if mode == "realtime" {
		duration, derr := media.ProbeDuration(cfg.Path)
		if derr != nil {
			return nil, derr
		}
		rtCfg := asr.RealtimeConfig{
			ChunkMinSeconds:      cfg.ASRRealtimeChunkMinSeconds,
			ChunkMaxSeconds:      cfg.ASRRealtimeChunkMaxSeconds,
			ChunkTargetCount:     cfg.ASRRealtimeChunkTarget,
			OverlapMs:            cfg.ASRRealtimeChunkOverlapMs,
			PerChunkRetry:        cfg.ASRRealtimeRetry,
			FailureRateThreshold: cfg.ASRRealtimeFailureRateThreshold,
			AdaptiveRetry:        cfg.ASRRealtimeAdaptiveRetry,
			SampleRate:           cfg.ASRSampleRate,
		}
		sentences, err = asr.RunRealtime(ctx, rec, cfg.Path, track.Index, time.Duration(duration*float64(time.Second)), rtCfg, opt, cfg.TmpDir, log)
	} else {
		if store == nil {
			return nil, fmt.Errorf("app: offline ASR requires an object store (OSS_ENDPOINT unset)")
		}
		key, uerr := store.Put(ctx, audioPath)
		if uerr != nil {
			return nil, fmt.Errorf("app: upload audio: %w", uerr)
		}
		if cfg.DeleteOSSObject {
			defer func() { _ = store.Delete(ctx, key) }()
		}
		audioURL, uerr := store.URL(ctx, key)
		if uerr != nil {
			return nil, fmt.Errorf("app: sign audio URL: %w", uerr)
		}
		result, terr := rec.TranscribeOffline(ctx, audioURL, opt)
		if terr != nil {
			return nil, terr
		}
		sentences = result.Sentences
	}
	if err != nil {
		return nil, err
	}

	segOpt := segment.Options{
		Mode:               cfg.EffectiveSegmentMode(),
		IsCJK:              isCJKLang(cfg.SrcLang),
		MaxDurationSeconds: cfg.ASRMaxDurationSeconds,
		MaxChars:           cfg.ASRMaxChars,
		MinDurationSeconds: cfg.ASRMinDurationSeconds,
		MinChars:           cfg.ASRMinChars,
		MergeGapMs:         cfg.ASRMergeGapMs,
	}
	return segment.Segment(sentences, segOpt), nil
}

// resolveHotwordOptions dispatches a resolved hotword list onto opt per
// cfg.ASRHotwordsMode (spec §4.7): vocabulary mode registers the words
// up front and hands back a cleanup func the caller must defer so the
// vocabulary is deleted once the job finishes regardless of outcome;
// param mode attaches the words directly to the call, except in
// realtime mode, which does not support per-call hotwords and instead
// warns and proceeds without them. The returned func is a no-op when
// nothing was registered.
func resolveHotwordOptions(ctx context.Context, rec asr.Recognizer, cfg *config.JobConfig, hotwords []asr.Hotword, mode string, opt *asr.Options, log zerolog.Logger) func() {
	noop := func() {}
	if len(hotwords) == 0 {
		return noop
	}
	switch cfg.ASRHotwordsMode {
	case "param":
		if mode == "realtime" {
			log.Warn().Msg("asr: param-mode hotwords are not supported by realtime streaming, ignoring")
			return noop
		}
		opt.Hotwords = hotwords
		return noop
	case "vocabulary", "":
		vocabID, err := rec.CreateVocabulary(ctx, hotwords, cfg.ASRHotwordsTargetModel)
		if err != nil {
			log.Warn().Err(err).Msg("asr: hotword vocabulary registration failed, continuing without hotwords")
			return noop
		}
		opt.VocabularyID = vocabID
		return func() {
			if err := rec.DeleteVocabulary(ctx, vocabID); err != nil {
				log.Warn().Err(err).Str("vocabulary_id", vocabID).Msg("asr: hotword vocabulary cleanup failed")
			}
		}
	default:
		log.Warn().Str("mode", cfg.ASRHotwordsMode).Msg("asr: unrecognized hotwords mode, ignoring hotwords")
		return noop
	}
}

// buildHotwordsFor resolves metadata for the job's title guess (the
// video's basename, absent a richer title source at this stage) and
// turns its localized titles and characters into an ASR hotword list
// (spec §4.7). A resolver failure degrades to an empty list rather than
// aborting recognition.
func buildHotwordsFor(ctx context.Context, resolver *metadata.Resolver, cfg *config.JobConfig) []asr.Hotword {
	if resolver == nil || !cfg.ASRHotwordsEnabled {
		return nil
	}
	base := trimExt(filepath.Base(cfg.Path))
	md, err := resolver.Resolve(ctx, cfg.Path, metadata.Query{
		Titles:       []string{base},
		LangPriority: cfg.MetadataLanguagePriority,
	})
	if err != nil || md == nil {
		return nil
	}
	titles := make([]string, 0, len(md.LocalizedTitles)+1)
	if md.OriginalTitle != "" {
		titles = append(titles, md.OriginalTitle)
	}
	for _, t := range md.LocalizedTitles {
		titles = append(titles, t)
	}
	return asr.BuildHotwords(titles, nil, md.Characters, cfg.SrcLang, cfg.ASRHotwordsMax)
}

func isCJKLang(lang string) bool {
	switch lang {
	case "zh", "ja", "ko":
		return true
	default:
		return false
	}
}

func translateAll(ctx context.Context, tr *translate.Translator, model translate.ChatModel, cfg *config.JobConfig, cues []*subs.Cue, log zerolog.Logger) (map[string]string, error) {
	dstLangs := cfg.DstLangs
	if len(dstLangs) == 0 && cfg.DstLang != "" {
		dstLangs = []string{cfg.DstLang}
	}

	out := make(map[string]string, len(dstLangs))
	dir := filepath.Dir(cfg.Path)
	base := trimExt(filepath.Base(cfg.Path))

	for _, dst := range dstLangs {
		items := make([]translate.Item, len(cues))
		for i, c := range cues {
			items[i] = translate.Item{Cue: c, CurText: c.Text}
			if i > 0 {
				items[i].PrevText = cues[i-1].Text
			}
			if i+1 < len(cues) {
				items[i].NextText = cues[i+1].Text
			}
		}

		mode := translate.ModeContextAware
		if !cfg.ContextAwareEnabled {
			mode = translate.ModeBulk
		}
		opt := translate.Options{
			Mode:            mode,
			SrcLang:         cfg.SrcLang,
			DstLang:         dst,
			BatchLines:      cfg.BatchLines,
			MaxConcurrent:   cfg.MaxConcurrentTranslations,
			Retry:           cfg.TranslateRetry,
			IsCJK:           isCJKLang(dst),
			MaxCharsPerLine: cfg.MaxCharsPerLine,
		}

		failLog := translateFailLogger{dir: dir, base: base, lang: dst}
		if err := tr.Translate(ctx, items, opt, failLog); err != nil {
			return nil, err
		}

		if cfg.UsePolish {
			_ = translate.Polish(ctx, model, cues, dst, cfg.PolishBatchSize)
		}

		if isCJKLang(dst) {
			for _, c := range cues {
				c.TextDst = translate.WrapCJK(c.TextDst, cfg.MaxCharsPerLine)
			}
		}

		validated, issues := subs.Validate(cues)
		for _, issue := range issues {
			log.Warn().Str("lang", dst).Str("issue", issue).Msg("subtitle structural anomaly repaired post-translation")
		}
		cues = validated

		path := filepath.Join(dir, base+"."+dst+".srt")
		if err := subs.WriteSRT(path, cues); err != nil {
			return nil, err
		}
		out[dst] = path

		if cfg.Bilingual {
			biPath := filepath.Join(dir, base+".bi.srt")
			if err := subs.WriteBilingualSRT(biPath, cues, cfg.BilingualOrder); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func trimExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}

type translateFailLogger struct {
	dir, base, lang string
}

func (l translateFailLogger) LogFailedBatch(items []translate.Item, reason string) {
	_ = jobstate.AppendTranslateFailedLog(l.dir, l.base, l.lang, reason)
}
