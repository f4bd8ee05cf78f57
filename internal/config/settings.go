// Package config loads process-wide settings once at bootstrap and derives
// an explicit per-job snapshot, so that no downstream component re-reads
// the environment mid-job.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Settings is the process-wide configuration, populated exactly once by
// InitConfig from flags, environment and an optional YAML file.
type Settings struct {
	WatchDirs         []string `mapstructure:"watch_dirs"`
	WatchRecursive    bool     `mapstructure:"watch_recursive"`
	OutDir            string   `mapstructure:"out_dir"`
	TmpDir            string   `mapstructure:"tmp_dir"`
	OutputToSourceDir bool     `mapstructure:"output_to_source_dir"`
	ScanInterval      time.Duration `mapstructure:"scan_interval"`
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
	TriggerScanFile   string   `mapstructure:"trigger_scan_file"`
	MinBytes          int64    `mapstructure:"min_bytes"`
	VideoExts         []string `mapstructure:"video_exts"`
	SubtitleExts      []string `mapstructure:"subtitle_exts"`

	WorkerConcurrency int `mapstructure:"worker_concurrency"`
	FFmpegConcurrency int `mapstructure:"ffmpeg_concurrency"`
	MaxActiveJobs     int `mapstructure:"max_active_jobs"`

	QueuePriorityEnabled bool `mapstructure:"queue_priority_enabled"`
	QueuePriorityFailed  int  `mapstructure:"queue_priority_failed"`
	QueuePriorityMissing int  `mapstructure:"queue_priority_missing_zh"`
	QueuePriorityDefault int  `mapstructure:"queue_priority_default"`

	ASRMode                               string        `mapstructure:"asr_mode"`
	SegmentMode                           string        `mapstructure:"segment_mode"`
	ASRSampleRate                         int           `mapstructure:"asr_sample_rate"`
	ASRRealtimeChunkSeconds               int           `mapstructure:"asr_realtime_chunk_seconds"`
	ASRRealtimeChunkOverlapMs             int           `mapstructure:"asr_realtime_chunk_overlap_ms"`
	ASRRealtimeRetry                      int           `mapstructure:"asr_realtime_retry"`
	ASRRealtimeChunkMinSeconds            int           `mapstructure:"asr_realtime_chunk_min_seconds"`
	ASRRealtimeChunkMaxSeconds            int           `mapstructure:"asr_realtime_chunk_max_seconds"`
	ASRRealtimeChunkTarget                int           `mapstructure:"asr_realtime_chunk_target"`
	ASRRealtimeFailureRateThreshold       float64       `mapstructure:"asr_realtime_failure_rate_threshold"`
	ASRRealtimeAdaptiveRetry              bool          `mapstructure:"asr_realtime_adaptive_retry"`
	ASRRealtimeStreamingEnabled           bool          `mapstructure:"asr_realtime_streaming_enabled"`
	ASRRealtimeStreamFrameMs              int           `mapstructure:"asr_realtime_stream_frame_ms"`
	ASRRealtimeFallbackEnabled            bool          `mapstructure:"asr_realtime_fallback_enabled"`
	ASRRealtimeFallbackMaxSentenceSilence int           `mapstructure:"asr_realtime_fallback_max_sentence_silence"`
	ASRRealtimeFallbackMultiThreshold     bool          `mapstructure:"asr_realtime_fallback_multi_threshold"`
	ASRFailCooldown                       time.Duration `mapstructure:"asr_fail_cooldown_seconds"`
	ASRMaxFailures                        int           `mapstructure:"asr_max_failures"`
	ASRFailAlert                          bool          `mapstructure:"asr_fail_alert"`
	ASRSemanticPunctuationEnabled         bool          `mapstructure:"asr_semantic_punctuation_enabled"`
	ASRMaxSentenceSilence                 int           `mapstructure:"asr_max_sentence_silence"`
	ASRMultiThresholdModeEnabled          bool          `mapstructure:"asr_multi_threshold_mode_enabled"`
	ASRPunctuationPredictionEnabled       bool          `mapstructure:"asr_punctuation_prediction_enabled"`
	ASRDisfluencyRemovalEnabled           bool          `mapstructure:"asr_disfluency_removal_enabled"`
	ASRHeartbeat                          bool          `mapstructure:"asr_heartbeat"`

	ReplicateAPIToken string   `mapstructure:"replicate_api_token"`
	ASRModel          string   `mapstructure:"asr_model"`
	ASRRealtimeURL    string   `mapstructure:"asr_realtime_url"`
	ASRRealtimeAPIKey string   `mapstructure:"asr_realtime_api_key"`
	LanguageHints     []string `mapstructure:"language_hints"`

	OSSEndpoint        string        `mapstructure:"oss_endpoint"`
	OSSBucket          string        `mapstructure:"oss_bucket"`
	OSSAccessKeyID     string        `mapstructure:"oss_access_key_id"`
	OSSAccessKeySecret string        `mapstructure:"oss_access_key_secret"`
	OSSPrefix          string        `mapstructure:"oss_prefix"`
	OSSURLMode         string        `mapstructure:"oss_url_mode"`
	OSSPresignExpire   time.Duration `mapstructure:"oss_presign_expire"`
	DeleteOSSObject    bool          `mapstructure:"delete_oss_object"`

	SaveRawJSON           bool   `mapstructure:"save_raw_json"`
	MoveDone              bool   `mapstructure:"move_done"`
	DoneDir               string `mapstructure:"done_dir"`
	DeleteSourceAfterDone bool   `mapstructure:"delete_source_after_done"`
	OutputLangSuffix      string `mapstructure:"output_lang_suffix"`

	Translate                  bool     `mapstructure:"translate"`
	UseExistingSubtitle        bool     `mapstructure:"use_existing_subtitle"`
	SimplifiedLang             string   `mapstructure:"simplified_lang"`
	IgnoreSimplifiedSubtitle   bool     `mapstructure:"ignore_simplified_subtitle"`
	SubtitleMode               string   `mapstructure:"subtitle_mode"`
	SubtitlePreferLangsSrc     []string `mapstructure:"subtitle_prefer_langs_src"`
	SubtitlePreferLangsDst     []string `mapstructure:"subtitle_prefer_langs_dst"`
	SubtitleExcludeTitles      []string `mapstructure:"subtitle_exclude_titles"`
	SubtitleIndex              string   `mapstructure:"subtitle_index"`
	SubtitleLang               string   `mapstructure:"subtitle_lang"`
	SubtitleReuseMinConfidence float64  `mapstructure:"subtitle_reuse_min_confidence"`
	SubtitleReuseSampleChars   int      `mapstructure:"subtitle_reuse_sample_chars"`

	AudioPreferLangs   []string `mapstructure:"audio_prefer_langs"`
	AudioExcludeTitles []string `mapstructure:"audio_exclude_titles"`
	AudioIndex         string   `mapstructure:"audio_index"`
	AudioLang          string   `mapstructure:"audio_lang"`

	MetadataEnabled             bool          `mapstructure:"metadata_enabled"`
	MetadataLanguagePriority    []string      `mapstructure:"metadata_language_priority"`
	MetadataMinConfidence       float64       `mapstructure:"metadata_min_confidence"`
	MetadataCacheTTL            time.Duration `mapstructure:"metadata_cache_ttl"`
	MetadataDebug               bool          `mapstructure:"metadata_debug"`
	MetadataMinTitleSimilarity  float64       `mapstructure:"metadata_min_title_similarity"`
	TitleAliasesPath            string        `mapstructure:"title_aliases_path"`
	LLMTitleAliasEnabled        bool          `mapstructure:"llm_title_alias_enabled"`
	WorkGlossaryDir             string        `mapstructure:"work_glossary_dir"`
	WorkGlossaryEnabled         bool          `mapstructure:"work_glossary_enabled"`

	ASRHotwordsEnabled         bool     `mapstructure:"asr_hotwords_enabled"`
	ASRHotwordsMax             int      `mapstructure:"asr_hotwords_max"`
	ASRHotwordsLangs           []string `mapstructure:"asr_hotwords_langs"`
	ASRHotwordsParam           string   `mapstructure:"asr_hotwords_param"`
	ASRHotwordsUseGlossary     bool     `mapstructure:"asr_hotwords_use_glossary"`
	ASRHotwordsUseMetadata     bool     `mapstructure:"asr_hotwords_use_metadata"`
	ASRHotwordsUseTitleAliases bool     `mapstructure:"asr_hotwords_use_title_aliases"`
	ASRHotwordsMode            string   `mapstructure:"asr_hotwords_mode"`
	ASRHotwordsWeight          int      `mapstructure:"asr_hotwords_weight"`
	ASRHotwordsPrefix          string   `mapstructure:"asr_hotwords_prefix"`
	ASRHotwordsTargetModel     string   `mapstructure:"asr_hotwords_target_model"`
	ASRHotwordsAllowMixed      bool     `mapstructure:"asr_hotwords_allow_mixed"`

	TMDBEnabled    bool   `mapstructure:"tmdb_enabled"`
	TMDBAPIKey     string `mapstructure:"tmdb_api_key"`
	TMDBBaseURL    string `mapstructure:"tmdb_base_url"`
	BangumiEnabled bool   `mapstructure:"bangumi_enabled"`
	BangumiToken   string `mapstructure:"bangumi_access_token"`
	BangumiUA      string `mapstructure:"bangumi_user_agent"`
	BangumiBaseURL string `mapstructure:"bangumi_base_url"`
	WMDBEnabled    bool   `mapstructure:"wmdb_enabled"`
	WMDBBaseURL    string `mapstructure:"wmdb_base_url"`

	ProviderWeightTMDB    float64 `mapstructure:"provider_weight_tmdb"`
	ProviderWeightBangumi float64 `mapstructure:"provider_weight_bangumi"`
	ProviderWeightWMDB    float64 `mapstructure:"provider_weight_wmdb"`

	SrcLang  string   `mapstructure:"src_lang"`
	DstLang  string   `mapstructure:"dst_lang"`
	DstLangs []string `mapstructure:"dst_langs"`

	LLMBaseURL       string  `mapstructure:"llm_base_url"`
	LLMAPIKey        string  `mapstructure:"llm_api_key"`
	LLMModel         string  `mapstructure:"llm_model"`
	LLMTemperature   float64 `mapstructure:"llm_temperature"`
	LLMMaxTokens     int     `mapstructure:"llm_max_tokens"`
	OpenRouterAPIKey string  `mapstructure:"openrouter_api_key"`

	BatchLines                  int     `mapstructure:"batch_lines"`
	MaxConcurrentTranslations   int     `mapstructure:"max_concurrent_translations"`
	TranslateRetry              int     `mapstructure:"translate_retry"`
	MaxCharsPerLine             int     `mapstructure:"max_chars_per_line"`
	Bilingual                   bool    `mapstructure:"bilingual"`
	BilingualOrder              string  `mapstructure:"bilingual_order"`
	BilingualLang               string  `mapstructure:"bilingual_lang"`
	UsePolish                   bool    `mapstructure:"use_polish"`
	PolishBatchSize             int     `mapstructure:"polish_batch_size"`
	GlossaryPath                string  `mapstructure:"glossary_path"`
	GlossaryConfidenceThreshold float64 `mapstructure:"glossary_confidence_threshold"`
	MinTranslateDuration        float64 `mapstructure:"min_translate_duration"`

	ASRMaxDurationSeconds float64 `mapstructure:"asr_max_duration_seconds"`
	ASRMaxChars           int     `mapstructure:"asr_max_chars"`
	ASRMinDurationSeconds float64 `mapstructure:"asr_min_duration_seconds"`
	ASRMinChars           int     `mapstructure:"asr_min_chars"`
	ASRMergeGapMs         int     `mapstructure:"asr_merge_gap_ms"`
	GroupingEnabled       bool    `mapstructure:"grouping_enabled"`
	ContextAwareEnabled   bool    `mapstructure:"context_aware_enabled"`

	NFOEnabled      bool `mapstructure:"nfo_enabled"`
	NFOSameNameOnly bool `mapstructure:"nfo_same_name_only"`

	LogDir        string `mapstructure:"log_dir"`
	LogFileName   string `mapstructure:"log_file_name"`
	LogMaxBytes   int64  `mapstructure:"log_max_bytes"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	CacheDir string `mapstructure:"cache_dir"`
	CacheDB  string `mapstructure:"cache_db"`

	EvalCollect    bool    `mapstructure:"eval_collect"`
	EvalOutputDir  string  `mapstructure:"eval_output_dir"`
	EvalSampleRate float64 `mapstructure:"eval_sample_rate"`

	ManualMetadataDir string `mapstructure:"manual_metadata_dir"`

	SRTValidate bool `mapstructure:"srt_validate"`
	SRTAutoFix  bool `mapstructure:"srt_auto_fix"`

	LLMRPS      float64 `mapstructure:"llm_rps"`
	ASRRPS      float64 `mapstructure:"asr_rps"`
	MetadataRPS float64 `mapstructure:"metadata_rps"`
}

func getConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, "watchsub")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// InitConfig loads Settings from customPath when one is given, otherwise
// from $XDG_CONFIG_HOME/watchsub/config.yaml (a missing file is not an
// error), overlaid by environment variables, applying the original
// worker's defaults for every tunable. It is called
// exactly once at process bootstrap; nothing downstream touches
// os.Getenv again.
func InitConfig(customPath string) (*Settings, error) {
	v := viper.New()
	if customPath != "" {
		v.SetConfigFile(customPath)
	} else {
		configPath, err := getConfigPath()
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
	}
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if watchDirsRaw := v.GetString("watch_dirs"); watchDirsRaw != "" {
		s.WatchDirs = splitCSV(watchDirsRaw)
	} else if len(s.WatchDirs) == 0 {
		s.WatchDirs = splitCSV(v.GetString("watch_dir"))
	}
	if s.CacheDir == "" {
		s.CacheDir = filepath.Join(s.OutDir, "cache")
	}
	if s.CacheDB == "" {
		s.CacheDB = filepath.Join(s.CacheDir, "translate_cache.db")
	}

	s.WorkerConcurrency = clampPositive(s.WorkerConcurrency, 1)
	s.FFmpegConcurrency = clampPositive(s.FFmpegConcurrency, 1)
	s.MaxActiveJobs = clampPositive(s.MaxActiveJobs, s.WorkerConcurrency)
	s.ASRSampleRate = clampPositive(s.ASRSampleRate, 16000)
	s.ASRRealtimeChunkSeconds = clampPositive(s.ASRRealtimeChunkSeconds, 900)
	s.ASRRealtimeRetry = clampPositive(s.ASRRealtimeRetry, 2)
	s.ASRRealtimeChunkMinSeconds = clampPositive(s.ASRRealtimeChunkMinSeconds, 300)
	s.ASRRealtimeChunkMaxSeconds = clampPositive(s.ASRRealtimeChunkMaxSeconds, 900)
	s.ASRRealtimeChunkTarget = clampPositive(s.ASRRealtimeChunkTarget, 12)

	return &s, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clampPositive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("watch_dir", "/watch")
	v.SetDefault("watch_dirs", "")
	v.SetDefault("watch_recursive", true)
	v.SetDefault("out_dir", "/output")
	v.SetDefault("tmp_dir", os.TempDir())
	v.SetDefault("output_to_source_dir", true)
	v.SetDefault("scan_interval", 300*time.Second)
	v.SetDefault("lock_ttl", 7200*time.Second)
	v.SetDefault("trigger_scan_file", ".scan_now")
	v.SetDefault("min_bytes", int64(1*1024*1024))
	v.SetDefault("video_exts", []string{".mp4", ".mkv", ".webm", ".mov", ".avi"})
	v.SetDefault("subtitle_exts", []string{".srt", ".ass", ".ssa", ".vtt"})

	v.SetDefault("worker_concurrency", 1)
	v.SetDefault("ffmpeg_concurrency", 1)
	v.SetDefault("max_active_jobs", 1)

	v.SetDefault("queue_priority_enabled", true)
	v.SetDefault("queue_priority_failed", 0)
	v.SetDefault("queue_priority_missing_zh", 1)
	v.SetDefault("queue_priority_default", 5)

	v.SetDefault("asr_mode", "offline")
	v.SetDefault("segment_mode", "post")
	v.SetDefault("asr_sample_rate", 16000)
	v.SetDefault("asr_realtime_chunk_seconds", 900)
	v.SetDefault("asr_realtime_chunk_overlap_ms", 500)
	v.SetDefault("asr_realtime_retry", 2)
	v.SetDefault("asr_realtime_chunk_min_seconds", 300)
	v.SetDefault("asr_realtime_chunk_max_seconds", 900)
	v.SetDefault("asr_realtime_chunk_target", 12)
	v.SetDefault("asr_realtime_failure_rate_threshold", 0.3)
	v.SetDefault("asr_realtime_adaptive_retry", true)
	v.SetDefault("asr_realtime_streaming_enabled", false)
	v.SetDefault("asr_realtime_stream_frame_ms", 100)
	v.SetDefault("asr_realtime_fallback_enabled", true)
	v.SetDefault("asr_realtime_fallback_max_sentence_silence", 1200)
	v.SetDefault("asr_realtime_fallback_multi_threshold", true)
	v.SetDefault("asr_fail_cooldown_seconds", 3600*time.Second)
	v.SetDefault("asr_max_failures", 3)
	v.SetDefault("asr_fail_alert", true)
	v.SetDefault("asr_semantic_punctuation_enabled", false)
	v.SetDefault("asr_max_sentence_silence", 800)
	v.SetDefault("asr_multi_threshold_mode_enabled", false)
	v.SetDefault("asr_punctuation_prediction_enabled", true)
	v.SetDefault("asr_disfluency_removal_enabled", false)
	v.SetDefault("asr_heartbeat", false)

	v.SetDefault("replicate_api_token", "")
	v.SetDefault("asr_model", "paraformer-v2")
	v.SetDefault("asr_realtime_url", "")
	v.SetDefault("asr_realtime_api_key", "")
	v.SetDefault("language_hints", []string{"ja", "en"})

	v.SetDefault("oss_endpoint", "")
	v.SetDefault("oss_bucket", "")
	v.SetDefault("oss_access_key_id", "")
	v.SetDefault("oss_access_key_secret", "")
	v.SetDefault("oss_prefix", "subtitle-audio/")
	v.SetDefault("oss_url_mode", "presign")
	v.SetDefault("oss_presign_expire", 86400*time.Second)
	v.SetDefault("delete_oss_object", false)

	v.SetDefault("save_raw_json", false)
	v.SetDefault("move_done", false)
	v.SetDefault("done_dir", "/watch/done")
	v.SetDefault("delete_source_after_done", false)
	v.SetDefault("output_lang_suffix", "")

	v.SetDefault("translate", true)
	v.SetDefault("use_existing_subtitle", true)
	v.SetDefault("simplified_lang", "zh")
	v.SetDefault("ignore_simplified_subtitle", false)
	v.SetDefault("subtitle_mode", "reuse_if_good")
	v.SetDefault("subtitle_prefer_langs_src", []string{"jpn", "ja"})
	v.SetDefault("subtitle_prefer_langs_dst", []string{"chi", "zh", "zh-hans"})
	v.SetDefault("subtitle_exclude_titles", []string{"sign", "song", "karaoke"})
	v.SetDefault("subtitle_index", "")
	v.SetDefault("subtitle_lang", "")
	v.SetDefault("subtitle_reuse_min_confidence", 0.35)
	v.SetDefault("subtitle_reuse_sample_chars", 2000)

	v.SetDefault("audio_prefer_langs", []string{"jpn", "ja", "eng", "en"})
	v.SetDefault("audio_exclude_titles", []string{"commentary", "コメンタリー"})
	v.SetDefault("audio_index", "")
	v.SetDefault("audio_lang", "")

	v.SetDefault("metadata_enabled", false)
	v.SetDefault("metadata_language_priority", []string{"ja-JP", "zh-CN", "en-US"})
	v.SetDefault("metadata_min_confidence", 0.5)
	v.SetDefault("metadata_cache_ttl", 86400*time.Second)
	v.SetDefault("metadata_debug", false)
	v.SetDefault("metadata_min_title_similarity", 0.6)
	v.SetDefault("title_aliases_path", "")
	v.SetDefault("llm_title_alias_enabled", true)
	v.SetDefault("work_glossary_dir", "glossary")
	v.SetDefault("work_glossary_enabled", true)

	v.SetDefault("asr_hotwords_enabled", false)
	v.SetDefault("asr_hotwords_max", 50)
	v.SetDefault("asr_hotwords_langs", []string{"ja", "jpn", "en", "eng", "zh", "chi"})
	v.SetDefault("asr_hotwords_param", "hot_words")
	v.SetDefault("asr_hotwords_use_glossary", true)
	v.SetDefault("asr_hotwords_use_metadata", true)
	v.SetDefault("asr_hotwords_use_title_aliases", true)
	v.SetDefault("asr_hotwords_mode", "vocabulary")
	v.SetDefault("asr_hotwords_weight", 4)
	v.SetDefault("asr_hotwords_prefix", "autosub")
	v.SetDefault("asr_hotwords_target_model", "")
	v.SetDefault("asr_hotwords_allow_mixed", false)

	v.SetDefault("tmdb_enabled", true)
	v.SetDefault("tmdb_api_key", "")
	v.SetDefault("tmdb_base_url", "https://api.themoviedb.org/3")
	v.SetDefault("bangumi_enabled", true)
	v.SetDefault("bangumi_access_token", "")
	v.SetDefault("bangumi_user_agent", "watchsub/1.0")
	v.SetDefault("bangumi_base_url", "https://api.bgm.tv")
	v.SetDefault("wmdb_enabled", false)
	v.SetDefault("wmdb_base_url", "https://api.wmdb.tv")

	v.SetDefault("provider_weight_tmdb", 1.0)
	v.SetDefault("provider_weight_bangumi", 0.8)
	v.SetDefault("provider_weight_wmdb", 0.5)

	v.SetDefault("src_lang", "auto")
	v.SetDefault("dst_lang", "zh")
	v.SetDefault("dst_langs", []string{})

	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_model", "deepseek-v3.2")
	v.SetDefault("llm_temperature", 0.2)
	v.SetDefault("llm_max_tokens", 1024)
	v.SetDefault("openrouter_api_key", "")

	v.SetDefault("batch_lines", 10)
	v.SetDefault("max_concurrent_translations", 2)
	v.SetDefault("translate_retry", 3)
	v.SetDefault("max_chars_per_line", 20)
	v.SetDefault("bilingual", false)
	v.SetDefault("bilingual_order", "raw_first")
	v.SetDefault("bilingual_lang", "")
	v.SetDefault("use_polish", false)
	v.SetDefault("polish_batch_size", 80)
	v.SetDefault("glossary_path", "")
	v.SetDefault("glossary_confidence_threshold", 0.75)
	v.SetDefault("min_translate_duration", 60.0)

	v.SetDefault("asr_max_duration_seconds", 3.5)
	v.SetDefault("asr_max_chars", 25)
	v.SetDefault("asr_min_duration_seconds", 1.0)
	v.SetDefault("asr_min_chars", 6)
	v.SetDefault("asr_merge_gap_ms", 400)
	v.SetDefault("grouping_enabled", true)
	v.SetDefault("context_aware_enabled", true)

	v.SetDefault("nfo_enabled", false)
	v.SetDefault("nfo_same_name_only", true)

	v.SetDefault("log_dir", "")
	v.SetDefault("log_file_name", "worker.log")
	v.SetDefault("log_max_bytes", int64(10*1024*1024))
	v.SetDefault("log_max_backups", 5)

	v.SetDefault("cache_dir", "")
	v.SetDefault("cache_db", "")

	v.SetDefault("eval_collect", false)
	v.SetDefault("eval_output_dir", "eval")
	v.SetDefault("eval_sample_rate", 1.0)

	v.SetDefault("manual_metadata_dir", "metadata")

	v.SetDefault("srt_validate", true)
	v.SetDefault("srt_auto_fix", true)

	v.SetDefault("llm_rps", 0.0)
	v.SetDefault("asr_rps", 0.0)
	v.SetDefault("metadata_rps", 0.0)
}
