package config

// JobConfig is an immutable snapshot of Settings taken once when a path is
// admitted into the pipeline. Every stage receives a pointer to this
// per-job copy instead of touching process-wide Settings or
// the environment again, so a chunk-size decision made mid-job can never
// observe a configuration change applied after admission.
type JobConfig struct {
	Settings

	// Path is the admitted video file this snapshot governs.
	Path string

	// Overrides merged from N.job.json at admission time; see
	// internal/jobstate.Overrides.
	ASRModeOverride       string
	SegmentModeOverride   string
	IgnoreSimplifiedSub   bool
	UseExistingSubtitle   bool
	ForceOnce             bool
	ForceASR              bool
	ForceTranslate        bool
}

// Snapshot copies Settings into a new JobConfig for path. Overrides, if
// any, are applied by the caller via jobstate.ApplyOverrides after reading
// N.job.json — Snapshot itself performs no I/O.
func (s *Settings) Snapshot(path string) *JobConfig {
	cfg := *s
	return &JobConfig{
		Settings:            cfg,
		Path:                path,
		UseExistingSubtitle: s.UseExistingSubtitle,
		IgnoreSimplifiedSub: s.IgnoreSimplifiedSubtitle,
	}
}

// EffectiveASRMode resolves offline/realtime/auto: a per-job override wins
// over ASRMode, and any mode other than "auto" is returned unchanged.
// "auto" becomes "realtime" when ASRRealtimeStreamingEnabled is set and
// "offline" otherwise; the model name is not consulted.
func (c *JobConfig) EffectiveASRMode() string {
	mode := c.ASRMode
	if c.ASRModeOverride != "" {
		mode = c.ASRModeOverride
	}
	if mode != "auto" {
		return mode
	}
	if c.ASRRealtimeStreamingEnabled {
		return "realtime"
	}
	return "offline"
}

// EffectiveSegmentMode applies any per-job override over the configured
// default.
func (c *JobConfig) EffectiveSegmentMode() string {
	if c.SegmentModeOverride != "" {
		return c.SegmentModeOverride
	}
	return c.SegmentMode
}
