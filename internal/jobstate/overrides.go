package jobstate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/watchsub/watchsub/internal/config"
)

// Overrides mirrors the recognised keys of N.job.json (spec §6).
type Overrides struct {
	ASRMode                  string `json:"asr_mode"`
	SegmentMode              string `json:"segment_mode"`
	IgnoreSimplifiedSubtitle bool   `json:"ignore_simplified_subtitle"`
	UseExistingSubtitle      bool   `json:"use_existing_subtitle"`
	ForceOnce                bool   `json:"force_once"`
	ForceASR                 bool   `json:"force_asr"`
	ForceTranslate           bool   `json:"force_translate"`
}

// LoadOverrides reads N.job.json if present; a missing file is not an
// error, just the zero-value Overrides.
func LoadOverrides(dir, base string) (*Overrides, bool, error) {
	path := jobOverridePath(dir, base)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Overrides{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("jobstate: read %s: %w", path, err)
	}
	var o Overrides
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, false, fmt.Errorf("jobstate: parse %s: %w", path, err)
	}
	return &o, true, nil
}

// ApplyOverrides merges an override file into a job snapshot. A force_once
// override is carried in cfg.ForceOnce; the caller consumes it on
// completion (spec §6).
func ApplyOverrides(cfg *config.JobConfig, o *Overrides) {
	if o.ASRMode != "" {
		cfg.ASRModeOverride = o.ASRMode
	}
	if o.SegmentMode != "" {
		cfg.SegmentModeOverride = o.SegmentMode
	}
	cfg.IgnoreSimplifiedSub = o.IgnoreSimplifiedSubtitle
	cfg.UseExistingSubtitle = o.UseExistingSubtitle || cfg.UseExistingSubtitle
	cfg.ForceOnce = o.ForceOnce
	cfg.ForceASR = o.ForceASR
	cfg.ForceTranslate = o.ForceTranslate
}

// ConsumeForceOnce deletes N.job.json after a completed run that used a
// force_once override (spec §4.4 step 7 / §6).
func ConsumeForceOnce(dir, base string) error {
	path := jobOverridePath(dir, base)
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("jobstate: consume override %s: %w", path, err)
	}
	return nil
}
