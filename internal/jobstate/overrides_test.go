package jobstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchsub/watchsub/internal/config"
)

func TestLoadOverridesMissingFileIsZeroValue(t *testing.T) {
	dir := t.TempDir()
	o, ok, err := LoadOverrides(dir, "movie")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, &Overrides{}, o)
}

func TestLoadOverridesParsesJobJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.job.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"asr_mode":"realtime","force_once":true}`), 0o644))

	o, ok, err := LoadOverrides(dir, "movie")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "realtime", o.ASRMode)
	assert.True(t, o.ForceOnce)
}

func TestApplyOverridesMergesIntoSnapshot(t *testing.T) {
	cfg := &config.JobConfig{Settings: config.Settings{}}
	o := &Overrides{ASRMode: "offline", SegmentMode: "post", ForceASR: true}

	ApplyOverrides(cfg, o)

	assert.Equal(t, "offline", cfg.ASRModeOverride)
	assert.Equal(t, "post", cfg.SegmentModeOverride)
	assert.True(t, cfg.ForceASR)
	assert.False(t, cfg.ForceOnce)
}

func TestApplyOverridesUseExistingSubtitleIsStickyTrue(t *testing.T) {
	cfg := &config.JobConfig{Settings: config.Settings{}, UseExistingSubtitle: true}
	ApplyOverrides(cfg, &Overrides{UseExistingSubtitle: false})

	assert.True(t, cfg.UseExistingSubtitle, "an override file must not un-set an already-true setting")
}

func TestConsumeForceOnceRemovesJobJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.job.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"force_once":true}`), 0o644))

	require.NoError(t, ConsumeForceOnce(dir, "movie"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ConsumeForceOnce(dir, "movie"), "consuming an already-absent override is not an error")
}
