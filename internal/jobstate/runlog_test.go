package jobstate

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLogBeginFinishWritesMetaAndEvents(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLog(dir, "movie", "run1", 10*1024*1024, 3)

	require.NoError(t, rl.Begin(StageProbe))
	require.NoError(t, rl.Finish(StageProbe, nil))

	meta, err := os.ReadFile(rl.MetaPath())
	require.NoError(t, err)
	var m RunMeta
	require.NoError(t, json.Unmarshal(meta, &m))
	assert.Equal(t, StatusDone, m.Status)
	assert.Equal(t, StageProbe, m.Stage)
	assert.NotNil(t, m.FinishedAt)

	lines := readLines(t, rl.EventPath())
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "stage_start")
	assert.Contains(t, lines[1], "stage_finish")
}

func TestRunLogFinishWithErrorMarksFailed(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLog(dir, "movie", "run1", 10*1024*1024, 3)

	require.NoError(t, rl.Begin(StageAsrCall))
	require.NoError(t, rl.Finish(StageAsrCall, errors.New("network timeout")))

	meta, err := os.ReadFile(rl.MetaPath())
	require.NoError(t, err)
	var m RunMeta
	require.NoError(t, json.Unmarshal(meta, &m))
	assert.Equal(t, StatusFailed, m.Status)
	assert.Equal(t, "network timeout", m.Error)
}

func TestRunLogRotatesPastMaxBytes(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLog(dir, "movie", "run1", 64, 2)

	for i := 0; i < 10; i++ {
		require.NoError(t, rl.Begin(StageTranslate))
		require.NoError(t, rl.Finish(StageTranslate, nil))
	}

	_, err := os.Stat(rl.EventPath() + ".1")
	assert.NoError(t, err, "expected at least one rotated backup once the size cap was exceeded repeatedly")
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}
