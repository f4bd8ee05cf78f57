package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingSetTryAddIsOnceOnly(t *testing.T) {
	p := NewPendingSet()
	assert.True(t, p.TryAdd("a"))
	assert.False(t, p.TryAdd("a"), "a second TryAdd before Remove must report already-pending")

	p.Remove("a")
	assert.True(t, p.TryAdd("a"), "TryAdd must succeed again after Remove")
}

func newTestWatcher(t *testing.T, root string, enqueue Enqueuer) *Watcher {
	t.Helper()
	return New([]string{root}, true, []string{".mkv", ".mp4"}, "", time.Minute,
		NewPendingSet(), enqueue, zerolog.Nop())
}

func TestScanEnqueuesOnlyVideoExtensions(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "movie.mkv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "clip.MP4"), []byte("x"), 0o644))

	var got []string
	w := newTestWatcher(t, root, func(path string) { got = append(got, path) })
	w.scan()

	sort.Strings(got)
	assert.Len(t, got, 2)
	assert.Contains(t, got[0]+got[1], "clip.MP4")
	assert.Contains(t, got[0]+got[1], "movie.mkv")
}

func TestScanRecursesIntoSubdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "season1")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "ep1.mkv"), []byte("x"), 0o644))

	var got []string
	w := newTestWatcher(t, root, func(path string) { got = append(got, path) })
	w.scan()

	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(sub, "ep1.mkv"), got[0])
}

func TestScanDoesNotReenqueueAlreadyPendingPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "movie.mkv"), []byte("x"), 0o644))

	var calls int
	w := newTestWatcher(t, root, func(path string) { calls++ })
	w.scan()
	w.scan()

	assert.Equal(t, 1, calls, "a path already in the pending set must not be enqueued twice")
}

func TestCheckTriggerConsumesSentinelOnce(t *testing.T) {
	root := t.TempDir()
	sentinel := filepath.Join(root, ".scan_now")
	require.NoError(t, os.WriteFile(sentinel, []byte(""), 0o644))

	w := newTestWatcher(t, root, func(string) {})
	w.triggerFile = ".scan_now"

	assert.True(t, w.checkTrigger())
	assert.False(t, w.checkTrigger(), "the sentinel must be removed after being consumed once")
	_, err := os.Stat(sentinel)
	assert.True(t, os.IsNotExist(err))
}

func TestCheckTriggerNoopWithoutTriggerFileConfigured(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, func(string) {})
	assert.False(t, w.checkTrigger())
}
