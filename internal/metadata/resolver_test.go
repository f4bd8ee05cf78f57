package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	fakeProvider
	calls  *int
	result *Metadata
}

func (p countingProvider) Resolve(ctx context.Context, q Query) (*Metadata, error) {
	*p.calls = *p.calls + 1
	return p.result, nil
}

func TestResolverUsesManualOverrideWithoutCallingProviders(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	override := filepath.Join(dir, "movie.metadata.json")
	require.NoError(t, os.WriteFile(override, []byte(`{"original_title":"Manual Title"}`), 0o644))

	var calls int
	p := countingProvider{fakeProvider: fakeProvider{name: "tmdb", weight: 1, minSim: 0}, calls: &calls,
		result: &Metadata{OriginalTitle: "Should Not Be Used"}}

	r := NewResolver([]Provider{p}, time.Minute, 0)
	m, err := r.Resolve(context.Background(), video, Query{Titles: []string{"whatever"}})

	require.NoError(t, err)
	assert.Equal(t, "Manual Title", m.OriginalTitle)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, 0, calls, "providers must not be queried when a manual override exists")
}

func TestResolverCachesAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")

	var calls int
	p := countingProvider{fakeProvider: fakeProvider{name: "tmdb", weight: 1, minSim: 0}, calls: &calls,
		result: &Metadata{OriginalTitle: "Attack on Titan", Confidence: 1.0}}

	r := NewResolver([]Provider{p}, time.Minute, 0)
	q := Query{Titles: []string{"Attack on Titan"}, Year: 2013}

	first, err := r.Resolve(context.Background(), video, q)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := r.Resolve(context.Background(), video, q)
	require.NoError(t, err)
	assert.Same(t, first, second, "a repeated query must hit the cache, not re-invoke providers")
	assert.Equal(t, 1, calls)
}

func TestResolverDropsResultBelowProviderMinSimilarity(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")

	var calls int
	p := countingProvider{
		fakeProvider: fakeProvider{name: "tmdb", weight: 1, minSim: 0.99},
		calls:        &calls,
		result:       &Metadata{OriginalTitle: "Totally Unrelated"},
	}

	r := NewResolver([]Provider{p}, time.Minute, 0)
	q := Query{Titles: []string{"Attack on Titan"}, Year: 2013}

	m, err := r.Resolve(context.Background(), video, q)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestTTLCacheExpiresEntries(t *testing.T) {
	c := newTTLCache(10 * time.Millisecond)
	c.put("k", &Metadata{OriginalTitle: "x"})

	_, ok := c.get("k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.get("k")
	assert.False(t, ok)
}
