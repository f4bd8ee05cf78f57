package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchsub/watchsub/internal/config"
	"github.com/watchsub/watchsub/internal/subs"
	"github.com/watchsub/watchsub/internal/translate"
)

func TestMaxOr1ClampsNonPositiveToOne(t *testing.T) {
	assert.Equal(t, 1, maxOr1(0))
	assert.Equal(t, 1, maxOr1(-3))
	assert.Equal(t, 4, maxOr1(4))
}

func TestSplitModelRefSplitsOwnerAndName(t *testing.T) {
	owner, name := splitModelRef("meta/llama-3")
	assert.Equal(t, "meta", owner)
	assert.Equal(t, "llama-3", name)
}

func TestSplitModelRefNoSlashIsNameOnly(t *testing.T) {
	owner, name := splitModelRef("paraformer-v2")
	assert.Equal(t, "", owner)
	assert.Equal(t, "paraformer-v2", name)
}

func TestIsCJKLangRecognizesCJKOnly(t *testing.T) {
	assert.True(t, isCJKLang("zh"))
	assert.True(t, isCJKLang("ja"))
	assert.True(t, isCJKLang("ko"))
	assert.False(t, isCJKLang("en"))
	assert.False(t, isCJKLang(""))
}

func TestTrimExtDropsExtensionOnly(t *testing.T) {
	assert.Equal(t, "movie", trimExt("movie.mkv"))
	assert.Equal(t, "archive.tar", trimExt("archive.tar.gz"))
	assert.Equal(t, "noext", trimExt("noext"))
}

func TestBuildHotwordsForReturnsNilWhenDisabled(t *testing.T) {
	cfg := &config.JobConfig{Settings: config.Settings{ASRHotwordsEnabled: false}, Path: "/x/show.mkv"}
	assert.Nil(t, buildHotwordsFor(context.Background(), nil, cfg))
}

func TestBuildHotwordsForReturnsNilWithoutResolver(t *testing.T) {
	cfg := &config.JobConfig{Settings: config.Settings{ASRHotwordsEnabled: true}, Path: "/x/show.mkv"}
	assert.Nil(t, buildHotwordsFor(context.Background(), nil, cfg))
}

type fakeTranslateModel struct{ n int }

func (f *fakeTranslateModel) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	f.n++
	return "翻译结果", nil
}

func TestTranslateAllWritesOneSRTPerDestinationLanguage(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "episode.mkv")
	require.NoError(t, os.WriteFile(videoPath, []byte("x"), 0o644))

	cache, err := translate.OpenCache(filepath.Join(dir, "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	defer cache.Close()

	model := &fakeTranslateModel{}
	tr := translate.NewTranslator(model, cache, 0, zerolog.Nop())

	cues := []*subs.Cue{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "hello"},
		{Index: 2, StartMS: 1000, EndMS: 2000, Text: "world"},
	}

	cfg := &config.JobConfig{
		Settings: config.Settings{DstLangs: []string{"zh", "fr"}, ContextAwareEnabled: true},
		Path:     videoPath,
	}

	out, terr := translateAll(context.Background(), tr, model, cfg, cues, zerolog.Nop())
	require.NoError(t, terr)
	require.Len(t, out, 2)

	for _, lang := range []string{"zh", "fr"} {
		path := out[lang]
		require.NotEmpty(t, path)
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
		assert.Contains(t, path, "episode."+lang+".srt")
	}
}

func TestTranslateAllWrapsCJKOutputAndRevalidates(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "episode.mkv")
	require.NoError(t, os.WriteFile(videoPath, []byte("x"), 0o644))

	cache, err := translate.OpenCache(filepath.Join(dir, "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	defer cache.Close()

	model := &fakeTranslateModel{}
	tr := translate.NewTranslator(model, cache, 0, zerolog.Nop())

	cues := []*subs.Cue{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "hello"},
	}

	cfg := &config.JobConfig{
		Settings: config.Settings{DstLang: "zh", MaxCharsPerLine: 2},
		Path:     videoPath,
	}

	out, terr := translateAll(context.Background(), tr, model, cfg, cues, zerolog.Nop())
	require.NoError(t, terr)

	assert.Equal(t, "翻译\n结果", cues[0].TextDst, "a CJK destination language must be wrapped to MaxCharsPerLine before writing")
	assert.Contains(t, out["zh"], "episode.zh.srt")
}

func TestTranslateAllDoesNotWrapNonCJKOutput(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "episode.mkv")
	require.NoError(t, os.WriteFile(videoPath, []byte("x"), 0o644))

	cache, err := translate.OpenCache(filepath.Join(dir, "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	defer cache.Close()

	model := &fakeTranslateModel{}
	tr := translate.NewTranslator(model, cache, 0, zerolog.Nop())

	cues := []*subs.Cue{{Index: 1, StartMS: 0, EndMS: 1000, Text: "hello"}}
	cfg := &config.JobConfig{Settings: config.Settings{DstLang: "fr", MaxCharsPerLine: 2}, Path: videoPath}

	_, terr := translateAll(context.Background(), tr, model, cfg, cues, zerolog.Nop())
	require.NoError(t, terr)
	assert.Equal(t, "翻译结果", cues[0].TextDst, "a non-CJK destination must not be grapheme-wrapped")
}

func TestTranslateAllFallsBackToSingleDstLangWhenDstLangsEmpty(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "episode.mkv")
	require.NoError(t, os.WriteFile(videoPath, []byte("x"), 0o644))

	cache, err := translate.OpenCache(filepath.Join(dir, "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	defer cache.Close()

	model := &fakeTranslateModel{}
	tr := translate.NewTranslator(model, cache, 0, zerolog.Nop())
	cues := []*subs.Cue{{Index: 1, StartMS: 0, EndMS: 1000, Text: "hi"}}

	cfg := &config.JobConfig{Settings: config.Settings{DstLang: "zh"}, Path: videoPath}

	out, terr := translateAll(context.Background(), tr, model, cfg, cues, zerolog.Nop())
	require.NoError(t, terr)
	require.Len(t, out, 1)
	assert.Contains(t, out["zh"], "episode.zh.srt")
}
