package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchsub/watchsub/internal/asr"
	"github.com/watchsub/watchsub/internal/config"
	"github.com/watchsub/watchsub/internal/media"
	"github.com/watchsub/watchsub/internal/metadata"
	"github.com/watchsub/watchsub/internal/segment"
)

type hotwordProvider struct{ characters []string }

func (p *hotwordProvider) Name() string            { return "fake" }
func (p *hotwordProvider) Weight() float64         { return 1 }
func (p *hotwordProvider) MinSimilarity() float64  { return 0 }
func (p *hotwordProvider) Resolve(ctx context.Context, q metadata.Query) (*metadata.Metadata, error) {
	return &metadata.Metadata{OriginalTitle: "Example Show", Characters: p.characters}, nil
}

type vocabTrackingRecognizer struct {
	createCalls int
	deleteCalls int
	deletedID   string
	lastHotwords []asr.Hotword
	lastOpt     asr.Options
}

func (r *vocabTrackingRecognizer) TranscribeOffline(ctx context.Context, audioURL string, opt asr.Options) (*asr.Result, error) {
	r.lastOpt = opt
	return &asr.Result{Sentences: []segment.Sentence{{Text: "hello", StartMS: 0, EndMS: 500}}}, nil
}

func (r *vocabTrackingRecognizer) TranscribeRealtime(ctx context.Context, wavChunk []byte, opt asr.Options) (*asr.Result, error) {
	r.lastOpt = opt
	return &asr.Result{Sentences: nil}, nil
}

func (r *vocabTrackingRecognizer) CreateVocabulary(ctx context.Context, items []asr.Hotword, targetModel string) (string, error) {
	r.createCalls++
	r.lastHotwords = items
	return "vocab-xyz", nil
}

func (r *vocabTrackingRecognizer) DeleteVocabulary(ctx context.Context, id string) error {
	r.deleteCalls++
	r.deletedID = id
	return nil
}

type fakeObjectStore struct{}

func (fakeObjectStore) Put(ctx context.Context, localPath string) (string, error) { return "key", nil }
func (fakeObjectStore) URL(ctx context.Context, key string) (string, error)       { return "https://example/" + key, nil }
func (fakeObjectStore) Delete(ctx context.Context, key string) error              { return nil }

func newHotwordResolver(characters []string) *metadata.Resolver {
	return metadata.NewResolver([]metadata.Provider{&hotwordProvider{characters: characters}}, 0, 0)
}

func TestRecognizeVocabularyModeRegistersAndCleansUp(t *testing.T) {
	rec := &vocabTrackingRecognizer{}
	resolver := newHotwordResolver([]string{"Alice", "Bob"})
	cfg := &config.JobConfig{Settings: config.Settings{
		ASRHotwordsEnabled: true,
		ASRHotwordsMode:    "vocabulary",
		ASRMode:            "offline",
	}, Path: "/videos/episode.mkv"}

	cues, err := recognize(context.Background(), rec, fakeObjectStore{}, resolver, cfg, "/tmp/audio.wav", media.AudioTrack{Index: 0}, zerolog.Nop())
	require.NoError(t, err)
	require.NotEmpty(t, cues)

	assert.Equal(t, 1, rec.createCalls, "vocabulary mode must register hotwords once")
	assert.Equal(t, 1, rec.deleteCalls, "vocabulary must be deleted after the job regardless of outcome")
	assert.Equal(t, "vocab-xyz", rec.deletedID)
	assert.Equal(t, "vocab-xyz", rec.lastOpt.VocabularyID, "the recognizer call must carry the registered vocabulary id")
	assert.Empty(t, rec.lastOpt.Hotwords, "vocabulary mode must not also attach a flat hotwords param")
}

func TestRecognizeParamModeAttachesHotwordsDirectly(t *testing.T) {
	rec := &vocabTrackingRecognizer{}
	resolver := newHotwordResolver([]string{"Alice"})
	cfg := &config.JobConfig{Settings: config.Settings{
		ASRHotwordsEnabled: true,
		ASRHotwordsMode:    "param",
		ASRMode:            "offline",
	}, Path: "/videos/episode.mkv"}

	_, err := recognize(context.Background(), rec, fakeObjectStore{}, resolver, cfg, "/tmp/audio.wav", media.AudioTrack{Index: 0}, zerolog.Nop())
	require.NoError(t, err)

	assert.Zero(t, rec.createCalls, "param mode must not register a vocabulary")
	assert.Zero(t, rec.deleteCalls)
	assert.NotEmpty(t, rec.lastOpt.Hotwords, "param mode must attach hotwords directly on the call")
	assert.Empty(t, rec.lastOpt.VocabularyID)
}

func TestResolveHotwordOptionsIgnoresParamModeInRealtime(t *testing.T) {
	rec := &vocabTrackingRecognizer{}
	cfg := &config.JobConfig{Settings: config.Settings{ASRHotwordsMode: "param"}}
	hotwords := []asr.Hotword{{Text: "Alice", Weight: 5}}

	var opt asr.Options
	cleanup := resolveHotwordOptions(context.Background(), rec, cfg, hotwords, "realtime", &opt, zerolog.Nop())
	cleanup()

	assert.Zero(t, rec.createCalls)
	assert.Zero(t, rec.deleteCalls)
	assert.Empty(t, opt.Hotwords, "realtime mode must ignore param-mode hotwords per the §4.7 warn-and-ignore rule")
	assert.Empty(t, opt.VocabularyID)
}

func TestResolveHotwordOptionsNoopWhenNoHotwords(t *testing.T) {
	rec := &vocabTrackingRecognizer{}
	cfg := &config.JobConfig{Settings: config.Settings{ASRHotwordsMode: "vocabulary"}}

	var opt asr.Options
	cleanup := resolveHotwordOptions(context.Background(), rec, cfg, nil, "offline", &opt, zerolog.Nop())
	cleanup()

	assert.Zero(t, rec.createCalls, "an empty hotword list must never trigger vocabulary registration")
}

func TestResolveHotwordOptionsUnrecognizedModeIgnoresHotwords(t *testing.T) {
	rec := &vocabTrackingRecognizer{}
	cfg := &config.JobConfig{Settings: config.Settings{ASRHotwordsMode: "bogus"}}
	hotwords := []asr.Hotword{{Text: "Alice", Weight: 5}}

	var opt asr.Options
	cleanup := resolveHotwordOptions(context.Background(), rec, cfg, hotwords, "offline", &opt, zerolog.Nop())
	cleanup()

	assert.Zero(t, rec.createCalls)
	assert.Empty(t, opt.Hotwords)
	assert.Empty(t, opt.VocabularyID)
}
