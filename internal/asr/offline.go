package asr

import (
	"context"
	"fmt"
	"time"

	replicate "github.com/replicate/replicate-go"
	"github.com/rs/zerolog"

	"github.com/watchsub/watchsub/internal/segment"
)

// ReplicateRecognizer implements offline transcription against a
// Replicate-hosted ASR model, the vendor the teacher's (now-removed)
// pkg/stt wrapped directly. Realtime streaming is not offered by
// Replicate's prediction API, so TranscribeRealtime always errors here;
// callers select WebsocketRecognizer for realtime mode instead.
type ReplicateRecognizer struct {
	client      *replicate.Client
	owner, name string
	log         zerolog.Logger

	vocab map[string][]Hotword
}

func NewReplicateRecognizer(apiToken, owner, name string, log zerolog.Logger) (*ReplicateRecognizer, error) {
	client, err := replicate.NewClient(replicate.WithToken(apiToken))
	if err != nil {
		return nil, fmt.Errorf("asr: replicate client: %w", err)
	}
	return &ReplicateRecognizer{client: client, owner: owner, name: name, log: log, vocab: map[string][]Hotword{}}, nil
}

func (r *ReplicateRecognizer) TranscribeOffline(ctx context.Context, audioURL string, opt Options) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	model, err := r.client.GetModel(ctx, r.owner, r.name)
	if err != nil {
		return nil, fmt.Errorf("asr: get model %s/%s: %w", r.owner, r.name, err)
	}

	input := replicate.PredictionInput{
		"audio": audioURL,
	}
	if len(opt.LanguageHints) > 0 {
		input["language"] = opt.LanguageHints[0]
	}
	hotwords := opt.Hotwords
	if opt.VocabularyID != "" {
		hotwords = r.vocab[opt.VocabularyID]
	}
	if len(hotwords) > 0 {
		input["initial_prompt"] = hotwordsPrompt(hotwords)
	}

	output, err := r.client.Run(ctx, r.owner+"/"+r.name+":"+model.LatestVersion.ID, input, nil)
	if err != nil {
		return nil, fmt.Errorf("asr: prediction: %w", err)
	}

	return parsePredictionOutput(output)
}

func (r *ReplicateRecognizer) TranscribeRealtime(ctx context.Context, wavChunk []byte, opt Options) (*Result, error) {
	return nil, fmt.Errorf("asr: replicate recognizer does not support realtime streaming")
}

func (r *ReplicateRecognizer) CreateVocabulary(ctx context.Context, items []Hotword, targetModel string) (string, error) {
	id := fmt.Sprintf("vocab-%d", time.Now().UnixNano())
	r.vocab[id] = items
	return id, nil
}

func (r *ReplicateRecognizer) DeleteVocabulary(ctx context.Context, id string) error {
	delete(r.vocab, id)
	return nil
}

func hotwordsPrompt(words []Hotword) string {
	var s string
	for i, w := range words {
		if i > 0 {
			s += ", "
		}
		s += w.Text
	}
	return s
}

// parsePredictionOutput extracts sentences from a Replicate prediction
// response. Models vary in shape; the common case returns either a flat
// transcription string or a structured segments list with timings.
func parsePredictionOutput(output replicate.PredictionOutput) (*Result, error) {
	m, ok := output.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("asr: unexpected prediction output shape %T", output)
	}

	if rawCode, ok := m["code"]; ok && rawCode != nil {
		if code := fmt.Sprint(rawCode); IsFailure(code) {
			return nil, &VendorError{Code: code, Message: toString(m["message"])}
		}
	}

	if segs, ok := m["segments"].([]interface{}); ok {
		var sentences []segment.Sentence
		for _, raw := range segs {
			sm, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			sentences = append(sentences, segment.Sentence{
				Text:    toString(sm["text"]),
				StartMS: int64(toFloat(sm["start"]) * 1000),
				EndMS:   int64(toFloat(sm["end"]) * 1000),
			})
		}
		return &Result{Sentences: sentences}, nil
	}

	if text, ok := m["transcription"].(string); ok {
		return &Result{Sentences: []segment.Sentence{{Text: text}}}, nil
	}

	return nil, fmt.Errorf("asr: no transcription field in prediction output")
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func toFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}
