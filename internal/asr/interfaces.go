// Package asr implements the recognizer orchestration of spec §4.7: the
// offline (upload + async submit + poll) and realtime (chunked streaming)
// modes, adaptive retry cascade, and hotword vocabulary lifecycle.
package asr

import (
	"context"

	"github.com/watchsub/watchsub/internal/segment"
)

// Result is a recognizer's raw transcript, the segmenter's input.
type Result struct {
	Sentences []segment.Sentence
}

// Options carries the per-call tuning a Recognizer needs: language hints,
// hotwords or a pre-registered vocabulary id, and the realtime-only VAD
// knobs used by the adaptive retry cascade.
type Options struct {
	LanguageHints  []string
	Hotwords       []Hotword
	VocabularyID   string
	SemanticPunctuation bool
	MaxSilenceMs        int
	MultiThreshold      bool
}

// Recognizer is the abstract ASR vendor boundary named in spec §6.
type Recognizer interface {
	TranscribeOffline(ctx context.Context, audioURL string, opt Options) (*Result, error)
	TranscribeRealtime(ctx context.Context, wavChunk []byte, opt Options) (*Result, error)
	CreateVocabulary(ctx context.Context, items []Hotword, targetModel string) (string, error)
	DeleteVocabulary(ctx context.Context, id string) error
}

// ObjectStore is the abstract upload boundary offline mode stages audio
// through before submitting a transcription job.
type ObjectStore interface {
	Put(ctx context.Context, localPath string) (key string, err error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// VendorError is the shape every offline/realtime response is inspected
// for: vendors can return HTTP 200 with a non-zero error code embedded in
// the body (spec §4.7).
type VendorError struct {
	Code    string
	Message string
}

func (e *VendorError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

// IsFailure reports whether code denotes a vendor-side failure; vendors
// vary between "", "0", and "OK" for success.
func IsFailure(code string) bool {
	switch code {
	case "", "0", "OK", "ok", "Ok":
		return false
	default:
		return true
	}
}
