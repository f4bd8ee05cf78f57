package asr

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/watchsub/watchsub/internal/media"
	"github.com/watchsub/watchsub/internal/segment"
)

// WebsocketRecognizer implements realtime streaming transcription over a
// persistent websocket connection, one frame per audio chunk.
type WebsocketRecognizer struct {
	url    string
	apiKey string
	dialer *websocket.Dialer
	log    zerolog.Logger
	vocab  map[string][]Hotword
}

func NewWebsocketRecognizer(url, apiKey string, log zerolog.Logger) *WebsocketRecognizer {
	return &WebsocketRecognizer{
		url:    url,
		apiKey: apiKey,
		dialer: &websocket.Dialer{HandshakeTimeout: 15 * time.Second, TLSClientConfig: &tls.Config{}},
		log:    log,
		vocab:  map[string][]Hotword{},
	}
}

func (w *WebsocketRecognizer) TranscribeOffline(ctx context.Context, audioURL string, opt Options) (*Result, error) {
	return nil, fmt.Errorf("asr: websocket recognizer does not support offline mode")
}

type realtimeFrame struct {
	Sentences []segment.Sentence `json:"sentences"`
	ErrorCode string             `json:"code"`
	Message   string             `json:"message"`
}

func (w *WebsocketRecognizer) TranscribeRealtime(ctx context.Context, wavChunk []byte, opt Options) (*Result, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+w.apiKey)

	conn, _, err := w.dialer.DialContext(ctx, w.url, header)
	if err != nil {
		return nil, fmt.Errorf("asr: websocket dial: %w", err)
	}
	defer conn.Close()

	startMsg, err := json.Marshal(map[string]interface{}{
		"type":                 "start",
		"language_hints":       opt.LanguageHints,
		"vocabulary_id":        opt.VocabularyID,
		"semantic_punctuation": opt.SemanticPunctuation,
		"max_silence_ms":       opt.MaxSilenceMs,
		"multi_threshold":      opt.MultiThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("asr: encode start frame: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, startMsg); err != nil {
		return nil, fmt.Errorf("asr: send start frame: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, wavChunk); err != nil {
		return nil, fmt.Errorf("asr: send audio frame: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stop"}`)); err != nil {
		return nil, fmt.Errorf("asr: send stop frame: %w", err)
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("asr: read response: %w", err)
	}

	var frame realtimeFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("asr: decode response: %w", err)
	}
	if IsFailure(frame.ErrorCode) {
		return nil, &VendorError{Code: frame.ErrorCode, Message: frame.Message}
	}

	return &Result{Sentences: frame.Sentences}, nil
}

func (w *WebsocketRecognizer) CreateVocabulary(ctx context.Context, items []Hotword, targetModel string) (string, error) {
	id := fmt.Sprintf("vocab-%d", time.Now().UnixNano())
	w.vocab[id] = items
	return id, nil
}

func (w *WebsocketRecognizer) DeleteVocabulary(ctx context.Context, id string) error {
	delete(w.vocab, id)
	return nil
}

// ChunkPlan is one window of a realtime transcription pass, in audio time:
// its start, its duration, and the end of its overlap tail.
type ChunkPlan struct {
	Start      time.Duration
	Duration   time.Duration
	OverlapEnd time.Duration
}

// PlanChunks picks chunk size to hit approximately targetCount chunks
// within [minSeconds, maxSeconds], then lays out consecutive windows with
// an overlapMs tail, per §4.7.
func PlanChunks(totalDuration time.Duration, minSeconds, maxSeconds, targetCount int, overlapMs int) []ChunkPlan {
	total := totalDuration.Seconds()
	chunkSeconds := total / float64(targetCount)
	if chunkSeconds < float64(minSeconds) {
		chunkSeconds = float64(minSeconds)
	}
	if chunkSeconds > float64(maxSeconds) {
		chunkSeconds = float64(maxSeconds)
	}

	var plans []ChunkPlan
	overlap := time.Duration(overlapMs) * time.Millisecond
	chunkDur := time.Duration(chunkSeconds * float64(time.Second))
	for start := time.Duration(0); start < totalDuration; start += chunkDur {
		dur := chunkDur
		if start+dur > totalDuration {
			dur = totalDuration - start
		}
		overlapEnd := start + dur
		if overlapEnd+overlap <= totalDuration {
			overlapEnd += overlap
		} else {
			overlapEnd = totalDuration
		}
		plans = append(plans, ChunkPlan{Start: start, Duration: overlapEnd - start, OverlapEnd: overlapEnd})
	}
	return plans
}

// HalveChunkSeconds implements the first adaptive-retry step: halve chunk
// size, never going below minSeconds.
func HalveChunkSeconds(current, minSeconds int) int {
	half := current / 2
	if half < minSeconds {
		return minSeconds
	}
	return half
}

// Stitch concatenates per-chunk sentence lists into one ordered sequence,
// dropping sentences fully inside the preceding chunk's overlap tail and
// advancing monotonically (§4.7).
func Stitch(chunkResults []*Result, chunkBoundaries []time.Duration) []segment.Sentence {
	var out []segment.Sentence
	var advancedUntil int64

	for i, res := range chunkResults {
		if res == nil {
			continue
		}
		var cutoff int64 = -1
		if i > 0 {
			cutoff = chunkBoundaries[i-1].Milliseconds()
		}
		for _, s := range res.Sentences {
			if cutoff >= 0 && s.EndMS <= cutoff {
				continue
			}
			if s.StartMS < advancedUntil {
				continue
			}
			out = append(out, s)
			if s.EndMS > advancedUntil {
				advancedUntil = s.EndMS
			}
		}
	}
	return out
}

// ExtractChunkAudio is a thin convenience wrapper for callers that plan
// chunks then need to materialize each window to disk before streaming.
func ExtractChunkAudio(srcPath string, streamIndex, sampleRate int, plan ChunkPlan, outPath string) error {
	return media.ExtractAudioRange(srcPath, streamIndex, sampleRate, plan.Start, plan.Duration, outPath)
}
