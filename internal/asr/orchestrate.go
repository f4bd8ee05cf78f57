package asr

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/watchsub/watchsub/internal/segment"
)

// RealtimeConfig bundles the chunking/retry knobs of §4.7, sourced from
// configuration.
type RealtimeConfig struct {
	ChunkMinSeconds     int
	ChunkMaxSeconds     int
	ChunkTargetCount    int
	OverlapMs           int
	PerChunkRetry       int
	FailureRateThreshold float64
	AdaptiveRetry       bool
	SampleRate          int
}

// RunRealtime drives one full realtime transcription pass over srcPath's
// audio stream: plan chunks, extract and transcribe each, stitch the
// result, and apply the adaptive retry cascade when too many chunks
// failed.
func RunRealtime(ctx context.Context, rec Recognizer, srcPath string, streamIndex int, totalDuration time.Duration, cfg RealtimeConfig, opt Options, tmpDir string, log zerolog.Logger) ([]segment.Sentence, error) {
	chunkSeconds := cfg.ChunkMaxSeconds
	if cfg.ChunkTargetCount > 0 {
		est := int(totalDuration.Seconds()) / cfg.ChunkTargetCount
		if est < cfg.ChunkMinSeconds {
			est = cfg.ChunkMinSeconds
		}
		if est > cfg.ChunkMaxSeconds {
			est = cfg.ChunkMaxSeconds
		}
		chunkSeconds = est
	}

	sentences, failureRate, err := runPass(ctx, rec, srcPath, streamIndex, totalDuration, chunkSeconds, cfg, opt, tmpDir, log)
	if err != nil {
		return nil, err
	}
	if !cfg.AdaptiveRetry || failureRate < cfg.FailureRateThreshold {
		return sentences, nil
	}

	if chunkSeconds > cfg.ChunkMinSeconds {
		halved := HalveChunkSeconds(chunkSeconds, cfg.ChunkMinSeconds)
		log.Warn().Float64("failure_rate", failureRate).Int("chunk_seconds", halved).Msg("retrying realtime pass with smaller chunks")
		sentences, failureRate, err = runPass(ctx, rec, srcPath, streamIndex, totalDuration, halved, cfg, opt, tmpDir, log)
		if err != nil {
			return nil, err
		}
		if failureRate < cfg.FailureRateThreshold {
			return sentences, nil
		}
	}

	log.Warn().Float64("failure_rate", failureRate).Msg("retrying realtime pass with VAD-driven sentencing")
	vadOpt := opt
	vadOpt.SemanticPunctuation = false
	vadOpt.MaxSilenceMs = cfg.OverlapMs * 4
	vadOpt.MultiThreshold = true
	sentences, _, err = runPass(ctx, rec, srcPath, streamIndex, totalDuration, cfg.ChunkMinSeconds, cfg, vadOpt, tmpDir, log)
	return sentences, err
}

func runPass(ctx context.Context, rec Recognizer, srcPath string, streamIndex int, totalDuration time.Duration, chunkSeconds int, cfg RealtimeConfig, opt Options, tmpDir string, log zerolog.Logger) ([]segment.Sentence, float64, error) {
	plans := PlanChunks(totalDuration, chunkSeconds, chunkSeconds, 1, cfg.OverlapMs)
	if len(plans) == 0 {
		plans = PlanChunks(totalDuration, cfg.ChunkMinSeconds, cfg.ChunkMaxSeconds, cfg.ChunkTargetCount, cfg.OverlapMs)
	}

	results := make([]*Result, len(plans))
	boundaries := make([]time.Duration, len(plans))
	failures := 0

	for i, plan := range plans {
		boundaries[i] = plan.OverlapEnd
		chunkPath := fmt.Sprintf("%s/chunk-%d.wav", tmpDir, i)
		if err := ExtractChunkAudio(srcPath, streamIndex, cfg.SampleRate, plan, chunkPath); err != nil {
			failures++
			log.Error().Err(err).Int("chunk", i).Msg("chunk extraction failed")
			continue
		}

		res, err := transcribeWithRetry(ctx, rec, chunkPath, opt, cfg.PerChunkRetry, log)
		_ = os.Remove(chunkPath)
		if err != nil {
			failures++
			log.Error().Err(err).Int("chunk", i).Msg("chunk transcription failed")
			continue
		}
		results[i] = res
	}

	failureRate := float64(failures) / float64(len(plans))
	return Stitch(results, boundaries), failureRate, nil
}

func transcribeWithRetry(ctx context.Context, rec Recognizer, chunkPath string, opt Options, retries int, log zerolog.Logger) (*Result, error) {
	data, err := os.ReadFile(chunkPath)
	if err != nil {
		return nil, fmt.Errorf("asr: read chunk %s: %w", chunkPath, err)
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		res, err := rec.TranscribeRealtime(ctx, data, opt)
		if err == nil {
			return res, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("transient chunk failure, retrying")
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
	}
	return nil, lastErr
}
