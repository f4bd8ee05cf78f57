package jobstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/watchsub/watchsub/internal/config"
	"github.com/watchsub/watchsub/internal/media"
	"github.com/watchsub/watchsub/internal/reuse"
	"github.com/watchsub/watchsub/internal/subs"
)

// Pipeline bundles the per-job collaborators the orchestrator calls into
// at each stage. Concrete recognizer/translator/metadata wiring is
// injected by the caller (internal/app.Build), keeping this package
// free of vendor-specific imports.
type Pipeline struct {
	Probe      *media.MediaProbe
	Recognize  RecognizeFunc
	Translate  TranslateFunc
	Log        zerolog.Logger
}

// RecognizeFunc extracts audio for the chosen track and returns
// segmented, validated source-language cues.
type RecognizeFunc func(ctx context.Context, cfg *config.JobConfig, audioPath string, track media.AudioTrack) ([]*subs.Cue, error)

// TranslateFunc translates validated source cues into every configured
// destination language, returning per-language output paths.
type TranslateFunc func(ctx context.Context, cfg *config.JobConfig, cues []*subs.Cue) (map[string]string, error)

// Run drives one video through the full stage sequence of spec §4.4,
// updating runLog at every boundary and translating any stage failure
// into asr_failed bookkeeping when appropriate.
func (p *Pipeline) Run(ctx context.Context, cfg *config.JobConfig, runLog *RunLog) error {
	dir := filepath.Dir(cfg.Path)
	base := basename(cfg.Path)

	var probe *media.Probe
	if err := p.stage(runLog, StageInit, func() error { return nil }); err != nil {
		return err
	}

	if err := p.stage(runLog, StageProbe, func() error {
		var err error
		probe, err = p.Probe.Probe(cfg.Path)
		return err
	}); err != nil {
		return p.failStage(dir, base, StageProbe, err, cfg.ASRMaxFailures)
	}

	audio := media.SelectAudio(probe.AudioTracks, cfg.AudioPreferLangs, cfg.AudioExcludeTitles, -1, "")
	if !audio.Found {
		err := fmt.Errorf("no audio track found")
		return p.failStage(dir, base, StageProbe, err, cfg.ASRMaxFailures)
	}

	var chosenSub media.SubtitleTrack
	var haveSub bool
	var variant reuse.Decision
	if err := p.stage(runLog, StageSubtitleSelect, func() error {
		mode := media.SubtitleMode(cfg.SubtitleMode)
		chosenSub, haveSub = media.SelectSubtitle(mode, probe.SubtitleTracks, cfg.SubtitlePreferLangsDst, cfg.SubtitlePreferLangsSrc, cfg.SubtitleExcludeTitles)
		if !haveSub {
			return nil
		}
		text, err := extractCandidateText(cfg.Path, chosenSub)
		if err != nil {
			return err
		}
		variant = reuse.Evaluate(chosenSub.Title, text, cfg.SimplifiedLang, cfg.SubtitleReuseSampleChars, cfg.SubtitleReuseMinConfidence)
		return nil
	}); err != nil {
		return p.failStage(dir, base, StageSubtitleSelect, err, cfg.ASRMaxFailures)
	}

	targetPath := translatedSRTPath(dir, base, cfg.SimplifiedLang)
	if _, err := os.Stat(targetPath); err == nil && !cfg.IgnoreSimplifiedSub {
		return p.finalize(dir, base, cfg, runLog, nil)
	}

	var cues []*subs.Cue
	if haveSub && variant.Action == reuse.ActionReuse {
		if err := p.stage(runLog, StageAsrPrepare, func() error {
			var err error
			cues, err = subs.ReadSRT(chosenSub.Path)
			return err
		}); err != nil {
			return p.failStage(dir, base, StageAsrPrepare, err, cfg.ASRMaxFailures)
		}
	} else {
		var audioPath string
		if err := p.stage(runLog, StageAsrPrepare, func() error {
			audioPath = filepath.Join(cfg.TmpDir, base+".wav")
			return media.ExtractAudio(cfg.Path, audio.Track.Index, cfg.ASRSampleRate, audioPath)
		}); err != nil {
			return p.failStage(dir, base, StageAsrPrepare, err, cfg.ASRMaxFailures)
		}

		if err := p.stage(runLog, StageAsrCall, func() error {
			var err error
			cues, err = p.Recognize(ctx, cfg, audioPath, audio.Track)
			return err
		}); err != nil {
			return p.failStage(dir, base, StageAsrCall, err, cfg.ASRMaxFailures)
		}
	}

	cues, _ = subs.Validate(cues)
	if err := subs.WriteSRT(srtPath(dir, base, ""), cues); err != nil {
		return p.failStage(dir, base, StageAsrCall, err, cfg.ASRMaxFailures)
	}

	if cfg.Translate {
		if err := p.stage(runLog, StageTranslate, func() error {
			_, err := p.Translate(ctx, cfg, cues)
			return err
		}); err != nil {
			return p.failStage(dir, base, StageTranslate, err, cfg.ASRMaxFailures)
		}
	}

	return p.finalize(dir, base, cfg, runLog, nil)
}

func (p *Pipeline) stage(runLog *RunLog, stage Stage, fn func() error) error {
	if err := runLog.Begin(stage); err != nil {
		p.Log.Warn().Err(err).Str("stage", string(stage)).Msg("failed to write run meta")
	}
	err := fn()
	if ferr := runLog.Finish(stage, err); ferr != nil {
		p.Log.Warn().Err(ferr).Str("stage", string(stage)).Msg("failed to write run meta")
	}
	return err
}

func (p *Pipeline) failStage(dir, base string, stage Stage, err error, maxFailures int) error {
	if IsASRStage(string(stage)) {
		if rerr := RecordAsrFailure(dir, base, string(stage), err, maxFailures); rerr != nil {
			p.Log.Warn().Err(rerr).Msg("failed to record asr_failed")
		}
	}
	return &StageError{Stage: string(stage), Behavior: AbortJob, Level: zerolog.ErrorLevel, Err: err}
}

func (p *Pipeline) finalize(dir, base string, cfg *config.JobConfig, runLog *RunLog, finalizeErr error) error {
	return p.stage(runLog, StageFinalize, func() error {
		if finalizeErr != nil {
			return finalizeErr
		}
		if err := MarkDone(dir, base); err != nil {
			return err
		}
		if err := ClearAsrFailure(dir, base); err != nil {
			return err
		}
		if cfg.ForceOnce {
			if err := ConsumeForceOnce(dir, base); err != nil {
				return err
			}
		}
		if cfg.MoveDone {
			return moveToDoneDir(cfg)
		}
		return nil
	})
}

func moveToDoneDir(cfg *config.JobConfig) error {
	if cfg.DoneDir == "" {
		return nil
	}
	dest := filepath.Join(cfg.DoneDir, filepath.Base(cfg.Path))
	if err := os.MkdirAll(cfg.DoneDir, 0o755); err != nil {
		return fmt.Errorf("jobstate: create done dir: %w", err)
	}
	if cfg.DeleteSourceAfterDone {
		return os.Rename(cfg.Path, dest)
	}
	return copyFile(cfg.Path, dest)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("jobstate: read %s: %w", src, err)
	}
	return os.WriteFile(dst, data, 0o644)
}

func extractCandidateText(videoPath string, track media.SubtitleTrack) (string, error) {
	if track.Kind == media.KindExternal {
		cues, err := subs.ReadSRT(track.Path)
		if err != nil {
			return "", err
		}
		return joinCueText(cues), nil
	}

	tmp := track.Path
	if tmp == "" {
		tmp = videoPath + fmt.Sprintf(".track%d.srt", track.Index)
		if err := media.ExtractSubtitleTrack(videoPath, track.Index, tmp); err != nil {
			return "", err
		}
	}
	cues, err := subs.ReadSRT(tmp)
	if err != nil {
		return "", err
	}
	return joinCueText(cues), nil
}

func joinCueText(cues []*subs.Cue) string {
	var out string
	for _, c := range cues {
		out += c.Text + "\n"
	}
	return out
}
