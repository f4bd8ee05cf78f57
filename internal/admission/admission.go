// Package admission implements the six-step gate that runs once per
// dequeued path before any pipeline work begins (spec §4.2), the
// generalisation of the teacher's IsAlreadyProcessed idempotence check
// (internal/core/resumption_service.go) from a processed-identifier log
// to a richer set of on-disk markers.
package admission

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/watchsub/watchsub/internal/config"
	"github.com/watchsub/watchsub/internal/jobstate"
)

// Reason names why a path was skipped, used for logging and metrics.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonDoneExists       Reason = "done_exists"
	ReasonSourceCoLocated  Reason = "source_srt_not_colocated"
	ReasonLockExists       Reason = "lock_exists"
	ReasonAsrFailedFatal   Reason = "asr_failed_fatal"
	ReasonAsrFailedRecent  Reason = "asr_failed_recent"
	ReasonUnstable         Reason = "unstable"
)

// Result is the outcome of one admission attempt.
type Result struct {
	Admitted bool
	Reason   Reason
}

// Gate evaluates and, on success, locks a path for exclusive processing.
// dwell is the pause between the two stability-check size samples.
type Gate struct {
	dwell time.Duration
}

func NewGate(dwell time.Duration) *Gate {
	return &Gate{dwell: dwell}
}

// Evaluate runs the six admission steps of spec §4.2 against path using
// cfg's tunables, locking the path on success. The caller is responsible
// for calling jobstate.ReleaseLock once the job pipeline exits.
func (g *Gate) Evaluate(cfg *config.JobConfig) Result {
	dir := filepath.Dir(cfg.Path)
	base := strings.TrimSuffix(filepath.Base(cfg.Path), filepath.Ext(cfg.Path))

	if jobstate.DoneExists(dir, base) && !cfg.ForceOnce {
		return Result{Reason: ReasonDoneExists}
	}

	if !cfg.OutputToSourceDir {
		srcSRT := filepath.Join(dir, base+".srt")
		if _, err := os.Stat(srcSRT); err == nil {
			return Result{Reason: ReasonSourceCoLocated}
		}
	}

	if age, err := jobstate.LockAge(dir, base); err == nil {
		if age <= cfg.LockTTL {
			return Result{Reason: ReasonLockExists}
		}
		_ = jobstate.ReleaseLock(dir, base)
	}

	if failure, ok, err := jobstate.ReadAsrFailure(dir, base); err == nil && ok {
		if failure.Fatal || failure.Count >= cfg.ASRMaxFailures {
			return Result{Reason: ReasonAsrFailedFatal}
		}
		if time.Since(failure.Ts) < cfg.ASRFailCooldown {
			return Result{Reason: ReasonAsrFailedRecent}
		}
		_ = jobstate.ClearAsrFailure(dir, base)
	}

	if !g.stable(cfg.Path, cfg.MinBytes) {
		return Result{Reason: ReasonUnstable}
	}

	if err := jobstate.AcquireLock(dir, base); err != nil {
		return Result{Reason: ReasonLockExists}
	}

	return Result{Admitted: true, Reason: ReasonNone}
}

// stable reports whether path's size is at least minBytes and unchanged
// across a short dwell, the guard against admitting a file still being
// written by a downloader or copy job.
func (g *Gate) stable(path string, minBytes int64) bool {
	before, err := os.Stat(path)
	if err != nil || before.Size() < minBytes {
		return false
	}
	time.Sleep(g.dwell)
	after, err := os.Stat(path)
	if err != nil {
		return false
	}
	return after.Size() == before.Size()
}
