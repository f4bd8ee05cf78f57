package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/watchsub/watchsub/internal/admission"
	"github.com/watchsub/watchsub/internal/app"
	"github.com/watchsub/watchsub/internal/config"
	"github.com/watchsub/watchsub/internal/jobstate"
	"github.com/watchsub/watchsub/internal/queue"
	"github.com/watchsub/watchsub/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch configured directories and process arriving video files",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	a, err := app.Build(settings, logger)
	if err != nil {
		return err
	}

	q := queue.NewPriorityQueue()
	pending := watcher.NewPendingSet()

	pool := queue.NewPool(q, settings.WorkerConcurrency, a.JobSem, func(ctx context.Context, path string) {
		runOne(ctx, a, settings, path, pending)
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := pool.Start(ctx)

	w := watcher.New(settings.WatchDirs, settings.WatchRecursive, settings.VideoExts, settings.TriggerScanFile,
		settings.ScanInterval, pending, func(path string) {
			q.Push(path, queue.ComputePriority(path, settings.SimplifiedLang))
		}, logger)

	stop := make(chan struct{})
	go w.Run(stop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	close(stop)
	q.Close()
	cancel()
	wg.Wait()
	return nil
}

// runOne admits a path, runs it through the pipeline and releases the
// lock and pending-set entry on exit, regardless of outcome.
func runOne(ctx context.Context, a *app.App, settings *config.Settings, path string, pending *watcher.PendingSet) {
	defer pending.Remove(path)

	cfg := settings.Snapshot(path)
	dir, base := dirBase(path)

	if overrides, ok, err := jobstate.LoadOverrides(dir, base); err == nil && ok {
		jobstate.ApplyOverrides(cfg, overrides)
	}

	gate := admission.NewGate(settings.ScanInterval)
	result := gate.Evaluate(cfg)
	if !result.Admitted {
		logger.Debug().Str("path", path).Str("reason", string(result.Reason)).Msg("admission skipped")
		return
	}
	defer jobstate.ReleaseLock(dir, base)

	runID := base
	runLog := jobstate.NewRunLog(dir, base, runID, settings.LogMaxBytes, settings.LogMaxBackups)

	if err := a.Pipeline.Run(ctx, cfg, runLog); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("job failed")
		return
	}
	logger.Info().Str("path", path).Msg("job done")
}

func dirBase(path string) (dir, base string) {
	dir = filepath.Dir(path)
	base = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return dir, base
}
