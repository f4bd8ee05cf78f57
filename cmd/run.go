package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchsub/watchsub/internal/app"
	"github.com/watchsub/watchsub/internal/jobstate"
)

var forceOnce bool

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Process a single video file immediately, bypassing the watcher and admission stability check",
	Args:  cobra.ExactArgs(1),
	RunE:  runSingle,
}

func init() {
	runCmd.Flags().BoolVar(&forceOnce, "force", false, "process even if a done marker already exists")
}

func runSingle(cmd *cobra.Command, args []string) error {
	path := args[0]

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	a, err := app.Build(settings, logger)
	if err != nil {
		return err
	}

	cfg := settings.Snapshot(path)
	cfg.ForceOnce = forceOnce

	dir, base := dirBase(path)
	if err := jobstate.AcquireLock(dir, base); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer jobstate.ReleaseLock(dir, base)

	runLog := jobstate.NewRunLog(dir, base, base, settings.LogMaxBytes, settings.LogMaxBackups)
	if err := a.Pipeline.Run(context.Background(), cfg, runLog); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Println("done:", path)
	return nil
}
