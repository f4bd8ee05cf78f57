package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/watchsub/watchsub/internal/config"
)

var (
	logger  = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "watchsub <command>",
	Short: "Watch directories and produce subtitles for newly arrived video files",
	Long: color.Green.Sprint("watchsub") + " watches one or more directories for video files and\n" +
		"produces source-language and translated subtitle files for each one,\n" +
		"reusing any existing subtitle track when it already carries the right\n" +
		"language and script.\n\n" +
		"Example:\n  watchsub watch /media/anime\n  watchsub run /media/anime/episode01.mkv",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default $XDG_CONFIG_HOME/watchsub/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(runCmd)
}

func loadSettings() (*config.Settings, error) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return config.InitConfig(cfgFile)
}
