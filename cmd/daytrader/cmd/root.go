package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daytrader",
	Short: "A single-position day trading daemon",
	Long: `Daytrader runs an automated single-position trading lifecycle.

It provides:
  - A monitor loop that enters on rule signals and exits on stop-loss
    or take-profit levels
  - Simulated and live (DAS bridge) order execution
  - Risk profiles with per-profile stop, target and allocation
  - A crash-safe state snapshot and an append-only audit log
  - An HTTP control API with Prometheus metrics

Complete documentation is available at https://github.com/rustyeddy/daytrader`,
}

var (
	verbose bool
	pretty  bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(setupLogging)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable console log output")
}

func setupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
