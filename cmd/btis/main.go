package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpmetrics "github.com/ddellaringa6/btis/internal/interfaces/http"
)

const (
	appName = "btis"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	httpmetrics.InitializeMetrics()

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Bitcoin Top Indicator Score updater",
		Version: version,
		Long: `BTIS computes a composite 0-100 "market top" score for BTC from
RSI(14), the Fear & Greed index, perpetual funding, the log-price range
percentile, and (with a Glassnode key) the MVRV Z-Score. Weights re-normalize
automatically over whichever metrics are available.`,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one scoring run",
		Long:  "Fetch all metric feeds, compute the composite score, and write the output document",
		RunE:  runRun,
	}
	runCmd.Flags().String("config", "", "Path to YAML config (defaults built in)")
	runCmd.Flags().String("out", "", "Override output document path")
	runCmd.Flags().Bool("dry-run", false, "Compute and print without writing output")
	runCmd.Flags().Duration("timeout", 5*time.Minute, "Overall run timeout")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the last written score document",
		RunE:  runShow,
	}
	showCmd.Flags().String("config", "", "Path to YAML config (defaults built in)")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start the monitor HTTP server",
		Long:  "Serves /health, /status, /metrics, and the latest score document at /btis",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().String("config", "", "Path to YAML config (defaults built in)")
	monitorCmd.Flags().String("host", "", "Override listen host")
	monitorCmd.Flags().String("port", "", "Override listen port")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
