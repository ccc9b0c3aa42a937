// salespulse runs the retail sales reporting pipeline: it cleans the raw
// sales CSV, computes the descriptive aggregates, renders the static charts
// and serves the interactive dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"salespulse/internal/app"
	"salespulse/internal/config"
	"salespulse/internal/infrastructure"
)

// Version is set at build time
var Version = "dev"

var (
	cfgFile    string
	port       int
	inputCSV   string
	cleanedCSV string
	chartsDir  string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "salespulse",
		Short:         "Retail sales reporting pipeline and dashboard",
		Long:          "salespulse ingests a retail sales CSV, cleans it, computes descriptive aggregates,\nrenders static charts and serves an interactive filterable dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: environment variables only)")

	serve := stageCmd("serve", "Serve the interactive dashboard from the cleaned table",
		func(ctx context.Context, a *app.Application) error { return a.Serve(ctx) })
	serve.Flags().IntVar(&port, "port", 0, "override the configured dashboard port")

	run := stageCmd("run", "Run the full pipeline, then serve the dashboard",
		func(ctx context.Context, a *app.Application) error { return a.Run(ctx) })
	run.Flags().IntVar(&port, "port", 0, "override the configured dashboard port")

	clean := stageCmd("clean", "Clean the raw sales CSV into the canonical cleaned table",
		func(ctx context.Context, a *app.Application) error { return a.Clean(ctx) })
	clean.Flags().StringVar(&inputCSV, "input", "", "override the configured raw CSV path")
	clean.Flags().StringVar(&cleanedCSV, "output", "", "override the configured cleaned CSV path")

	report := stageCmd("report", "Render the static chart images",
		func(ctx context.Context, a *app.Application) error { return a.Render(ctx) })
	report.Flags().StringVar(&chartsDir, "output", "", "override the configured visualizations directory")

	root.AddCommand(
		clean,
		stageCmd("analyze", "Compute and print the descriptive aggregates",
			func(ctx context.Context, a *app.Application) error { return a.Analyze(ctx) }),
		report,
		serve,
		run,
		versionCmd(),
	)
	return root
}

// stageCmd builds a command that loads config, initializes the logger and
// runs one pipeline operation with signal-aware cancellation.
func stageCmd(use, short string, run func(context.Context, *app.Application) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if inputCSV != "" {
				cfg.Paths.InputCSV = inputCSV
			}
			if cleanedCSV != "" {
				cfg.Paths.CleanedCSV = cleanedCSV
			}
			if chartsDir != "" {
				cfg.Paths.VisualizationsDir = chartsDir
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := infrastructure.NewLogger(cfg.Logging, cfg.LogFilePath())
			if err != nil {
				return err
			}
			defer logger.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, app.New(cfg, logger.Logger))
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "salespulse %s\n", Version)
		},
	}
}
