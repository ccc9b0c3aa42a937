// Package app wires the pipeline stages together and runs them in order:
// clean, analyze, render, serve. The orchestrator halts on the first stage
// failure; files already written by completed stages are kept.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"salespulse/internal/analysis"
	"salespulse/internal/cleaning"
	"salespulse/internal/config"
	"salespulse/internal/dataset"
	"salespulse/internal/report"
	"salespulse/internal/services"
	transport "salespulse/internal/transport/http"
)

// Application is the dependency container for one pipeline run
type Application struct {
	Config *config.Config
	Logger *slog.Logger

	// Stdout receives the human-readable analysis summary
	Stdout io.Writer
}

// New creates an application from loaded configuration and an injected
// logger.
func New(cfg *config.Config, logger *slog.Logger) *Application {
	return &Application{
		Config: cfg,
		Logger: logger,
		Stdout: os.Stdout,
	}
}

// Clean runs the ingestion and cleaning stage: read the raw CSV, clean it,
// and persist the canonical cleaned table.
func (a *Application) Clean(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "preprocessing data",
		slog.String("input", a.Config.Paths.InputCSV))

	raw, err := dataset.ReadRaw(a.Config.Paths.InputCSV)
	if err != nil {
		return err
	}

	cleaned, err := cleaning.NewCleaner(a.Logger).Clean(raw)
	if err != nil {
		return err
	}

	if err := dataset.WriteCleaned(a.Config.Paths.CleanedCSV, cleaned); err != nil {
		return fmt.Errorf("failed to persist cleaned table: %w", err)
	}

	a.Logger.InfoContext(ctx, "data preprocessing completed",
		slog.String("output", a.Config.Paths.CleanedCSV),
		slog.Int("rows", len(cleaned)))
	return nil
}

// Analyze runs the aggregation stage over the persisted cleaned table and
// prints the summary block. The cleaned CSV is reloaded rather than passed
// in memory; the flat file is the canonical hand-off between stages.
func (a *Application) Analyze(ctx context.Context) error {
	records, err := dataset.ReadCleaned(a.Config.Paths.CleanedCSV)
	if err != nil {
		return err
	}

	result := analysis.NewAnalyzer(a.Logger).Analyze(records)
	fmt.Fprintln(a.Stdout, "Analysis Results:")
	result.WriteSummary(a.Stdout)
	return nil
}

// Render runs the static report stage, writing the chart images
func (a *Application) Render(ctx context.Context) error {
	records, err := dataset.ReadCleaned(a.Config.Paths.CleanedCSV)
	if err != nil {
		return err
	}

	written, err := report.NewRenderer(a.Logger).Render(records, a.Config.Paths.VisualizationsDir)
	for _, path := range written {
		fmt.Fprintf(a.Stdout, "Saved: %s\n", path)
	}
	return err
}

// RunPipeline executes clean, analyze and render sequentially, stopping at
// the first failing stage.
func (a *Application) RunPipeline(ctx context.Context) error {
	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"clean", a.Clean},
		{"analyze", a.Analyze},
		{"render", a.Render},
	}
	for _, stage := range stages {
		if err := a.timed(ctx, stage.name, stage.run); err != nil {
			a.Logger.ErrorContext(ctx, "pipeline stage failed",
				slog.String("stage", stage.name),
				slog.String("error", err.Error()))
			return fmt.Errorf("%s stage: %w", stage.name, err)
		}
	}
	return nil
}

// Serve loads the cleaned table and runs the dashboard server until ctx is
// cancelled, then shuts down gracefully.
func (a *Application) Serve(ctx context.Context) error {
	records, err := dataset.ReadCleaned(a.Config.Paths.CleanedCSV)
	if err != nil {
		return err
	}

	service := services.NewDashboardService(records, a.Config.Paths.OutputsDir, a.Logger)
	metrics := transport.NewMetrics()
	metrics.DatasetRows.Set(float64(service.RowCount()))
	handler := transport.NewDashboardHandler(service, metrics, a.Logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      transport.NewRouter(handler, metrics),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("dashboard listening",
			slog.String("addr", server.Addr),
			slog.Int("rows", service.RowCount()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	a.Logger.Info("shutting down dashboard")
	return server.Shutdown(shutdownCtx)
}

// Run executes the full pipeline and then serves the dashboard.
func (a *Application) Run(ctx context.Context) error {
	if err := a.RunPipeline(ctx); err != nil {
		return err
	}
	return a.Serve(ctx)
}

// timed logs the elapsed time of one stage
func (a *Application) timed(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	a.Logger.InfoContext(ctx, "stage finished",
		slog.String("stage", name),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("ok", err == nil))
	return err
}
