// Command pie draws the credit and debit spending of a 2024 card export as two
// pie charts, optionally listing the records of selected categories.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dvloznov/spending-pie/internal/chart"
	"github.com/dvloznov/spending-pie/internal/config"
	"github.com/dvloznov/spending-pie/internal/logger"
	"github.com/dvloznov/spending-pie/internal/pipeline"
	"github.com/dvloznov/spending-pie/internal/source"
	"github.com/joho/godotenv"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "pie: %v\n", err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "pie: %v\n", err)
		return exitUsage
	}

	log, _ := logger.WithRunID(logger.NewConsole(stderr, logger.ParseLevel(cfg.LogLevel)))
	ctx = logger.WithContext(ctx, log)

	log.Debug().
		Str("data", cfg.DataPath).
		Int("start", cfg.StartMonth).
		Int("end", cfg.EndMonth).
		Strs("exclude_descriptions", cfg.ExcludeDescriptions).
		Strs("exclude_categories", cfg.ExcludeCategories).
		Msg("Starting report")

	src, err := source.Open(cfg.DataPath, source.Options{
		Delimiter:       cfg.DelimiterRune(),
		CredentialsFile: cfg.CredentialsFile,
	})
	if err != nil {
		log.Error().Err(err).Msg("Cannot open data source")
		return exitError
	}

	var renderer chart.Renderer
	if !cfg.NoPie {
		r, err := chart.New(cfg.OutputPath, cfg.Open)
		if err != nil {
			log.Error().Err(err).Msg("Cannot create chart renderer")
			return exitError
		}
		renderer = r
	}

	state := &pipeline.PipelineState{
		Params: pipeline.Params{
			StartMonth:          cfg.StartMonth,
			EndMonth:            cfg.EndMonth,
			ExcludeDescriptions: cfg.ExcludeDescriptions,
			ExcludeCategories:   cfg.ExcludeCategories,
		},
	}
	p := pipeline.NewReportPipeline(src, cfg.Details, stdout, renderer)
	if err := p.Execute(ctx, state); err != nil {
		var loadErr *source.DataLoadError
		if errors.As(err, &loadErr) {
			log.Error().Err(loadErr.Err).Str("source", loadErr.Source).Msg("Cannot load transactions")
		} else {
			log.Error().Err(err).Msg("Report failed")
		}
		return exitError
	}

	if !cfg.NoPie {
		log.Info().Str("output", cfg.OutputPath).Msg("Chart written")
	}
	return exitOK
}
