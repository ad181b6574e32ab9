package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/dvloznov/spending-pie/internal/chart"
	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/dvloznov/spending-pie/internal/logger"
	"github.com/dvloznov/spending-pie/internal/report"
	"github.com/dvloznov/spending-pie/internal/source"
)

// PipelineStep represents a single step of a report run.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Params    Params // Type is set per summary
	Records   []domain.Transaction
	Summaries []domain.Summary
	Reports   []report.Report
}

// Step 1: LoadStep reads every record of the source.
type LoadStep struct {
	Source source.Source
}

func (s *LoadStep) Execute(ctx context.Context, state *PipelineState) error {
	records, err := s.Source.Load(ctx)
	if err != nil {
		return err
	}
	state.Records = records

	log := logger.FromContext(ctx)
	log.Info().Str("source", s.Source.Name()).Int("records", len(records)).Msg("Loaded transactions")
	return nil
}

// Step 2: SummarizeStep filters and aggregates the records once per type, in order.
type SummarizeStep struct {
	Types []domain.TransactionType
}

func (s *SummarizeStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := state.Params.Validate(); err != nil {
		return fmt.Errorf("SummarizeStep: %w", err)
	}

	log := logger.FromContext(ctx)
	for _, t := range s.Types {
		params := state.Params.WithType(t)
		filtered := Filter(state.Records, params)
		summary := Aggregate(t, filtered)
		state.Summaries = append(state.Summaries, summary)

		typeLog := logger.WithFields(log, map[string]interface{}{
			"type":        string(t),
			"start_month": params.StartMonth,
			"end_month":   params.EndMonth,
		})
		typeLog.Info().
			Int("records", len(filtered)).
			Int("categories", len(summary.Categories)).
			Str("total", summary.Total.StringFixed(2)).
			Msg("Aggregated transactions")
	}
	return nil
}

// Step 3: ReportStep builds titles and legends and prints the requested details.
type ReportStep struct {
	Details []string
	Out     io.Writer
}

func (s *ReportStep) Execute(ctx context.Context, state *PipelineState) error {
	opts := report.Options{
		StartMonth:          state.Params.StartMonth,
		EndMonth:            state.Params.EndMonth,
		ExcludeDescriptions: state.Params.ExcludeDescriptions,
		ExcludeCategories:   state.Params.ExcludeCategories,
	}
	for _, summary := range state.Summaries {
		state.Reports = append(state.Reports, report.Build(summary, opts))
		if len(s.Details) == 0 {
			continue
		}
		if err := report.PrintDetails(s.Out, summary, s.Details); err != nil {
			return err
		}
	}
	return nil
}

// Step 4: RenderStep draws the charts. A nil renderer skips drawing.
type RenderStep struct {
	Renderer chart.Renderer
}

func (s *RenderStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Renderer == nil {
		log := logger.FromContext(ctx)
		log.Debug().Msg("Chart rendering disabled")
		return nil
	}
	return s.Renderer.Render(ctx, state.Reports)
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewReportPipeline creates the standard load, summarize, report, render pipeline:
// credit first, then debit. A nil renderer suppresses the charts only.
func NewReportPipeline(src source.Source, details []string, out io.Writer, renderer chart.Renderer) *Pipeline {
	return NewPipeline(
		&LoadStep{Source: src},
		&SummarizeStep{Types: []domain.TransactionType{domain.Credit, domain.Debit}},
		&ReportStep{Details: details, Out: out},
		&RenderStep{Renderer: renderer},
	)
}
