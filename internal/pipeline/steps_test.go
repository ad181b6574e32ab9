package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/dvloznov/spending-pie/internal/logger"
	"github.com/dvloznov/spending-pie/internal/pipeline"
	"github.com/dvloznov/spending-pie/internal/report"
	"github.com/dvloznov/spending-pie/internal/source"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// MockSource is a mock implementation of source.Source
type MockSource struct {
	LoadFunc func(ctx context.Context) ([]domain.Transaction, error)
}

func (m *MockSource) Load(ctx context.Context) ([]domain.Transaction, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil, nil
}

func (m *MockSource) Name() string { return "mock" }

// MockRenderer records the reports it was asked to draw.
type MockRenderer struct {
	Reports []report.Report
	Err     error
}

func (m *MockRenderer) Render(ctx context.Context, reports []report.Report) error {
	m.Reports = reports
	return m.Err
}

const scenarioCSV = `Posting Date,Description,Category,Amount,Details
01/15/2024,Fresh Market,Groceries,50,CREDIT
02/15/2024,Fresh Market,Groceries,30,CREDIT
01/20/2024,Landlord,Rent,20,DEBIT
01/21/2024,Mystery,Rent,twenty,DEBIT
`

func csvSource(t *testing.T, content string) source.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	src, err := source.Open(path, source.Options{})
	if err != nil {
		t.Fatalf("source.Open() error = %v", err)
	}
	return src
}

func TestReportPipeline_Scenario(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	renderer := &MockRenderer{}
	p := pipeline.NewReportPipeline(csvSource(t, scenarioCSV), []string{"Groceries"}, &out, renderer)

	state := &pipeline.PipelineState{Params: pipeline.Params{StartMonth: 1, EndMonth: 2}}
	if err := p.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(state.Summaries) != 2 || state.Summaries[0].Type != domain.Credit || state.Summaries[1].Type != domain.Debit {
		t.Fatalf("Summaries = %+v, want credit then debit", state.Summaries)
	}
	if got := state.Summaries[0].Total.String(); got != "80" {
		t.Errorf("credit total = %s, want 80", got)
	}
	if got := state.Summaries[1].Total.String(); got != "20" {
		t.Errorf("debit total = %s, want 20 (malformed row dropped)", got)
	}

	if len(renderer.Reports) != 2 {
		t.Fatalf("renderer got %d reports, want 2", len(renderer.Reports))
	}
	if got := renderer.Reports[0].Legend[0].Label; got != "Groceries: 100.0% ($80)" {
		t.Errorf("credit legend = %q", got)
	}
	if !strings.HasSuffix(renderer.Reports[1].Title, "Total: $20") {
		t.Errorf("debit title = %q", renderer.Reports[1].Title)
	}

	// Details print for the credit pass, then an empty listing for the debit pass.
	want := "2024-01-15 Fresh Market $ -50\n" +
		"2024-02-15 Fresh Market $ -30\n" +
		"Total = $ -80\n" +
		"Total = $ 0\n"
	if out.String() != want {
		t.Errorf("details output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestReportPipeline_NoRenderer(t *testing.T) {
	var out bytes.Buffer
	p := pipeline.NewReportPipeline(csvSource(t, scenarioCSV), nil, &out, nil)

	state := &pipeline.PipelineState{Params: pipeline.Params{StartMonth: 1, EndMonth: 1}}
	if err := p.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(state.Reports) != 2 {
		t.Errorf("reports should still be built, got %d", len(state.Reports))
	}
	if out.Len() != 0 {
		t.Errorf("no details requested, got output %q", out.String())
	}
}

func TestReportPipeline_LoadError(t *testing.T) {
	loadErr := &source.DataLoadError{Source: "mock", Err: errors.New("unreadable")}
	src := &MockSource{LoadFunc: func(ctx context.Context) ([]domain.Transaction, error) {
		return nil, loadErr
	}}
	renderer := &MockRenderer{}

	p := pipeline.NewReportPipeline(src, nil, &bytes.Buffer{}, renderer)
	err := p.Execute(context.Background(), &pipeline.PipelineState{Params: pipeline.Params{StartMonth: 1, EndMonth: 1}})

	var dle *source.DataLoadError
	if !errors.As(err, &dle) {
		t.Fatalf("Execute() error = %v, want DataLoadError", err)
	}
	if !strings.Contains(err.Error(), "pipeline step 1 failed") {
		t.Errorf("error should name the failing step, got %v", err)
	}
	if renderer.Reports != nil {
		t.Error("renderer should not run after a load failure")
	}
}

func TestReportPipeline_RenderError(t *testing.T) {
	renderer := &MockRenderer{Err: errors.New("disk full")}
	p := pipeline.NewReportPipeline(csvSource(t, scenarioCSV), nil, &bytes.Buffer{}, renderer)

	err := p.Execute(context.Background(), &pipeline.PipelineState{Params: pipeline.Params{StartMonth: 1, EndMonth: 1}})
	if err == nil || !strings.Contains(err.Error(), "pipeline step 4 failed") {
		t.Errorf("Execute() error = %v, want step 4 failure", err)
	}
}

func TestReportPipeline_EmptyResult(t *testing.T) {
	renderer := &MockRenderer{}
	p := pipeline.NewReportPipeline(csvSource(t, scenarioCSV), nil, &bytes.Buffer{}, renderer)

	state := &pipeline.PipelineState{Params: pipeline.Params{StartMonth: 7, EndMonth: 9}}
	if err := p.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, r := range renderer.Reports {
		if len(r.Legend) != 0 || !r.Total.IsZero() {
			t.Errorf("expected empty %s report, got %+v", r.Type, r)
		}
	}
}

func TestReportPipeline_InvalidMonthRange(t *testing.T) {
	tests := []struct {
		name   string
		params pipeline.Params
	}{
		{"start zero", pipeline.Params{StartMonth: 0, EndMonth: 2}},
		{"end thirteen", pipeline.Params{StartMonth: 1, EndMonth: 13}},
		{"reversed", pipeline.Params{StartMonth: 6, EndMonth: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := &MockRenderer{}
			p := pipeline.NewReportPipeline(csvSource(t, scenarioCSV), nil, &bytes.Buffer{}, renderer)

			state := &pipeline.PipelineState{Params: tt.params}
			err := p.Execute(context.Background(), state)
			if err == nil || !strings.Contains(err.Error(), "pipeline step 2 failed") {
				t.Fatalf("Execute() error = %v, want step 2 failure", err)
			}
			if len(state.Summaries) != 0 || renderer.Reports != nil {
				t.Errorf("nothing should be summarized or rendered, got %d summaries", len(state.Summaries))
			}
		})
	}
}

func TestReportPipeline_LogsPerType(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf, zerolog.DebugLevel))

	p := pipeline.NewReportPipeline(csvSource(t, scenarioCSV), nil, &bytes.Buffer{}, nil)
	state := &pipeline.PipelineState{Params: pipeline.Params{StartMonth: 1, EndMonth: 2}}
	if err := p.Execute(ctx, state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"type":"CREDIT"`,
		`"type":"DEBIT"`,
		`"start_month":1`,
		`"end_month":2`,
		`"total":"80.00"`,
		"Chart rendering disabled",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
