package chart

import (
	"context"
	"fmt"
	"os"

	"github.com/dvloznov/spending-pie/internal/logger"
	"github.com/dvloznov/spending-pie/internal/report"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLRenderer writes an interactive page with one ECharts pie per report.
type HTMLRenderer struct {
	Path string
}

func (r *HTMLRenderer) Render(ctx context.Context, reports []report.Report) error {
	page := components.NewPage()
	page.PageTitle = "Card transactions"
	page.SetLayout(components.PageFlexLayout)
	for _, rep := range reports {
		page.AddCharts(newPie(rep))
	}

	f, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("HTMLRenderer: create %q: %w", r.Path, err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("HTMLRenderer: render: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("HTMLRenderer: close %q: %w", r.Path, err)
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("path", r.Path).Int("charts", len(reports)).Msg("Wrote HTML charts")
	return nil
}

func newPie(rep report.Report) *charts.Pie {
	title, subtitle := splitTitle(rep.Title)

	colors := make([]string, 0, len(rep.Legend))
	items := make([]opts.PieData, 0, len(rep.Legend))
	for i, e := range rep.Legend {
		items = append(items, opts.PieData{Name: e.Label, Value: e.Amount.InexactFloat64()})
		colors = append(colors, colorAt(i))
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Orient: "vertical",
			Right:  "0",
			Top:    "middle",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: "{b}"}),
		charts.WithColorsOpts(opts.Colors(colors)),
	)
	pie.AddSeries(string(rep.Type), items).
		SetSeriesOptions(
			charts.WithPieChartOpts(opts.PieChart{Radius: "45%", Center: []string{"30%", "55%"}}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)
	return pie
}
