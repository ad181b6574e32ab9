package chart

import (
	"context"
	"fmt"

	"github.com/dvloznov/spending-pie/internal/logger"
	"github.com/dvloznov/spending-pie/internal/report"
	"github.com/xuri/excelize/v2"
)

const (
	chartSheet   = "Charts"
	chartWidth   = 640
	chartHeight  = 420
	chartColStep = 11 // columns between two chart anchors
)

// XLSXRenderer writes a workbook with one data sheet per report and native
// pie charts placed side by side on the first sheet.
type XLSXRenderer struct {
	Path string
}

func (r *XLSXRenderer) Render(ctx context.Context, reports []report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", chartSheet); err != nil {
		return fmt.Errorf("XLSXRenderer: rename sheet: %w", err)
	}

	for i, rep := range reports {
		sheet := string(rep.Type)
		if err := writeDataSheet(f, sheet, rep); err != nil {
			return fmt.Errorf("XLSXRenderer: %s data: %w", sheet, err)
		}

		anchor, err := excelize.CoordinatesToCellName(1+i*chartColStep, 1)
		if err != nil {
			return fmt.Errorf("XLSXRenderer: anchor: %w", err)
		}
		if len(rep.Legend) == 0 {
			// Nothing to plot; keep the title so the slot is not blank.
			if err := f.SetCellValue(chartSheet, anchor, rep.Title); err != nil {
				return fmt.Errorf("XLSXRenderer: %s title: %w", sheet, err)
			}
			continue
		}
		if err := f.AddChart(chartSheet, anchor, pieChart(sheet, rep)); err != nil {
			return fmt.Errorf("XLSXRenderer: %s chart: %w", sheet, err)
		}
	}

	if err := f.SaveAs(r.Path); err != nil {
		return fmt.Errorf("XLSXRenderer: save %q: %w", r.Path, err)
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("path", r.Path).Int("charts", len(reports)).Msg("Wrote XLSX charts")
	return nil
}

func writeDataSheet(f *excelize.File, sheet string, rep report.Report) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := []interface{}{"Category", "Amount", "Percent", "Label"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, e := range rep.Legend {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{e.Category, e.Amount.InexactFloat64(), e.Percent.InexactFloat64(), e.Label}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "D", 24)
}

// pieChart plots column B of the data sheet, named by the legend labels in column D.
func pieChart(sheet string, rep report.Report) *excelize.Chart {
	last := len(rep.Legend) + 1
	return &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$D$2:$D$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		}},
		Title:     []excelize.RichTextRun{{Text: rep.Title}},
		Legend:    excelize.ChartLegend{Position: "right"},
		Dimension: excelize.ChartDimension{Width: chartWidth, Height: chartHeight},
	}
}
