package chart

import (
	"context"
	"fmt"
	"math"

	"github.com/dvloznov/spending-pie/internal/logger"
	"github.com/dvloznov/spending-pie/internal/report"
	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	pdfFont       = "goregular"
	pdfPageWidth  = 841.89 // A4 landscape, points
	pdfPageHeight = 595.28
	pdfMargin     = 24.0
	pdfRadius     = 105.0
	pdfStartAngle = 140.0 // degrees, counter-clockwise from 3 o'clock
	pdfLegendRow  = 13.0
	pdfArcStep    = 2.0 // degrees per polygon edge
)

// PDFRenderer draws the pies on one landscape page.
type PDFRenderer struct {
	Path string
}

func (r *PDFRenderer) Render(ctx context.Context, reports []report.Report) error {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: gopdf.Rect{W: pdfPageWidth, H: pdfPageHeight}})
	pdf.AddPage()

	if err := pdf.AddTTFFontData(pdfFont, goregular.TTF); err != nil {
		return fmt.Errorf("PDFRenderer: load font: %w", err)
	}

	slot := pdfPageWidth
	if len(reports) > 0 {
		slot = pdfPageWidth / float64(len(reports))
	}
	for i, rep := range reports {
		if err := drawReport(pdf, rep, float64(i)*slot); err != nil {
			return fmt.Errorf("PDFRenderer: %s: %w", rep.Type, err)
		}
	}

	if err := pdf.WritePdf(r.Path); err != nil {
		return fmt.Errorf("PDFRenderer: write %q: %w", r.Path, err)
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("path", r.Path).Int("charts", len(reports)).Msg("Wrote PDF charts")
	return nil
}

func drawReport(pdf *gopdf.GoPdf, rep report.Report, left float64) error {
	if err := pdf.SetFont(pdfFont, "", 11); err != nil {
		return err
	}
	pdf.SetTextColor(0, 0, 0)
	y := pdfMargin
	for _, line := range splitLines(rep.Title) {
		pdf.SetXY(left+pdfMargin, y)
		if err := pdf.Cell(nil, line); err != nil {
			return err
		}
		y += 15
	}

	cx := left + pdfMargin + pdfRadius
	cy := pdfPageHeight / 2

	if rep.Total.IsZero() {
		pdf.SetXY(cx-pdfRadius/2, cy)
		return pdf.Cell(nil, "No transactions")
	}

	total := rep.Total.InexactFloat64()
	start := pdfStartAngle
	for i, e := range rep.Legend {
		sweep := 360 * e.Amount.InexactFloat64() / total
		pdf.SetFillColor(hexRGB(colorAt(i)))
		pdf.Polygon(wedge(cx, cy, pdfRadius, start, sweep), "F")
		start += sweep
	}

	if err := pdf.SetFont(pdfFont, "", 7); err != nil {
		return err
	}
	lx := cx + pdfRadius + 16
	ly := cy - float64(len(rep.Legend))*pdfLegendRow/2
	for i, e := range rep.Legend {
		pdf.SetFillColor(hexRGB(colorAt(i)))
		pdf.RectFromUpperLeftWithStyle(lx, ly, 8, 8, "F")
		pdf.SetXY(lx+12, ly)
		if err := pdf.Cell(nil, e.Label); err != nil {
			return err
		}
		ly += pdfLegendRow
	}
	return nil
}

// wedge approximates a pie slice as a polygon: the centre followed by points
// along the arc from start to start+sweep degrees. Page y grows downwards.
func wedge(cx, cy, radius, start, sweep float64) []gopdf.Point {
	steps := int(math.Ceil(math.Abs(sweep) / pdfArcStep))
	if steps < 1 {
		steps = 1
	}
	points := make([]gopdf.Point, 0, steps+2)
	points = append(points, gopdf.Point{X: cx, Y: cy})
	for i := 0; i <= steps; i++ {
		a := (start + sweep*float64(i)/float64(steps)) * math.Pi / 180
		points = append(points, gopdf.Point{X: cx + radius*math.Cos(a), Y: cy - radius*math.Sin(a)})
	}
	return points
}

func splitLines(s string) []string {
	var lines []string
	for {
		head, rest := splitTitle(s)
		lines = append(lines, head)
		if rest == "" {
			return lines
		}
		s = rest
	}
}
