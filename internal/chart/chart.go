// Package chart draws the income and expense pies side by side, credit on the
// left and debit on the right, with each legend outside its plot area.
package chart

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dvloznov/spending-pie/internal/logger"
	"github.com/dvloznov/spending-pie/internal/report"
	"github.com/pkg/browser"
)

// Renderer draws a set of reports, left to right.
type Renderer interface {
	Render(ctx context.Context, reports []report.Report) error
}

// palette is cycled over the slices of each pie.
var palette = []string{
	"#A29BFE",
	"#74B9FF",
	"#81ECEC",
	"#FFEAA7",
	"#FAB1A0",
	"#DFE6E9",
	"#55EFC4",
	"#FD79A8",
	"#E17055",
	"#00CEC9",
}

// New returns the renderer for the output path's extension (.html, .xlsx or .pdf).
// When open is set the file is handed to the desktop's default viewer afterwards.
func New(path string, open bool) (Renderer, error) {
	var r Renderer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		r = &HTMLRenderer{Path: path}
	case ".xlsx":
		r = &XLSXRenderer{Path: path}
	case ".pdf":
		r = &PDFRenderer{Path: path}
	default:
		return nil, fmt.Errorf("chart.New: unsupported output %q: want .html, .xlsx or .pdf", path)
	}
	if open {
		return &opener{Renderer: r, path: path, open: browser.OpenFile}, nil
	}
	return r, nil
}

// opener shows the rendered file once it has been written.
type opener struct {
	Renderer
	path string
	open func(path string) error
}

func (o *opener) Render(ctx context.Context, reports []report.Report) error {
	if err := o.Renderer.Render(ctx, reports); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	if err := o.open(o.path); err != nil {
		// The file is written; failing to display it is not fatal.
		log.Warn().Err(err).Str("path", o.path).Msg("Could not open chart viewer")
		return nil
	}
	log.Info().Str("path", o.path).Msg("Opened charts")
	return nil
}

// splitTitle separates the first title line from the rest.
func splitTitle(title string) (head, rest string) {
	head, rest, _ = strings.Cut(title, "\n")
	return head, rest
}

func colorAt(i int) string {
	return palette[i%len(palette)]
}

// hexRGB decodes "#RRGGBB".
func hexRGB(hex string) (r, g, b uint8) {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
