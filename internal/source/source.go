// Package source loads card transactions from local exports, Cloud Storage objects
// and BigQuery tables.
package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dvloznov/spending-pie/internal/domain"
	"google.golang.org/api/option"
)

// Source yields every transaction of one export.
type Source interface {
	Load(ctx context.Context) ([]domain.Transaction, error)
	Name() string
}

// Options tune how a source is opened.
type Options struct {
	// Delimiter separates CSV fields. Zero means comma.
	Delimiter rune

	// CredentialsFile is a service account key used by the cloud sources.
	// Empty means Application Default Credentials.
	CredentialsFile string
}

func (o Options) clientOptions() []option.ClientOption {
	if o.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(o.CredentialsFile)}
}

// Open resolves a location to a source:
//
//	gs://bucket/path/export.csv   Cloud Storage object (CSV or XLSX by extension)
//	bq://project.dataset.table    BigQuery table
//	export.xlsx                   local workbook, first sheet
//	anything else                 local delimited file
func Open(uri string, opts Options) (Source, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return nil, &DataLoadError{Source: uri, Err: fmt.Errorf("%w: empty location", ErrUnsupportedSource)}
	case strings.HasPrefix(uri, gcsScheme):
		return newGCSSource(uri, opts)
	case strings.HasPrefix(uri, bigQueryScheme):
		return newBigQuerySource(uri, opts)
	case strings.Contains(uri, "://"):
		return nil, &DataLoadError{Source: uri, Err: ErrUnsupportedSource}
	default:
		return &fileSource{path: uri, format: detectFormat(uri), delimiter: opts.Delimiter}, nil
	}
}

// fileSource reads an export from the local filesystem.
type fileSource struct {
	path      string
	format    format
	delimiter rune
}

func (s *fileSource) Name() string { return s.path }

func (s *fileSource) Load(ctx context.Context) ([]domain.Transaction, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, loadError(s.path, fmt.Errorf("open file: %w", err))
	}
	defer f.Close()

	txs, err := decode(f, s.format, s.delimiter)
	return txs, loadError(s.path, err)
}
