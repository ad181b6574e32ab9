package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/dvloznov/spending-pie/internal/logger"
)

const (
	gcsScheme   = "gs://"
	gcsDeadline = 2 * time.Minute
)

type fetchFunc func(ctx context.Context, bucket, object string) ([]byte, error)

// gcsSource reads an export stored in Google Cloud Storage.
type gcsSource struct {
	uri       string
	bucket    string
	object    string
	format    format
	delimiter rune
	fetch     fetchFunc
}

func newGCSSource(uri string, opts Options) (*gcsSource, error) {
	bucket, object, err := parseGCSURI(uri)
	if err != nil {
		return nil, &DataLoadError{Source: uri, Err: err}
	}
	return &gcsSource{
		uri:       uri,
		bucket:    bucket,
		object:    object,
		format:    detectFormat(object),
		delimiter: opts.Delimiter,
		fetch: func(ctx context.Context, bucket, object string) ([]byte, error) {
			return fetchObject(ctx, bucket, object, opts)
		},
	}, nil
}

func (s *gcsSource) Name() string { return s.uri }

func (s *gcsSource) Load(ctx context.Context) ([]domain.Transaction, error) {
	log := logger.FromContext(ctx)
	log.Debug().Str("bucket", s.bucket).Str("object", s.object).Msg("Fetching export from GCS")

	data, err := s.fetch(ctx, s.bucket, s.object)
	if err != nil {
		return nil, loadError(s.uri, err)
	}

	txs, err := decode(bytes.NewReader(data), s.format, s.delimiter)
	return txs, loadError(s.uri, err)
}

// parseGCSURI splits "gs://bucket/path/to/file.csv" into bucket and object.
func parseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// fetchObject downloads the object bytes.
// It assumes Application Default Credentials unless opts names a key file.
func fetchObject(ctx context.Context, bucket, object string, opts Options) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsDeadline)
	defer cancel()

	client, err := storage.NewClient(ctx, opts.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("fetchObject: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchObject: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetchObject: reading bytes: %w", err)
	}
	return data, nil
}
