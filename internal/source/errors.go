package source

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing column")

	// ErrUnsupportedSource is returned for URIs no source can handle.
	ErrUnsupportedSource = errors.New("unsupported source")
)

// DataLoadError reports that transactions could not be read from a source.
// It is always fatal for a run.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

func loadError(source string, err error) error {
	if err == nil {
		return nil
	}
	var dle *DataLoadError
	if errors.As(err, &dle) {
		return err
	}
	return &DataLoadError{Source: source, Err: err}
}
