package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/xuri/excelize/v2"
)

type format int

const (
	formatCSV format = iota
	formatXLSX
)

// detectFormat picks the decoder from the file extension; unknown extensions are read as CSV.
func detectFormat(name string) format {
	if strings.EqualFold(path.Ext(name), ".xlsx") {
		return formatXLSX
	}
	return formatCSV
}

func decode(r io.Reader, f format, delimiter rune) ([]domain.Transaction, error) {
	switch f {
	case formatXLSX:
		return decodeXLSX(r)
	default:
		return decodeCSV(r, delimiter)
	}
}

// decodeCSV reads a delimited export whose first record is the header.
func decodeCSV(r io.Reader, delimiter rune) ([]domain.Transaction, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decodeCSV: empty input: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("decodeCSV: read header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decodeCSV: read records: %w", err)
	}

	txs, err := decodeRows(header, rows)
	if err != nil {
		return nil, fmt.Errorf("decodeCSV: %w", err)
	}
	return txs, nil
}

// decodeXLSX reads the first worksheet of a workbook.
func decodeXLSX(r io.Reader) ([]domain.Transaction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("decodeXLSX: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("decodeXLSX: workbook has no sheets: %w", ErrMissingColumn)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("decodeXLSX: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("decodeXLSX: sheet %q is empty: %w", sheets[0], ErrMissingColumn)
	}

	txs, err := decodeRows(rows[0], rows[1:])
	if err != nil {
		return nil, fmt.Errorf("decodeXLSX: %w", err)
	}
	return txs, nil
}
