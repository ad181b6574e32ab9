package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/spending-pie/internal/domain"
	"github.com/dvloznov/spending-pie/internal/logger"
	"google.golang.org/api/iterator"
)

const bigQueryScheme = "bq://"

var bigQueryIdent = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// bigQueryRow mirrors the export columns in snake_case. Amount is read as
// STRING so malformed values are dropped the same way as in files.
type bigQueryRow struct {
	PostingDate bigquery.NullDate   `bigquery:"posting_date"`
	Description bigquery.NullString `bigquery:"description"`
	Category    bigquery.NullString `bigquery:"category"`
	Amount      bigquery.NullString `bigquery:"amount"`
	Details     bigquery.NullString `bigquery:"details"`
}

func (r bigQueryRow) toTransaction(row int) domain.Transaction {
	tx := domain.Transaction{
		Description: r.Description.StringVal,
		Category:    r.Category.StringVal,
		Type:        domain.TransactionType(r.Details.StringVal),
		Row:         row,
	}
	if r.PostingDate.Valid {
		tx.PostingDate = civilToTime(r.PostingDate.Date)
	}
	if r.Amount.Valid {
		tx.Amount = parseAmount(r.Amount.StringVal)
	}
	return tx
}

func civilToTime(d civil.Date) time.Time {
	return d.In(time.UTC)
}

// bigQuerySource reads every row of one table.
type bigQuerySource struct {
	uri     string
	project string
	dataset string
	table   string
	opts    Options
}

func newBigQuerySource(uri string, opts Options) (*bigQuerySource, error) {
	project, dataset, table, err := parseBigQueryURI(uri)
	if err != nil {
		return nil, &DataLoadError{Source: uri, Err: err}
	}
	return &bigQuerySource{uri: uri, project: project, dataset: dataset, table: table, opts: opts}, nil
}

// parseBigQueryURI splits "bq://project.dataset.table".
func parseBigQueryURI(uri string) (project, dataset, table string, err error) {
	if !strings.HasPrefix(uri, bigQueryScheme) {
		return "", "", "", fmt.Errorf("invalid BigQuery URI: %s", uri)
	}
	parts := strings.Split(strings.TrimPrefix(uri, bigQueryScheme), ".")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("invalid BigQuery URI (want bq://project.dataset.table): %s", uri)
	}
	for _, p := range parts {
		if !bigQueryIdent.MatchString(p) {
			return "", "", "", fmt.Errorf("invalid BigQuery identifier %q in %s", p, uri)
		}
	}
	return parts[0], parts[1], parts[2], nil
}

func (s *bigQuerySource) Name() string { return s.uri }

func (s *bigQuerySource) query() string {
	return fmt.Sprintf(`
		SELECT
			posting_date,
			description,
			category,
			CAST(amount AS STRING) AS amount,
			details
		FROM `+"`%s.%s.%s`", s.project, s.dataset, s.table)
}

func (s *bigQuerySource) Load(ctx context.Context) ([]domain.Transaction, error) {
	log := logger.FromContext(ctx)

	client, err := bigquery.NewClient(ctx, s.project, s.opts.clientOptions()...)
	if err != nil {
		return nil, loadError(s.uri, fmt.Errorf("bigquery client: %w", err))
	}
	defer client.Close()

	it, err := client.Query(s.query()).Read(ctx)
	if err != nil {
		return nil, loadError(s.uri, fmt.Errorf("query read: %w", err))
	}

	var txs []domain.Transaction
	for {
		var r bigQueryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, loadError(s.uri, fmt.Errorf("iterating rows: %w", err))
		}
		txs = append(txs, r.toTransaction(len(txs)+1))
	}

	log.Debug().Int("rows", len(txs)).Str("table", s.table).Msg("Read BigQuery rows")
	return txs, nil
}
