package records

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/telforge/phonegen/internal/domain/record"
)

// csvColumns is the expected row layout:
// prefix, middle, province, city, operator.
const csvColumns = 5

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
}

// Importer loads allocation records from CSV exports into the store.
// Exports from legacy tooling are often GB18030 encoded; files that are
// not valid UTF-8 are transcoded before parsing.
type Importer struct {
	store  *Store
	logger *zap.Logger
}

// NewImporter creates an importer backed by store.
func NewImporter(store *Store, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: store, logger: logger}
}

// ImportCSV reads path and replaces the stored records with its rows.
// A populated store is left untouched unless force is set. The first
// row is a header; rows with the wrong column count or values failing
// validation are skipped and counted.
func (im *Importer) ImportCSV(ctx context.Context, path string, force bool) (Result, error) {
	if !force {
		n, err := im.store.Count(ctx)
		if err != nil {
			return Result{}, err
		}
		if n > 0 {
			im.logger.Info("store already populated, skipping import", zap.Int64("records", n))
			return Result{}, nil
		}
	}

	rows, err := readRows(path)
	if err != nil {
		return Result{}, err
	}

	var (
		recs    []record.Record
		skipped int
	)
	for _, row := range rows[1:] {
		rec, ok := parseRow(row)
		if !ok {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}

	if err := im.store.ReplaceAll(ctx, recs); err != nil {
		return Result{}, err
	}
	im.logger.Info("records imported",
		zap.String("csv", path),
		zap.Int("imported", len(recs)),
		zap.Int("skipped", skipped),
	)
	return Result{Imported: len(recs), Skipped: skipped}, nil
}

func readRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("decode csv %s: %w", path, err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	// Column counts are checked per row so one malformed line does not
	// abort the whole import.
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv %s is empty", path)
	}
	return rows, nil
}

func parseRow(row []string) (record.Record, bool) {
	if len(row) != csvColumns {
		return record.Record{}, false
	}
	op, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil {
		return record.Record{}, false
	}
	rec, err := record.New(
		strings.TrimSpace(row[0]),
		strings.TrimSpace(row[1]),
		strings.TrimSpace(row[2]),
		strings.TrimSpace(row[3]),
		record.Operator(op),
	)
	if err != nil {
		return record.Record{}, false
	}
	return rec, true
}
