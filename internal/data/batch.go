package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Shvm190/heart-disease-mlops/internal/schema"
)

// LoadScoringBatch reads a feature-only CSV (no target column) into records
// for batch inference. Unlike the training loader it keeps every row; rows
// with defects surface as per-record validation errors at predict time
// rather than being silently dropped.
func LoadScoringBatch(filename string) ([]schema.Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no rows to score in %s", filename)
	}

	headers := rows[0]
	records := make([]schema.Record, 0, len(rows)-1)

	for line, row := range rows[1:] {
		rec := make(schema.Record, len(headers))
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" || cell == "?" {
				continue
			}
			value, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: invalid value %q", line+2, headers[i], cell)
			}
			rec[headers[i]] = value
		}
		records = append(records, rec)
	}

	return records, nil
}
