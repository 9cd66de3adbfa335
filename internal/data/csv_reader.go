package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Shvm190/heart-disease-mlops/internal/schema"
)

// LoadDataset reads the heart-disease CSV into raw records plus binary
// labels. Empty cells become absent fields (imputed later by the pipeline);
// rows missing more than half of their fields are dropped, and rows missing
// the target are unusable for training and dropped as well.
func LoadDataset(filename, targetColumn string) ([]schema.Record, []int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("insufficient data in %s", filename)
	}

	headers := rows[0]
	targetIdx := -1
	for i, h := range headers {
		if strings.TrimSpace(h) == targetColumn {
			targetIdx = i
		}
	}
	if targetIdx < 0 {
		return nil, nil, fmt.Errorf("target column %q not found in %s", targetColumn, filename)
	}

	var records []schema.Record
	var labels []int

	for line, row := range rows[1:] {
		rec := make(schema.Record, len(headers)-1)
		label := -1

		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" || cell == "?" {
				continue
			}

			value, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: column %s: invalid value %q", line+2, headers[i], cell)
			}

			if i == targetIdx {
				// some published copies grade severity 1-4; serve it binary
				if value.IsPositive() {
					label = 1
				} else {
					label = 0
				}
				continue
			}
			rec[headers[i]] = value
		}

		if label < 0 {
			continue
		}
		if len(rec)*2 < len(schema.Fields) {
			continue
		}

		records = append(records, rec)
		labels = append(labels, label)
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no usable rows in %s", filename)
	}
	return records, labels, nil
}
