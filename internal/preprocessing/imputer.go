package preprocessing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Shvm190/heart-disease-mlops/internal/schema"
)

// Imputer learns one fill value per schema field: the median for numeric
// fields, the most frequent code for categorical fields. At transform time
// a record's missing field is replaced by the stored fill value.
type Imputer struct {
	Fill     map[string]decimal.Decimal
	IsFitted bool
}

func NewImputer() *Imputer {
	return &Imputer{
		Fill: make(map[string]decimal.Decimal),
	}
}

func (im *Imputer) Fit(records []schema.Record) error {
	im.Fill = make(map[string]decimal.Decimal)

	for _, f := range schema.Fields {
		values := make([]decimal.Decimal, 0, len(records))
		for _, rec := range records {
			if v, ok := rec[f.Name]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return fmt.Errorf("cannot impute %s: no observed values", f.Name)
		}

		if f.Numeric {
			im.Fill[f.Name] = median(values)
		} else {
			im.Fill[f.Name] = mostFrequent(values)
		}
	}

	im.IsFitted = true
	return nil
}

// Value returns the stored fill value for a field.
func (im *Imputer) Value(field string) (decimal.Decimal, bool) {
	v, ok := im.Fill[field]
	return v, ok
}

func median(values []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
}

// mostFrequent breaks count ties toward the smaller code so that repeated
// fits on the same batch always learn the same fill value.
func mostFrequent(values []decimal.Decimal) decimal.Decimal {
	counts := make(map[string]int)
	byKey := make(map[string]decimal.Decimal)
	for _, v := range values {
		key := v.String()
		counts[key]++
		byKey[key] = v
	}

	var best decimal.Decimal
	bestCount := 0
	for key, count := range counts {
		v := byKey[key]
		if count > bestCount || (count == bestCount && v.LessThan(best)) {
			best = v
			bestCount = count
		}
	}
	return best
}
