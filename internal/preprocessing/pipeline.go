package preprocessing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Shvm190/heart-disease-mlops/internal/schema"
)

var (
	// ErrNotFitted is returned when Transform runs before Fit.
	ErrNotFitted = errors.New("pipeline must be fitted before transform")
	// ErrInsufficientData is returned when Fit receives an empty batch.
	ErrInsufficientData = errors.New("cannot fit pipeline on an empty batch")
)

// Pipeline turns raw records into fixed-width feature vectors: missing
// fields are imputed, numeric fields standardized, categorical fields passed
// through as their codes. The column order is fixed at fit time (numeric
// block first, then categorical, each in schema order) and never changes
// afterwards, so a fitted pipeline and the model trained on its output stay
// compatible.
type Pipeline struct {
	Columns  []string
	Imputer  *Imputer
	Scaler   *Scaler
	IsFitted bool
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		Imputer: NewImputer(),
		Scaler:  NewScaler(),
	}
}

// Fit learns imputation fill values and scaling statistics from a training
// batch. The batch must expose every schema field in at least one record.
func (p *Pipeline) Fit(records []schema.Record) error {
	if len(records) == 0 {
		return ErrInsufficientData
	}
	if err := schema.CheckBatch(records); err != nil {
		return err
	}

	if err := p.Imputer.Fit(records); err != nil {
		return err
	}

	numeric := schema.NumericFields()
	X := make([][]decimal.Decimal, len(records))
	for i, rec := range records {
		X[i] = make([]decimal.Decimal, len(numeric))
		for j, name := range numeric {
			X[i][j] = p.fieldValue(rec, name)
		}
	}
	if err := p.Scaler.Fit(X); err != nil {
		return err
	}

	p.Columns = append(append([]string{}, numeric...), schema.CategoricalFields()...)
	p.IsFitted = true
	return nil
}

// Transform applies the fitted state to a batch of records. It is a pure
// function of the stored state and its input: the same record always yields
// the same vector. Individually missing fields are imputed, never dropped.
func (p *Pipeline) Transform(records []schema.Record) ([][]decimal.Decimal, error) {
	if !p.IsFitted {
		return nil, ErrNotFitted
	}

	numericCount := len(schema.NumericFields())
	result := make([][]decimal.Decimal, len(records))
	for i, rec := range records {
		row := make([]decimal.Decimal, len(p.Columns))
		for j, name := range p.Columns {
			value := p.fieldValue(rec, name)
			if j < numericCount {
				value = p.Scaler.TransformValue(j, value)
			}
			row[j] = value
		}
		result[i] = row
	}
	return result, nil
}

// TransformOne is the single-record convenience used on the inference path.
func (p *Pipeline) TransformOne(rec schema.Record) ([]decimal.Decimal, error) {
	rows, err := p.Transform([]schema.Record{rec})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// FitTransform composes Fit and Transform; training-time only.
func (p *Pipeline) FitTransform(records []schema.Record) ([][]decimal.Decimal, error) {
	if err := p.Fit(records); err != nil {
		return nil, err
	}
	return p.Transform(records)
}

// FeatureNames returns the fixed column order decided at fit time.
func (p *Pipeline) FeatureNames() []string {
	names := make([]string, len(p.Columns))
	copy(names, p.Columns)
	return names
}

func (p *Pipeline) fieldValue(rec schema.Record, name string) decimal.Decimal {
	if v, ok := rec[name]; ok {
		return v
	}
	if fill, ok := p.Imputer.Value(name); ok {
		return fill
	}
	// unreachable once fitted; kept so a half-built pipeline fails loudly
	panic(fmt.Sprintf("no fill value for field %s", name))
}
