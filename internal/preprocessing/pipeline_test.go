package preprocessing_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shvm190/heart-disease-mlops/internal/preprocessing"
	"github.com/Shvm190/heart-disease-mlops/internal/schema"
)

func makeRecord(age, trestbps, chol, thalach int, oldpeak float64, codes ...int) schema.Record {
	rec := schema.Record{
		"age":      decimal.NewFromInt(int64(age)),
		"trestbps": decimal.NewFromInt(int64(trestbps)),
		"chol":     decimal.NewFromInt(int64(chol)),
		"thalach":  decimal.NewFromInt(int64(thalach)),
		"oldpeak":  decimal.NewFromFloat(oldpeak),
	}
	cat := schema.CategoricalFields()
	for i, name := range cat {
		code := 0
		if i < len(codes) {
			code = codes[i]
		}
		rec[name] = decimal.NewFromInt(int64(code))
	}
	return rec
}

func trainingBatch() []schema.Record {
	return []schema.Record{
		makeRecord(40, 120, 200, 160, 0.5, 1, 0, 0, 0, 0, 1, 0, 2),
		makeRecord(50, 130, 230, 150, 1.0, 0, 1, 0, 1, 0, 1, 1, 2),
		makeRecord(60, 140, 260, 140, 1.5, 1, 2, 1, 1, 1, 2, 0, 3),
		makeRecord(55, 135, 245, 145, 2.0, 1, 1, 0, 0, 1, 1, 2, 2),
		makeRecord(45, 125, 215, 155, 0.0, 0, 0, 0, 2, 0, 0, 0, 1),
	}
}

func TestPipelineFitTransformShape(t *testing.T) {
	p := preprocessing.NewPipeline()
	X, err := p.FitTransform(trainingBatch())
	require.NoError(t, err)

	require.Len(t, X, 5)
	for _, row := range X {
		assert.Len(t, row, 13)
	}
	assert.Equal(t,
		append(schema.NumericFields(), schema.CategoricalFields()...),
		p.FeatureNames())
}

func TestPipelineTransformIsDeterministic(t *testing.T) {
	p := preprocessing.NewPipeline()
	_, err := p.FitTransform(trainingBatch())
	require.NoError(t, err)

	rec := makeRecord(52, 128, 240, 148, 1.2, 1, 2, 0, 1, 0, 1, 0, 2)
	first, err := p.TransformOne(rec)
	require.NoError(t, err)
	second, err := p.TransformOne(rec)
	require.NoError(t, err)

	for j := range first {
		assert.True(t, first[j].Equal(second[j]), "column %d differs", j)
	}
}

func TestPipelineImputesMissingFields(t *testing.T) {
	p := preprocessing.NewPipeline()
	_, err := p.FitTransform(trainingBatch())
	require.NoError(t, err)

	full := makeRecord(50, 130, 230, 150, 1.0, 1, 1, 0, 1, 0, 1, 0, 2)
	gappy := schema.Record{}
	for k, v := range full {
		gappy[k] = v
	}
	// chol median of [200 215 230 245 260] is 230, so imputation must
	// reproduce the complete record exactly
	delete(gappy, "chol")
	// sex mode over the batch is 1
	delete(gappy, "sex")

	want, err := p.TransformOne(full)
	require.NoError(t, err)
	got, err := p.TransformOne(gappy)
	require.NoError(t, err)

	for j := range want {
		assert.True(t, want[j].Equal(got[j]), "column %d differs after imputation", j)
	}
}

func TestPipelineTransformBeforeFit(t *testing.T) {
	p := preprocessing.NewPipeline()
	_, err := p.Transform(trainingBatch())
	assert.ErrorIs(t, err, preprocessing.ErrNotFitted)
}

func TestPipelineFitEmptyBatch(t *testing.T) {
	p := preprocessing.NewPipeline()
	err := p.Fit(nil)
	assert.ErrorIs(t, err, preprocessing.ErrInsufficientData)
}

func TestPipelineFitRejectsSchemaMismatch(t *testing.T) {
	batch := trainingBatch()
	for _, rec := range batch {
		delete(rec, "thal")
	}

	p := preprocessing.NewPipeline()
	err := p.Fit(batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thal")
	assert.False(t, p.IsFitted)
}

func TestScalerStandardizesTrainingData(t *testing.T) {
	p := preprocessing.NewPipeline()
	X, err := p.FitTransform(trainingBatch())
	require.NoError(t, err)

	// every scaled column of the training batch must have mean ~0
	for j := range schema.NumericFields() {
		sum := decimal.Zero
		for _, row := range X {
			sum = sum.Add(row[j])
		}
		mean, _ := sum.Div(decimal.NewFromInt(int64(len(X)))).Float64()
		assert.InDelta(t, 0.0, mean, 1e-9, fmt.Sprintf("column %d not centered", j))
	}
}

func TestImputerMedianEvenCount(t *testing.T) {
	batch := trainingBatch()[:4] // chol values 200, 230, 260, 245
	im := preprocessing.NewImputer()
	require.NoError(t, im.Fit(batch))

	fill, ok := im.Value("chol")
	require.True(t, ok)
	assert.True(t, fill.Equal(decimal.NewFromFloat(237.5)), "got %s", fill)
}

func TestImputerModeTieBreaksLow(t *testing.T) {
	batch := trainingBatch()[:4] // slope codes 1, 1, 2, 1 -> mode 1
	im := preprocessing.NewImputer()
	require.NoError(t, im.Fit(batch))

	fill, ok := im.Value("slope")
	require.True(t, ok)
	assert.True(t, fill.Equal(decimal.NewFromInt(1)), "got %s", fill)

	// ca codes 0, 1, 0, 2 -> mode 0
	fill, ok = im.Value("ca")
	require.True(t, ok)
	assert.True(t, fill.Equal(decimal.Zero), "got %s", fill)
}
