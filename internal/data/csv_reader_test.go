package data_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shvm190/heart-disease-mlops/internal/data"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heart.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const header = "age,sex,cp,trestbps,chol,fbs,restecg,thalach,exang,oldpeak,slope,ca,thal,target\n"

func TestLoadDataset(t *testing.T) {
	path := writeCSV(t, header+
		"63,1,3,145,233,1,0,150,0,2.3,0,0,1,1\n"+
		"37,1,2,130,250,0,1,187,0,3.5,0,0,2,0\n")

	records, labels, err := data.LoadDataset(path, "target")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, []int{1, 0}, labels)
	assert.True(t, records[0]["age"].Equal(decimal.NewFromInt(63)))
	assert.True(t, records[1]["oldpeak"].Equal(decimal.NewFromFloat(3.5)))
	_, hasTarget := records[0]["target"]
	assert.False(t, hasTarget, "target must not leak into the features")
}

func TestLoadDatasetBinarizesGradedTarget(t *testing.T) {
	path := writeCSV(t, header+
		"63,1,3,145,233,1,0,150,0,2.3,0,0,1,3\n"+
		"37,1,2,130,250,0,1,187,0,3.5,0,0,2,0\n")

	_, labels, err := data.LoadDataset(path, "target")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, labels)
}

func TestLoadDatasetTreatsGapsAsMissing(t *testing.T) {
	path := writeCSV(t, header+
		"63,1,3,145,,1,0,150,0,2.3,0,?,1,1\n"+
		"37,1,2,130,250,0,1,187,0,3.5,0,0,2,0\n")

	records, _, err := data.LoadDataset(path, "target")
	require.NoError(t, err)

	_, hasChol := records[0]["chol"]
	assert.False(t, hasChol)
	_, hasCa := records[0]["ca"]
	assert.False(t, hasCa)
}

func TestLoadDatasetDropsUnusableRows(t *testing.T) {
	path := writeCSV(t, header+
		"63,1,3,145,233,1,0,150,0,2.3,0,0,1,\n"+ // no target
		"63,,,,,,,,,,,,,1\n"+ // more than half the fields missing
		"37,1,2,130,250,0,1,187,0,3.5,0,0,2,0\n")

	records, labels, err := data.LoadDataset(path, "target")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []int{0}, labels)
}

func TestLoadDatasetErrors(t *testing.T) {
	_, _, err := data.LoadDataset(filepath.Join(t.TempDir(), "nope.csv"), "target")
	assert.Error(t, err)

	_, _, err = data.LoadDataset(writeCSV(t, header), "target")
	assert.Error(t, err, "header only")

	_, _, err = data.LoadDataset(writeCSV(t, header+
		"63,1,3,145,233,1,0,150,0,2.3,0,0,1,1\n"), "label")
	assert.Error(t, err, "missing target column")

	_, _, err = data.LoadDataset(writeCSV(t, header+
		"abc,1,3,145,233,1,0,150,0,2.3,0,0,1,1\n"), "target")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
