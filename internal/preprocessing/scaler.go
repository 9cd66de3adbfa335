package preprocessing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Scaler standardizes one block of numeric columns to zero mean and unit
// variance. Means and standard deviations are learned once at fit time and
// applied unchanged afterwards.
type Scaler struct {
	FeatureMean []decimal.Decimal
	FeatureStd  []decimal.Decimal
	IsFitted    bool
}

func NewScaler() *Scaler {
	return &Scaler{}
}

func (s *Scaler) Fit(X [][]decimal.Decimal) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot fit scaler on empty matrix")
	}

	nFeatures := len(X[0])
	nSamples := decimal.NewFromInt(int64(len(X)))
	s.FeatureMean = make([]decimal.Decimal, nFeatures)
	s.FeatureStd = make([]decimal.Decimal, nFeatures)

	for j := 0; j < nFeatures; j++ {
		sum := decimal.Zero
		for i := 0; i < len(X); i++ {
			sum = sum.Add(X[i][j])
		}
		s.FeatureMean[j] = sum.Div(nSamples)
	}

	for j := 0; j < nFeatures; j++ {
		variance := decimal.Zero
		for i := 0; i < len(X); i++ {
			diff := X[i][j].Sub(s.FeatureMean[j])
			variance = variance.Add(diff.Mul(diff))
		}
		variance = variance.Div(nSamples)

		varFloat, _ := variance.Float64()
		s.FeatureStd[j] = decimal.NewFromFloat(math.Sqrt(varFloat))

		// constant column: leave values untouched rather than divide by zero
		if s.FeatureStd[j].IsZero() {
			s.FeatureStd[j] = decimal.NewFromInt(1)
		}
	}

	s.IsFitted = true
	return nil
}

func (s *Scaler) Transform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler must be fitted before transform")
	}

	result := make([][]decimal.Decimal, len(X))
	for i := range X {
		result[i] = make([]decimal.Decimal, len(X[i]))
		for j := range X[i] {
			result[i][j] = s.TransformValue(j, X[i][j])
		}
	}
	return result, nil
}

// TransformValue standardizes a single value of column j.
func (s *Scaler) TransformValue(j int, value decimal.Decimal) decimal.Decimal {
	return value.Sub(s.FeatureMean[j]).Div(s.FeatureStd[j])
}
