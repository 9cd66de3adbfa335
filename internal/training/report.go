package training

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/Shvm190/heart-disease-mlops/internal/persistence"
)

// ExportMetricTable writes the per-candidate metric table next to the saved
// bundle so the champion selection stays auditable without loading the
// artifact.
func ExportMetricTable(table []persistence.CandidateResult, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"Algorithm", "Champion", "Accuracy", "Precision", "Recall", "F1Score",
		"ROCAUC", "CVMean", "CVStd", "CVError", "Error",
	})

	for _, result := range table {
		row := []string{result.Algorithm, fmt.Sprintf("%t", result.Champion)}

		if result.Failed() {
			row = append(row, "", "", "", "", "", "", "", "", result.Error)
		} else {
			m := result.Metrics
			auc := ""
			if m.AUCAvailable {
				auc = fmt.Sprintf("%.4f", m.ROCAUC)
			}
			cvMean, cvStd := "", ""
			if result.CVError == "" {
				cvMean = fmt.Sprintf("%.4f", result.CVMean)
				cvStd = fmt.Sprintf("%.4f", result.CVStd)
			}
			row = append(row,
				fmt.Sprintf("%.4f", m.Accuracy),
				fmt.Sprintf("%.4f", m.Precision),
				fmt.Sprintf("%.4f", m.Recall),
				fmt.Sprintf("%.4f", m.F1Score),
				auc,
				cvMean,
				cvStd,
				result.CVError,
				"",
			)
		}

		writer.Write(row)
	}

	return writer.Error()
}
