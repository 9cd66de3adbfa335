package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one raw patient observation: clinical field name -> value.
// A field may be absent (missing measurement); absent fields are imputed
// by the preprocessing pipeline, never rejected there.
type Record map[string]decimal.Decimal

// Field describes one clinical input column and its admissible values.
// Numeric fields get scaled by the pipeline; categorical fields carry a
// closed code set and must hold integer values. Integer marks numeric
// fields that are whole-number measurements (ST depression is the only
// fractional one).
type Field struct {
	Name        string
	Description string
	Numeric     bool
	Integer     bool
	Min         decimal.Decimal
	Max         decimal.Decimal
	Codes       []int
}

// Fields is the canonical heart-disease schema. Both the fit-time schema
// check and the request-time validator consult this single table.
var Fields = []Field{
	{Name: "age", Description: "age in years", Numeric: true, Integer: true, Min: decimal.NewFromInt(0), Max: decimal.NewFromInt(120)},
	{Name: "sex", Description: "sex (1=male, 0=female)", Codes: []int{0, 1}},
	{Name: "cp", Description: "chest pain type", Codes: []int{0, 1, 2, 3}},
	{Name: "trestbps", Description: "resting blood pressure", Numeric: true, Integer: true, Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(250)},
	{Name: "chol", Description: "serum cholesterol in mg/dl", Numeric: true, Integer: true, Min: decimal.NewFromInt(100), Max: decimal.NewFromInt(600)},
	{Name: "fbs", Description: "fasting blood sugar > 120 mg/dl", Codes: []int{0, 1}},
	{Name: "restecg", Description: "resting ECG results", Codes: []int{0, 1, 2}},
	{Name: "thalach", Description: "maximum heart rate achieved", Numeric: true, Integer: true, Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(250)},
	{Name: "exang", Description: "exercise induced angina", Codes: []int{0, 1}},
	{Name: "oldpeak", Description: "ST depression induced by exercise", Numeric: true, Min: decimal.NewFromInt(0), Max: decimal.NewFromInt(10)},
	{Name: "slope", Description: "slope of peak exercise ST segment", Codes: []int{0, 1, 2}},
	{Name: "ca", Description: "number of major vessels", Codes: []int{0, 1, 2, 3, 4}},
	{Name: "thal", Description: "thalassemia", Codes: []int{0, 1, 2, 3}},
}

// NumericFields returns the names of the scaled columns, in schema order.
func NumericFields() []string {
	var names []string
	for _, f := range Fields {
		if f.Numeric {
			names = append(names, f.Name)
		}
	}
	return names
}

// CategoricalFields returns the names of the code-set columns, in schema order.
func CategoricalFields() []string {
	var names []string
	for _, f := range Fields {
		if !f.Numeric {
			names = append(names, f.Name)
		}
	}
	return names
}

// FieldByName looks a field up in the schema table.
func FieldByName(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Violation is one request-field problem found by Validate.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every invalid field of a record, not just the
// first one found.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Field, v.Reason)
	}
	return fmt.Sprintf("invalid record: %s", strings.Join(parts, "; "))
}

// SchemaError reports schema-level defects in a training batch: required
// fields that no record carries, or fields outside the schema.
type SchemaError struct {
	Missing []string
	Unknown []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("fields absent from every record: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown fields: %s", strings.Join(e.Unknown, ", ")))
	}
	return fmt.Sprintf("schema mismatch: %s", strings.Join(parts, "; "))
}

// Validate checks a single inference record against the schema table.
// Every field must be present and within range; categorical fields must be
// integers drawn from the known code set, and whole-number measurements
// must not carry a fractional part. All violations are collected.
func Validate(rec Record) error {
	var violations []Violation

	for _, f := range Fields {
		value, ok := rec[f.Name]
		if !ok {
			violations = append(violations, Violation{Field: f.Name, Reason: "required field is missing"})
			continue
		}

		if f.Numeric {
			if value.LessThan(f.Min) || value.GreaterThan(f.Max) {
				violations = append(violations, Violation{
					Field:  f.Name,
					Reason: fmt.Sprintf("value %s outside range [%s, %s]", value, f.Min, f.Max),
				})
				continue
			}
			if f.Integer && !value.IsInteger() {
				violations = append(violations, Violation{
					Field:  f.Name,
					Reason: fmt.Sprintf("value %s is not a whole number", value),
				})
			}
			continue
		}

		if !value.IsInteger() {
			violations = append(violations, Violation{
				Field:  f.Name,
				Reason: fmt.Sprintf("value %s is not an integer code", value),
			})
			continue
		}
		if !codeAllowed(f.Codes, int(value.IntPart())) {
			violations = append(violations, Violation{
				Field:  f.Name,
				Reason: fmt.Sprintf("code %s not in allowed set %v", value, f.Codes),
			})
		}
	}

	for name := range rec {
		if _, ok := FieldByName(name); !ok {
			violations = append(violations, Violation{Field: name, Reason: "field is not part of the schema"})
		}
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool { return violations[i].Field < violations[j].Field })
		return &ValidationError{Violations: violations}
	}
	return nil
}

// CheckBatch verifies that a training batch can support fitting: every
// schema field must be observed in at least one record, and no record may
// carry a field outside the schema. Per-record gaps are fine; imputation
// handles those.
func CheckBatch(records []Record) error {
	seen := make(map[string]bool)
	unknown := make(map[string]bool)

	for _, rec := range records {
		for name := range rec {
			if _, ok := FieldByName(name); !ok {
				unknown[name] = true
				continue
			}
			seen[name] = true
		}
	}

	var missing []string
	for _, f := range Fields {
		if !seen[f.Name] {
			missing = append(missing, f.Name)
		}
	}

	if len(missing) == 0 && len(unknown) == 0 {
		return nil
	}

	err := &SchemaError{Missing: missing}
	for name := range unknown {
		err.Unknown = append(err.Unknown, name)
	}
	sort.Strings(err.Unknown)
	return err
}

func codeAllowed(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
