package app

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"review_insights/internal/domain"
)

// PrimaryTextColumn is the only column review text is read from. The name is
// matched exactly, so "Review_Text" or "text" is a schema error.
const PrimaryTextColumn = "review_text"

// TextColumn returns PrimaryTextColumn or a *domain.SchemaError.
func TextColumn(ds domain.Dataset) (string, error) {
	if !ds.HasColumn(PrimaryTextColumn) {
		return "", &domain.SchemaError{Want: PrimaryTextColumn, Columns: ds.Columns}
	}
	return PrimaryTextColumn, nil
}

// MissingValue is what an absent cell becomes once coerced to text. It is then
// treated like any other review text.
const MissingValue = "nan"

// Stringify coerces a cell to review text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return MissingValue
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return MissingValue
		}
		if t == math.Trunc(t) && math.Abs(t) < 1e16 {
			return strconv.FormatFloat(t, 'f', 1, 64)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "True"
		}
		return "False"
	case fmt.Stringer:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
