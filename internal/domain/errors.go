package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrMalformedPrediction means the model answered with something other than
	// a single label prediction.
	ErrMalformedPrediction = errors.New("malformed prediction")
)

// SchemaError reports input that has no recognized review text column.
type SchemaError struct {
	Want    string
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input must contain %s column (have: %s)", e.Want, strings.Join(e.Columns, ", "))
}
