package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Field    string // Expectation field, e.g. "where"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkExpectations compares a result against expect. Every failing
// field is reported.
func checkExpectations(result *Result, expect Expect) []error {
	if expect.Error != "" {
		if result.ErrorKind != expect.Error {
			actual := "translation succeeded"
			if result.ErrorMessage != "" {
				actual = result.ErrorMessage
			}
			return []error{&AssertionError{Field: "error", Expected: expect.Error, Actual: actual}}
		}
		return nil
	}

	if result.Translation == nil {
		return []error{&AssertionError{Field: "error", Expected: "translation to succeed", Actual: result.ErrorMessage}}
	}

	q := result.Translation.Query
	var failures []error

	if expect.Where != nil {
		failures = appendListMismatch(failures, "where", expect.Where, renderAll(q.Where))
	}
	if expect.Select != "" {
		if actual := renderPiece(q.Select); actual != expect.Select {
			failures = append(failures, &AssertionError{Field: "select", Expected: expect.Select, Actual: actual})
		}
	}
	if expect.Result != "" {
		if actual := renderPiece(result.Translation.Root); actual != expect.Result {
			failures = append(failures, &AssertionError{Field: "result", Expected: expect.Result, Actual: actual})
		}
	}
	if expect.Columns != nil {
		names := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			names[i] = c.Name
		}
		failures = appendListMismatch(failures, "columns", expect.Columns, names)
	}
	if expect.Tables != nil {
		names := make([]string, len(q.Tables))
		for i, t := range q.Tables {
			names[i] = t.Name
		}
		failures = appendListMismatch(failures, "tables", expect.Tables, names)
	}
	if expect.Parameters != nil {
		names := make([]string, len(q.Parameters))
		for i, p := range q.Parameters {
			names[i] = p.Name
		}
		failures = appendListMismatch(failures, "parameters", expect.Parameters, names)
	}

	return failures
}

func appendListMismatch(failures []error, field string, expected, actual []string) []error {
	if slices.Equal(expected, actual) {
		return failures
	}
	return append(failures, &AssertionError{
		Field:    field,
		Expected: fmt.Sprintf("%q", expected),
		Actual:   fmt.Sprintf("%q", actual),
	})
}

func renderAll(ps []pieces.Piece) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = renderPiece(p)
	}
	return out
}

func renderPiece(p pieces.Piece) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}
