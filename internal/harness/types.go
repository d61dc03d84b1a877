package harness

import (
	"github.com/jeason0813/dblinq2007/internal/analyzer"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// Errors contains expectation failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// ErrorKind is the kind of the translation error, if translation failed.
	ErrorKind string `json:"error_kind,omitempty"`

	// ErrorMessage is the full translation error message, if any.
	ErrorMessage string `json:"error_message,omitempty"`

	// Translation is the successful translation, or nil.
	Translation *analyzer.Result `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
