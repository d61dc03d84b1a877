package mapping

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for mapping load failures.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeNoEntities    = "E201" // No entities defined
	ErrCodeInvalidEntity = "E202" // Malformed entity definition
	ErrCodeInvalidColumn = "E203" // Malformed columns
	ErrCodeInvalidAssoc  = "E204" // Malformed association
	ErrCodeInconsistent  = "E205" // Cross-entity reference error
	ErrCodeIntrospection = "E210" // SQLite schema introspection failed
)

// LoadError is a mapping load failure, with the CUE position if known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CompileError is a malformed field in a CUE entity definition.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// codeForField maps a CompileError field to an error code.
func codeForField(field string) string {
	switch field {
	case "table", "entity":
		return ErrCodeInvalidEntity
	case "columns":
		return ErrCodeInvalidColumn
	case "associations", "associations.entity", "associations.this_key", "associations.other_key":
		return ErrCodeInvalidAssoc
	default:
		return ErrCodeGeneric
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
