package pieces

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes translation errors.
type ErrorKind string

const (
	// ErrUnsupportedExpression indicates a node kind with no analysis rule.
	ErrUnsupportedExpression ErrorKind = "UNSUPPORTED_EXPRESSION"

	// ErrUnsupportedMethod indicates a call whose method has no handler.
	ErrUnsupportedMethod ErrorKind = "UNSUPPORTED_METHOD"

	// ErrUnboundParameter indicates a parameter reference with no binding
	// in the current scope.
	ErrUnboundParameter ErrorKind = "UNBOUND_PARAMETER"

	// ErrArityMismatch indicates a lambda received a different number of
	// pending arguments than it declares formals.
	ErrArityMismatch ErrorKind = "ARITY_MISMATCH"

	// ErrUnmappedColumn indicates a member of a table that is neither an
	// association nor a column.
	ErrUnmappedColumn ErrorKind = "UNMAPPED_COLUMN"

	// ErrUnresolvableExternalParameter indicates a member of a captured
	// value that cannot be registered as an external parameter.
	ErrUnresolvableExternalParameter ErrorKind = "UNRESOLVABLE_EXTERNAL_PARAMETER"

	// ErrInvalidArgumentShape indicates a non-callable node received
	// pending arguments.
	ErrInvalidArgumentShape ErrorKind = "INVALID_ARGUMENT_SHAPE"

	// ErrMissingProjection indicates an aggregate over a query that never
	// recorded a projection.
	ErrMissingProjection ErrorKind = "MISSING_PROJECTION"
)

// TranslationError is a translation-time failure. It aborts the whole
// translation of the current expression.
type TranslationError struct {
	Kind    ErrorKind
	Message string

	// Contextual detail; zero values are omitted from Error().
	Node      Piece
	Method    MethodName
	Member    MemberID
	Parameter string

	// Err is the underlying collaborator error, if any.
	Err error
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)

	var details []string
	if e.Method != "" {
		details = append(details, "method="+string(e.Method))
	}
	if e.Member != "" {
		details = append(details, "member="+string(e.Member))
	}
	if e.Parameter != "" {
		details = append(details, "parameter="+e.Parameter)
	}
	if e.Node != nil {
		details = append(details, "node="+e.Node.String())
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying collaborator error.
func (e *TranslationError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first TranslationError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries a TranslationError of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// NewUnsupportedExpression creates an error for a node with no analysis rule.
func NewUnsupportedExpression(node Piece, reason string) *TranslationError {
	return &TranslationError{
		Kind:    ErrUnsupportedExpression,
		Message: reason,
		Node:    node,
	}
}

// NewUnsupportedMethod creates an error for a call with no handler.
func NewUnsupportedMethod(method MethodName) *TranslationError {
	return &TranslationError{
		Kind:    ErrUnsupportedMethod,
		Message: fmt.Sprintf("unimplemented query method %q", method),
		Method:  method,
	}
}

// NewUnboundParameter creates an error for a reference with no binding.
func NewUnboundParameter(name string, node Piece) *TranslationError {
	return &TranslationError{
		Kind:      ErrUnboundParameter,
		Message:   fmt.Sprintf("can not find parameter %q", name),
		Node:      node,
		Parameter: name,
	}
}

// NewArityMismatch creates an error for a lambda called with the wrong
// number of pending arguments.
func NewArityMismatch(node Piece, formals, supplied int) *TranslationError {
	return &TranslationError{
		Kind:    ErrArityMismatch,
		Message: fmt.Sprintf("lambda declares %d parameter(s) but %d argument(s) were supplied", formals, supplied),
		Node:    node,
	}
}

// NewUnmappedColumn creates an error for a member of a table that resolves
// to neither an association nor a column.
func NewUnmappedColumn(table *Table, member MemberID, node Piece) *TranslationError {
	entity := "?"
	if table != nil {
		entity = string(table.Entity)
	}
	return &TranslationError{
		Kind:    ErrUnmappedColumn,
		Message: fmt.Sprintf("column must be mapped: %s.%s", entity, member),
		Node:    node,
		Member:  member,
	}
}

// NewUnresolvableExternalParameter creates an error for a member of a
// captured value that cannot become a parameter.
func NewUnresolvableExternalParameter(node Piece, member MemberID, err error) *TranslationError {
	return &TranslationError{
		Kind:    ErrUnresolvableExternalParameter,
		Message: "can not create parameter from expression",
		Node:    node,
		Member:  member,
		Err:     err,
	}
}

// NewInvalidArgumentShape creates an error for a non-callable node that
// received pending arguments.
func NewInvalidArgumentShape(node Piece, count int) *TranslationError {
	return &TranslationError{
		Kind:    ErrInvalidArgumentShape,
		Message: fmt.Sprintf("there should be no argument to a non-operation piece (found %d)", count),
		Node:    node,
	}
}

// NewMissingProjection creates an error for an aggregate with no projection.
func NewMissingProjection(node Piece) *TranslationError {
	return &TranslationError{
		Kind:    ErrMissingProjection,
		Message: "aggregate requires a previous select",
		Node:    node,
	}
}

// NewMethodArgumentCount creates an error for a query method called with
// an unexpected number of arguments (the source counts as the first).
func NewMethodArgumentCount(method MethodName, node Piece, count int) *TranslationError {
	return &TranslationError{
		Kind:    ErrInvalidArgumentShape,
		Message: fmt.Sprintf("unexpected argument count %d", count),
		Node:    node,
		Method:  method,
	}
}
