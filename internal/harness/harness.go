package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jeason0813/dblinq2007/internal/analyzer"
	"github.com/jeason0813/dblinq2007/internal/exprdoc"
	"github.com/jeason0813/dblinq2007/internal/mapping"
	"github.com/jeason0813/dblinq2007/internal/pieces"
	"github.com/jeason0813/dblinq2007/internal/resolver"
	"github.com/jeason0813/dblinq2007/internal/testutil"
)

// Harness translates scenarios with a deterministic ID generator and
// discarded logs.
type Harness struct {
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
}

// New creates a harness over the mapping m.
func New(m *mapping.Mapping, translationID string) *Harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	return &Harness{
		analyzer: analyzer.New(
			resolver.NewRegistry(m),
			resolver.NewService(),
			analyzer.WithIDGenerator(testutil.NewFixedIDGenerator(translationID)),
			analyzer.WithLogger(logger),
		),
		logger: logger,
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load the mapping
// 2. Decode the expression document
// 3. Translate
// 4. Check expectations
//
// An error is returned only when the scenario cannot be executed (the
// mapping or expression fails to load). Translation failures are part
// of the result and compared against expect.error.
func Run(scenario *Scenario) (*Result, error) {
	m, err := mapping.Load(context.Background(), scenario.Mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}

	root, err := exprdoc.FromNode(&scenario.Expression)
	if err != nil {
		return nil, fmt.Errorf("failed to decode expression: %w", err)
	}

	h := New(m, scenario.TranslationID)
	return h.Execute(root, scenario.Expect), nil
}

// Execute translates root and checks it against expect.
func (h *Harness) Execute(root pieces.Piece, expect Expect) *Result {
	result := NewResult()

	translation, err := h.analyzer.Translate(root)
	if err != nil {
		result.ErrorMessage = err.Error()
		if kind, ok := pieces.KindOf(err); ok {
			result.ErrorKind = string(kind)
		}
	} else {
		result.Translation = translation
	}

	for _, failure := range checkExpectations(result, expect) {
		result.AddError(failure.Error())
	}

	h.logger.Debug("scenario executed",
		"pass", result.Pass,
		"errors", len(result.Errors),
	)
	return result
}
