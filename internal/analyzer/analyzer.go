package analyzer

import (
	"fmt"
	"log/slog"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// Analyzer turns raw expression trees into analyzed piece trees.
//
// An Analyzer holds no per-translation state; every translation works on
// its own pieces.BuilderContext. The collaborators decide whether one
// Analyzer may be shared between goroutines.
type Analyzer struct {
	queries QueryService
	pieces  PiecesService
	ids     IDGenerator
	logger  *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithIDGenerator sets the generator used by Translate for context IDs.
//
// Default: UUIDv7Generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(a *Analyzer) {
		a.ids = gen
	}
}

// WithLogger sets the logger for debug tracing.
//
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer over the given collaborators.
func New(queries QueryService, ps PiecesService, opts ...Option) *Analyzer {
	a := &Analyzer{
		queries: queries,
		pieces:  ps,
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of a translation.
type Result struct {
	ID    string
	Root  pieces.Piece
	Query *pieces.Query
}

// Translate analyzes root in a fresh context and checks that the outcome
// is fully analyzed.
func (a *Analyzer) Translate(root pieces.Piece) (*Result, error) {
	ctx := pieces.NewBuilderContext(a.ids.Generate())

	a.logger.Debug("translation starting",
		"translation", ctx.ID,
		"expression", pieceString(root),
	)

	piece, err := a.Dispatch(root, ctx)
	if err != nil {
		return nil, err
	}
	if err := pieces.Validate(piece, ctx.Query); err != nil {
		return nil, fmt.Errorf("validate translation %s: %w", ctx.ID, err)
	}

	a.logger.Debug("translation complete",
		"translation", ctx.ID,
		"result", piece.String(),
		"where", len(ctx.Query.Where),
		"tables", len(ctx.Query.Tables),
	)

	return &Result{ID: ctx.ID, Root: piece, Query: ctx.Query}, nil
}

// Dispatch is the entry point for one query expression: it registers the
// table of the queried entity and analyzes root with that table as the
// sole pending argument.
func (a *Analyzer) Dispatch(root pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	entity, err := a.pieces.QueriedEntityType(root)
	if err != nil {
		return nil, fmt.Errorf("queried entity type: %w", err)
	}

	table, err := a.queries.RegisterTable(entity, ctx)
	if err != nil {
		return nil, fmt.Errorf("register table %s: %w", entity, err)
	}

	a.logger.Debug("dispatch",
		"translation", ctx.ID,
		"entity", entity,
		"table", table.String(),
	)

	return a.Analyze(root, []pieces.Piece{table}, ctx)
}

func pieceString(p pieces.Piece) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}
