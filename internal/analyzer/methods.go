package analyzer

import (
	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// Supported query methods.
const (
	MethodSelect  pieces.MethodName = "Select"
	MethodWhere   pieces.MethodName = "Where"
	MethodCount   pieces.MethodName = "Count"
	MethodSum     pieces.MethodName = "Sum"
	MethodMin     pieces.MethodName = "Min"
	MethodMax     pieces.MethodName = "Max"
	MethodAverage pieces.MethodName = "Average"
)

// methodHandler analyzes one query method. args[0] stands for the source.
type methodHandler func(call *pieces.Operation, method pieces.MethodName, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error)

func (a *Analyzer) handlerFor(method pieces.MethodName) (methodHandler, bool) {
	switch method {
	case MethodSelect:
		return a.analyzeSelect, true
	case MethodWhere:
		return a.analyzeWhere, true
	case MethodCount, MethodSum, MethodMin, MethodMax, MethodAverage:
		return a.analyzeAggregate, true
	default:
		return nil, false
	}
}

// analyzeSelect analyzes the projection lambda against the source and
// records the result as the query projection.
func (a *Analyzer) analyzeSelect(call *pieces.Operation, method pieces.MethodName, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	if len(args) != 2 {
		return nil, pieces.NewMethodArgumentCount(method, call, len(args))
	}

	projection, err := a.Analyze(args[1], []pieces.Piece{args[0]}, ctx)
	if err != nil {
		return nil, err
	}
	ctx.Query.SetSelect(projection)

	a.logger.Debug("projection recorded",
		"translation", ctx.ID,
		"select", projection.String(),
	)
	return projection, nil
}

// analyzeWhere appends the analyzed predicate to the query filters and
// returns the source unchanged so chaining continues on it.
func (a *Analyzer) analyzeWhere(call *pieces.Operation, method pieces.MethodName, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	if len(args) != 2 {
		return nil, pieces.NewMethodArgumentCount(method, call, len(args))
	}

	predicate, err := a.Analyze(args[1], []pieces.Piece{args[0]}, ctx)
	if err != nil {
		return nil, err
	}
	ctx.Query.AddWhere(predicate)

	a.logger.Debug("predicate added",
		"translation", ctx.ID,
		"where", predicate.String(),
		"position", len(ctx.Query.Where),
	)
	return args[0], nil
}

// analyzeAggregate wraps the recorded projection in an aggregate piece.
//
// A lambda argument is applied first: Count(pred) filters, the others
// record their selector as the projection. A missing projection is not an
// error here; pieces.Validate reports it.
func (a *Analyzer) analyzeAggregate(call *pieces.Operation, method pieces.MethodName, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	switch len(args) {
	case 1:
	case 2:
		analyzed, err := a.Analyze(args[1], []pieces.Piece{args[0]}, ctx)
		if err != nil {
			return nil, err
		}
		if method == MethodCount {
			ctx.Query.AddWhere(analyzed)
		} else {
			ctx.Query.SetSelect(analyzed)
		}
	default:
		return nil, pieces.NewMethodArgumentCount(method, call, len(args))
	}

	return &pieces.Operation{
		Op: pieces.OpAggregate,
		Operands: []pieces.Piece{
			pieces.Const(pieces.Method{Name: method}),
			pieces.Const(nil),
			ctx.Query.Select,
		},
	}, nil
}
