package analyzer

import (
	"fmt"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// Analyze resolves node under ctx.
//
// args are the pending arguments: already-resolved pieces still to be
// consumed by a lambda. Only calls, lambdas and quotes accept them; any
// other node given pending arguments fails with INVALID_ARGUMENT_SHAPE.
//
// Analyze never mutates node. Operators are rebuilt with fresh operand
// slices, so callers must use the returned piece.
func (a *Analyzer) Analyze(node pieces.Piece, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	switch n := node.(type) {
	case nil:
		return nil, pieces.NewUnsupportedExpression(nil, "nil node")
	case *pieces.Operation:
		return a.analyzeOperation(n, args, ctx)
	case *pieces.Constant, *pieces.Table, *pieces.Column, *pieces.Association, *pieces.Parameter:
		if len(args) > 0 {
			return nil, pieces.NewInvalidArgumentShape(node, len(args))
		}
		return node, nil
	default:
		return nil, pieces.NewUnsupportedExpression(node, fmt.Sprintf("unknown piece type %T", node))
	}
}

func (a *Analyzer) analyzeOperation(o *pieces.Operation, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	switch o.Op {
	case pieces.OpCall:
		return a.analyzeCall(o, args, ctx)
	case pieces.OpLambda:
		return a.analyzeLambda(o, args, ctx)
	case pieces.OpParameter:
		return a.analyzeParameterRef(o, args, ctx)
	case pieces.OpQuote:
		return a.analyzeQuote(o, args, ctx)
	case pieces.OpMemberAccess:
		return a.analyzeMemberAccess(o, args, ctx)
	case pieces.OpAggregate:
		// Already analyzed.
		if len(args) > 0 {
			return nil, pieces.NewInvalidArgumentShape(o, len(args))
		}
		return o, nil
	}
	if o.Op.IsOperator() {
		return a.analyzeOperator(o, args, ctx)
	}
	return nil, pieces.NewUnsupportedExpression(o, fmt.Sprintf("unsupported operation %s", o.Op))
}

// analyzeCall resolves the call's source first, then hands the merged
// argument list to the method handler.
//
// When the source is itself a call it is analyzed with the inherited
// pending arguments and its result replaces them, so a chain applies its
// calls innermost first.
func (a *Analyzer) analyzeCall(call *pieces.Operation, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	if len(call.Operands) < 3 {
		return nil, pieces.NewUnsupportedExpression(call, "call expects method, object and source operands")
	}

	method, err := a.pieces.MethodIdentity(call)
	if err != nil {
		return nil, fmt.Errorf("method identity of %s: %w", call, err)
	}
	handler, ok := a.handlerFor(method)
	if !ok {
		return nil, pieces.NewUnsupportedMethod(method)
	}

	inherited := args
	if source, ok := call.Operands[2].(*pieces.Operation); ok && source.Op == pieces.OpCall {
		result, err := a.Analyze(source, args, ctx)
		if err != nil {
			return nil, err
		}
		inherited = []pieces.Piece{result}
	}
	merged := a.pieces.MergeParameters(inherited, a.pieces.ExtractOperands(call.Operands, 3))

	a.logger.Debug("analyzing call",
		"translation", ctx.ID,
		"method", method,
		"args", len(merged),
	)

	return handler(call, method, merged, ctx)
}

// analyzeLambda binds each formal to the matching pending argument, then
// analyzes the body with no pending arguments.
//
// Arguments are analyzed under ctx before any formal is bound.
func (a *Analyzer) analyzeLambda(lambda *pieces.Operation, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	if len(lambda.Operands) == 0 {
		return nil, pieces.NewUnsupportedExpression(lambda, "lambda without body")
	}

	formals := lambda.Operands[1:]
	if len(formals) != len(args) {
		return nil, pieces.NewArityMismatch(lambda, len(formals), len(args))
	}

	names := make([]string, len(formals))
	values := make([]pieces.Piece, len(formals))
	for i, formal := range formals {
		name, ok := a.pieces.ParameterName(formal)
		if !ok {
			return nil, pieces.NewUnsupportedExpression(formal, "cannot determine formal parameter name")
		}
		value, err := a.Analyze(args[i], nil, ctx)
		if err != nil {
			return nil, err
		}
		names[i] = name
		values[i] = value
	}

	for i, name := range names {
		ctx.Bind(name, values[i])
		a.logger.Debug("parameter bound",
			"translation", ctx.ID,
			"name", name,
			"piece", values[i].String(),
		)
	}

	return a.Analyze(lambda.Operands[0], nil, ctx)
}

func (a *Analyzer) analyzeParameterRef(ref *pieces.Operation, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	if len(args) > 0 {
		return nil, pieces.NewInvalidArgumentShape(ref, len(args))
	}

	name, ok := a.pieces.ParameterName(ref)
	if !ok {
		return nil, pieces.NewUnsupportedExpression(ref, "cannot determine parameter name")
	}

	bound, ok := ctx.Lookup(name)
	if !ok {
		return nil, pieces.NewUnboundParameter(name, ref)
	}
	return bound, nil
}

// analyzeQuote analyzes the inner node in a cloned scope. Bindings made
// inside are discarded when it returns; the query is shared.
func (a *Analyzer) analyzeQuote(quote *pieces.Operation, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	if len(quote.Operands) != 1 {
		return nil, pieces.NewUnsupportedExpression(quote, fmt.Sprintf("quote expects 1 operand, found %d", len(quote.Operands)))
	}
	return a.Analyze(quote.Operands[0], args, ctx.Clone())
}

func (a *Analyzer) analyzeMemberAccess(access *pieces.Operation, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	if len(args) > 0 {
		return nil, pieces.NewInvalidArgumentShape(access, len(args))
	}
	if len(access.Operands) != 2 {
		return nil, pieces.NewUnsupportedExpression(access, fmt.Sprintf("member access expects 2 operands, found %d", len(access.Operands)))
	}

	target, err := a.Analyze(access.Operands[0], nil, ctx)
	if err != nil {
		return nil, err
	}
	member, err := a.pieces.MemberIdentity(access)
	if err != nil {
		return nil, fmt.Errorf("member identity of %s: %w", access, err)
	}

	switch t := target.(type) {
	case *pieces.Table:
		return a.resolveTableMember(access, t, member, ctx)
	case *pieces.Association:
		if t.Joined == nil {
			return nil, pieces.NewUnsupportedExpression(access, "association without joined table")
		}
		return a.resolveTableMember(access, t.Joined, member, ctx)
	case *pieces.Constant, *pieces.Parameter:
		return a.resolveExternalParameter(access, target, member, ctx)
	default:
		return nil, pieces.NewUnsupportedExpression(access, fmt.Sprintf("unsupported member-access target %s", pieceString(target)))
	}
}

// resolveTableMember tries the association first, then the column. Each
// collaborator is asked exactly once.
func (a *Analyzer) resolveTableMember(access *pieces.Operation, t *pieces.Table, member pieces.MemberID, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	assoc, err := a.queries.RegisterAssociation(t, member, ctx)
	if err != nil {
		return nil, fmt.Errorf("register association %s.%s: %w", t.Entity, member, err)
	}
	if assoc != nil {
		return assoc, nil
	}

	column, err := a.queries.RegisterColumn(t, member, ctx)
	if err != nil {
		return nil, fmt.Errorf("register column %s.%s: %w", t.Entity, member, err)
	}
	if column != nil {
		return column, nil
	}

	return nil, pieces.NewUnmappedColumn(t, member, access)
}

// resolveExternalParameter binds a member of a captured host value.
// The collaborator receives the member access rebuilt over the analyzed
// target.
func (a *Analyzer) resolveExternalParameter(access *pieces.Operation, target pieces.Piece, member pieces.MemberID, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	node := &pieces.Operation{
		Op:       pieces.OpMemberAccess,
		Operands: []pieces.Piece{target, access.Operands[1]},
	}

	param, err := a.queries.RegisterParameter(node, ctx)
	if err != nil {
		return nil, pieces.NewUnresolvableExternalParameter(node, member, err)
	}
	if param == nil {
		return nil, pieces.NewUnresolvableExternalParameter(node, member, nil)
	}
	return param, nil
}

// analyzeOperator returns a new operation whose operands are the analyses
// of the originals, in operand order.
func (a *Analyzer) analyzeOperator(o *pieces.Operation, args []pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	if len(args) > 0 {
		return nil, pieces.NewInvalidArgumentShape(o, len(args))
	}

	operands := make([]pieces.Piece, len(o.Operands))
	for i, operand := range o.Operands {
		analyzed, err := a.Analyze(operand, nil, ctx)
		if err != nil {
			return nil, err
		}
		operands[i] = analyzed
	}
	return &pieces.Operation{Op: o.Op, Operands: operands}, nil
}
