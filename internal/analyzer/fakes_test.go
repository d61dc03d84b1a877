package analyzer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// fakeQueries is a QueryService over a fixed column and association map.
// It records every collaborator call in order.
type fakeQueries struct {
	columns      map[pieces.MemberID]string
	associations map[pieces.MemberID]pieces.EntityType
	params       map[string]any
	calls        []string
	failColumn   error
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{
		columns: map[pieces.MemberID]string{
			"Age":  "age",
			"Name": "name",
			"City": "city",
		},
		associations: map[pieces.MemberID]pieces.EntityType{
			"Town": "Town",
		},
		params: map[string]any{},
	}
}

func (f *fakeQueries) RegisterTable(entity pieces.EntityType, ctx *pieces.BuilderContext) (*pieces.Table, error) {
	f.calls = append(f.calls, "table:"+string(entity))
	if t := ctx.Query.FindTable(entity); t != nil {
		return t, nil
	}
	return ctx.Query.AddTable(entity, "tbl_"+string(entity)), nil
}

func (f *fakeQueries) RegisterAssociation(t *pieces.Table, member pieces.MemberID, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	f.calls = append(f.calls, "association:"+string(member))
	joinedEntity, ok := f.associations[member]
	if !ok {
		return nil, nil
	}
	if a := ctx.Query.FindAssociation(t, member); a != nil {
		return a, nil
	}
	joined, err := f.RegisterTable(joinedEntity, ctx)
	if err != nil {
		return nil, err
	}
	a := &pieces.Association{Table: t, Member: member, Joined: joined, ThisKey: "town_id", OtherKey: "id"}
	ctx.Query.AddAssociation(a)
	return a, nil
}

func (f *fakeQueries) RegisterColumn(t *pieces.Table, member pieces.MemberID, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	f.calls = append(f.calls, "column:"+string(member))
	if f.failColumn != nil {
		return nil, f.failColumn
	}
	name, ok := f.columns[member]
	if !ok {
		return nil, nil
	}
	if c := ctx.Query.FindColumn(t, member); c != nil {
		return c, nil
	}
	c := &pieces.Column{Table: t, Member: member, Name: name}
	ctx.Query.AddColumn(c)
	return c, nil
}

func (f *fakeQueries) RegisterParameter(node pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	access := node.(*pieces.Operation)
	member := access.Operands[1].(*pieces.Constant).Value.(pieces.Member).Name
	f.calls = append(f.calls, "parameter:"+string(member))

	captured, ok := access.Operands[0].(*pieces.Constant).Value.(map[string]any)
	if !ok {
		return nil, errors.New("captured value is not a map")
	}
	value, ok := captured[string(member)]
	if !ok {
		return nil, nil
	}
	p := &pieces.Parameter{Name: string(member), Value: value}
	ctx.Query.AddParameter(p)
	return p, nil
}

// fakePieces reads the marker constants laid out by the pieces builders.
type fakePieces struct{}

func (fakePieces) QueriedEntityType(node pieces.Piece) (pieces.EntityType, error) {
	for {
		switch n := node.(type) {
		case *pieces.Operation:
			if n.Op != pieces.OpCall || len(n.Operands) < 3 {
				return "", fmt.Errorf("not a call chain: %s", n)
			}
			node = n.Operands[2]
		case *pieces.Constant:
			set, ok := n.Value.(pieces.EntitySet)
			if !ok {
				return "", fmt.Errorf("not an entity set: %s", n)
			}
			return set.Entity, nil
		default:
			return "", fmt.Errorf("unexpected node %s", n)
		}
	}
}

func (fakePieces) MethodIdentity(node pieces.Piece) (pieces.MethodName, error) {
	call := node.(*pieces.Operation)
	m, ok := call.Operands[0].(*pieces.Constant).Value.(pieces.Method)
	if !ok {
		return "", errors.New("operand 0 is not a method")
	}
	return m.Name, nil
}

func (fakePieces) MemberIdentity(node pieces.Piece) (pieces.MemberID, error) {
	access := node.(*pieces.Operation)
	m, ok := access.Operands[1].(*pieces.Constant).Value.(pieces.Member)
	if !ok {
		return "", errors.New("operand 1 is not a member")
	}
	return m.Name, nil
}

func (fakePieces) ParameterName(node pieces.Piece) (string, bool) {
	op, ok := node.(*pieces.Operation)
	if !ok || op.Op != pieces.OpParameter || len(op.Operands) != 1 {
		return "", false
	}
	c, ok := op.Operands[0].(*pieces.Constant)
	if !ok {
		return "", false
	}
	name, ok := c.Value.(pieces.ParameterName)
	return string(name), ok
}

func (fakePieces) MergeParameters(inherited, extracted []pieces.Piece) []pieces.Piece {
	merged := make([]pieces.Piece, 0, len(inherited)+len(extracted))
	merged = append(merged, inherited...)
	return append(merged, extracted...)
}

func (fakePieces) ExtractOperands(operands []pieces.Piece, start int) []pieces.Piece {
	if start >= len(operands) {
		return nil
	}
	return operands[start:]
}

// sequenceIDs returns "tx-1", "tx-2", ...
type sequenceIDs struct{ n int }

func (s *sequenceIDs) Generate() string {
	s.n++
	return fmt.Sprintf("tx-%d", s.n)
}

func newTestAnalyzer(t *testing.T, queries *fakeQueries) *Analyzer {
	t.Helper()
	return New(queries, fakePieces{},
		WithIDGenerator(&sequenceIDs{}),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// where builds source.Where(param => body).
func where(source pieces.Piece, param string, body pieces.Piece) *pieces.Operation {
	return pieces.Call("Where", source, pieces.Quote(pieces.Lambda(body, param)))
}

// sel builds source.Select(param => body).
func sel(source pieces.Piece, param string, body pieces.Piece) *pieces.Operation {
	return pieces.Call("Select", source, pieces.Quote(pieces.Lambda(body, param)))
}

func member(param string, name pieces.MemberID) *pieces.Operation {
	return pieces.MemberOf(pieces.Param(param), name)
}
