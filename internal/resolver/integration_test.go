package resolver_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeason0813/dblinq2007/internal/analyzer"
	"github.com/jeason0813/dblinq2007/internal/mapping"
	"github.com/jeason0813/dblinq2007/internal/pieces"
	"github.com/jeason0813/dblinq2007/internal/resolver"
	"github.com/jeason0813/dblinq2007/internal/testutil"
)

var (
	_ analyzer.QueryService  = (*resolver.Registry)(nil)
	_ analyzer.PiecesService = resolver.Service{}
)

func newAnalyzer(t *testing.T) *analyzer.Analyzer {
	t.Helper()
	m := mapping.New()

	person := mapping.NewEntity("Person")
	person.SetColumn("Name", "")
	person.SetColumn("Age", "")
	person.Associations["Town"] = &mapping.Association{Member: "Town", Target: "Town", ThisKey: "town_id", OtherKey: "id"}
	require.NoError(t, m.Add(person))

	town := mapping.NewEntity("Town")
	town.SetColumn("Name", "")
	require.NoError(t, m.Add(town))

	return analyzer.New(resolver.NewRegistry(m), resolver.NewService(),
		analyzer.WithIDGenerator(testutil.NewFixedIDGenerator("tx-int")),
		analyzer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestTranslate_ThroughResolver(t *testing.T) {
	a := newAnalyzer(t)
	captured := pieces.Const(map[string]any{"min_age": 18})

	// Entities.Where(e => e.Age >= captured.min_age && e.Town.Name == "Oslo").Select(e => e.Name)
	root := pieces.Call("Select",
		pieces.Call("Where", pieces.Entities("Person"),
			pieces.Quote(pieces.Lambda(
				pieces.Binary(pieces.OpAndAlso,
					pieces.Binary(pieces.OpGreaterThanOrEqual,
						pieces.MemberOf(pieces.Param("e"), "Age"),
						pieces.MemberOf(captured, "min_age")),
					pieces.Binary(pieces.OpEqual,
						pieces.MemberOf(pieces.MemberOf(pieces.Param("e"), "Town"), "Name"),
						pieces.Const("Oslo"))),
				"e"))),
		pieces.Quote(pieces.Lambda(pieces.MemberOf(pieces.Param("e"), "Name"), "e")))

	result, err := a.Translate(root)
	require.NoError(t, err)

	assert.Equal(t, "tx-int", result.ID)
	require.Len(t, result.Query.Where, 1)
	assert.Equal(t, `((t0.age >= @min_age) && (t1.name == "Oslo"))`, result.Query.Where[0].String())
	assert.Equal(t, "t0.name", result.Query.Select.String())
	assert.Len(t, result.Query.Tables, 2)
	assert.Len(t, result.Query.Associations, 1)
	require.Len(t, result.Query.Parameters, 1)
	assert.Equal(t, 18, result.Query.Parameters[0].Value)
}

func TestTranslate_SameMemberOnTwoCapturedValues(t *testing.T) {
	a := newAnalyzer(t)
	low := pieces.Const(map[string]any{"min_age": 18})
	high := pieces.Const(map[string]any{"min_age": 65})

	// Entities.Where(e => e.Age >= low.min_age && e.Age < high.min_age)
	root := pieces.Call("Where", pieces.Entities("Person"),
		pieces.Quote(pieces.Lambda(
			pieces.Binary(pieces.OpAndAlso,
				pieces.Binary(pieces.OpGreaterThanOrEqual,
					pieces.MemberOf(pieces.Param("e"), "Age"),
					pieces.MemberOf(low, "min_age")),
				pieces.Binary(pieces.OpLessThan,
					pieces.MemberOf(pieces.Param("e"), "Age"),
					pieces.MemberOf(high, "min_age"))),
			"e")))

	result, err := a.Translate(root)
	require.NoError(t, err)

	require.Len(t, result.Query.Where, 1)
	assert.Equal(t, "((t0.age >= @min_age) && (t0.age < @min_age_1))", result.Query.Where[0].String())
	require.Len(t, result.Query.Parameters, 2)
	assert.Equal(t, 18, result.Query.Parameters[0].Value)
	assert.Equal(t, 65, result.Query.Parameters[1].Value)
}

func TestTranslate_UnmappedColumnThroughResolver(t *testing.T) {
	a := newAnalyzer(t)

	root := pieces.Call("Select", pieces.Entities("Person"),
		pieces.Quote(pieces.Lambda(pieces.MemberOf(pieces.Param("e"), "Shoe"), "e")))

	_, err := a.Translate(root)

	require.Error(t, err)
	assert.True(t, pieces.IsKind(err, pieces.ErrUnmappedColumn))
}
