package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

const peopleCUE = `
entity: Person: {
	columns: ["Name", "Age", "TownId"]
	associations: Town: {
		entity:    "Town"
		this_key:  "town_id"
		other_key: "id"
	}
}

entity: Town: {
	table: "town"
	columns: {
		Id:   "id"
		Name: "town_name"
	}
}
`

func TestCompileMapping(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(peopleCUE)
	require.NoError(t, v.Err())

	m, err := CompileMapping(v)
	require.NoError(t, err)

	person := m.Entities["Person"]
	require.NotNil(t, person)
	assert.Equal(t, "people", person.Table)
	assert.Equal(t, "town_id", person.Columns["TownId"])
	assert.Equal(t, &Association{Member: "Town", Target: "Town", ThisKey: "town_id", OtherKey: "id"}, person.Associations["Town"])

	town := m.Entities["Town"]
	require.NotNil(t, town)
	assert.Equal(t, "town", town.Table)
	assert.Equal(t, "town_name", town.Columns["Name"])
}

func TestCompileEntity_Label(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`entity: OrderLine: { columns: ["Quantity"] }`)

	e, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.OrderLine")))

	require.NoError(t, err)
	assert.Equal(t, pieces.EntityType("OrderLine"), e.Name)
	assert.Equal(t, "order_lines", e.Table)
	assert.Equal(t, "quantity", e.Columns["Quantity"])
}

func TestCompileMapping_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "no entities",
			source:   `other: 1`,
			wantCode: ErrCodeNoEntities,
			wantMsg:  "no entities",
		},
		{
			name:     "no columns",
			source:   `entity: Person: { table: "people" }`,
			wantCode: ErrCodeInvalidColumn,
			wantMsg:  "at least one column is required",
		},
		{
			name:     "columns wrong kind",
			source:   `entity: Person: { columns: 3 }`,
			wantCode: ErrCodeInvalidColumn,
			wantMsg:  "columns must be a list or a struct",
		},
		{
			name:     "table not a string",
			source:   `entity: Person: { table: 1, columns: ["Name"] }`,
			wantCode: ErrCodeInvalidEntity,
			wantMsg:  "table must be a string",
		},
		{
			name:     "association missing key",
			source:   `entity: Person: { columns: ["Name"], associations: Town: { entity: "Town", this_key: "town_id" } }`,
			wantCode: ErrCodeInvalidAssoc,
			wantMsg:  "other_key is required",
		},
		{
			name:     "association to unknown entity",
			source:   `entity: Person: { columns: ["Name"], associations: Town: { entity: "Town", this_key: "town_id", other_key: "id" } }`,
			wantCode: ErrCodeInconsistent,
			wantMsg:  `unknown entity "Town"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := cuecontext.New()
			v := ctx.CompileString(tt.source)
			require.NoError(t, v.Err())

			_, err := CompileMapping(v)

			require.Error(t, err)
			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "expected *LoadError, got %T", err)
			assert.Equal(t, tt.wantCode, loadErr.Code)
			assert.Contains(t, loadErr.Message, tt.wantMsg)
		})
	}
}

func TestLoadCUE_FileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.cue")
	require.NoError(t, os.WriteFile(path, []byte(peopleCUE), 0o644))

	fromFile, err := LoadCUE(path)
	require.NoError(t, err)
	assert.Len(t, fromFile.Entities, 2)

	fromDir, err := LoadCUE(dir)
	require.NoError(t, err)
	assert.Equal(t, fromFile.EntityNames(), fromDir.EntityNames())
}

func TestLoadCUE_NotFound(t *testing.T) {
	_, err := LoadCUE(filepath.Join(t.TempDir(), "missing.cue"))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadCUE_SyntaxErrorHasPosition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.cue")
	require.NoError(t, os.WriteFile(path, []byte("entity: Person: {\n\tcolumns: [\n"), 0o644))

	_, err := LoadCUE(path)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeBuildFailed, loadErr.Code)
}
