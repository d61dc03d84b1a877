package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCommand(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateCommand_Text(t *testing.T) {
	out, err := runValidateCommand(t, &RootOptions{Format: "text"}, peopleMapping)
	require.NoError(t, err)

	assert.Contains(t, out, "Person")
	assert.Contains(t, out, "people")
	assert.Contains(t, out, "Town->Town(town_id=id)")
	assert.Contains(t, out, "✓ Mapping valid (2 entities)")
}

func TestValidateCommand_JSON(t *testing.T) {
	out, err := runValidateCommand(t, &RootOptions{Format: "json"}, peopleMapping)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Entities, 2)
	assert.Equal(t, EntitySummary{
		Name:         "Person",
		Table:        "people",
		Columns:      []string{"Age=age", "Name=name"},
		Associations: []string{"Town->Town(town_id=id)"},
	}, resp.Data.Entities[0])
	assert.Equal(t, "towns", resp.Data.Entities[1].Table)
}

func TestValidateCommand_UsesConfiguredMapping(t *testing.T) {
	out, err := runValidateCommand(t, &RootOptions{Format: "text", Mapping: peopleMapping})
	require.NoError(t, err)
	assert.Contains(t, out, "Mapping valid")
}

func TestValidateCommand_InvalidMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`entity: Person: { columns: ["Age"], associations: Town: { entity: "Town", this_key: "town_id", other_key: "id" } }`), 0o644))

	out, err := runValidateCommand(t, &RootOptions{Format: "text"}, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E205]")
}

func TestValidateCommand_NotFound(t *testing.T) {
	out, err := runValidateCommand(t, &RootOptions{Format: "json"}, "/nonexistent/people.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "E005", resp.Error.Code)
}

func TestValidateCommand_NoMapping(t *testing.T) {
	_, err := runValidateCommand(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
