package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jeason0813/dblinq2007/internal/mapping"
)

// EntitySummary describes one mapped entity.
type EntitySummary struct {
	Name         string   `json:"name"`
	Table        string   `json:"table"`
	Columns      []string `json:"columns"`
	Associations []string `json:"associations,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Mapping  string          `json:"mapping"`
	Entities []EntitySummary `json:"entities"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [mapping]",
		Short: "Validate a mapping",
		Long: `Load a CUE mapping or introspect a SQLite database and check that
every association targets a mapped entity.

Without an argument the configured mapping is validated.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Mapping
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	m, err := loadMapping(cmd.Context(), formatter, path)
	if err != nil {
		return err
	}

	result := ValidationResult{Valid: true, Mapping: path, Entities: summarize(m)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	var rows []table.Row
	for _, e := range result.Entities {
		rows = append(rows, table.Row{e.Name, e.Table, strings.Join(e.Columns, ", "), strings.Join(e.Associations, ", ")})
	}
	formatter.Table(table.Row{"Entity", "Table", "Columns", "Associations"}, rows)
	fmt.Fprintf(formatter.Writer, "✓ Mapping valid (%d entities)\n", len(result.Entities))
	return nil
}

// summarize lists entities by name with members in sorted order.
func summarize(m *mapping.Mapping) []EntitySummary {
	names := m.EntityNames()
	out := make([]EntitySummary, 0, len(names))
	for _, name := range names {
		e, _ := m.Entity(name)
		s := EntitySummary{Name: string(e.Name), Table: e.Table}
		for _, member := range e.ColumnMembers() {
			col, _ := e.Column(member)
			s.Columns = append(s.Columns, fmt.Sprintf("%s=%s", member, col))
		}
		for _, member := range e.AssociationMembers() {
			a, _ := e.Association(member)
			s.Associations = append(s.Associations, fmt.Sprintf("%s->%s(%s=%s)", member, a.Target, a.ThisKey, a.OtherKey))
		}
		out = append(out, s)
	}
	return out
}
