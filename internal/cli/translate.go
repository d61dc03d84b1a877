package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jeason0813/dblinq2007/internal/analyzer"
	"github.com/jeason0813/dblinq2007/internal/pieces"
	"github.com/jeason0813/dblinq2007/internal/resolver"
)

// TranslateResult is the JSON payload of a successful translation.
type TranslateResult struct {
	ID         string          `json:"id"`
	Expression string          `json:"expression"`
	Result     string          `json:"result"`
	Where      []string        `json:"where"`
	Select     string          `json:"select,omitempty"`
	Snapshot   json.RawMessage `json:"snapshot"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <expression-file>",
		Short: "Translate an expression document",
		Long: `Translate a YAML expression document against a mapping and print the
resolved pieces: the tables, columns, associations and parameters
registered, the filter predicates and the projection.

Exit codes:
  0 - Translation succeeded
  1 - Translation failed (unmapped column, unsupported method, etc.)
  2 - Command error (missing files, no mapping)

Examples:
  pieces translate query.yaml --mapping people.cue
  pieces translate query.yaml --mapping app.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runTranslate(opts *RootOptions, exprPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	m, err := loadMapping(cmd.Context(), formatter, opts.Mapping)
	if err != nil {
		return err
	}
	root, err := loadExpression(formatter, exprPath)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Translating %s", root)

	a := analyzer.New(resolver.NewRegistry(m), resolver.NewService(), analyzer.WithLogger(opts.logger()))
	res, err := a.Translate(root)
	if err != nil {
		code := ErrCodeGeneric
		if kind, ok := pieces.KindOf(err); ok {
			code = string(kind)
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "translation failed", err)
	}

	if formatter.Format == "json" {
		snapshot, err := pieces.Snapshot(res.Root, res.Query)
		if err != nil {
			return WrapExitError(ExitFailure, "snapshot translation", err)
		}
		return formatter.encode(CLIResponse{
			Status:        "ok",
			TranslationID: res.ID,
			Data: TranslateResult{
				ID:         res.ID,
				Expression: root.String(),
				Result:     res.Root.String(),
				Where:      renderPieces(res.Query.Where),
				Select:     renderOptional(res.Query.Select),
				Snapshot:   snapshot,
			},
		})
	}

	outputTranslateText(formatter, res)
	return nil
}

// outputTranslateText prints the result and one table row per registered
// query piece.
func outputTranslateText(formatter *OutputFormatter, res *analyzer.Result) {
	fmt.Fprintf(formatter.Writer, "Translation %s\n", res.ID)
	fmt.Fprintf(formatter.Writer, "Result: %s\n", res.Root)

	q := res.Query
	var rows []table.Row
	for _, t := range q.Tables {
		rows = append(rows, table.Row{"table", t.Alias, fmt.Sprintf("%s (%s)", t.Name, t.Entity)})
	}
	for _, a := range q.Associations {
		rows = append(rows, table.Row{"association", a.String(), fmt.Sprintf("%s.%s = %s.%s", a.Table.Alias, a.ThisKey, a.Joined.Alias, a.OtherKey)})
	}
	for _, c := range q.Columns {
		rows = append(rows, table.Row{"column", c.String(), string(c.Member)})
	}
	for _, p := range q.Parameters {
		rows = append(rows, table.Row{"parameter", p.String(), fmt.Sprintf("%v", p.Value)})
	}
	for i, w := range q.Where {
		rows = append(rows, table.Row{"where", fmt.Sprintf("#%d", i+1), w.String()})
	}
	if q.Select != nil {
		rows = append(rows, table.Row{"select", "", q.Select.String()})
	}

	formatter.Table(table.Row{"Kind", "Piece", "Detail"}, rows)
}

func renderPieces(ps []pieces.Piece) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

func renderOptional(p pieces.Piece) string {
	if p == nil {
		return ""
	}
	return p.String()
}
