package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jeason0813/dblinq2007/internal/exprdoc"
	"github.com/jeason0813/dblinq2007/internal/mapping"
	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// loadMapping loads the mapping at path, reporting failures through the
// formatter. Missing files are command errors; malformed mappings are
// validation failures.
func loadMapping(ctx context.Context, formatter *OutputFormatter, path string) (*mapping.Mapping, error) {
	if path == "" {
		_ = formatter.Error(ErrCodeNoMapping, "no mapping given (use --mapping or the mapping config key)", nil)
		return nil, NewExitError(ExitCommandError, "no mapping given")
	}

	formatter.VerboseLog("Loading mapping %s", path)
	m, err := mapping.Load(ctx, path)
	if err == nil {
		formatter.VerboseLog("Loaded %d entities", len(m.Entities))
		return m, nil
	}

	var loadErr *mapping.LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Error(), nil)
		if loadErr.Code == mapping.ErrCodeNotFound {
			return nil, WrapExitError(ExitCommandError, "load mapping", err)
		}
		return nil, WrapExitError(ExitFailure, "load mapping", err)
	}

	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return nil, WrapExitError(ExitFailure, "load mapping", err)
}

// loadExpression decodes the expression document at path.
func loadExpression(formatter *OutputFormatter, path string) (pieces.Piece, error) {
	f, err := os.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeExpression, fmt.Sprintf("expression file not found: %s", path), nil)
		return nil, WrapExitError(ExitCommandError, "open expression", err)
	}
	defer f.Close()

	root, err := exprdoc.Decode(f)
	if err != nil {
		_ = formatter.Error(ErrCodeExpression, fmt.Sprintf("%s: %v", path, err), nil)
		return nil, WrapExitError(ExitFailure, "decode expression", err)
	}
	return root, nil
}
