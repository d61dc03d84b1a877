package mapping

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Load reads a mapping from path: SQLite databases (.db, .sqlite,
// .sqlite3) are introspected, anything else is loaded as CUE.
func Load(ctx context.Context, path string) (*Mapping, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s: %v", path, err)}
		}
		defer db.Close()
		return Introspect(ctx, db)
	default:
		return LoadCUE(path)
	}
}
