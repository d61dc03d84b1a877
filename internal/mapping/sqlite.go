package mapping

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jinzhu/inflection"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

const (
	listTablesQuery  = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	tableInfoQuery   = `SELECT name, pk FROM pragma_table_info(?) ORDER BY cid`
	foreignKeysQuery = `SELECT "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`
)

// OpenSQLite opens an existing SQLite database read-only for
// introspection.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

type foreignKey struct {
	table string
	from  string
	to    string
}

type tableSchema struct {
	name        string
	columns     []string
	primaryKey  string
	foreignKeys []foreignKey
}

// Introspect derives a mapping from the schema of db.
//
// Every table becomes an entity named after the singular of the table
// name; every column becomes a member. Each foreign key from column
// town_id to table towns yields an association Town on the owning entity
// and a reverse association on the target named after the owning table's
// plural (Town.People). Reverse associations are skipped when the name is
// already taken.
func Introspect(ctx context.Context, db *sql.DB) (*Mapping, error) {
	tables, err := listTables(ctx, db)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeIntrospection, Message: err.Error()}
	}
	if len(tables) == 0 {
		return nil, &LoadError{Code: ErrCodeNoEntities, Message: "database has no tables"}
	}

	schemas := make([]*tableSchema, 0, len(tables))
	byTable := make(map[string]*tableSchema, len(tables))
	for _, name := range tables {
		schema, err := readTable(ctx, db, name)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeIntrospection, Message: err.Error()}
		}
		schemas = append(schemas, schema)
		byTable[name] = schema
	}

	m := New()
	for _, schema := range schemas {
		e := NewEntity(EntityNameForTable(schema.name))
		e.Table = schema.name
		for _, column := range schema.columns {
			e.SetColumn(MemberNameForColumn(column), column)
		}
		if err := m.Add(e); err != nil {
			return nil, &LoadError{Code: ErrCodeIntrospection, Message: fmt.Sprintf("table %s: %v", schema.name, err)}
		}
	}

	for _, schema := range schemas {
		owner := m.Entities[EntityNameForTable(schema.name)]
		for _, fk := range schema.foreignKeys {
			target, ok := byTable[fk.table]
			if !ok {
				return nil, &LoadError{Code: ErrCodeIntrospection, Message: fmt.Sprintf("table %s: foreign key references unknown table %s", schema.name, fk.table)}
			}
			targetEntity := m.Entities[EntityNameForTable(target.name)]

			otherKey := fk.to
			if otherKey == "" {
				otherKey = target.primaryKey
			}

			forward := associationMember(fk.from, targetEntity.Name)
			if !owner.hasMember(forward) {
				owner.Associations[forward] = &Association{
					Member:   forward,
					Target:   targetEntity.Name,
					ThisKey:  fk.from,
					OtherKey: otherKey,
				}
			}

			reverse := pieces.MemberID(camelCase(inflection.Plural(snakeCase(string(owner.Name)))))
			if !targetEntity.hasMember(reverse) {
				targetEntity.Associations[reverse] = &Association{
					Member:   reverse,
					Target:   owner.Name,
					ThisKey:  otherKey,
					OtherKey: fk.from,
				}
			}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeInconsistent, Message: err.Error()}
	}
	return m, nil
}

// associationMember names the association of a foreign-key column:
// town_id becomes Town; a column without the _id suffix falls back to
// the target entity name.
func associationMember(column string, target pieces.EntityType) pieces.MemberID {
	const suffix = "_id"
	if len(column) > len(suffix) && column[len(column)-len(suffix):] == suffix {
		return MemberNameForColumn(column[:len(column)-len(suffix)])
	}
	return pieces.MemberID(target)
}

func (e *Entity) hasMember(member pieces.MemberID) bool {
	_, isColumn := e.Columns[member]
	_, isAssoc := e.Associations[member]
	return isColumn || isAssoc
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

func readTable(ctx context.Context, db *sql.DB, table string) (*tableSchema, error) {
	schema := &tableSchema{name: table}

	rows, err := db.QueryContext(ctx, tableInfoQuery, table)
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	for rows.Next() {
		var name string
		var pk int
		if err := rows.Scan(&name, &pk); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		schema.columns = append(schema.columns, name)
		if pk == 1 {
			schema.primaryKey = name
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, foreignKeysQuery, table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var fk foreignKey
		var to sql.NullString
		if err := rows.Scan(&fk.table, &fk.from, &to); err != nil {
			return nil, fmt.Errorf("scan foreign key of %s: %w", table, err)
		}
		fk.to = to.String
		schema.foreignKeys = append(schema.foreignKeys, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys of %s: %w", table, err)
	}
	return schema, nil
}
