package mapping

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// LoadCUE loads a mapping from a .cue file or a directory of .cue files.
func LoadCUE(path string) (*Mapping, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("mapping not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing mapping: %v", err)}
	}

	ctx := cuecontext.New()
	var value cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
		}
		inst := instances[0]
		if inst.Err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
		}
		value = ctx.BuildInstance(inst)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
		value = ctx.CompileBytes(data, cue.Filename(filepath.Base(path)))
	}
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return CompileMapping(value)
}

// CompileMapping builds a Mapping from a CUE value holding an "entity"
// struct. Compile errors are returned as *LoadError with the CUE position.
func CompileMapping(v cue.Value) (*Mapping, error) {
	entitiesVal := v.LookupPath(cue.ParsePath("entity"))
	if !entitiesVal.Exists() {
		return nil, &LoadError{Code: ErrCodeNoEntities, Message: "no entities found in mapping", Pos: v.Pos()}
	}

	iter, err := entitiesVal.Fields()
	if err != nil {
		return nil, convertCompileError(formatCUEError(err), "entity")
	}

	m := New()
	for iter.Next() {
		e, err := CompileEntity(iter.Value())
		if err != nil {
			return nil, convertCompileError(err, "entity."+iter.Label())
		}
		if err := m.Add(e); err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidEntity, Message: err.Error(), Pos: iter.Value().Pos()}
		}
	}

	if len(m.Entities) == 0 {
		return nil, &LoadError{Code: ErrCodeNoEntities, Message: "no entities found in mapping", Pos: entitiesVal.Pos()}
	}
	if err := m.Validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeInconsistent, Message: err.Error()}
	}
	return m, nil
}

// CompileEntity parses one entity struct. The entity name is the struct
// label:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: Person: { columns: ["Name"] }`)
//	e, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.Person")))
func CompileEntity(v cue.Value) (*Entity, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	labels := v.Path().Selectors()
	if len(labels) == 0 {
		return nil, &CompileError{Field: "entity", Message: "entity must be a labeled struct", Pos: v.Pos()}
	}
	e := NewEntity(pieces.EntityType(labels[len(labels)-1].String()))

	if tableVal := v.LookupPath(cue.ParsePath("table")); tableVal.Exists() {
		table, err := tableVal.String()
		if err != nil {
			return nil, &CompileError{Field: "table", Message: "table must be a string", Pos: tableVal.Pos()}
		}
		if table == "" {
			return nil, &CompileError{Field: "table", Message: "table must not be empty", Pos: tableVal.Pos()}
		}
		e.Table = table
	}

	if err := parseColumns(v, e); err != nil {
		return nil, err
	}
	if err := parseAssociations(v, e); err != nil {
		return nil, err
	}

	if len(e.Columns) == 0 {
		return nil, &CompileError{Field: "columns", Message: "at least one column is required", Pos: v.Pos()}
	}
	return e, nil
}

// parseColumns accepts a list of member names (default column names) or
// a struct of member: "column".
func parseColumns(v cue.Value, e *Entity) error {
	columnsVal := v.LookupPath(cue.ParsePath("columns"))
	if !columnsVal.Exists() {
		return nil
	}

	switch columnsVal.IncompleteKind() {
	case cue.ListKind:
		list, err := columnsVal.List()
		if err != nil {
			return formatCUEError(err)
		}
		for list.Next() {
			member, err := list.Value().String()
			if err != nil {
				return &CompileError{Field: "columns", Message: "column list entries must be member names", Pos: list.Value().Pos()}
			}
			e.SetColumn(pieces.MemberID(member), "")
		}
	case cue.StructKind:
		iter, err := columnsVal.Fields()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			column, err := iter.Value().String()
			if err != nil {
				return &CompileError{Field: "columns", Message: fmt.Sprintf("column for %s must be a string", iter.Label()), Pos: iter.Value().Pos()}
			}
			e.SetColumn(pieces.MemberID(iter.Label()), column)
		}
	default:
		return &CompileError{Field: "columns", Message: "columns must be a list or a struct", Pos: columnsVal.Pos()}
	}
	return nil
}

func parseAssociations(v cue.Value, e *Entity) error {
	assocVal := v.LookupPath(cue.ParsePath("associations"))
	if !assocVal.Exists() {
		return nil
	}

	iter, err := assocVal.Fields()
	if err != nil {
		return &CompileError{Field: "associations", Message: "associations must be a struct", Pos: assocVal.Pos()}
	}
	for iter.Next() {
		member := pieces.MemberID(iter.Label())
		a := &Association{Member: member}

		target, err := requiredString(iter.Value(), "entity")
		if err != nil {
			return err
		}
		a.Target = pieces.EntityType(target)

		if a.ThisKey, err = requiredString(iter.Value(), "this_key"); err != nil {
			return err
		}
		if a.OtherKey, err = requiredString(iter.Value(), "other_key"); err != nil {
			return err
		}
		e.Associations[member] = a
	}
	return nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: "associations." + field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: "associations." + field, Message: field + " must be a string", Pos: fv.Pos()}
	}
	return s, nil
}

// convertCompileError converts a compile error to a LoadError with
// position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    codeForField(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}
