package pieces

import (
	"fmt"

	"github.com/jeason0813/dblinq2007/internal/ir"
)

// ToIR converts a piece tree into an ir.IRValue for canonical encoding.
// Tables are referenced by alias; the full table list lives on the Query.
func ToIR(p Piece) ir.IRValue {
	switch piece := p.(type) {
	case nil:
		return ir.IRNull{}
	case *Constant:
		return constantToIR(piece.Value)
	case *Operation:
		operands := make(ir.IRArray, len(piece.Operands))
		for i, operand := range piece.Operands {
			operands[i] = ToIR(operand)
		}
		return ir.IRObject{
			"op":       ir.IRString(piece.Op.String()),
			"operands": operands,
		}
	case *Table:
		return ir.IRObject{"table": ir.IRString(piece.Alias)}
	case *Column:
		return ir.IRObject{
			"column": ir.IRString(piece.Name),
			"table":  ir.IRString(tableAlias(piece.Table)),
		}
	case *Association:
		return ir.IRObject{
			"association": ir.IRString(string(piece.Member)),
			"table":       ir.IRString(tableAlias(piece.Table)),
			"joined":      ir.IRString(tableAlias(piece.Joined)),
		}
	case *Parameter:
		return ir.IRObject{"parameter": ir.IRString(piece.Name)}
	default:
		return ir.IRObject{"unknown": ir.IRString(fmt.Sprintf("%T", p))}
	}
}

func constantToIR(v any) ir.IRValue {
	switch val := v.(type) {
	case EntitySet:
		return ir.IRObject{"entities": ir.IRString(string(val.Entity))}
	case Method:
		return ir.IRObject{"method": ir.IRString(string(val.Name))}
	case Member:
		return ir.IRObject{"member": ir.IRString(string(val.Name))}
	case ParameterName:
		return ir.IRObject{"param": ir.IRString(string(val))}
	}
	return valueToIR(v)
}

// valueToIR converts a literal, falling back to a type tag for captured
// host values that have no literal form.
func valueToIR(v any) ir.IRValue {
	if val, err := ir.FromGo(v); err == nil {
		return val
	}
	return ir.IRObject{"captured": ir.IRString(fmt.Sprintf("%T", v))}
}

// QueryToIR converts the query under construction into an ir.IRValue.
func QueryToIR(q *Query) ir.IRValue {
	tables := make(ir.IRArray, len(q.Tables))
	for i, t := range q.Tables {
		tables[i] = ir.IRObject{
			"alias":  ir.IRString(t.Alias),
			"entity": ir.IRString(string(t.Entity)),
			"name":   ir.IRString(t.Name),
		}
	}

	columns := make(ir.IRArray, len(q.Columns))
	for i, c := range q.Columns {
		columns[i] = ir.IRObject{
			"member": ir.IRString(string(c.Member)),
			"name":   ir.IRString(c.Name),
			"table":  ir.IRString(tableAlias(c.Table)),
		}
	}

	associations := make(ir.IRArray, len(q.Associations))
	for i, a := range q.Associations {
		associations[i] = ir.IRObject{
			"joined":    ir.IRString(tableAlias(a.Joined)),
			"member":    ir.IRString(string(a.Member)),
			"other_key": ir.IRString(a.OtherKey),
			"table":     ir.IRString(tableAlias(a.Table)),
			"this_key":  ir.IRString(a.ThisKey),
		}
	}

	params := make(ir.IRArray, len(q.Parameters))
	for i, p := range q.Parameters {
		params[i] = ir.IRObject{
			"name":  ir.IRString(p.Name),
			"value": valueToIR(p.Value),
		}
	}

	where := make(ir.IRArray, len(q.Where))
	for i, pred := range q.Where {
		where[i] = ToIR(pred)
	}

	return ir.IRObject{
		"tables":       tables,
		"columns":      columns,
		"associations": associations,
		"parameters":   params,
		"where":        where,
		"select":       ToIR(q.Select),
	}
}

// Snapshot returns the canonical JSON of a translation result: the piece
// returned for the root expression together with the populated query.
func Snapshot(root Piece, q *Query) ([]byte, error) {
	return ir.MarshalCanonical(ir.IRObject{
		"result": ToIR(root),
		"query":  QueryToIR(q),
	})
}
