package resolver

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/jeason0813/dblinq2007/internal/mapping"
	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// ErrUnmappedEntity is returned when a query names an entity the mapping
// does not know.
var ErrUnmappedEntity = errors.New("entity is not mapped")

// Registry implements analyzer.QueryService over a mapping.
type Registry struct {
	mapping *mapping.Mapping
}

// NewRegistry creates a registry over m.
func NewRegistry(m *mapping.Mapping) *Registry {
	return &Registry{mapping: m}
}

// RegisterTable returns the table of entity, registering it once per query.
func (r *Registry) RegisterTable(entity pieces.EntityType, ctx *pieces.BuilderContext) (*pieces.Table, error) {
	e, ok := r.mapping.Entity(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnmappedEntity, entity)
	}
	if t := ctx.Query.FindTable(entity); t != nil {
		return t, nil
	}
	return ctx.Query.AddTable(e.Name, e.Table), nil
}

// RegisterAssociation returns the association member of t, joining the
// target entity's table on first use. Returns nil if member is not an
// association.
func (r *Registry) RegisterAssociation(t *pieces.Table, member pieces.MemberID, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	e, err := r.entityOf(t)
	if err != nil {
		return nil, err
	}
	assoc, ok := e.Association(member)
	if !ok {
		return nil, nil
	}
	if existing := ctx.Query.FindAssociation(t, member); existing != nil {
		return existing, nil
	}

	target, ok := r.mapping.Entity(assoc.Target)
	if !ok {
		return nil, fmt.Errorf("%w: %s (target of %s.%s)", ErrUnmappedEntity, assoc.Target, e.Name, member)
	}

	a := &pieces.Association{
		Table:    t,
		Member:   member,
		Joined:   ctx.Query.AddTable(target.Name, target.Table),
		ThisKey:  assoc.ThisKey,
		OtherKey: assoc.OtherKey,
	}
	ctx.Query.AddAssociation(a)
	return a, nil
}

// RegisterColumn returns the column mapped to member of t, or nil.
func (r *Registry) RegisterColumn(t *pieces.Table, member pieces.MemberID, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	e, err := r.entityOf(t)
	if err != nil {
		return nil, err
	}
	name, ok := e.Column(member)
	if !ok {
		return nil, nil
	}
	if existing := ctx.Query.FindColumn(t, member); existing != nil {
		return existing, nil
	}

	c := &pieces.Column{Table: t, Member: member, Name: name}
	ctx.Query.AddColumn(c)
	return c, nil
}

// RegisterParameter binds a member of a captured host value as an
// external parameter.
//
// node is a member access whose target is a Constant holding the captured
// value or a Parameter produced by an earlier access (nested paths). The
// parameter is named after the member path, e.g. "Filter.MinAge". A path
// already bound to a different value gets a numeric suffix ("MinAge_1").
// Returns nil if the value has no such member.
func (r *Registry) RegisterParameter(node pieces.Piece, ctx *pieces.BuilderContext) (pieces.Piece, error) {
	access, ok := node.(*pieces.Operation)
	if !ok || access.Op != pieces.OpMemberAccess || len(access.Operands) != 2 {
		return nil, fmt.Errorf("expected member access, got %s", node)
	}
	memberConst, ok := access.Operands[1].(*pieces.Constant)
	if !ok {
		return nil, fmt.Errorf("member operand is not a constant: %s", access.Operands[1])
	}
	member, ok := memberConst.Value.(pieces.Member)
	if !ok {
		return nil, fmt.Errorf("member operand is not a member name: %s", memberConst)
	}

	var holder any
	var name string
	switch target := access.Operands[0].(type) {
	case *pieces.Constant:
		holder = target.Value
		name = string(member.Name)
	case *pieces.Parameter:
		holder = target.Value
		name = target.Name + "." + string(member.Name)
	default:
		return nil, fmt.Errorf("member access target is not a captured value: %s", access.Operands[0])
	}

	value, found, err := memberValue(holder, member.Name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	unique := name
	for i := 1; ; i++ {
		existing := ctx.Query.FindParameter(unique)
		if existing == nil {
			break
		}
		if reflect.DeepEqual(existing.Value, value) {
			return existing, nil
		}
		unique = fmt.Sprintf("%s_%d", name, i)
	}
	p := &pieces.Parameter{Name: unique, Value: value}
	ctx.Query.AddParameter(p)
	return p, nil
}

func (r *Registry) entityOf(t *pieces.Table) (*mapping.Entity, error) {
	if t == nil {
		return nil, errors.New("nil table")
	}
	e, ok := r.mapping.Entity(t.Entity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnmappedEntity, t.Entity)
	}
	return e, nil
}

// memberValue reads member from a map with string keys or an exported
// struct field, following pointers.
func memberValue(holder any, member pieces.MemberID) (any, bool, error) {
	switch holder.(type) {
	case pieces.EntitySet, pieces.Method, pieces.Member, pieces.ParameterName:
		return nil, false, fmt.Errorf("%T is not a captured value", holder)
	}

	rv := reflect.ValueOf(holder)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false, fmt.Errorf("cannot read %s of nil", member)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false, fmt.Errorf("map keys must be strings, got %s", rv.Type().Key())
		}
		v := rv.MapIndex(reflect.ValueOf(string(member)).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false, nil
		}
		return v.Interface(), true, nil
	case reflect.Struct:
		field, ok := rv.Type().FieldByName(string(member))
		if !ok || !field.IsExported() {
			return nil, false, nil
		}
		return rv.FieldByIndex(field.Index).Interface(), true, nil
	case reflect.Invalid:
		return nil, false, fmt.Errorf("cannot read %s of nil", member)
	default:
		return nil, false, fmt.Errorf("cannot read %s of %s value", member, rv.Kind())
	}
}
