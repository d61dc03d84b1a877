package pieces

import "fmt"

// Query is the query under construction.
//
// Tables, columns, associations and parameters are registered by the
// resolver as member accesses are analyzed. Where is append-only and keeps
// predicate order; Select holds the projection of the last select.
type Query struct {
	Tables       []*Table
	Columns      []*Column
	Associations []*Association
	Parameters   []*Parameter
	Where        []Piece
	Select       Piece
}

// NewQuery creates an empty query.
func NewQuery() *Query {
	return &Query{}
}

// AddTable registers a new table and assigns it the next alias.
func (q *Query) AddTable(entity EntityType, name string) *Table {
	t := &Table{
		Entity: entity,
		Name:   name,
		Alias:  fmt.Sprintf("t%d", len(q.Tables)),
	}
	q.Tables = append(q.Tables, t)
	return t
}

// FindTable returns the first table registered for entity, or nil.
func (q *Query) FindTable(entity EntityType) *Table {
	for _, t := range q.Tables {
		if t.Entity == entity {
			return t
		}
	}
	return nil
}

// FindColumn returns the column registered for (t, member), or nil.
func (q *Query) FindColumn(t *Table, member MemberID) *Column {
	for _, c := range q.Columns {
		if c.Table == t && c.Member == member {
			return c
		}
	}
	return nil
}

// AddColumn registers a column.
func (q *Query) AddColumn(c *Column) {
	q.Columns = append(q.Columns, c)
}

// FindAssociation returns the association registered for (t, member), or nil.
func (q *Query) FindAssociation(t *Table, member MemberID) *Association {
	for _, a := range q.Associations {
		if a.Table == t && a.Member == member {
			return a
		}
	}
	return nil
}

// AddAssociation registers an association.
func (q *Query) AddAssociation(a *Association) {
	q.Associations = append(q.Associations, a)
}

// FindParameter returns the parameter registered under name, or nil.
func (q *Query) FindParameter(name string) *Parameter {
	for _, p := range q.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddParameter registers an external parameter.
func (q *Query) AddParameter(p *Parameter) {
	q.Parameters = append(q.Parameters, p)
}

// AddWhere appends a filter predicate.
func (q *Query) AddWhere(p Piece) {
	q.Where = append(q.Where, p)
}

// SetSelect records the projection.
func (q *Query) SetSelect(p Piece) {
	q.Select = p
}
