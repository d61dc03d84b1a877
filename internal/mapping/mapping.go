package mapping

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// Mapping is the set of mapped entities.
type Mapping struct {
	Entities map[pieces.EntityType]*Entity
}

// Entity maps one entity type onto a table.
type Entity struct {
	Name         pieces.EntityType
	Table        string
	Columns      map[pieces.MemberID]string
	Associations map[pieces.MemberID]*Association
}

// Association describes a navigable member leading to another entity.
//
// ThisKey is the column on the owning entity's table, OtherKey the column
// on Target's table.
type Association struct {
	Member   pieces.MemberID
	Target   pieces.EntityType
	ThisKey  string
	OtherKey string
}

// New creates an empty mapping.
func New() *Mapping {
	return &Mapping{Entities: make(map[pieces.EntityType]*Entity)}
}

// NewEntity creates an entity mapped to its default table name.
func NewEntity(name pieces.EntityType) *Entity {
	return &Entity{
		Name:         name,
		Table:        DefaultTableName(name),
		Columns:      make(map[pieces.MemberID]string),
		Associations: make(map[pieces.MemberID]*Association),
	}
}

// Add registers e. Entity names are unique.
func (m *Mapping) Add(e *Entity) error {
	if _, exists := m.Entities[e.Name]; exists {
		return fmt.Errorf("duplicate entity %q", e.Name)
	}
	m.Entities[e.Name] = e
	return nil
}

// Entity returns the entity named name.
func (m *Mapping) Entity(name pieces.EntityType) (*Entity, bool) {
	e, ok := m.Entities[name]
	return e, ok
}

// EntityNames returns the entity names in sorted order.
func (m *Mapping) EntityNames() []pieces.EntityType {
	return slices.Sorted(maps.Keys(m.Entities))
}

// Validate checks cross-entity references: every association must target
// a mapped entity, and no member may be both a column and an association.
func (m *Mapping) Validate() error {
	for _, name := range m.EntityNames() {
		e := m.Entities[name]
		for _, member := range e.AssociationMembers() {
			a := e.Associations[member]
			if _, ok := m.Entities[a.Target]; !ok {
				return fmt.Errorf("%s.%s: association targets unknown entity %q", name, member, a.Target)
			}
			if _, clash := e.Columns[member]; clash {
				return fmt.Errorf("%s.%s: member is both a column and an association", name, member)
			}
		}
	}
	return nil
}

// SetColumn maps member to column, deriving the column name when empty.
func (e *Entity) SetColumn(member pieces.MemberID, column string) {
	if column == "" {
		column = DefaultColumnName(member)
	}
	e.Columns[member] = column
}

// Column returns the column mapped to member.
func (e *Entity) Column(member pieces.MemberID) (string, bool) {
	c, ok := e.Columns[member]
	return c, ok
}

// Association returns the association reached through member.
func (e *Entity) Association(member pieces.MemberID) (*Association, bool) {
	a, ok := e.Associations[member]
	return a, ok
}

// ColumnMembers returns the column members in sorted order.
func (e *Entity) ColumnMembers() []pieces.MemberID {
	return slices.Sorted(maps.Keys(e.Columns))
}

// AssociationMembers returns the association members in sorted order.
func (e *Entity) AssociationMembers() []pieces.MemberID {
	return slices.Sorted(maps.Keys(e.Associations))
}
