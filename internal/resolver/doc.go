// Package resolver implements the analyzer collaborators over a
// mapping.Mapping.
//
// Registry registers tables, columns, associations and external
// parameters on the query under construction, de-duplicating by entity
// (root tables) and by (table, member). Each association join gets its
// own table alias, so self-joins stay distinct.
//
// Service reads the marker constants laid out by the pieces builders.
package resolver
