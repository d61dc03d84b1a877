// Package analyzer translates raw query-expression trees into fully
// analyzed piece trees.
//
// The analyzer walks a tree of raw nodes (calls, lambdas, parameter
// references, quotes, member accesses and operators) and rewrites it into
// pieces that refer only to constants, registered tables, columns,
// associations and external parameters. As a side effect it populates the
// query under construction carried by the pieces.BuilderContext: filter
// predicates in chain order and the recorded projection.
//
// Entity metadata and registration are delegated to two collaborators
// injected at construction:
//
//   - QueryService registers tables, associations, columns and external
//     parameters on the query under construction.
//   - PiecesService reads identities (entity, method, member, parameter
//     name) off raw nodes and assembles pending-argument lists.
//
// Analysis is single-threaded and synchronous. A translation either
// completes or fails as a whole; no partial result is usable after an
// error.
package analyzer
