// Package harness runs translation scenarios.
//
// A scenario names a mapping, an expression document and the expected
// outcome of translating it: either an error kind, or the rendered
// predicates, projection, result and registered columns, tables and
// parameters. Run translates and checks the expectations; RunWithGolden
// additionally compares the canonical JSON of the translation against
// testdata/golden/<name>.golden via goldie.
//
// Scenario format:
//
//	name: adults_names
//	description: Filter on age and project the name
//	mapping: ../mappings/people.cue      # relative to the scenario file
//	translation_id: tx-adults            # optional, fixed translation ID
//	expression:
//	  call: Select
//	  source: {...}
//	  args: [...]
//	expect:
//	  where: ["(t0.age > 18)"]
//	  select: t0.name
//	  result: t0.name
//	  columns: [age, name]
//	  tables: [people]
//	  parameters: []
//
// or, for failing translations:
//
//	expect:
//	  error: UNMAPPED_COLUMN
//
// Every run uses a fixed translation ID and discards logs, so results are
// reproducible.
package harness
