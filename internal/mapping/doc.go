// Package mapping describes how entities map onto tables.
//
// A Mapping lists entities, each with its table, member-to-column map and
// associations to other entities. Mappings are loaded from CUE files
// (LoadCUE) or introspected from an existing SQLite database (Introspect);
// Load picks the loader from the path.
//
// CUE mapping format:
//
//	entity: Person: {
//	    table: "people"                  // optional, defaults to the plural
//	    columns: ["Name", "Age"]         // or {Name: "full_name", Age: "age"}
//	    associations: Town: {
//	        entity:    "Town"
//	        this_key:  "town_id"
//	        other_key: "id"
//	    }
//	}
//
// Default names are derived with github.com/jinzhu/inflection: entity
// OrderLine maps to table order_lines, member FirstName to column
// first_name.
package mapping
