// Package exprdoc decodes YAML expression documents into raw piece trees.
//
// Each YAML mapping is one node and carries exactly one form key:
//
//	entities: Person                 # the queried entity set
//	const: 18                        # literal (string, int, bool, null)
//	captured: {min_age: 18}          # captured host value
//	param: e                         # parameter reference
//	lambda: {params: [e], body: N}   # lambda
//	quote: N                         # deferred scope
//	member: Age                      # member access, with
//	of: N                            #   its target
//	call: Where                      # query method call, with
//	source: N                        #   its source and
//	args: [N, ...]                   #   trailing arguments
//	op: GreaterThan                  # operator, with
//	operands: [N, ...]               #   its operands
//
// Example, Entities.Where(e => e.Age > 18):
//
//	call: Where
//	source: {entities: Person}
//	args:
//	  - quote:
//	      lambda:
//	        params: [e]
//	        body:
//	          op: GreaterThan
//	          operands: [{member: Age, of: {param: e}}, {const: 18}]
package exprdoc
