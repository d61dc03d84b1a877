package pieces

import "fmt"

// BuilderContext is the binding environment threaded through analysis.
//
// Parameters maps formal-parameter names to the pieces they resolve to.
// Query is shared by every scope of one translation.
type BuilderContext struct {
	ID         string // translation ID, for log correlation
	Parameters map[string]Piece
	Query      *Query
}

// NewBuilderContext creates a context with no bindings and an empty query.
func NewBuilderContext(id string) *BuilderContext {
	return &BuilderContext{
		ID:         id,
		Parameters: make(map[string]Piece),
		Query:      NewQuery(),
	}
}

// Clone opens a new scope: the binding map is copied, the query is shared.
// Bindings made on the clone are invisible to the receiver.
func (c *BuilderContext) Clone() *BuilderContext {
	params := make(map[string]Piece, len(c.Parameters))
	for k, v := range c.Parameters {
		params[k] = v
	}
	return &BuilderContext{
		ID:         c.ID,
		Parameters: params,
		Query:      c.Query,
	}
}

// Bind sets the piece a formal parameter resolves to. Last write wins.
func (c *BuilderContext) Bind(name string, p Piece) {
	c.Parameters[name] = p
}

// Lookup returns the piece bound to name.
func (c *BuilderContext) Lookup(name string) (Piece, bool) {
	p, ok := c.Parameters[name]
	return p, ok && p != nil
}

// String returns a short description of the context.
func (c *BuilderContext) String() string {
	return fmt.Sprintf("BuilderContext{id=%s, bindings=%d, where=%d}", c.ID, len(c.Parameters), len(c.Query.Where))
}
