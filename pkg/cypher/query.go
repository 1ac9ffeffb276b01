package cypher

// EdgeDirection identifies which way a relationship pattern points.
type EdgeDirection int

const (
	EdgeBoth EdgeDirection = iota
	EdgeOutgoing
	EdgeIncoming
)

// NodePattern represents one node in a graph pattern: (n:Label {prop: val}).
type NodePattern struct {
	Variable   string
	Labels     []string
	Properties map[string]Expr
}

// RelPattern represents one relationship in a graph pattern:
// -[r:TYPE*min..max {prop: val}]->. MinHops/MaxHops are nil for a
// fixed single-hop edge; both set to the same value still means a
// variable-length traversal of exactly that length.
type RelPattern struct {
	Variable   string
	Types      []string // multiple with |, e.g. [:KNOWS|FOLLOWS]
	Direction  EdgeDirection
	Properties map[string]Expr
	// VarLength is true whenever a `*` was present at all, even with no
	// explicit range (`*` alone means unbounded: MinHops=MaxHops=nil).
	VarLength bool
	MinHops   *int
	MaxHops   *int
}

// Pattern is one comma-separated path in a MATCH/CREATE/MERGE: an
// alternating Nodes[0] Edges[0] Nodes[1] Edges[1] Nodes[2]... sequence.
// len(Nodes) == len(Edges)+1 always holds for a non-empty pattern.
type Pattern struct {
	Variable string // path variable: p = (a)-[]->(b)
	Nodes    []NodePattern
	Edges    []RelPattern
}

// Clause is one step of a query body. Implemented by the *Clause
// types below; ClauseKind lets planner switch without a type assertion
// chain when it only needs to know the shape, not the full payload.
type Clause interface {
	clauseMarker()
	Kind() ClauseKind
}

type ClauseKind int

const (
	ClauseMatch ClauseKind = iota
	ClauseOptionalMatch
	ClauseCreate
	ClauseMerge
	ClauseSet
	ClauseRemove
	ClauseDelete
	ClauseWith
	ClauseReturn
	ClauseUnwind
	ClauseCall
	ClauseForeach
)

type MatchClause struct {
	Patterns []Pattern
	Optional bool
	Where    *Expr
}

func (c *MatchClause) clauseMarker() {}
func (c *MatchClause) Kind() ClauseKind {
	if c.Optional {
		return ClauseOptionalMatch
	}
	return ClauseMatch
}

type CreateClause struct {
	Patterns []Pattern
}

func (c *CreateClause) clauseMarker()   {}
func (c *CreateClause) Kind() ClauseKind { return ClauseCreate }

// MergeClause represents MERGE pattern [ON CREATE SET ...] [ON MATCH SET ...].
type MergeClause struct {
	Pattern  Pattern
	OnCreate []SetItem
	OnMatch  []SetItem
}

func (c *MergeClause) clauseMarker()   {}
func (c *MergeClause) Kind() ClauseKind { return ClauseMerge }

// SetItemKind distinguishes property assignment from label addition and
// from whole-entity property replacement (n = {...} / n += {...}).
type SetItemKind int

const (
	SetProperty SetItemKind = iota
	SetLabels
	SetReplace // n = expr, replaces all properties
	SetMerge   // n += expr, merges into existing properties
)

type SetItem struct {
	Kind     SetItemKind
	Variable string
	Property string   // for SetProperty
	Labels   []string // for SetLabels
	Value    Expr      // for SetProperty/SetReplace/SetMerge
}

type SetClause struct {
	Items []SetItem
}

func (c *SetClause) clauseMarker()   {}
func (c *SetClause) Kind() ClauseKind { return ClauseSet }

type RemoveItem struct {
	Variable string
	Property string   // property removal when non-empty
	Labels   []string // label removal when non-empty
}

type RemoveClause struct {
	Items []RemoveItem
}

func (c *RemoveClause) clauseMarker()   {}
func (c *RemoveClause) Kind() ClauseKind { return ClauseRemove }

type DeleteClause struct {
	Variables []string
	Detach    bool
}

func (c *DeleteClause) clauseMarker()   {}
func (c *DeleteClause) Kind() ClauseKind { return ClauseDelete }

// ProjectItem is one expression in RETURN/WITH, with its optional alias.
type ProjectItem struct {
	Expression Expr
	Alias      string // "" means use the expression's own text as the column name
}

type OrderItem struct {
	Expression Expr
	Descending bool
}

// ReturnClause is the terminal projection of a query.
type ReturnClause struct {
	Items    []ProjectItem
	Distinct bool
	OrderBy  []OrderItem
	Skip     *Expr
	Limit    *Expr
}

func (c *ReturnClause) clauseMarker()   {}
func (c *ReturnClause) Kind() ClauseKind { return ClauseReturn }

// WithClause is RETURN's non-terminal sibling: it re-scopes variables
// for the rest of the query and may itself filter/order/paginate.
type WithClause struct {
	Items    []ProjectItem
	Distinct bool
	OrderBy  []OrderItem
	Skip     *Expr
	Limit    *Expr
	Where    *Expr
}

func (c *WithClause) clauseMarker()   {}
func (c *WithClause) Kind() ClauseKind { return ClauseWith }

type UnwindClause struct {
	Expression Expr
	Variable   string
}

func (c *UnwindClause) clauseMarker()   {}
func (c *UnwindClause) Kind() ClauseKind { return ClauseUnwind }

type CallClause struct {
	Procedure string
	Arguments []Expr
	Yield     []string
	// Subquery is non-nil for a CALL { <query> } block, as opposed to a
	// CALL proc(args) [YIELD ...] procedure invocation — the two forms
	// share a clause kind but are otherwise mutually exclusive.
	Subquery *Query
}

func (c *CallClause) clauseMarker()   {}
func (c *CallClause) Kind() ClauseKind { return ClauseCall }

// ForeachClause represents FOREACH (x IN list | updateClause [, ...]).
// The body holds only update clauses (CREATE/SET/REMOVE/DELETE/MERGE),
// enforced by parseForeach rather than the type system.
type ForeachClause struct {
	Variable string
	List     Expr
	Body     []Clause
}

func (c *ForeachClause) clauseMarker()   {}
func (c *ForeachClause) Kind() ClauseKind { return ClauseForeach }

// Query is one linear sequence of clauses: a single branch of a
// (possibly UNION-combined) Statement.
type Query struct {
	Clauses []Clause
}

// Statement is the fully parsed top-level query: one or more Query
// branches combined by UNION / UNION ALL. A query with no UNION is a
// Statement with a single branch.
type Statement struct {
	Branches []Query
	// UnionAll[i] says whether Branches[i+1] is combined into the
	// running result with UNION ALL (true) or UNION (false, dedups).
	UnionAll []bool
}
