// Package planner lowers a parsed Cypher AST (pkg/cypher) into an
// ordered operator pipeline (C5). The planner performs semantic
// checks — column name conflicts, missing WITH aliases, variable-kind
// conflicts, disjunctive labels in CREATE — but never touches the
// graph itself; that is pkg/executor's job.
package planner

import "github.com/cypherlabs/cygraph/pkg/cypher"

// OpKind tags which fields of Operator are populated, the same
// tagged-union approach pkg/cypher uses for Expr: one struct per
// pipeline stage is overkill when every stage needs the same
// planning-time treatment (predicate rewriting, cost estimation).
type OpKind int

const (
	OpScanNodes OpKind = iota
	OpExpandEdges
	OpExpandMultiHop
	OpVarLengthExpand
	OpFilter
	OpProject
	OpUnwind
	OpLeftOuterPattern
	OpCreate
	OpMerge
	OpSet
	OpRemove
	OpDelete
	OpUnion
	OpSubquery
)

// Operator is one stage of the pipeline.
type Operator struct {
	Kind OpKind

	ScanNodes        *ScanNodesOp
	ExpandEdges      *ExpandEdgesOp
	ExpandMultiHop   *ExpandMultiHopOp
	VarLengthExpand  *VarLengthExpandOp
	Filter           *FilterOp
	Project          *ProjectOp
	Unwind           *UnwindOp
	LeftOuterPattern *LeftOuterPatternOp
	Create           *CreateOp
	Merge            *MergeOp
	Set              *SetOp
	Remove           *RemoveOp
	Delete           *DeleteOp
	Union            *UnionOp
	Subquery         *SubqueryOp
}

// ScanNodesOp emits one row per matching node. LabelGroups == nil scans every
// node; LabelGroups holds `:A|B` disjunction groups (each inner slice is
// an AND-intersection, the outer slices OR together), matching the
// label-disjunction-in-MATCH-only rule.
type ScanNodesOp struct {
	Variable   string
	LabelGroups [][]string
	Predicate  *cypher.Expr
}

type ExpandEdgesOp struct {
	SrcVar    string
	EdgeVar   string // "" if the relationship has no bound variable
	DstVar    string
	Types     []string // empty = any type
	Direction cypher.EdgeDirection
	Predicate *cypher.Expr
}

// HopSpec is one fixed-length leg of an ExpandMultiHop chain.
type HopSpec struct {
	Types     []string
	Direction cypher.EdgeDirection
	EdgeVar   string
	DstVar    string
	Predicate *cypher.Expr // the relationship's inline {prop:...}/WHERE predicate, if any
}

type ExpandMultiHopOp struct {
	SrcVar  string
	Hops    []HopSpec
	PathVar string
}

type VarLengthExpandOp struct {
	SrcVar    string
	Types     []string
	Direction cypher.EdgeDirection
	MinHops   int
	MaxHops   int // -1 means unbounded
	DstVar    string
	PathVar   string
}

type FilterOp struct {
	Predicate cypher.Expr
}

// ProjectOp covers both WITH and the terminal RETURN; Terminal marks the
// latter so the executor knows to accumulate into the final result set
// rather than continue piping rows to a following operator.
type ProjectOp struct {
	Items    []cypher.ProjectItem
	Distinct bool
	OrderBy  []cypher.OrderItem
	Skip     *cypher.Expr
	Limit    *cypher.Expr
	Where    *cypher.Expr
	Terminal bool
}

type UnwindOp struct {
	Expression cypher.Expr
	Variable   string
}

// LeftOuterPatternOp wraps the operators lowered from an OPTIONAL MATCH
// pattern; InnerVars lists every variable the inner pipeline binds, so
// the executor knows which ones to set to NULL on a failed match.
type LeftOuterPatternOp struct {
	Inner     []Operator
	InnerVars []string
}

type CreateOp struct {
	Patterns []cypher.Pattern
}

type MergeOp struct {
	Pattern  cypher.Pattern
	OnCreate []cypher.SetItem
	OnMatch  []cypher.SetItem
}

type SetOp struct {
	Items []cypher.SetItem
}

type RemoveOp struct {
	Items []cypher.RemoveItem
}

type DeleteOp struct {
	Variables []string
	Detach    bool
}

type UnionOp struct {
	Left  []Operator
	Right []Operator
	All   bool
}

type SubqueryOp struct {
	Inner []Operator
}
