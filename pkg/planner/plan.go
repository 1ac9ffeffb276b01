package planner

import (
	"github.com/cypherlabs/cygraph/pkg/cypher"
)

// Pipeline is the ordered operator pipeline the executor drives.
type Pipeline struct {
	Operators []Operator
}

// Plan lowers a parsed Statement into an operator pipeline, running the
// semantic checks the spec requires before any operator is returned.
func Plan(stmt *cypher.Statement) (*Pipeline, error) {
	return PlanCorrelated(stmt, nil)
}

// PlanCorrelated is Plan's variant for EXISTS{}/COUNT{}/CALL{} subquery
// bodies: outerVars names every variable already bound in the scope the
// subquery is nested inside, so a leading pattern node reusing one of
// those names is lowered as an anchor (a label/property filter over the
// existing binding) instead of a fresh ScanNodes that would rebind it to
// every node in the graph and silently decorrelate the subquery.
func PlanCorrelated(stmt *cypher.Statement, outerVars []string) (*Pipeline, error) {
	if len(stmt.Branches) == 0 {
		return &Pipeline{}, nil
	}

	ops, err := lowerQuery(stmt.Branches[0], outerVars)
	if err != nil {
		return nil, err
	}

	for i, all := range stmt.UnionAll {
		right, err := lowerQuery(stmt.Branches[i+1], outerVars)
		if err != nil {
			return nil, err
		}
		ops = []Operator{{
			Kind:  OpUnion,
			Union: &UnionOp{Left: ops, Right: right, All: all},
		}}
	}
	return &Pipeline{Operators: ops}, nil
}

// lowerQuery lowers one linear clause sequence (a single UNION branch).
func lowerQuery(q cypher.Query, outerVars []string) ([]Operator, error) {
	ctx := newPlanCtx()
	for _, v := range outerVars {
		ctx.bound[v] = true
	}
	var ops []Operator
	for _, clause := range q.Clauses {
		lowered, err := lowerClause(ctx, clause)
		if err != nil {
			return nil, err
		}
		ops = append(ops, lowered...)
	}
	return ops, nil
}

func lowerClause(ctx *planCtx, clause cypher.Clause) ([]Operator, error) {
	switch c := clause.(type) {
	case *cypher.MatchClause:
		return lowerMatch(ctx, c)
	case *cypher.CreateClause:
		return lowerCreate(ctx, c)
	case *cypher.MergeClause:
		return lowerMerge(ctx, c)
	case *cypher.SetClause:
		return []Operator{{Kind: OpSet, Set: &SetOp{Items: c.Items}}}, nil
	case *cypher.RemoveClause:
		return []Operator{{Kind: OpRemove, Remove: &RemoveOp{Items: c.Items}}}, nil
	case *cypher.DeleteClause:
		return []Operator{{Kind: OpDelete, Delete: &DeleteOp{Variables: c.Variables, Detach: c.Detach}}}, nil
	case *cypher.WithClause:
		return lowerProject(ctx, c.Items, c.Distinct, c.OrderBy, c.Skip, c.Limit, c.Where, false)
	case *cypher.ReturnClause:
		return lowerProject(ctx, c.Items, c.Distinct, c.OrderBy, nil, nil, nil, true)
	case *cypher.UnwindClause:
		if err := ctx.recordKind(c.Variable, KindScalar); err != nil {
			return nil, err
		}
		ctx.bound[c.Variable] = true
		return []Operator{{Kind: OpUnwind, Unwind: &UnwindOp{Expression: c.Expression, Variable: c.Variable}}}, nil
	case *cypher.CallClause:
		if c.Subquery != nil {
			return lowerCallSubquery(ctx, c.Subquery)
		}
		// CALL to a registered procedure, not a {} subquery — modeled as
		// an opaque Subquery operator whose Inner is empty. The procedure
		// name and arguments are not carried into the operator, and the
		// executor passes rows through it unchanged.
		return []Operator{{Kind: OpSubquery, Subquery: &SubqueryOp{}}}, nil
	case *cypher.ForeachClause:
		return lowerForeach(ctx, c)
	default:
		return nil, newSemanticError(VariableTypeConflict, "unsupported clause type")
	}
}

func lowerForeach(ctx *planCtx, c *cypher.ForeachClause) ([]Operator, error) {
	inner := newPlanCtx()
	for k, v := range ctx.bound {
		inner.bound[k] = v
	}
	for k, v := range ctx.kinds {
		inner.kinds[k] = v
	}
	inner.bound[c.Variable] = true
	if err := inner.recordKind(c.Variable, KindScalar); err != nil {
		return nil, err
	}
	var body []Operator
	for _, bodyClause := range c.Body {
		lowered, err := lowerClause(inner, bodyClause)
		if err != nil {
			return nil, err
		}
		body = append(body, lowered...)
	}
	return []Operator{{Kind: OpUnwind, Unwind: &UnwindOp{Expression: c.List, Variable: c.Variable}}, {
		Kind:     OpSubquery,
		Subquery: &SubqueryOp{Inner: body},
	}}, nil
}

// lowerCallSubquery lowers a CALL { <query> } block into a populated
// SubqueryOp: the inner query is planned with this scope's currently
// bound variables as outer vars (so a reused node variable anchors to
// the existing binding instead of rebinding it, the same correlation
// PlanCorrelated gives EXISTS{}/COUNT{}), and per spec.md §4.5 the block
// carries "scope rules identical to WITH" — only the inner query's final
// WITH/RETURN columns become newly visible to the rest of the outer
// query, unioned with (not replacing) the variables already bound
// there, matching how pkg/executor's subquery() merges each inner output
// row over a copy of the outer row rather than discarding it.
func lowerCallSubquery(ctx *planCtx, q *cypher.Query) ([]Operator, error) {
	inner := newPlanCtx()
	for v := range ctx.bound {
		inner.bound[v] = true
	}
	for k, v := range ctx.kinds {
		inner.kinds[k] = v
	}

	var body []Operator
	var finalVars map[string]bool
	for _, clause := range q.Clauses {
		lowered, err := lowerClause(inner, clause)
		if err != nil {
			return nil, err
		}
		body = append(body, lowered...)
		switch tc := clause.(type) {
		case *cypher.WithClause:
			finalVars = projectedColumnSet(tc.Items)
		case *cypher.ReturnClause:
			finalVars = projectedColumnSet(tc.Items)
		}
	}
	if finalVars == nil {
		finalVars = inner.bound
	}
	for v := range finalVars {
		ctx.bound[v] = true
	}

	return []Operator{{Kind: OpSubquery, Subquery: &SubqueryOp{Inner: body}}}, nil
}

// projectedColumnSet names the output columns a WITH/RETURN projection
// binds, using the same default-naming rule ColumnName applies when
// checking for duplicate aliases.
func projectedColumnSet(items []cypher.ProjectItem) map[string]bool {
	set := make(map[string]bool, len(items))
	for i, item := range items {
		set[ColumnName(item, i)] = true
	}
	return set
}

func lowerMatch(ctx *planCtx, c *cypher.MatchClause) ([]Operator, error) {
	var ops []Operator
	for _, pat := range c.Patterns {
		patOps, err := lowerPattern(ctx, pat)
		if err != nil {
			return nil, err
		}
		if c.Optional {
			vars := patternVariables(pat)
			ops = append(ops, Operator{
				Kind:             OpLeftOuterPattern,
				LeftOuterPattern: &LeftOuterPatternOp{Inner: patOps, InnerVars: vars},
			})
		} else {
			ops = append(ops, patOps...)
		}
	}
	if c.Where != nil {
		ops = append(ops, Operator{Kind: OpFilter, Filter: &FilterOp{Predicate: *c.Where}})
	}
	return ops, nil
}

func patternVariables(pat cypher.Pattern) []string {
	var vars []string
	for _, n := range pat.Nodes {
		if n.Variable != "" {
			vars = append(vars, n.Variable)
		}
	}
	for _, e := range pat.Edges {
		if e.Variable != "" {
			vars = append(vars, e.Variable)
		}
	}
	if pat.Variable != "" {
		vars = append(vars, pat.Variable)
	}
	return vars
}

// lowerPattern lowers one comma-separated path into ScanNodes +
// ExpandEdges/VarLengthExpand operators, in left-to-right pattern order.
// A node already bound earlier in the query is treated as an anchor
// (no scan emitted for it) rather than rebinding it.
func lowerPattern(ctx *planCtx, pat cypher.Pattern) ([]Operator, error) {
	var ops []Operator
	if pat.Variable != "" {
		if err := ctx.recordKind(pat.Variable, KindPath); err != nil {
			return nil, err
		}
		ctx.bound[pat.Variable] = true
	}

	nodeVars := make([]string, len(pat.Nodes))
	for i, n := range pat.Nodes {
		v := n.Variable
		if v == "" {
			v = ctx.anonVar("n")
		}
		nodeVars[i] = v
	}

	first := pat.Nodes[0]
	if ctx.bound[nodeVars[0]] {
		if labelOp := labelFilter(nodeVars[0], first.Labels); labelOp != nil {
			ops = append(ops, *labelOp)
		}
	} else {
		if err := ctx.recordKind(nodeVars[0], KindNode); err != nil {
			return nil, err
		}
		ops = append(ops, Operator{Kind: OpScanNodes, ScanNodes: &ScanNodesOp{
			Variable:    nodeVars[0],
			LabelGroups: labelGroups(first.Labels),
			Predicate:   propertyPredicate(nodeVars[0], first.Properties),
		}})
		ctx.bound[nodeVars[0]] = true
	}

	// A path variable, or more than one fixed-length relationship in a
	// row, lowers to a single ExpandMultiHop chain instead of one
	// ExpandEdges per edge: ExpandMultiHop is what actually constructs
	// and binds a path value (spec.md §4.9 "If path_var is given, bind it
	// to a path value constructed from the traversal" — a bare chain of
	// independent ExpandEdges operators never builds one), and it
	// enforces the "no node may repeat within one path" cycle-free rule
	// across the whole leg, which independent per-edge ExpandEdges
	// operators do not. A lone fixed edge with no path variable keeps
	// the simpler single ExpandEdges form; any VarLength leg always
	// lowers through VarLengthExpand regardless of this pattern's other
	// edges.
	useMultiHop := len(pat.Edges) > 0 && (pat.Variable != "" || len(pat.Edges) > 1)
	for _, rel := range pat.Edges {
		if rel.VarLength {
			useMultiHop = false
			break
		}
	}

	var hops []HopSpec
	var hopLabelFilters []Operator

	for i, rel := range pat.Edges {
		srcVar := nodeVars[i]
		dstVar := nodeVars[i+1]
		dstNode := pat.Nodes[i+1]

		if rel.Variable != "" {
			if err := ctx.recordKind(rel.Variable, KindEdge); err != nil {
				return nil, err
			}
		}

		switch {
		case rel.VarLength:
			minHops := 1
			if rel.MinHops != nil {
				minHops = *rel.MinHops
			}
			maxHops := -1
			if rel.MaxHops != nil {
				maxHops = *rel.MaxHops
			}
			ops = append(ops, Operator{Kind: OpVarLengthExpand, VarLengthExpand: &VarLengthExpandOp{
				SrcVar:    srcVar,
				Types:     rel.Types,
				Direction: rel.Direction,
				MinHops:   minHops,
				MaxHops:   maxHops,
				DstVar:    dstVar,
				PathVar:   pat.Variable,
			}})
		case useMultiHop:
			hops = append(hops, HopSpec{
				Types:     rel.Types,
				Direction: rel.Direction,
				EdgeVar:   rel.Variable,
				DstVar:    dstVar,
				Predicate: propertyPredicate(rel.Variable, rel.Properties),
			})
		default:
			ops = append(ops, Operator{Kind: OpExpandEdges, ExpandEdges: &ExpandEdgesOp{
				SrcVar:    srcVar,
				EdgeVar:   rel.Variable,
				DstVar:    dstVar,
				Types:     rel.Types,
				Direction: rel.Direction,
				Predicate: propertyPredicate(rel.Variable, rel.Properties),
			}})
		}

		if err := ctx.recordKind(dstVar, KindNode); err != nil {
			return nil, err
		}
		ctx.bound[dstVar] = true
		if rel.Variable != "" {
			ctx.bound[rel.Variable] = true
		}
		if labelOp := labelFilter(dstVar, dstNode.Labels); labelOp != nil {
			if useMultiHop {
				// The chain hasn't bound dstVar yet at this point in the
				// pipeline (ExpandMultiHop emits as one operator after
				// the loop), so its label filter is deferred alongside
				// it rather than interleaved mid-chain.
				hopLabelFilters = append(hopLabelFilters, *labelOp)
			} else {
				ops = append(ops, *labelOp)
			}
		}
	}

	if len(hops) > 0 {
		ops = append(ops, Operator{Kind: OpExpandMultiHop, ExpandMultiHop: &ExpandMultiHopOp{
			SrcVar:  nodeVars[0],
			Hops:    hops,
			PathVar: pat.Variable,
		}})
		ops = append(ops, hopLabelFilters...)
	}

	return ops, nil
}

// labelFilter builds a Filter operator checking a node variable already
// bound through an expansion (rather than a fresh ScanNodes) carries the
// required labels.
func labelFilter(variable string, labels []string) *Operator {
	if len(labels) == 0 {
		return nil
	}
	pred := cypher.Expr{Kind: cypher.ExprLabelCheck, LabelCheck: &cypher.LabelCheckExpr{Variable: variable, Labels: labels}}
	return &Operator{Kind: OpFilter, Filter: &FilterOp{Predicate: pred}}
}

// labelGroups turns a single colon-separated label list into the
// ScanNodesOp shape; `:A|B` disjunction groups are parsed only within
// relationship types in this grammar, so a plain node's labels always
// form exactly one AND-group. Kept as a slice-of-slices so the operator
// type matches the spec's stated disjunction shape regardless.
func labelGroups(labels []string) [][]string {
	if len(labels) == 0 {
		return nil
	}
	return [][]string{labels}
}

// propertyPredicate turns an inline `{prop: expr, ...}` map into a
// conjunction of equality comparisons, evaluated as the pattern
// operator's local predicate rather than a following Filter.
func propertyPredicate(variable string, props map[string]cypher.Expr) *cypher.Expr {
	if variable == "" || len(props) == 0 {
		return nil
	}
	var combined *cypher.Expr
	for key, val := range props {
		eq := cypher.Expr{Kind: cypher.ExprBinary, Binary: &cypher.BinaryExpr{
			Left: cypher.Expr{Kind: cypher.ExprProperty, Property: &cypher.PropertyAccess{Variable: variable, Property: key}},
			Operator: "=",
			Right:    val,
		}}
		if combined == nil {
			combined = &eq
		} else {
			and := cypher.Expr{Kind: cypher.ExprBinary, Binary: &cypher.BinaryExpr{Left: *combined, Operator: "AND", Right: eq}}
			combined = &and
		}
	}
	return combined
}

func lowerCreate(ctx *planCtx, c *cypher.CreateClause) ([]Operator, error) {
	for _, pat := range c.Patterns {
		if err := checkNoRelationshipDisjunction(pat); err != nil {
			return nil, err
		}
		for _, n := range pat.Nodes {
			if n.Variable != "" {
				if err := ctx.recordKind(n.Variable, KindNode); err != nil {
					return nil, err
				}
				ctx.bound[n.Variable] = true
			}
		}
		for _, e := range pat.Edges {
			if e.Variable != "" {
				if err := ctx.recordKind(e.Variable, KindEdge); err != nil {
					return nil, err
				}
				ctx.bound[e.Variable] = true
			}
		}
	}
	return []Operator{{Kind: OpCreate, Create: &CreateOp{Patterns: c.Patterns}}}, nil
}

func lowerMerge(ctx *planCtx, c *cypher.MergeClause) ([]Operator, error) {
	if err := checkNoRelationshipDisjunction(c.Pattern); err != nil {
		return nil, err
	}
	for _, n := range c.Pattern.Nodes {
		if n.Variable != "" {
			if err := ctx.recordKind(n.Variable, KindNode); err != nil {
				return nil, err
			}
			ctx.bound[n.Variable] = true
		}
	}
	for _, e := range c.Pattern.Edges {
		if e.Variable != "" {
			if err := ctx.recordKind(e.Variable, KindEdge); err != nil {
				return nil, err
			}
			ctx.bound[e.Variable] = true
		}
	}
	return []Operator{{Kind: OpMerge, Merge: &MergeOp{
		Pattern: c.Pattern, OnCreate: c.OnCreate, OnMatch: c.OnMatch,
	}}}, nil
}

// checkNoRelationshipDisjunction enforces DisjunctiveLabelsInCreate: a
// CREATE/MERGE relationship must name exactly one type; `:A|B` is valid
// only inside MATCH.
func checkNoRelationshipDisjunction(pat cypher.Pattern) error {
	for _, e := range pat.Edges {
		if len(e.Types) > 1 {
			return newSemanticError(DisjunctiveLabelsInCreate,
				"relationship pattern may not use disjunctive types %v in CREATE/MERGE", e.Types)
		}
	}
	return nil
}

func lowerProject(
	ctx *planCtx,
	items []cypher.ProjectItem,
	distinct bool,
	orderBy []cypher.OrderItem,
	skip, limit, where *cypher.Expr,
	terminal bool,
) ([]Operator, error) {
	seenAliases := make(map[string]bool)
	for i, item := range items {
		name := ColumnName(item, i)
		if seenAliases[name] {
			return nil, newSemanticError(ColumnNameConflict, "duplicate column name %q", name)
		}
		seenAliases[name] = true

		if !terminal && item.Alias == "" && !isTrivialExpr(item.Expression) {
			return nil, newSemanticError(NoExpressionAlias,
				"WITH item %d is a non-trivial expression and must have an AS alias", i)
		}
		if item.Alias != "" {
			if err := ctx.recordKind(item.Alias, KindScalar); err != nil {
				return nil, err
			}
		}
	}

	newBound := make(map[string]bool, len(items))
	for i, item := range items {
		newBound[ColumnName(item, i)] = true
	}
	if !terminal {
		ctx.bound = newBound
	}

	return []Operator{{Kind: OpProject, Project: &ProjectOp{
		Items: items, Distinct: distinct, OrderBy: orderBy, Skip: skip, Limit: limit, Where: where, Terminal: terminal,
	}}}, nil
}

// isTrivialExpr identifies the expressions that don't require an
// explicit alias in WITH: a bare variable or a single property access.
func isTrivialExpr(e cypher.Expr) bool {
	switch e.Kind {
	case cypher.ExprVariable:
		return true
	case cypher.ExprProperty:
		return e.Property.Base == nil || e.Property.Base.Kind == cypher.ExprVariable
	default:
		return false
	}
}

// ColumnName derives the default output column name for a projection
// item lacking an explicit alias: the bare variable or property name,
// or a synthetic deterministic name for anything else. Exported so
// pkg/executor can name result columns with the identical rule the
// planner used to check for duplicate-alias conflicts.
func ColumnName(item cypher.ProjectItem, index int) string {
	if item.Alias != "" {
		return item.Alias
	}
	switch item.Expression.Kind {
	case cypher.ExprVariable:
		return item.Expression.Variable
	case cypher.ExprProperty:
		if item.Expression.Property.Base == nil {
			return item.Expression.Property.Variable + "." + item.Expression.Property.Property
		}
		if base := item.Expression.Property.Base; base.Kind == cypher.ExprVariable {
			return base.Variable + "." + item.Expression.Property.Property
		}
	case cypher.ExprStar:
		return "*"
	}
	return syntheticColumnName(index)
}

func syntheticColumnName(index int) string {
	return "col_" + itoa(index)
}
