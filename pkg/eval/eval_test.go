package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// mustExpr parses `RETURN <src>` and pulls out the single returned
// expression, letting tests exercise real parsed ASTs instead of
// hand-built cypher.Expr literals — the style pkg/planner/plan_test.go and
// pkg/optimizer/optimizer_test.go already use.
func mustExpr(t *testing.T, src string) cypher.Expr {
	t.Helper()
	stmt, err := cypher.Parse("RETURN " + src)
	require.NoError(t, err)
	ret := stmt.Branches[0].Clauses[0].(*cypher.ReturnClause)
	require.Len(t, ret.Items, 1)
	return ret.Items[0].Expression
}

func evalExpr(t *testing.T, src string, row Row) value.Value {
	t.Helper()
	ctx := NewContext(row, nil, nil)
	v, err := Evaluate(mustExpr(t, src), ctx)
	require.NoError(t, err)
	return v
}

func TestArithmeticNullPropagation(t *testing.T) {
	v := evalExpr(t, "1 + null", nil)
	assert.True(t, v.IsNull())
}

func TestArithmeticIntFloatPromotion(t *testing.T) {
	v := evalExpr(t, "1 + 2.5", nil)
	require.Equal(t, value.KindFloat, v.Kind())
	assert.Equal(t, 3.5, v.AsFloat())
}

func TestDivisionAlwaysFloat(t *testing.T) {
	v := evalExpr(t, "4 / 2", nil)
	require.Equal(t, value.KindFloat, v.Kind())
	assert.Equal(t, 2.0, v.AsFloat())
}

func TestDivisionByZeroIsNull(t *testing.T) {
	assert.True(t, evalExpr(t, "1 / 0", nil).IsNull())
	assert.True(t, evalExpr(t, "1 % 0", nil).IsNull())
}

func TestStringConcatenationStringifiesOtherOperand(t *testing.T) {
	v := evalExpr(t, `"x" + 1`, nil)
	require.Equal(t, value.KindString, v.Kind())
	assert.Equal(t, "x1", v.AsString())
}

func TestComparisonNullPropagation(t *testing.T) {
	assert.True(t, evalExpr(t, "1 < null", nil).IsNull())
}

func TestIsNullNeverNull(t *testing.T) {
	assert.Equal(t, value.Bool(true), evalExpr(t, "null IS NULL", nil))
	assert.Equal(t, value.Bool(false), evalExpr(t, "1 IS NULL", nil))
}

func TestThreeValuedAndOr(t *testing.T) {
	assert.Equal(t, value.Bool(false), evalExpr(t, "null AND false", nil))
	assert.Equal(t, value.Bool(true), evalExpr(t, "null OR true", nil))
	assert.True(t, evalExpr(t, "null AND true", nil).IsNull())
	assert.True(t, evalExpr(t, "null OR false", nil).IsNull())
}

func TestXorNullPropagation(t *testing.T) {
	assert.True(t, evalExpr(t, "null XOR true", nil).IsNull())
}

func TestStringMatchingOperators(t *testing.T) {
	assert.Equal(t, value.Bool(true), evalExpr(t, `"hello" STARTS WITH "he"`, nil))
	assert.Equal(t, value.Bool(true), evalExpr(t, `"hello" ENDS WITH "lo"`, nil))
	assert.Equal(t, value.Bool(true), evalExpr(t, `"hello" CONTAINS "ell"`, nil))
}

func TestInOperator(t *testing.T) {
	assert.Equal(t, value.Bool(true), evalExpr(t, "2 IN [1,2,3]", nil))
	assert.Equal(t, value.Bool(false), evalExpr(t, "9 IN [1,2,3]", nil))
	assert.True(t, evalExpr(t, "9 IN [1,2,null]", nil).IsNull())
}

func TestSubscriptNegativeAndOutOfBounds(t *testing.T) {
	assert.Equal(t, value.Int(3), evalExpr(t, "[1,2,3][-1]", nil))
	assert.True(t, evalExpr(t, "[1,2,3][10]", nil).IsNull())
}

func TestSliceClampsIndices(t *testing.T) {
	v := evalExpr(t, "[1,2,3,4,5][1..10]", nil)
	require.Equal(t, value.KindList, v.Kind())
	list := v.AsList()
	require.Len(t, list, 4)
	assert.Equal(t, value.Int(2), list[0])
}

func TestCaseNoElseNoMatchIsNull(t *testing.T) {
	v := evalExpr(t, "CASE WHEN false THEN 1 END", nil)
	assert.True(t, v.IsNull())
}

func TestCaseWithInputMatchesByEquality(t *testing.T) {
	v := evalExpr(t, `CASE 2 WHEN 1 THEN "one" WHEN 2 THEN "two" ELSE "other" END`, nil)
	assert.Equal(t, value.String("two"), v)
}

func TestListComprehensionFilterAndMap(t *testing.T) {
	v := evalExpr(t, "[x IN [1,2,3,4] WHERE x > 2 | x * 10]", nil)
	require.Equal(t, value.KindList, v.Kind())
	list := v.AsList()
	require.Len(t, list, 2)
	assert.Equal(t, value.Int(30), list[0])
	assert.Equal(t, value.Int(40), list[1])
}

func TestQuantifiers(t *testing.T) {
	assert.Equal(t, value.Bool(true), evalExpr(t, "ALL(x IN [1,2,3] WHERE x > 0)", nil))
	assert.Equal(t, value.Bool(false), evalExpr(t, "ALL(x IN [1,2,-1] WHERE x > 0)", nil))
	assert.Equal(t, value.Bool(true), evalExpr(t, "ANY(x IN [1,2,3] WHERE x = 2)", nil))
	assert.Equal(t, value.Bool(true), evalExpr(t, "NONE(x IN [1,2,3] WHERE x > 10)", nil))
	assert.Equal(t, value.Bool(true), evalExpr(t, "SINGLE(x IN [1,2,3] WHERE x = 2)", nil))
}

func TestPropertyAccessOnNodeAndMissingProperty(t *testing.T) {
	node := &value.NodeValue{ID: 1, Labels: []string{"Person"}, Properties: map[string]value.Value{"name": value.String("Ada")}}
	row := Row{"n": value.FromNode(node)}
	assert.Equal(t, value.String("Ada"), evalExpr(t, "n.name", row))
	assert.True(t, evalExpr(t, "n.missing", row).IsNull())
}

func TestPropertyAccessOnNullBaseIsNull(t *testing.T) {
	row := Row{"n": value.Null}
	assert.True(t, evalExpr(t, "n.name", row).IsNull())
}

func TestLabelCheckPredicate(t *testing.T) {
	node := &value.NodeValue{ID: 1, Labels: []string{"Person", "Employee"}}
	row := Row{"n": value.FromNode(node)}
	assert.Equal(t, value.Bool(true), evalExpr(t, "n:Person", row))
	assert.Equal(t, value.Bool(false), evalExpr(t, "n:Manager", row))
}

type stubRunner struct {
	count int
	err   error
}

func (s *stubRunner) RunSubquery(q *cypher.Query, outer Row) (int, error) {
	return s.count, s.err
}

func TestExistsSubqueryExpression(t *testing.T) {
	ctx := NewContext(nil, nil, &stubRunner{count: 3})
	v, err := Evaluate(mustExpr(t, "EXISTS { MATCH (n) RETURN n }"), ctx)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)
}

func TestCountSubqueryExpression(t *testing.T) {
	ctx := NewContext(nil, nil, &stubRunner{count: 3})
	v, err := Evaluate(mustExpr(t, "COUNT { MATCH (n) RETURN n }"), ctx)
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), v)
}

func TestParameterLookup(t *testing.T) {
	ctx := NewContext(nil, map[string]value.Value{"age": value.Int(30)}, nil)
	v, err := Evaluate(mustExpr(t, "$age"), ctx)
	require.NoError(t, err)
	assert.Equal(t, value.Int(30), v)
}

func TestUnknownParameterErrors(t *testing.T) {
	ctx := NewContext(nil, nil, nil)
	_, err := Evaluate(mustExpr(t, "$missing"), ctx)
	assert.Error(t, err)
}
