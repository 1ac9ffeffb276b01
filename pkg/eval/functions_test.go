package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/value"
)

func TestMathFunctions(t *testing.T) {
	assert.Equal(t, value.Float(2.0), evalExpr(t, "sqrt(4)", nil))
	assert.True(t, evalExpr(t, "sqrt(-1)", nil).IsNull())
	assert.True(t, evalExpr(t, "sqrt(null)", nil).IsNull())
	assert.Equal(t, value.Float(256.0), evalExpr(t, "pow(2, 8)", nil))
	assert.Equal(t, value.Int(5), evalExpr(t, "abs(-5)", nil))
	assert.Equal(t, value.Int(1), evalExpr(t, "sign(42)", nil))
}

func TestRoundIsBankersRounding(t *testing.T) {
	// round-half-to-even: 2.5 -> 2, 3.5 -> 4.
	assert.Equal(t, value.Float(2.0), evalExpr(t, "round(2.5)", nil))
	assert.Equal(t, value.Float(4.0), evalExpr(t, "round(3.5)", nil))
}

func TestStringFunctions(t *testing.T) {
	assert.Equal(t, value.String("HELLO"), evalExpr(t, `upper("hello")`, nil))
	assert.Equal(t, value.String("hello"), evalExpr(t, `lower("HELLO")`, nil))
	assert.Equal(t, value.String("hi"), evalExpr(t, `trim("  hi  ")`, nil))
	assert.Equal(t, value.String("lo"), evalExpr(t, `substring("hello", 3)`, nil))
	assert.Equal(t, value.String("ell"), evalExpr(t, `substring("hello", 1, 3)`, nil))
}

func TestReverseAcceptsStringOrList(t *testing.T) {
	assert.Equal(t, value.String("cba"), evalExpr(t, `reverse("abc")`, nil))
	v := evalExpr(t, "reverse([1,2,3])", nil)
	require.Equal(t, value.KindList, v.Kind())
	assert.Equal(t, value.Int(3), v.AsList()[0])
}

func TestTypeConversions(t *testing.T) {
	assert.Equal(t, value.Int(42), evalExpr(t, `toInteger("42")`, nil))
	assert.Equal(t, value.Float(4.5), evalExpr(t, `toFloat("4.5")`, nil))
	assert.Equal(t, value.String("42"), evalExpr(t, "toString(42)", nil))
	assert.True(t, evalExpr(t, "toString(null)", nil).IsNull())
}

func TestExistsAndIsEmpty(t *testing.T) {
	assert.Equal(t, value.Bool(true), evalExpr(t, `exists("x")`, nil))
	assert.Equal(t, value.Bool(false), evalExpr(t, "exists(null)", nil))
	assert.Equal(t, value.Bool(true), evalExpr(t, `isEmpty("")`, nil))
	assert.Equal(t, value.Bool(false), evalExpr(t, "isEmpty([1])", nil))
}

func TestCoalesceReturnsFirstNonNull(t *testing.T) {
	assert.Equal(t, value.Int(1), evalExpr(t, "coalesce(null, null, 1, 2)", nil))
	assert.True(t, evalExpr(t, "coalesce(null, null)", nil).IsNull())
}

func TestGraphIntrospectionFunctions(t *testing.T) {
	node := &value.NodeValue{ID: 7, Labels: []string{"Person"}, Properties: map[string]value.Value{"x": value.Int(1)}}
	row := Row{"n": value.FromNode(node)}
	assert.Equal(t, value.Int(7), evalExpr(t, "id(n)", row))
	v := evalExpr(t, "labels(n)", row)
	require.Equal(t, value.KindList, v.Kind())
	assert.Equal(t, value.String("Person"), v.AsList()[0])
}

func TestHeadTailLastSize(t *testing.T) {
	assert.Equal(t, value.Int(1), evalExpr(t, "head([1,2,3])", nil))
	assert.Equal(t, value.Int(3), evalExpr(t, "last([1,2,3])", nil))
	assert.Equal(t, value.Int(3), evalExpr(t, "size([1,2,3])", nil))
	v := evalExpr(t, "tail([1,2,3])", nil)
	require.Equal(t, value.KindList, v.Kind())
	assert.Len(t, v.AsList(), 2)
}

func TestRangeInclusiveWithStep(t *testing.T) {
	v := evalExpr(t, "range(0, 10, 2)", nil)
	require.Equal(t, value.KindList, v.Kind())
	list := v.AsList()
	require.Len(t, list, 6)
	assert.Equal(t, value.Int(10), list[5])
}

func TestSpatialDistanceCartesian(t *testing.T) {
	v := evalExpr(t, "distance(point({x: 0, y: 0}), point({x: 3, y: 4}))", nil)
	require.Equal(t, value.KindFloat, v.Kind())
	assert.InDelta(t, 5.0, v.AsFloat(), 1e-9)
}

func TestSpatialMismatchedCRSErrors(t *testing.T) {
	ctx := NewContext(nil, nil, nil)
	_, err := Evaluate(mustExpr(t, "distance(point({x: 0, y: 0}), point({latitude: 0, longitude: 0}))"), ctx)
	assert.Error(t, err)
}
