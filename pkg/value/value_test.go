package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualsNullPropagation(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Value
		wantKnown bool
		wantEq   bool
	}{
		{"null=null", Null, Null, false, false},
		{"null=int", Null, Int(1), false, false},
		{"int=int equal", Int(5), Int(5), true, true},
		{"int=float equal", Int(5), Float(5.0), true, true},
		{"int=int not equal", Int(5), Int(6), true, false},
		{"string=string", String("a"), String("a"), true, true},
		{"bool vs int kind mismatch", Bool(true), Int(1), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq, known := Equals(tt.a, tt.b)
			assert.Equal(t, tt.wantKnown, known)
			if known {
				assert.Equal(t, tt.wantEq, eq)
			}
		})
	}
}

func TestCompareNullsSortLast(t *testing.T) {
	rows := [][]Value{{Int(3)}, {Null}, {Int(1)}, {Null}, {Int(2)}}
	SortByKeys(rows, []int{0}, []bool{false})
	require.Len(t, rows, 5)
	assert.Equal(t, Int(1), rows[0][0])
	assert.Equal(t, Int(2), rows[1][0])
	assert.Equal(t, Int(3), rows[2][0])
	assert.True(t, rows[3][0].IsNull())
	assert.True(t, rows[4][0].IsNull())
}

func TestArithmeticPromotionAndZero(t *testing.T) {
	sum, err := Add(Int(2), Float(3.5))
	require.NoError(t, err)
	assert.Equal(t, KindFloat, sum.Kind())
	assert.Equal(t, 5.5, sum.AsFloat())

	div, err := Divide(Int(10), Int(4))
	require.NoError(t, err)
	assert.Equal(t, KindFloat, div.Kind())
	assert.Equal(t, 2.5, div.AsFloat())

	divZero, err := Divide(Int(10), Int(0))
	require.NoError(t, err)
	assert.True(t, divZero.IsNull())

	modZero, err := Modulo(Float(3.2), Int(0))
	require.NoError(t, err)
	assert.True(t, modZero.IsNull())

	propagated, err := Add(Null, Int(1))
	require.NoError(t, err)
	assert.True(t, propagated.IsNull())
}

func TestAddStringConcatenation(t *testing.T) {
	out, err := Add(String("count: "), Int(5))
	require.NoError(t, err)
	assert.Equal(t, "count: 5", out.AsString())
}

func TestThreeValuedLogic(t *testing.T) {
	assert.True(t, And(Null, Bool(false)).Kind() == KindBool && !And(Null, Bool(false)).AsBool())
	assert.True(t, And(Null, Bool(true)).IsNull())
	assert.True(t, Or(Null, Bool(true)).AsBool())
	assert.True(t, Or(Null, Bool(false)).IsNull())
	notNull, err := Not(Null)
	require.NoError(t, err)
	assert.True(t, notNull.IsNull())
	assert.True(t, Xor(Null, Bool(true)).IsNull())
}

func TestListContainsMembership(t *testing.T) {
	list := List([]Value{Int(1), Int(2), Null})
	assert.True(t, ListContains(list, Int(2)).AsBool())
	assert.True(t, ListContains(list, Int(99)).IsNull())
	assert.True(t, ListContains(List([]Value{Int(1)}), Int(2)).Kind() == KindBool && !ListContains(List([]Value{Int(1)}), Int(2)).AsBool())
	assert.True(t, ListContains(Null, Int(1)).IsNull())
}

func TestPointCRSInferenceAndDistance(t *testing.T) {
	p1, err := NewPointFromMap(map[string]Value{"latitude": Float(0), "longitude": Float(0)})
	require.NoError(t, err)
	assert.Equal(t, CRSWGS84, p1.CRS)

	p2, err := NewPointFromMap(map[string]Value{"latitude": Float(0), "longitude": Float(1)})
	require.NoError(t, err)

	d, err := Distance(p1, p2)
	require.NoError(t, err)
	assert.InDelta(t, 111195.0, d, 500)

	_, err = NewPointFromMap(map[string]Value{"latitude": Float(91), "longitude": Float(0)})
	assert.ErrorIs(t, err, ErrOutOfRange)

	cart, err := NewPointFromMap(map[string]Value{"x": Float(0), "y": Float(0)})
	require.NoError(t, err)
	_, err = Distance(p1, cart)
	assert.ErrorIs(t, err, ErrMixedCRS)
}

func TestDurationRoundTrip(t *testing.T) {
	d, err := ParseDuration("P1Y2M3DT4H5M6S")
	require.NoError(t, err)
	assert.Equal(t, "P1Y2M3DT4H5M6S", d.String())
}

func TestFromNativeToNativeRoundTrip(t *testing.T) {
	v, err := FromNative(map[string]any{"a": 1, "b": []any{"x", nil, 2.5}})
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind())

	back := ToNative(v).(map[string]any)
	assert.Equal(t, int64(1), back["a"])
}
