package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/value"
)

func feedInts(t *testing.T, name string, distinct bool, values ...int64) value.Value {
	t.Helper()
	agg, err := NewAggregator(name, distinct, 0)
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, agg.Accumulate(value.Int(v)))
	}
	result, err := agg.Result()
	require.NoError(t, err)
	return result
}

func TestCountOverEmptyIsZero(t *testing.T) {
	agg, err := NewAggregator("count", false, 0)
	require.NoError(t, err)
	result, err := agg.Result()
	require.NoError(t, err)
	assert.Equal(t, value.Int(0), result)
}

func TestCountStarCountsRowsNotValues(t *testing.T) {
	agg, err := NewAggregator("count", false, 0)
	require.NoError(t, err)
	agg.AccumulateRow()
	agg.AccumulateRow()
	result, err := agg.Result()
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), result)
}

func TestSumOverEmptyIsNull(t *testing.T) {
	assert.True(t, feedInts(t, "sum", false).IsNull())
}

func TestAvgOverEmptyIsNull(t *testing.T) {
	assert.True(t, feedInts(t, "avg", false).IsNull())
}

func TestMinMaxOverEmptyIsNull(t *testing.T) {
	assert.True(t, feedInts(t, "min", false).IsNull())
	assert.True(t, feedInts(t, "max", false).IsNull())
}

func TestAggregatesIgnoreNullInputs(t *testing.T) {
	agg, err := NewAggregator("sum", false, 0)
	require.NoError(t, err)
	require.NoError(t, agg.Accumulate(value.Int(1)))
	require.NoError(t, agg.Accumulate(value.Null))
	require.NoError(t, agg.Accumulate(value.Int(2)))
	result, err := agg.Result()
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), result)
}

func TestDistinctDeduplicatesBeforeAccumulating(t *testing.T) {
	assert.Equal(t, value.Int(2), feedInts(t, "count", true, 1, 1, 2))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, value.Int(1), feedInts(t, "min", false, 3, 1, 2))
	assert.Equal(t, value.Int(3), feedInts(t, "max", false, 3, 1, 2))
}

func TestAvg(t *testing.T) {
	v := feedInts(t, "avg", false, 1, 2, 3)
	require.Equal(t, value.KindFloat, v.Kind())
	assert.Equal(t, 2.0, v.AsFloat())
}

func TestCollectPreservesOrder(t *testing.T) {
	agg, err := NewAggregator("collect", false, 0)
	require.NoError(t, err)
	require.NoError(t, agg.Accumulate(value.Int(3)))
	require.NoError(t, agg.Accumulate(value.Int(1)))
	result, err := agg.Result()
	require.NoError(t, err)
	require.Equal(t, value.KindList, result.Kind())
	assert.Equal(t, []value.Value{value.Int(3), value.Int(1)}, result.AsList())
}

func TestSampleStdDevRequiresTwoValues(t *testing.T) {
	assert.True(t, feedInts(t, "stdev", false, 5).IsNull())
	v := feedInts(t, "stdev", false, 2, 4, 4, 4, 5, 5, 7, 9)
	require.Equal(t, value.KindFloat, v.Kind())
	assert.InDelta(t, 2.138, v.AsFloat(), 1e-3)
}

func TestPopulationStdDevOverEmptyIsNull(t *testing.T) {
	agg, err := NewAggregator("stdevp", false, 0)
	require.NoError(t, err)
	result, err := agg.Result()
	require.NoError(t, err)
	assert.True(t, result.IsNull())
}

func TestPercentileDiscNearestRank(t *testing.T) {
	agg, err := NewAggregator("percentiledisc", false, 0.5)
	require.NoError(t, err)
	for _, v := range []int64{1, 2, 3, 4} {
		require.NoError(t, agg.Accumulate(value.Int(v)))
	}
	result, err := agg.Result()
	require.NoError(t, err)
	assert.Equal(t, value.Float(3.0), result)
}

func TestPercentileContLinearInterpolation(t *testing.T) {
	agg, err := NewAggregator("percentilecont", false, 0.5)
	require.NoError(t, err)
	for _, v := range []int64{1, 2, 3, 4} {
		require.NoError(t, agg.Accumulate(value.Int(v)))
	}
	result, err := agg.Result()
	require.NoError(t, err)
	require.Equal(t, value.KindFloat, result.Kind())
	assert.InDelta(t, 2.5, result.AsFloat(), 1e-9)
}

func TestParseAggregateCallCountStar(t *testing.T) {
	expr := mustExpr(t, "count(*)")
	ctx := NewContext(nil, nil, nil)
	call, err := ParseAggregateCall(expr.Function, ctx)
	require.NoError(t, err)
	assert.True(t, call.IsCountStar)
}

func TestParseAggregateCallPercentileEvaluatesConstant(t *testing.T) {
	expr := mustExpr(t, "percentileDisc(x, 0.5)")
	ctx := NewContext(nil, nil, nil)
	call, err := ParseAggregateCall(expr.Function, ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, call.Percentile)
}

func TestParseAggregateCallRejectsNonAggregate(t *testing.T) {
	expr := mustExpr(t, "upper(x)")
	ctx := NewContext(nil, nil, nil)
	_, err := ParseAggregateCall(expr.Function, ctx)
	assert.Error(t, err)
}
