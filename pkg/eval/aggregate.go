package eval

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cypherlabs/cygraph/pkg/value"
)

// Aggregator accumulates one aggregate function's state across a group of
// rows; pkg/executor drives it row-by-row (grouping by the Project item's
// non-aggregate dependencies) and calls Result once the group is
// exhausted. Grounded on the aggregate-function section of spec.md §4.4
// and the sum/avg/min/max/collect passthroughs the teacher's
// pkg/cypher/functions.go implements for the non-grouped case; this
// package adds the proper streaming accumulation the teacher's row-at-a-
// time string dispatcher never needed.
type Aggregator struct {
	name       string
	distinct   bool
	seen       map[string]bool
	count      int64
	sum        value.Value
	haveSum    bool
	min, max   value.Value
	haveMinMax bool
	collected  []value.Value
	percentile float64
}

// NewAggregator constructs the accumulator for one built-in aggregate
// function name. percentile is only consulted by percentileDisc/
// percentileCont and should be the (constant, per spec usage) second
// argument those two functions take.
func NewAggregator(name string, distinct bool, percentile float64) (*Aggregator, error) {
	name = strings.ToLower(name)
	switch name {
	case "count", "sum", "avg", "min", "max", "collect", "stdev", "stdevp", "percentiledisc", "percentilecont":
		a := &Aggregator{name: name, distinct: distinct, percentile: percentile}
		if distinct {
			a.seen = make(map[string]bool)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("eval: %q is not an aggregate function", name)
	}
}

// AccumulateRow feeds count(*)'s row-counting semantics: every row counts,
// NULL or not. Only valid for the count aggregator.
func (a *Aggregator) AccumulateRow() {
	a.count++
}

// Accumulate feeds one evaluated argument value into the aggregate. NULL
// inputs are ignored by every aggregate except count(*), which uses
// AccumulateRow instead and never calls this method.
func (a *Aggregator) Accumulate(v value.Value) error {
	if v.Kind() == value.KindNull {
		return nil
	}
	if a.distinct {
		key := fmt.Sprintf("%d:%s", v.Kind(), value.Stringify(v))
		if a.seen[key] {
			return nil
		}
		a.seen[key] = true
	}
	a.count++
	switch a.name {
	case "sum", "avg":
		if !v.IsNumeric() {
			return fmt.Errorf("%w: %s expects numeric input, got %s", value.ErrTypeMismatch, a.name, v.Kind())
		}
		if !a.haveSum {
			a.sum = v
			a.haveSum = true
			return nil
		}
		sum, err := value.Add(a.sum, v)
		if err != nil {
			return err
		}
		a.sum = sum
	case "min", "max":
		if !a.haveMinMax {
			a.min, a.max = v, v
			a.haveMinMax = true
			return nil
		}
		if value.Compare(v, a.min) < 0 {
			a.min = v
		}
		if value.Compare(v, a.max) > 0 {
			a.max = v
		}
	case "collect", "stdev", "stdevp", "percentiledisc", "percentilecont":
		a.collected = append(a.collected, v)
	}
	return nil
}

// Result finalizes the aggregate. count(*) and count(expr) over an empty
// input return 0; every other aggregate over empty input returns NULL,
// per spec.md §4.4.
func (a *Aggregator) Result() (value.Value, error) {
	switch a.name {
	case "count":
		return value.Int(a.count), nil
	case "sum":
		if !a.haveSum {
			return value.Null, nil
		}
		return a.sum, nil
	case "avg":
		if !a.haveSum {
			return value.Null, nil
		}
		total, _ := requireNumeric("avg", a.sum)
		return value.Float(total / float64(a.count)), nil
	case "min":
		if !a.haveMinMax {
			return value.Null, nil
		}
		return a.min, nil
	case "max":
		if !a.haveMinMax {
			return value.Null, nil
		}
		return a.max, nil
	case "collect":
		return value.List(a.collected), nil
	case "stdev":
		return sampleStdDev(a.collected), nil
	case "stdevp":
		return populationStdDev(a.collected), nil
	case "percentiledisc":
		return percentileDiscrete(a.collected, a.percentile)
	case "percentilecont":
		return percentileContinuous(a.collected, a.percentile)
	default:
		return value.Null, fmt.Errorf("eval: unknown aggregate %q", a.name)
	}
}

func numericSlice(values []value.Value, name string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := requireNumeric(name, v)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	sort.Float64s(out)
	return out, nil
}

// sampleStdDev is the unbiased sample standard deviation (divide by n-1);
// fewer than two values yields NULL since a sample variance is undefined.
func sampleStdDev(values []value.Value) value.Value {
	nums, err := numericSlice(values, "stDev")
	if err != nil || len(nums) < 2 {
		return value.Null
	}
	mean := meanOf(nums)
	var sumSq float64
	for _, v := range nums {
		d := v - mean
		sumSq += d * d
	}
	return value.Float(math.Sqrt(sumSq / float64(len(nums)-1)))
}

// populationStdDev divides by n; empty input yields NULL.
func populationStdDev(values []value.Value) value.Value {
	nums, err := numericSlice(values, "stDevP")
	if err != nil || len(nums) == 0 {
		return value.Null
	}
	mean := meanOf(nums)
	var sumSq float64
	for _, v := range nums {
		d := v - mean
		sumSq += d * d
	}
	return value.Float(math.Sqrt(sumSq / float64(len(nums))))
}

func meanOf(nums []float64) float64 {
	var sum float64
	for _, v := range nums {
		sum += v
	}
	return sum / float64(len(nums))
}

// percentileDiscrete picks the nearest-rank element: int(p*n), clamped.
func percentileDiscrete(values []value.Value, p float64) (value.Value, error) {
	nums, err := numericSlice(values, "percentileDisc")
	if err != nil {
		return value.Null, err
	}
	if len(nums) == 0 {
		return value.Null, nil
	}
	idx := int(p * float64(len(nums)))
	idx = clamp(idx, 0, len(nums)-1)
	return value.Float(nums[idx]), nil
}

// percentileContinuous linearly interpolates between the two bracketing
// ranks.
func percentileContinuous(values []value.Value, p float64) (value.Value, error) {
	nums, err := numericSlice(values, "percentileCont")
	if err != nil {
		return value.Null, err
	}
	if len(nums) == 0 {
		return value.Null, nil
	}
	if len(nums) == 1 {
		return value.Float(nums[0]), nil
	}
	pos := p * float64(len(nums)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	lower = clamp(lower, 0, len(nums)-1)
	upper = clamp(upper, 0, len(nums)-1)
	if lower == upper {
		return value.Float(nums[lower]), nil
	}
	frac := pos - float64(lower)
	return value.Float(nums[lower] + (nums[upper]-nums[lower])*frac), nil
}
