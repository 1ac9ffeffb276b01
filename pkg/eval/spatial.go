package eval

import "github.com/cypherlabs/cygraph/pkg/value"

// registerSpatialFunctions wires point()/distance(), grounded on
// apoc/spatial/spatial.go's Point/Distance/HaversineDistance, via
// value.NewPointFromMap and value.Distance which already implement the
// CRS-inference and Euclidean/Haversine split (see pkg/value/point.go).
func registerSpatialFunctions(r *FunctionRegistry) {
	r.Register("point", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("point", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		if args[0].Kind() != value.KindMap {
			return value.Null, wrongType("point", "Map", args[0])
		}
		pt, err := value.NewPointFromMap(args[0].AsMap())
		if err != nil {
			return value.Null, err
		}
		return value.FromPoint(pt), nil
	})
	r.Register("distance", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 2 {
			return value.Null, wrongArgCount("distance", 2, len(args))
		}
		if anyNull(args) {
			return value.Null, nil
		}
		if args[0].Kind() != value.KindPoint || args[1].Kind() != value.KindPoint {
			return value.Null, wrongType("distance", "Point", args[0])
		}
		d, err := value.Distance(args[0].AsPoint(), args[1].AsPoint())
		if err != nil {
			return value.Null, err
		}
		return value.Float(d), nil
	})
}
