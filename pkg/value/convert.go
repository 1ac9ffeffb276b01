package value

import "fmt"

// FromNative is the single conversion boundary from host-language dynamic
// values into the closed Value sum type: int -> Integer, float64 -> Float,
// bool -> Boolean, string -> String, nil -> Null, []any -> List
// (recursively), map[string]any -> Map (recursively) unless shaped as a
// point (has an "x"/"y" or "latitude"/"longitude" key), in which case it
// becomes a Point.
func FromNative(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			conv, err := FromNative(item)
			if err != nil {
				return Null, err
			}
			items[i] = conv
		}
		return List(items), nil
	case map[string]any:
		out := make(map[string]Value, len(x))
		for k, val := range x {
			conv, err := FromNative(val)
			if err != nil {
				return Null, err
			}
			out[k] = conv
		}
		if looksLikePoint(x) {
			if pt, err := NewPointFromMap(out); err == nil {
				return FromPoint(pt), nil
			}
			// An invalid coordinate shape (out-of-range latitude, a
			// half-populated key set) falls back to a plain map rather
			// than erroring — point-lifting is a convenience, not a
			// validation gate.
		}
		return Map(out), nil
	default:
		return Null, fmt.Errorf("%w: cannot convert native type %T", ErrTypeMismatch, v)
	}
}

func looksLikePoint(m map[string]any) bool {
	_, hasXY := m["x"]
	_, hasY := m["y"]
	_, hasLat := m["latitude"]
	_, hasLon := m["longitude"]
	return (hasXY && hasY) || (hasLat && hasLon)
}

// ToNative is the reverse conversion used at host API boundaries (handle
// results, register_function callbacks).
func ToNative(v Value) any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.AsBool()
	case KindInt:
		return v.AsInt()
	case KindFloat:
		return v.AsFloat()
	case KindString:
		return v.AsString()
	case KindDate:
		return v.AsDate().String()
	case KindTime:
		return v.AsTime().String()
	case KindDateTime:
		return v.AsDateTime().String()
	case KindDuration:
		return v.AsDuration().String()
	case KindPoint:
		return v.AsPoint()
	case KindList:
		list := v.AsList()
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = ToNative(item)
		}
		return out
	case KindMap:
		m := v.AsMap()
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = ToNative(val)
		}
		return out
	case KindNode:
		return v.AsNode()
	case KindEdge:
		return v.AsEdge()
	case KindPath:
		return v.AsPath()
	default:
		return nil
	}
}

// Truthy implements Cypher's three-valued boolean coercion for WHERE/Filter:
// Boolean values pass through, NULL stays unknown (ok=false), everything
// else is a TypeError at the call site (this function does not itself
// error; callers that need strict Boolean-only checking use Kind() directly).
func Truthy(v Value) (b bool, ok bool) {
	switch v.Kind() {
	case KindNull:
		return false, false
	case KindBool:
		return v.AsBool(), true
	default:
		return false, true
	}
}
