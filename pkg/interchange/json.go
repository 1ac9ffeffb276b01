// Package interchange implements the JSON-graph interchange format (C4,
// responsibility 2): a typed {"t": tag, "v": value} wrapper around every
// value.Value variant, and the top-level {"nodes":[...], "edges":[...],
// "directed":true, "metadata":{...}} graph document shape. Round-tripping
// through this form preserves the semantic Kind of every value — an
// Integer never silently becomes a Float on reload, which is why this
// exists as a typed wrapper rather than plain encoding/json marshaling of
// Go's own numeric types.
//
// This is a distinct responsibility from pkg/storage's binary graph-data
// codec: that one is for the durable backend, this one is for
// import/export and any JSON-speaking collaborator, mirroring the "Two
// Serialization Systems" split the reference implementation documents.
package interchange

import (
	"encoding/json"
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// TypedValue is the wire shape for one Value: {"t": tag, "v": payload}.
type TypedValue struct {
	T string          `json:"t"`
	V json.RawMessage `json:"v,omitempty"`
}

// Document is the top-level JSON-graph interchange shape.
type Document struct {
	Nodes    []NodeDoc         `json:"nodes"`
	Edges    []EdgeDoc         `json:"edges"`
	Directed bool              `json:"directed"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type NodeDoc struct {
	ID         string                `json:"id"`
	Labels     []string              `json:"labels"`
	Properties map[string]TypedValue `json:"properties"`
}

type EdgeDoc struct {
	ID         string                `json:"id"`
	Source     string                `json:"source"`
	Target     string                `json:"target"`
	Type       string                `json:"type"`
	Properties map[string]TypedValue `json:"properties"`
}

// EncodeValue converts a Value into its typed wire representation.
func EncodeValue(v value.Value) (TypedValue, error) {
	tag, payload, err := tagAndPayload(v)
	if err != nil {
		return TypedValue{}, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return TypedValue{}, fmt.Errorf("interchange: marshaling %s: %w", tag, err)
	}
	return TypedValue{T: tag, V: raw}, nil
}

func tagAndPayload(v value.Value) (string, any, error) {
	switch v.Kind() {
	case value.KindNull:
		return "null", nil, nil
	case value.KindBool:
		return "bool", v.AsBool(), nil
	case value.KindInt:
		return "int", v.AsInt(), nil
	case value.KindFloat:
		return "float", v.AsFloat(), nil
	case value.KindString:
		return "string", v.AsString(), nil
	case value.KindDate:
		return "date", v.AsDate().String(), nil
	case value.KindTime:
		return "time", v.AsTime().String(), nil
	case value.KindDateTime:
		return "datetime", v.AsDateTime().String(), nil
	case value.KindDuration:
		return "duration", v.AsDuration().String(), nil
	case value.KindPoint:
		p := v.AsPoint()
		return "point", map[string]any{"crs": p.CRS.String(), "x": p.X, "y": p.Y, "z": p.Z}, nil
	case value.KindList:
		items := v.AsList()
		out := make([]TypedValue, len(items))
		for i, item := range items {
			tv, err := EncodeValue(item)
			if err != nil {
				return "", nil, err
			}
			out[i] = tv
		}
		return "list", out, nil
	case value.KindMap:
		m := v.AsMap()
		out := make(map[string]TypedValue, len(m))
		for k, val := range m {
			tv, err := EncodeValue(val)
			if err != nil {
				return "", nil, err
			}
			out[k] = tv
		}
		return "map", out, nil
	default:
		return "", nil, fmt.Errorf("interchange: cannot encode value of kind %s", v.Kind())
	}
}

// DecodeValue converts a typed wire value back into a Value.
func DecodeValue(tv TypedValue) (value.Value, error) {
	switch tv.T {
	case "null":
		return value.Null, nil
	case "bool":
		var b bool
		if err := json.Unmarshal(tv.V, &b); err != nil {
			return value.Null, err
		}
		return value.Bool(b), nil
	case "int":
		var i int64
		if err := json.Unmarshal(tv.V, &i); err != nil {
			return value.Null, err
		}
		return value.Int(i), nil
	case "float":
		var f float64
		if err := json.Unmarshal(tv.V, &f); err != nil {
			return value.Null, err
		}
		return value.Float(f), nil
	case "string":
		var s string
		if err := json.Unmarshal(tv.V, &s); err != nil {
			return value.Null, err
		}
		return value.String(s), nil
	case "date":
		var s string
		if err := json.Unmarshal(tv.V, &s); err != nil {
			return value.Null, err
		}
		d, err := value.ParseDate(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromDate(d), nil
	case "time":
		var s string
		if err := json.Unmarshal(tv.V, &s); err != nil {
			return value.Null, err
		}
		t, err := value.ParseTime(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromTime(t), nil
	case "datetime":
		var s string
		if err := json.Unmarshal(tv.V, &s); err != nil {
			return value.Null, err
		}
		dt, err := value.ParseDateTime(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromDateTime(dt), nil
	case "duration":
		var s string
		if err := json.Unmarshal(tv.V, &s); err != nil {
			return value.Null, err
		}
		d, err := value.ParseDuration(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromDuration(d), nil
	case "point", "distance":
		var raw struct {
			CRS string  `json:"crs"`
			X   float64 `json:"x"`
			Y   float64 `json:"y"`
			Z   float64 `json:"z"`
		}
		if err := json.Unmarshal(tv.V, &raw); err != nil {
			return value.Null, err
		}
		return value.FromPoint(value.Point{CRS: crsFromString(raw.CRS), X: raw.X, Y: raw.Y, Z: raw.Z}), nil
	case "list":
		var raw []TypedValue
		if err := json.Unmarshal(tv.V, &raw); err != nil {
			return value.Null, err
		}
		items := make([]value.Value, len(raw))
		for i, item := range raw {
			v, err := DecodeValue(item)
			if err != nil {
				return value.Null, err
			}
			items[i] = v
		}
		return value.List(items), nil
	case "map":
		var raw map[string]TypedValue
		if err := json.Unmarshal(tv.V, &raw); err != nil {
			return value.Null, err
		}
		out := make(map[string]value.Value, len(raw))
		for k, item := range raw {
			v, err := DecodeValue(item)
			if err != nil {
				return value.Null, err
			}
			out[k] = v
		}
		return value.Map(out), nil
	default:
		return value.Null, fmt.Errorf("interchange: unknown type tag %q", tv.T)
	}
}

func crsFromString(s string) value.CRS {
	switch s {
	case "cartesian":
		return value.CRSCartesian
	case "cartesian-3d":
		return value.CRSCartesian3D
	case "wgs-84-3d":
		return value.CRSWGS843D
	default:
		return value.CRSWGS84
	}
}

// EncodeProperties/DecodeProperties convert an entire property map.
func EncodeProperties(props map[string]value.Value) (map[string]TypedValue, error) {
	out := make(map[string]TypedValue, len(props))
	for k, v := range props {
		tv, err := EncodeValue(v)
		if err != nil {
			return nil, err
		}
		out[k] = tv
	}
	return out, nil
}

func DecodeProperties(props map[string]TypedValue) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(props))
	for k, tv := range props {
		v, err := DecodeValue(tv)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Export builds a full Document from a graph's current node/edge
// collections.
func Export(nodeList []*graph.Node, edgeList []*graph.Edge) (*Document, error) {
	doc := &Document{Directed: true}
	for _, n := range nodeList {
		props, err := EncodeProperties(n.Properties)
		if err != nil {
			return nil, err
		}
		doc.Nodes = append(doc.Nodes, NodeDoc{
			ID:         fmt.Sprintf("%d", n.ID),
			Labels:     n.Labels,
			Properties: props,
		})
	}
	for _, e := range edgeList {
		props, err := EncodeProperties(e.Properties)
		if err != nil {
			return nil, err
		}
		doc.Edges = append(doc.Edges, EdgeDoc{
			ID:         fmt.Sprintf("%d", e.ID),
			Source:     fmt.Sprintf("%d", e.Src),
			Target:     fmt.Sprintf("%d", e.Dst),
			Type:       e.Type,
			Properties: props,
		})
	}
	return doc, nil
}
