package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cypherlabs/cygraph/pkg/value"
)

// Graph-data serialization (C4, responsibility 1): a compact binary
// encoding of property maps, label sets, and the Value variants that can
// appear inside them. Every primitive round-trips bit-exactly; temporal
// values encode as their ISO-8601 string form so the wire format never
// depends on this process's monotonic clock or locale; spatial points
// encode as CRS + coordinates. This mirrors the two-system split the
// original implementation documents (a fast binary codec for graph data,
// kept separate from the JSON interchange format in pkg/interchange) —
// encoding/gob's tag model doesn't fit a closed external sum type well, so
// the wire tags below are hand-rolled the same way the Python reference's
// serialize_cypher_value dict-tag dispatch is.
const (
	tagNull byte = iota
	tagBool
	tagInt
	tagFloat
	tagString
	tagDate
	tagTime
	tagDateTime
	tagDuration
	tagPoint
	tagList
	tagMap
)

// EncodeValue writes v's binary encoding to w.
func EncodeValue(w io.Writer, v value.Value) error {
	switch v.Kind() {
	case value.KindNull:
		return writeByte(w, tagNull)
	case value.KindBool:
		if err := writeByte(w, tagBool); err != nil {
			return err
		}
		b := byte(0)
		if v.AsBool() {
			b = 1
		}
		return writeByte(w, b)
	case value.KindInt:
		if err := writeByte(w, tagInt); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, v.AsInt())
	case value.KindFloat:
		if err := writeByte(w, tagFloat); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, v.AsFloat())
	case value.KindString:
		if err := writeByte(w, tagString); err != nil {
			return err
		}
		return writeString(w, v.AsString())
	case value.KindDate:
		if err := writeByte(w, tagDate); err != nil {
			return err
		}
		return writeString(w, v.AsDate().String())
	case value.KindTime:
		if err := writeByte(w, tagTime); err != nil {
			return err
		}
		return writeString(w, v.AsTime().String())
	case value.KindDateTime:
		if err := writeByte(w, tagDateTime); err != nil {
			return err
		}
		return writeString(w, v.AsDateTime().String())
	case value.KindDuration:
		if err := writeByte(w, tagDuration); err != nil {
			return err
		}
		return writeString(w, v.AsDuration().String())
	case value.KindPoint:
		if err := writeByte(w, tagPoint); err != nil {
			return err
		}
		p := v.AsPoint()
		if err := writeByte(w, byte(p.CRS)); err != nil {
			return err
		}
		for _, f := range []float64{p.X, p.Y, p.Z} {
			if err := binary.Write(w, binary.BigEndian, f); err != nil {
				return err
			}
		}
		return nil
	case value.KindList:
		if err := writeByte(w, tagList); err != nil {
			return err
		}
		items := v.AsList()
		if err := binary.Write(w, binary.BigEndian, uint32(len(items))); err != nil {
			return err
		}
		for _, item := range items {
			if err := EncodeValue(w, item); err != nil {
				return err
			}
		}
		return nil
	case value.KindMap:
		if err := writeByte(w, tagMap); err != nil {
			return err
		}
		m := v.AsMap()
		if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
			return err
		}
		for k, val := range m {
			if err := writeString(w, k); err != nil {
				return err
			}
			if err := EncodeValue(w, val); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("storage: cannot encode value of kind %s", v.Kind())
	}
}

// DecodeValue reads one binary-encoded Value from r.
func DecodeValue(r io.Reader) (value.Value, error) {
	tag, err := readByte(r)
	if err != nil {
		return value.Null, err
	}
	switch tag {
	case tagNull:
		return value.Null, nil
	case tagBool:
		b, err := readByte(r)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(b == 1), nil
	case tagInt:
		var i int64
		if err := binary.Read(r, binary.BigEndian, &i); err != nil {
			return value.Null, err
		}
		return value.Int(i), nil
	case tagFloat:
		var f float64
		if err := binary.Read(r, binary.BigEndian, &f); err != nil {
			return value.Null, err
		}
		return value.Float(f), nil
	case tagString:
		s, err := readString(r)
		if err != nil {
			return value.Null, err
		}
		return value.String(s), nil
	case tagDate:
		s, err := readString(r)
		if err != nil {
			return value.Null, err
		}
		d, err := value.ParseDate(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromDate(d), nil
	case tagTime:
		s, err := readString(r)
		if err != nil {
			return value.Null, err
		}
		t, err := value.ParseTime(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromTime(t), nil
	case tagDateTime:
		s, err := readString(r)
		if err != nil {
			return value.Null, err
		}
		dt, err := value.ParseDateTime(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromDateTime(dt), nil
	case tagDuration:
		s, err := readString(r)
		if err != nil {
			return value.Null, err
		}
		d, err := value.ParseDuration(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromDuration(d), nil
	case tagPoint:
		crsByte, err := readByte(r)
		if err != nil {
			return value.Null, err
		}
		var coords [3]float64
		for i := range coords {
			if err := binary.Read(r, binary.BigEndian, &coords[i]); err != nil {
				return value.Null, err
			}
		}
		return value.FromPoint(value.Point{CRS: value.CRS(crsByte), X: coords[0], Y: coords[1], Z: coords[2]}), nil
	case tagList:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return value.Null, err
		}
		items := make([]value.Value, n)
		for i := range items {
			item, err := DecodeValue(r)
			if err != nil {
				return value.Null, err
			}
			items[i] = item
		}
		return value.List(items), nil
	case tagMap:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return value.Null, err
		}
		m := make(map[string]value.Value, n)
		for i := uint32(0); i < n; i++ {
			k, err := readString(r)
			if err != nil {
				return value.Null, err
			}
			v, err := DecodeValue(r)
			if err != nil {
				return value.Null, err
			}
			m[k] = v
		}
		return value.Map(m), nil
	default:
		return value.Null, fmt.Errorf("storage: unknown value tag %d", tag)
	}
}

// EncodeProperties and DecodeProperties (de)serialize an entire property
// map in one pass, used for both node and edge records.
func EncodeProperties(props map[string]value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(props))); err != nil {
		return nil, err
	}
	for k, v := range props {
		if err := writeString(&buf, k); err != nil {
			return nil, err
		}
		if err := EncodeValue(&buf, v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func DecodeProperties(data []byte) (map[string]value.Value, error) {
	if len(data) == 0 {
		return map[string]value.Value{}, nil
	}
	r := bytes.NewReader(data)
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make(map[string]value.Value, n)
	for i := uint32(0); i < n; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		v, err := DecodeValue(r)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// EncodeLabels and DecodeLabels (de)serialize an ordered label set.
func EncodeLabels(labels []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(labels))); err != nil {
		return nil, err
	}
	for _, l := range labels {
		if err := writeString(&buf, l); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func DecodeLabels(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	r := bytes.NewReader(data)
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// EncodeEdgeIDs and DecodeEdgeIDs (de)serialize an insertion-ordered
// adjacency list.
func EncodeEdgeIDs(ids []int64) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(ids))); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := binary.Write(&buf, binary.BigEndian, id); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func DecodeEdgeIDs(data []byte) ([]int64, error) {
	if len(data) == 0 {
		return nil, nil
	}
	r := bytes.NewReader(data)
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		if err := binary.Read(r, binary.BigEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
