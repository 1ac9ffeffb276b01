package storage

import (
	"bytes"
	"encoding/binary"

	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// encodeNodeRecord/decodeNodeRecord frame a node's labels and properties
// behind their own length prefixes so each can be decoded independently.
func encodeNodeRecord(labels, props []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(labels)))
	buf.Write(labels)
	binary.Write(&buf, binary.BigEndian, uint32(len(props)))
	buf.Write(props)
	return buf.Bytes()
}

func decodeNodeRecord(data []byte) (labels []string, props map[string]value.Value, err error) {
	r := bytes.NewReader(data)
	var labelLen uint32
	if err = binary.Read(r, binary.BigEndian, &labelLen); err != nil {
		return nil, nil, err
	}
	labelBytes := make([]byte, labelLen)
	if _, err = r.Read(labelBytes); err != nil && labelLen > 0 {
		return nil, nil, err
	}
	labels, err = DecodeLabels(labelBytes)
	if err != nil {
		return nil, nil, err
	}
	var propLen uint32
	if err = binary.Read(r, binary.BigEndian, &propLen); err != nil {
		return nil, nil, err
	}
	propBytes := make([]byte, propLen)
	if _, err = r.Read(propBytes); err != nil && propLen > 0 {
		return nil, nil, err
	}
	props, err = DecodeProperties(propBytes)
	return labels, props, err
}

// encodeEdgeRecord/decodeEdgeRecord frame an edge's type, endpoints, and
// properties.
func encodeEdgeRecord(typ string, src, dst int64, props []byte) []byte {
	var buf bytes.Buffer
	writeString(&buf, typ)
	binary.Write(&buf, binary.BigEndian, src)
	binary.Write(&buf, binary.BigEndian, dst)
	binary.Write(&buf, binary.BigEndian, uint32(len(props)))
	buf.Write(props)
	return buf.Bytes()
}

func decodeEdgeRecord(data []byte) (typ string, src, dst int64, props map[string]value.Value, err error) {
	r := bytes.NewReader(data)
	typ, err = readString(r)
	if err != nil {
		return "", 0, 0, nil, err
	}
	if err = binary.Read(r, binary.BigEndian, &src); err != nil {
		return "", 0, 0, nil, err
	}
	if err = binary.Read(r, binary.BigEndian, &dst); err != nil {
		return "", 0, 0, nil, err
	}
	var propLen uint32
	if err = binary.Read(r, binary.BigEndian, &propLen); err != nil {
		return "", 0, 0, nil, err
	}
	propBytes := make([]byte, propLen)
	if _, err = r.Read(propBytes); err != nil && propLen > 0 {
		return "", 0, 0, nil, err
	}
	props, err = DecodeProperties(propBytes)
	return typ, src, dst, props, err
}

// encodeStatistics/decodeStatistics (de)serialize a graph.Statistics
// snapshot for persistence. LastUpdated is dropped on reload and
// recomputed lazily by the caller, since a disk-persisted wall-clock
// timestamp from a previous process run has no meaning after restart.
func encodeStatistics(s graph.Statistics) ([]byte, error) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int64(s.TotalNodes))
	binary.Write(&buf, binary.BigEndian, int64(s.TotalEdges))
	if err := writeCountMap(&buf, s.NodeCountsByLabel); err != nil {
		return nil, err
	}
	if err := writeCountMap(&buf, s.EdgeCountsByType); err != nil {
		return nil, err
	}
	if err := writeFloatMap(&buf, s.AvgDegreeByType); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeStatistics(data []byte) (*graph.Statistics, error) {
	r := bytes.NewReader(data)
	s := &graph.Statistics{}
	var totalNodes, totalEdges int64
	if err := binary.Read(r, binary.BigEndian, &totalNodes); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &totalEdges); err != nil {
		return nil, err
	}
	s.TotalNodes = int(totalNodes)
	s.TotalEdges = int(totalEdges)
	var err error
	if s.NodeCountsByLabel, err = readCountMap(r); err != nil {
		return nil, err
	}
	if s.EdgeCountsByType, err = readCountMap(r); err != nil {
		return nil, err
	}
	if s.AvgDegreeByType, err = readFloatMap(r); err != nil {
		return nil, err
	}
	return s, nil
}

func writeCountMap(w *bytes.Buffer, m map[string]int) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
		return err
	}
	for k, v := range m {
		if err := writeString(w, k); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, int64(v)); err != nil {
			return err
		}
	}
	return nil
}

func readCountMap(r *bytes.Reader) (map[string]int, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make(map[string]int, n)
	for i := uint32(0); i < n; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		var v int64
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		out[k] = int(v)
	}
	return out, nil
}

func writeFloatMap(w *bytes.Buffer, m map[string]float64) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
		return err
	}
	for k, v := range m {
		if err := writeString(w, k); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readFloatMap(r *bytes.Reader) (map[string]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make(map[string]float64, n)
	for i := uint32(0); i < n; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		var v float64
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
