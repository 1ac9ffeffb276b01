package storage

import (
	"fmt"
	"log"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/crypto/scrypt"

	"github.com/cypherlabs/cygraph/pkg/graph"
)

// Key prefixes for BadgerDB storage organization, extending the teacher's
// single-byte-prefix keyspace scheme with a statistics prefix the durable
// backend contract requires that the teacher's Engine interface does not.
const (
	prefixNode       = byte(0x01) // nodes:nodeID -> encoded properties+labels
	prefixEdge       = byte(0x02) // edges:edgeID -> encoded properties
	prefixAdjOut     = byte(0x04) // outgoing:nodeID -> encoded []edgeID, insertion order
	prefixAdjIn      = byte(0x05) // incoming:nodeID -> encoded []edgeID, insertion order
	prefixStatistics = byte(0x06) // single key -> encoded Statistics
)

var statisticsKey = []byte{prefixStatistics}

// BadgerOptions configures the durable backend, mirroring the teacher's
// BadgerOptions shape (DataDir/InMemory/SyncWrites/Logger/LowMemory) with
// an added EncryptionPassphrase for the at-rest encryption mode.
type BadgerOptions struct {
	DataDir    string
	InMemory   bool
	SyncWrites bool
	Logger     badger.Logger
	LowMemory  bool

	// EncryptionPassphrase, when non-empty, derives a 32-byte key via
	// scrypt and enables BadgerDB's at-rest encryption for this store.
	EncryptionPassphrase string
	encryptionSalt       []byte
}

// BadgerBackend is the durable Backend implementation, persisting graph
// state to disk via BadgerDB. Writes are buffered in a single pending
// update transaction until Commit, matching the C3 contract's
// persist-on-commit requirement — this falls directly out of badger's own
// transaction semantics rather than anything this package adds on top.
type BadgerBackend struct {
	db      *badger.DB
	pending *badger.Txn
	closed  bool
}

// OpenBadgerBackend opens (creating if absent) a durable backend at
// opts.DataDir.
func OpenBadgerBackend(opts BadgerOptions) (*BadgerBackend, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger)
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	badgerOpts = badgerOpts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	if opts.LowMemory {
		badgerOpts = badgerOpts.WithMemTableSize(8 << 20).WithNumMemtables(1)
	}

	if opts.EncryptionPassphrase != "" {
		key, err := deriveEncryptionKey(opts.EncryptionPassphrase, opts.encryptionSalt)
		if err != nil {
			return nil, fmt.Errorf("storage: deriving encryption key: %w", err)
		}
		badgerOpts = badgerOpts.WithEncryptionKey(key).WithIndexCacheSize(16 << 20)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("storage: opening badger at %q: %w", opts.DataDir, err)
	}
	return &BadgerBackend{db: db}, nil
}

// deriveEncryptionKey derives a 32-byte AES key from a passphrase via
// scrypt, the same cost-function family the teacher's encryption helpers
// use for password hashing (golang.org/x/crypto), applied here to key
// derivation instead.
func deriveEncryptionKey(passphrase string, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		salt = []byte("cygraph-badger-at-rest-salt")
	}
	return scrypt.Key([]byte(passphrase), salt, 1<<15, 8, 1, 32)
}

func (b *BadgerBackend) txn() *badger.Txn {
	if b.pending == nil {
		b.pending = b.db.NewTransaction(true)
	}
	return b.pending
}

func nodeKey(id graph.NodeID) []byte {
	return appendInt64([]byte{prefixNode}, int64(id))
}

func edgeKey(id graph.EdgeID) []byte {
	return appendInt64([]byte{prefixEdge}, int64(id))
}

func adjOutKey(id graph.NodeID) []byte {
	return appendInt64([]byte{prefixAdjOut}, int64(id))
}

func adjInKey(id graph.NodeID) []byte {
	return appendInt64([]byte{prefixAdjIn}, int64(id))
}

func appendInt64(prefix []byte, v int64) []byte {
	out := make([]byte, len(prefix)+8)
	copy(out, prefix)
	for i := 0; i < 8; i++ {
		out[len(prefix)+i] = byte(v >> (56 - 8*i))
	}
	return out
}

// nodeRecord is the on-disk shape for a node: labels + properties encoded
// separately so a label-only scan (if ever needed) wouldn't have to decode
// properties, mirroring the teacher's separate label-index keyspace intent
// without persisting a redundant label index (the in-memory Graph rebuilds
// it from LoadNodes on open).
type nodeRecord struct {
	labels []byte
	props  []byte
}

func (b *BadgerBackend) SaveNode(n *graph.Node) error {
	labels, err := EncodeLabels(n.Labels)
	if err != nil {
		return err
	}
	props, err := EncodeProperties(n.Properties)
	if err != nil {
		return err
	}
	rec := encodeNodeRecord(labels, props)
	return b.txn().Set(nodeKey(n.ID), rec)
}

func (b *BadgerBackend) SaveEdge(e *graph.Edge) error {
	props, err := EncodeProperties(e.Properties)
	if err != nil {
		return err
	}
	rec := encodeEdgeRecord(e.Type, int64(e.Src), int64(e.Dst), props)
	return b.txn().Set(edgeKey(e.ID), rec)
}

func (b *BadgerBackend) DeleteNode(id graph.NodeID) error {
	return b.txn().Delete(nodeKey(id))
}

func (b *BadgerBackend) DeleteEdge(id graph.EdgeID) error {
	return b.txn().Delete(edgeKey(id))
}

func (b *BadgerBackend) LoadNodes() ([]*graph.Node, error) {
	var out []*graph.Node
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte{prefixNode}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := int64(0)
			key := item.KeyCopy(nil)
			for i := 0; i < 8; i++ {
				id = id<<8 | int64(key[1+i])
			}
			var n *graph.Node
			err := item.Value(func(val []byte) error {
				labels, props, err := decodeNodeRecord(val)
				if err != nil {
					return err
				}
				n = &graph.Node{ID: graph.NodeID(id), Labels: labels, Properties: props}
				return nil
			})
			if err != nil {
				return err
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: loading nodes: %w", err)
	}
	return out, nil
}

func (b *BadgerBackend) LoadEdges() ([]*graph.Edge, error) {
	var out []*graph.Edge
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte{prefixEdge}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			id := int64(0)
			for i := 0; i < 8; i++ {
				id = id<<8 | int64(key[1+i])
			}
			var e *graph.Edge
			err := item.Value(func(val []byte) error {
				typ, src, dst, props, err := decodeEdgeRecord(val)
				if err != nil {
					return err
				}
				e = &graph.Edge{ID: graph.EdgeID(id), Type: typ, Src: graph.NodeID(src), Dst: graph.NodeID(dst), Properties: props}
				return nil
			})
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: loading edges: %w", err)
	}
	return out, nil
}

func (b *BadgerBackend) loadAdjacency(prefixByte byte) (map[graph.NodeID][]graph.EdgeID, error) {
	out := make(map[graph.NodeID][]graph.EdgeID)
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte{prefixByte}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			id := int64(0)
			for i := 0; i < 8; i++ {
				id = id<<8 | int64(key[1+i])
			}
			err := item.Value(func(val []byte) error {
				ids, err := DecodeEdgeIDs(val)
				if err != nil {
					return err
				}
				list := make([]graph.EdgeID, len(ids))
				for i, v := range ids {
					list[i] = graph.EdgeID(v)
				}
				out[graph.NodeID(id)] = list
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: loading adjacency: %w", err)
	}
	return out, nil
}

func (b *BadgerBackend) LoadAdjacencyOut() (map[graph.NodeID][]graph.EdgeID, error) {
	return b.loadAdjacency(prefixAdjOut)
}

func (b *BadgerBackend) LoadAdjacencyIn() (map[graph.NodeID][]graph.EdgeID, error) {
	return b.loadAdjacency(prefixAdjIn)
}

// SaveAdjacencyOut and SaveAdjacencyIn persist a full adjacency list for
// one node/direction, in the given order, for LoadAdjacencyOut/In to
// return. Nothing outside this package's tests calls them; reopening a
// handle rebuilds adjacency from LoadEdges instead.
func (b *BadgerBackend) SaveAdjacencyOut(id graph.NodeID, ids []graph.EdgeID) error {
	return b.saveAdjacency(adjOutKey(id), ids)
}

func (b *BadgerBackend) SaveAdjacencyIn(id graph.NodeID, ids []graph.EdgeID) error {
	return b.saveAdjacency(adjInKey(id), ids)
}

func (b *BadgerBackend) saveAdjacency(key []byte, ids []graph.EdgeID) error {
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	enc, err := EncodeEdgeIDs(raw)
	if err != nil {
		return err
	}
	return b.txn().Set(key, enc)
}

func (b *BadgerBackend) SaveStatistics(s graph.Statistics) error {
	enc, err := encodeStatistics(s)
	if err != nil {
		return err
	}
	return b.txn().Set(statisticsKey, enc)
}

func (b *BadgerBackend) LoadStatistics() (*graph.Statistics, error) {
	var out *graph.Statistics
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(statisticsKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			s, err := decodeStatistics(val)
			if err != nil {
				return err
			}
			out = s
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("storage: loading statistics: %w", err)
	}
	return out, nil
}

// Commit flushes the pending transaction. A failed commit leaves nothing
// partially visible: badger discards the whole txn on error.
func (b *BadgerBackend) Commit() error {
	if b.pending == nil {
		return nil
	}
	err := b.pending.Commit()
	b.pending.Discard()
	b.pending = nil
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	return nil
}

// Rollback discards the pending transaction without making its writes
// visible. The next Save/Delete call lazily opens a fresh one via txn().
func (b *BadgerBackend) Rollback() error {
	if b.pending != nil {
		b.pending.Discard()
		b.pending = nil
	}
	return nil
}

// Close is idempotent after Commit, per the C3 contract.
func (b *BadgerBackend) Close() error {
	if b.closed {
		return nil
	}
	if b.pending != nil {
		b.pending.Discard()
		b.pending = nil
	}
	b.closed = true
	if err := b.db.Close(); err != nil {
		log.Printf("storage: error closing badger: %v", err)
		return fmt.Errorf("storage: closing badger: %w", err)
	}
	return nil
}
