// Package store provides intermediate persistence for collected file
// records. A store is a spill buffer between collection and
// deduplication: records go in once, in discovery order, and come back
// out in the same order. Correctness of the sync never depends on
// which implementation backs it.
package store

import (
	"github.com/arthur-debert/filesync/pkg/types"
)

// RecordStore holds the file records produced by the collector until
// the dedup index consumes them. Implementations must preserve
// insertion order in All.
type RecordStore interface {
	// Append adds one record. Records are never updated or removed.
	Append(rec types.FileRecord) error

	// All returns every appended record in insertion order.
	All() ([]types.FileRecord, error)

	// Len returns the number of appended records.
	Len() (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Memory is an in-memory RecordStore. It is the default backing for
// ordinary tree sizes.
type Memory struct {
	records []types.FileRecord
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(rec types.FileRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) All() ([]types.FileRecord, error) {
	out := make([]types.FileRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *Memory) Len() (int, error) {
	return len(m.records), nil
}

func (m *Memory) Close() error {
	return nil
}
