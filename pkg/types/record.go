// Package types holds the data model shared by the collector, the
// dedup index and the placer.
package types

import (
	"path/filepath"

	"github.com/arthur-debert/filesync/pkg/fingerprint"
)

// FileRecord identifies one file instance found under a scanned source
// root. Records are immutable once created: they are produced by the
// collector, grouped by the dedup index and consumed by the placer.
type FileRecord struct {
	// Root is the source root the file was found under, exactly as
	// supplied by the caller.
	Root string

	// RelPath is the file's path relative to Root, using the native
	// separator. Joining Root and RelPath yields the source path.
	RelPath string

	// Hash is the content digest of the file at collection time.
	Hash fingerprint.Digest
}

// SourcePath returns the full path of the file under its source root
func (r FileRecord) SourcePath() string {
	return filepath.Join(r.Root, r.RelPath)
}

// Key identifies a unique (relative path, content) combination. At
// most one file is ever written to the destination per key.
type Key struct {
	RelPath string
	Hash    fingerprint.Digest
}

// Key returns the dedup key for this record
func (r FileRecord) Key() Key {
	return Key{RelPath: r.RelPath, Hash: r.Hash}
}
