// Package index selects representative records for placement.
//
// Records are grouped by (relative path, content hash). The first
// record of each group, in traversal order, stands for the whole
// group: files with identical relative path and identical content
// collapse to a single representative, while same-path records with
// different content stay distinct and surface downstream as name
// collisions.
package index

import (
	"github.com/arthur-debert/filesync/pkg/logging"
	"github.com/arthur-debert/filesync/pkg/types"
)

// Deduplicate returns one representative per unique (relative path,
// content hash) key, in group-first-seen order. Selection is
// deterministic: the first record encountered wins, so with roots
// processed in the order given, the first root wins ties. The input
// is not modified.
func Deduplicate(records []types.FileRecord) []types.FileRecord {
	logger := logging.GetLogger("index")

	seen := make(map[types.Key]struct{}, len(records))
	representatives := make([]types.FileRecord, 0, len(records))

	for _, rec := range records {
		key := rec.Key()
		if _, ok := seen[key]; ok {
			logger.Trace().
				Str("root", rec.Root).
				Str("relPath", rec.RelPath).
				Msg("discarding duplicate record")
			continue
		}
		seen[key] = struct{}{}
		representatives = append(representatives, rec)
	}

	logger.Debug().
		Int("records", len(records)).
		Int("unique", len(representatives)).
		Msg("records deduplicated")

	return representatives
}
