// Package collector walks source roots and produces file records.
//
// Each root is addressed independently through explicit path joining:
// the walk never changes the process working directory, so relative
// and absolute roots behave identically and roots could be scanned
// concurrently without coordination.
package collector

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/filesync/pkg/errors"
	"github.com/arthur-debert/filesync/pkg/fingerprint"
	"github.com/arthur-debert/filesync/pkg/logging"
	"github.com/arthur-debert/filesync/pkg/types"
)

// Sink receives records in discovery order. A non-nil error aborts
// collection and is returned from Collect unchanged.
type Sink func(rec types.FileRecord) error

// Options tunes collection behavior
type Options struct {
	// Workers is the number of goroutines hashing files. Zero picks
	// runtime.NumCPU(); one disables parallel hashing. Hashing order
	// never affects record order: records are emitted in walk order
	// regardless of which worker finished first.
	Workers int
}

// Stats summarizes one collection run
type Stats struct {
	// Files is the number of records emitted
	Files int
	// SkippedFiles counts files dropped because they could not be hashed
	SkippedFiles int
	// SkippedDirs counts directories under accessible roots whose
	// contents could not be read
	SkippedDirs int
	// SkippedRoots counts roots dropped because they could not be accessed
	SkippedRoots int
	// Failures holds one error per skipped root or file
	Failures []error
}

// Collector walks source roots recursively and fingerprints every
// file found, tolerating per-root and per-file failures.
type Collector struct {
	workers int
	logger  zerolog.Logger
}

// New creates a collector
func New(opts Options) *Collector {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Collector{
		workers: workers,
		logger:  logging.GetLogger("collector"),
	}
}

// pendingFile is a file discovered by the walk, awaiting its digest
type pendingFile struct {
	relPath string
	path    string
}

// Collect walks the given roots in order and emits one FileRecord per
// successfully hashed file to sink. An inaccessible root is skipped
// and recorded in Stats.Failures; a file that cannot be hashed is
// skipped likewise. Both leave the rest of the run untouched. Walk
// order is lexical per directory, so record order is deterministic
// for a given filesystem state.
func (c *Collector) Collect(roots []string, sink Sink) (Stats, error) {
	var stats Stats

	for _, root := range roots {
		pending := c.walkRoot(root, &stats)
		if pending == nil {
			stats.SkippedRoots++
			continue
		}

		digests := c.hashAll(pending)

		for i, p := range pending {
			if digests[i].err != nil {
				c.logger.Warn().
					Str("path", p.path).
					Err(digests[i].err).
					Msg("skipping file that could not be hashed")
				stats.SkippedFiles++
				stats.Failures = append(stats.Failures, digests[i].err)
				continue
			}
			rec := types.FileRecord{Root: root, RelPath: p.relPath, Hash: digests[i].digest}
			if err := sink(rec); err != nil {
				return stats, err
			}
			stats.Files++
		}
	}

	return stats, nil
}

// walkRoot gathers the files under root in walk order, recording
// per-directory and per-file failures in stats as it goes. A nil
// pending slice means the root itself was inaccessible.
func (c *Collector) walkRoot(root string, stats *Stats) []pendingFile {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = errors.Newf(errors.ErrRootAccess, "source root %s is not a directory", root)
		} else {
			err = errors.Wrapf(err, errors.ErrRootAccess, "cannot access source root %s", root)
		}
		c.logger.Warn().Str("root", root).Err(err).Msg("skipping inaccessible source root")
		stats.Failures = append(stats.Failures, err)
		return nil
	}

	pending := []pendingFile{}
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A directory under the root could not be read; skip its
			// subtree and keep collecting the rest of the root.
			stats.SkippedDirs++
			stats.Failures = append(stats.Failures,
				errors.Wrapf(err, errors.ErrRootAccess, "cannot read %s", path))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			stats.SkippedFiles++
			stats.Failures = append(stats.Failures,
				errors.Wrapf(err, errors.ErrRootAccess, "cannot relativize %s", path))
			return nil
		}
		pending = append(pending, pendingFile{relPath: relPath, path: path})
		return nil
	})
	if walkErr != nil {
		// WalkDir only returns errors surfaced by the callback, and
		// ours swallows them; treat an escape as a root failure.
		c.logger.Warn().Str("root", root).Err(walkErr).Msg("walk aborted")
		stats.Failures = append(stats.Failures,
			errors.Wrapf(walkErr, errors.ErrRootAccess, "cannot walk source root %s", root))
		return nil
	}

	c.logger.Debug().Str("root", root).Int("files", len(pending)).Msg("root walked")
	return pending
}

// hashResult pairs a digest with its per-file error
type hashResult struct {
	digest fingerprint.Digest
	err    error
}

// hashAll fingerprints every pending file, in parallel when the
// collector has more than one worker. Results line up with the input
// slice, preserving walk order for the caller.
func (c *Collector) hashAll(pending []pendingFile) []hashResult {
	results := make([]hashResult, len(pending))

	if c.workers <= 1 || len(pending) < 2 {
		for i, p := range pending {
			results[i].digest, results[i].err = fingerprint.File(p.path)
		}
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	workers := c.workers
	if workers > len(pending) {
		workers = len(pending)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i].digest, results[i].err = fingerprint.File(pending[i].path)
			}
		}()
	}
	for i := range pending {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}
