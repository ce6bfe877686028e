// Package sync orchestrates a deduplicating merge of source trees
// into a destination tree: collect, deduplicate, place, in that fixed
// order. Placement cannot begin before collection finishes, since the
// dedup index must see every source first.
package sync

import (
	"os"
	"time"

	"github.com/arthur-debert/filesync/pkg/collector"
	"github.com/arthur-debert/filesync/pkg/errors"
	"github.com/arthur-debert/filesync/pkg/index"
	"github.com/arthur-debert/filesync/pkg/logging"
	"github.com/arthur-debert/filesync/pkg/placer"
	"github.com/arthur-debert/filesync/pkg/store"
)

// Options configures a sync run
type Options struct {
	// Sources are the root directories to merge, in priority order:
	// on identical (path, content) the earliest root wins. At least
	// one is required.
	Sources []string

	// Destination is the directory to populate. Created (including
	// parents) if missing. Required.
	Destination string

	// DatabasePath, when set, spills collected records to a SQLite
	// database instead of process memory. The file is removed after
	// the run unless KeepDatabase is set.
	DatabasePath string

	// KeepDatabase retains the record database after the run
	KeepDatabase bool

	// Workers is the number of hashing workers; 0 means one per CPU
	Workers int

	// MaxCollisionAttempts bounds collision resolution per record;
	// 0 uses the placer default.
	MaxCollisionAttempts int

	// ProgressInterval is the record cadence for progress updates;
	// 0 means every 100 records.
	ProgressInterval int

	// Reporter receives progress and failure diagnostics; nil
	// discards them.
	Reporter Reporter
}

// Stats aggregates the outcome of a run. A run with a non-zero
// failure count still completed: per-item failures are reported, not
// fatal.
type Stats struct {
	// Collected is the number of records produced by the collector
	Collected int
	// SkippedRoots counts inaccessible source roots
	SkippedRoots int
	// SkippedDirs counts unreadable directories under accessible roots
	SkippedDirs int
	// SkippedFiles counts files that could not be hashed
	SkippedFiles int
	// Unique is the number of representative records after dedup
	Unique int
	// Copied counts files written to their original relative path
	Copied int
	// Satisfied counts records whose content already existed
	Satisfied int
	// Renamed counts files written under a suffixed variant
	Renamed int
	// FailedPlacements counts records that could not be placed
	FailedPlacements int
	// Failures holds every per-item error of the run
	Failures []error
}

// Failed reports whether any per-item failure occurred
func (s *Stats) Failed() bool {
	return len(s.Failures) > 0
}

// Run merges the source trees into the destination. It returns an
// error only for configuration problems (no sources, no destination)
// or when the destination or record store cannot be set up; all
// per-root, per-file and per-record failures are collected in Stats
// and reported through the Reporter, and never abort the run.
func Run(opts Options) (*Stats, error) {
	logger := logging.GetLogger("sync")
	start := time.Now()
	defer logging.LogDuration(start, "sync")

	// Configuration checks come before any filesystem I/O
	if len(opts.Sources) == 0 {
		return nil, errors.New(errors.ErrConfigInvalid, "at least one source directory must be provided")
	}
	if opts.Destination == "" {
		return nil, errors.New(errors.ErrConfigInvalid, "destination directory must be provided")
	}

	reporter := opts.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	if err := os.MkdirAll(opts.Destination, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create destination %s", opts.Destination)
	}

	recordStore, cleanup, err := openStore(opts)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	stats := &Stats{}

	logger.Info().Strs("sources", opts.Sources).Msg("aggregating files from sources")
	c := collector.New(collector.Options{Workers: opts.Workers})
	collectStats, err := c.Collect(opts.Sources, recordStore.Append)
	if err != nil {
		return nil, err
	}
	stats.Collected = collectStats.Files
	stats.SkippedRoots = collectStats.SkippedRoots
	stats.SkippedDirs = collectStats.SkippedDirs
	stats.SkippedFiles = collectStats.SkippedFiles
	for _, failure := range collectStats.Failures {
		stats.Failures = append(stats.Failures, failure)
		reporter.Failure(failure)
	}

	records, err := recordStore.All()
	if err != nil {
		return nil, err
	}
	representatives := index.Deduplicate(records)
	stats.Unique = len(representatives)
	reporter.Total(stats.Unique)
	logger.Info().Int("items", stats.Unique).Msg("items to process")

	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = 100
	}

	p := placer.New(opts.Destination, placer.Options{MaxAttempts: opts.MaxCollisionAttempts})
	for i, rec := range representatives {
		placement, err := p.Place(rec)
		if err != nil {
			logger.Warn().Str("relPath", rec.RelPath).Err(err).Msg("placement failed")
			stats.FailedPlacements++
			stats.Failures = append(stats.Failures, err)
			reporter.Failure(err)
		} else {
			switch placement.Outcome {
			case placer.OutcomeCopied:
				stats.Copied++
			case placer.OutcomeSatisfied:
				stats.Satisfied++
			case placer.OutcomeRenamed:
				stats.Renamed++
			}
		}

		done := i + 1
		if done%interval == 0 || done == stats.Unique {
			reporter.Progress(done, stats.Unique)
		}
	}

	logger.Info().
		Int("copied", stats.Copied).
		Int("satisfied", stats.Satisfied).
		Int("renamed", stats.Renamed).
		Int("failures", len(stats.Failures)).
		Msg("sync finished")

	return stats, nil
}

// openStore picks the record store for the run and returns it with a
// cleanup that closes it and, for the SQLite store, removes the
// database file unless the caller asked to keep it.
func openStore(opts Options) (store.RecordStore, func(), error) {
	if opts.DatabasePath == "" {
		s := store.NewMemory()
		return s, func() { _ = s.Close() }, nil
	}

	s, err := store.OpenSQLite(opts.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = s.Close()
		if !opts.KeepDatabase {
			_ = os.Remove(opts.DatabasePath)
		}
	}
	return s, cleanup, nil
}
