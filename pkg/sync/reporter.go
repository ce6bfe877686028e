package sync

// Reporter is a write-only diagnostics sink for a sync run. It
// receives the item count, periodic completion updates and per-item
// failures. Reporting is a collaborator concern: nothing about the
// run's correctness depends on it.
type Reporter interface {
	// Total announces the number of records about to be placed
	Total(n int)
	// Progress reports that done of total records have been handled.
	// Called at a bounded cadence, and always for the final record.
	Progress(done, total int)
	// Failure reports one skipped root, file or record
	Failure(err error)
}

// NopReporter discards all reports. It is the default for library use.
type NopReporter struct{}

func (NopReporter) Total(int)         {}
func (NopReporter) Progress(int, int) {}
func (NopReporter) Failure(error)     {}
