package main

import (
	"github.com/pterm/pterm"
)

// consoleReporter renders run diagnostics on the terminal: a progress
// bar over the placement phase and a warning line per skipped item.
type consoleReporter struct {
	bar *pterm.ProgressbarPrinter
}

func (r *consoleReporter) Total(n int) {
	pterm.Info.Printfln("Items to process: %d", n)
	if n == 0 {
		return
	}
	bar, err := pterm.DefaultProgressbar.WithTotal(n).WithTitle("Copying files").Start()
	if err == nil {
		r.bar = bar
	}
}

func (r *consoleReporter) Progress(done, total int) {
	if r.bar == nil {
		return
	}
	r.bar.Add(done - r.bar.Current)
}

func (r *consoleReporter) Failure(err error) {
	pterm.Warning.Println(err.Error())
}

// Done stops the progress bar, if one was started
func (r *consoleReporter) Done() {
	if r.bar != nil {
		_, _ = r.bar.Stop()
	}
}
