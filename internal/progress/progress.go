// Package progress provides aggregate transfer progress reporting for
// CLI (progress bar) and observer (event bus) consumers.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/ASL66/mirad-upload/internal/events"
)

// Reporter receives aggregate progress for one batch transfer. Current and
// total are byte counts across every file in the batch.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
}

// CLIReporter renders a single aggregate progress bar on stderr. Outside a
// terminal it stays silent except for errors.
type CLIReporter struct {
	bar      *progressbar.ProgressBar
	terminal bool
}

// NewCLIReporter creates a reporter bound to stderr.
func NewCLIReporter() *CLIReporter {
	return &CLIReporter{terminal: term.IsTerminal(int(os.Stderr.Fd()))}
}

// Start initializes the bar with the batch's total byte count.
func (r *CLIReporter) Start(total int64, description string) {
	if !r.terminal {
		return
	}
	r.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to the current aggregate position.
func (r *CLIReporter) Update(current int64) {
	if r.bar != nil {
		_ = r.bar.Set64(current)
	}
}

// Finish completes the bar.
func (r *CLIReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// Error prints the failure below the bar.
func (r *CLIReporter) Error(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}
}

// EventReporter forwards progress to the event bus so observers can render
// it their own way.
type EventReporter struct {
	bus   *events.EventBus
	total int64
}

// NewEventReporter creates a bus-backed reporter.
func NewEventReporter(bus *events.EventBus) *EventReporter {
	return &EventReporter{bus: bus}
}

func (r *EventReporter) Start(total int64, description string) {
	r.total = total
	r.publish(0)
}

func (r *EventReporter) Update(current int64) { r.publish(current) }

func (r *EventReporter) Finish() { r.publish(r.total) }

func (r *EventReporter) Error(err error) {}

func (r *EventReporter) publish(current int64) {
	percent := 0
	if r.total > 0 {
		percent = int(float64(current) / float64(r.total) * 100)
	}
	r.bus.Publish(&events.UploadEvent{
		BaseEvent:  events.NewBase(events.EventUploadProgress),
		TotalBytes: r.total,
		BytesSent:  current,
		Percent:    percent,
	})
}

// NopReporter discards everything, for silent background refreshes.
type NopReporter struct{}

func (NopReporter) Start(total int64, description string) {}
func (NopReporter) Update(current int64)                  {}
func (NopReporter) Finish()                               {}
func (NopReporter) Error(err error)                       {}
