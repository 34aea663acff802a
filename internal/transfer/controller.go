// Package transfer owns the upload lifecycle: staging selected files,
// issuing the upload request, tracking aggregate byte progress and
// translating terminal states into observable outcomes.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ASL66/mirad-upload/internal/api"
	"github.com/ASL66/mirad-upload/internal/constants"
	"github.com/ASL66/mirad-upload/internal/events"
	"github.com/ASL66/mirad-upload/internal/logging"
	"github.com/ASL66/mirad-upload/internal/models"
)

// ErrNoFilesSelected is the local validation failure for submitting an
// empty selection. It never reaches the network.
var ErrNoFilesSelected = errors.New("no files selected")

// State is the upload lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateStaged    State = "staged"
	StateInFlight  State = "in_flight"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// StagedFile is one locally chosen file held before submission. No bytes
// move until Submit.
type StagedFile struct {
	Name    string
	Size    int64
	Content []byte
}

// Uploader is the slice of the API client the controller needs.
type Uploader interface {
	Upload(ctx context.Context, files []api.UploadFile, progress api.ProgressFunc) (*models.StatusResponse, error)
}

// Refresher re-fetches the remote listing after a successful mutation.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Controller owns the SelectedFileSet and the upload state machine.
// The staged set is exclusively owned: callers hand files in via Select and
// observe outcomes via State/Percent and the event bus.
type Controller struct {
	client Uploader
	store  Refresher
	bus    *events.EventBus
	log    *logging.Logger

	settleDelay time.Duration

	mu      sync.Mutex
	state   State
	staged  []StagedFile
	percent int
	reason  string
	cancel  context.CancelFunc
	settle  *time.Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithSettleDelay overrides the pause between a terminal state and the
// reset to idle. Tests shorten it.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.settleDelay = d
	}
}

// NewController creates an idle controller. store may be nil when no
// listing refresh should follow a successful upload; bus and log may be
// nil for unobserved use.
func NewController(client Uploader, store Refresher, bus *events.EventBus, log *logging.Logger, opts ...Option) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	c := &Controller{
		client:      client,
		store:       store,
		bus:         bus,
		log:         log,
		settleDelay: constants.UploadSettleDelay,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Percent returns the aggregate progress, 0-100.
func (c *Controller) Percent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.percent
}

// FailureReason returns the display reason of the last failure, if any.
func (c *Controller) FailureReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// StagedCount returns how many files are currently staged.
func (c *Controller) StagedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.staged)
}

// Select replaces the staged set with files. An empty selection is a
// non-failing no-op that preserves the prior selection, so a cancelled
// file dialog does not clear a previous valid choice.
func (c *Controller) Select(files []StagedFile) {
	if len(files) == 0 {
		return
	}

	c.mu.Lock()
	c.staged = make([]StagedFile, len(files))
	copy(c.staged, files)
	c.state = StateStaged
	c.percent = 0
	c.reason = ""
	count := len(c.staged)
	total := c.totalBytesLocked()
	c.mu.Unlock()

	c.bus.Publish(&events.UploadEvent{
		BaseEvent:  events.NewBase(events.EventUploadStaged),
		FileCount:  count,
		TotalBytes: total,
	})
}

// Reset clears the staged set and returns to idle without any network
// activity. In-flight uploads are unaffected.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateInFlight {
		return
	}
	c.staged = nil
	c.state = StateIdle
	c.percent = 0
	c.reason = ""
}

// Summary describes the staged set for display: a single file shows its
// name; up to three files show joined names; more show a count with a
// truncated name preview.
func (c *Controller) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch n := len(c.staged); {
	case n == 0:
		return ""
	case n == 1:
		return c.staged[0].Name
	default:
		names := make([]string, n)
		for i, f := range c.staged {
			names[i] = f.Name
		}
		joined := strings.Join(names, ", ")
		if n > 3 {
			if len(joined) > 50 {
				joined = joined[:50]
			}
			return fmt.Sprintf("%d files: %s...", n, joined)
		}
		return joined
	}
}

// Submit uploads every staged file in one multipart request. It blocks
// until the transfer reaches a terminal state, then schedules the settle
// reset back to idle. Submitting an empty selection fails locally with
// ErrNoFilesSelected and issues no request.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if len(c.staged) == 0 {
		c.mu.Unlock()
		return ErrNoFilesSelected
	}
	if c.state == StateInFlight {
		c.mu.Unlock()
		return errors.New("upload already in flight")
	}
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}

	files := make([]api.UploadFile, len(c.staged))
	var total int64
	for i, f := range c.staged {
		files[i] = api.UploadFile{Name: f.Name, Content: f.Content}
		total += f.Size
	}
	count := len(files)

	uploadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = StateInFlight
	c.percent = 0
	c.reason = ""
	c.mu.Unlock()
	defer cancel()

	c.bus.Publish(&events.UploadEvent{
		BaseEvent:  events.NewBase(events.EventUploadStarted),
		FileCount:  count,
		TotalBytes: total,
	})

	status, err := c.client.Upload(uploadCtx, files, func(sent, totalBytes int64) {
		c.reportProgress(sent, totalBytes, count, total)
	})
	if err != nil {
		c.fail(err, count, total)
		return err
	}

	// The transfer may have completed faster than any progress callback
	// granularity; the indicator still has to show 100% before settling.
	c.reportProgress(total, total, count, total)
	c.succeed(count, total, status)
	return nil
}

// Abort cancels an in-flight upload. Equivalent to a transport error: the
// controller fails with a cancellation reason and settles back to idle.
func (c *Controller) Abort() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Controller) reportProgress(sent, totalBytes int64, count int, total int64) {
	percent := 100
	if totalBytes > 0 {
		percent = int(math.Round(float64(sent) / float64(totalBytes) * 100))
	}
	if percent > 100 {
		percent = 100
	}

	c.mu.Lock()
	if c.state != StateInFlight || percent <= c.percent {
		// Progress never moves backwards.
		c.mu.Unlock()
		return
	}
	c.percent = percent
	c.mu.Unlock()

	c.bus.Publish(&events.UploadEvent{
		BaseEvent:  events.NewBase(events.EventUploadProgress),
		FileCount:  count,
		TotalBytes: total,
		BytesSent:  sent,
		Percent:    percent,
	})
}

func (c *Controller) succeed(count int, total int64, status *models.StatusResponse) {
	c.mu.Lock()
	c.state = StateSucceeded
	c.percent = 100
	c.staged = nil
	c.cancel = nil
	c.mu.Unlock()

	if status != nil && status.Message != "" {
		c.log.Info().Str("message", status.Message).Msg("upload accepted")
	} else {
		c.log.Info().Int("files", count).Int64("bytes", total).Msg("upload accepted")
	}

	c.bus.Publish(&events.UploadEvent{
		BaseEvent:  events.NewBase(events.EventUploadSucceeded),
		FileCount:  count,
		TotalBytes: total,
		Percent:    100,
	})

	if c.store != nil {
		// The refresh reflects the mutation on a consistent server; with an
		// eventually consistent one a stale read is accepted, not retried.
		if err := c.store.Refresh(context.Background()); err != nil {
			c.log.Warn().Err(err).Msg("post-upload list refresh failed")
		}
	}

	c.scheduleSettle()
}

func (c *Controller) fail(err error, count int, total int64) {
	reason := displayReason(err)

	c.mu.Lock()
	c.state = StateFailed
	c.reason = reason
	c.cancel = nil
	// The staged set survives failure so the user can resubmit as-is.
	c.mu.Unlock()

	c.log.Error().Err(err).Msg("upload failed")

	c.bus.Publish(&events.UploadEvent{
		BaseEvent:  events.NewBase(events.EventUploadFailed),
		FileCount:  count,
		TotalBytes: total,
		Reason:     reason,
	})

	c.scheduleSettle()
}

// scheduleSettle arms the settle timer: after the delay the indicator
// resets and the controller returns to idle (or back to staged when a
// failed submission left files staged).
func (c *Controller) scheduleSettle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settle != nil {
		c.settle.Stop()
	}
	c.settle = time.AfterFunc(c.settleDelay, func() {
		c.mu.Lock()
		if c.state != StateSucceeded && c.state != StateFailed {
			c.mu.Unlock()
			return
		}
		if len(c.staged) > 0 {
			c.state = StateStaged
		} else {
			c.state = StateIdle
		}
		c.percent = 0
		c.settle = nil
		c.mu.Unlock()

		c.bus.Publish(&events.UploadEvent{
			BaseEvent: events.NewBase(events.EventUploadSettled),
		})
	})
}

func (c *Controller) totalBytesLocked() int64 {
	var total int64
	for _, f := range c.staged {
		total += f.Size
	}
	return total
}

// displayReason maps an upload error to the message the user sees: the
// server-supplied message when one was parsed, else a generic transport
// description.
func displayReason(err error) string {
	var serverErr *api.ServerError
	if errors.As(err, &serverErr) {
		if serverErr.Message != "" {
			return serverErr.Message
		}
		return fmt.Sprintf("upload failed: status %d", serverErr.StatusCode)
	}
	if errors.Is(err, context.Canceled) {
		return "upload cancelled"
	}
	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Error()
	}
	return err.Error()
}
