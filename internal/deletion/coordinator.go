// Package deletion manages the confirm-then-delete two-step flow.
package deletion

import (
	"context"
	"errors"
	"sync"

	"github.com/ASL66/mirad-upload/internal/events"
	"github.com/ASL66/mirad-upload/internal/logging"
)

// ErrNothingPending is returned by Confirm when no deletion was requested.
var ErrNothingPending = errors.New("no deletion pending")

// Deleter is the slice of the API client the coordinator needs.
type Deleter interface {
	Delete(ctx context.Context, filename string) error
}

// Refresher re-fetches the listing after a successful deletion.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Coordinator holds at most one pending deletion. The destructive call is
// only ever issued from Confirm, for the exact filename recorded by
// RequestDelete; Cancel drops the request without any network activity.
// Once a decision is acted on, the pending record is cleared win or lose,
// so a retried delete always starts from a fresh confirmation.
type Coordinator struct {
	client Deleter
	store  Refresher
	bus    *events.EventBus
	log    *logging.Logger

	mu      sync.Mutex
	pending string
	has     bool
}

// NewCoordinator creates a coordinator with nothing pending. store, bus
// and log may be nil.
func NewCoordinator(client Deleter, store Refresher, bus *events.EventBus, log *logging.Logger) *Coordinator {
	if log == nil {
		log = logging.Nop()
	}
	return &Coordinator{
		client: client,
		store:  store,
		bus:    bus,
		log:    log,
	}
}

// Pending returns the filename awaiting confirmation, if any.
func (c *Coordinator) Pending() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending, c.has
}

// RequestDelete records filename as pending and surfaces the confirmation
// prompt. A second request replaces the first.
func (c *Coordinator) RequestDelete(filename string) {
	c.mu.Lock()
	c.pending = filename
	c.has = true
	c.mu.Unlock()

	c.bus.Publish(&events.DeleteEvent{
		BaseEvent: events.NewBase(events.EventDeleteRequested),
		Filename:  filename,
	})
}

// Cancel clears the pending deletion without any network call.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	filename := c.pending
	had := c.has
	c.pending = ""
	c.has = false
	c.mu.Unlock()

	if had {
		c.bus.Publish(&events.DeleteEvent{
			BaseEvent: events.NewBase(events.EventDeleteCancelled),
			Filename:  filename,
		})
	}
}

// Confirm issues exactly one delete call for the pending filename. The
// pending record is cleared whether the call succeeds or fails; a success
// also triggers a listing refresh.
func (c *Coordinator) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if !c.has {
		c.mu.Unlock()
		return ErrNothingPending
	}
	filename := c.pending
	c.pending = ""
	c.has = false
	c.mu.Unlock()

	if err := c.client.Delete(ctx, filename); err != nil {
		c.log.Error().Err(err).Str("file", filename).Msg("delete failed")
		c.bus.Publish(&events.DeleteEvent{
			BaseEvent: events.NewBase(events.EventDeleteFailed),
			Filename:  filename,
			Err:       err,
		})
		return err
	}

	c.log.Info().Str("file", filename).Msg("file deleted")
	c.bus.Publish(&events.DeleteEvent{
		BaseEvent: events.NewBase(events.EventDeleteCompleted),
		Filename:  filename,
	})

	if c.store != nil {
		if err := c.store.Refresh(ctx); err != nil {
			c.log.Warn().Err(err).Msg("post-delete list refresh failed")
		}
	}
	return nil
}
