package deletion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ASL66/mirad-upload/internal/events"
)

type fakeDeleter struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeDeleter) Delete(ctx context.Context, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filename)
	return f.err
}

func (f *fakeDeleter) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls++
	return nil
}

func TestConfirm_NothingPending(t *testing.T) {
	deleter := &fakeDeleter{}
	c := NewCoordinator(deleter, nil, nil, nil)

	if err := c.Confirm(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("err = %v, want ErrNothingPending", err)
	}
	if len(deleter.deleted()) != 0 {
		t.Error("no delete call may happen without a request")
	}
}

func TestCancel_NoNetworkCall(t *testing.T) {
	deleter := &fakeDeleter{}
	c := NewCoordinator(deleter, nil, nil, nil)

	c.RequestDelete("doomed.txt")
	c.Cancel()

	if len(deleter.deleted()) != 0 {
		t.Error("cancel must not issue a delete")
	}
	if _, has := c.Pending(); has {
		t.Error("pending record must clear on cancel")
	}
	// Confirm after cancel finds nothing.
	if err := c.Confirm(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Errorf("err = %v", err)
	}
}

func TestConfirm_DeletesExactlyOnce(t *testing.T) {
	deleter := &fakeDeleter{}
	store := &fakeRefresher{}
	c := NewCoordinator(deleter, store, nil, nil)

	c.RequestDelete("old.log")
	if err := c.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if got := deleter.deleted(); len(got) != 1 || got[0] != "old.log" {
		t.Errorf("deleted = %v, want exactly [old.log]", got)
	}
	if store.calls != 1 {
		t.Errorf("refresh calls = %d, want 1", store.calls)
	}

	// A second confirm without a new request is a no-op.
	if err := c.Confirm(context.Background()); !errors.Is(err, ErrNothingPending) {
		t.Errorf("err = %v", err)
	}
	if len(deleter.deleted()) != 1 {
		t.Error("delete fired twice for one confirmation")
	}
}

func TestRequestDelete_ReplacesPending(t *testing.T) {
	deleter := &fakeDeleter{}
	c := NewCoordinator(deleter, nil, nil, nil)

	c.RequestDelete("first.txt")
	c.RequestDelete("second.txt")
	if err := c.Confirm(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := deleter.deleted(); len(got) != 1 || got[0] != "second.txt" {
		t.Errorf("deleted = %v, want [second.txt]", got)
	}
}

func TestConfirm_FailureClearsPendingAndSkipsRefresh(t *testing.T) {
	deleter := &fakeDeleter{err: errors.New("locked")}
	store := &fakeRefresher{}
	bus := events.NewEventBus(16)
	defer bus.Close()
	failures := bus.Subscribe(events.EventDeleteFailed)

	c := NewCoordinator(deleter, store, bus, nil)
	c.RequestDelete("stuck.txt")

	if err := c.Confirm(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if store.calls != 0 {
		t.Error("no refresh after a failed delete")
	}
	if _, has := c.Pending(); has {
		t.Error("pending must clear even on failure")
	}

	select {
	case ev := <-failures:
		if ev.(*events.DeleteEvent).Filename != "stuck.txt" {
			t.Errorf("event filename = %q", ev.(*events.DeleteEvent).Filename)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no failure event")
	}
}
