package listing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ASL66/mirad-upload/internal/api"
	"github.com/ASL66/mirad-upload/internal/events"
	"github.com/ASL66/mirad-upload/internal/models"
)

type fakeLister struct {
	mu    sync.Mutex
	files []models.RemoteFile
	err   error
	calls int
}

func (f *fakeLister) ListFiles(ctx context.Context) ([]models.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.files, nil
}

func (f *fakeLister) set(files []models.RemoteFile, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = files
	f.err = err
}

func TestRefresh_ReplacesSnapshot(t *testing.T) {
	lister := &fakeLister{files: []models.RemoteFile{{Name: "a.txt", Size: 1}}}
	store := NewStore(lister, nil, nil)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if files := store.Files(); len(files) != 1 || files[0].Name != "a.txt" {
		t.Errorf("files = %+v", files)
	}

	lister.set([]models.RemoteFile{{Name: "b.txt", Size: 2}, {Name: "c.txt", Size: 3}}, nil)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	files := store.Files()
	if len(files) != 2 || files[0].Name != "b.txt" {
		t.Errorf("snapshot not replaced: %+v", files)
	}
	if store.LastError() != nil {
		t.Errorf("LastError = %v", store.LastError())
	}
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	lister := &fakeLister{files: []models.RemoteFile{{Name: "a.txt"}}}
	store := NewStore(lister, nil, nil)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	lister.set(nil, boom)
	if err := store.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	if files := store.Files(); len(files) != 1 || files[0].Name != "a.txt" {
		t.Errorf("previous snapshot lost: %+v", files)
	}
	if !errors.Is(store.LastError(), boom) {
		t.Errorf("LastError = %v", store.LastError())
	}
}

func TestRefresh_SessionExpiredSignal(t *testing.T) {
	lister := &fakeLister{err: api.ErrSessionExpired}
	bus := events.NewEventBus(16)
	defer bus.Close()
	sessions := bus.Subscribe(events.EventSessionExpired)
	listErrors := bus.Subscribe(events.EventFileListError)

	store := NewStore(lister, bus, nil)
	if err := store.Refresh(context.Background()); !api.IsSessionExpired(err) {
		t.Fatalf("err = %v, want session expired", err)
	}

	select {
	case <-sessions:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no session-expired event")
	}

	// The 401 must not double-report as a generic listing error.
	select {
	case <-listErrors:
		t.Fatal("unexpected generic list error for a 401")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRefresh_PublishesChange(t *testing.T) {
	lister := &fakeLister{files: []models.RemoteFile{{Name: "a.txt"}}}
	bus := events.NewEventBus(16)
	defer bus.Close()
	changes := bus.Subscribe(events.EventFileListChanged)

	store := NewStore(lister, bus, nil)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-changes:
		change := ev.(*events.FileListEvent)
		if len(change.Files) != 1 || change.Files[0].Name != "a.txt" {
			t.Errorf("event files = %+v", change.Files)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no change event")
	}
}

func TestFiles_ReturnsCopy(t *testing.T) {
	lister := &fakeLister{files: []models.RemoteFile{{Name: "a.txt"}}}
	store := NewStore(lister, nil, nil)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := store.Files()
	got[0].Name = "mutated"

	if store.Files()[0].Name != "a.txt" {
		t.Error("caller mutation leaked into the snapshot")
	}
}
