// Package listing holds the authoritative snapshot of remote files.
package listing

import (
	"context"
	"sync"

	"github.com/ASL66/mirad-upload/internal/api"
	"github.com/ASL66/mirad-upload/internal/events"
	"github.com/ASL66/mirad-upload/internal/logging"
	"github.com/ASL66/mirad-upload/internal/models"
)

// Lister is the slice of the API client the store needs.
type Lister interface {
	ListFiles(ctx context.Context) ([]models.RemoteFile, error)
}

// Store fetches and holds the remote file listing. The snapshot is
// replaced wholesale on every refresh; consumers never observe a
// half-updated list. The store performs no sorting, filtering or
// pagination: the listing is exposed exactly as the server returned it.
type Store struct {
	client Lister
	bus    *events.EventBus
	log    *logging.Logger

	mu      sync.RWMutex
	files   []models.RemoteFile
	loading bool
	lastErr error
}

// NewStore creates an empty store. bus and log may be nil.
func NewStore(client Lister, bus *events.EventBus, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		client: client,
		bus:    bus,
		log:    log,
		files:  make([]models.RemoteFile, 0),
	}
}

// Files returns a copy of the current snapshot.
func (s *Store) Files() []models.RemoteFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.RemoteFile, len(s.files))
	copy(result, s.files)
	return result
}

// IsLoading reports whether a refresh is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the error of the most recent failed refresh, nil after
// a successful one.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Refresh re-fetches the listing and atomically replaces the snapshot.
// A 401 from the server surfaces as api.ErrSessionExpired (and a session
// event) so the caller can prompt re-authentication; every other failure
// is a generic listing error. On failure the previous snapshot is kept.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	s.bus.Publish(&events.FileListEvent{
		BaseEvent: events.NewBase(events.EventFileListLoading),
		Loading:   true,
	})

	files, err := s.client.ListFiles(ctx)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.lastErr = err
		s.mu.Unlock()

		if api.IsSessionExpired(err) {
			s.log.Warn().Msg("listing rejected: session expired")
			s.bus.Publish(&events.SessionEvent{
				BaseEvent: events.NewBase(events.EventSessionExpired),
			})
		} else {
			s.log.Error().Err(err).Msg("file list refresh failed")
			s.bus.Publish(&events.FileListEvent{
				BaseEvent: events.NewBase(events.EventFileListError),
				Err:       err,
			})
		}
		return err
	}

	if files == nil {
		files = make([]models.RemoteFile, 0)
	}

	s.mu.Lock()
	s.files = files
	s.loading = false
	s.lastErr = nil
	snapshot := make([]models.RemoteFile, len(files))
	copy(snapshot, files)
	s.mu.Unlock()

	s.bus.Publish(&events.FileListEvent{
		BaseEvent: events.NewBase(events.EventFileListChanged),
		Files:     snapshot,
	})
	return nil
}
