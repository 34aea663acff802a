// Package events provides the event bus the core components publish their
// state changes on. Observers (CLI output, a future GUI surface) subscribe
// per event type; publishing never blocks the publisher.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ASL66/mirad-upload/internal/constants"
	"github.com/ASL66/mirad-upload/internal/models"
)

// EventType defines the types of events that can be emitted.
type EventType string

const (
	// Upload lifecycle
	EventUploadStaged    EventType = "upload_staged"    // Files selected and staged
	EventUploadStarted   EventType = "upload_started"   // Request in flight
	EventUploadProgress  EventType = "upload_progress"  // Aggregate percent update
	EventUploadSucceeded EventType = "upload_succeeded" // Server accepted the batch
	EventUploadFailed    EventType = "upload_failed"    // Transport error or rejection
	EventUploadSettled   EventType = "upload_settled"   // Indicator reset to idle

	// File list
	EventFileListLoading EventType = "file_list_loading"
	EventFileListChanged EventType = "file_list_changed"
	EventFileListError   EventType = "file_list_error"

	// Deletion
	EventDeleteRequested EventType = "delete_requested"
	EventDeleteCompleted EventType = "delete_completed"
	EventDeleteFailed    EventType = "delete_failed"
	EventDeleteCancelled EventType = "delete_cancelled"

	// Preview
	EventPreviewOpened   EventType = "preview_opened"
	EventPreviewClosed   EventType = "preview_closed"
	EventPreviewDegraded EventType = "preview_degraded"
	EventPDFPageRendered EventType = "pdf_page_rendered"

	// Session
	EventSessionExpired EventType = "session_expired"
	EventLoggedIn       EventType = "logged_in"
	EventLoggedOut      EventType = "logged_out"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// NewBase stamps a BaseEvent for the given type.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// UploadEvent covers the whole upload lifecycle. Percent is the aggregate
// 0-100 progress across the staged batch; Reason is set on failure.
type UploadEvent struct {
	BaseEvent
	FileCount  int
	TotalBytes int64
	BytesSent  int64
	Percent    int
	Reason     string
}

// FileListEvent is published when the listing snapshot changes, starts
// loading or fails to load.
type FileListEvent struct {
	BaseEvent
	Files   []models.RemoteFile
	Loading bool
	Err     error
}

// DeleteEvent tracks the confirm-then-delete flow for one filename.
type DeleteEvent struct {
	BaseEvent
	Filename string
	Err      error
}

// PreviewEvent is published when a preview session opens, closes or
// degrades to a download-only view.
type PreviewEvent struct {
	BaseEvent
	Filename string
	Category string
	Err      error
}

// PDFRenderEvent is published when a PDF page render lands. Stale renders
// (superseded request or closed session) are dropped and never published.
type PDFRenderEvent struct {
	BaseEvent
	Filename string
	Page     int
	Total    int
	Scale    float64
}

// SessionEvent covers login state transitions, including the 401-driven
// session-expired signal from the file list.
type SessionEvent struct {
	BaseEvent
	Username string
}

// EventBus is a thread-safe publish/subscribe hub with buffered,
// non-blocking delivery. Events for slow subscribers are dropped rather
// than stalling the publisher.
type EventBus struct {
	subscribers map[EventType][]chan Event
	all         []chan Event
	bufferSize  int
	closed      bool
	mu          sync.RWMutex

	droppedEvents atomic.Int64
}

// NewEventBus creates an event bus. bufferSize <= 0 selects the default.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to every event.
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking. A nil bus is
// a no-op so components can run unobserved (tests, one-shot CLI calls).
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// Unsubscribe removes a subscription channel from a specific event type.
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// DroppedEventCount returns how many events were dropped on full buffers.
func (eb *EventBus) DroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
