// Package preview renders one remote file inline, selecting a strategy by
// file category. At most one preview session is live at a time; opening a
// new one tears down the previous, and teardown pauses any playing media.
// A preview failure always degrades to an inline error with a download
// fallback; it never blocks downloading the underlying file.
package preview

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ASL66/mirad-upload/internal/api"
	"github.com/ASL66/mirad-upload/internal/constants"
	"github.com/ASL66/mirad-upload/internal/events"
	"github.com/ASL66/mirad-upload/internal/filetype"
	"github.com/ASL66/mirad-upload/internal/logging"
)

// ViewKind selects how the preview surface renders a session.
type ViewKind string

const (
	// ViewImage renders the download URL directly as an image source.
	ViewImage ViewKind = "image"
	// ViewText shows a bounded text prefix.
	ViewText ViewKind = "text"
	// ViewPDF hands control to the session's PDF sub-state machine.
	ViewPDF ViewKind = "pdf"
	// ViewMedia attaches a playable element with a resolved MIME type.
	ViewMedia ViewKind = "media"
	// ViewDownloadOnly offers nothing inline but a download action.
	ViewDownloadOnly ViewKind = "download_only"
	// ViewDegraded is an inline error plus the download fallback.
	ViewDegraded ViewKind = "degraded"
)

// View is what the preview surface shows for a session. Every kind keeps
// URL populated so the download affordance is always available.
type View struct {
	Kind      ViewKind
	URL       string
	MIME      string
	Text      string
	Truncated bool
	Err       error
}

// MediaPlayer is the playback handle the UI hands the engine for media
// previews. Teardown calls Pause exactly once; a hidden element left
// playing after the surface closes is a defect.
type MediaPlayer interface {
	Pause()
}

// PlayerFactory builds the playback handle for a media view.
type PlayerFactory func(url, mimeType string) MediaPlayer

// Downloader is the slice of the API client the engine needs.
type Downloader interface {
	Download(ctx context.Context, filename string) (*api.DownloadResult, error)
	DownloadURL(filename string) string
}

// Session is one open inline viewer for one file. It exists only while
// the preview surface is open and is destroyed on close.
type Session struct {
	id       uint64
	Filename string
	Category filetype.Category
	View     View

	// PDF is the paging/zoom sub-state machine, set only for ViewPDF.
	PDF *PDFSession

	player MediaPlayer
}

// Engine selects and drives preview strategies. It exclusively owns the
// single live session.
type Engine struct {
	client Downloader

	pdfLoader PDFLoader
	players   PlayerFactory
	bus       *events.EventBus
	log       *logging.Logger
	textLimit int

	nextID atomic.Uint64

	mu      sync.Mutex
	current *Session
}

// Option configures an Engine.
type Option func(*Engine)

// WithPDFLoader installs the PDF rendering backend. Without one, PDF
// previews degrade to download-only.
func WithPDFLoader(loader PDFLoader) Option {
	return func(e *Engine) { e.pdfLoader = loader }
}

// WithPlayerFactory installs the media playback hook.
func WithPlayerFactory(factory PlayerFactory) Option {
	return func(e *Engine) { e.players = factory }
}

// WithTextLimit overrides the text preview bound. Tests shrink it.
func WithTextLimit(limit int) Option {
	return func(e *Engine) { e.textLimit = limit }
}

// NewEngine creates an engine with no open session. bus and log may be
// nil.
func NewEngine(client Downloader, bus *events.EventBus, log *logging.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	e := &Engine{
		client:    client,
		bus:       bus,
		log:       log,
		textLimit: constants.TextPreviewLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current returns the live session, if any.
func (e *Engine) Current() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Open starts a preview session for filename, tearing down any previous
// session first. Open never fails: strategies that cannot render degrade
// to a view with an inline error and the download fallback.
func (e *Engine) Open(ctx context.Context, filename string) *Session {
	e.Close()

	category := filetype.Resolve(filename)
	session := &Session{
		id:       e.nextID.Add(1),
		Filename: filename,
		Category: category,
	}

	url := e.client.DownloadURL(filename)

	switch category {
	case filetype.CategoryImage:
		session.View = View{Kind: ViewImage, URL: url}

	case filetype.CategoryText:
		session.View = e.textView(ctx, filename, url)

	case filetype.CategoryPDF:
		e.openPDF(ctx, session, filename, url)

	case filetype.CategoryVideo, filetype.CategoryAudio:
		mimeType := filetype.MIMEType(filename)
		session.View = View{Kind: ViewMedia, URL: url, MIME: mimeType}
		if e.players != nil {
			session.player = e.players(url, mimeType)
		}

	default:
		// word, excel, powerpoint, archive, other: download only.
		session.View = View{Kind: ViewDownloadOnly, URL: url}
	}

	e.mu.Lock()
	e.current = session
	e.mu.Unlock()

	if session.View.Kind == ViewDegraded {
		e.bus.Publish(&events.PreviewEvent{
			BaseEvent: events.NewBase(events.EventPreviewDegraded),
			Filename:  filename,
			Category:  string(category),
			Err:       session.View.Err,
		})
	} else {
		e.bus.Publish(&events.PreviewEvent{
			BaseEvent: events.NewBase(events.EventPreviewOpened),
			Filename:  filename,
			Category:  string(category),
		})
	}

	return session
}

// Close tears down the live session: playback is paused and any
// late-arriving PDF render for the session is suppressed. Closing with no
// session open is a no-op.
func (e *Engine) Close() {
	e.mu.Lock()
	session := e.current
	e.current = nil
	e.mu.Unlock()

	if session == nil {
		return
	}

	if session.player != nil {
		session.player.Pause()
		session.player = nil
	}
	if session.PDF != nil {
		session.PDF.close()
	}

	e.bus.Publish(&events.PreviewEvent{
		BaseEvent: events.NewBase(events.EventPreviewClosed),
		Filename:  session.Filename,
		Category:  string(session.Category),
	})
}

// isCurrent reports whether a session is still the live one. Stale PDF
// renders check this before touching any state.
func (e *Engine) isCurrent(id uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil && e.current.id == id
}

// textView fetches the raw content and decodes a bounded prefix. The
// preview is deliberately lossy for large files: at most textLimit
// characters are shown, with a truncation marker.
func (e *Engine) textView(ctx context.Context, filename, url string) View {
	result, err := e.client.Download(ctx, filename)
	if err != nil {
		e.log.Warn().Err(err).Str("file", filename).Msg("text preview fetch failed")
		return View{Kind: ViewDegraded, URL: url, Err: err}
	}
	defer result.Body.Close()

	// Reading past the limit is wasted latency; cap the read at the worst
	// case byte width of the character bound, plus one byte to detect
	// that the file goes on.
	limited := io.LimitReader(result.Body, int64(e.textLimit)*4+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		e.log.Warn().Err(err).Str("file", filename).Msg("text preview read failed")
		return View{Kind: ViewDegraded, URL: url, Err: err}
	}

	text := strings.ToValidUTF8(string(raw), string('�'))
	runes := []rune(text)
	truncated := len(runes) > e.textLimit
	if truncated {
		text = string(runes[:e.textLimit]) + constants.TruncationMarker
	}

	return View{Kind: ViewText, URL: url, Text: text, Truncated: truncated}
}

// openPDF loads the document and starts the paging/zoom sub-state machine
// at page 1, scale 1.0.
func (e *Engine) openPDF(ctx context.Context, session *Session, filename, url string) {
	if e.pdfLoader == nil {
		session.View = View{Kind: ViewDownloadOnly, URL: url}
		return
	}

	result, err := e.client.Download(ctx, filename)
	if err != nil {
		e.log.Warn().Err(err).Str("file", filename).Msg("pdf fetch failed")
		session.View = View{Kind: ViewDegraded, URL: url, Err: err}
		return
	}
	defer result.Body.Close()

	doc, err := e.pdfLoader.Load(ctx, result.Body)
	if err != nil {
		e.log.Warn().Err(err).Str("file", filename).Msg("pdf load failed")
		session.View = View{Kind: ViewDegraded, URL: url, Err: err}
		return
	}

	session.View = View{Kind: ViewPDF, URL: url}
	session.PDF = newPDFSession(e, session.id, filename, doc)
	session.PDF.requestRender(ctx)
}
