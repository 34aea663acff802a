package preview

import (
	"context"
	"io"
	"math"
	"sync"

	"github.com/ASL66/mirad-upload/internal/constants"
	"github.com/ASL66/mirad-upload/internal/events"
)

// PDFLoader parses a PDF document from its raw bytes. The rendering
// backend is a collaborator injected by the embedding surface.
type PDFLoader interface {
	Load(ctx context.Context, r io.Reader) (PDFDocument, error)
}

// PDFDocument is one parsed document.
type PDFDocument interface {
	// NumPages returns the page count from the document metadata.
	NumPages() int
	// RenderPage rasterizes one 1-indexed page at the given scale.
	RenderPage(ctx context.Context, page int, scale float64) ([]byte, error)
}

// RenderedPage is one completed page render.
type RenderedPage struct {
	Filename string
	Page     int
	Total    int
	Scale    float64
	Data     []byte
}

// RenderSink receives completed renders. Only the latest requested render
// of a live session is ever delivered.
type RenderSink func(RenderedPage)

// PDFSession is the paging/zoom sub-state machine of one PDF preview.
//
// currentPage is 1-indexed and starts at 1; scale starts at 1.0 and moves
// in 0.1 steps within [0.5, 2.5]. Page moves at the boundaries and zooms
// beyond the bounds are silently ignored. Every navigation or zoom change
// re-renders the current page; renders are asynchronous and strictly
// latest-wins — a superseded or post-close render is dropped without
// touching the display.
type PDFSession struct {
	engine    *Engine
	sessionID uint64
	filename  string
	doc       PDFDocument

	mu          sync.Mutex
	currentPage int
	totalPages  int
	scale       float64
	renderSeq   uint64
	closed      bool
	sink        RenderSink
}

func newPDFSession(engine *Engine, sessionID uint64, filename string, doc PDFDocument) *PDFSession {
	total := doc.NumPages()
	if total < 1 {
		total = 1
	}
	return &PDFSession{
		engine:      engine,
		sessionID:   sessionID,
		filename:    filename,
		doc:         doc,
		currentPage: 1,
		totalPages:  total,
		scale:       constants.PDFInitialScale,
	}
}

// SetSink installs the render receiver.
func (p *PDFSession) SetSink(sink RenderSink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = sink
}

// CurrentPage returns the 1-indexed current page.
func (p *PDFSession) CurrentPage() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPage
}

// TotalPages returns the page count.
func (p *PDFSession) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalPages
}

// Scale returns the current zoom scale.
func (p *PDFSession) Scale() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scale
}

// NextPage advances one page. A no-op at the last page; no wraparound.
func (p *PDFSession) NextPage(ctx context.Context) {
	p.mu.Lock()
	if p.closed || p.currentPage >= p.totalPages {
		p.mu.Unlock()
		return
	}
	p.currentPage++
	p.mu.Unlock()
	p.requestRender(ctx)
}

// PrevPage goes back one page. A no-op at the first page.
func (p *PDFSession) PrevPage(ctx context.Context) {
	p.mu.Lock()
	if p.closed || p.currentPage <= 1 {
		p.mu.Unlock()
		return
	}
	p.currentPage--
	p.mu.Unlock()
	p.requestRender(ctx)
}

// ZoomIn raises the scale one step. Ignored beyond the upper bound.
func (p *PDFSession) ZoomIn(ctx context.Context) {
	p.adjustScale(ctx, constants.PDFScaleStep)
}

// ZoomOut lowers the scale one step. Ignored beyond the lower bound.
func (p *PDFSession) ZoomOut(ctx context.Context) {
	p.adjustScale(ctx, -constants.PDFScaleStep)
}

func (p *PDFSession) adjustScale(ctx context.Context, step float64) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	// Snap to one decimal so repeated steps cannot drift past the bounds
	// through float error.
	next := math.Round((p.scale+step)*10) / 10
	if next < constants.PDFMinScale-1e-9 || next > constants.PDFMaxScale+1e-9 {
		p.mu.Unlock()
		return
	}
	p.scale = next
	p.mu.Unlock()
	p.requestRender(ctx)
}

// requestRender starts an asynchronous render of the current page at the
// current scale, superseding any in-flight render of this session.
func (p *PDFSession) requestRender(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.renderSeq++
	seq := p.renderSeq
	page := p.currentPage
	total := p.totalPages
	scale := p.scale
	p.mu.Unlock()

	go func() {
		data, err := p.doc.RenderPage(ctx, page, scale)
		if err != nil {
			p.engine.log.Warn().Err(err).Str("file", p.filename).Int("page", page).Msg("pdf page render failed")
			return
		}

		p.mu.Lock()
		stale := p.closed || seq != p.renderSeq
		sink := p.sink
		p.mu.Unlock()

		// Latest wins: a render superseded by later navigation, or one
		// landing after close, must not touch the display.
		if stale || !p.engine.isCurrent(p.sessionID) {
			return
		}

		if sink != nil {
			sink(RenderedPage{
				Filename: p.filename,
				Page:     page,
				Total:    total,
				Scale:    scale,
				Data:     data,
			})
		}

		p.engine.bus.Publish(&events.PDFRenderEvent{
			BaseEvent: events.NewBase(events.EventPDFPageRendered),
			Filename:  p.filename,
			Page:      page,
			Total:     total,
			Scale:     scale,
		})
	}()
}

// close invalidates the session; late renders are absorbed silently.
func (p *PDFSession) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
