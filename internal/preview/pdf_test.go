package preview

import (
	"context"
	"io"
	"math"
	"sync"
	"testing"
	"time"
)

// fakePDFDoc renders instantly unless gate is set, in which case renders
// block until the gate closes.
type fakePDFDoc struct {
	pages int
	gate  chan struct{}

	mu      sync.Mutex
	renders []renderCall
}

type renderCall struct {
	page  int
	scale float64
}

func (d *fakePDFDoc) NumPages() int { return d.pages }

func (d *fakePDFDoc) RenderPage(ctx context.Context, page int, scale float64) ([]byte, error) {
	if d.gate != nil {
		<-d.gate
	}
	d.mu.Lock()
	d.renders = append(d.renders, renderCall{page, scale})
	d.mu.Unlock()
	return []byte{0xFF}, nil
}

type fakePDFLoader struct{ doc *fakePDFDoc }

func (l *fakePDFLoader) Load(ctx context.Context, r io.Reader) (PDFDocument, error) {
	return l.doc, nil
}

func openPDFSession(t *testing.T, doc *fakePDFDoc) (*Engine, *PDFSession) {
	t.Helper()
	dl := &fakeDownloader{content: map[string]string{"doc.pdf": "%PDF-1.4"}}
	e := NewEngine(dl, nil, nil, WithPDFLoader(&fakePDFLoader{doc: doc}))

	sess := e.Open(context.Background(), "doc.pdf")
	if sess.View.Kind != ViewPDF {
		t.Fatalf("kind = %s, want pdf", sess.View.Kind)
	}
	if sess.PDF == nil {
		t.Fatal("no PDF sub-session")
	}
	return e, sess.PDF
}

func collectRenders(p *PDFSession) <-chan RenderedPage {
	ch := make(chan RenderedPage, 64)
	p.SetSink(func(r RenderedPage) { ch <- r })
	return ch
}

func TestPDF_InitialState(t *testing.T) {
	_, pdf := openPDFSession(t, &fakePDFDoc{pages: 5})

	if pdf.CurrentPage() != 1 {
		t.Errorf("page = %d, want 1", pdf.CurrentPage())
	}
	if pdf.TotalPages() != 5 {
		t.Errorf("total = %d, want 5", pdf.TotalPages())
	}
	if pdf.Scale() != 1.0 {
		t.Errorf("scale = %v, want 1.0", pdf.Scale())
	}
}

func TestPDF_Paging(t *testing.T) {
	_, pdf := openPDFSession(t, &fakePDFDoc{pages: 2})
	ctx := context.Background()

	pdf.NextPage(ctx)
	if pdf.CurrentPage() != 2 {
		t.Errorf("page = %d, want 2", pdf.CurrentPage())
	}

	// Last page: no wraparound.
	pdf.NextPage(ctx)
	if pdf.CurrentPage() != 2 {
		t.Errorf("page advanced past the end: %d", pdf.CurrentPage())
	}

	pdf.PrevPage(ctx)
	if pdf.CurrentPage() != 1 {
		t.Errorf("page = %d, want 1", pdf.CurrentPage())
	}

	// First page: no wraparound.
	pdf.PrevPage(ctx)
	if pdf.CurrentPage() != 1 {
		t.Errorf("page moved before the start: %d", pdf.CurrentPage())
	}
}

func TestPDF_ZoomBounds(t *testing.T) {
	_, pdf := openPDFSession(t, &fakePDFDoc{pages: 1})
	ctx := context.Background()

	// 15 steps up from 1.0 would be 2.5; extra steps must be ignored.
	for i := 0; i < 25; i++ {
		pdf.ZoomIn(ctx)
	}
	if got := pdf.Scale(); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("scale = %v, want cap at 2.5", got)
	}

	for i := 0; i < 50; i++ {
		pdf.ZoomOut(ctx)
	}
	if got := pdf.Scale(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("scale = %v, want floor at 0.5", got)
	}
}

func TestPDF_ZoomStepsAreExact(t *testing.T) {
	_, pdf := openPDFSession(t, &fakePDFDoc{pages: 1})
	ctx := context.Background()

	pdf.ZoomIn(ctx)
	pdf.ZoomIn(ctx)
	pdf.ZoomIn(ctx)
	// Three 0.1 steps land on exactly 1.3, not 1.3000000000000003.
	if pdf.Scale() != 1.3 {
		t.Errorf("scale = %v, want exactly 1.3", pdf.Scale())
	}
}

func TestPDF_RenderDelivery(t *testing.T) {
	doc := &fakePDFDoc{pages: 3}
	_, pdf := openPDFSession(t, doc)
	renders := collectRenders(pdf)

	pdf.NextPage(context.Background())

	select {
	case r := <-renders:
		if r.Page != 2 || r.Total != 3 {
			t.Errorf("render = %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("render never delivered")
	}
}

func TestPDF_StaleRenderSuppressed(t *testing.T) {
	gate := make(chan struct{})
	doc := &fakePDFDoc{pages: 5, gate: gate}
	_, pdf := openPDFSession(t, doc)
	renders := collectRenders(pdf)

	ctx := context.Background()
	pdf.NextPage(ctx) // render of page 2 blocks on the gate
	pdf.NextPage(ctx) // supersedes it with page 3

	close(gate)

	// Only the latest request may reach the sink; the page-2 render (and
	// the initial page-1 render) are stale.
	var got []int
	deadline := time.After(300 * time.Millisecond)
collect:
	for {
		select {
		case r := <-renders:
			got = append(got, r.Page)
		case <-deadline:
			break collect
		}
	}

	if len(got) != 1 || got[0] != 3 {
		t.Errorf("delivered pages %v, want exactly [3]", got)
	}
}

func TestPDF_NoRenderAfterClose(t *testing.T) {
	gate := make(chan struct{})
	doc := &fakePDFDoc{pages: 2, gate: gate}
	engine, pdf := openPDFSession(t, doc)
	renders := collectRenders(pdf)

	pdf.NextPage(context.Background())
	engine.Close()
	close(gate)

	select {
	case r := <-renders:
		t.Fatalf("render %+v delivered after close", r)
	case <-time.After(100 * time.Millisecond):
	}

	// Controls on a closed session are inert.
	pdf.NextPage(context.Background())
	pdf.ZoomIn(context.Background())
	if pdf.CurrentPage() != 2 || pdf.Scale() != 1.0 {
		t.Error("closed session state must not move")
	}
}
