package scrollspy

import (
	"sync"
)

type scrollCall struct {
	top      float64
	behavior Behavior
}

type fakeContainer struct {
	mu           sync.Mutex
	scrollTop    float64
	scrollHeight float64
	clientHeight float64
	rect         Rect
	calls        []scrollCall
}

func (f *fakeContainer) ScrollTop() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrollTop
}

func (f *fakeContainer) ScrollHeight() float64 { return f.scrollHeight }
func (f *fakeContainer) ClientHeight() float64 { return f.clientHeight }
func (f *fakeContainer) Rect() Rect            { return f.rect }

func (f *fakeContainer) ScrollTo(top float64, behavior Behavior) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scrollCall{top: top, behavior: behavior})
}

func (f *fakeContainer) setScrollTop(top float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrollTop = top
}

func (f *fakeContainer) scrollCalls() []scrollCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scrollCall(nil), f.calls...)
}

type fakeAnchor struct {
	rect Rect
}

func (a *fakeAnchor) Rect() Rect { return a.rect }

type fakeViewport struct {
	visual    float64
	hasVisual bool
	layout    float64
}

func (v *fakeViewport) VisualHeight() (float64, bool) { return v.visual, v.hasVisual }
func (v *fakeViewport) LayoutHeight() float64         { return v.layout }

type fixedSizer float64

func (s fixedSizer) Height() float64 { return float64(s) }

type fakeEvents struct {
	mu        sync.Mutex
	scroll    []func()
	resize    []func()
	cancelled int
}

func (e *fakeEvents) OnScroll(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scroll = append(e.scroll, fn)
	return e.cancel
}

func (e *fakeEvents) OnResize(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resize = append(e.resize, fn)
	return e.cancel
}

func (e *fakeEvents) cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelled++
}

func (e *fakeEvents) fireResize() {
	e.mu.Lock()
	fns := append([]func(){}, e.resize...)
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (e *fakeEvents) fireScroll() {
	e.mu.Lock()
	fns := append([]func(){}, e.scroll...)
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type recordingObserver struct {
	mu           sync.Mutex
	observed     map[string]Anchor
	disconnected bool
}

func (o *recordingObserver) Observe(name string, anchor Anchor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed[name] = anchor
}

func (o *recordingObserver) Unobserve(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.observed, name)
}

func (o *recordingObserver) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disconnected = true
}
