package menu

import (
	"math"
	"sync"

	"storefront/catnav/internal/scrollspy"
)

// Geometry is measured in terminal rows. The pane implements the scroll-spy
// container, viewport and event source over a line offset.
type pane struct {
	mu sync.Mutex

	top          int // first screen row of the pane
	height       int
	windowHeight int
	lines        int

	offset float64
	target float64
	moving bool

	nextID          int
	scrollListeners map[int]func()
	resizeListeners map[int]func()
	observers       []*scrollspy.GeometryObserver
}

func newPane(top, lines int) *pane {
	return &pane{
		top:             top,
		lines:           lines,
		scrollListeners: make(map[int]func()),
		resizeListeners: make(map[int]func()),
	}
}

func (p *pane) ScrollTop() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

func (p *pane) ScrollHeight() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return float64(p.lines)
}

func (p *pane) ClientHeight() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return float64(p.height)
}

func (p *pane) Rect() scrollspy.Rect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return scrollspy.Rect{Top: float64(p.top), Bottom: float64(p.top + p.height)}
}

func (p *pane) maxOffsetLocked() float64 {
	return math.Max(0, float64(p.lines-p.height))
}

// ScrollTo jumps immediately for instant scrolls. Smooth scrolls only set the
// target; step advances them frame by frame.
func (p *pane) ScrollTo(top float64, behavior scrollspy.Behavior) {
	p.mu.Lock()
	top = math.Round(math.Min(math.Max(0, top), p.maxOffsetLocked()))
	if behavior == scrollspy.BehaviorInstant {
		p.moving = false
		changed := p.offset != top
		p.offset = top
		p.mu.Unlock()
		if changed {
			p.scrolled()
		}
		return
	}
	p.target = top
	p.moving = p.offset != top
	p.mu.Unlock()
}

// ScrollBy is a user scroll. It cancels a running animation.
func (p *pane) ScrollBy(rows float64) {
	p.mu.Lock()
	p.moving = false
	next := math.Min(math.Max(0, p.offset+rows), p.maxOffsetLocked())
	changed := next != p.offset
	p.offset = next
	p.mu.Unlock()

	if changed {
		p.scrolled()
	}
}

// step advances a smooth scroll by one frame and reports whether more frames
// are needed.
func (p *pane) step() bool {
	p.mu.Lock()
	if !p.moving {
		p.mu.Unlock()
		return false
	}
	distance := p.target - p.offset
	delta := math.Ceil(math.Abs(distance) / 3)
	if distance < 0 {
		delta = -delta
	}
	p.offset += delta
	if p.offset == p.target {
		p.moving = false
	}
	moving := p.moving
	p.mu.Unlock()

	p.scrolled()
	return moving
}

func (p *pane) animating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.moving
}

// resize sets the window height and fires resize listeners.
func (p *pane) resize(windowHeight int) {
	p.mu.Lock()
	p.windowHeight = windowHeight
	listeners := collect(p.resizeListeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// setHeight applies the menu height and clamps the offset to it.
func (p *pane) setHeight(height int) {
	p.mu.Lock()
	p.height = max(0, height)
	clamped := math.Min(p.offset, p.maxOffsetLocked())
	changed := clamped != p.offset
	p.offset = clamped
	if p.moving {
		p.target = math.Min(p.target, p.maxOffsetLocked())
	}
	p.mu.Unlock()

	if changed {
		p.scrolled()
	} else {
		p.checkObservers()
	}
}

// scrolled runs observers before scroll listeners so that edge checks have
// the last word at the top and bottom of the pane.
func (p *pane) scrolled() {
	p.checkObservers()

	p.mu.Lock()
	listeners := collect(p.scrollListeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (p *pane) checkObservers() {
	p.mu.Lock()
	observers := append([]*scrollspy.GeometryObserver(nil), p.observers...)
	p.mu.Unlock()

	for _, o := range observers {
		o.Check()
	}
}

// VisualHeight is unavailable in a terminal.
func (p *pane) VisualHeight() (float64, bool) {
	return 0, false
}

func (p *pane) LayoutHeight() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return float64(p.windowHeight)
}

func (p *pane) OnScroll(fn func()) func() {
	return p.listen(p.scrollListeners, fn)
}

func (p *pane) OnResize(fn func()) func() {
	return p.listen(p.resizeListeners, fn)
}

func (p *pane) listen(set map[int]func(), fn func()) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	set[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(set, id)
	}
}

// newObserver is the scroll-spy observer factory. The first check runs on the
// next layout change, never inside Observe.
func (p *pane) newObserver(opts scrollspy.ObserverOptions, callback func([]scrollspy.Entry)) scrollspy.Observer {
	o := scrollspy.NewGeometryObserver(p.Rect, opts, callback)
	p.mu.Lock()
	p.observers = append(p.observers, o)
	p.mu.Unlock()
	return o
}

func (p *pane) anchor(line int) *sectionAnchor {
	return &sectionAnchor{pane: p, line: line}
}

func collect(set map[int]func()) []func() {
	out := make([]func(), 0, len(set))
	for _, fn := range set {
		out = append(out, fn)
	}
	return out
}

// sectionAnchor is the header row of a category section.
type sectionAnchor struct {
	pane *pane
	line int
}

func (a *sectionAnchor) Rect() scrollspy.Rect {
	a.pane.mu.Lock()
	defer a.pane.mu.Unlock()
	top := float64(a.pane.top+a.line) - a.pane.offset
	return scrollspy.Rect{Top: top, Bottom: top + 1}
}

// statusBar is the fixed bottom row.
type statusBar struct{}

func (statusBar) Height() float64 {
	return 1
}
