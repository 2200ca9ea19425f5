// Package scrollspy keeps the category rail of the two-pane menu in sync
// with the scrollable content pane.
//
// Scrolling the content updates the active rail entry through intersection
// tracking and edge snapping; clicking a rail entry scrolls the content. While
// a click-driven scroll animates, the controller is in ProgrammaticScroll and
// ignores intersection and edge updates until a settle timer returns it to
// Idle.
package scrollspy

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"storefront/catnav/internal/domain"
)

type Phase int

const (
	Idle Phase = iota
	ProgrammaticScroll
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case ProgrammaticScroll:
		return "programmatic-scroll"
	default:
		return "unknown"
	}
}

const (
	DefaultSettleDelay      = time.Second
	DefaultThrottleInterval = 100 * time.Millisecond
	DefaultEdgeThreshold    = 10.0
)

// DefaultRootMargin limits the active band to the top 30% of the pane.
var DefaultRootMargin = RootMargin{Top: 0, Bottom: -0.7}

type Options struct {
	// SettleDelay bounds the duration of a smooth scroll animation.
	SettleDelay time.Duration
	// ThrottleInterval is the minimum gap between edge checks.
	ThrottleInterval time.Duration
	// EdgeThreshold is the distance in pixels from the top or bottom of the
	// pane within which the first or last category is forced active.
	EdgeThreshold float64
	RootMargin    RootMargin
	// InitialCategory is active on mount; defaults to the first category.
	InitialCategory string

	Clock  clock.Clock
	Logger *log.Entry
}

func DefaultOptions() Options {
	return Options{
		SettleDelay:      DefaultSettleDelay,
		ThrottleInterval: DefaultThrottleInterval,
		EdgeThreshold:    DefaultEdgeThreshold,
		RootMargin:       DefaultRootMargin,
	}
}

// state is owned by the controller and only mutated under its lock.
type state struct {
	active         string
	phase          Phase
	viewportHeight float64
	anchors        map[string]Anchor
}

type Controller struct {
	mu sync.Mutex

	host  Host
	opts  Options
	clock clock.Clock
	log   *log.Entry
	rail  []string

	state    state
	observer Observer
	throttle *throttle

	settle    *clock.Timer
	settleGen uint64

	listeners   []func()
	subscribers map[int]func(string)
	nextSub     int

	mounted bool
	closed  bool
}

// New creates a controller for the rail built from categories. Zero option
// values take their defaults.
func New(categories []*domain.Category, host Host, opts Options) *Controller {
	defaults := DefaultOptions()
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = defaults.SettleDelay
	}
	if opts.ThrottleInterval <= 0 {
		opts.ThrottleInterval = defaults.ThrottleInterval
	}
	if opts.EdgeThreshold <= 0 {
		opts.EdgeThreshold = defaults.EdgeThreshold
	}
	if opts.RootMargin == (RootMargin{}) {
		opts.RootMargin = defaults.RootMargin
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.WithField("component", "scrollspy")
	}

	rail := make([]string, 0, len(categories))
	for _, category := range categories {
		if category != nil {
			rail = append(rail, category.Name)
		}
	}

	c := &Controller{
		host:        host,
		opts:        opts,
		clock:       opts.Clock,
		log:         opts.Logger,
		rail:        rail,
		subscribers: make(map[int]func(string)),
		state: state{
			phase:   Idle,
			anchors: make(map[string]Anchor),
		},
	}

	if slices.Contains(rail, opts.InitialCategory) {
		c.state.active = opts.InitialCategory
	} else if len(rail) > 0 {
		c.state.active = rail[0]
	}

	c.throttle = newThrottle(c.clock, opts.ThrottleInterval, c.checkEdges)
	return c
}

// Mount starts observing registered anchors, subscribes to scroll and resize
// events and sizes the menu. A non-first initial category is scrolled into
// view without animation.
func (c *Controller) Mount() {
	c.mu.Lock()
	if c.mounted || c.closed {
		c.mu.Unlock()
		return
	}
	c.mounted = true

	if c.host.NewObserver != nil {
		c.observer = c.host.NewObserver(ObserverOptions{RootMargin: c.opts.RootMargin}, c.HandleIntersection)
		for _, name := range c.rail {
			if anchor, ok := c.state.anchors[name]; ok {
				c.observer.Observe(name, anchor)
			}
		}
	}
	c.state.viewportHeight = c.computeViewportHeight()
	initial := c.state.active
	jump := len(c.rail) > 0 && initial != c.rail[0]
	c.mu.Unlock()

	if c.host.Events != nil {
		cancelScroll := c.host.Events.OnScroll(c.HandleScroll)
		cancelResize := c.host.Events.OnResize(c.HandleResize)
		c.mu.Lock()
		c.listeners = append(c.listeners, cancelScroll, cancelResize)
		c.mu.Unlock()
	}

	if jump {
		c.scrollTo(initial, BehaviorInstant)
	}
}

// RegisterAnchor records the section anchor of a rail category. Nil anchors
// and names outside the rail are ignored.
func (c *Controller) RegisterAnchor(name string, anchor Anchor) {
	if anchor == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !slices.Contains(c.rail, name) {
		return
	}
	c.state.anchors[name] = anchor
	if c.observer != nil {
		c.observer.Observe(name, anchor)
	}
}

func (c *Controller) UnregisterAnchor(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.state.anchors[name]; !ok {
		return
	}
	delete(c.state.anchors, name)
	if c.observer != nil {
		c.observer.Unobserve(name)
	}
}

// Click handles a rail selection: the entry becomes active at once and the
// pane scrolls smoothly to its section.
func (c *Controller) Click(name string) {
	c.scrollTo(name, BehaviorSmooth)
}

func (c *Controller) scrollTo(name string, behavior Behavior) {
	c.mu.Lock()
	container := c.host.Container
	anchor, ok := c.state.anchors[name]
	if c.closed || !ok || container == nil {
		c.mu.Unlock()
		return
	}

	// Suppression starts before the scroll is issued so that intersection
	// callbacks caused by the scroll are ignored.
	c.enterProgrammaticScrollLocked()
	notify := c.setActiveLocked(name)
	c.mu.Unlock()

	notify()

	target := anchor.Rect().Top - container.Rect().Top + container.ScrollTop()
	container.ScrollTo(math.Max(0, target), behavior)
}

func (c *Controller) enterProgrammaticScrollLocked() {
	if c.settle != nil {
		c.settle.Stop()
	}
	c.settleGen++
	gen := c.settleGen
	c.state.phase = ProgrammaticScroll
	c.settle = c.clock.AfterFunc(c.opts.SettleDelay, func() {
		c.settleDone(gen)
	})
	c.log.Debugf("entered %s", ProgrammaticScroll)
}

func (c *Controller) settleDone(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A newer click or Close owns the timer now.
	if c.closed || gen != c.settleGen {
		return
	}
	c.settle = nil
	c.state.phase = Idle
	c.log.Debugf("scroll settled, back to %s", Idle)
}

// HandleIntersection is the observer callback. Entries are ignored during a
// programmatic scroll; otherwise the intersecting entry nearest the top of
// the active band becomes active.
func (c *Controller) HandleIntersection(entries []Entry) {
	c.mu.Lock()
	if c.closed || c.state.phase != Idle {
		c.mu.Unlock()
		return
	}

	best := ""
	bestDistance := math.Inf(1)
	for _, entry := range entries {
		if !entry.IsIntersecting || !slices.Contains(c.rail, entry.Name) {
			continue
		}
		distance := math.Abs(entry.Rect.Top - entry.RootRect.Top)
		if distance < bestDistance {
			best, bestDistance = entry.Name, distance
		}
	}

	notify := func() {}
	if best != "" {
		notify = c.setActiveLocked(best)
	}
	c.mu.Unlock()

	notify()
}

// HandleScroll is the scroll listener; edge checks are throttled.
func (c *Controller) HandleScroll() {
	c.throttle.Call()
}

// checkEdges forces the first or last category active when the pane is
// scrolled to its top or bottom edge.
func (c *Controller) checkEdges() {
	c.mu.Lock()
	container := c.host.Container
	if c.closed || c.state.phase != Idle || container == nil || len(c.rail) == 0 {
		c.mu.Unlock()
		return
	}

	top := container.ScrollTop()
	threshold := c.opts.EdgeThreshold

	notify := func() {}
	switch {
	case top <= threshold:
		notify = c.setActiveLocked(c.rail[0])
	case top+container.ClientHeight() >= container.ScrollHeight()-threshold:
		notify = c.setActiveLocked(c.rail[len(c.rail)-1])
	}
	c.mu.Unlock()

	notify()
}

// HandleResize recomputes the menu height.
func (c *Controller) HandleResize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.state.viewportHeight = c.computeViewportHeight()
}

func (c *Controller) computeViewportHeight() float64 {
	if c.host.Viewport == nil {
		return 0
	}
	height, ok := c.host.Viewport.VisualHeight()
	if !ok {
		height = c.host.Viewport.LayoutHeight()
	}
	if c.host.BottomNav != nil {
		height -= c.host.BottomNav.Height()
	}
	return math.Max(0, height)
}

// setActiveLocked updates the active category and returns the notification
// to run once the lock is released.
func (c *Controller) setActiveLocked(name string) func() {
	if c.state.active == name {
		return func() {}
	}
	c.state.active = name

	subscribers := make([]func(string), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	return func() {
		for _, fn := range subscribers {
			fn(name)
		}
	}
}

func (c *Controller) ActiveCategory() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.active
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.phase
}

func (c *Controller) ViewportHeight() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.viewportHeight
}

// Rail returns the category names in rail order.
func (c *Controller) Rail() []string {
	return slices.Clone(c.rail)
}

// Subscribe registers fn to receive every change of the active category.
func (c *Controller) Subscribe(fn func(active string)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Close tears the controller down: the settle timer and pending edge checks
// are cancelled, the observer disconnected and all listeners removed.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}
	c.settleGen++
	observer := c.observer
	c.observer = nil
	listeners := c.listeners
	c.listeners = nil
	c.subscribers = make(map[int]func(string))
	c.mu.Unlock()

	c.throttle.Stop()
	if observer != nil {
		observer.Disconnect()
	}
	for _, cancel := range listeners {
		if cancel != nil {
			cancel()
		}
	}
}
