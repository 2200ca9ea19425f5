package scrollspy

// Rect is the vertical extent of an element in viewport coordinates.
type Rect struct {
	Top    float64
	Bottom float64
}

func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Behavior selects how a container scrolls to a new offset.
type Behavior int

const (
	BehaviorSmooth Behavior = iota
	BehaviorInstant
)

// Container is the independently scrollable content pane.
type Container interface {
	ScrollTop() float64
	ScrollHeight() float64
	ClientHeight() float64
	Rect() Rect
	// ScrollTo starts scrolling to top. Smooth scrolls complete
	// asynchronously and their end is not reported.
	ScrollTo(top float64, behavior Behavior)
}

// Anchor is the first content item of a category section.
type Anchor interface {
	Rect() Rect
}

// Viewport reports the available screen height.
type Viewport interface {
	// VisualHeight returns the visual viewport height; ok is false when the
	// platform does not expose one.
	VisualHeight() (height float64, ok bool)
	LayoutHeight() float64
}

// Sizer is a fixed element whose height is subtracted from the menu height.
type Sizer interface {
	Height() float64
}

// Events delivers scroll events of the container and viewport resizes. The
// returned functions remove the listener.
type Events interface {
	OnScroll(fn func()) (cancel func())
	OnResize(fn func()) (cancel func())
}

// Entry is one intersection change reported by an Observer.
type Entry struct {
	Name           string
	IsIntersecting bool
	Rect           Rect
	RootRect       Rect
}

// Observer watches anchors for intersection with the margin-adjusted root.
// Implementations must not invoke the callback from within Observe.
type Observer interface {
	Observe(name string, anchor Anchor)
	Unobserve(name string)
	Disconnect()
}

// ObserverOptions configures a new Observer.
type ObserverOptions struct {
	RootMargin RootMargin
}

type ObserverFactory func(opts ObserverOptions, callback func([]Entry)) Observer

// Host bundles the collaborators supplied by the view hosting the menu. Any
// field may be nil; the controller skips work that needs a missing one.
type Host struct {
	Container   Container
	Viewport    Viewport
	BottomNav   Sizer
	Events      Events
	NewObserver ObserverFactory
}
