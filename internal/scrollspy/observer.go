package scrollspy

import "sync"

// RootMargin grows (positive) or shrinks (negative) the observer root, as a
// fraction of the root height.
type RootMargin struct {
	Top    float64
	Bottom float64
}

// Apply returns root adjusted by the margin.
func (m RootMargin) Apply(root Rect) Rect {
	h := root.Height()
	return Rect{
		Top:    root.Top - m.Top*h,
		Bottom: root.Bottom + m.Bottom*h,
	}
}

func intersects(target, band Rect) bool {
	if target.Height() <= 0 {
		return target.Top >= band.Top && target.Top < band.Bottom
	}
	return target.Bottom > band.Top && target.Top < band.Bottom
}

// GeometryObserver computes intersections from element rects. Hosts call
// Check after every layout or scroll change; like the DOM observer it reports
// the initial state of each new target and afterwards only transitions.
type GeometryObserver struct {
	mu           sync.Mutex
	root         func() Rect
	margin       RootMargin
	callback     func([]Entry)
	order        []string
	targets      map[string]Anchor
	intersecting map[string]bool
	disconnected bool
}

func NewGeometryObserver(root func() Rect, opts ObserverOptions, callback func([]Entry)) *GeometryObserver {
	return &GeometryObserver{
		root:         root,
		margin:       opts.RootMargin,
		callback:     callback,
		targets:      make(map[string]Anchor),
		intersecting: make(map[string]bool),
	}
}

func (o *GeometryObserver) Observe(name string, anchor Anchor) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.disconnected || anchor == nil {
		return
	}
	if _, ok := o.targets[name]; !ok {
		o.order = append(o.order, name)
	}
	o.targets[name] = anchor
	delete(o.intersecting, name)
}

func (o *GeometryObserver) Unobserve(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.targets[name]; !ok {
		return
	}
	delete(o.targets, name)
	delete(o.intersecting, name)
	for i, n := range o.order {
		if n == name {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

func (o *GeometryObserver) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.disconnected = true
	o.targets = make(map[string]Anchor)
	o.intersecting = make(map[string]bool)
	o.order = nil
}

// Check recomputes every target and reports the changes.
func (o *GeometryObserver) Check() {
	o.mu.Lock()
	if o.disconnected || o.root == nil {
		o.mu.Unlock()
		return
	}

	band := o.margin.Apply(o.root())
	var entries []Entry
	for _, name := range o.order {
		rect := o.targets[name].Rect()
		now := intersects(rect, band)
		if prev, seen := o.intersecting[name]; seen && prev == now {
			continue
		}
		o.intersecting[name] = now
		entries = append(entries, Entry{
			Name:           name,
			IsIntersecting: now,
			Rect:           rect,
			RootRect:       band,
		})
	}
	callback := o.callback
	o.mu.Unlock()

	if len(entries) > 0 && callback != nil {
		callback(entries)
	}
}
