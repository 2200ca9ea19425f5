package scrollspy

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storefront/catnav/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var railNames = []string{"fashion", "beauty", "digital", "living", "promotion"}

func railCategories() []*domain.Category {
	categories := make([]*domain.Category, 0, len(railNames))
	for _, name := range railNames {
		categories = append(categories, &domain.Category{NodeInfo: domain.NodeInfo{Name: name}})
	}
	return categories
}

type harness struct {
	ctrl      *Controller
	clock     *clock.Mock
	container *fakeContainer
	anchors   map[string]*fakeAnchor
	events    *fakeEvents
	observer  *recordingObserver
}

// newHarness lays out five 400px sections in a 600px pane that starts 100px
// below the page origin.
func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	h := &harness{
		clock: clock.NewMock(),
		container: &fakeContainer{
			scrollHeight: 2000,
			clientHeight: 600,
			rect:         Rect{Top: 100, Bottom: 700},
		},
		anchors:  make(map[string]*fakeAnchor),
		events:   &fakeEvents{},
		observer: &recordingObserver{observed: make(map[string]Anchor)},
	}
	opts.Clock = h.clock

	host := Host{
		Container: h.container,
		Viewport:  &fakeViewport{visual: 800, hasVisual: true, layout: 900},
		BottomNav: fixedSizer(60),
		Events:    h.events,
		NewObserver: func(ObserverOptions, func([]Entry)) Observer {
			return h.observer
		},
	}

	h.ctrl = New(railCategories(), host, opts)
	for i, name := range railNames {
		top := 100 + float64(i)*400
		h.anchors[name] = &fakeAnchor{rect: Rect{Top: top, Bottom: top + 40}}
		h.ctrl.RegisterAnchor(name, h.anchors[name])
	}
	h.ctrl.Mount()
	t.Cleanup(h.ctrl.Close)
	return h
}

func entry(name string, intersecting bool, top float64) Entry {
	return Entry{
		Name:           name,
		IsIntersecting: intersecting,
		Rect:           Rect{Top: top, Bottom: top + 40},
		RootRect:       Rect{Top: 100, Bottom: 280},
	}
}

func TestMountDefaults(t *testing.T) {
	h := newHarness(t, Options{})

	assert.Equal(t, "fashion", h.ctrl.ActiveCategory())
	assert.Equal(t, Idle, h.ctrl.Phase())
	assert.Equal(t, 740.0, h.ctrl.ViewportHeight())
	assert.Equal(t, railNames, h.ctrl.Rail())
	assert.Len(t, h.observer.observed, len(railNames))
	assert.Empty(t, h.container.scrollCalls())
}

func TestClickSetsActiveSynchronously(t *testing.T) {
	h := newHarness(t, Options{})
	h.container.setScrollTop(50)

	h.ctrl.Click("digital")

	assert.Equal(t, "digital", h.ctrl.ActiveCategory())
	assert.Equal(t, ProgrammaticScroll, h.ctrl.Phase())

	calls := h.container.scrollCalls()
	require.Len(t, calls, 1)
	// anchor top 900 - container top 100 + scrollTop 50
	assert.Equal(t, 850.0, calls[0].top)
	assert.Equal(t, BehaviorSmooth, calls[0].behavior)
}

func TestIntersectionIgnoredDuringSettleWindow(t *testing.T) {
	h := newHarness(t, Options{SettleDelay: time.Second})

	h.ctrl.Click("living")
	h.ctrl.HandleIntersection([]Entry{entry("beauty", true, 120)})
	assert.Equal(t, "living", h.ctrl.ActiveCategory())

	h.clock.Add(999 * time.Millisecond)
	h.ctrl.HandleIntersection([]Entry{entry("digital", true, 120)})
	assert.Equal(t, "living", h.ctrl.ActiveCategory())
	assert.Equal(t, ProgrammaticScroll, h.ctrl.Phase())

	h.clock.Add(time.Millisecond)
	require.Eventually(t, func() bool { return h.ctrl.Phase() == Idle }, time.Second, time.Millisecond)

	h.ctrl.HandleIntersection([]Entry{entry("digital", true, 120)})
	assert.Equal(t, "digital", h.ctrl.ActiveCategory())
}

func TestSecondClickRestartsSettleWindow(t *testing.T) {
	h := newHarness(t, Options{SettleDelay: time.Second})

	h.ctrl.Click("beauty")
	h.clock.Add(600 * time.Millisecond)
	h.ctrl.Click("living")
	h.clock.Add(600 * time.Millisecond)

	assert.Equal(t, ProgrammaticScroll, h.ctrl.Phase())
	h.ctrl.HandleIntersection([]Entry{entry("digital", true, 120)})
	assert.Equal(t, "living", h.ctrl.ActiveCategory())

	h.clock.Add(400 * time.Millisecond)
	require.Eventually(t, func() bool { return h.ctrl.Phase() == Idle }, time.Second, time.Millisecond)
}

func TestIntersectionPicksEntryNearestBandTop(t *testing.T) {
	h := newHarness(t, Options{})

	h.ctrl.HandleIntersection([]Entry{
		entry("fashion", false, -300),
		entry("digital", true, 240),
		entry("beauty", true, 110),
	})
	assert.Equal(t, "beauty", h.ctrl.ActiveCategory())

	// Leaving entries alone do not change the active category.
	h.ctrl.HandleIntersection([]Entry{entry("beauty", false, 20)})
	assert.Equal(t, "beauty", h.ctrl.ActiveCategory())

	// Unknown names are skipped.
	h.ctrl.HandleIntersection([]Entry{entry("garden", true, 100)})
	assert.Equal(t, "beauty", h.ctrl.ActiveCategory())
}

func TestScrollToTopForcesFirstCategory(t *testing.T) {
	h := newHarness(t, Options{})

	h.ctrl.HandleIntersection([]Entry{entry("digital", true, 120)})
	require.Equal(t, "digital", h.ctrl.ActiveCategory())

	h.container.setScrollTop(4)
	h.events.fireScroll()

	assert.Equal(t, "fashion", h.ctrl.ActiveCategory())
}

func TestScrollToBottomForcesLastCategory(t *testing.T) {
	h := newHarness(t, Options{})

	h.container.setScrollTop(1395) // 1395 + 600 >= 2000 - 10
	h.ctrl.HandleScroll()

	assert.Equal(t, "promotion", h.ctrl.ActiveCategory())
}

func TestEdgeChecksAreThrottled(t *testing.T) {
	h := newHarness(t, Options{ThrottleInterval: 100 * time.Millisecond})

	h.container.setScrollTop(500)
	h.ctrl.HandleScroll()
	h.ctrl.HandleIntersection([]Entry{entry("digital", true, 120)})

	h.container.setScrollTop(0)
	h.ctrl.HandleScroll()
	h.ctrl.HandleScroll()
	assert.Equal(t, "digital", h.ctrl.ActiveCategory())

	h.clock.Add(100 * time.Millisecond)
	require.Eventually(t, func() bool { return h.ctrl.ActiveCategory() == "fashion" }, time.Second, time.Millisecond)
}

func TestEdgeChecksSuppressedDuringProgrammaticScroll(t *testing.T) {
	h := newHarness(t, Options{})

	h.ctrl.Click("living")
	h.container.setScrollTop(0)
	h.ctrl.HandleScroll()

	assert.Equal(t, "living", h.ctrl.ActiveCategory())
}

func TestClickWithoutAnchorIsSkipped(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.UnregisterAnchor("digital")
	assert.NotContains(t, h.observer.observed, "digital")

	h.ctrl.Click("digital")
	h.ctrl.Click("garden")

	assert.Equal(t, "fashion", h.ctrl.ActiveCategory())
	assert.Equal(t, Idle, h.ctrl.Phase())
	assert.Empty(t, h.container.scrollCalls())
}

func TestRegisterIgnoresNilAndUnknown(t *testing.T) {
	h := newHarness(t, Options{})
	h.ctrl.UnregisterAnchor("beauty")

	h.ctrl.RegisterAnchor("beauty", nil)
	h.ctrl.RegisterAnchor("garden", &fakeAnchor{})

	assert.NotContains(t, h.observer.observed, "beauty")
	assert.NotContains(t, h.observer.observed, "garden")
}

func TestResizeRecomputesViewportHeight(t *testing.T) {
	viewport := &fakeViewport{visual: 800, hasVisual: true, layout: 900}
	events := &fakeEvents{}
	ctrl := New(railCategories(), Host{
		Viewport:  viewport,
		BottomNav: fixedSizer(60),
		Events:    events,
	}, Options{Clock: clock.NewMock()})
	defer ctrl.Close()

	ctrl.Mount()
	assert.Equal(t, 740.0, ctrl.ViewportHeight())

	viewport.visual = 500
	events.fireResize()
	assert.Equal(t, 440.0, ctrl.ViewportHeight())

	viewport.hasVisual = false
	events.fireResize()
	assert.Equal(t, 840.0, ctrl.ViewportHeight())
}

func TestInitialCategoryScrollsInstantly(t *testing.T) {
	h := newHarness(t, Options{InitialCategory: "living"})

	assert.Equal(t, "living", h.ctrl.ActiveCategory())
	calls := h.container.scrollCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 1200.0, calls[0].top)
	assert.Equal(t, BehaviorInstant, calls[0].behavior)
}

func TestSubscribersSeeChanges(t *testing.T) {
	h := newHarness(t, Options{})

	var mu sync.Mutex
	var seen []string
	cancel := h.ctrl.Subscribe(func(active string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, active)
	})

	h.ctrl.Click("beauty")
	h.ctrl.Click("beauty")
	h.clock.Add(time.Second)
	require.Eventually(t, func() bool { return h.ctrl.Phase() == Idle }, time.Second, time.Millisecond)
	h.ctrl.HandleIntersection([]Entry{entry("digital", true, 120)})

	cancel()
	h.ctrl.HandleIntersection([]Entry{entry("living", true, 120)})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"beauty", "digital"}, seen)
}

func TestCloseTearsDown(t *testing.T) {
	h := newHarness(t, Options{})

	h.ctrl.Click("beauty")
	h.ctrl.Close()

	assert.True(t, h.observer.disconnected)
	assert.Equal(t, 2, h.events.cancelled)

	// The cancelled settle timer must not flip the phase after close.
	h.clock.Add(5 * time.Second)
	assert.Equal(t, ProgrammaticScroll, h.ctrl.Phase())

	h.ctrl.HandleIntersection([]Entry{entry("digital", true, 120)})
	h.ctrl.Click("living")
	h.ctrl.HandleScroll()
	assert.Equal(t, "beauty", h.ctrl.ActiveCategory())

	h.ctrl.Close()
}

func TestEmptyRail(t *testing.T) {
	ctrl := New(nil, Host{Container: &fakeContainer{}}, Options{Clock: clock.NewMock()})
	defer ctrl.Close()

	ctrl.Mount()
	ctrl.HandleScroll()
	ctrl.Click("fashion")

	assert.Equal(t, "", ctrl.ActiveCategory())
	assert.Equal(t, 0.0, ctrl.ViewportHeight())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "programmatic-scroll", ProgrammaticScroll.String())
	assert.Equal(t, "unknown", Phase(7).String())
}
