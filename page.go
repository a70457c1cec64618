package folio

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hajimehoshi/ebiten/v2"
)

// Page is the top-level object that owns the element trees, viewport, input
// state, observers, tweens, and the frame scheduler.
//
// Content under Root scrolls with the viewport and lives in page space. Nodes
// under Overlay are fixed chrome positioned in screen space (navbar, modals,
// toasts, floating buttons).
type Page struct {
	root      *Node
	overlay   *Node
	viewport  *Viewport
	scheduler *Scheduler
	debug     bool

	observers []*Observer
	tweens    []*TweenGroup
	layers    handlerList[func(*ebiten.Image)]

	scrollLocks map[string]struct{}
	lastScrollY float64
	lastUpdate  time.Time

	// Input state
	handlers handlerRegistry
	pointer  pointerState
	focus    *Node
	hitBuf   []*Node
	keyBuf   []ebiten.Key
	runeBuf  []rune

	injectQueue []syntheticEvent
	testRunner  *TestRunner

	screenshotQueue []string
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	// ClearColor fills the screen before layers are drawn.
	ClearColor Color

	// ReadDeviceInput enables polling of the real mouse, wheel, and keyboard.
	// Run turns it on; pages driven by tests only see injected events.
	ReadDeviceInput bool

	frameStats debugStats
}

// PageOption configures a Page at construction.
type PageOption func(*Page)

// WithClock sets the page's time source. Tests pass a *clock.Mock.
func WithClock(clk clock.Clock) PageOption {
	return func(p *Page) {
		p.scheduler = NewScheduler(clk)
	}
}

// WithViewportSize sets the initial window size.
func WithViewportSize(w, h float64) PageOption {
	return func(p *Page) {
		p.viewport.Width = w
		p.viewport.Height = h
	}
}

const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 800
)

// NewPage creates a page with empty content and overlay trees.
func NewPage(opts ...PageOption) *Page {
	root := NewBox("body")
	overlay := NewBox("overlay")
	p := &Page{
		root:          root,
		overlay:       overlay,
		viewport:      newViewport(defaultViewportWidth, defaultViewportHeight),
		scrollLocks:   make(map[string]struct{}),
		ScreenshotDir: "screenshots",
		ClearColor:    ColorHex(0x0a0f14),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.scheduler == nil {
		p.scheduler = NewScheduler(nil)
	}
	root.Width = p.viewport.Width
	overlay.Width = p.viewport.Width
	overlay.Height = p.viewport.Height
	return p
}

// Root returns the scrolling content tree (the document body).
func (p *Page) Root() *Node { return p.root }

// Overlay returns the fixed-position tree drawn above content.
func (p *Page) Overlay() *Node { return p.overlay }

// Viewport returns the page's viewport.
func (p *Page) Viewport() *Viewport { return p.viewport }

// Scheduler returns the page's frame scheduler.
func (p *Page) Scheduler() *Scheduler { return p.scheduler }

// Now returns the current time of the page clock.
func (p *Page) Now() time.Time { return p.scheduler.Now() }

// Find returns the first node named id in the overlay or content tree.
func (p *Page) Find(id string) *Node {
	if n := p.overlay.FindByID(id); n != nil {
		return n
	}
	return p.root.FindByID(id)
}

// FindByClass returns every node in both trees carrying any of classes,
// overlay first.
func (p *Page) FindByClass(classes ...string) []*Node {
	out := p.overlay.FindByClass(classes...)
	return append(out, p.root.FindByClass(classes...)...)
}

// FirstByClass returns the first node carrying class in either tree.
func (p *Page) FirstByClass(class string) *Node {
	if n := p.overlay.FirstByClass(class); n != nil {
		return n
	}
	return p.root.FirstByClass(class)
}

// --- Scroll lock ---

// LockScroll prevents wheel scrolling while any owner holds a lock.
func (p *Page) LockScroll(owner string) {
	p.scrollLocks[owner] = struct{}{}
}

// UnlockScroll releases owner's lock. Other owners keep the page locked.
func (p *Page) UnlockScroll(owner string) {
	delete(p.scrollLocks, owner)
}

// ScrollLocked reports whether any owner holds a scroll lock.
func (p *Page) ScrollLocked() bool {
	return len(p.scrollLocks) > 0
}

// ScrollLockedBy reports whether owner holds a scroll lock.
func (p *Page) ScrollLockedBy(owner string) bool {
	_, ok := p.scrollLocks[owner]
	return ok
}

// --- Animation ---

// Animate registers a tween group to be advanced every frame until done.
func (p *Page) Animate(g *TweenGroup) *TweenGroup {
	p.tweens = append(p.tweens, g)
	return g
}

// Animating returns the number of active tween groups.
func (p *Page) Animating() int {
	return len(p.tweens)
}

func (p *Page) updateTweens(dt float32) {
	if len(p.tweens) == 0 {
		return
	}
	// Groups added during this pass start on the next frame.
	n := len(p.tweens)
	for i := 0; i < n; i++ {
		p.tweens[i].Update(dt)
	}
	active := p.tweens[:0]
	for _, g := range p.tweens {
		if !g.Done {
			active = append(active, g)
		}
	}
	for i := len(active); i < len(p.tweens); i++ {
		p.tweens[i] = nil
	}
	p.tweens = active
}

// --- Layers ---

// AddLayer registers a draw function that renders behind page content, in
// registration order.
func (p *Page) AddLayer(draw func(screen *ebiten.Image)) CallbackHandle {
	id := p.handlers.next()
	p.layers.add(id, draw)
	return CallbackHandle{id: id, page: p, event: eventLayer}
}

// --- Frame ---

// Update processes input, advances scrolling, timers, loops and tweens, and
// delivers observer entries. Call once per tick.
func (p *Page) Update() {
	var t0 time.Time
	if p.debug {
		t0 = time.Now()
	}

	now := p.scheduler.Now()
	var dt float32
	if !p.lastUpdate.IsZero() {
		dt = float32(now.Sub(p.lastUpdate).Seconds())
	}
	p.lastUpdate = now

	if p.testRunner != nil {
		p.testRunner.step(p)
	}

	p.layoutContent()
	p.refreshTransforms()
	p.processInput()

	p.viewport.update(dt)
	if y := p.viewport.ScrollY; y != p.lastScrollY {
		p.lastScrollY = y
		p.fireScroll(y)
	}

	p.scheduler.Step()
	p.updateTweens(dt)

	p.refreshTransforms()
	p.updateObservers()

	if p.debug {
		p.frameStats.updateTime = time.Since(t0)
	}
}

// Resize updates the window size. Called from the game's Layout.
func (p *Page) Resize(w, h float64) {
	if w == p.viewport.Width && h == p.viewport.Height {
		return
	}
	p.viewport.resize(w, h)
	p.root.SetSize(w, p.root.Height)
	p.overlay.SetSize(w, h)
	p.fireResize(w, h)
}

// layoutContent sets the scrollable content height from the bottom edge of
// the body's children.
func (p *Page) layoutContent() {
	bottom := 0.0
	for _, c := range p.root.children {
		if !c.Visible {
			continue
		}
		if b := c.Y + c.Height; b > bottom {
			bottom = b
		}
	}
	if bottom != p.root.Height {
		p.root.SetSize(p.root.Width, bottom)
	}
	p.viewport.ContentHeight = bottom
}

func (p *Page) refreshTransforms() {
	updateWorldTransform(p.root, identityTransform, 1.0, false)
	updateWorldTransform(p.overlay, identityTransform, 1.0, false)
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are logged.
func (p *Page) SetDebugMode(enabled bool) {
	p.debug = enabled
	globalDebug = enabled
}

// DebugMode reports whether debug mode is on.
func (p *Page) DebugMode() bool {
	return p.debug
}

// globalDebug mirrors the most recently set Page debug flag so that node
// operations (which lack a Page pointer) can check it cheaply.
var globalDebug bool
