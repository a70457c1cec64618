package folio

import (
	"fmt"
	"time"

	"github.com/tanema/gween/ease"
)

// NavConfig tunes the scroll and navigation controller.
type NavConfig struct {
	// Section highlighting.
	SectionThreshold float64       `koanf:"section_threshold" yaml:"section_threshold"`
	SectionMargin    float64       `koanf:"section_margin" yaml:"section_margin"`
	AnchorDuration   time.Duration `koanf:"anchor_duration" yaml:"anchor_duration"`

	// ScrolledOffset is the scroll position past which the navbar gets the
	// "scrolled" class.
	ScrolledOffset float64 `koanf:"scrolled_offset" yaml:"scrolled_offset"`

	// Reveal-on-scroll.
	RevealClasses   []string      `koanf:"reveal_classes" yaml:"reveal_classes"`
	RevealThreshold float64       `koanf:"reveal_threshold" yaml:"reveal_threshold"`
	RevealMargin    float64       `koanf:"reveal_margin" yaml:"reveal_margin"` // bottom edge of the root
	RevealOffset    float64       `koanf:"reveal_offset" yaml:"reveal_offset"`
	RevealDuration  time.Duration `koanf:"reveal_duration" yaml:"reveal_duration"`
	RevealStagger   time.Duration `koanf:"reveal_stagger" yaml:"reveal_stagger"`

	CounterDuration  time.Duration `koanf:"counter_duration" yaml:"counter_duration"`
	CounterThreshold float64       `koanf:"counter_threshold" yaml:"counter_threshold"`

	ParallaxFactor float64 `koanf:"parallax_factor" yaml:"parallax_factor"`

	BackToTopOffset   float64       `koanf:"back_to_top_offset" yaml:"back_to_top_offset"`
	BackToTopDebounce time.Duration `koanf:"back_to_top_debounce" yaml:"back_to_top_debounce"`

	ToastDuration time.Duration `koanf:"toast_duration" yaml:"toast_duration"`
	ToastFade     time.Duration `koanf:"toast_fade" yaml:"toast_fade"`
}

// DefaultNavConfig returns the controller defaults.
func DefaultNavConfig() NavConfig {
	return NavConfig{
		SectionThreshold: 0.3,
		SectionMargin:    -100,
		AnchorDuration:   800 * time.Millisecond,
		ScrolledOffset:   50,
		RevealClasses: []string{
			"stat-card", "project-card", "skill-category", "timeline-item",
			"achievement-card", "education-card", "contact-card",
		},
		RevealThreshold:   0.1,
		RevealMargin:      -50,
		RevealOffset:      30,
		RevealDuration:    600 * time.Millisecond,
		RevealStagger:     100 * time.Millisecond,
		CounterDuration:   2 * time.Second,
		CounterThreshold:  0.5,
		ParallaxFactor:    0.5,
		BackToTopOffset:   500,
		BackToTopDebounce: 10 * time.Millisecond,
		ToastDuration:     3 * time.Second,
		ToastFade:         300 * time.Millisecond,
	}
}

// Validate checks thresholds and durations.
func (c NavConfig) Validate() error {
	for name, v := range map[string]float64{
		"section_threshold": c.SectionThreshold,
		"reveal_threshold":  c.RevealThreshold,
		"counter_threshold": c.CounterThreshold,
	} {
		if !validFraction(v) {
			return fmt.Errorf("%s must be within [0, 1], got %g", name, v)
		}
	}
	for name, d := range map[string]time.Duration{
		"anchor_duration":      c.AnchorDuration,
		"reveal_duration":      c.RevealDuration,
		"reveal_stagger":       c.RevealStagger,
		"counter_duration":     c.CounterDuration,
		"back_to_top_debounce": c.BackToTopDebounce,
		"toast_duration":       c.ToastDuration,
		"toast_fade":           c.ToastFade,
	} {
		if err := nonNegative(name, d); err != nil {
			return err
		}
	}
	return nil
}

// seconds converts d to the float32 seconds gween works in.
func seconds(d time.Duration) float32 {
	return float32(d.Seconds())
}

// --- Menu ---

// MenuState is the mobile menu's open state.
type MenuState uint8

const (
	MenuClosed MenuState = iota
	MenuOpen
)

func (s MenuState) String() string {
	if s == MenuOpen {
		return "open"
	}
	return "closed"
}

const menuLockOwner = "menu"

// Menu is the collapsible navigation menu. Its state lives here; the
// "active" class on the toggle and the menu only mirrors it.
type Menu struct {
	page   *Page
	toggle *Node
	menu   *Node
	state  MenuState
	handle CallbackHandle

	// OnChange runs after every state transition.
	OnChange func(MenuState)
}

// NewMenu wires the first .nav-toggle and .nav-menu on the page. It returns
// nil when either is missing.
func NewMenu(p *Page) *Menu {
	toggle := p.FirstByClass("nav-toggle")
	menu := p.FirstByClass("nav-menu")
	if toggle == nil || menu == nil {
		return nil
	}
	m := &Menu{page: p, toggle: toggle, menu: menu}
	toggle.AddClickListener(func(ClickContext) { m.Toggle() })
	for _, link := range menu.FindByClass("nav-link") {
		link.AddClickListener(func(ClickContext) { m.Close() })
	}
	m.handle = p.OnClick(func(ctx ClickContext) {
		if m.state != MenuOpen {
			return
		}
		if m.menu.Contains(ctx.Node) || m.toggle.Contains(ctx.Node) {
			return
		}
		m.Close()
	})
	return m
}

// State returns the current menu state.
func (m *Menu) State() MenuState {
	return m.state
}

// Toggle opens a closed menu and closes an open one.
func (m *Menu) Toggle() {
	if m.state == MenuOpen {
		m.Close()
	} else {
		m.Open()
	}
}

// Open shows the menu and locks page scrolling.
func (m *Menu) Open() {
	m.set(MenuOpen)
}

// Close hides the menu and releases its scroll lock.
func (m *Menu) Close() {
	m.set(MenuClosed)
}

func (m *Menu) set(s MenuState) {
	if m.state == s {
		return
	}
	m.state = s
	open := s == MenuOpen
	m.toggle.ToggleClass("active", open)
	m.menu.ToggleClass("active", open)
	if open {
		m.page.LockScroll(menuLockOwner)
	} else {
		m.page.UnlockScroll(menuLockOwner)
	}
	if m.OnChange != nil {
		m.OnChange(s)
	}
}

// --- Section tracking ---

// SectionTracker highlights the nav link of the section in view.
type SectionTracker struct {
	links    []*Node
	observer *Observer
	active   string
}

// NewSectionTracker observes every section with an id and keeps the
// "active" class on the .nav-link whose href is "#id" of the last section
// to become visible.
func NewSectionTracker(p *Page, cfg NavConfig) *SectionTracker {
	t := &SectionTracker{links: p.FindByClass("nav-link")}
	t.observer = p.NewObserver(ObserverOptions{
		Threshold:  cfg.SectionThreshold,
		RootMargin: UniformInsets(cfg.SectionMargin),
	}, func(entries []ObserverEntry, _ *Observer) {
		for _, e := range entries {
			if e.Intersecting {
				t.activate(e.Node.Name)
			}
		}
	})
	sections := p.Root().FindAll(func(n *Node) bool {
		return n.Type == NodeTypeSection && n.Name != ""
	})
	for _, s := range sections {
		t.observer.Observe(s)
	}
	return t
}

// Active returns the id of the highlighted section, or "".
func (t *SectionTracker) Active() string {
	return t.active
}

func (t *SectionTracker) activate(id string) {
	t.active = id
	for _, l := range t.links {
		href, _ := l.Attr("href")
		l.ToggleClass("active", href == "#"+id)
	}
}

// --- Controller ---

// Nav is the scroll and navigation controller: menu, section highlighting,
// anchor scrolling, scroll-driven effects, email copy, toasts, and the
// back-to-top button.
type Nav struct {
	cfg   NavConfig
	owner Owner
	page  *Page

	// Clipboard receives the owner's email when a mailto link is clicked.
	Clipboard Clipboard
	// Loader fetches lazily loaded images. Nil only swaps the attributes.
	Loader ImageLoader

	Menu      *Menu
	Sections  *SectionTracker
	Reveal    *Reveal
	Counters  *Counters
	Images    *LazyImages
	Hover     *Hover
	Toasts    *Toaster
	BackToTop *BackToTop

	navbar  *Node
	hero    *Node
	handles []CallbackHandle
}

// NewNav creates a controller using the system clipboard.
func NewNav(cfg NavConfig, owner Owner) *Nav {
	return &Nav{cfg: cfg, owner: owner, Clipboard: SystemClipboard{}}
}

// Mount wires every behavior into p. Call once the page tree is built.
func (n *Nav) Mount(p *Page) {
	n.page = p
	n.navbar = p.FirstByClass("navbar")
	n.hero = p.FirstByClass("hero-content")

	n.Menu = NewMenu(p)
	n.Sections = NewSectionTracker(p, n.cfg)
	n.mountAnchors()
	n.Reveal = NewReveal(p, n.cfg)
	n.Counters = NewCounters(p, n.cfg)
	n.Hover = NewHover(p)
	n.Toasts = NewToaster(p, n.cfg)
	n.mountEmailCopy()
	n.Images = NewLazyImages(p, n.Loader)
	n.BackToTop = NewBackToTop(p, n.cfg)

	n.handles = append(n.handles, p.OnScroll(n.onScroll))
	n.onScroll(p.Viewport().ScrollY)
	n.greet()
}

// ScrollToSection smooth-scrolls so the section named id sits just below
// the navbar. It reports whether the section exists.
func (n *Nav) ScrollToSection(id string) bool {
	if id == "" {
		return false
	}
	target := n.page.Root().FindByID(id)
	if target == nil {
		return false
	}
	y := target.Bounds().Y
	if n.navbar != nil {
		y -= n.navbar.Height
	}
	n.page.Viewport().ScrollTo(y, seconds(n.cfg.AnchorDuration), ease.InOutCubic)
	return true
}

// CopyEmail puts the owner's address on the clipboard and confirms with a
// toast. Failures are logged.
func (n *Nav) CopyEmail() {
	if err := n.Clipboard.WriteAll(n.owner.Email); err != nil {
		logf("failed to copy email: %v", err)
		return
	}
	n.Toasts.Show("Email copied to clipboard!")
}

func (n *Nav) mountAnchors() {
	for _, tree := range []*Node{n.page.Overlay(), n.page.Root()} {
		for _, link := range tree.FindByAttrPrefix("href", "#") {
			link.AddClickListener(func(ClickContext) {
				href, _ := link.Attr("href")
				n.ScrollToSection(href[1:])
			})
		}
	}
}

// mountEmailCopy attaches the copy handler to the first mailto link.
func (n *Nav) mountEmailCopy() {
	links := n.page.Root().FindByAttrPrefix("href", "mailto:")
	if len(links) == 0 {
		links = n.page.Overlay().FindByAttrPrefix("href", "mailto:")
	}
	if len(links) == 0 {
		return
	}
	links[0].AddClickListener(func(ClickContext) { n.CopyEmail() })
}

func (n *Nav) onScroll(y float64) {
	if nb := n.navbar; nb != nil {
		scrolled := y > n.cfg.ScrolledOffset
		nb.ToggleClass("scrolled", scrolled)
		if scrolled {
			nb.Background.A = 0.98
		} else {
			nb.Background.A = 0.95
		}
	}
	n.parallax(y)
}

func (n *Nav) greet() {
	logf("👋 Hi there! Thanks for checking out my portfolio!")
	if n.owner.GitHub != "" {
		logf("Interested in the code? Check out my GitHub: %s", n.owner.GitHub)
	}
}
