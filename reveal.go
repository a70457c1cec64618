package folio

import (
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/tanema/gween/ease"
)

// Reveal fades elements in and slides them up the first time they scroll
// into view. Entries that arrive together are staggered by their position
// in the batch.
type Reveal struct {
	page     *Page
	cfg      NavConfig
	observer *Observer
	revealed int
}

// NewReveal hides every element carrying one of cfg.RevealClasses and
// starts observing it.
func NewReveal(p *Page, cfg NavConfig) *Reveal {
	r := &Reveal{page: p, cfg: cfg}
	r.observer = p.NewObserver(ObserverOptions{
		Threshold:  cfg.RevealThreshold,
		RootMargin: Insets{Bottom: cfg.RevealMargin},
	}, r.onEntries)
	for _, n := range p.Root().FindByClass(cfg.RevealClasses...) {
		n.SetAlpha(0)
		n.SetTranslate(n.TranslateX, cfg.RevealOffset)
		r.observer.Observe(n)
	}
	return r
}

// Pending returns the number of elements not yet revealed.
func (r *Reveal) Pending() int {
	return r.observer.Len()
}

// Revealed returns the number of elements whose reveal animation started.
func (r *Reveal) Revealed() int {
	return r.revealed
}

func (r *Reveal) onEntries(entries []ObserverEntry, o *Observer) {
	for _, e := range entries {
		if !e.Intersecting {
			continue
		}
		n := e.Node
		o.Unobserve(n)
		delay := time.Duration(e.Index) * r.cfg.RevealStagger
		r.page.Scheduler().After(delay, func() {
			r.revealed++
			r.page.Animate(TweenReveal(n, seconds(r.cfg.RevealDuration), ease.OutCubic))
		})
	}
}

// --- Counters ---

// ParseCounter splits a stat such as "250+" into its number and the text
// around it. Commas between digits are accepted as thousands separators.
// ok is false when s has no digits.
func ParseCounter(s string) (target int, prefix, suffix string, ok bool) {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0, s, "", false
	}
	end := start
	var digits strings.Builder
	for end < len(s) {
		c := rune(s[end])
		if isDigit(c) {
			digits.WriteRune(c)
			end++
			continue
		}
		if c == ',' && end+1 < len(s) && isDigit(rune(s[end+1])) {
			end++
			continue
		}
		break
	}
	v, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, s, "", false
	}
	return v, s[:start], s[end:], true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Counter counts a stat element's number up from zero.
type Counter struct {
	Node   *Node
	Target int
	Prefix string
	Suffix string

	value int
	loop  *LoopHandle
}

// StartCounter parses n's text and animates it from 0 to its number over d.
// Progress is measured on the scheduler clock, so the last frame always
// shows the exact target. It returns nil when the text holds no number.
func StartCounter(s *Scheduler, n *Node, d time.Duration) *Counter {
	target, prefix, suffix, ok := ParseCounter(n.Text)
	if !ok {
		return nil
	}
	c := &Counter{Node: n, Target: target, Prefix: prefix, Suffix: suffix}
	c.render(0)
	c.loop = s.Loop(func(elapsed time.Duration) {
		progress := 1.0
		if d > 0 {
			progress = min(float64(elapsed)/float64(d), 1)
		}
		if progress >= 1 {
			c.render(c.Target)
			c.loop.Cancel()
			return
		}
		c.render(int(math.Floor(float64(c.Target) * progress)))
	})
	return c
}

// Value returns the number currently shown.
func (c *Counter) Value() int {
	return c.value
}

// Done reports whether the counter reached its target.
func (c *Counter) Done() bool {
	return !c.loop.Active()
}

func (c *Counter) render(v int) {
	c.value = v
	c.Node.Text = c.Prefix + strconv.Itoa(v) + c.Suffix
}

// Counters starts a Counter on each .stat-number once it is mostly visible.
type Counters struct {
	page     *Page
	cfg      NavConfig
	observer *Observer
	started  []*Counter
}

// NewCounters observes every .stat-number in the content tree.
func NewCounters(p *Page, cfg NavConfig) *Counters {
	c := &Counters{page: p, cfg: cfg}
	c.observer = p.NewObserver(ObserverOptions{Threshold: cfg.CounterThreshold}, c.onEntries)
	for _, n := range p.Root().FindByClass("stat-number") {
		c.observer.Observe(n)
	}
	return c
}

// Started returns the counters started so far, in start order.
func (c *Counters) Started() []*Counter {
	return c.started
}

func (c *Counters) onEntries(entries []ObserverEntry, o *Observer) {
	for _, e := range entries {
		n := e.Node
		if !e.Intersecting || n.HasClass("animated") {
			continue
		}
		n.AddClass("animated")
		o.Unobserve(n)
		if ctr := StartCounter(c.page.Scheduler(), n, c.cfg.CounterDuration); ctr != nil {
			c.started = append(c.started, ctr)
		}
	}
}

// --- Lazy images ---

// ImageLoader fetches the pixels for an image source.
type ImageLoader interface {
	LoadImage(src string) (*ebiten.Image, error)
}

// FileImageLoader loads PNG and JPEG files relative to Dir.
type FileImageLoader struct {
	Dir string
}

// LoadImage reads and decodes the file at src.
func (l FileImageLoader) LoadImage(src string) (*ebiten.Image, error) {
	img, _, err := ebitenutil.NewImageFromFile(filepath.Join(l.Dir, filepath.FromSlash(src)))
	if err != nil {
		return nil, fmt.Errorf("loading image %s: %w", src, err)
	}
	return img, nil
}

// LazyImages defers image loading until an image first scrolls into view.
type LazyImages struct {
	loader   ImageLoader
	observer *Observer
	loaded   int
}

// NewLazyImages observes every image carrying a data-src attribute. loader
// may be nil, in which case only the attributes are swapped.
func NewLazyImages(p *Page, loader ImageLoader) *LazyImages {
	l := &LazyImages{loader: loader}
	l.observer = p.NewObserver(ObserverOptions{}, l.onEntries)
	for _, n := range p.Root().FindAll(func(n *Node) bool {
		_, ok := n.Attr("data-src")
		return n.Type == NodeTypeImage && ok
	}) {
		l.observer.Observe(n)
	}
	return l
}

// Loaded returns the number of images whose source has been swapped in.
func (l *LazyImages) Loaded() int {
	return l.loaded
}

func (l *LazyImages) onEntries(entries []ObserverEntry, o *Observer) {
	for _, e := range entries {
		if !e.Intersecting {
			continue
		}
		n := e.Node
		o.Unobserve(n)
		src, ok := n.Attr("data-src")
		if !ok {
			continue
		}
		n.SetAttr("src", src)
		n.RemoveAttr("data-src")
		l.loaded++
		if l.loader == nil {
			continue
		}
		img, err := l.loader.LoadImage(src)
		if err != nil {
			logf("lazy image: %v", err)
			continue
		}
		n.Image = img
	}
}
