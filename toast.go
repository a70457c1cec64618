package folio

import (
	"math"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/harmonica"
	"github.com/tanema/gween/ease"
)

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the operating system clipboard.
type SystemClipboard struct{}

// WriteAll replaces the clipboard contents with text.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

const (
	toastFontSize   = 16
	toastMargin     = 32
	toastPadX       = 32
	toastPadY       = 16
	toastSlide      = 400
	toastSpringRate = 60
)

var toastBackground = ColorHex(0x6366f1)

// Toaster shows short notifications in the bottom-right corner.
type Toaster struct {
	page   *Page
	cfg    NavConfig
	toasts []*Toast
}

// NewToaster creates a toaster on p's overlay.
func NewToaster(p *Page, cfg NavConfig) *Toaster {
	t := &Toaster{page: p, cfg: cfg}
	p.OnResize(func(w, h float64) {
		for _, toast := range t.toasts {
			toast.place(w, h)
		}
	})
	return t
}

// Active returns the number of toasts still on screen.
func (t *Toaster) Active() int {
	return len(t.toasts)
}

// Toast is one notification. It springs in from the right, stays for the
// configured duration, then slides out while fading and is disposed.
type Toast struct {
	Node *Node

	toaster *Toaster
	spring  harmonica.Spring
	vel     float64
	steps   int
	loop    *LoopHandle
	removed bool
}

// Show displays message and returns its toast.
func (t *Toaster) Show(message string) *Toast {
	p := t.page
	tw, th := MeasureText(message, toastFontSize, 0)

	box := NewBox("toast")
	box.AddClass("toast")
	box.Background = toastBackground
	box.Shadow = 12
	box.SetSize(tw+2*toastPadX, th+2*toastPadY)

	label := NewText("toast-label", message)
	label.FontSize = toastFontSize
	label.SetPosition(toastPadX, toastPadY)
	label.SetSize(tw+1, th)
	box.AddChild(label)

	box.SetTranslate(toastSlide, 0)
	box.SetAlpha(0)
	p.Overlay().AddChild(box)

	toast := &Toast{
		Node:    box,
		toaster: t,
		spring:  harmonica.NewSpring(harmonica.FPS(toastSpringRate), 8, 0.8),
	}
	toast.place(p.Viewport().Width, p.Viewport().Height)
	t.toasts = append(t.toasts, toast)

	p.Animate(TweenAlpha(box, 1, seconds(t.cfg.ToastFade), ease.OutQuad))
	toast.loop = p.Scheduler().Loop(toast.slideIn)
	p.Scheduler().After(t.cfg.ToastDuration, toast.dismiss)
	return toast
}

// Removed reports whether the toast has left the page.
func (t *Toast) Removed() bool {
	return t.removed
}

func (t *Toast) place(w, h float64) {
	t.Node.SetPosition(w-t.Node.Width-toastMargin, h-t.Node.Height-toastMargin)
}

// slideIn advances the spring in fixed steps so the motion does not depend
// on the frame rate.
func (t *Toast) slideIn(elapsed time.Duration) {
	n := t.Node
	target := int(elapsed.Seconds() * toastSpringRate)
	x := n.TranslateX
	for ; t.steps < target; t.steps++ {
		x, t.vel = t.spring.Update(x, t.vel, 0)
	}
	if math.Abs(x) < 0.5 && math.Abs(t.vel) < 0.5 {
		x = 0
		t.loop.Cancel()
	}
	n.SetTranslate(x, n.TranslateY)
}

// dismiss slides the toast out and removes it once the fade ends.
func (t *Toast) dismiss() {
	t.loop.Cancel()
	n := t.Node
	d := seconds(t.toaster.cfg.ToastFade)
	g := &TweenGroup{target: n}
	g.add(&n.Alpha, 0, d, ease.InQuad)
	g.add(&n.TranslateX, toastSlide, d, ease.InQuad)
	g.OnComplete = t.remove
	t.toaster.page.Animate(g)
}

func (t *Toast) remove() {
	t.removed = true
	t.Node.Dispose()
	list := t.toaster.toasts
	for i, other := range list {
		if other == t {
			t.toaster.toasts = append(list[:i:i], list[i+1:]...)
			break
		}
	}
}

// --- Back to top ---

const backToTopSize = 50

// BackToTop is a floating button that appears once the page has scrolled
// past an offset and smooth-scrolls back to the top when clicked.
type BackToTop struct {
	Node *Node

	page  *Page
	cfg   NavConfig
	hover *TweenGroup
}

// NewBackToTop adds the hidden button to p's overlay.
func NewBackToTop(p *Page, cfg NavConfig) *BackToTop {
	b := &BackToTop{page: p, cfg: cfg}

	n := NewButton("back-to-top", "^")
	n.AddClass("back-to-top")
	n.Background = toastBackground
	n.Shadow = 6
	n.FontSize = 18
	n.SetSize(backToTopSize, backToTopSize)
	n.Visible = false
	n.OnClick = func(ClickContext) { b.ScrollTop() }
	n.OnPointerEnter = func(PointerContext) { b.scaleTo(1.1) }
	n.OnPointerLeave = func(PointerContext) { b.scaleTo(1) }
	b.Node = n
	p.Overlay().AddChild(n)
	b.place(p.Viewport().Width, p.Viewport().Height)

	refresh := p.Scheduler().Debounce(cfg.BackToTopDebounce, func() {
		n.Visible = p.Viewport().ScrollY > cfg.BackToTopOffset
	})
	p.OnScroll(func(float64) { refresh() })
	p.OnResize(func(w, h float64) { b.place(w, h) })
	return b
}

// Shown reports whether the button is visible.
func (b *BackToTop) Shown() bool {
	return b.Node.Visible
}

// ScrollTop smooth-scrolls the page to the top.
func (b *BackToTop) ScrollTop() {
	b.page.Viewport().ScrollTo(0, seconds(b.cfg.AnchorDuration), ease.InOutCubic)
}

func (b *BackToTop) place(w, h float64) {
	b.Node.SetPosition(w-backToTopSize-toastMargin, h-backToTopSize-toastMargin)
}

func (b *BackToTop) scaleTo(s float64) {
	if b.hover != nil {
		b.hover.Stop()
	}
	b.hover = b.page.Animate(TweenScale(b.Node, s, s, hoverDuration, ease.OutQuad))
}
