package folio

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Viewport is the window onto the page: its size and vertical scroll offset.
// Content nodes live in page space; the viewport maps them to the screen.
type Viewport struct {
	// ScrollY is the page-space Y shown at the top edge of the screen.
	ScrollY float64
	// Width and Height are the window size in pixels.
	Width, Height float64
	// ContentHeight is the total page height; scrolling is clamped so the
	// viewport never shows past its end.
	ContentHeight float64

	scrollTween *gween.Tween
}

// newViewport creates a Viewport with the given window size.
func newViewport(w, h float64) *Viewport {
	return &Viewport{Width: w, Height: h}
}

// MaxScroll returns the largest valid ScrollY.
func (v *Viewport) MaxScroll() float64 {
	return math.Max(0, v.ContentHeight-v.Height)
}

// SetScroll jumps to y, clamped to the content, and stops any smooth scroll.
func (v *Viewport) SetScroll(y float64) {
	v.scrollTween = nil
	v.ScrollY = v.clamp(y)
}

// ScrollBy moves the scroll position by dy, clamped to the content.
func (v *Viewport) ScrollBy(dy float64) {
	v.SetScroll(v.ScrollY + dy)
}

// ScrollTo animates the scroll position to y over duration seconds. A
// non-positive duration jumps immediately.
func (v *Viewport) ScrollTo(y float64, duration float32, easeFn ease.TweenFunc) {
	y = v.clamp(y)
	if duration <= 0 {
		v.SetScroll(y)
		return
	}
	v.scrollTween = gween.New(float32(v.ScrollY), float32(y), duration, easeFn)
}

// Scrolling reports whether a smooth scroll is in progress.
func (v *Viewport) Scrolling() bool {
	return v.scrollTween != nil
}

// update advances the smooth scroll. Called from Page.Update().
func (v *Viewport) update(dt float32) {
	if v.scrollTween == nil {
		return
	}
	val, done := v.scrollTween.Update(dt)
	v.ScrollY = v.clamp(float64(val))
	if done {
		v.scrollTween = nil
	}
}

// resize changes the window size and re-clamps the scroll position.
func (v *Viewport) resize(w, h float64) {
	v.Width = w
	v.Height = h
	v.ScrollY = v.clamp(v.ScrollY)
}

func (v *Viewport) clamp(y float64) float64 {
	return math.Max(0, math.Min(y, v.MaxScroll()))
}

// VisibleBounds returns the page-space rectangle currently on screen.
func (v *Viewport) VisibleBounds() Rect {
	return Rect{X: 0, Y: v.ScrollY, Width: v.Width, Height: v.Height}
}

// PageToScreen converts page coordinates to screen coordinates.
func (v *Viewport) PageToScreen(px, py float64) (sx, sy float64) {
	return px, py - v.ScrollY
}

// ScreenToPage converts screen coordinates to page coordinates.
func (v *Viewport) ScreenToPage(sx, sy float64) (px, py float64) {
	return sx, sy + v.ScrollY
}

// viewTransform returns the affine matrix mapping page space to screen space.
func (v *Viewport) viewTransform() [6]float64 {
	return [6]float64{1, 0, 0, 1, 0, -v.ScrollY}
}
