package folio

import (
	"testing"
	"time"

	"github.com/tanema/gween/ease"
)

func TestViewportClamp(t *testing.T) {
	v := newViewport(1280, 800)
	v.ContentHeight = 3000
	v.SetScroll(-50)
	if v.ScrollY != 0 {
		t.Errorf("ScrollY = %v, want 0", v.ScrollY)
	}
	v.SetScroll(5000)
	if v.ScrollY != 2200 {
		t.Errorf("ScrollY = %v, want 2200", v.ScrollY)
	}
	v.ContentHeight = 400
	if v.MaxScroll() != 0 {
		t.Errorf("MaxScroll = %v, want 0 for short content", v.MaxScroll())
	}
}

func TestViewportCoordinates(t *testing.T) {
	v := newViewport(1280, 800)
	v.ContentHeight = 3000
	v.SetScroll(500)
	if _, sy := v.PageToScreen(0, 700); sy != 200 {
		t.Errorf("PageToScreen y = %v, want 200", sy)
	}
	if _, py := v.ScreenToPage(0, 200); py != 700 {
		t.Errorf("ScreenToPage y = %v, want 700", py)
	}
	if b := v.VisibleBounds(); b != (Rect{0, 500, 1280, 800}) {
		t.Errorf("VisibleBounds = %+v", b)
	}
}

func TestViewportResizeReclamps(t *testing.T) {
	v := newViewport(1280, 800)
	v.ContentHeight = 1000
	v.SetScroll(200)
	v.resize(1280, 900)
	if v.ScrollY != 100 {
		t.Errorf("ScrollY = %v, want 100", v.ScrollY)
	}
}

func TestScrollToAnimates(t *testing.T) {
	p, clk := newTestPage(t)
	tallContent(p, 4000)
	step(p, clk)

	p.Viewport().ScrollTo(1000, 0.8, ease.InOutCubic)
	if !p.Viewport().Scrolling() {
		t.Fatal("expected smooth scroll in progress")
	}
	step(p, clk)
	mid := p.Viewport().ScrollY
	if mid <= 0 || mid >= 1000 {
		t.Errorf("ScrollY after one frame = %v, want strictly between", mid)
	}
	run(p, clk, time.Second)
	if p.Viewport().ScrollY != 1000 || p.Viewport().Scrolling() {
		t.Errorf("ScrollY = %v, scrolling = %v", p.Viewport().ScrollY, p.Viewport().Scrolling())
	}
}

func TestScrollToZeroDurationJumps(t *testing.T) {
	p, clk := newTestPage(t)
	tallContent(p, 4000)
	step(p, clk)
	p.Viewport().ScrollTo(300, 0, nil)
	if p.Viewport().ScrollY != 300 || p.Viewport().Scrolling() {
		t.Errorf("ScrollY = %v", p.Viewport().ScrollY)
	}
}

func TestScrollListenerFiresOnChange(t *testing.T) {
	p, clk := newTestPage(t)
	tallContent(p, 4000)
	var got []float64
	p.OnScroll(func(y float64) { got = append(got, y) })
	step(p, clk)
	p.Viewport().SetScroll(250)
	step(p, clk)
	step(p, clk)
	if len(got) != 1 || got[0] != 250 {
		t.Errorf("scroll events = %v, want [250]", got)
	}
}

func TestPageResize(t *testing.T) {
	p, _ := newTestPage(t)
	var w, h float64
	calls := 0
	p.OnResize(func(nw, nh float64) { w, h, calls = nw, nh, calls+1 })
	p.Resize(600, 900)
	p.Resize(600, 900)
	if calls != 1 || w != 600 || h != 900 {
		t.Errorf("resize calls = %d, size = %vx%v", calls, w, h)
	}
	if p.Overlay().Width != 600 || p.Overlay().Height != 900 {
		t.Error("overlay should track the window size")
	}
}

func TestScrollLockOwners(t *testing.T) {
	p, _ := newTestPage(t)
	p.LockScroll("menu")
	p.LockScroll("modal")
	p.UnlockScroll("menu")
	if !p.ScrollLocked() || !p.ScrollLockedBy("modal") || p.ScrollLockedBy("menu") {
		t.Fatal("modal should still hold the lock")
	}
	p.UnlockScroll("modal")
	p.UnlockScroll("modal")
	if p.ScrollLocked() {
		t.Error("no owner should hold the lock")
	}
}

func TestContentHeightFollowsChildren(t *testing.T) {
	p, clk := newTestPage(t)
	a := tallContent(p, 1000)
	b := NewBox("footer")
	b.SetPosition(0, 1000)
	b.SetSize(1280, 500)
	p.Root().AddChild(b)
	step(p, clk)
	if p.Viewport().ContentHeight != 1500 {
		t.Errorf("ContentHeight = %v, want 1500", p.Viewport().ContentHeight)
	}
	a.Visible = false
	b.Visible = false
	step(p, clk)
	if p.Viewport().ContentHeight != 0 {
		t.Errorf("ContentHeight = %v with hidden content", p.Viewport().ContentHeight)
	}
}
