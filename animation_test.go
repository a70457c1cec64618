package folio

import (
	"testing"
	"time"

	"github.com/tanema/gween/ease"
)

func TestTweenAlphaReachesTarget(t *testing.T) {
	n := NewBox("n")
	n.SetAlpha(0)
	g := TweenAlpha(n, 1, 0.5, ease.Linear)
	g.Update(0.25)
	if !approx(n.Alpha, 0.5, 1e-6) {
		t.Errorf("Alpha at half time = %v", n.Alpha)
	}
	if g.Done {
		t.Error("should not be done at half time")
	}
	g.Update(0.3)
	if n.Alpha != 1 || !g.Done {
		t.Errorf("Alpha = %v, Done = %v", n.Alpha, g.Done)
	}
}

func TestTweenRevealRestoresLayoutPosition(t *testing.T) {
	n := NewBox("card")
	n.SetAlpha(0)
	n.SetTranslate(0, 30)
	g := TweenReveal(n, 0.6, ease.OutCubic)
	g.Update(1)
	if n.Alpha != 1 || n.TranslateX != 0 || n.TranslateY != 0 {
		t.Errorf("after reveal: alpha %v translate (%v, %v)", n.Alpha, n.TranslateX, n.TranslateY)
	}
	if !n.transformDirty {
		t.Error("tween should mark the node dirty")
	}
}

func TestTweenOnCompleteOnce(t *testing.T) {
	n := NewBox("n")
	g := TweenScale(n, 1.1, 1.1, 0.3, ease.OutQuad)
	calls := 0
	g.OnComplete = func() { calls++ }
	for i := 0; i < 10; i++ {
		g.Update(0.1)
	}
	if calls != 1 {
		t.Errorf("OnComplete calls = %d, want 1", calls)
	}
	if !approx(n.ScaleX, 1.1, 1e-6) || !approx(n.ScaleY, 1.1, 1e-6) {
		t.Errorf("scale = (%v, %v)", n.ScaleX, n.ScaleY)
	}
}

func TestTweenStopSkipsOnComplete(t *testing.T) {
	n := NewBox("n")
	g := TweenShadow(n, 12, 0.3, ease.OutQuad)
	called := false
	g.OnComplete = func() { called = true }
	g.Update(0.1)
	g.Stop()
	shadow := n.Shadow
	g.Update(1)
	if called || n.Shadow != shadow {
		t.Error("stopped group should not advance or complete")
	}
}

func TestTweenDisposedTargetStops(t *testing.T) {
	n := NewBox("toast")
	g := TweenTranslate(n, 400, 0, 0.3, ease.InQuad)
	n.Dispose()
	g.Update(0.1)
	if !g.Done || n.TranslateX != 0 {
		t.Errorf("Done = %v, TranslateX = %v", g.Done, n.TranslateX)
	}
}

func TestPageAnimateDropsFinishedGroups(t *testing.T) {
	p, clk := newTestPage(t)
	n := NewBox("n")
	p.Root().AddChild(n)
	step(p, clk)
	p.Animate(TweenAlpha(n, 0, 0.1, ease.Linear))
	if p.Animating() != 1 {
		t.Fatalf("Animating = %d", p.Animating())
	}
	run(p, clk, 400*time.Millisecond)
	if p.Animating() != 0 {
		t.Errorf("Animating = %d after the tween ended", p.Animating())
	}
	if n.Alpha != 0 {
		t.Errorf("Alpha = %v", n.Alpha)
	}
}
