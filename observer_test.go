package folio

import "testing"

// placeBox adds a box at page-space y with the given height to p.
func placeBox(p *Page, name string, y, h float64) *Node {
	n := NewBox(name)
	n.SetPosition(0, y)
	n.SetSize(400, h)
	p.Root().AddChild(n)
	return n
}

func TestObserverFirstCheckReportsEveryTarget(t *testing.T) {
	p, clk := newTestPage(t)
	tallContent(p, 5000)
	visible := placeBox(p, "visible", 100, 200)
	hidden := placeBox(p, "hidden", 3000, 200)

	var batches [][]ObserverEntry
	o := p.NewObserver(ObserverOptions{}, func(entries []ObserverEntry, _ *Observer) {
		batches = append(batches, append([]ObserverEntry(nil), entries...))
	})
	o.Observe(visible)
	o.Observe(hidden)
	o.Observe(visible)
	if o.Len() != 2 {
		t.Fatalf("Len = %d, want 2", o.Len())
	}

	step(p, clk)
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("batches = %v", batches)
	}
	first := batches[0]
	if first[0].Node != visible || !first[0].Intersecting || first[0].Index != 0 {
		t.Errorf("entry 0 = %+v", first[0])
	}
	if first[1].Node != hidden || first[1].Intersecting || first[1].Index != 1 {
		t.Errorf("entry 1 = %+v", first[1])
	}

	step(p, clk)
	if len(batches) != 1 {
		t.Errorf("unchanged targets should not report again, got %d batches", len(batches))
	}
}

func TestObserverReportsStateChanges(t *testing.T) {
	p, clk := newTestPage(t)
	tallContent(p, 5000)
	target := placeBox(p, "target", 2000, 200)

	var entries []ObserverEntry
	o := p.NewObserver(ObserverOptions{}, func(es []ObserverEntry, _ *Observer) {
		entries = append(entries, es...)
	})
	o.Observe(target)
	step(p, clk)

	p.Viewport().SetScroll(1500)
	step(p, clk)
	p.Viewport().SetScroll(0)
	step(p, clk)

	want := []bool{false, true, false}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Intersecting != w {
			t.Errorf("entry %d Intersecting = %v, want %v", i, entries[i].Intersecting, w)
		}
	}
}

func TestObserverThreshold(t *testing.T) {
	p, clk := newTestPage(t)
	tallContent(p, 5000)
	// 400px tall, top half on screen (viewport is 800 tall).
	half := placeBox(p, "half", 600, 400)

	var got *ObserverEntry
	o := p.NewObserver(ObserverOptions{Threshold: 0.5}, func(es []ObserverEntry, _ *Observer) {
		e := es[0]
		got = &e
	})
	o.Observe(half)
	step(p, clk)
	if got == nil || !got.Intersecting || !approx(got.Ratio, 0.5, 1e-9) {
		t.Fatalf("entry = %+v, want intersecting at ratio 0.5", got)
	}

	p2, clk2 := newTestPage(t)
	tallContent(p2, 5000)
	less := placeBox(p2, "less", 620, 400)
	got = nil
	o2 := p2.NewObserver(ObserverOptions{Threshold: 0.5}, func(es []ObserverEntry, _ *Observer) {
		e := es[0]
		got = &e
	})
	o2.Observe(less)
	step(p2, clk2)
	if got == nil || got.Intersecting {
		t.Errorf("entry = %+v, want not intersecting below threshold", got)
	}
}

func TestObserverRootMarginShrinks(t *testing.T) {
	p, clk := newTestPage(t)
	tallContent(p, 5000)
	// Sits in the bottom 40px of the screen, inside the -50 bottom margin.
	edge := placeBox(p, "edge", 760, 40)

	var got []ObserverEntry
	o := p.NewObserver(ObserverOptions{RootMargin: Insets{Bottom: -50}}, func(es []ObserverEntry, _ *Observer) {
		got = append(got, es...)
	})
	o.Observe(edge)
	step(p, clk)
	if len(got) != 1 || got[0].Intersecting {
		t.Fatalf("entries = %+v, want one non-intersecting", got)
	}
	p.Viewport().SetScroll(100)
	step(p, clk)
	if len(got) != 2 || !got[1].Intersecting {
		t.Errorf("entries = %+v, want intersecting after scroll", got)
	}
}

func TestObserverHiddenNodeNeverIntersects(t *testing.T) {
	p, clk := newTestPage(t)
	n := placeBox(p, "n", 0, 100)
	n.Visible = false
	var got []ObserverEntry
	o := p.NewObserver(ObserverOptions{}, func(es []ObserverEntry, _ *Observer) { got = append(got, es...) })
	o.Observe(n)
	step(p, clk)
	if len(got) != 1 || got[0].Intersecting {
		t.Errorf("entries = %+v", got)
	}
}

func TestObserverUnobserveInCallback(t *testing.T) {
	p, clk := newTestPage(t)
	tallContent(p, 5000)
	a := placeBox(p, "a", 0, 100)
	b := placeBox(p, "b", 100, 100)
	calls := 0
	o := p.NewObserver(ObserverOptions{}, func(es []ObserverEntry, o *Observer) {
		calls++
		for _, e := range es {
			o.Unobserve(e.Node)
		}
	})
	o.Observe(a)
	o.Observe(b)
	step(p, clk)
	if o.Len() != 0 {
		t.Errorf("Len = %d after unobserving all", o.Len())
	}
	p.Viewport().SetScroll(2000)
	step(p, clk)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestObserverDisconnect(t *testing.T) {
	p, clk := newTestPage(t)
	n := placeBox(p, "n", 0, 100)
	calls := 0
	o := p.NewObserver(ObserverOptions{}, func([]ObserverEntry, *Observer) { calls++ })
	o.Observe(n)
	o.Disconnect()
	o.Observe(n)
	step(p, clk)
	if calls != 0 || o.Len() != 0 {
		t.Errorf("calls = %d, Len = %d after Disconnect", calls, o.Len())
	}
	if len(p.observers) != 0 {
		t.Error("observer should be detached from the page")
	}
}

func TestIntersectionRatioZeroArea(t *testing.T) {
	root := Rect{0, 0, 100, 100}
	if intersectionRatio(Rect{X: 50, Y: 50}, root) != 1 {
		t.Error("empty rect inside root should count as visible")
	}
	if intersectionRatio(Rect{X: 150, Y: 50}, root) != 0 {
		t.Error("empty rect outside root should not be visible")
	}
}
