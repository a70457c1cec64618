package folio

// ObserverOptions configures an Observer.
type ObserverOptions struct {
	// Threshold is the visible fraction of a target's area at or above which
	// the target counts as intersecting.
	Threshold float64
	// RootMargin grows the viewport rectangle before intersection is
	// computed. Negative values shrink it.
	RootMargin Insets
}

// ObserverEntry describes one target whose intersecting state changed.
type ObserverEntry struct {
	Node         *Node
	Ratio        float64
	Intersecting bool
	// Index is the entry's position within the batch delivered to the
	// callback.
	Index int
	// Bounds is the target's page-space box when the entry was produced.
	Bounds Rect
}

// Observer watches nodes for viewport intersection. After each frame it
// delivers, in a single batch, an entry for every target whose intersecting
// state changed. The first check after Observe always reports.
type Observer struct {
	opts     ObserverOptions
	callback func([]ObserverEntry, *Observer)
	page     *Page
	targets  []*observedTarget
	entryBuf []ObserverEntry
	closed   bool
}

type observedTarget struct {
	node         *Node
	checked      bool
	intersecting bool
}

// NewObserver creates an observer attached to the page. It delivers nothing
// until nodes are observed.
func (p *Page) NewObserver(opts ObserverOptions, callback func([]ObserverEntry, *Observer)) *Observer {
	o := &Observer{opts: opts, callback: callback, page: p}
	p.observers = append(p.observers, o)
	return o
}

// Observe starts watching n. Observing the same node twice is a no-op.
func (o *Observer) Observe(n *Node) {
	if n == nil || o.closed {
		return
	}
	for _, t := range o.targets {
		if t.node == n {
			return
		}
	}
	o.targets = append(o.targets, &observedTarget{node: n})
}

// Unobserve stops watching n.
func (o *Observer) Unobserve(n *Node) {
	for i, t := range o.targets {
		if t.node == n {
			o.targets = append(o.targets[:i:i], o.targets[i+1:]...)
			return
		}
	}
}

// Disconnect stops watching every target and detaches the observer.
func (o *Observer) Disconnect() {
	o.targets = nil
	o.closed = true
	p := o.page
	for i, other := range p.observers {
		if other == o {
			p.observers = append(p.observers[:i:i], p.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of observed targets.
func (o *Observer) Len() int {
	return len(o.targets)
}

// root returns the page-space rectangle targets are tested against.
func (o *Observer) root() Rect {
	return o.page.viewport.VisibleBounds().Inset(o.opts.RootMargin)
}

// intersectionRatio returns the fraction of target inside root. A target
// with no area counts as fully visible when it lies within root.
func intersectionRatio(target, root Rect) float64 {
	if target.Area() <= 0 {
		if root.Contains(target.X, target.Y) {
			return 1
		}
		return 0
	}
	return target.Intersection(root).Area() / target.Area()
}

// isIntersecting applies the threshold. A zero threshold means any overlap.
func (o *Observer) isIntersecting(ratio float64) bool {
	if o.opts.Threshold <= 0 {
		return ratio > 0
	}
	return ratio >= o.opts.Threshold
}

// check computes entries for this frame and invokes the callback once if
// anything changed.
func (o *Observer) check() {
	if len(o.targets) == 0 {
		return
	}
	root := o.root()
	entries := o.entryBuf[:0]
	for _, t := range o.targets {
		n := t.node
		if n.disposed {
			continue
		}
		b := n.Bounds()
		ratio := 0.0
		if n.Visible {
			ratio = intersectionRatio(b, root)
		}
		in := o.isIntersecting(ratio)
		if t.checked && in == t.intersecting {
			continue
		}
		t.checked = true
		t.intersecting = in
		entries = append(entries, ObserverEntry{
			Node: n, Ratio: ratio, Intersecting: in,
			Index: len(entries), Bounds: b,
		})
	}
	o.entryBuf = entries
	if len(entries) > 0 {
		o.callback(entries, o)
	}
}

// updateObservers runs every observer once. Called at the end of Page.Update.
func (p *Page) updateObservers() {
	observers := append([]*Observer(nil), p.observers...)
	for _, o := range observers {
		if !o.closed {
			o.check()
		}
	}
	if p.debug {
		n := 0
		for _, o := range p.observers {
			n += len(o.targets)
		}
		p.frameStats.observed = n
	}
}
