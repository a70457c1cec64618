package folio

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// CapabilityCheck reports whether accelerated rendering is available.
type CapabilityCheck func() bool

// GraphicsAvailable is the default CapabilityCheck. It reports whether
// Ebitengine has settled on a graphics library. Only meaningful once the
// game loop is running.
func GraphicsAvailable() bool {
	var info ebiten.DebugInfo
	ebiten.ReadDebugInfo(&info)
	return info.GraphicsLibrary != ebiten.GraphicsLibraryUnknown
}

// NetworkRenderer runs a Network on a page: it steps the simulation from a
// scheduler loop, feeds it pointer, scroll and resize events, and draws it
// as a background layer.
type NetworkRenderer struct {
	net   *Network
	check CapabilityCheck

	page     *Page
	loop     *LoopHandle
	handles  []CallbackHandle
	active   bool
	disabled bool

	lines *ebiten.Image
}

// NewNetworkRenderer creates a renderer for net. A nil check uses
// GraphicsAvailable.
func NewNetworkRenderer(net *Network, check CapabilityCheck) *NetworkRenderer {
	if check == nil {
		check = GraphicsAvailable
	}
	return &NetworkRenderer{net: net, check: check}
}

// Network returns the simulated network.
func (r *NetworkRenderer) Network() *Network {
	return r.net
}

// Active reports whether the renderer passed its capability check and is
// running.
func (r *NetworkRenderer) Active() bool {
	return r.active
}

// Disabled reports whether the capability check failed.
func (r *NetworkRenderer) Disabled() bool {
	return r.disabled
}

// Mount schedules the renderer on the page. The capability check runs on
// the first frame; when it fails the renderer stays absent and nothing else
// is wired.
func (r *NetworkRenderer) Mount(p *Page) {
	if r.page != nil {
		return
	}
	r.page = p
	r.loop = p.Scheduler().Loop(func(elapsed time.Duration) {
		if !r.active {
			if !r.activate() {
				return
			}
		}
		r.net.Step(elapsed)
	})
}

// activate runs the capability check and wires the renderer into the page.
func (r *NetworkRenderer) activate() bool {
	if !r.check() {
		r.disabled = true
		r.loop.Cancel()
		debugf("particle network disabled: accelerated graphics unavailable")
		return false
	}
	p := r.page
	vp := p.Viewport()
	r.net.Resize(vp.Width, vp.Height)
	r.net.SetScroll(vp.ScrollY)

	r.handles = append(r.handles,
		p.AddLayer(r.Draw),
		p.OnPointerMove(func(ctx PointerContext) {
			vp := p.Viewport()
			if vp.Width <= 0 || vp.Height <= 0 {
				return
			}
			r.net.SetPointer(ctx.ScreenX/vp.Width*2-1, -(ctx.ScreenY/vp.Height)*2+1)
		}),
		p.OnScroll(r.net.SetScroll),
		p.OnResize(func(w, h float64) {
			r.net.Resize(w, h)
			if r.lines != nil {
				r.lines.Deallocate()
				r.lines = nil
			}
		}),
	)
	r.active = true
	debugf("particle network active: %d particles", len(r.net.Particles))
	return true
}

// Stop cancels the animation loop and unregisters every page callback.
func (r *NetworkRenderer) Stop() {
	r.loop.Cancel()
	for _, h := range r.handles {
		h.Remove()
	}
	r.handles = nil
	r.active = false
}

// Draw projects the network onto screen: connection lines composited
// additively, then each particle as a disc with a faint halo ring.
func (r *NetworkRenderer) Draw(screen *ebiten.Image) {
	n := r.net
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	proj := make([]projected, len(n.Particles))
	for i := range n.Particles {
		proj[i] = n.project(n.Particles[i].Position)
	}

	// Dropped on resize.
	if r.lines == nil {
		r.lines = ebiten.NewImage(w, h)
	}
	r.lines.Clear()
	lineColor := ColorHex(n.cfg.ConnectionColor)
	for _, c := range n.Connections {
		a, bb := proj[c.A], proj[c.B]
		if !a.Visible && !bb.Visible {
			continue
		}
		if a.Depth == 0 || bb.Depth == 0 {
			continue
		}
		fog := n.fog((a.Depth + bb.Depth) / 2)
		clr := lineColor.WithAlpha(c.Opacity * fog)
		vector.StrokeLine(r.lines, float32(a.X), float32(a.Y), float32(bb.X), float32(bb.Y), 1, clr.toRGBA(), true)
	}
	op := &ebiten.DrawImageOptions{}
	op.Blend = ebiten.BlendLighter
	screen.DrawImage(r.lines, op)

	for i := range n.Particles {
		p := &n.Particles[i]
		pr := proj[i]
		if !pr.Visible {
			continue
		}
		fog := n.fog(pr.Depth)
		radius := p.BaseSize * p.Scale * pr.PxScale
		if radius < 0.75 {
			radius = 0.75
		}
		vector.DrawFilledCircle(screen, float32(pr.X), float32(pr.Y), float32(radius),
			p.Color.WithAlpha(p.Opacity*fog).toRGBA(), true)
		vector.StrokeCircle(screen, float32(pr.X), float32(pr.Y), float32(radius*1.75),
			float32(radius*0.5), p.Color.WithAlpha(p.RingOpacity*fog).toRGBA(), true)
	}
}
