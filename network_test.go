package folio

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

func newTestNetwork(cfg NetworkConfig) *Network {
	return NewNetwork(cfg, rand.New(rand.NewPCG(1, 2)))
}

func TestNewNetworkParticles(t *testing.T) {
	cfg := DefaultNetworkConfig()
	n := newTestNetwork(cfg)
	if len(n.Particles) != cfg.NodeCount {
		t.Fatalf("particles = %d, want %d", len(n.Particles), cfg.NodeCount)
	}
	half := cfg.Spread.Scale(0.5)
	for i, p := range n.Particles {
		if math.Abs(p.Position.X) > half.X || math.Abs(p.Position.Y) > half.Y || math.Abs(p.Position.Z) > half.Z {
			t.Errorf("particle %d at %+v outside %+v", i, p.Position, half)
		}
		if p.BaseSize < cfg.NodeSize.Min || p.BaseSize > cfg.NodeSize.Max {
			t.Errorf("particle %d size %v outside %+v", i, p.BaseSize, cfg.NodeSize)
		}
		if p.BaseOpacity < cfg.BaseOpacity.Min || p.BaseOpacity > cfg.BaseOpacity.Max {
			t.Errorf("particle %d opacity %v outside %+v", i, p.BaseOpacity, cfg.BaseOpacity)
		}
	}
	if len(n.Connections) != 0 {
		t.Errorf("connections before first step = %d", len(n.Connections))
	}
}

func TestNewNetworkSeeded(t *testing.T) {
	a := newTestNetwork(DefaultNetworkConfig())
	b := newTestNetwork(DefaultNetworkConfig())
	for i := range a.Particles {
		if a.Particles[i].Position != b.Particles[i].Position {
			t.Fatalf("particle %d differs: %+v vs %+v", i, a.Particles[i].Position, b.Particles[i].Position)
		}
	}
}

func TestRefreshConnectionsMatchesDistance(t *testing.T) {
	cfg := DefaultNetworkConfig()
	n := newTestNetwork(cfg)
	n.RefreshConnections()

	linked := make(map[[2]int]Connection)
	for _, c := range n.Connections {
		if c.A >= c.B {
			t.Errorf("connection %+v not ordered", c)
		}
		linked[[2]int{c.A, c.B}] = c
	}
	for i := range n.Particles {
		for j := i + 1; j < len(n.Particles); j++ {
			d := n.Particles[i].Position.Dist(n.Particles[j].Position)
			c, ok := linked[[2]int{i, j}]
			if ok != (d < cfg.ConnectionDistance) {
				t.Errorf("pair (%d, %d) d=%v linked=%v", i, j, d, ok)
			}
			if ok && c.Opacity != ConnectionOpacity(d, cfg.ConnectionDistance, cfg.LineOpacity) {
				t.Errorf("pair (%d, %d) opacity %v", i, j, c.Opacity)
			}
		}
	}
}

func TestRefreshConnectionsReplacesSet(t *testing.T) {
	cfg := DefaultNetworkConfig()
	cfg.NodeCount = 2
	n := newTestNetwork(cfg)
	n.Particles[0].Position = Vec3{0, 0, 0}
	n.Particles[1].Position = Vec3{1, 0, 0}
	n.RefreshConnections()
	if len(n.Connections) != 1 {
		t.Fatalf("connections = %d, want 1", len(n.Connections))
	}
	n.Particles[1].Position = Vec3{4, 0, 0} // exactly at the limit
	n.RefreshConnections()
	if len(n.Connections) != 0 {
		t.Errorf("connections = %d, want 0", len(n.Connections))
	}
}

func TestConnectionOpacity(t *testing.T) {
	const limit, maxOpacity = 4.0, 0.15
	if got := ConnectionOpacity(0, limit, maxOpacity); got != maxOpacity {
		t.Errorf("opacity at 0 = %v, want %v", got, maxOpacity)
	}
	if got := ConnectionOpacity(limit, limit, maxOpacity); got != 0 {
		t.Errorf("opacity at limit = %v, want 0", got)
	}
	if got := ConnectionOpacity(10, limit, maxOpacity); got != 0 {
		t.Errorf("opacity past limit = %v, want 0", got)
	}
	prev := math.Inf(1)
	for d := 0.0; d < limit; d += 0.25 {
		o := ConnectionOpacity(d, limit, maxOpacity)
		if o >= prev {
			t.Errorf("opacity not decreasing at d=%v: %v >= %v", d, o, prev)
		}
		prev = o
	}
}

func TestNetworkRefreshCadence(t *testing.T) {
	n := newTestNetwork(DefaultNetworkConfig())

	n.Step(0)
	if n.Refreshes() != 1 {
		t.Fatalf("refreshes after first step = %d, want 1", n.Refreshes())
	}
	n.Step(16 * time.Millisecond)
	if n.Refreshes() != 1 {
		t.Errorf("refreshes at 16ms = %d, want 1", n.Refreshes())
	}
	// 60 Hz ticks, every 5th tick: the next bucket starts at 5/60 s.
	n.Step(84 * time.Millisecond)
	if n.Refreshes() != 2 {
		t.Errorf("refreshes at 84ms = %d, want 2", n.Refreshes())
	}
	n.Step(90 * time.Millisecond)
	if n.Refreshes() != 2 {
		t.Errorf("refreshes at 90ms = %d, want 2", n.Refreshes())
	}
}

func TestNetworkPointerSmoothing(t *testing.T) {
	n := newTestNetwork(DefaultNetworkConfig())
	n.SetPointer(1, -1)
	if p := n.Pointer(); !approx(p.X, 0.05, 1e-9) || !approx(p.Y, -0.05, 1e-9) {
		t.Errorf("pointer = %+v, want (0.05, -0.05)", p)
	}
	for i := 0; i < 500; i++ {
		n.SetPointer(1, -1)
	}
	if p := n.Pointer(); !approx(p.X, 1, 1e-3) || !approx(p.Y, -1, 1e-3) {
		t.Errorf("pointer after convergence = %+v", p)
	}

	n.Step(0)
	rot := n.Rotation()
	if rot.Y <= 0 || rot.X >= 0 {
		t.Errorf("rotation = %+v, want yaw > 0 and pitch < 0", rot)
	}
}

func TestNetworkScrollParallax(t *testing.T) {
	cfg := DefaultNetworkConfig()
	n := newTestNetwork(cfg)
	n.SetScroll(1000)
	n.Step(0)
	if want := cfg.CameraDistance + 1; !approx(n.CameraZ(), want, 1e-9) {
		t.Errorf("cameraZ = %v, want %v", n.CameraZ(), want)
	}
	n.SetScroll(0)
	n.Step(16 * time.Millisecond)
	if n.CameraZ() != cfg.CameraDistance {
		t.Errorf("cameraZ = %v, want %v", n.CameraZ(), cfg.CameraDistance)
	}
}

// stillNetwork returns a network with drift and pointer pull switched off,
// so a step moves particles by their velocity alone.
func stillNetwork(count int) *Network {
	cfg := DefaultNetworkConfig()
	cfg.NodeCount = count
	cfg.DriftSpeed = 0
	return newTestNetwork(cfg)
}

func TestNetworkBoundaryReturn(t *testing.T) {
	n := stillNetwork(1)
	n.cfg.MouseInfluence = 0
	cfg := n.cfg
	half := cfg.Spread.X / 2

	p := &n.Particles[0]
	p.Position = Vec3{X: half + 1}
	p.Velocity = Vec3{X: 0.1, Y: 0.002}
	n.Step(0)

	moved := half + 1.1
	overshoot := moved - half
	if want := moved - overshoot*cfg.BoundaryReturn; !approx(p.Position.X, want, 1e-12) {
		t.Errorf("X = %v, want %v", p.Position.X, want)
	}
	if want := 0.1 * cfg.BoundaryDamping * cfg.Damping; !approx(p.Velocity.X, want, 1e-12) {
		t.Errorf("VX = %v, want %v", p.Velocity.X, want)
	}
	// Axes inside the box only decay.
	if want := 0.002 * cfg.Damping; !approx(p.Velocity.Y, want, 1e-12) {
		t.Errorf("VY = %v, want %v", p.Velocity.Y, want)
	}

	// The negative side pulls back toward -half.
	p.Position = Vec3{Z: -cfg.Spread.Z/2 - 2}
	p.Velocity = Vec3{}
	n.Step(0)
	if want := -cfg.Spread.Z/2 - 2*(1-cfg.BoundaryReturn); !approx(p.Position.Z, want, 1e-12) {
		t.Errorf("Z = %v, want %v", p.Position.Z, want)
	}
}

func TestNetworkPointerAttraction(t *testing.T) {
	n := stillNetwork(3)
	cfg := n.cfg
	// A centered pointer maps to the origin.
	n.Particles[0].Position = Vec3{X: 1}
	n.Particles[1].Position = Vec3{X: cfg.MouseMinDistance / 2}
	n.Particles[2].Position = Vec3{X: cfg.MouseInfluence + 1}
	for i := range n.Particles {
		n.Particles[i].Velocity = Vec3{}
	}
	n.Step(0)

	pulled := n.Particles[0].Velocity
	force := (cfg.MouseInfluence - 1) * cfg.MouseForce
	if want := -1 * force * cfg.Damping; !approx(pulled.X, want, 1e-15) {
		t.Errorf("pulled VX = %v, want %v", pulled.X, want)
	}
	if pulled.X >= 0 || pulled.Y != 0 || pulled.Z != 0 {
		t.Errorf("pulled velocity = %+v, want toward the pointer on X only", pulled)
	}
	if v := n.Particles[1].Velocity; v != (Vec3{}) {
		t.Errorf("particle under the pointer moved: %+v", v)
	}
	if v := n.Particles[2].Velocity; v != (Vec3{}) {
		t.Errorf("particle out of reach moved: %+v", v)
	}

	// Pointer at the top-right corner maps to (spread.X/3, spread.Y/3).
	n.pointer = Vec2{X: 1, Y: 1}
	target := Vec3{X: cfg.Spread.X / 3, Y: cfg.Spread.Y / 3}
	n.Particles[0].Position = target.Add(Vec3{X: -0.5, Y: -0.5})
	n.Particles[0].Velocity = Vec3{}
	n.Step(0)
	if v := n.Particles[0].Velocity; v.X <= 0 || v.Y <= 0 {
		t.Errorf("velocity = %+v, want toward the mapped pointer", v)
	}
}

func TestNetworkOvershootBounded(t *testing.T) {
	cfg := DefaultNetworkConfig()
	n := newTestNetwork(cfg)
	for i := range n.Particles {
		n.Particles[i].Velocity = Vec3{0.5, -0.5, 0.5}
	}
	// Outward travel past a face is at most the damped sum of the entry
	// speed, plus slack for drift and pointer pull.
	limit := 0.5/(1-cfg.BoundaryDamping*cfg.Damping) + 1
	half := cfg.Spread.Scale(0.5)

	worst := 0.0
	const frames = 20000
	for f := 0; f < frames; f++ {
		ft := float64(f)
		n.SetPointer(math.Sin(ft*0.01), math.Cos(ft*0.013))
		n.Step(time.Duration(f) * frameDuration)
		for i := range n.Particles {
			pos := n.Particles[i].Position
			worst = math.Max(worst, math.Abs(pos.X)-half.X)
			worst = math.Max(worst, math.Abs(pos.Y)-half.Y)
			worst = math.Max(worst, math.Abs(pos.Z)-half.Z)
		}
	}
	if worst > limit {
		t.Errorf("max overshoot = %v, want at most %v", worst, limit)
	}
	if worst <= 0 {
		t.Error("particles never left the box; the run does not exercise the boundary")
	}
	if len(n.Particles) != cfg.NodeCount {
		t.Errorf("particles = %d, want %d", len(n.Particles), cfg.NodeCount)
	}
	if want := int(int64(frames-1)*int64(frameDuration)*int64(cfg.RefreshRate)/int64(time.Second))/cfg.RefreshCadence + 1; n.Refreshes() != want {
		t.Errorf("refreshes = %d, want %d", n.Refreshes(), want)
	}
}

func TestNetworkProject(t *testing.T) {
	n := newTestNetwork(DefaultNetworkConfig())
	n.Resize(1280, 800)

	center := n.project(Vec3{})
	if !center.Visible || !approx(center.X, 640, 1e-9) || !approx(center.Y, 400, 1e-9) {
		t.Errorf("origin projects to %+v", center)
	}
	if center.Depth != 15 {
		t.Errorf("origin depth = %v, want 15", center.Depth)
	}
	near := n.project(Vec3{Z: 5})
	if near.PxScale <= center.PxScale {
		t.Errorf("nearer point scale %v <= %v", near.PxScale, center.PxScale)
	}
	if behind := n.project(Vec3{Z: 20}); behind.Visible {
		t.Error("point behind the camera should not be visible")
	}
	right := n.project(Vec3{X: 1})
	up := n.project(Vec3{Y: 1})
	if right.X <= center.X || up.Y >= center.Y {
		t.Errorf("axes: right %+v, up %+v", right, up)
	}
}

func TestNetworkFog(t *testing.T) {
	n := newTestNetwork(DefaultNetworkConfig())
	if n.fog(0) != 1 {
		t.Errorf("fog(0) = %v", n.fog(0))
	}
	if !(n.fog(10) < 1 && n.fog(40) < n.fog(10)) {
		t.Errorf("fog not decreasing: %v, %v", n.fog(10), n.fog(40))
	}
}

// --- Renderer ---

func TestNetworkRendererDisabled(t *testing.T) {
	p, clk := newTestPage(t)
	r := NewNetworkRenderer(newTestNetwork(DefaultNetworkConfig()), func() bool { return false })
	r.Mount(p)
	step(p, clk)

	if !r.Disabled() || r.Active() {
		t.Fatalf("Disabled = %v, Active = %v", r.Disabled(), r.Active())
	}
	run(p, clk, 200*time.Millisecond)
	if r.Network().Refreshes() != 0 {
		t.Errorf("disabled network stepped %d times", r.Network().Refreshes())
	}
	if p.layers.len() != 0 {
		t.Errorf("layers = %d, want 0", p.layers.len())
	}
}

func TestNetworkRendererFollowsPage(t *testing.T) {
	p, clk := newTestPage(t)
	tallContent(p, 3000)
	r := NewNetworkRenderer(newTestNetwork(DefaultNetworkConfig()), func() bool { return true })
	r.Mount(p)
	step(p, clk)
	if !r.Active() || r.Disabled() {
		t.Fatalf("Active = %v, Disabled = %v", r.Active(), r.Disabled())
	}
	if r.Network().Refreshes() != 1 {
		t.Errorf("refreshes = %d, want 1", r.Network().Refreshes())
	}

	p.InjectMove(1280, 0)
	step(p, clk)
	if ptr := r.Network().Pointer(); !approx(ptr.X, 0.05, 1e-9) || !approx(ptr.Y, 0.05, 1e-9) {
		t.Errorf("pointer = %+v, want (0.05, 0.05)", ptr)
	}

	p.Viewport().SetScroll(500)
	step(p, clk)
	if !approx(r.Network().CameraZ(), 15.5, 1e-9) {
		t.Errorf("cameraZ = %v, want 15.5", r.Network().CameraZ())
	}

	p.Resize(1000, 600)
	step(p, clk)
	if n := r.Network(); n.width != 1000 || n.height != 600 {
		t.Errorf("network size = %vx%v, want 1000x600", n.width, n.height)
	}
	if r.lines != nil {
		t.Error("line buffer kept across a resize")
	}

	r.Stop()
	before := r.Network().Pointer()
	p.InjectMove(0, 800)
	step(p, clk)
	if r.Network().Pointer() != before {
		t.Error("pointer moved after Stop")
	}
	if r.Active() {
		t.Error("still active after Stop")
	}
	if p.layers.len() != 0 {
		t.Errorf("layers after Stop = %d, want 0", p.layers.len())
	}
}
