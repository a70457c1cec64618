package folio

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// NetworkConfig configures the particle network background. Distances are
// in world units; per-frame rates assume one Step per display refresh.
type NetworkConfig struct {
	Enabled            bool     `koanf:"enabled" yaml:"enabled"`
	NodeCount          int      `koanf:"node_count" yaml:"node_count"`
	ConnectionDistance float64  `koanf:"connection_distance" yaml:"connection_distance"`
	NodeSize           Range    `koanf:"node_size" yaml:"node_size"`
	BaseOpacity        Range    `koanf:"base_opacity" yaml:"base_opacity"`
	Palette            []uint32 `koanf:"palette" yaml:"palette"`
	ConnectionColor    uint32   `koanf:"connection_color" yaml:"connection_color"`
	FogColor           uint32   `koanf:"fog_color" yaml:"fog_color"`
	FogDensity         float64  `koanf:"fog_density" yaml:"fog_density"`

	// Spread is the full extent of the particle volume on each axis.
	Spread         Vec3 `koanf:"spread" yaml:"spread"`
	VelocitySpread Vec3 `koanf:"velocity_spread" yaml:"velocity_spread"`

	MouseInfluence   float64 `koanf:"mouse_influence" yaml:"mouse_influence"`
	MouseForce       float64 `koanf:"mouse_force" yaml:"mouse_force"`
	MouseMinDistance float64 `koanf:"mouse_min_distance" yaml:"mouse_min_distance"`
	PointerSmoothing float64 `koanf:"pointer_smoothing" yaml:"pointer_smoothing"`

	PulseSpeed      float64 `koanf:"pulse_speed" yaml:"pulse_speed"`
	DriftSpeed      float64 `koanf:"drift_speed" yaml:"drift_speed"`
	BoundaryReturn  float64 `koanf:"boundary_return" yaml:"boundary_return"`
	BoundaryDamping float64 `koanf:"boundary_damping" yaml:"boundary_damping"`
	Damping         float64 `koanf:"damping" yaml:"damping"`
	LineOpacity     float64 `koanf:"line_opacity" yaml:"line_opacity"`

	CameraDistance    float64 `koanf:"camera_distance" yaml:"camera_distance"`
	FOV               float64 `koanf:"fov" yaml:"fov"` // vertical, degrees
	RotationSmoothing float64 `koanf:"rotation_smoothing" yaml:"rotation_smoothing"`
	Tilt              float64 `koanf:"tilt" yaml:"tilt"`
	Parallax          float64 `koanf:"parallax" yaml:"parallax"` // camera depth per scrolled pixel

	// Connections are rebuilt whenever floor(elapsed*RefreshRate)/RefreshCadence
	// changes.
	RefreshRate    float64 `koanf:"refresh_rate" yaml:"refresh_rate"`
	RefreshCadence int     `koanf:"refresh_cadence" yaml:"refresh_cadence"`
}

// DefaultNetworkConfig returns the site's network settings.
func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		Enabled:            true,
		NodeCount:          60,
		ConnectionDistance: 4,
		NodeSize:           Range{Min: 0.03, Max: 0.08},
		BaseOpacity:        Range{Min: 0.4, Max: 0.7},
		Palette:            []uint32{0x4f6d7a, 0x6b8e9f, 0x8fa8b8},
		ConnectionColor:    0x3d5a6c,
		FogColor:           0x0a1628,
		FogDensity:         0.025,
		Spread:             Vec3{25, 14, 12},
		VelocitySpread:     Vec3{0.005, 0.005, 0.003},
		MouseInfluence:     1.5,
		MouseForce:         0.0002,
		MouseMinDistance:   0.1,
		PointerSmoothing:   0.05,
		PulseSpeed:         0.001,
		DriftSpeed:         0.0003,
		BoundaryReturn:     0.01,
		BoundaryDamping:    0.95,
		Damping:            0.995,
		LineOpacity:        0.15,
		CameraDistance:     15,
		FOV:                50,
		RotationSmoothing:  0.02,
		Tilt:               0.08,
		Parallax:           0.001,
		RefreshRate:        60,
		RefreshCadence:     5,
	}
}

// Validate checks the network settings.
func (c NetworkConfig) Validate() error {
	if c.NodeCount <= 0 {
		return fmt.Errorf("node_count must be positive, got %d", c.NodeCount)
	}
	if c.ConnectionDistance <= 0 {
		return fmt.Errorf("connection_distance must be positive")
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("palette must not be empty")
	}
	if c.FOV <= 0 || c.FOV >= 180 {
		return fmt.Errorf("fov must be in (0, 180), got %g", c.FOV)
	}
	if c.RefreshRate <= 0 || c.RefreshCadence <= 0 {
		return fmt.Errorf("refresh_rate and refresh_cadence must be positive")
	}
	if c.Spread.X <= 0 || c.Spread.Y <= 0 || c.Spread.Z <= 0 {
		return fmt.Errorf("spread must be positive on every axis")
	}
	return nil
}

// Particle is one animated point of the network.
type Particle struct {
	Position    Vec3
	Velocity    Vec3
	Phase       float64
	Color       Color
	BaseOpacity float64
	BaseSize    float64

	// Opacity and Scale are the pulse-modulated render values from the last Step.
	Opacity float64
	Scale   float64
	// RingOpacity is the opacity of the faint halo around the particle.
	RingOpacity float64
}

// Connection links two particles closer than the connection distance at the
// last refresh.
type Connection struct {
	A, B     int
	Distance float64
	Opacity  float64
}

// Network is the particle simulation. It knows nothing about drawing; a
// NetworkRenderer projects it onto the screen.
type Network struct {
	cfg         NetworkConfig
	Particles   []Particle
	Connections []Connection

	pointer  Vec2 // smoothed, normalized device coordinates
	rotation Vec2 // camera pitch (X) and yaw (Y), radians
	cameraZ  float64
	scrollY  float64
	width    float64
	height   float64

	bucket    int64
	refreshed bool
	refreshes int
}

// NewNetwork generates cfg.NodeCount particles inside the spread volume. A
// nil rng is seeded from the clock.
func NewNetwork(cfg NetworkConfig, rng *rand.Rand) *Network {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	n := &Network{
		cfg:       cfg,
		Particles: make([]Particle, cfg.NodeCount),
		cameraZ:   cfg.CameraDistance,
		width:     defaultViewportWidth,
		height:    defaultViewportHeight,
	}
	for i := range n.Particles {
		p := &n.Particles[i]
		p.BaseSize = cfg.NodeSize.Random(rng)
		p.Color = ColorHex(cfg.Palette[rng.IntN(len(cfg.Palette))])
		p.Position = Vec3{
			spread(rng, cfg.Spread.X),
			spread(rng, cfg.Spread.Y),
			spread(rng, cfg.Spread.Z),
		}
		p.Velocity = Vec3{
			spread(rng, cfg.VelocitySpread.X),
			spread(rng, cfg.VelocitySpread.Y),
			spread(rng, cfg.VelocitySpread.Z),
		}
		p.Phase = rng.Float64() * 2 * math.Pi
		p.BaseOpacity = cfg.BaseOpacity.Random(rng)
		p.pulse(0)
	}
	return n
}

// Config returns the network's configuration.
func (n *Network) Config() NetworkConfig {
	return n.cfg
}

// SetPointer moves the smoothed pointer toward (nx, ny), given in normalized
// device coordinates (-1..1, Y up).
func (n *Network) SetPointer(nx, ny float64) {
	s := n.cfg.PointerSmoothing
	n.pointer.X += (nx - n.pointer.X) * s
	n.pointer.Y += (ny - n.pointer.Y) * s
}

// Pointer returns the smoothed pointer position.
func (n *Network) Pointer() Vec2 {
	return n.pointer
}

// SetScroll records the page scroll offset used for camera parallax.
func (n *Network) SetScroll(y float64) {
	n.scrollY = y
}

// Resize sets the viewport size the network is projected onto.
func (n *Network) Resize(w, h float64) {
	if w > 0 && h > 0 {
		n.width, n.height = w, h
	}
}

// Rotation returns the camera's current pitch and yaw.
func (n *Network) Rotation() Vec2 {
	return n.rotation
}

// CameraZ returns the camera's current depth.
func (n *Network) CameraZ() float64 {
	return n.cameraZ
}

// Refreshes returns how many times connections were rebuilt.
func (n *Network) Refreshes() int {
	return n.refreshes
}

// Step advances the simulation by one frame. elapsed is the time since the
// network started and drives the drift waves and connection cadence.
func (n *Network) Step(elapsed time.Duration) {
	cfg := &n.cfg
	t := elapsed.Seconds()

	targetX := n.pointer.Y * cfg.Tilt
	targetY := n.pointer.X * cfg.Tilt
	n.rotation.X += (targetX - n.rotation.X) * cfg.RotationSmoothing
	n.rotation.Y += (targetY - n.rotation.Y) * cfg.RotationSmoothing

	n.cameraZ = cfg.CameraDistance + n.scrollY*cfg.Parallax

	mouse := Vec2{
		X: n.pointer.X * cfg.Spread.X / 3,
		Y: n.pointer.Y * cfg.Spread.Y / 3,
	}
	bounds := cfg.Spread.Scale(0.5)

	for i := range n.Particles {
		p := &n.Particles[i]
		fi := float64(i)

		drift := Vec3{
			math.Sin(t*0.2+fi*0.5) * cfg.DriftSpeed,
			math.Cos(t*0.15+fi*0.3) * cfg.DriftSpeed,
			math.Sin(t*0.1+fi*0.7) * cfg.DriftSpeed * 0.5,
		}
		p.Position = p.Position.Add(p.Velocity).Add(drift)

		for axis := 0; axis < 3; axis++ {
			pos := p.Position.axis(axis)
			bound := *bounds.axis(axis)
			if math.Abs(*pos) > bound {
				*pos -= (*pos - math.Copysign(bound, *pos)) * cfg.BoundaryReturn
				*p.Velocity.axis(axis) *= cfg.BoundaryDamping
			}
		}

		dx := mouse.X - p.Position.X
		dy := mouse.Y - p.Position.Y
		dist := math.Hypot(dx, dy)
		if dist < cfg.MouseInfluence && dist > cfg.MouseMinDistance {
			force := (cfg.MouseInfluence - dist) * cfg.MouseForce
			p.Velocity.X += dx * force
			p.Velocity.Y += dy * force
		}

		p.Velocity = p.Velocity.Scale(cfg.Damping)
		p.pulse(cfg.PulseSpeed)
	}

	bucket := int64(math.Floor(t*cfg.RefreshRate)) / int64(cfg.RefreshCadence)
	if !n.refreshed || bucket != n.bucket {
		n.bucket = bucket
		n.refreshed = true
		n.RefreshConnections()
	}
}

// pulse advances the breathing phase and derives the render values.
func (p *Particle) pulse(speed float64) {
	p.Phase += speed
	v := math.Sin(p.Phase)*0.15 + 0.85
	p.Opacity = p.BaseOpacity * v
	p.Scale = 0.95 + v*0.1
	p.RingOpacity = 0.05 + v*0.05
}

// RefreshConnections rebuilds the connection set from scratch: every
// unordered pair strictly closer than the connection distance, with opacity
// falling linearly to zero at that distance.
func (n *Network) RefreshConnections() {
	n.refreshes++
	n.Connections = n.Connections[:0]
	limit := n.cfg.ConnectionDistance
	for i := 0; i < len(n.Particles); i++ {
		for j := i + 1; j < len(n.Particles); j++ {
			d := n.Particles[i].Position.Dist(n.Particles[j].Position)
			if d < limit {
				n.Connections = append(n.Connections, Connection{
					A: i, B: j, Distance: d,
					Opacity: ConnectionOpacity(d, limit, n.cfg.LineOpacity),
				})
			}
		}
	}
}

// ConnectionOpacity returns the line opacity for two particles d apart.
func ConnectionOpacity(d, limit, maxOpacity float64) float64 {
	if d >= limit {
		return 0
	}
	return (1 - d/limit) * maxOpacity
}

// projected is a particle position on screen.
type projected struct {
	X, Y    float64
	Depth   float64 // distance in front of the camera
	PxScale float64 // screen pixels per world unit at this depth
	Visible bool
}

const nearPlane, farPlane = 0.1, 100.0

// project maps a world point to screen coordinates using the camera's
// position and rotation.
func (n *Network) project(p Vec3) projected {
	w, h := n.width, n.height
	v := p.Sub(Vec3{0, 0, n.cameraZ})

	// Inverse camera rotation: undo pitch, then yaw.
	sx, cx := math.Sincos(-n.rotation.X)
	v = Vec3{v.X, v.Y*cx - v.Z*sx, v.Y*sx + v.Z*cx}
	sy, cy := math.Sincos(-n.rotation.Y)
	v = Vec3{v.X*cy + v.Z*sy, v.Y, -v.X*sy + v.Z*cy}

	depth := -v.Z
	if depth < nearPlane || depth > farPlane {
		return projected{}
	}
	f := 1 / math.Tan(n.cfg.FOV*math.Pi/360)
	aspect := w / h
	ndcX := v.X * f / aspect / depth
	ndcY := v.Y * f / depth
	return projected{
		X:       (ndcX + 1) / 2 * w,
		Y:       (1 - ndcY) / 2 * h,
		Depth:   depth,
		PxScale: f / depth * h / 2,
		Visible: ndcX >= -1.2 && ndcX <= 1.2 && ndcY >= -1.2 && ndcY <= 1.2,
	}
}

// fog returns the visibility factor at depth (exponential squared fog).
func (n *Network) fog(depth float64) float64 {
	d := n.cfg.FogDensity * depth
	return math.Exp(-d * d)
}
