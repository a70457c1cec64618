package folio

import (
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	shadowColor      = Color{0, 0, 0, 0.35}
	inputBorderColor = ColorHex(0x3d5a6c)
	focusBorderColor = ColorHex(0x8fa8b8)
	placeholderAlpha = 0.45
)

// Draw renders the page: clear color, background layers, scrolling content
// through the viewport, then the fixed overlay.
func (p *Page) Draw(screen *ebiten.Image) {
	var t0 time.Time
	if p.debug {
		t0 = time.Now()
		p.frameStats.drawn = 0
		p.frameStats.culled = 0
		p.frameStats.tweens = len(p.tweens)
	}

	screen.Fill(p.ClearColor.toRGBA())

	p.layers.each(func(draw func(*ebiten.Image)) { draw(screen) })

	b := screen.Bounds()
	screenRect := Rect{X: 0, Y: 0, Width: float64(b.Dx()), Height: float64(b.Dy())}
	p.drawNode(screen, p.root, p.viewport.viewTransform(), screenRect)
	p.drawNode(screen, p.overlay, identityTransform, screenRect)

	if p.debug {
		p.frameStats.drawTime = time.Since(t0)
		p.debugLog()
	}

	p.flushScreenshots(screen)
}

// drawNode draws n and its subtree. Nodes outside the screen are culled, but
// children are always visited because they may extend past their parent.
func (p *Page) drawNode(dst *ebiten.Image, n *Node, view [6]float64, screenRect Rect) {
	if !n.Visible || n.disposed {
		return
	}
	m := multiplyAffine(view, n.worldTransform)
	b := worldAABB(m, n.Width, n.Height)

	if n.worldAlpha > 0 && b.Intersects(screenRect) {
		drawBox(dst, n, m, b)
		p.frameStats.drawn++
	} else {
		p.frameStats.culled++
	}

	for _, child := range n.children {
		p.drawNode(dst, child, view, screenRect)
	}
}

// drawBox draws one element: shadow, background, image, border, then text.
func drawBox(dst *ebiten.Image, n *Node, m [6]float64, b Rect) {
	alpha := n.worldAlpha
	x, y, w, h := float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height)

	if n.Shadow > 0 && n.Background.A > 0 {
		off := float32(n.Shadow / 3)
		c := shadowColor.WithAlpha(shadowColor.A * alpha * min(n.Shadow/12, 1))
		vector.DrawFilledRect(dst, x+off/2, y+off, w, h, c.toRGBA(), true)
	}

	if n.Background.A > 0 {
		c := n.Background.WithAlpha(n.Background.A * alpha)
		vector.DrawFilledRect(dst, x, y, w, h, c.toRGBA(), true)
	}

	if n.Image != nil {
		ib := n.Image.Bounds()
		if ib.Dx() > 0 && ib.Dy() > 0 {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(b.Width/float64(ib.Dx()), b.Height/float64(ib.Dy()))
			op.GeoM.Translate(b.X, b.Y)
			op.ColorScale.ScaleAlpha(float32(alpha))
			op.Filter = ebiten.FilterLinear
			dst.DrawImage(n.Image, op)
		}
	}

	if n.Type == NodeTypeInput {
		border := inputBorderColor
		width := float32(1)
		if n.HasClass("focused") {
			border = focusBorderColor
			width = 2
		}
		vector.StrokeRect(dst, x, y, w, h, width, border.WithAlpha(alpha).toRGBA(), true)
	}

	drawText(dst, n, m, b)
}

// drawText draws the node's wrapped text inside its box, scaled with the
// node's transform.
func drawText(dst *ebiten.Image, n *Node, m [6]float64, b Rect) {
	s, placeholder := displayText(n)
	if s == "" {
		return
	}
	lines := n.textLines()
	face := uiFont().Face(n.FontSize)
	pad := textPadding(n)

	c := n.Color.WithAlpha(n.Color.A * n.worldAlpha)
	if placeholder {
		c.A *= placeholderAlpha
	}

	op := &text.DrawOptions{}
	op.LineSpacing = LineHeight(n.FontSize)
	op.GeoM.Translate(pad, pad)
	if n.Type == NodeTypeButton || n.Type == NodeTypeInput {
		// Center single-line controls vertically.
		th := float64(len(lines)) * op.LineSpacing
		op.GeoM.Translate(0, (n.Height-2*pad-th)/2)
	}
	op.GeoM.Scale(m[0], m[3])
	op.GeoM.Translate(b.X, b.Y)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	text.Draw(dst, strings.Join(lines, "\n"), face, op)
}
