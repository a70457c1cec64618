package folio

import "github.com/tanema/gween/ease"

const hoverDuration = 0.3

// parallax drifts the hero content down at a fraction of the scroll speed
// and fades it out over the first screen height.
func (n *Nav) parallax(y float64) {
	hero := n.hero
	if hero == nil {
		return
	}
	h := n.page.Viewport().Height
	if h <= 0 || y >= h {
		return
	}
	hero.SetTranslate(hero.TranslateX, y*n.cfg.ParallaxFactor)
	hero.SetAlpha(1 - y/h)
}

// hoverStyle is the presentation a hover effect animates toward.
type hoverStyle struct {
	scale  float64
	lift   float64
	shadow float64
}

var (
	restStyle      = hoverStyle{scale: 1}
	skillTagRaised = hoverStyle{scale: 1.1, lift: -2}
	tagRaised      = hoverStyle{scale: 1.1, shadow: 12}
)

// Hover grows skill tags and project tags under the pointer.
type Hover struct {
	page   *Page
	active map[*Node]*TweenGroup
}

// NewHover makes every .skill-tag and .tag hoverable.
func NewHover(p *Page) *Hover {
	h := &Hover{page: p, active: make(map[*Node]*TweenGroup)}
	for _, n := range p.Root().FindByClass("skill-tag") {
		h.attach(n, skillTagRaised)
	}
	for _, n := range p.Root().FindByClass("tag") {
		if n.HasClass("skill-tag") {
			continue
		}
		h.attach(n, tagRaised)
	}
	return h
}

func (h *Hover) attach(n *Node, raised hoverStyle) {
	n.Interactable = true
	n.AddPointerEnterListener(func(PointerContext) { h.animate(n, raised) })
	n.AddPointerLeaveListener(func(PointerContext) { h.animate(n, restStyle) })
}

// animate replaces any running hover tween on n with one toward s.
func (h *Hover) animate(n *Node, s hoverStyle) {
	if g := h.active[n]; g != nil {
		g.Stop()
	}
	g := &TweenGroup{target: n}
	g.add(&n.ScaleX, s.scale, hoverDuration, ease.OutQuad)
	g.add(&n.ScaleY, s.scale, hoverDuration, ease.OutQuad)
	g.add(&n.TranslateY, s.lift, hoverDuration, ease.OutQuad)
	g.add(&n.Shadow, s.shadow, hoverDuration, ease.OutQuad)
	g.OnComplete = func() { delete(h.active, n) }
	h.active[n] = h.page.Animate(g)
}
