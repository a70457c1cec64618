package folio

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const fpsRefresh = 500 * time.Millisecond

// ShowFPS adds a small overlay in the bottom-left corner showing the current
// FPS, TPS, and scroll position, refreshed every half second. The returned
// handle stops the refresh; the node stays until disposed.
func (p *Page) ShowFPS() (*Node, *LoopHandle) {
	// 120x48 is enough for three DebugPrint lines.
	img := ebiten.NewImage(120, 48)

	node := NewImage("fps", "")
	node.Image = img
	node.SetSize(120, 48)
	node.SetPosition(8, p.viewport.Height-56)
	p.overlay.AddChild(node)

	p.OnResize(func(_, h float64) {
		node.SetPosition(8, h-56)
	})

	var last time.Duration
	loop := p.scheduler.Loop(func(elapsed time.Duration) {
		if last != 0 && elapsed-last < fpsRefresh {
			return
		}
		last = elapsed

		img.Clear()
		img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nY: %.0f",
			ebiten.ActualFPS(), ebiten.ActualTPS(), p.viewport.ScrollY))
	})
	return node, loop
}
