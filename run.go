package folio

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// Debug enables debug mode and the FPS overlay.
	Debug bool
}

// game adapts a Page to ebiten.Game.
type game struct {
	page *Page
}

func (g *game) Update() error {
	g.page.Update()
	if r := g.page.testRunner; r != nil && r.Done() && len(g.page.screenshotQueue) == 0 {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.page.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.page.Resize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run opens a resizable window and drives the page until the window closes
// or an attached test script finishes.
func Run(p *Page, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = defaultViewportWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultViewportHeight
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	p.Resize(float64(cfg.Width), float64(cfg.Height))
	p.ReadDeviceInput = true
	if cfg.Debug {
		p.SetDebugMode(true)
		p.ShowFPS()
	}

	if err := ebiten.RunGame(&game{page: p}); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
