package ebitenhost

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsInterval is how often, in seconds, the overlay text is refreshed.
const fpsInterval = 0.5

// fpsOverlay shows the current FPS and TPS. It is drawn after screenshots
// are taken so captures stay deterministic.
type fpsOverlay struct {
	img     *ebiten.Image
	elapsed float32
	label   string
}

func (o *fpsOverlay) update(dt float32) {
	o.elapsed += dt
	if o.label != "" && o.elapsed < fpsInterval {
		return
	}
	o.elapsed = 0
	o.label = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
}

func (o *fpsOverlay) draw(screen *ebiten.Image) {
	if o.label == "" {
		return
	}
	if o.img == nil {
		// 100x32 fits "FPS: 60.0\nTPS: 60.0".
		o.img = ebiten.NewImage(100, 32)
	}
	o.img.Clear()
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.label)
	screen.DrawImage(o.img, nil)
}
