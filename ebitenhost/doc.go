// Package ebitenhost runs an arbor view tree inside an [Ebitengine] game.
//
// A [Host] implements ebiten.Game. Every Update it polls mouse, touch and
// modifier state, hit-tests the visible views through their composed
// placement (left/top offset followed by the view transform, down from the
// root), and dispatches the host names of the logical pointer events to
// the representation under the pointer. It then drains the arbor scheduler
// and advances its animation runner. Draw paints each visible view whose
// representation has a background style as a filled quad.
//
//	root, _ := layout.Build(dom.Factory)
//	host := ebitenhost.New(root, ebitenhost.Config{Width: 640, Height: 480})
//	ebiten.RunGame(host)
//
// Input can be injected (InjectClick, InjectDrag, ...) or scripted with
// LoadScript, so hosts can be driven without a window.
//
// [Ebitengine]: https://ebitengine.org
package ebitenhost
