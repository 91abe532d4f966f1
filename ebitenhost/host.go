package ebitenhost

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/arbor"
	"golang.org/x/image/math/f64"
)

// Config configures a Host. Zero fields take defaults.
type Config struct {
	// Width and Height fix the logical screen size. Zero follows the window.
	Width, Height int
	// Background is the clear color: a color name or #rgb / #rrggbb.
	Background string
	// TPS is the update rate used to derive the per-frame animation step.
	// Defaults to ebiten.DefaultTPS.
	TPS int
	// Input overrides the polled ebiten input, mainly for tests.
	Input InputSource
	// ScreenshotDir receives screenshot PNGs. Defaults to "screenshots".
	ScreenshotDir string
	// ShowFPS draws an FPS/TPS overlay in the top-left corner.
	ShowFPS bool
}

// Host runs a view tree as an ebiten.Game. Each Update polls input,
// dispatches pointer events to the representation of the view under the
// pointer, drains the arbor scheduler and advances animations. Draw paints
// every visible view with a background style as a filled quad, then the
// view's own text.
type Host struct {
	root     *arbor.View
	input    InputSource
	animator *arbor.AnimationRunner
	width    int
	height   int
	clear    color.RGBA
	dt       float32

	pointers    map[int]*pointerState
	touchBuf    []arbor.TouchPoint
	injectQueue []syntheticPointerEvent
	script      *ScriptRunner

	screenshotDir   string
	screenshotQueue []string

	hitBuf []*arbor.View
	fps    *fpsOverlay
	fonts  *fontCache
}

var _ ebiten.Game = (*Host)(nil)

// New creates a host over root.
func New(root *arbor.View, cfg Config) *Host {
	h := &Host{
		root:          root,
		input:         cfg.Input,
		animator:      arbor.NewAnimationRunner(),
		width:         cfg.Width,
		height:        cfg.Height,
		pointers:      make(map[int]*pointerState),
		screenshotDir: cfg.ScreenshotDir,
	}
	if h.input == nil {
		h.input = &ebitenInput{}
	}
	tps := cfg.TPS
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	h.dt = float32(1.0 / float64(tps))
	if cfg.Background != "" {
		if c, ok := ParseColor(cfg.Background); ok {
			h.clear = c
		}
	}
	if h.screenshotDir == "" {
		h.screenshotDir = "screenshots"
	}
	if cfg.ShowFPS {
		h.fps = &fpsOverlay{}
	}
	return h
}

// Root returns the root view.
func (h *Host) Root() *arbor.View {
	return h.root
}

// SetRoot replaces the root view and returns the previous one. Pointer
// state referring to the old tree is dropped.
func (h *Host) SetRoot(root *arbor.View) *arbor.View {
	old := h.root
	h.root = root
	clear(h.pointers)
	return old
}

// Animator returns the runner advanced by Update.
func (h *Host) Animator() *arbor.AnimationRunner {
	return h.animator
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if h.script != nil {
		h.script.step(h)
	}
	h.processInput()
	arbor.DefaultScheduler().RunPending()
	h.animator.Update(h.dt)
	if h.fps != nil {
		h.fps.update(h.dt)
	}
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(h.clear)
	if h.root != nil {
		h.drawView(screen, h.root, arbor.Identity, 1)
	}
	h.flushScreenshots(screen)
	if h.fps != nil {
		h.fps.draw(screen)
	}
}

// Layout implements ebiten.Game.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if h.width > 0 && h.height > 0 {
		return h.width, h.height
	}
	return outsideWidth, outsideHeight
}

// --- Placement & hit testing ---

// placement maps a view's box (0,0)-(w,h) to screen space: the parent's
// placement, then the view's left/top offset, then its own transform.
func placement(parent f64.Aff3, v *arbor.View) f64.Aff3 {
	x, y := v.Position()
	return arbor.Multiply(parent, arbor.Multiply(arbor.Translation(x, y), v.CTM()))
}

// Placement returns the screen-space placement of v's box.
func Placement(v *arbor.View) f64.Aff3 {
	if v.Parent() == nil {
		return placement(arbor.Identity, v)
	}
	return placement(Placement(v.Parent()), v)
}

// collectVisible walks the tree in painter order, skipping hidden
// subtrees.
func collectVisible(v *arbor.View, buf []*arbor.View) []*arbor.View {
	if v.Hidden() {
		return buf
	}
	buf = append(buf, v)
	for _, child := range v.AllChildren() {
		buf = collectVisible(child.AsView(), buf)
	}
	return buf
}

// HitTest returns the topmost visible view whose box contains the screen
// point, or nil. Views without a size are not hit-testable.
func (h *Host) HitTest(x, y float64) *arbor.View {
	if h.root == nil {
		return nil
	}
	h.hitBuf = collectVisible(h.root, h.hitBuf[:0])
	for i := len(h.hitBuf) - 1; i >= 0; i-- {
		v := h.hitBuf[i]
		w, ht := v.Size()
		if w == 0 && ht == 0 {
			continue
		}
		lx, ly := arbor.TransformPoint(arbor.Invert(Placement(v)), x, y)
		if (arbor.Rect{Width: w, Height: ht}).Contains(lx, ly) {
			return v
		}
	}
	return nil
}
