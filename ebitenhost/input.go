package ebitenhost

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/arbor"
)

// Host event names dispatched besides the logical pointer events.
const (
	EventClick        = "click"
	EventPointerEnter = "pointerenter"
	EventPointerLeave = "pointerleave"
)

// mousePointer is the pointer id of the mouse; touches use their id + 1.
const mousePointer = 0

// InputSource is the per-frame input state the host polls.
type InputSource interface {
	Cursor() (x, y float64)
	// MouseButtons reports whether a button is held and which one,
	// preferring left, then right, then middle.
	MouseButtons() (pressed bool, button arbor.MouseButton)
	// Touches appends the active touch points to buf.
	Touches(buf []arbor.TouchPoint) []arbor.TouchPoint
	Modifiers() arbor.KeyModifiers
}

// dispatcher is implemented by representations that can deliver native
// events (dom.Element).
type dispatcher interface {
	Dispatch(ev *arbor.NativeEvent)
	DispatchBubbling(ev *arbor.NativeEvent)
}

type pointerState struct {
	down        bool
	button      arbor.MouseButton
	lastX       float64
	lastY       float64
	pressTarget *arbor.View
	hover       *arbor.View
}

func (h *Host) pointer(id int) *pointerState {
	ps, ok := h.pointers[id]
	if !ok {
		ps = &pointerState{}
		h.pointers[id] = ps
	}
	return ps
}

// processInput is called from Update. Injected events replace the mouse
// for the frame; touches are always polled.
func (h *Host) processInput() {
	mods := h.input.Modifiers()
	if !h.processInjectedInput(mods) {
		x, y := h.input.Cursor()
		pressed, button := h.input.MouseButtons()
		h.processPointer(mousePointer, x, y, pressed, button, mods, nil)
	}
	h.processTouches(mods)
}

func (h *Host) processTouches(mods arbor.KeyModifiers) {
	h.touchBuf = h.input.Touches(h.touchBuf[:0])
	touches := slices.Clone(h.touchBuf)
	active := make(map[int]bool, len(touches))
	for _, tp := range touches {
		id := tp.ID + 1
		active[id] = true
		h.processPointer(id, tp.X, tp.Y, true, arbor.MouseButtonLeft, mods, touches)
	}
	for id, ps := range h.pointers {
		if id == mousePointer || active[id] {
			continue
		}
		if ps.down {
			h.processPointer(id, ps.lastX, ps.lastY, false, arbor.MouseButtonLeft, mods, touches)
		}
		delete(h.pointers, id)
	}
}

// processPointer runs the pointer state machine for a single pointer.
func (h *Host) processPointer(id int, x, y float64, pressed bool, button arbor.MouseButton, mods arbor.KeyModifiers, touches []arbor.TouchPoint) {
	ps := h.pointer(id)
	target := h.HitTest(x, y)

	fire := func(v *arbor.View, logical string, bubbles bool) {
		h.dispatch(v, &arbor.NativeEvent{
			Type:      arbor.HostEventName(logical),
			X:         x,
			Y:         y,
			Button:    ps.button,
			Modifiers: mods,
			Touches:   touches,
		}, bubbles)
	}

	if target != ps.hover {
		if ps.hover != nil {
			fire(ps.hover, EventPointerLeave, false)
		}
		if target != nil {
			fire(target, EventPointerEnter, false)
		}
		ps.hover = target
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.pressTarget = target
		fire(target, arbor.PointerStart, true)
	case !pressed && ps.down:
		fire(target, arbor.PointerEnd, true)
		if target != nil && target == ps.pressTarget {
			fire(target, EventClick, true)
		}
		ps.down = false
		ps.pressTarget = nil
	case x != ps.lastX || y != ps.lastY:
		moveTarget := target
		if ps.down && ps.pressTarget != nil {
			// Implicit capture while the button is held.
			moveTarget = ps.pressTarget
		}
		if !ps.down {
			ps.button = button
		}
		fire(moveTarget, arbor.PointerMove, true)
	}
	ps.lastX, ps.lastY = x, y
}

// dispatch delivers ev to v's representation. Views whose representation
// cannot dispatch are skipped.
func (h *Host) dispatch(v *arbor.View, ev *arbor.NativeEvent, bubbles bool) {
	if v == nil {
		return
	}
	rep := v.Representation()
	d, ok := rep.(dispatcher)
	if !ok {
		return
	}
	ev.Target = rep
	if bubbles {
		d.DispatchBubbling(ev)
		return
	}
	d.Dispatch(ev)
}

// --- ebiten input ---

type ebitenInput struct {
	ids []ebiten.TouchID
}

func (in *ebitenInput) Cursor() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y)
}

func (in *ebitenInput) MouseButtons() (bool, arbor.MouseButton) {
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		return true, arbor.MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		return true, arbor.MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		return true, arbor.MouseButtonMiddle
	}
	return false, arbor.MouseButtonLeft
}

func (in *ebitenInput) Touches(buf []arbor.TouchPoint) []arbor.TouchPoint {
	in.ids = ebiten.AppendTouchIDs(in.ids[:0])
	for _, id := range in.ids {
		x, y := ebiten.TouchPosition(id)
		buf = append(buf, arbor.TouchPoint{ID: int(id), X: float64(x), Y: float64(y)})
	}
	return buf
}

// Modifiers reads the current keyboard modifier state.
func (in *ebitenInput) Modifiers() arbor.KeyModifiers {
	var mods arbor.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= arbor.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= arbor.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= arbor.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= arbor.ModMeta
	}
	return mods
}
