package ebitenhost

import "github.com/phanxgames/arbor"

// syntheticPointerEvent is a single injected mouse event in screen
// coordinates.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	button  arbor.MouseButton
}

// InjectPress queues a left-button press at (x, y). The event is consumed
// on the next Update.
func (h *Host) InjectPress(x, y float64) {
	h.injectQueue = append(h.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a pointer move with the button held down. Use it
// between InjectPress and InjectRelease to simulate a drag.
func (h *Host) InjectMove(x, y float64) {
	h.injectQueue = append(h.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectHover queues a pointer move with no button held.
func (h *Host) InjectHover(x, y float64) {
	h.injectQueue = append(h.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectRelease queues a release at (x, y).
func (h *Host) InjectRelease(x, y float64) {
	h.injectQueue = append(h.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two frames.
func (h *Host) InjectClick(x, y float64) {
	h.InjectPress(x, y)
	h.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 linearly
// interpolated moves and a release at (toX, toY). Minimum frames is 2.
func (h *Host) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	h.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		h.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	h.InjectRelease(toX, toY)
}

// Pending returns the number of queued injected events.
func (h *Host) Pending() int {
	return len(h.injectQueue)
}

// processInjectedInput pops one injected event and feeds it through the
// mouse pointer. Returns true if an event was consumed.
func (h *Host) processInjectedInput(mods arbor.KeyModifiers) bool {
	if len(h.injectQueue) == 0 {
		return false
	}
	evt := h.injectQueue[0]
	copy(h.injectQueue, h.injectQueue[1:])
	h.injectQueue = h.injectQueue[:len(h.injectQueue)-1]

	h.processPointer(mousePointer, evt.x, evt.y, evt.pressed, evt.button, mods, nil)
	return true
}
