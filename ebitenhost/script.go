package ebitenhost

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action of an input script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences injected input and screenshots across frames.
// Attach it to a Host with SetScript.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON input script:
//
//	{"steps": [
//	  {"action": "click", "x": 100, "y": 200},
//	  {"action": "wait", "frames": 3},
//	  {"action": "screenshot", "label": "after-click"}
//	]}
//
// Actions: press, move, hover, release, click, drag, wait, screenshot.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "press", "move", "hover", "release", "click", "drag", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: s.Steps}, nil
}

// SetScript attaches a runner. Its steps advance from Update, before input
// is processed.
func (h *Host) SetScript(r *ScriptRunner) {
	h.script = r
}

// Done reports whether every step has been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(h *Host) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(h.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		h.Screenshot(st.Label)
	case "press":
		h.InjectPress(st.X, st.Y)
	case "move":
		h.InjectMove(st.X, st.Y)
	case "hover":
		h.InjectHover(st.X, st.Y)
	case "release":
		h.InjectRelease(st.X, st.Y)
	case "click":
		h.InjectClick(st.X, st.Y)
	case "drag":
		h.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(h.injectQueue) == 0 {
		r.done = true
	}
}
