package arbor

import (
	"strconv"
	"strings"
)

// Event names propagated by views.
const (
	EventVisibilityChange = "visibilitychange"
	EventAnimationEnd     = "animationend"
)

// --- Visibility ---

// Show makes the view visible (unless an ancestor is hidden).
func (v *View) Show() {
	v.SetVisible(true)
}

// Hide hides the view and, effectively, its subtree.
func (v *View) Hide() {
	v.SetVisible(false)
}

// SetVisible sets the view's own visibility flag, writes the display style
// and tells the subtree. No-op if the flag does not change.
func (v *View) SetVisible(visible bool) {
	if v.hidden == !visible {
		return
	}
	v.hidden = !visible
	if v.node != nil {
		if visible {
			v.node.SetStyle("display", "")
		} else {
			v.node.SetStyle("display", "none")
		}
	}
	v.notifyVisibility()
	v.Propagate(EventVisibilityChange, v.IsVisible())
}

// IsVisible reports whether the view and all its ancestors are visible.
func (v *View) IsVisible() bool {
	for p := v; p != nil; p = p.parent {
		if p.hidden {
			return false
		}
	}
	return true
}

// Hidden reports the view's own flag, ignoring ancestors.
func (v *View) Hidden() bool {
	return v.hidden
}

func (v *View) notifyVisibility() {
	visible := v.IsVisible()
	if h, ok := v.viewer().(VisibilityObserver); ok {
		h.VisibilityChanged(visible)
	}
	for _, child := range v.AllChildren() {
		c := child.AsView()
		if c.hidden {
			// Its effective visibility cannot change.
			continue
		}
		c.notifyVisibility()
	}
}

// Refresh re-applies the transform and calls RefreshView on v and every
// descendant, parents first.
func (v *View) Refresh() {
	v.applyTransform()
	if h, ok := v.viewer().(Refresher); ok {
		h.RefreshView()
	}
	for _, child := range v.AllChildren() {
		child.AsView().Refresh()
	}
}

// --- Geometry ---

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// SetOpacity writes the opacity channel, clamped to [0, 1].
func (v *View) SetOpacity(a float64) {
	a = max(0, min(1, a))
	v.opacity = a
	if v.node != nil {
		v.node.SetStyle("opacity", formatFloat(a))
	}
}

// Opacity returns the view's own opacity.
func (v *View) Opacity() float64 {
	return v.opacity
}

// SetPosition writes the left/top style.
func (v *View) SetPosition(x, y float64) {
	v.geom.X, v.geom.Y = x, y
	if v.node != nil {
		v.node.SetStyle("left", formatPx(x))
		v.node.SetStyle("top", formatPx(y))
	}
}

// Position returns the left/top position, read back from the
// representation's style when it carries one.
func (v *View) Position() (x, y float64) {
	x, y = v.geom.X, v.geom.Y
	if v.node == nil {
		return x, y
	}
	if px, ok := parsePx(v.node.Style("left")); ok {
		x = px
	}
	if px, ok := parsePx(v.node.Style("top")); ok {
		y = px
	}
	return x, y
}

// SetSize writes the width/height style.
func (v *View) SetSize(w, h float64) {
	v.geom.Width, v.geom.Height = w, h
	if v.node != nil {
		v.node.SetStyle("width", formatPx(w))
		v.node.SetStyle("height", formatPx(h))
	}
}

// Size returns the width/height, read back like Position.
func (v *View) Size() (w, h float64) {
	w, h = v.geom.Width, v.geom.Height
	if v.node == nil {
		return w, h
	}
	if px, ok := parsePx(v.node.Style("width")); ok {
		w = px
	}
	if px, ok := parsePx(v.node.Style("height")); ok {
		h = px
	}
	return w, h
}

// Bounds returns the view's box in its parent's coordinate space, before
// the view's own transform.
func (v *View) Bounds() Rect {
	x, y := v.Position()
	w, h := v.Size()
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func formatFloat(f float64) string {
	if f == 0 {
		f = 0 // no negative zero
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatPx(f float64) string {
	return formatFloat(f) + "px"
}

func parsePx(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
