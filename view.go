package arbor

import (
	"slices"

	"go.uber.org/zap"
	"golang.org/x/image/math/f64"
)

const (
	// DefaultSlot is the catch-all slot used when Add gets no slot name.
	// Its anchor is the parent's own representation unless a descendant
	// declares data-slot="default".
	DefaultSlot = "default"

	// AnchorMarker is the attribute marking slot anchors in a
	// representation subtree.
	AnchorMarker = "data-slot"

	// DefaultMinScale and DefaultMaxScale bound SetScale for new views.
	DefaultMinScale = 0.1
	DefaultMaxScale = 10
)

// Viewer is implemented by View and every type embedding it.
type Viewer interface {
	Object
	AsView() *View
}

// AttachObserver is told when the view was attached to a parent by Add.
type AttachObserver interface {
	DidAttach(parent *View)
}

// VisibilityObserver is told when a view's effective visibility may have
// changed because it or an ancestor was shown or hidden.
type VisibilityObserver interface {
	VisibilityChanged(visible bool)
}

// Refresher is called by Refresh on every view of the refreshed subtree.
type Refresher interface {
	RefreshView()
}

// RepresentationCloner is implemented by representations Clone can copy.
type RepresentationCloner interface {
	CloneNode() Representation
}

// View is a visual object: an EventSource bound to an external
// representation, placed in a tree of named slots, carrying a 2D transform.
type View struct {
	EventSource

	// Tag keys a non-visual child's slot. Defaults to the view's id.
	Tag string
	// MinScale and MaxScale bound SetScale.
	MinScale, MaxScale float64

	node    Representation
	parent  *View
	slots   map[string][]Viewer
	order   []string // slot keys in first-use order
	anchors map[string]Representation

	hidden  bool
	opacity float64
	geom    Rect

	// Transform (local)
	tx, ty           float64
	rotation         float64
	scale            float64
	originX, originY float64
	stack            *f64.Aff3
	applyCount       int

	// configScale is the scale requested by Configure, re-clamped once the
	// scale bounds from the same configuration are known.
	configScale *float64
}

// NewView creates a view over node (nil for a non-visual view). config is
// applied by Init; see EventSource.Construct.
func NewView(node Representation, config any) *View {
	v := &View{}
	v.Setup(v, node, config)
	return v
}

func init() {
	RegisterConstructor(func(c Config) *View { return NewView(nil, c) })
}

// Setup initialises the View part of this. Types embedding View call it
// from their constructor in place of NewView.
func (v *View) Setup(this Viewer, node Representation, config any) {
	v.Construct(this, config)
	v.node = node
	v.MinScale = DefaultMinScale
	v.MaxScale = DefaultMaxScale
	v.scale = 1
	v.opacity = 1
}

// AsView returns v.
func (v *View) AsView() *View {
	return v
}

// viewer returns the outer value embedding v.
func (v *View) viewer() Viewer {
	if vw, ok := v.This().(Viewer); ok {
		return vw
	}
	return v
}

// InitComponent discovers the slot anchors and applies the initial
// transform. Embedding types overriding it should call it.
func (v *View) InitComponent() {
	v.DiscoverAnchors()
	v.applyTransform()
}

// PropertiesChanged re-clamps the scale after MinScale/MaxScale were
// configured. A scale from the same configuration is clamped against the
// new bounds, whatever order the keys were assigned in.
func (v *View) PropertiesChanged() {
	v.SetScaleBounds(v.MinScale, v.MaxScale)
	if v.configScale != nil {
		v.SetScale(*v.configScale)
		v.configScale = nil
	}
}

// CloneState copies the representation, geometry and transform state.
// Children are not cloned: tree membership belongs to the parent.
func (v *View) CloneState(dst Object, cloned CloneMap) {
	vw, ok := dst.(Viewer)
	if !ok {
		return
	}
	d := vw.AsView()
	if rc, ok := v.node.(RepresentationCloner); ok && v.node != nil {
		d.node = rc.CloneNode()
	}
	d.hidden = v.hidden
	d.opacity = v.opacity
	d.geom = v.geom
	d.tx, d.ty = v.tx, v.ty
	d.rotation = v.rotation
	d.scale = v.scale
	d.originX, d.originY = v.originX, v.originY
	if v.stack != nil {
		s := *v.stack
		d.stack = &s
	}
}

// Representation returns the external node, or nil for a non-visual view.
func (v *View) Representation() Representation {
	return v.node
}

// SetRepresentation replaces the external node, rediscovers anchors and
// re-applies the transform.
func (v *View) SetRepresentation(node Representation) {
	v.node = node
	v.DiscoverAnchors()
	v.applyTransform()
}

// Parent returns the view this one was added to.
func (v *View) Parent() *View {
	return v.parent
}

// EventParent makes unhandled propagations fall back to the parent.
func (v *View) EventParent() Object {
	if v.parent == nil {
		return nil
	}
	return v.parent.This()
}

// DiscoverAnchors scans the representation for slot anchors.
func (v *View) DiscoverAnchors() {
	v.anchors = nil
	if v.node == nil {
		return
	}
	v.anchors = v.node.FindAnchors(AnchorMarker)
}

// Anchor returns the discovered anchor for slot.
func (v *View) Anchor(slot string) (Representation, bool) {
	a, ok := v.anchors[slot]
	return a, ok
}

func (v *View) anchorFor(slot string) Representation {
	if a, ok := v.anchors[slot]; ok {
		return a
	}
	if slot == DefaultSlot {
		return v.node
	}
	return nil
}

// slotKey picks the slot a child is filed under.
func slotKey(c *View, slot string, override Representation) string {
	switch {
	case c.node == nil && override == nil:
		if c.Tag != "" {
			return c.Tag
		}
		return c.ID()
	case slot == "":
		return DefaultSlot
	}
	return slot
}

// --- Tree manipulation ---

// Add attaches child to the named slot ("" for DefaultSlot). override, when
// non-nil, is the node the child's representation is attached to instead
// of the slot's anchor. A child already present in any slot is left where
// it is; a child of another view is detached from it first. Returns whether
// the child was added.
func (v *View) Add(child Viewer, slot string, override Representation) bool {
	if isNilObject(child) {
		logger.Warn("add: nil child", idField(v))
		return false
	}
	c := child.AsView()
	if v.IsChild(child) {
		return false
	}
	if isAncestor(c, v) {
		logger.Warn("add: child is an ancestor", idField(v), zap.String("child", c.ID()))
		return false
	}
	if globalDebug {
		debugCheckDestroyed(v, "Add (parent)")
		debugCheckDestroyed(c, "Add (child)")
	}

	key := slotKey(c, slot, override)
	var anchor Representation
	if c.node != nil {
		anchor = override
		if anchor == nil {
			anchor = v.anchorFor(key)
		}
		if anchor == nil {
			logger.Warn("add: no anchor for slot",
				zap.String("slot", key), idField(v), zap.String("child", c.ID()))
			return false
		}
	}

	if c.parent != nil {
		c.parent.Remove(child)
	}
	if anchor != nil && c.node.ParentNode() != anchor {
		if p := c.node.ParentNode(); p != nil {
			p.RemoveChild(c.node)
		}
		anchor.AppendChild(c.node)
	}

	if v.slots == nil {
		v.slots = make(map[string][]Viewer)
	}
	if _, ok := v.slots[key]; !ok {
		v.order = append(v.order, key)
	}
	v.slots[key] = append(v.slots[key], child)
	c.parent = v

	if h, ok := child.(AttachObserver); ok {
		h.DidAttach(v)
	}
	if globalDebug {
		debugCheckTreeDepth(c)
		debugCheckChildCount(v)
	}
	return true
}

// Remove detaches child from whichever slot holds it and clears its parent.
// The child is not destroyed. Returns false if child is not a child of v.
func (v *View) Remove(child Viewer) bool {
	if isNilObject(child) {
		return false
	}
	key, i := v.find(child)
	if i < 0 {
		return false
	}
	c := child.AsView()
	if c.node != nil {
		if p := c.node.ParentNode(); p != nil {
			p.RemoveChild(c.node)
		}
	}
	list := slices.Delete(v.slots[key], i, i+1)
	if len(list) == 0 {
		delete(v.slots, key)
		if j := slices.Index(v.order, key); j >= 0 {
			v.order = slices.Delete(v.order, j, j+1)
		}
	} else {
		v.slots[key] = list
	}
	c.parent = nil
	return true
}

// RemoveFromParent detaches v from its parent. No-op without a parent.
func (v *View) RemoveFromParent() {
	if v.parent == nil {
		return
	}
	v.parent.Remove(v.viewer())
}

// RemoveAllChildren removes and destroys every child of every slot.
func (v *View) RemoveAllChildren() {
	for _, key := range slices.Clone(v.order) {
		v.RemoveSlotChildren(key)
	}
	v.slots = nil
	v.order = nil
}

// RemoveSlotChildren removes and destroys every child of slot.
func (v *View) RemoveSlotChildren(slot string) {
	for _, child := range slices.Clone(v.slots[slot]) {
		v.Remove(child)
		child.Destroy()
	}
}

// IsChild reports whether candidate sits directly in one of v's slots.
func (v *View) IsChild(candidate Viewer) bool {
	_, i := v.find(candidate)
	return i >= 0
}

func (v *View) find(candidate Viewer) (string, int) {
	if isNilObject(candidate) {
		return "", -1
	}
	c := candidate.AsView()
	for _, key := range v.order {
		for i, ch := range v.slots[key] {
			if ch.AsView() == c {
				return key, i
			}
		}
	}
	return "", -1
}

// SlotOf returns the slot holding child.
func (v *View) SlotOf(child Viewer) (string, bool) {
	key, i := v.find(child)
	return key, i >= 0
}

// Children returns a copy of slot's children in insertion order.
func (v *View) Children(slot string) []Viewer {
	return slices.Clone(v.slots[slot])
}

// AllChildren returns every child, slot by slot in first-use order.
func (v *View) AllChildren() []Viewer {
	var out []Viewer
	for _, key := range v.order {
		out = append(out, v.slots[key]...)
	}
	return out
}

// Slots returns the occupied slot names in first-use order.
func (v *View) Slots() []string {
	return slices.Clone(v.order)
}

// NumChildren returns the number of children across all slots.
func (v *View) NumChildren() int {
	n := 0
	for _, list := range v.slots {
		n += len(list)
	}
	return n
}

// Destroy destroys every child, detaches v from its parent and releases
// its bindings.
func (v *View) Destroy() {
	v.RemoveAllChildren()
	v.RemoveFromParent()
	v.EventSource.Destroy()
}

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *View) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}
