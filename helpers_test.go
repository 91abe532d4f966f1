package arbor

import (
	"math"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/math/f64"
)

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want f64.Aff3) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}

// observeLogs routes the package logger to an in-memory core for the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger
	SetLogger(zap.New(core))
	t.Cleanup(func() { logger = prev })
	return logs
}

// useScheduler gives the test its own delivery scheduler.
func useScheduler(t *testing.T) *Scheduler {
	t.Helper()
	prev := scheduler
	s := NewScheduler()
	SetScheduler(s)
	t.Cleanup(func() { SetScheduler(prev) })
	return s
}

// --- Fake representation ---

type fakeListener struct {
	id ListenerID
	fn func(*NativeEvent)
}

// fakeNode is a minimal in-memory Representation.
type fakeNode struct {
	name      string
	parent    *fakeNode
	children  []*fakeNode
	attrs     map[string]string
	style     map[string]string
	listeners map[string][]fakeListener
	nextID    ListenerID

	appendCount int
}

func newFakeNode(name string) *fakeNode {
	return &fakeNode{
		name:  name,
		attrs: make(map[string]string),
		style: make(map[string]string),
	}
}

// anchor creates a child marked as the anchor of slot.
func (n *fakeNode) anchor(slot string) *fakeNode {
	a := newFakeNode(n.name + "/" + slot)
	a.attrs[AnchorMarker] = slot
	a.parent = n
	n.children = append(n.children, a)
	return a
}

func (n *fakeNode) AddEventListener(name string, fn func(*NativeEvent)) ListenerID {
	n.nextID++
	if n.listeners == nil {
		n.listeners = make(map[string][]fakeListener)
	}
	n.listeners[name] = append(n.listeners[name], fakeListener{id: n.nextID, fn: fn})
	return n.nextID
}

func (n *fakeNode) RemoveEventListener(name string, id ListenerID) {
	n.listeners[name] = slices.DeleteFunc(n.listeners[name], func(l fakeListener) bool { return l.id == id })
}

func (n *fakeNode) listenerCount(name string) int {
	return len(n.listeners[name])
}

func (n *fakeNode) fire(ev *NativeEvent) {
	if ev.Target == nil {
		ev.Target = n
	}
	for _, l := range slices.Clone(n.listeners[ev.Type]) {
		l.fn(ev)
	}
}

func (n *fakeNode) ParentNode() Representation {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *fakeNode) AppendChild(child Representation) {
	c := child.(*fakeNode)
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
	n.appendCount++
}

func (n *fakeNode) RemoveChild(child Representation) {
	c := child.(*fakeNode)
	i := slices.Index(n.children, c)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
}

func (n *fakeNode) FindAnchors(marker string) map[string]Representation {
	out := make(map[string]Representation)
	var walk func(*fakeNode)
	walk = func(p *fakeNode) {
		for _, c := range p.children {
			if slot, ok := c.attrs[marker]; ok {
				if _, dup := out[slot]; !dup {
					out[slot] = c
				}
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func (n *fakeNode) SetStyle(name, value string) {
	if value == "" {
		delete(n.style, name)
		return
	}
	n.style[name] = value
}

func (n *fakeNode) Style(name string) string {
	return n.style[name]
}

func (n *fakeNode) CloneNode() Representation {
	c := newFakeNode(n.name)
	for k, v := range n.attrs {
		c.attrs[k] = v
	}
	for k, v := range n.style {
		c.style[k] = v
	}
	for _, ch := range n.children {
		cc := ch.CloneNode().(*fakeNode)
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// --- Test object types ---

// widget is an object with exported fields, an accessor and hooks.
type widget struct {
	EventSource

	Label string
	Count int
	Items []string
	Peer  *widget

	inits   int
	changes int
	doubled int
	pings   []*Event
	ticks   int
	reinit  bool
}

func newWidget(config any) *widget {
	w := &widget{}
	w.Construct(w, config)
	return w
}

func init() {
	RegisterConstructor(func(c Config) *widget { return newWidget(c) })
}

func (w *widget) InitComponent() {
	w.inits++
	if w.reinit {
		w.Init()
	}
}

func (w *widget) PropertiesChanged() { w.changes++ }

func (w *widget) SetProperty(key string, value any) bool {
	if key != "double" {
		return false
	}
	n, ok := toFloat(value)
	if ok {
		w.doubled = int(n) * 2
	}
	return ok
}

func (w *widget) Ping(ev *Event) { w.pings = append(w.pings, ev) }
func (w *widget) Tick()          { w.ticks++ }
func (w *widget) Boom(*Event)    { panic("boom") }

func (w *widget) CloneState(dst Object, cloned CloneMap) {
	dst.(*widget).doubled = w.doubled
}

// panel is a View subtype used for hooks and embedding.
type panel struct {
	View

	attachedTo *View
	visible    []bool
	refreshes  int
	pings      []*Event
}

func newPanel(node Representation, config any) *panel {
	p := &panel{}
	p.Setup(p, node, config)
	return p
}

func init() {
	RegisterConstructor(func(c Config) *panel { return newPanel(nil, c) })
}

func (p *panel) DidAttach(parent *View)          { p.attachedTo = parent }
func (p *panel) VisibilityChanged(visible bool) { p.visible = append(p.visible, visible) }
func (p *panel) RefreshView()                   { p.refreshes++ }
func (p *panel) Ping(ev *Event)                 { p.pings = append(p.pings, ev) }
func (p *panel) OnPointerStart(ev *Event)       { p.pings = append(p.pings, ev) }
