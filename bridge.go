package arbor

import (
	"go.uber.org/zap"
)

// --- Logical pointer events ---

// Logical pointer event names. They are translated to host names at the
// bridge boundary; handler stores only ever see these.
const (
	PointerStart = "POINTER_START"
	PointerMove  = "POINTER_MOVE"
	PointerEnd   = "POINTER_END"
)

// PointerEventNames maps the logical pointer events to host event names.
type PointerEventNames struct {
	Start, Move, End string
}

// Host name tables for the common input models.
var (
	PointerNames = PointerEventNames{Start: "pointerdown", Move: "pointermove", End: "pointerup"}
	MouseNames   = PointerEventNames{Start: "mousedown", Move: "mousemove", End: "mouseup"}
	TouchNames   = PointerEventNames{Start: "touchstart", Move: "touchmove", End: "touchend"}
)

var pointerNames = PointerNames

// SetPointerEventNames selects the host names logical pointer events map to.
func SetPointerEventNames(n PointerEventNames) {
	pointerNames = n
}

// HostEventName translates a logical event name to the host's name. Other
// names pass through unchanged.
func HostEventName(name string) string {
	switch name {
	case PointerStart:
		return pointerNames.Start
	case PointerMove:
		return pointerNames.Move
	case PointerEnd:
		return pointerNames.End
	}
	return name
}

// LogicalEventName is the inverse of HostEventName.
func LogicalEventName(name string) string {
	switch name {
	case pointerNames.Start:
		return PointerStart
	case pointerNames.Move:
		return PointerMove
	case pointerNames.End:
		return PointerEnd
	}
	return name
}

// --- Input state ---

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// ModifierFilter restricts which modifier states a NodeBind delivers. The
// zero value, NoModifierFilter, delivers every modifier state; pass
// RequireNone to drop events while any modifier is held.
type ModifierFilter uint8

const (
	NoModifierFilter ModifierFilter = iota // no filtering
	RequireShift                       // exactly Shift held
	RequireCtrl                        // exactly Control held
	RequireAlt                         // exactly Alt held
	RequireMeta                        // exactly Meta held
	RequireNone                        // no modifier held
)

// Accepts reports whether an event with mods passes the filter.
func (f ModifierFilter) Accepts(mods KeyModifiers) bool {
	switch f {
	case NoModifierFilter:
		return true
	case RequireShift:
		return mods == ModShift
	case RequireCtrl:
		return mods == ModCtrl
	case RequireAlt:
		return mods == ModAlt
	case RequireMeta:
		return mods == ModMeta
	case RequireNone:
		return mods == 0
	}
	return false
}

// TouchPoint is one contact of a touch event.
type TouchPoint struct {
	ID   int
	X, Y float64
}

// NativeEvent is an event as reported by the host.
type NativeEvent struct {
	Type      string
	Target    EventTarget
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
	Touches   []TouchPoint
	Detail    any
}

// ListenerID identifies a listener registered on an EventTarget.
type ListenerID uint64

// EventTarget is a host node that emits native events.
type EventTarget interface {
	AddEventListener(eventName string, fn func(*NativeEvent)) ListenerID
	RemoveEventListener(eventName string, id ListenerID)
}

// Representation is the external node backing a view: a tree node that
// emits events, carries style and can locate named anchors below itself.
type Representation interface {
	EventTarget
	ParentNode() Representation
	AppendChild(child Representation)
	RemoveChild(child Representation)
	// FindAnchors returns the descendants carrying the marker attribute,
	// keyed by the attribute's value.
	FindAnchors(marker string) map[string]Representation
	SetStyle(name, value string)
	Style(name string) string
}

// --- NodeBind / NodeUnbind ---

type nodeBinding struct {
	node EventTarget
	host string
	id   ListenerID
}

// nodeCallback defaults an absent callback to the on_<event> method, so
// POINTER_START resolves to OnPointerStart.
func nodeCallback(eventName string, cb *Callback) *Callback {
	if cb != nil {
		return cb
	}
	return Method("on_" + eventName)
}

// NodeBind listens for eventName on node and calls cb on es's object for
// each single-pointer event passing filter. Events with more than one touch
// point are suppressed. The delivered Event carries the node in Src and the
// *NativeEvent in Data. Reports whether a listener was registered.
func (es *EventSource) NodeBind(node EventTarget, eventName string, cb *Callback, filter ModifierFilter) bool {
	self := es.self()
	if node == nil || eventName == "" {
		logger.Warn("nodeBind: missing node or event name", zap.String("event", eventName), idField(self))
		return false
	}
	cb = nodeCallback(eventName, cb)
	fn, ok := cb.resolve(self)
	if !ok {
		logger.Warn("nodeBind: callback not found",
			zap.String("event", eventName), zap.String("callback", cb.name), idField(self))
		return false
	}

	host := HostEventName(eventName)
	wrapper := func(nev *NativeEvent) {
		if nev == nil || len(nev.Touches) > 1 {
			return
		}
		if !filter.Accepts(nev.Modifiers) {
			return
		}
		ev := &Event{
			Source:       self,
			Type:         LogicalEventName(nev.Type),
			Data:         nev,
			SourceTarget: self,
			Src:          node,
		}
		if ev.Type == "" {
			ev.Type = eventName
		}
		defer func() {
			if r := recover(); r != nil {
				logger.Error("node handler panicked",
					zap.String("event", eventName), zap.String("callback", cb.name),
					zap.Any("panic", r), idField(self))
			}
		}()
		fn(ev)
	}

	key := eventName + cb.name
	if es.nodeBindings == nil {
		es.nodeBindings = make(map[string][]*nodeBinding)
	}
	es.nodeBindings[key] = append(es.nodeBindings[key], &nodeBinding{
		node: node,
		host: host,
		id:   node.AddEventListener(host, wrapper),
	})
	return true
}

// NodeUnbind detaches the listeners NodeBind registered for this node,
// event and callback. Other nodes bound with the same pair stay bound.
// Reports whether anything was detached.
func (es *EventSource) NodeUnbind(node EventTarget, eventName string, cb *Callback) bool {
	self := es.self()
	if node == nil || eventName == "" {
		logger.Warn("nodeUnbind: missing node or event name", zap.String("event", eventName), idField(self))
		return false
	}
	cb = nodeCallback(eventName, cb)
	key := eventName + cb.name
	list := es.nodeBindings[key]
	removed := 0
	for i := 0; i < len(list); {
		nb := list[i]
		if nb.node == node {
			nb.node.RemoveEventListener(nb.host, nb.id)
			list = append(list[:i], list[i+1:]...)
			removed++
			continue
		}
		i++
	}
	if len(list) == 0 {
		delete(es.nodeBindings, key)
	} else {
		es.nodeBindings[key] = list
	}
	if removed == 0 {
		logger.Warn("nodeUnbind: no such binding",
			zap.String("event", eventName), zap.String("callback", cb.name), idField(self))
		return false
	}
	return true
}

// releaseNodeBindings detaches every external listener of es.
func (es *EventSource) releaseNodeBindings() {
	for _, list := range es.nodeBindings {
		for _, nb := range list {
			nb.node.RemoveEventListener(nb.host, nb.id)
		}
	}
	es.nodeBindings = nil
}
