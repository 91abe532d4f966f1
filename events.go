package arbor

import (
	"reflect"
	"slices"
	"strconv"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
)

// DefaultCallback is the method name bound when Bind receives no callback.
const DefaultCallback = "notify"

// Event is the value delivered to handlers. A fresh Event is built for
// every propagation and is not retained past delivery.
type Event struct {
	// Source is the object whose handlers received the event.
	Source Object
	// Type is the event name.
	Type string
	// Data is the payload given to Propagate. For bridged events it is the
	// raw *NativeEvent.
	Data any
	// SourceTarget is the original emitter. It differs from Source when the
	// event fell back from a descendant without bindings.
	SourceTarget Object
	// Src is the external node a bridged event originated from.
	Src EventTarget
}

// Callback names the code a binding invokes: either a method looked up on
// the subscriber by name or a direct function.
type Callback struct {
	name string
	fn   func(*Event)
}

// funcCounter gives every direct callback a distinct name.
var funcCounter uint64

// Method returns a callback resolved against the subscriber's exported
// method strcase.ToCamel(name). The method must be func(*Event) or func().
func Method(name string) *Callback {
	return &Callback{name: name}
}

// Func returns a direct callback. Two Func callbacks never match each other
// in Unbind; keep the returned pointer to remove it later.
func Func(fn func(*Event)) *Callback {
	funcCounter++
	return &Callback{name: "func#" + strconv.FormatUint(funcCounter, 10), fn: fn}
}

// Name returns the method name, or the generated name of a direct callback.
func (c *Callback) Name() string {
	return c.name
}

// matches compares named callbacks by name and direct callbacks by identity.
func (c *Callback) matches(o *Callback) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	return c.fn == nil && o.fn == nil && c.name == o.name
}

// resolve turns the callback into an invocable handle for subscriber.
func (c *Callback) resolve(subscriber Object) (func(*Event), bool) {
	if c.fn != nil {
		return c.fn, true
	}
	m := reflect.ValueOf(subscriber).MethodByName(strcase.ToCamel(c.name))
	if !m.IsValid() {
		return nil, false
	}
	switch fn := m.Interface().(type) {
	case func(*Event):
		return fn, true
	case func():
		return func(*Event) { fn() }, true
	}
	return nil, false
}

// Binding is one subscriber's interest in one event name on one object.
type Binding struct {
	Subscriber Object
	Callback   *Callback

	owner  *EventSource
	event  string
	invoke func(*Event)
}

// Remove unbinds exactly this binding. Reports whether it was still bound.
func (b *Binding) Remove() bool {
	if b == nil || b.owner == nil {
		return false
	}
	return b.owner.removeBinding(b.event, b)
}

// Bind subscribes subscriber to eventName on es. A nil callback binds the
// subscriber's Notify method. Bindings deliver in insertion order. Returns
// nil, after logging a warning, when eventName or subscriber is missing or
// the callback cannot be resolved.
func (es *EventSource) Bind(eventName string, subscriber Object, cb *Callback) *Binding {
	self := es.self()
	if eventName == "" || isNilObject(subscriber) {
		logger.Warn("bind: missing event name or subscriber",
			zap.String("event", eventName), idField(self))
		return nil
	}
	if cb == nil {
		cb = Method(DefaultCallback)
	}
	fn, ok := cb.resolve(subscriber)
	if !ok {
		logger.Warn("bind: callback not found on subscriber",
			zap.String("event", eventName), zap.String("callback", cb.name), idField(subscriber))
		return nil
	}
	b := &Binding{
		Subscriber: subscriber,
		Callback:   cb,
		owner:      es,
		event:      eventName,
		invoke:     fn,
	}
	if es.handlers == nil {
		es.handlers = make(map[string][]*Binding)
	}
	es.handlers[eventName] = append(es.handlers[eventName], b)
	return b
}

// Unbind removes subscriber's bindings for eventName. Without a callback
// every binding of the subscriber goes; with one only exact matches do.
// Returns the number removed and logs a warning when it is zero.
func (es *EventSource) Unbind(eventName string, subscriber Object, cb *Callback) int {
	list := es.handlers[eventName]
	removed := 0
	// Only advance when nothing was removed at i: the tail shifts down.
	for i := 0; i < len(list); {
		b := list[i]
		if sameObject(b.Subscriber, subscriber) && (cb == nil || b.Callback.matches(cb)) {
			list = slices.Delete(list, i, i+1)
			removed++
			continue
		}
		i++
	}
	es.setBindings(eventName, list)
	if removed == 0 {
		logger.Warn("unbind: no matching binding",
			zap.String("event", eventName), idField(subscriber))
	}
	return removed
}

func (es *EventSource) removeBinding(eventName string, b *Binding) bool {
	list := es.handlers[eventName]
	i := slices.Index(list, b)
	if i < 0 {
		return false
	}
	es.setBindings(eventName, slices.Delete(list, i, i+1))
	return true
}

// setBindings stores list, deleting the entry once it is empty.
func (es *EventSource) setBindings(eventName string, list []*Binding) {
	if len(list) == 0 {
		delete(es.handlers, eventName)
		return
	}
	es.handlers[eventName] = list
}

func (es *EventSource) holds(eventName string, b *Binding) bool {
	return slices.Contains(es.handlers[eventName], b)
}

// Bindings returns a copy of the bindings for eventName in delivery order.
func (es *EventSource) Bindings(eventName string) []*Binding {
	return slices.Clone(es.handlers[eventName])
}

// HasBindings reports whether anything is bound to eventName.
func (es *EventSource) HasBindings(eventName string) bool {
	return len(es.handlers[eventName]) > 0
}

// Propagate announces eventName. Delivery is asynchronous: handlers run on
// later scheduler turns. With no bindings the event falls back to the
// parent, reporting es as the source target.
func (es *EventSource) Propagate(eventName string, data any) {
	es.PropagateFrom(eventName, data, nil)
}

// PropagateFrom is Propagate with an explicit original emitter.
func (es *EventSource) PropagateFrom(eventName string, data any, sourceTarget Object) {
	self := es.self()
	if eventName == "" {
		logger.Warn("propagate: missing event name", idField(self))
		return
	}
	if isNilObject(sourceTarget) {
		sourceTarget = self
	}
	if !es.HasBindings(eventName) {
		if p := es.eventParent(); p != nil {
			p.AsEventSource().PropagateFrom(eventName, data, sourceTarget)
		}
		return
	}
	es.dispatch(&Event{
		Source:       self,
		Type:         eventName,
		Data:         data,
		SourceTarget: sourceTarget,
	})
}

func (es *EventSource) eventParent() Object {
	p, ok := es.self().(EventParenter)
	if !ok {
		return nil
	}
	parent := p.EventParent()
	if isNilObject(parent) {
		return nil
	}
	return parent
}

// Notify is the default callback. It re-propagates the event on the
// receiver so events transit chains of notify-only listeners.
func (es *EventSource) Notify(ev *Event) {
	es.Propagate(ev.Type, ev.Data)
}
