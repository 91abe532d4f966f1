package arbor

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
)

// Object is implemented by every type built on EventSource. Embedding
// *EventSource (or EventSource) and calling Construct is enough.
type Object interface {
	AsEventSource() *EventSource
	Destroy()
}

// Config is a configuration blob applied to an object by Configure.
type Config map[string]any

// reservedKeys are never assigned by Configure.
var reservedKeys = map[string]bool{
	"id":      true,
	"node":    true,
	"nodeRef": true,
	"view":    true,
}

// --- Hooks ---

// Initializer is called once by Init, before the pending configuration is
// applied.
type Initializer interface {
	InitComponent()
}

// PropertiesChangedHandler is called once after Configure assigned at least
// one property.
type PropertiesChangedHandler interface {
	PropertiesChanged()
}

// PropertySetter is a per-type accessor table consulted by Configure before
// falling back to exported struct fields. It reports whether key was handled.
type PropertySetter interface {
	SetProperty(key string, value any) bool
}

// PropertyGetter is the read side of PropertySetter, used by MarshalObject.
type PropertyGetter interface {
	Property(key string) (any, bool)
}

// Persister declares the property names included in an object's JSON
// projection.
type Persister interface {
	PersistedProperties() []string
}

// EventParenter is implemented by objects that forward unhandled
// propagations to a parent.
type EventParenter interface {
	EventParent() Object
}

// --- EventSource ---

// EventSource is the base object: identity, lifecycle, bindings and
// external-source listeners. The zero value is usable as a standalone
// object; embedding types must call Construct with their outer value so
// hooks and callbacks dispatch to it.
type EventSource struct {
	this        Object
	id          string
	pending     Config
	initialized bool
	destroyed   bool

	handlers     map[string][]*Binding
	nodeBindings map[string][]*nodeBinding
}

// NewEventSource creates a standalone object. config may be a Config
// carrying "id", a plain string id, or nil.
func NewEventSource(config any) *EventSource {
	es := &EventSource{}
	es.Construct(es, config)
	return es
}

func init() {
	RegisterConstructor(func(c Config) *EventSource { return NewEventSource(c) })
}

// Construct assigns identity and stores the pending configuration. this is
// the outermost value embedding es.
func (es *EventSource) Construct(this Object, config any) {
	es.this = this
	switch c := config.(type) {
	case nil:
		es.id = nextID()
	case string:
		es.id = c
		if c == "" {
			es.id = nextID()
		}
	case Config:
		es.setPending(c)
	case map[string]any:
		es.setPending(Config(c))
	default:
		es.id = nextID()
		logger.Warn("unsupported config type, generated id",
			zap.String("type", fmt.Sprintf("%T", config)), zap.String("id", es.id))
	}
}

func (es *EventSource) setPending(c Config) {
	if id, ok := c["id"].(string); ok && id != "" {
		es.id = id
	} else {
		es.id = nextID()
	}
	if len(c) == 0 {
		return
	}
	es.pending = make(Config, len(c))
	for k, v := range c {
		es.pending[k] = v
	}
}

// self returns the outer object, lazily constructing a zero value.
func (es *EventSource) self() Object {
	if es.this == nil {
		es.this = es
		if es.id == "" {
			es.id = nextID()
		}
	}
	return es.this
}

// AsEventSource returns es.
func (es *EventSource) AsEventSource() *EventSource {
	return es
}

// This returns the outermost object embedding es.
func (es *EventSource) This() Object {
	return es.self()
}

// ID returns the object's unique id.
func (es *EventSource) ID() string {
	es.self()
	return es.id
}

// Initialized reports whether Init has run.
func (es *EventSource) Initialized() bool {
	return es.initialized
}

// Destroyed reports whether Destroy has run.
func (es *EventSource) Destroyed() bool {
	return es.destroyed
}

// PendingConfig returns the configuration Init will apply. The returned
// map MUST NOT be mutated.
func (es *EventSource) PendingConfig() Config {
	return es.pending
}

// Init registers the object, runs the InitComponent hook and applies the
// pending configuration. A second call is a no-op, including re-entrant
// calls made while the first one runs.
func (es *EventSource) Init() {
	self := es.self()
	if es.initialized || es.destroyed {
		return
	}
	es.initialized = true
	register(self)
	if h, ok := self.(Initializer); ok {
		h.InitComponent()
	}
	if cfg := es.pending; cfg != nil {
		es.pending = nil
		es.Configure(cfg)
	}
}

// Configure assigns every non-reserved key of config to the object and
// calls PropertiesChanged once if anything was assigned.
func (es *EventSource) Configure(config Config) {
	self := es.self()
	changed := false
	for key, value := range config {
		if reservedKeys[key] {
			continue
		}
		if setProperty(self, key, value) {
			changed = true
			continue
		}
		logger.Warn("configure: unknown property", zap.String("key", key), idField(self))
	}
	if !changed {
		return
	}
	if h, ok := self.(PropertiesChangedHandler); ok {
		h.PropertiesChanged()
	}
}

// Destroy releases every binding and external listener and removes the
// registry entry. Calling it twice is a caller error.
func (es *EventSource) Destroy() {
	self := es.self()
	es.releaseNodeBindings()
	es.handlers = nil
	unregister(self)
	es.destroyed = true
}

// --- Property access ---

func setProperty(o Object, key string, value any) bool {
	if s, ok := o.(PropertySetter); ok && s.SetProperty(key, value) {
		return true
	}
	f := exportedField(o, key)
	if !f.IsValid() || !f.CanSet() {
		return false
	}
	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return true
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(f.Type()):
		f.Set(v)
	case convertible(v.Type(), f.Type()):
		f.Set(v.Convert(f.Type()))
	default:
		return false
	}
	return true
}

func getProperty(o Object, key string) (any, bool) {
	if g, ok := o.(PropertyGetter); ok {
		if v, ok := g.Property(key); ok {
			return v, true
		}
	}
	f := exportedField(o, key)
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}

// exportedField finds the struct field named by the camel-cased key.
func exportedField(o Object, key string) reflect.Value {
	rv := reflect.ValueOf(o)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return rv.FieldByName(strcase.ToCamel(key))
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// convertible allows numeric widening/narrowing and same-kind conversions
// (a YAML int into a float64 field), never int→string.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	if isNumber(from.Kind()) && isNumber(to.Kind()) {
		return true
	}
	return from.Kind() == to.Kind()
}

// MarshalObject returns the JSON projection of o: only the names listed by
// its PersistedProperties, regardless of any other state.
func MarshalObject(o Object) ([]byte, error) {
	out := make(map[string]any)
	if p, ok := o.(Persister); ok {
		for _, key := range p.PersistedProperties() {
			if v, ok := getProperty(o, key); ok {
				out[key] = v
			}
		}
	}
	return json.Marshal(out)
}

// isNilObject reports whether o is nil or wraps a nil pointer.
func isNilObject(o Object) bool {
	if o == nil {
		return true
	}
	v := reflect.ValueOf(o)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// sameObject compares by identity of the underlying EventSource, so an
// outer value and its embedded base are the same object.
func sameObject(a, b Object) bool {
	if isNilObject(a) || isNilObject(b) {
		return false
	}
	return a.AsEventSource() == b.AsEventSource()
}
