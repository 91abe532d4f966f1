package arbor

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// CloneMap maps an original object to the clone already produced for it.
// Passing the same map through a whole clone tree keeps shared and cyclic
// references pointing at clones instead of originals.
type CloneMap map[*EventSource]Object

// StateCloner copies unexported state into a freshly constructed clone.
// Called after the exported fields were copied.
type StateCloner interface {
	CloneState(dst Object, cloned CloneMap)
}

// CloneError reports a clone that could not be constructed.
type CloneError struct {
	Type   string
	Reason string
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("arbor: cannot clone %s: %s", e.Type, e.Reason)
}

// constructors maps a concrete object type to the function building a new
// instance of it from a config.
var constructors = make(map[reflect.Type]func(Config) Object)

// RegisterConstructor registers the constructor Clone uses for T.
func RegisterConstructor[T Object](fn func(Config) T) {
	constructors[reflect.TypeFor[T]()] = func(c Config) Object { return fn(c) }
}

// Clone deep-copies the object. The clone always gets a fresh id, merges
// config into its pending configuration and is not initialized. Returns
// nil (and logs a *CloneError) when no constructor is registered for the
// object's type.
func (es *EventSource) Clone(config Config, cloned CloneMap) Object {
	self := es.self()
	if cloned == nil {
		cloned = make(CloneMap)
	}
	if c, ok := cloned[es]; ok {
		return c
	}

	typ := reflect.TypeOf(self)
	ctor, ok := constructors[typ]
	if !ok {
		err := &CloneError{Type: typ.String(), Reason: "no registered constructor"}
		logger.Error("clone failed", zap.Error(err), idField(self))
		return nil
	}

	cfg := make(Config, len(config)+1)
	for k, v := range config {
		cfg[k] = v
	}
	cfg["id"] = nextID()
	dst := ctor(cfg)
	if isNilObject(dst) {
		err := &CloneError{Type: typ.String(), Reason: "constructor returned nil"}
		logger.Error("clone failed", zap.Error(err), idField(self))
		return nil
	}
	cloned[es] = dst

	copyFields(reflect.ValueOf(self).Elem(), reflect.ValueOf(dst).Elem(), cloned)
	if sc, ok := self.(StateCloner); ok {
		sc.CloneState(dst, cloned)
	}
	dst.AsEventSource().initialized = false
	return dst
}

var eventSourceType = reflect.TypeFor[EventSource]()

// copyFields copies every settable exported field of src into dst. Nested
// objects are cloned through the same map, slices and maps are copied
// shallowly, anything else is assigned.
func copyFields(src, dst reflect.Value, cloned CloneMap) {
	if src.Kind() != reflect.Struct {
		return
	}
	t := src.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Type == eventSourceType || sf.Type == reflect.PointerTo(eventSourceType) {
			continue
		}
		df := dst.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			// Embedded bases (View inside a widget) carry their own
			// exported fields.
			copyFields(src.Field(i), df, cloned)
			continue
		}
		if !sf.IsExported() || !df.CanSet() {
			continue
		}
		df.Set(cloneValue(src.Field(i), cloned))
	}
}

func cloneValue(v reflect.Value, cloned CloneMap) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return v
		}
		if o, ok := v.Interface().(Object); ok {
			c := o.AsEventSource().Clone(nil, cloned)
			if isNilObject(c) {
				return reflect.Zero(v.Type())
			}
			cv := reflect.ValueOf(c)
			if !cv.Type().AssignableTo(v.Type()) {
				return reflect.Zero(v.Type())
			}
			return cv
		}
		return v
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		s := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(s, v)
		return s
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		m := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			m.SetMapIndex(iter.Key(), iter.Value())
		}
		return m
	}
	return v
}
