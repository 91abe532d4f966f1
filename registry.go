package arbor

import "strconv"

// idCounter is a plain counter (no atomic: arbor is single-threaded).
var idCounter uint64

// idPrefix is prepended to generated object ids.
const idPrefix = "arbor"

func nextID() string {
	idCounter++
	return idPrefix + strconv.FormatUint(idCounter, 10)
}

// registry holds every initialized, not yet destroyed object keyed by id.
// Entries are inserted by Init and erased by Destroy. Like the rest of the
// core it is only touched from the scheduler's turn.
var registry = make(map[string]Object)

func register(o Object) {
	registry[o.AsEventSource().id] = o
}

func unregister(o Object) {
	id := o.AsEventSource().id
	// Only erase our own entry: a later object may have reused the id.
	if cur, ok := registry[id]; ok && cur == o {
		delete(registry, id)
	}
}

// Lookup returns the live object registered under id.
func Lookup(id string) (Object, bool) {
	o, ok := registry[id]
	return o, ok
}

// Registered returns the number of live objects.
func Registered() int {
	return len(registry)
}
