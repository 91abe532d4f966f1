// Package arbor is a retained view toolkit: objects that publish and
// subscribe to named events, a tree of views bridged to an external node
// tree, and 2D affine transforms stacked across that tree.
//
// # Objects and events
//
// Every object embeds [EventSource]. Embedding types call
// [EventSource.Construct] with their outer value so hooks and callbacks
// reach it:
//
//	type Counter struct {
//		arbor.EventSource
//		Count int
//	}
//
//	func NewCounter(config any) *Counter {
//		c := &Counter{}
//		c.Construct(c, config)
//		return c
//	}
//
// [EventSource.Init] registers the object (see [Lookup]) and applies its
// pending configuration to exported fields or a [PropertySetter].
//
// [EventSource.Bind] subscribes an object to an event name. Callbacks are
// methods looked up by name, so Method("on_changed") calls OnChanged, or
// direct functions built with [Func]. [EventSource.Propagate] never calls
// handlers synchronously: each binding becomes a task on the [Scheduler]
// and runs on a later turn. Drive the scheduler with [Flush],
// [Scheduler.RunPending] once per frame, or [Scheduler.Run].
//
//	counter.Bind("changed", listener, arbor.Method("on_changed"))
//	counter.Propagate("changed", 3)
//	arbor.Flush()
//
// An event nobody is bound to on a view falls back to the view's parent,
// with [Event.SourceTarget] naming the original emitter.
//
// # Views
//
// A [View] is an object backed by a [Representation], an external node
// such as a [github.com/phanxgames/arbor/dom.Element]. Children are added to
// named slots whose anchors are the descendants of the representation
// carrying a data-slot attribute:
//
//	root := arbor.NewView(dom.MustParse(`<div><ul data-slot="items"></ul></div>`), nil)
//	root.Init()
//	root.Add(item, "items", nil)
//
// Show, Hide, SetPosition, SetSize and SetOpacity write styles on the
// representation. [EventSource.NodeBind] listens to native events of a node
// and translates the logical pointer events ([PointerStart], [PointerMove],
// [PointerEnd]) to the host's names.
//
// # Transforms
//
// Each view has a translation, rotation and scale applied about a transform
// origin, on top of a frozen stack built by [View.SetNewTransformOrigin] and
// [View.PushNewTransform]. The full matrix is written to the transform
// style as matrix3d(...) after every change. [View.WorldCTM] composes the
// ancestors' matrices.
//
// # Logging
//
// Misuse (binding a missing callback, adding to a slot without an anchor)
// is logged through a [go.uber.org/zap] logger and otherwise ignored.
// Replace it with [SetLogger].
package arbor
