// Package dom provides an in-memory markup representation for arbor views.
//
// An [Element] wraps a golang.org/x/net/html node and implements
// arbor.Representation: styles are kept in a map mirrored to the style
// attribute, slot anchors are found with an XPath query on the data-slot
// attribute, and native events are dispatched synchronously to registered
// listeners.
//
//	root := dom.MustParse(`<div><ul data-slot="items"></ul></div>`)
//	list := arbor.NewView(root, "list")
//	list.Init()
//	item := arbor.NewView(dom.MustParse(`<li>one</li>`), nil)
//	item.Init()
//	list.Add(item, "items", nil)
//	fmt.Println(root.Text()) // one
package dom
