package dom

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/antchfx/htmlquery"
	"github.com/phanxgames/arbor"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tree maps the nodes of one markup tree to their wrappers so a node always
// yields the same *Element.
type tree struct {
	elements map[*html.Node]*Element
}

func newTree() *tree {
	return &tree{elements: make(map[*html.Node]*Element)}
}

func (t *tree) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if e, ok := t.elements[n]; ok {
		return e
	}
	e := &Element{node: n, tree: t, style: parseStyle(attr(n, "style"))}
	t.elements[n] = e
	return e
}

type listener struct {
	id ListenerID
	fn func(*arbor.NativeEvent)
}

// ListenerID aliases arbor's listener handle.
type ListenerID = arbor.ListenerID

var listenerCounter atomic.Uint64

// Element is a markup element usable as a view representation.
type Element struct {
	node      *html.Node
	tree      *tree
	style     map[string]string
	listeners map[string][]listener
}

var _ arbor.Representation = (*Element)(nil)

// Parse builds an element from markup with a single root element. Leading
// and trailing whitespace is ignored.
func Parse(markup string) (*Element, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(strings.TrimSpace(markup)), ctx)
	if err != nil {
		return nil, fmt.Errorf("dom: failed to parse markup: %w", err)
	}
	var root *html.Node
	for _, n := range nodes {
		switch n.Type {
		case html.ElementNode:
			if root != nil {
				return nil, fmt.Errorf("dom: markup has more than one root element")
			}
			root = n
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return nil, fmt.Errorf("dom: markup has text outside the root element")
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("dom: markup has no root element")
	}
	return newTree().wrap(root), nil
}

// MustParse is like Parse but panics on error.
func MustParse(markup string) *Element {
	e, err := Parse(markup)
	if err != nil {
		panic(err)
	}
	return e
}

// NewElement creates an empty element with the given tag.
func NewElement(tag string) *Element {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return newTree().wrap(n)
}

// Factory is an arbor.RepresentationFactory parsing layout templates.
func Factory(template string) (arbor.Representation, error) {
	e, err := Parse(template)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Node returns the underlying markup node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Tag returns the element name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the named attribute, or "" if absent.
func (e *Element) Attr(name string) string {
	return attr(e.node, name)
}

// SetAttr sets the named attribute. Setting "style" replaces every style
// property.
func (e *Element) SetAttr(name, value string) {
	setAttr(e.node, name, value)
	if name == "style" {
		e.style = parseStyle(value)
	}
}

// Text returns the text content of the element and its descendants.
func (e *Element) Text() string {
	return htmlquery.InnerText(e.node)
}

// OwnText returns the element's direct text children joined and trimmed,
// leaving out the text of child elements.
func (e *Element) OwnText() string {
	var sb strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// --- Tree ---

// ParentNode returns the parent element, or nil at the root.
func (e *Element) ParentNode() arbor.Representation {
	if p := e.parent(); p != nil {
		return p
	}
	return nil
}

func (e *Element) parent() *Element {
	return e.tree.wrap(e.node.Parent)
}

// Children returns the child elements in document order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.tree.wrap(c))
		}
	}
	return out
}

// AppendChild moves child (an *Element) to the end of e's children.
func (e *Element) AppendChild(child arbor.Representation) {
	c, ok := child.(*Element)
	if !ok || c == nil {
		arbor.Logger().Warn("dom: appendChild of a foreign representation",
			zap.String("type", fmt.Sprintf("%T", child)))
		return
	}
	if c.node.Parent != nil {
		c.node.Parent.RemoveChild(c.node)
	}
	e.node.AppendChild(c.node)
	if c.tree != e.tree {
		e.tree.adopt(c.node, c.tree)
	}
}

// RemoveChild detaches child from e. No-op if child is not e's child.
func (e *Element) RemoveChild(child arbor.Representation) {
	c, ok := child.(*Element)
	if !ok || c == nil || c.node.Parent != e.node {
		return
	}
	e.node.RemoveChild(c.node)
	// A detached subtree becomes its own tree again.
	newTree().adopt(c.node, e.tree)
}

// adopt moves the wrappers of the subtree rooted at n from old into t.
func (t *tree) adopt(n *html.Node, old *tree) {
	if w, ok := old.elements[n]; ok {
		delete(old.elements, n)
		w.tree = t
		t.elements[n] = w
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.adopt(c, old)
	}
}

// FindAnchors returns the descendants carrying the marker attribute, keyed
// by its value. The first element wins when a value repeats.
func (e *Element) FindAnchors(marker string) map[string]arbor.Representation {
	nodes, err := htmlquery.QueryAll(e.node, ".//*[@"+marker+"]")
	if err != nil {
		arbor.Logger().Warn("dom: invalid anchor marker", zap.String("marker", marker), zap.Error(err))
		return nil
	}
	anchors := make(map[string]arbor.Representation, len(nodes))
	for _, n := range nodes {
		key := attr(n, marker)
		if _, ok := anchors[key]; ok {
			continue
		}
		anchors[key] = e.tree.wrap(n)
	}
	return anchors
}

// Query returns the first descendant matching the XPath expression.
func (e *Element) Query(expr string) (*Element, error) {
	n, err := htmlquery.Query(e.node, expr)
	if err != nil {
		return nil, err
	}
	return e.tree.wrap(n), nil
}

// QueryAll returns every descendant matching the XPath expression.
func (e *Element) QueryAll(expr string) ([]*Element, error) {
	nodes, err := htmlquery.QueryAll(e.node, expr)
	if err != nil {
		return nil, err
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if w := e.tree.wrap(n); w != nil {
			out = append(out, w)
		}
	}
	return out, nil
}

// CloneNode deep-copies the markup. Listeners are not copied.
func (e *Element) CloneNode() arbor.Representation {
	return newTree().wrap(cloneHTMLNode(e.node))
}

func cloneHTMLNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneHTMLNode(c))
	}
	return clone
}

// String renders the element's markup.
func (e *Element) String() string {
	var sb strings.Builder
	if err := html.Render(&sb, e.node); err != nil {
		return ""
	}
	return sb.String()
}

// --- Events ---

// AddEventListener registers fn for eventName.
func (e *Element) AddEventListener(eventName string, fn func(*arbor.NativeEvent)) ListenerID {
	id := ListenerID(listenerCounter.Add(1))
	if e.listeners == nil {
		e.listeners = make(map[string][]listener)
	}
	e.listeners[eventName] = append(e.listeners[eventName], listener{id: id, fn: fn})
	return id
}

// RemoveEventListener removes the listener registered under id.
func (e *Element) RemoveEventListener(eventName string, id ListenerID) {
	list := e.listeners[eventName]
	i := slices.IndexFunc(list, func(l listener) bool { return l.id == id })
	if i < 0 {
		return
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(e.listeners, eventName)
		return
	}
	e.listeners[eventName] = list
}

// ListenerCount returns the number of listeners for eventName.
func (e *Element) ListenerCount(eventName string) int {
	return len(e.listeners[eventName])
}

// Dispatch runs e's listeners for ev.Type synchronously. ev.Target defaults
// to e.
func (e *Element) Dispatch(ev *arbor.NativeEvent) {
	if ev.Target == nil {
		ev.Target = e
	}
	for _, l := range slices.Clone(e.listeners[ev.Type]) {
		l.fn(ev)
	}
}

// DispatchBubbling dispatches ev on e, then on each ancestor.
func (e *Element) DispatchBubbling(ev *arbor.NativeEvent) {
	for cur := e; cur != nil; cur = cur.parent() {
		cur.Dispatch(ev)
	}
}

// --- Attributes ---

func attr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool { return a.Key == name })
}
