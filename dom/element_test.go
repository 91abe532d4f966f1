package dom

import (
	"strings"
	"testing"

	"github.com/phanxgames/arbor"
)

// --- Parse ---

func TestParseSingleRoot(t *testing.T) {
	e, err := Parse(`  <div class="box"><span>hi</span></div>  `)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Tag() != "div" {
		t.Errorf("Tag = %q, want div", e.Tag())
	}
	if e.Attr("class") != "box" {
		t.Errorf("class = %q, want box", e.Attr("class"))
	}
	if e.Text() != "hi" {
		t.Errorf("Text = %q, want hi", e.Text())
	}
	if e.ParentNode() != nil {
		t.Error("parsed root should have no parent")
	}
}

func TestOwnText(t *testing.T) {
	e := MustParse(`<p> label <b>bold</b></p>`)
	if got := e.OwnText(); got != "label" {
		t.Errorf("OwnText = %q, want label", got)
	}
	if got := e.Text(); got != " label bold" {
		t.Errorf("Text = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, markup := range []string{"", "plain text", "<a></a><b></b>"} {
		if _, err := Parse(markup); err == nil {
			t.Errorf("Parse(%q) should fail", markup)
		}
	}
}

// --- Tree ---

func TestAppendChildMovesNode(t *testing.T) {
	a := MustParse(`<div id="a"></div>`)
	b := MustParse(`<div id="b"></div>`)
	c := MustParse(`<span></span>`)

	a.AppendChild(c)
	if c.ParentNode() != arbor.Representation(a) {
		t.Fatal("c should be under a")
	}
	b.AppendChild(c)
	if c.ParentNode() != arbor.Representation(b) {
		t.Fatal("c should be under b")
	}
	if len(a.Children()) != 0 {
		t.Errorf("a children = %d, want 0", len(a.Children()))
	}
	if got := b.Children(); len(got) != 1 || got[0] != c {
		t.Errorf("b children = %v, want [c]", got)
	}
}

func TestRemoveChild(t *testing.T) {
	a := MustParse(`<div></div>`)
	c := NewElement("span")
	a.AppendChild(c)
	a.RemoveChild(c)
	if c.ParentNode() != nil {
		t.Error("removed child should have no parent")
	}
	// Not a child: no-op.
	a.RemoveChild(c)
}

func TestWrapperIdentityAcrossTrees(t *testing.T) {
	root := MustParse(`<div><p data-slot="body"></p></div>`)
	child := MustParse(`<i><b></b></i>`)
	inner := child.Children()[0]

	body := root.FindAnchors(arbor.AnchorMarker)["body"]
	body.AppendChild(child)

	if inner.ParentNode() != arbor.Representation(child) {
		t.Error("inner wrapper should still resolve its parent after adoption")
	}
	if child.Children()[0] != inner {
		t.Error("adopted subtree should keep its wrappers")
	}
}

// --- Anchors ---

func TestFindAnchors(t *testing.T) {
	e := MustParse(`<div data-slot="self">
		<header data-slot="head"></header>
		<section><div data-slot="body"></div></section>
		<div data-slot="body"></div>
	</div>`)
	anchors := e.FindAnchors("data-slot")
	if len(anchors) != 2 {
		t.Fatalf("anchors = %d, want 2", len(anchors))
	}
	if _, ok := anchors["self"]; ok {
		t.Error("the element itself is not an anchor")
	}
	head := anchors["head"].(*Element)
	if head.Tag() != "header" {
		t.Errorf("head tag = %q", head.Tag())
	}
	body := anchors["body"].(*Element)
	if body.ParentNode().(*Element).Tag() != "section" {
		t.Error("first body anchor in document order should win")
	}
}

func TestQuery(t *testing.T) {
	e := MustParse(`<ul><li>a</li><li class="x">b</li></ul>`)
	li, err := e.Query(`.//li[@class="x"]`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if li == nil || li.Text() != "b" {
		t.Errorf("Query = %v", li)
	}
	all, err := e.QueryAll(`.//li`)
	if err != nil || len(all) != 2 {
		t.Errorf("QueryAll = %d, %v; want 2", len(all), err)
	}
	if _, err := e.Query(`.//li[`); err == nil {
		t.Error("invalid expression should fail")
	}
}

// --- Style ---

func TestStyleMirrorsAttribute(t *testing.T) {
	e := MustParse(`<div style="color: red"></div>`)
	if e.Style("color") != "red" {
		t.Errorf("color = %q, want red", e.Style("color"))
	}
	e.SetStyle("width", "10px")
	if got := e.Attr("style"); got != "color: red; width: 10px;" {
		t.Errorf("style attr = %q", got)
	}
	e.SetStyle("color", "")
	if got := e.Attr("style"); got != "width: 10px;" {
		t.Errorf("style attr = %q", got)
	}
	e.SetStyle("width", "")
	if strings.Contains(e.String(), "style") {
		t.Errorf("empty style should drop the attribute: %s", e)
	}
}

func TestParseStyle(t *testing.T) {
	got := parseStyle(" a: 1; transform: matrix3d(1, 0, 0, 1) ")
	if len(got) != 2 || got["a"] != "1" || got["transform"] != "matrix3d(1, 0, 0, 1)" {
		t.Errorf("parseStyle = %v", got)
	}
	if got := parseStyle("color: red !important"); got["color"] != "red" {
		t.Errorf("color = %q, want red", got["color"])
	}
	if got := parseStyle("   "); len(got) != 0 {
		t.Errorf("blank style = %v", got)
	}
}

func TestSetAttrStyleReplacesMap(t *testing.T) {
	e := NewElement("div")
	e.SetStyle("a", "1")
	e.SetAttr("style", "b: 2")
	if e.Style("a") != "" || e.Style("b") != "2" {
		t.Errorf("style map not replaced: a=%q b=%q", e.Style("a"), e.Style("b"))
	}
}

// --- Events ---

func TestListeners(t *testing.T) {
	e := NewElement("div")
	var got []string
	id1 := e.AddEventListener("click", func(ev *arbor.NativeEvent) { got = append(got, "1") })
	e.AddEventListener("click", func(ev *arbor.NativeEvent) { got = append(got, "2") })

	ev := &arbor.NativeEvent{Type: "click"}
	e.Dispatch(ev)
	if strings.Join(got, "") != "12" {
		t.Errorf("order = %v, want [1 2]", got)
	}
	if ev.Target != arbor.EventTarget(e) {
		t.Error("Target should default to the dispatching element")
	}

	e.RemoveEventListener("click", id1)
	got = nil
	e.Dispatch(&arbor.NativeEvent{Type: "click"})
	if strings.Join(got, "") != "2" {
		t.Errorf("after remove = %v, want [2]", got)
	}
	if e.ListenerCount("click") != 1 {
		t.Errorf("ListenerCount = %d, want 1", e.ListenerCount("click"))
	}
}

func TestDispatchBubbling(t *testing.T) {
	root := MustParse(`<div><p><b></b></p></div>`)
	b, _ := root.Query(`.//b`)
	var order []string
	root.AddEventListener("pointerdown", func(ev *arbor.NativeEvent) { order = append(order, "div") })
	b.AddEventListener("pointerdown", func(ev *arbor.NativeEvent) { order = append(order, "b") })

	ev := &arbor.NativeEvent{Type: "pointerdown"}
	b.DispatchBubbling(ev)
	if strings.Join(order, ",") != "b,div" {
		t.Errorf("order = %v, want [b div]", order)
	}
	if ev.Target != arbor.EventTarget(b) {
		t.Error("Target should stay the origin element")
	}
}

// --- Clone / render ---

func TestCloneNode(t *testing.T) {
	e := MustParse(`<div style="color: red"><span>x</span></div>`)
	e.AddEventListener("click", func(*arbor.NativeEvent) {})
	c := e.CloneNode().(*Element)
	if c == e || c.Node() == e.Node() {
		t.Fatal("clone should be a new node")
	}
	if c.String() != e.String() {
		t.Errorf("clone markup = %s, want %s", c, e)
	}
	if c.Style("color") != "red" {
		t.Error("clone should carry the style")
	}
	if c.ListenerCount("click") != 0 {
		t.Error("clone should not carry listeners")
	}
	c.SetStyle("color", "blue")
	if e.Style("color") != "red" {
		t.Error("clone should not share style with the original")
	}
}

func TestString(t *testing.T) {
	e := MustParse(`<ul><li>a</li></ul>`)
	if got := e.String(); got != "<ul><li>a</li></ul>" {
		t.Errorf("String = %q", got)
	}
}

// --- Views over elements ---

func TestViewTreeOverElements(t *testing.T) {
	root := MustParse(`<div><ul data-slot="items"></ul></div>`)
	list := arbor.NewView(root, nil)
	list.Init()
	defer list.Destroy()

	item := arbor.NewView(MustParse(`<li>one</li>`), nil)
	item.Init()
	if !list.Add(item, "items", nil) {
		t.Fatal("Add failed")
	}
	ul, _ := root.Query(`.//ul`)
	if got := ul.Children(); len(got) != 1 || got[0].Text() != "one" {
		t.Fatalf("ul children = %v", got)
	}
	if !strings.HasPrefix(item.Representation().Style("transform"), "matrix3d(") {
		t.Errorf("transform style = %q", item.Representation().Style("transform"))
	}

	list.Remove(item)
	if len(ul.Children()) != 0 {
		t.Error("Remove should detach the element")
	}
	item.Destroy()
}
