package dom

import (
	"slices"
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/phanxgames/arbor"
	"go.uber.org/zap"
)

// SetStyle sets one style property and mirrors the style map into the style
// attribute. An empty value removes the property.
func (e *Element) SetStyle(name, value string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if value == "" {
		delete(e.style, name)
	} else {
		if e.style == nil {
			e.style = make(map[string]string)
		}
		e.style[name] = value
	}
	if len(e.style) == 0 {
		removeAttr(e.node, "style")
		return
	}
	setAttr(e.node, "style", formatStyle(e.style))
}

// Style returns one style property, or "" if unset.
func (e *Element) Style(name string) string {
	return e.style[name]
}

// parseStyle reads a style attribute ("a: b; c: d") into a map. An
// attribute that does not parse is dropped with a warning.
func parseStyle(s string) map[string]string {
	out := make(map[string]string)
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	// The parser wants every declaration terminated.
	if !strings.HasSuffix(s, ";") {
		s += ";"
	}
	decls, err := parser.ParseDeclarations(s)
	if err != nil {
		arbor.Logger().Warn("dom: invalid style attribute", zap.String("style", s), zap.Error(err))
		return out
	}
	for _, d := range decls {
		if d.Property == "" || d.Value == "" {
			continue
		}
		out[d.Property] = d.Value
	}
	return out
}

// formatStyle writes the declarations sorted by name.
func formatStyle(style map[string]string) string {
	names := make([]string, 0, len(style))
	for name := range style {
		names = append(names, name)
	}
	slices.Sort(names)
	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(style[name])
		sb.WriteString(";")
	}
	return sb.String()
}
