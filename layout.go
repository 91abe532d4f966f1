package arbor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout is a declarative view tree, usually loaded from YAML:
//
//	id: root
//	template: <div><ul data-slot="items"></ul></div>
//	size: [320, 240]
//	children:
//	  - id: first
//	    slot: items
//	    template: <li>one</li>
//	    translate: [10, 0]
type Layout struct {
	ID       string `yaml:"id"`
	Template string `yaml:"template"`
	Slot     string `yaml:"slot"`
	Tag      string `yaml:"tag"`

	Position  []float64 `yaml:"position"`
	Size      []float64 `yaml:"size"`
	Translate []float64 `yaml:"translate"`
	Rotate    float64   `yaml:"rotate"`
	Scale     *float64  `yaml:"scale"`
	Origin    []float64 `yaml:"origin"`
	MinScale  *float64  `yaml:"minScale"`
	MaxScale  *float64  `yaml:"maxScale"`
	Hidden    bool      `yaml:"hidden"`

	// Config holds extra properties assigned by Configure. The typed
	// fields above take precedence.
	Config   Config    `yaml:"config"`
	Children []*Layout `yaml:"children"`
}

// RepresentationFactory builds the representation for a layout template.
type RepresentationFactory func(template string) (Representation, error)

// LoadLayout parses a YAML layout.
func LoadLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("arbor: failed to parse layout YAML: %w", err)
	}
	return &l, nil
}

// LoadLayoutFile reads and parses a YAML layout file.
func LoadLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return LoadLayout(data)
}

// config flattens the typed fields into a Config for the view.
func (l *Layout) config() Config {
	c := Config{}
	for k, v := range l.Config {
		c[k] = v
	}
	if l.ID != "" {
		c["id"] = l.ID
	}
	if l.Tag != "" {
		c["tag"] = l.Tag
	}
	if len(l.Position) == 2 {
		c["position"] = l.Position
	}
	if len(l.Size) == 2 {
		c["size"] = l.Size
	}
	if len(l.Translate) == 2 {
		c["translate"] = l.Translate
	}
	if l.Rotate != 0 {
		c["rotate"] = l.Rotate
	}
	if l.Scale != nil {
		c["scale"] = *l.Scale
	}
	if len(l.Origin) == 2 {
		c["origin"] = l.Origin
	}
	if l.MinScale != nil {
		c["minScale"] = *l.MinScale
	}
	if l.MaxScale != nil {
		c["maxScale"] = *l.MaxScale
	}
	if l.Hidden {
		c["hidden"] = true
	}
	return c
}

// Build creates, initializes and attaches the views of the layout. Layouts
// without a template become non-visual views. On error every view built so
// far is destroyed.
func (l *Layout) Build(factory RepresentationFactory) (*View, error) {
	var node Representation
	if l.Template != "" {
		if factory == nil {
			return nil, fmt.Errorf("arbor: layout %q has a template but no factory", l.ID)
		}
		var err error
		node, err = factory(l.Template)
		if err != nil {
			return nil, fmt.Errorf("arbor: layout %q: %w", l.ID, err)
		}
	}

	v := NewView(node, l.config())
	v.Init()

	for i, cl := range l.Children {
		if cl == nil {
			continue
		}
		child, err := cl.Build(factory)
		if err != nil {
			v.Destroy()
			return nil, fmt.Errorf("child %d of %q: %w", i, v.ID(), err)
		}
		if !v.Add(child, cl.Slot, nil) {
			child.Destroy()
			v.Destroy()
			return nil, fmt.Errorf("arbor: cannot add %q to slot %q of %q", child.ID(), cl.Slot, v.ID())
		}
	}
	return v, nil
}
