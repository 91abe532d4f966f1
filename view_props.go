package arbor

// viewPersisted lists the properties of a view's JSON projection.
var viewPersisted = []string{
	"tag", "minScale", "maxScale",
	"translate", "rotate", "scale", "origin",
	"opacity", "visible", "position", "size",
}

// PersistedProperties implements Persister.
func (v *View) PersistedProperties() []string {
	return viewPersisted
}

// SetProperty is the view's accessor table for Configure. Pairs accept a
// two-element list or an {x, y} map.
func (v *View) SetProperty(key string, value any) bool {
	switch key {
	case "translate":
		if x, y, ok := toPair(value); ok {
			v.SetTranslation(x, y)
			return true
		}
	case "rotate", "rotation":
		if r, ok := toFloat(value); ok {
			v.SetRotation(r)
			return true
		}
	case "scale":
		if s, ok := toFloat(value); ok {
			v.configScale = &s
			v.SetScale(s)
			return true
		}
	case "origin":
		if x, y, ok := toPair(value); ok {
			v.originX, v.originY = x, y
			v.applyTransform()
			return true
		}
	case "opacity":
		if a, ok := toFloat(value); ok {
			v.SetOpacity(a)
			return true
		}
	case "visible":
		if b, ok := value.(bool); ok {
			v.SetVisible(b)
			return true
		}
	case "hidden":
		if b, ok := value.(bool); ok {
			v.SetVisible(!b)
			return true
		}
	case "position":
		if x, y, ok := toPair(value); ok {
			v.SetPosition(x, y)
			return true
		}
	case "size":
		if w, h, ok := toPair(value); ok {
			v.SetSize(w, h)
			return true
		}
	}
	return false
}

// Property is the read side of SetProperty.
func (v *View) Property(key string) (any, bool) {
	switch key {
	case "translate":
		return []float64{v.tx, v.ty}, true
	case "rotate", "rotation":
		return v.rotation, true
	case "scale":
		return v.scale, true
	case "origin":
		return []float64{v.originX, v.originY}, true
	case "opacity":
		return v.opacity, true
	case "visible":
		return !v.hidden, true
	case "position":
		x, y := v.Position()
		return []float64{x, y}, true
	case "size":
		w, h := v.Size()
		return []float64{w, h}, true
	}
	return nil, false
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toPair(value any) (float64, float64, bool) {
	switch p := value.(type) {
	case []float64:
		if len(p) == 2 {
			return p[0], p[1], true
		}
	case []any:
		if len(p) == 2 {
			x, okx := toFloat(p[0])
			y, oky := toFloat(p[1])
			return x, y, okx && oky
		}
	case map[string]any:
		x, okx := toFloat(p["x"])
		y, oky := toFloat(p["y"])
		return x, y, okx && oky
	}
	return 0, 0, false
}
