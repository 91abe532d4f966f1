package ebitenhost

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/arbor"
	"golang.org/x/image/colornames"
	"golang.org/x/image/math/f64"
)

// whitePixel is a 1x1 white image scaled into every filled quad.
var whitePixel *ebiten.Image

func quadImage() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// ParseColor reads a color name (as in golang.org/x/image/colornames), a
// #rgb or #rrggbb hex value, or "transparent".
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" {
		return color.RGBA{}, s == "transparent"
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// geoM converts an affine matrix to ebiten's GeoM.
func geoM(m f64.Aff3) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[1])
	g.SetElement(0, 2, m[2])
	g.SetElement(1, 0, m[3])
	g.SetElement(1, 1, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// drawView paints v and its subtree in painter order. alpha is the product
// of the ancestors' opacity.
func (h *Host) drawView(screen *ebiten.Image, v *arbor.View, parent f64.Aff3, alpha float64) {
	if v.Hidden() {
		return
	}
	m := placement(parent, v)
	alpha *= v.Opacity()
	if alpha <= 0 {
		return
	}

	if rep := v.Representation(); rep != nil {
		w, ht := v.Size()
		c, ok := ParseColor(rep.Style("background"))
		if ok && c.A > 0 && w > 0 && ht > 0 {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(w, ht)
			op.GeoM.Concat(geoM(m))
			op.ColorScale.ScaleWithColor(c)
			op.ColorScale.ScaleAlpha(float32(alpha))
			screen.DrawImage(quadImage(), op)
		}
		h.drawText(screen, rep, m, alpha)
	}

	for _, child := range v.AllChildren() {
		h.drawView(screen, child.AsView(), m, alpha)
	}
}
