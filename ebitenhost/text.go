package ebitenhost

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/phanxgames/arbor"
	"golang.org/x/image/font/gofont/goregular"
	"go.uber.org/zap"
	"golang.org/x/image/math/f64"
)

// defaultFontSize is used when a representation has no font-size style.
const defaultFontSize = 16

// ownTexter is implemented by representations carrying text of their own
// (dom.Element).
type ownTexter interface {
	OwnText() string
}

// fontCache holds one face per size over the embedded Go Regular font.
type fontCache struct {
	source *text.GoTextFaceSource
	faces  map[float64]*text.GoTextFace
}

func newFontCache() (*fontCache, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("ebitenhost: failed to parse font: %w", err)
	}
	return &fontCache{source: source, faces: make(map[float64]*text.GoTextFace)}, nil
}

func (fc *fontCache) face(size float64) *text.GoTextFace {
	f, ok := fc.faces[size]
	if !ok {
		f = &text.GoTextFace{Source: fc.source, Size: size}
		fc.faces[size] = f
	}
	return f
}

// lineHeight is the distance between baselines of face.
func lineHeight(face *text.GoTextFace) float64 {
	m := face.Metrics()
	return m.HAscent + m.HDescent + m.HLineGap
}

// textStyle reads the color and font-size styles of rep. Text defaults to
// white.
func textStyle(rep arbor.Representation) (color.RGBA, float64) {
	c, ok := ParseColor(rep.Style("color"))
	if !ok {
		c = color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	size := float64(defaultFontSize)
	fs := strings.TrimSuffix(strings.TrimSpace(rep.Style("font-size")), "px")
	if px, err := strconv.ParseFloat(fs, 64); err == nil && px > 0 {
		size = px
	}
	return c, size
}

// drawText paints the representation's own text at the top-left of its
// box.
func (h *Host) drawText(screen *ebiten.Image, rep arbor.Representation, m f64.Aff3, alpha float64) {
	t, ok := rep.(ownTexter)
	if !ok {
		return
	}
	s := t.OwnText()
	if s == "" {
		return
	}
	if h.fonts == nil {
		fc, err := newFontCache()
		if err != nil {
			arbor.Logger().Error("text disabled", zap.Error(err))
			h.fonts = &fontCache{}
			return
		}
		h.fonts = fc
	}
	if h.fonts.source == nil {
		return
	}
	c, size := textStyle(rep)
	face := h.fonts.face(size)

	op := &text.DrawOptions{}
	op.LineSpacing = lineHeight(face)
	op.GeoM = geoM(m)
	op.ColorScale.ScaleWithColor(c)
	op.ColorScale.ScaleAlpha(float32(alpha))
	text.Draw(screen, s, face, op)
}
