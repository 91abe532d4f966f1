package arbor

import (
	"math"
	"strings"

	"golang.org/x/image/math/f64"
)

// Matrices are f64.Aff3 in row-major order with an implicit [0 0 1] row:
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//	|  0    0    1   |

// Identity is the identity affine matrix.
var Identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// Translation returns T(x, y).
func Translation(x, y float64) f64.Aff3 {
	return f64.Aff3{1, 0, x, 0, 1, y}
}

// Rotation returns a rotation by r radians about the origin.
func Rotation(r float64) f64.Aff3 {
	sin, cos := math.Sincos(r)
	return f64.Aff3{cos, -sin, 0, sin, cos, 0}
}

// Scaling returns a uniform scale by s.
func Scaling(s float64) f64.Aff3 {
	return f64.Aff3{s, 0, 0, 0, s, 0}
}

// Multiply returns a·b: b is applied first, then a.
func Multiply(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// Invert returns the inverse of m, or Identity if m is singular.
func Invert(m f64.Aff3) f64.Aff3 {
	det := m[0]*m[4] - m[1]*m[3]
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	inv := 1.0 / det
	a := m[4] * inv
	b := -m[1] * inv
	c := -m[3] * inv
	d := m[0] * inv
	return f64.Aff3{
		a, b, -(a*m[2] + b*m[5]),
		c, d, -(c*m[2] + d*m[5]),
	}
}

// TransformPoint applies m to (x, y).
func TransformPoint(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// ToMat4 embeds m in a row-major 4×4 matrix.
func ToMat4(m f64.Aff3) f64.Mat4 {
	return f64.Mat4{
		m[0], m[1], 0, m[2],
		m[3], m[4], 0, m[5],
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// MatrixString formats m as a column-major matrix3d(...) string.
func MatrixString(m f64.Aff3) string {
	m4 := ToMat4(m)
	var sb strings.Builder
	sb.WriteString("matrix3d(")
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			if col != 0 || row != 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatFloat(m4[row*4+col]))
		}
	}
	sb.WriteString(")")
	return sb.String()
}

// --- Local transform ---

// localMatrix computes T(origin)·T(tx, ty)·R(rotation)·S(scale)·T(-origin).
// The origin brackets rotation and scale so it acts as their pivot.
func (v *View) localMatrix() f64.Aff3 {
	sin, cos := math.Sincos(v.rotation)
	s := v.scale
	a := cos * s
	b := -sin * s
	c := sin * s
	d := cos * s
	ox, oy := v.originX, v.originY
	return f64.Aff3{
		a, b, -(a*ox + b*oy) + ox + v.tx,
		c, d, -(c*ox + d*oy) + oy + v.ty,
	}
}

// CTM returns the view's own current transform: the local matrix applied on
// top of the frozen stack.
func (v *View) CTM() f64.Aff3 {
	m := v.localMatrix()
	if v.stack != nil {
		m = Multiply(m, *v.stack)
	}
	return m
}

// ParentCTM folds every ancestor's CTM, root first.
func (v *View) ParentCTM() f64.Aff3 {
	if v.parent == nil {
		return Identity
	}
	return Multiply(v.parent.ParentCTM(), v.parent.CTM())
}

// WorldCTM returns ParentCTM·CTM, the view's effective placement.
func (v *View) WorldCTM() f64.Aff3 {
	return Multiply(v.ParentCTM(), v.CTM())
}

// LocalToWorld converts a point in the view's space to root space.
func (v *View) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return TransformPoint(v.WorldCTM(), lx, ly)
}

// WorldToLocal converts a root-space point to the view's space.
func (v *View) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return TransformPoint(Invert(v.WorldCTM()), wx, wy)
}

// applyTransform writes the full CTM to the representation. It never
// patches a previous value.
func (v *View) applyTransform() {
	if v.node == nil {
		return
	}
	v.node.SetStyle("transform", MatrixString(v.CTM()))
	v.applyCount++
}

// --- Transform property setters ---

// SetTranslation sets the translation.
func (v *View) SetTranslation(x, y float64) {
	v.tx, v.ty = x, y
	v.applyTransform()
}

// Translation returns the translation.
func (v *View) Translation() (x, y float64) {
	return v.tx, v.ty
}

// SetRotation sets the rotation in radians.
func (v *View) SetRotation(r float64) {
	v.rotation = r
	v.applyTransform()
}

// Rotation returns the rotation in radians.
func (v *View) Rotation() float64 {
	return v.rotation
}

func (v *View) clampScale(s float64) float64 {
	return max(v.MinScale, min(v.MaxScale, s))
}

// SetScale stores s clamped to [MinScale, MaxScale]. Reports whether the
// stored value changed; the transform is only re-applied if it did.
func (v *View) SetScale(s float64) bool {
	s = v.clampScale(s)
	if s == v.scale {
		return false
	}
	v.scale = s
	v.applyTransform()
	return true
}

// Scale returns the stored scale.
func (v *View) Scale() float64 {
	return v.scale
}

// SetScaleBounds sets MinScale and MaxScale and re-clamps the scale.
func (v *View) SetScaleBounds(minScale, maxScale float64) {
	if minScale > maxScale {
		minScale, maxScale = maxScale, minScale
	}
	v.MinScale, v.MaxScale = minScale, maxScale
	v.SetScale(v.scale)
}

// TransformOrigin returns the current pivot.
func (v *View) TransformOrigin() (x, y float64) {
	return v.originX, v.originY
}

// SetNewTransformOrigin freezes the current transform into the stack,
// resets translation, rotation and scale, and pivots later operations
// around (x, y).
func (v *View) SetNewTransformOrigin(x, y float64) {
	v.freeze(v.localMatrix())
	v.tx, v.ty = 0, 0
	v.rotation = 0
	v.scale = v.clampScale(1)
	v.originX, v.originY = x, y
	v.applyTransform()
}

// PushNewTransform folds m into the frozen stack, leaving translation,
// rotation and scale untouched.
func (v *View) PushNewTransform(m f64.Aff3) {
	v.freeze(m)
	v.applyTransform()
}

// freeze sets stack = m·stack.
func (v *View) freeze(m f64.Aff3) {
	if v.stack != nil {
		m = Multiply(m, *v.stack)
	}
	v.stack = &m
}

// ClearTransformStack discards the frozen stack only.
func (v *View) ClearTransformStack() {
	v.stack = nil
	v.applyTransform()
}

// TransformStack returns the frozen stack.
func (v *View) TransformStack() (f64.Aff3, bool) {
	if v.stack == nil {
		return Identity, false
	}
	return *v.stack, true
}
