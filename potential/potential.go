// Package potential provides composable scalar potential functions whose
// zero level set defines the isosurface extracted by surfacenets.
//
// A potential is a small expression tree fixed at configuration time:
// primitives (Sphere, Plane, Box, Noise) combined with algebraic
// operators (Sum, Union, Intersect, Offset, Translate, Scale, Negate).
// Negative values are inside the surface, positive values outside.
//
// Every node evaluates on the CPU (Eval) and, except for Func, also
// emits an equivalent WGSL expression (WGSL) so the composition can be
// compiled directly into the GPU sampling shader. The composition is
// fixed per pipeline run, so no dynamic dispatch happens per sample on
// the GPU: the tree is flattened into a single expression.
package potential

import (
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Field is a scalar function of 3D position. The isosurface is its zero
// level set; negative values are inside.
type Field interface {
	// Eval returns the potential at world position (x, y, z).
	Eval(x, y, z float32) float32

	// WGSL returns a WGSL f32 expression computing the potential of the
	// vec3<f32> expression pos. It returns "" when the node cannot be
	// expressed in WGSL (see Func).
	WGSL(pos string) string
}

// wf formats a float32 as a WGSL f32 literal.
func wf(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32) + "f"
}

// wv3 formats a vector as a WGSL vec3<f32> constructor.
func wv3(v mgl32.Vec3) string {
	return fmt.Sprintf("vec3<f32>(%s, %s, %s)", wf(v.X()), wf(v.Y()), wf(v.Z()))
}

// Sphere is the signed distance to a sphere: |p - Center| - Radius.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

func (s Sphere) Eval(x, y, z float32) float32 {
	dx, dy, dz := x-s.Center.X(), y-s.Center.Y(), z-s.Center.Z()
	return math32.Sqrt(dx*dx+dy*dy+dz*dz) - s.Radius
}

func (s Sphere) WGSL(pos string) string {
	return fmt.Sprintf("(length((%s) - %s) - %s)", pos, wv3(s.Center), wf(s.Radius))
}

// Plane is the signed distance to a plane: dot(p, Normal) - Offset.
// A zero Normal defaults to +Y, making the zero Plane the potential p.y
// (the ground plane).
type Plane struct {
	Normal mgl32.Vec3
	Offset float32
}

func (pl Plane) normal() mgl32.Vec3 {
	if pl.Normal == (mgl32.Vec3{}) {
		return mgl32.Vec3{0, 1, 0}
	}
	return pl.Normal.Normalize()
}

func (pl Plane) Eval(x, y, z float32) float32 {
	n := pl.normal()
	return x*n.X() + y*n.Y() + z*n.Z() - pl.Offset
}

func (pl Plane) WGSL(pos string) string {
	return fmt.Sprintf("(dot(%s, %s) - %s)", pos, wv3(pl.normal()), wf(pl.Offset))
}

// Box is the signed distance to an axis-aligned box with the given
// half-extents around Center.
type Box struct {
	Center mgl32.Vec3
	Half   mgl32.Vec3
}

func (b Box) Eval(x, y, z float32) float32 {
	qx := math32.Abs(x-b.Center.X()) - b.Half.X()
	qy := math32.Abs(y-b.Center.Y()) - b.Half.Y()
	qz := math32.Abs(z-b.Center.Z()) - b.Half.Z()
	ox, oy, oz := math32.Max(qx, 0), math32.Max(qy, 0), math32.Max(qz, 0)
	outside := math32.Sqrt(ox*ox + oy*oy + oz*oz)
	inside := math32.Min(math32.Max(qx, math32.Max(qy, qz)), 0)
	return outside + inside
}

func (b Box) WGSL(pos string) string {
	return fmt.Sprintf("sn_box(%s, %s, %s)", pos, wv3(b.Center), wv3(b.Half))
}

// Offset shifts the potential by a constant, inflating (negative By) or
// deflating (positive By) the surface.
type Offset struct {
	F  Field
	By float32
}

func (o Offset) Eval(x, y, z float32) float32 { return o.F.Eval(x, y, z) + o.By }

func (o Offset) WGSL(pos string) string {
	inner := o.F.WGSL(pos)
	if inner == "" {
		return ""
	}
	return fmt.Sprintf("(%s + %s)", inner, wf(o.By))
}

// Translate moves the surface by By.
type Translate struct {
	F  Field
	By mgl32.Vec3
}

func (t Translate) Eval(x, y, z float32) float32 {
	return t.F.Eval(x-t.By.X(), y-t.By.Y(), z-t.By.Z())
}

func (t Translate) WGSL(pos string) string {
	inner := t.F.WGSL(fmt.Sprintf("((%s) - %s)", pos, wv3(t.By)))
	if inner == "" {
		return ""
	}
	return inner
}

// Scale scales the surface uniformly by Factor around the origin. The
// result stays a valid signed distance when F is one. A zero Factor is
// treated as 1, so the zero value passes F through unchanged.
type Scale struct {
	F      Field
	Factor float32
}

func (s Scale) factor() float32 {
	if s.Factor == 0 {
		return 1
	}
	return s.Factor
}

func (s Scale) Eval(x, y, z float32) float32 {
	k := s.factor()
	return s.F.Eval(x/k, y/k, z/k) * k
}

func (s Scale) WGSL(pos string) string {
	k := s.factor()
	inner := s.F.WGSL(fmt.Sprintf("((%s) * %s)", pos, wf(1/k)))
	if inner == "" {
		return ""
	}
	return fmt.Sprintf("(%s * %s)", inner, wf(k))
}

// Negate flips inside and outside.
type Negate struct {
	F Field
}

func (n Negate) Eval(x, y, z float32) float32 { return -n.F.Eval(x, y, z) }

func (n Negate) WGSL(pos string) string {
	inner := n.F.WGSL(pos)
	if inner == "" {
		return ""
	}
	return "(-" + inner + ")"
}

// combinator folds multiple fields with a binary operation.
type combinator struct {
	fields []Field
	fold   func(a, b float32) float32
	// wgslFold wraps two WGSL expressions, e.g. "min(%s, %s)".
	wgslFold string
}

func (c combinator) Eval(x, y, z float32) float32 {
	v := c.fields[0].Eval(x, y, z)
	for _, f := range c.fields[1:] {
		v = c.fold(v, f.Eval(x, y, z))
	}
	return v
}

func (c combinator) WGSL(pos string) string {
	expr := c.fields[0].WGSL(pos)
	if expr == "" {
		return ""
	}
	for _, f := range c.fields[1:] {
		next := f.WGSL(pos)
		if next == "" {
			return ""
		}
		expr = fmt.Sprintf(c.wgslFold, expr, next)
	}
	return expr
}

// Sum adds potentials. Summing a base surface with Noise displaces it.
// Sum panics when called with no fields: an empty potential has no zero
// level set.
func Sum(fields ...Field) Field {
	mustFields("Sum", fields)
	return combinator{fields, func(a, b float32) float32 { return a + b }, "(%s + %s)"}
}

// Union combines surfaces with min: a point is inside the union when it
// is inside any operand.
func Union(fields ...Field) Field {
	mustFields("Union", fields)
	return combinator{fields, math32.Min, "min(%s, %s)"}
}

// Intersect combines surfaces with max: a point is inside the
// intersection only when it is inside every operand.
func Intersect(fields ...Field) Field {
	mustFields("Intersect", fields)
	return combinator{fields, math32.Max, "max(%s, %s)"}
}

// Difference carves each subsequent surface out of the first:
// max(a, -b).
func Difference(base Field, cut ...Field) Field {
	fields := make([]Field, 0, len(cut)+1)
	fields = append(fields, base)
	for _, c := range cut {
		fields = append(fields, Negate{c})
	}
	return combinator{fields, math32.Max, "max(%s, %s)"}
}

func mustFields(op string, fields []Field) {
	if len(fields) == 0 {
		panic("potential: " + op + " requires at least one field")
	}
}

// Func wraps an arbitrary Go function as a Field. It evaluates on the
// CPU only; compositions containing Func cannot be compiled into the GPU
// sampling shader (WGSL returns "").
type Func func(x, y, z float32) float32

func (f Func) Eval(x, y, z float32) float32 { return f(x, y, z) }

func (f Func) WGSL(string) string { return "" }

// CompileWGSL flattens a field's expression tree into a single WGSL f32
// expression of the vec3<f32> variable pos. It returns ok=false when the
// tree contains a CPU-only node.
func CompileWGSL(f Field, pos string) (expr string, ok bool) {
	expr = f.WGSL(pos)
	return expr, expr != ""
}

