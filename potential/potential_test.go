package potential

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const evalEps = 1e-5

func approx(t *testing.T, got, want float32, msg string) {
	t.Helper()
	if math.Abs(float64(got-want)) > evalEps {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestSphereEval(t *testing.T) {
	s := Sphere{Radius: 1}

	approx(t, s.Eval(0, 0, 0), -1, "center")
	approx(t, s.Eval(1, 0, 0), 0, "on surface")
	approx(t, s.Eval(2, 0, 0), 1, "outside")

	off := Sphere{Center: mgl32.Vec3{3, 0, 0}, Radius: 0.5}
	approx(t, off.Eval(3, 0, 0), -0.5, "offset center")
	approx(t, off.Eval(3.5, 0, 0), 0, "offset surface")
}

func TestPlaneEval(t *testing.T) {
	// Zero value is the ground plane p.y.
	p := Plane{}
	approx(t, p.Eval(10, 2, -7), 2, "above")
	approx(t, p.Eval(0, -3, 0), -3, "below")
	approx(t, p.Eval(1, 0, 1), 0, "on plane")

	// Non-unit normals are normalized.
	px := Plane{Normal: mgl32.Vec3{2, 0, 0}, Offset: 1}
	approx(t, px.Eval(3, 5, 5), 2, "x plane")
}

func TestBoxEval(t *testing.T) {
	b := Box{Half: mgl32.Vec3{1, 1, 1}}

	if v := b.Eval(0, 0, 0); v >= 0 {
		t.Errorf("center should be inside, got %v", v)
	}
	approx(t, b.Eval(1, 0, 0), 0, "face")
	approx(t, b.Eval(2, 0, 0), 1, "outside face")
	// Corner distance is euclidean.
	approx(t, b.Eval(2, 2, 2), float32(math.Sqrt(3)), "outside corner")
}

func TestCombinators(t *testing.T) {
	a := Sphere{Radius: 1}
	b := Sphere{Center: mgl32.Vec3{1.5, 0, 0}, Radius: 1}

	tests := []struct {
		name  string
		field Field
		x     float32
		want  float32
	}{
		{"union picks min", Union(a, b), 1.5, -1},
		{"intersect picks max", Intersect(a, b), 0, 0.5},
		{"sum adds", Sum(Plane{}, Offset{Plane{}, 1}), 0, 1},
		{"offset shifts", Offset{a, 0.25}, 1, 0.25},
		{"negate flips", Negate{a}, 0, 1},
		{"difference carves", Difference(a, b), 0.75, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approx(t, tt.field.Eval(tt.x, 0, 0), tt.want, tt.name)
		})
	}
}

func TestTranslateScale(t *testing.T) {
	s := Translate{Sphere{Radius: 1}, mgl32.Vec3{5, 0, 0}}
	approx(t, s.Eval(5, 0, 0), -1, "translated center")
	approx(t, s.Eval(6, 0, 0), 0, "translated surface")

	big := Scale{Sphere{Radius: 1}, 2}
	approx(t, big.Eval(2, 0, 0), 0, "scaled surface")
	approx(t, big.Eval(0, 0, 0), -2, "scaled center keeps distance")
}

func TestScaleZeroFactor(t *testing.T) {
	plain := Sphere{Radius: 1}
	zero := Scale{F: plain, Factor: 0}

	// The zero value is the identity, not a division by zero.
	approx(t, zero.Eval(2, 0, 0), plain.Eval(2, 0, 0), "zero factor passes through")
	if got, want := zero.WGSL("pos"), (Scale{F: plain, Factor: 1}).WGSL("pos"); got != want {
		t.Errorf("zero-factor WGSL = %q, want %q", got, want)
	}
}

func TestEmptyCombinatorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Union() with no fields should panic")
		}
	}()
	Union()
}

// TestWGSLEmission checks that every GPU-expressible node emits a
// non-empty, paren-balanced expression referencing the position variable.
func TestWGSLEmission(t *testing.T) {
	noise := NewNoise(7)
	fields := []struct {
		name  string
		field Field
	}{
		{"sphere", Sphere{Radius: 1}},
		{"plane", Plane{}},
		{"box", Box{Half: mgl32.Vec3{1, 2, 3}}},
		{"offset", Offset{Sphere{Radius: 1}, -0.5}},
		{"translate", Translate{Sphere{Radius: 1}, mgl32.Vec3{1, 0, 0}}},
		{"scale", Scale{Sphere{Radius: 1}, 3}},
		{"negate", Negate{Plane{}}},
		{"union", Union(Sphere{Radius: 1}, Plane{})},
		{"intersect", Intersect(Sphere{Radius: 1}, Box{Half: mgl32.Vec3{1, 1, 1}})},
		{"sum", Sum(Plane{}, noise)},
		{"difference", Difference(Box{Half: mgl32.Vec3{1, 1, 1}}, Sphere{Radius: 0.5})},
		{"noise", noise},
	}

	for _, tt := range fields {
		t.Run(tt.name, func(t *testing.T) {
			expr, ok := CompileWGSL(tt.field, "p")
			if !ok {
				t.Fatalf("CompileWGSL(%s) not expressible", tt.name)
			}
			if !strings.Contains(expr, "p") {
				t.Errorf("expression does not reference position: %q", expr)
			}
			if strings.Count(expr, "(") != strings.Count(expr, ")") {
				t.Errorf("unbalanced parens in %q", expr)
			}
		})
	}
}

func TestFuncIsCPUOnly(t *testing.T) {
	f := Func(func(x, y, z float32) float32 { return x + y + z })
	approx(t, f.Eval(1, 2, 3), 6, "func eval")

	if _, ok := CompileWGSL(f, "p"); ok {
		t.Error("Func should not be WGSL-expressible")
	}
	if _, ok := CompileWGSL(Union(Sphere{Radius: 1}, f), "p"); ok {
		t.Error("composition containing Func should not be WGSL-expressible")
	}
}

func TestWGSLFloatLiterals(t *testing.T) {
	tests := []struct {
		v    float32
		want string
	}{
		{1, "1f"},
		{-0.5, "-0.5f"},
		{0, "0f"},
		{1e-7, "1e-07f"},
	}
	for _, tt := range tests {
		if got := wf(tt.v); got != tt.want {
			t.Errorf("wf(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestNoiseDeterminism(t *testing.T) {
	a := NewNoise(42)
	b := NewNoise(42)
	c := NewNoise(43)

	va := a.Eval(0.3, 1.7, -2.2)
	if vb := b.Eval(0.3, 1.7, -2.2); vb != va {
		t.Errorf("same seed must be deterministic: %v != %v", va, vb)
	}
	if vc := c.Eval(0.3, 1.7, -2.2); vc == va {
		t.Errorf("different seeds should differ at a generic point")
	}
}

func TestNoiseZeroValue(t *testing.T) {
	// A Noise built as a struct literal has no generator yet; Eval must
	// create one lazily instead of panicking.
	lit := &Noise{Frequency: 1, Amplitude: 1, Octaves: DefaultNoiseOctaves,
		Gain: DefaultNoiseGain, Lacunarity: DefaultNoiseLacunarity}
	ctor := NewNoise(0)

	p := [3]float32{0.3, 0.7, -1.1}
	got := lit.Eval(p[0], p[1], p[2])
	if want := ctor.Eval(p[0], p[1], p[2]); got != want {
		t.Errorf("literal Noise = %v, NewNoise(0) = %v", got, want)
	}
}

func TestNoiseOctavesAccumulate(t *testing.T) {
	one := NewNoise(1)
	one.Octaves = 1
	four := NewNoise(1)

	// With more octaves the value is the single-octave value plus detail.
	p := [3]float32{0.37, 0.91, -1.13}
	v1 := one.Eval(p[0], p[1], p[2])
	v4 := four.Eval(p[0], p[1], p[2])
	if v1 == v4 {
		t.Errorf("octaves had no effect: %v == %v", v1, v4)
	}
}
