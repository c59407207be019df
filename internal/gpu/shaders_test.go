//go:build !nogpu

package gpu

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/naga"

	"github.com/gogpu/surfacenets/potential"
)

// compileWGSL compiles a shader with naga and checks the SPIR-V output,
// skipping on known naga feature gaps.
func compileWGSL(t *testing.T, label, src string) {
	t.Helper()
	if src == "" {
		t.Fatalf("%s shader source is empty", label)
	}

	spirvBytes, err := naga.Compile(src)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "runtime-sized arrays not yet implemented") {
			t.Skip("Skipping: naga doesn't yet support runtime-sized arrays (needed for storage buffers)")
		}
		if strings.Contains(errStr, "not yet implemented") || strings.Contains(errStr, "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("failed to compile %s shader: %v", label, err)
	}

	if len(spirvBytes) < 4 {
		t.Fatal("SPIR-V too short")
	}
	magic := uint32(spirvBytes[0]) |
		uint32(spirvBytes[1])<<8 |
		uint32(spirvBytes[2])<<16 |
		uint32(spirvBytes[3])<<24
	if magic != 0x07230203 {
		t.Errorf("invalid SPIR-V magic: 0x%08X, want 0x07230203", magic)
	}
}

func TestClassifyShaderCompilation(t *testing.T) {
	compileWGSL(t, "classify", shaderClassify)
}

func TestCompactShaderCompilation(t *testing.T) {
	compileWGSL(t, "compact", shaderCompact)
}

func TestFacesShaderCompilation(t *testing.T) {
	compileWGSL(t, "faces", shaderFaces)
}

// TestSampleShaderCompilation instantiates the sampling shader once per
// potential node kind and compiles each result.
func TestSampleShaderCompilation(t *testing.T) {
	sphere := potential.Sphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 1}
	box := potential.Box{Center: mgl32.Vec3{0, 1, 0}, Half: mgl32.Vec3{1, 2, 3}}
	noise := potential.NewNoise(42)
	noise.Frequency = 3
	noise.Amplitude = 0.3

	tests := []struct {
		name  string
		field potential.Field
	}{
		{"sphere", sphere},
		{"plane", potential.Plane{Offset: 0.5}},
		{"box", box},
		{"offset", potential.Offset{F: sphere, By: 0.25}},
		{"translate", potential.Translate{F: sphere, By: mgl32.Vec3{1, 2, 3}}},
		{"scale", potential.Scale{F: sphere, Factor: 2}},
		{"negate", potential.Negate{F: sphere}},
		{"sum", potential.Sum(sphere, potential.Plane{Offset: 0.1})},
		{"union", potential.Union(sphere, box)},
		{"intersect", potential.Intersect(sphere, box)},
		{"difference", potential.Difference(potential.Plane{}, sphere)},
		{"noise", noise},
		{"terrain", potential.Sum(potential.Plane{Offset: 0.4}, noise)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, ok := potential.CompileWGSL(tt.field, "pos")
			if !ok {
				t.Fatalf("potential %s is not WGSL-expressible", tt.name)
			}
			src, err := instantiateSampler(expr)
			if err != nil {
				t.Fatalf("instantiateSampler: %v", err)
			}
			compileWGSL(t, "sample/"+tt.name, src)
		})
	}
}

func TestInstantiateSamplerErrors(t *testing.T) {
	if _, err := instantiateSampler(""); err == nil {
		t.Error("empty expression should fail")
	}
	if _, err := instantiateSampler("   \t"); err == nil {
		t.Error("blank expression should fail")
	}

	src, err := instantiateSampler("length(pos) - 1.0")
	if err != nil {
		t.Fatalf("instantiateSampler: %v", err)
	}
	if strings.Contains(src, potentialToken) {
		t.Error("token survived substitution")
	}
	if !strings.Contains(src, "length(pos) - 1.0") {
		t.Error("expression missing from instantiated shader")
	}
}

// TestFuncNotExpressible checks that host-only potentials are rejected
// before shader generation.
func TestFuncNotExpressible(t *testing.T) {
	f := potential.Func(func(x, y, z float32) float32 { return x + y + z })
	if _, ok := potential.CompileWGSL(f, "pos"); ok {
		t.Error("Func should not be WGSL-expressible")
	}
	comp := potential.Union(potential.Sphere{Radius: 1}, f)
	if _, ok := potential.CompileWGSL(comp, "pos"); ok {
		t.Error("composition containing Func should not be WGSL-expressible")
	}
}
