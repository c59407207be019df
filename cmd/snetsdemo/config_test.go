package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/surfacenets/potential"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Grid.N != 64 {
		t.Errorf("grid.n = %d, want 64", cfg.Grid.N)
	}
	if cfg.Grid.CellSize != 0.25 {
		t.Errorf("grid.cell_size = %v, want 0.25", cfg.Grid.CellSize)
	}
	if len(cfg.Terrain.Hollows) != 2 {
		t.Errorf("terrain.hollows = %d entries, want 2", len(cfg.Terrain.Hollows))
	}
	if cfg.Render.Width <= 0 || cfg.Render.Height <= 0 {
		t.Errorf("render size %dx%d not positive", cfg.Render.Width, cfg.Render.Height)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	data := []byte("grid:\n  n: 32\nterrain:\n  noise_amplitude: 1.0\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Grid.N != 32 {
		t.Errorf("grid.n = %d, want 32 from overlay", cfg.Grid.N)
	}
	if cfg.Terrain.NoiseAmplitude != 1.0 {
		t.Errorf("noise_amplitude = %v, want 1.0 from overlay", cfg.Terrain.NoiseAmplitude)
	}
	// Untouched fields keep their defaults.
	if cfg.Terrain.NoiseSeed != 7 {
		t.Errorf("noise_seed = %d, want default 7", cfg.Terrain.NoiseSeed)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := loadConfig("/nonexistent/scene.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestBuildFieldExpressible(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	field := cfg.buildField()
	if field == nil {
		t.Fatal("buildField returned nil")
	}
	if _, ok := potential.CompileWGSL(field, "pos"); !ok {
		t.Error("default scene potential is not WGSL-expressible")
	}

	// The terrain surface exists: the field changes sign across altitude.
	below := field.Eval(0, -50, 0)
	above := field.Eval(0, 50, 0)
	if below >= 0 || above <= 0 {
		t.Errorf("field is not a height surface: f(-50)=%v, f(+50)=%v", below, above)
	}
}
