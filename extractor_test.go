package surfacenets

import (
	"errors"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/surfacenets/potential"
)

func TestNewNilField(t *testing.T) {
	if _, err := New(testConfig(), nil); !errors.Is(err, ErrNilField) {
		t.Fatalf("New(nil field) = %v, want ErrNilField", err)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero N", Config{N: 0, CellSize: 1}, ErrInvalidGrid},
		{"negative N", Config{N: -3, CellSize: 1}, ErrInvalidGrid},
		{"huge N", Config{N: MaxGridSide + 1, CellSize: 1}, ErrInvalidGrid},
		{"zero cell size", Config{N: 8, CellSize: 0}, ErrInvalidGrid},
		{"negative cell size", Config{N: 8, CellSize: -0.5}, ErrInvalidGrid},
		{"over budget", Config{N: 1024, CellSize: 1}, ErrGridTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, potential.Sphere{Radius: 1}, WithoutGPU())
			if !errors.Is(err, tt.want) {
				t.Errorf("New(%+v) = %v, want %v", tt.cfg, err, tt.want)
			}
		})
	}
}

func TestExtractMeshSphere(t *testing.T) {
	cfg := Config{N: 16, CellSize: 0.25, Origin: mgl32.Vec3{-2, -2, -2}}
	ex, err := New(cfg, potential.Sphere{Radius: 1}, WithoutGPU())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ex.Close()

	mesh, stats, err := ex.ExtractMesh()
	if err != nil {
		t.Fatalf("ExtractMesh: %v", err)
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("sphere produced no triangles")
	}
	if len(mesh.Positions) != len(mesh.Normals) {
		t.Fatalf("positions (%d) and normals (%d) lengths differ",
			len(mesh.Positions), len(mesh.Normals))
	}
	if len(mesh.Positions)%3 != 0 {
		t.Errorf("positions length %d is not a multiple of 3", len(mesh.Positions))
	}
	if stats.ActiveCells == 0 {
		t.Error("stats.ActiveCells = 0")
	}
	if int(stats.Triangles) != mesh.TriangleCount() {
		t.Errorf("stats.Triangles = %d, mesh has %d", stats.Triangles, mesh.TriangleCount())
	}
	if stats.GPU {
		t.Error("stats.GPU = true on CPU path")
	}

	// All vertices stay inside the grid bounds.
	side := float32(cfg.N) * cfg.CellSize
	for _, p := range mesh.Positions {
		for axis := 0; axis < 3; axis++ {
			d := p[axis] - cfg.Origin[axis]
			if d < 0 || d > side {
				t.Fatalf("vertex %v outside grid bounds", p)
			}
		}
	}
}

func TestExtractMatchesExtractMesh(t *testing.T) {
	cfg := Config{N: 12, CellSize: 0.3, Origin: mgl32.Vec3{-1.8, -1.8, -1.8}}
	ex, err := New(cfg, potential.Sphere{Radius: 1.2}, WithoutGPU())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ex.Close()

	stats, err := ex.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	_, meshStats, err := ex.ExtractMesh()
	if err != nil {
		t.Fatalf("ExtractMesh: %v", err)
	}
	if stats.ActiveCells != meshStats.ActiveCells || stats.Triangles != meshStats.Triangles {
		t.Errorf("Extract stats %+v differ from ExtractMesh stats %+v", stats, meshStats)
	}
}

func TestRenderFrameWithoutGPU(t *testing.T) {
	ex, err := New(testConfig(), potential.Sphere{Radius: 1}, WithoutGPU())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ex.Close()

	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	if err := ex.RenderFrame(Camera{MVP: mgl32.Ident4()}, dst); !errors.Is(err, ErrNoGPU) {
		t.Errorf("RenderFrame = %v, want ErrNoGPU", err)
	}
}

func TestClosedExtractor(t *testing.T) {
	ex, err := New(testConfig(), potential.Sphere{Radius: 1}, WithoutGPU())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ex.Close()
	ex.Close() // idempotent

	if _, err := ex.Extract(); !errors.Is(err, ErrClosed) {
		t.Errorf("Extract after Close = %v, want ErrClosed", err)
	}
	if _, _, err := ex.ExtractMesh(); !errors.Is(err, ErrClosed) {
		t.Errorf("ExtractMesh after Close = %v, want ErrClosed", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := ex.RenderFrame(Camera{}, dst); !errors.Is(err, ErrClosed) {
		t.Errorf("RenderFrame after Close = %v, want ErrClosed", err)
	}
}

func TestExtractorWorkersOption(t *testing.T) {
	cfg := Config{N: 10, CellSize: 0.4, Origin: mgl32.Vec3{-2, -2, -2}}
	field := potential.Sphere{Radius: 1.5}

	serial, err := New(cfg, field, WithoutGPU(), WithWorkers(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer serial.Close()
	parallel, err := New(cfg, field, WithoutGPU(), WithWorkers(8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer parallel.Close()

	sMesh, sStats, err := serial.ExtractMesh()
	if err != nil {
		t.Fatalf("serial ExtractMesh: %v", err)
	}
	pMesh, pStats, err := parallel.ExtractMesh()
	if err != nil {
		t.Fatalf("parallel ExtractMesh: %v", err)
	}

	if sStats.ActiveCells != pStats.ActiveCells {
		t.Errorf("active cells differ: serial %d, parallel %d",
			sStats.ActiveCells, pStats.ActiveCells)
	}
	if len(sMesh.Positions) != len(pMesh.Positions) {
		t.Fatalf("vertex counts differ: serial %d, parallel %d",
			len(sMesh.Positions), len(pMesh.Positions))
	}
	for i := range sMesh.Positions {
		if sMesh.Positions[i] != pMesh.Positions[i] {
			t.Fatalf("vertex %d differs: serial %v, parallel %v",
				i, sMesh.Positions[i], pMesh.Positions[i])
		}
	}
}
