// Command snetsdemo extracts an isosurface from a configurable terrain
// potential and reports extraction statistics. With a GPU available it
// renders the surface to a PNG; the CPU path can export the mesh as OBJ.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/surfacenets"
	_ "github.com/gogpu/surfacenets/gpu" // enable GPU extraction
)

func main() {
	var (
		configPath = flag.String("config", "", "scene config file (YAML), overlaid on built-in defaults")
		output     = flag.String("output", "surface.png", "output image (GPU path)")
		objPath    = flag.String("obj", "", "export the CPU mesh as a Wavefront OBJ file")
		cpuOnly    = flag.Bool("cpu", false, "force the CPU reference pipeline")
		frames     = flag.Int("frames", 1, "number of extraction passes (timing)")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		surfacenets.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opts := []surfacenets.Option{surfacenets.WithWorkers(cfg.GPU.Workers)}
	if *cpuOnly || !cfg.GPU.Enabled {
		opts = append(opts, surfacenets.WithoutGPU())
	}
	if cfg.GPU.Require && !*cpuOnly {
		opts = append(opts, surfacenets.WithRequireGPU())
	}

	ex, err := surfacenets.New(surfacenets.Config{
		N:        cfg.Grid.N,
		CellSize: cfg.Grid.CellSize,
		Origin:   vec3(cfg.Grid.Origin),
	}, cfg.buildField(), opts...)
	if err != nil {
		log.Fatalf("Failed to create extractor: %v", err)
	}
	defer ex.Close()

	pipeline := "cpu"
	if ex.GPUActive() {
		pipeline = "gpu"
	}
	log.Printf("Extracting %d^3 grid on %s pipeline", cfg.Grid.N, pipeline)

	var stats surfacenets.FrameStats
	for i := 0; i < *frames; i++ {
		stats, err = ex.Extract()
		if err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
	}
	log.Printf("Frame: %d active cells, %d triangles, %v",
		stats.ActiveCells, stats.Triangles, stats.Elapsed)

	if ex.GPUActive() {
		if err := renderPNG(ex, cfg, *output); err != nil {
			log.Fatalf("Render failed: %v", err)
		}
		log.Printf("Rendered to %s (%dx%d)", *output, cfg.Render.Width, cfg.Render.Height)
	}

	if *objPath != "" {
		mesh, _, err := ex.ExtractMesh()
		if err != nil {
			log.Fatalf("Mesh extraction failed: %v", err)
		}
		if err := writeOBJ(*objPath, mesh); err != nil {
			log.Fatalf("OBJ export failed: %v", err)
		}
		log.Printf("Exported %d triangles to %s", mesh.TriangleCount(), *objPath)
	}
}

// clipCorrection maps OpenGL clip depth [-1, 1] (what mgl32.Perspective
// produces) to the WebGPU range [0, 1].
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func renderPNG(ex *surfacenets.Extractor, cfg *Config, path string) error {
	w, h := cfg.Render.Width, cfg.Render.Height
	aspect := float32(w) / float32(h)
	proj := mgl32.Perspective(mgl32.DegToRad(cfg.Camera.FOVDegrees), aspect, 0.1, 200)
	view := mgl32.LookAtV(vec3(cfg.Camera.Eye), vec3(cfg.Camera.LookAt), mgl32.Vec3{0, 1, 0})

	cam := surfacenets.Camera{
		MVP:   clipCorrection.Mul4(proj).Mul4(view),
		Eye:   vec3(cfg.Camera.Eye),
		Light: vec3(cfg.Camera.Light),
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := ex.RenderFrame(cam, img); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// writeOBJ exports the triangle soup as a Wavefront OBJ with per-vertex
// normals.
func writeOBJ(path string, mesh *surfacenets.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, p := range mesh.Positions {
		if _, err := fmt.Fprintf(f, "v %g %g %g\n", p.X(), p.Y(), p.Z()); err != nil {
			return err
		}
	}
	for _, n := range mesh.Normals {
		if _, err := fmt.Fprintf(f, "vn %g %g %g\n", n.X(), n.Y(), n.Z()); err != nil {
			return err
		}
	}
	for i := 0; i < len(mesh.Positions); i += 3 {
		a, b, c := i+1, i+2, i+3
		if _, err := fmt.Fprintf(f, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c); err != nil {
			return err
		}
	}
	return nil
}
