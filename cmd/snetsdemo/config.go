package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/surfacenets/potential"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the demo scene configuration.
type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Terrain TerrainConfig `yaml:"terrain"`
	Camera  CameraConfig  `yaml:"camera"`
	Render  RenderConfig  `yaml:"render"`
	GPU     GPUConfig     `yaml:"gpu"`
}

// GridConfig holds the sampling grid parameters.
type GridConfig struct {
	N        int        `yaml:"n"`
	CellSize float32    `yaml:"cell_size"`
	Origin   [3]float32 `yaml:"origin"`
}

// TerrainConfig describes the demo potential: a ground plane displaced by
// fractal noise, with optional spherical hollows carved out.
type TerrainConfig struct {
	GroundHeight    float32        `yaml:"ground_height"`
	NoiseSeed       int64          `yaml:"noise_seed"`
	NoiseAmplitude  float32        `yaml:"noise_amplitude"`
	NoiseFrequency  float32        `yaml:"noise_frequency"`
	NoiseOctaves    int            `yaml:"noise_octaves"`
	NoiseGain       float32        `yaml:"noise_gain"`
	NoiseLacunarity float32        `yaml:"noise_lacunarity"`
	Hollows         []HollowConfig `yaml:"hollows"`
}

// HollowConfig is a sphere carved out of the terrain.
type HollowConfig struct {
	Center [3]float32 `yaml:"center"`
	Radius float32    `yaml:"radius"`
}

// CameraConfig holds the view parameters for GPU rendering.
type CameraConfig struct {
	Eye        [3]float32 `yaml:"eye"`
	LookAt     [3]float32 `yaml:"look_at"`
	FOVDegrees float32    `yaml:"fov_degrees"`
	Light      [3]float32 `yaml:"light"`
}

// RenderConfig holds the output image parameters.
type RenderConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// GPUConfig controls pipeline selection.
type GPUConfig struct {
	Enabled bool `yaml:"enabled"`
	Require bool `yaml:"require"`
	Workers int  `yaml:"workers"`
}

// loadConfig parses the embedded defaults, then overlays the optional
// user file; fields present in the file overwrite the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}

// buildField composes the scene potential from the terrain config.
func (c *Config) buildField() potential.Field {
	noise := potential.NewNoise(c.Terrain.NoiseSeed)
	noise.Amplitude = c.Terrain.NoiseAmplitude
	noise.Frequency = c.Terrain.NoiseFrequency
	if c.Terrain.NoiseOctaves > 0 {
		noise.Octaves = c.Terrain.NoiseOctaves
	}
	if c.Terrain.NoiseGain > 0 {
		noise.Gain = c.Terrain.NoiseGain
	}
	if c.Terrain.NoiseLacunarity > 0 {
		noise.Lacunarity = c.Terrain.NoiseLacunarity
	}

	field := potential.Sum(
		potential.Plane{Offset: c.Terrain.GroundHeight},
		noise,
	)

	if len(c.Terrain.Hollows) == 0 {
		return field
	}
	cuts := make([]potential.Field, len(c.Terrain.Hollows))
	for i, h := range c.Terrain.Hollows {
		cuts[i] = potential.Sphere{Center: vec3(h.Center), Radius: h.Radius}
	}
	return potential.Difference(field, cuts...)
}

func vec3(v [3]float32) mgl32.Vec3 { return mgl32.Vec3{v[0], v[1], v[2]} }
