package potential

import (
	"fmt"
	"sync"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Noise defaults.
const (
	DefaultNoiseOctaves    = 4
	DefaultNoiseGain       = 0.5
	DefaultNoiseLacunarity = 2.0
)

// Noise is fractal (fBm) coherent noise, typically summed with a base
// surface to displace it.
//
// The CPU side evaluates OpenSimplex noise; the GPU side uses the
// hash-gradient noise built into the sampling shader. The two backends
// produce different (but statistically similar) fields for the same
// seed: noise composition is a presentation concern, not a pipeline
// invariant, and nothing downstream compares CPU and GPU samples.
type Noise struct {
	// Frequency scales the input position. Higher values mean finer
	// detail.
	Frequency float32

	// Amplitude scales the output value.
	Amplitude float32

	// Octaves is the number of fBm layers.
	Octaves int

	// Gain is the per-octave amplitude falloff.
	Gain float32

	// Lacunarity is the per-octave frequency multiplier.
	Lacunarity float32

	seed int64
	src  opensimplex.Noise
	once sync.Once
}

// NewNoise creates fractal noise with the given seed and default fBm
// parameters (4 octaves, gain 0.5, lacunarity 2), frequency 1 and
// amplitude 1. Adjust the exported fields before first use.
func NewNoise(seed int64) *Noise {
	return &Noise{
		Frequency:  1,
		Amplitude:  1,
		Octaves:    DefaultNoiseOctaves,
		Gain:       DefaultNoiseGain,
		Lacunarity: DefaultNoiseLacunarity,
		seed:       seed,
		src:        opensimplex.New(seed),
	}
}

// Seed returns the seed the noise was created with.
func (n *Noise) Seed() int64 { return n.seed }

// source returns the opensimplex generator, creating it on first use so a
// zero-value Noise (built as a struct literal instead of via NewNoise)
// still evaluates. Safe under the concurrent Eval calls of the sampler.
func (n *Noise) source() opensimplex.Noise {
	n.once.Do(func() {
		if n.src == nil {
			n.src = opensimplex.New(n.seed)
		}
	})
	return n.src
}

func (n *Noise) Eval(x, y, z float32) float32 {
	src := n.source()
	freq := float64(n.Frequency)
	amp := float64(n.Amplitude)
	var sum float64
	for o := 0; o < n.Octaves; o++ {
		sum += amp * src.Eval3(float64(x)*freq, float64(y)*freq, float64(z)*freq)
		freq *= float64(n.Lacunarity)
		amp *= float64(n.Gain)
	}
	return float32(sum)
}

// WGSL emits a call to the sn_fbm helper defined in the sampling shader
// preamble. The seed becomes a large position offset so distinct seeds
// sample uncorrelated regions of the gradient lattice.
func (n *Noise) WGSL(pos string) string {
	// Spread seeds far apart; the hash lattice repeats nowhere near this.
	off := float32(n.seed%1024) * 101.7
	return fmt.Sprintf("(sn_fbm(((%s) + vec3<f32>(%s)) * %s, %du, %s, %s) * %s)",
		pos, wf(off), wf(n.Frequency), n.Octaves, wf(n.Gain), wf(n.Lacunarity), wf(n.Amplitude))
}
