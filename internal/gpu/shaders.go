//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"strings"
)

// Shader sources are embedded from the shaders directory.
// Each file corresponds to one stage of the extraction pipeline.

//go:embed shaders/sample.wgsl
var shaderSampleTemplate string

//go:embed shaders/classify.wgsl
var shaderClassify string

//go:embed shaders/compact.wgsl
var shaderCompact string

//go:embed shaders/faces.wgsl
var shaderFaces string

// potentialToken is the placeholder in sample.wgsl that gets replaced with
// the WGSL expression of the configured potential.
const potentialToken = "POTENTIAL_EXPR"

// instantiateSampler specializes the sampler shader template with the
// potential's WGSL expression. The expression must reference the sampling
// position as `pos` (the template's function parameter) and may call the
// sn_* helpers defined in the template preamble.
func instantiateSampler(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", fmt.Errorf("surfacenets gpu: empty potential expression")
	}
	if !strings.Contains(shaderSampleTemplate, potentialToken) {
		return "", fmt.Errorf("surfacenets gpu: sampler template is missing the %s token", potentialToken)
	}
	return strings.ReplaceAll(shaderSampleTemplate, potentialToken, expr), nil
}
