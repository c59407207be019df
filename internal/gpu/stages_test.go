//go:build !nogpu

package gpu

import (
	"fmt"
	"regexp"
	"testing"
)

func TestStageString(t *testing.T) {
	names := map[FieldStage]string{
		StageSample:   "sample",
		StageClassify: "classify",
		StageCompact:  "compact",
	}
	for stage, want := range names {
		if got := stage.String(); got != want {
			t.Errorf("stage %d String() = %q, want %q", stage, got, want)
		}
	}
}

var bindingRe = regexp.MustCompile(`@group\(0\)\s*@binding\((\d+)\)`)

// TestBindLayoutsMatchShaders cross-checks the Go bind group layout tables
// against the @binding declarations in the embedded WGSL sources. A
// mismatch here means a pipeline creation error at runtime.
func TestBindLayoutsMatchShaders(t *testing.T) {
	sources := map[FieldStage]string{
		StageSample:   shaderSampleTemplate,
		StageClassify: shaderClassify,
		StageCompact:  shaderCompact,
	}
	for stage, src := range sources {
		t.Run(stage.String(), func(t *testing.T) {
			matches := bindingRe.FindAllStringSubmatch(src, -1)
			if len(matches) == 0 {
				t.Fatal("no @binding declarations found")
			}
			declared := make(map[string]bool, len(matches))
			for _, m := range matches {
				declared[m[1]] = true
			}

			entries := stageBindGroupLayoutEntries(stage)
			if len(entries) != len(declared) {
				t.Fatalf("layout has %d entries, shader declares %d bindings",
					len(entries), len(declared))
			}
			for _, e := range entries {
				if !declared[fmt.Sprint(e.Binding)] {
					t.Errorf("layout binding %d not declared in shader", e.Binding)
				}
			}
		})
	}
}

// TestFacesShaderBindings checks the render stage the same way; its layout
// lives in the renderer rather than the stage table, so only the binding
// indices 0..5 are asserted.
func TestFacesShaderBindings(t *testing.T) {
	matches := bindingRe.FindAllStringSubmatch(shaderFaces, -1)
	declared := make(map[string]bool, len(matches))
	for _, m := range matches {
		declared[m[1]] = true
	}
	for i := 0; i <= 5; i++ {
		if !declared[fmt.Sprint(i)] {
			t.Errorf("faces shader missing @binding(%d)", i)
		}
	}
	if len(declared) != 6 {
		t.Errorf("faces shader declares %d bindings, want 6", len(declared))
	}
}

func TestStageElementCount(t *testing.T) {
	p := FieldParams{N: 4, Corners: 5}
	if got := stageElementCount(StageSample, p); got != 125 {
		t.Errorf("sample elements = %d, want 125", got)
	}
	if got := stageElementCount(StageClassify, p); got != 64 {
		t.Errorf("classify elements = %d, want 64", got)
	}
	if got := stageElementCount(StageCompact, p); got != 64 {
		t.Errorf("compact elements = %d, want 64", got)
	}
}

func TestComputeWorkgroupCount(t *testing.T) {
	tests := []struct {
		elements uint32
		want     uint32
	}{
		{0, 0},
		{1, 1},
		{fieldWGSize, 1},
		{fieldWGSize + 1, 2},
		{65 * 65 * 65, (65*65*65 + fieldWGSize - 1) / fieldWGSize},
	}
	for _, tt := range tests {
		if got := computeWorkgroupCount(tt.elements); got != tt.want {
			t.Errorf("computeWorkgroupCount(%d) = %d, want %d", tt.elements, got, tt.want)
		}
	}
}

func TestFieldBufSizes(t *testing.T) {
	p := FieldParams{N: 8, Corners: 9}
	s := computeFieldBufSizes(p)
	if s.scalars != 9*9*9*4 {
		t.Errorf("scalars = %d, want %d", s.scalars, 9*9*9*4)
	}
	if s.verts != 8*8*8*16 {
		t.Errorf("verts = %d, want %d", s.verts, 8*8*8*16)
	}
	if s.active != 8*8*8*4 {
		t.Errorf("active = %d, want %d", s.active, 8*8*8*4)
	}
	if s.total() == 0 {
		t.Error("total() = 0")
	}
}
