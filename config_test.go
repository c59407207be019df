package surfacenets

import (
	"errors"
	"testing"
)

func TestConfigCounts(t *testing.T) {
	c := Config{N: 4, CellSize: 1}
	if got := c.Corners(); got != 5 {
		t.Errorf("Corners() = %d, want 5", got)
	}
	if got := c.CellCount(); got != 64 {
		t.Errorf("CellCount() = %d, want 64", got)
	}
	if got := c.CornerCount(); got != 125 {
		t.Errorf("CornerCount() = %d, want 125", got)
	}
}

func TestConfigBufferBytes(t *testing.T) {
	c := Config{N: 2, CellSize: 1}
	// 27 corners * 4 + 8 cells * 16 + 8 cells * 4
	want := uint64(27*4 + 8*16 + 8*4)
	if got := c.BufferBytes(); got != want {
		t.Errorf("BufferBytes() = %d, want %d", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		budget uint64
		want   error
	}{
		{"ok", Config{N: 64, CellSize: 0.1}, 0, nil},
		{"min N", Config{N: MinGridSide, CellSize: 1}, 0, nil},
		{"max N with budget", Config{N: MaxGridSide, CellSize: 1}, 64 << 30, nil},
		{"N too small", Config{N: 0, CellSize: 1}, 0, ErrInvalidGrid},
		{"N too large", Config{N: MaxGridSide + 1, CellSize: 1}, 0, ErrInvalidGrid},
		{"zero cell", Config{N: 8, CellSize: 0}, 0, ErrInvalidGrid},
		{"NaN cell", Config{N: 8, CellSize: nan32()}, 0, ErrInvalidGrid},
		{"over budget", Config{N: 512, CellSize: 1}, 1 << 20, ErrGridTooLarge},
		{"default budget rejects 1024", Config{N: 1024, CellSize: 1}, 0, ErrGridTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.budget)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func nan32() float32 {
	z := float32(0)
	return z / z
}
