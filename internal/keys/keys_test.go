package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_AliasEquivalence(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"camelCase", map[string]any{"frameLength": 2.5}},
		{"snake_case", map[string]any{"frame_length": 2.5}},
		{"dashed legacy", map[string]any{"frame-length": 2.5}},
		{"folded", map[string]any{"framelength": 2.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Resolve(tt.payload, "frameLength")
			require.True(t, ok)
			assert.Equal(t, 2.5, v)
		})
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	payload := map[string]any{
		"frameLength":  1.0,
		"frame_length": 2.0,
	}

	// camelCase is first in the variant order, deterministically.
	for i := 0; i < 20; i++ {
		v, ok := Resolve(payload, "frameLength")
		require.True(t, ok)
		assert.Equal(t, 1.0, v)
	}
}

func TestResolve_SnakeLogical(t *testing.T) {
	payload := map[string]any{"leverAngle": 0.4}
	v, ok := Resolve(payload, "lever_angle")
	require.True(t, ok)
	assert.Equal(t, 0.4, v)
}

func TestResolve_NotFound(t *testing.T) {
	_, ok := Resolve(map[string]any{"other": 1}, "frameLength")
	assert.False(t, ok)

	_, ok = Resolve(nil, "frameLength")
	assert.False(t, ok)

	_, ok = Resolve(map[string]any{"x": 1}, "")
	assert.False(t, ok)
}

func TestResolvePath(t *testing.T) {
	payload := map[string]any{
		"simulation": map[string]any{
			"lever_angles": map[string]any{
				"fl": 0.2,
			},
		},
	}

	v, ok := ResolvePath(payload, []string{"simulation", "leverAngles"}, []string{"fl"})
	require.True(t, ok)
	assert.Equal(t, 0.2, v)
}

func TestResolvePath_MissingSection(t *testing.T) {
	payload := map[string]any{"simulation": map[string]any{}}

	_, ok := ResolvePath(payload, []string{"simulation", "leverAngles"}, []string{"fl"})
	assert.False(t, ok)
}

func TestResolvePath_SectionNotMap(t *testing.T) {
	payload := map[string]any{"simulation": "running"}

	_, ok := ResolvePath(payload, []string{"simulation"}, []string{"fl"})
	assert.False(t, ok)
}

func TestResolvePath_LeafCandidateOrder(t *testing.T) {
	payload := map[string]any{
		"frame": map[string]any{
			"heave":       0.1,
			"frameHeave":  0.9,
		},
	}

	v, ok := ResolvePath(payload, []string{"frame"}, []string{"heave", "frameHeave"})
	require.True(t, ok)
	assert.Equal(t, 0.1, v)
}

func TestToSnake(t *testing.T) {
	tests := []struct{ in, want string }{
		{"frameLength", "frame_length"},
		{"frame_length", "frame_length"},
		{"frame-length", "frame_length"},
		{"isRunning", "is_running"},
		{"fl", "fl"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToSnake(tt.in), tt.in)
	}
}

func TestToCamel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"frame_length", "frameLength"},
		{"frameLength", "frameLength"},
		{"frame-length", "frameLength"},
		{"FrameLength", "frameLength"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToCamel(tt.in), tt.in)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "framelength", Fold("Frame_Length"))
	assert.Equal(t, "framelength", Fold("frame-length"))
}
