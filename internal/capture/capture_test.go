package capture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formatDevice struct{ formats map[string]bool }

func (d formatDevice) Supports(mimeType string) bool { return d.formats[mimeType] }
func (d formatDevice) Start(ctx context.Context, opts Options) (Clip, error) {
	return nil, nil
}

func TestPickMimeTypeWalksPreferenceOrder(t *testing.T) {
	d := formatDevice{formats: map[string]bool{
		"video/webm": true,
		"video/mp4":  true,
	}}

	mt, ok := PickMimeType(d, nil)
	require.True(t, ok)
	assert.Equal(t, "video/webm", mt, "the first supported entry wins, not the last")
}

func TestPickMimeTypeCustomPreference(t *testing.T) {
	d := formatDevice{formats: map[string]bool{"video/mp4": true}}

	mt, ok := PickMimeType(d, []string{"video/mp4", "video/webm"})
	require.True(t, ok)
	assert.Equal(t, "video/mp4", mt)
}

func TestPickMimeTypeNothingSupported(t *testing.T) {
	_, ok := PickMimeType(formatDevice{}, nil)
	assert.False(t, ok)
}

func TestDefaultOptionsBoundTheCapture(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, 1_000_000, o.MaxBitrateBPS)
	assert.Equal(t, 1280, o.Width)
	assert.Equal(t, 720, o.Height)
}
