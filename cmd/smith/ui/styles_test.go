package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectTheme(t *testing.T) {
	t.Setenv("SMITH_DARK_MODE", "")

	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "")
	t.Setenv("SMITH_DARK_MODE", "1")
	assert.True(t, DetectTheme().IsDark)
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	assert.Contains(t, s.RenderDivider(3), "───")
	assert.Contains(t, s.RenderDivider(0), "─")
}
