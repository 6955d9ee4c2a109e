package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

func TestShimmerCycles(t *testing.T) {
	cfg := DefaultShimmerConfig()
	s := NewShimmer(cfg)

	for i := 0; i < cfg.Frames; i++ {
		s.Advance()
	}
	assert.Zero(t, s.frame)

	s.Advance()
	s.Reset()
	assert.Zero(t, s.frame)
}

func TestShimmerRender(t *testing.T) {
	s := NewShimmer(DefaultShimmerConfig())
	assert.Empty(t, s.Render("", ColorWork, "#FFFFFF"))
	assert.NotNil(t, s.Tick())

	off := NewShimmer(ShimmerConfig{Enabled: false, Frames: 1})
	assert.Nil(t, off.Tick())
	assert.Contains(t, off.Render("WORKING", ColorWork, "#FFFFFF"), "WORKING")
}
