package tui

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// ShimmerConfig holds configuration for shimmer effects
type ShimmerConfig struct {
	Enabled    bool
	Interval   time.Duration // time between frames
	WidthRatio float64       // highlight width relative to the text
	Frames     int           // frames per sweep, pause included
}

// DefaultShimmerConfig returns default shimmer configuration
func DefaultShimmerConfig() ShimmerConfig {
	return ShimmerConfig{
		Enabled:    true,
		Interval:   100 * time.Millisecond,
		WidthRatio: 0.25,
		Frames:     24,
	}
}

// Shimmer sweeps a highlight across a label, one frame per tick
type Shimmer struct {
	config ShimmerConfig
	frame  int
}

// shimmerTickMsg advances the shimmer by one frame
type shimmerTickMsg struct{}

// NewShimmer creates a shimmer at its first frame
func NewShimmer(config ShimmerConfig) *Shimmer {
	return &Shimmer{config: config}
}

// Tick schedules the next frame, or nothing when disabled
func (s *Shimmer) Tick() tea.Cmd {
	if !s.config.Enabled {
		return nil
	}
	return tickAfter(s.config.Interval, shimmerTickMsg{})
}

// Advance moves to the next frame
func (s *Shimmer) Advance() {
	s.frame = (s.frame + 1) % s.config.Frames
}

// Reset restarts the sweep (call when the label changes)
func (s *Shimmer) Reset() {
	s.frame = 0
}

// Render draws text in base with the highlight at the current frame
func (s *Shimmer) Render(text, base, highlight string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	if !s.config.Enabled {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(base)).Bold(true).Render(text)
	}

	baseColor, err1 := colorful.Hex(base)
	highColor, err2 := colorful.Hex(highlight)
	if err1 != nil || err2 != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(base)).Bold(true).Render(text)
	}

	// The sweep travels past both ends of the text; the last quarter of
	// the frames is a pause with the highlight out of view
	n := float64(len(runes))
	margin := n * s.config.WidthRatio
	sweepFrames := float64(s.config.Frames) * 0.75
	center := -margin + (n+2*margin)*float64(s.frame)/sweepFrames

	sigma := math.Max(1, margin/2)

	var b strings.Builder
	for i, r := range runes {
		dx := float64(i) - center
		weight := math.Exp(-(dx * dx) / (2 * sigma * sigma))
		c := baseColor.BlendRgb(highColor, weight).Clamped()
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Bold(true).Render(string(r)))
	}
	return b.String()
}
