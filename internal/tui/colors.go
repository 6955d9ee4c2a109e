package tui

import "github.com/balkashynov/punch/internal/models"

// Color constants for punch TUI theme
const (
	// Base Colors
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Primary text (labels, user input, titles)
	ColorSecondaryText = "#B1B8C7" // Secondary text
	ColorDisabledText  = "#6D7383" // Disabled/muted text
	ColorPlaceholder   = "#B1B8C7"
	ColorHelpText      = "240" // Dark grey for help text

	// Accent Colors
	ColorAccentMain   = "#7C3AED" // Logo, accent elements, active borders
	ColorAccentBright = "#A78BFA" // Highlights, current step

	// State Colors
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"

	// Activity Colors
	ColorWork     = "#22C55E"
	ColorBreak    = "#F59E0B"
	ColorLunch    = "#F97316"
	ColorBathroom = "#38BDF8"
	ColorMeeting  = "#A78BFA"
)

// ActivityColor returns the theme color of an activity type
func ActivityColor(t models.ActivityType) string {
	switch t {
	case models.ActivityWork:
		return ColorWork
	case models.ActivityBreak:
		return ColorBreak
	case models.ActivityLunch:
		return ColorLunch
	case models.ActivityBathroom:
		return ColorBathroom
	case models.ActivityMeeting:
		return ColorMeeting
	}
	return ColorDisabledText
}
