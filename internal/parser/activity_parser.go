package parser

import (
	"fmt"
	"strings"

	"github.com/balkashynov/punch/internal/models"
)

// activityAliases maps every accepted spelling to its activity type
var activityAliases = map[string]models.ActivityType{
	"work":     models.ActivityWork,
	"w":        models.ActivityWork,
	"working":  models.ActivityWork,
	"break":    models.ActivityBreak,
	"b":        models.ActivityBreak,
	"pause":    models.ActivityBreak,
	"lunch":    models.ActivityLunch,
	"l":        models.ActivityLunch,
	"bathroom": models.ActivityBathroom,
	"wc":       models.ActivityBathroom,
	"t":        models.ActivityBathroom,
	"meeting":  models.ActivityMeeting,
	"m":        models.ActivityMeeting,
	"meet":     models.ActivityMeeting,
}

// ParseActivityType converts user input into an activity type.
// Accepts full names (work, break, lunch, bathroom, meeting) and short
// forms (w, b, l, wc/t, m), case-insensitive.
func ParseActivityType(input string) (models.ActivityType, error) {
	key := strings.ToLower(strings.TrimSpace(input))
	if t, ok := activityAliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("invalid activity '%s'. Use: work, break, lunch, bathroom or meeting", input)
}

// ParseRole converts user input into a role
func ParseRole(input string) (models.Role, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "admin", "administrator", "a":
		return models.RoleAdmin, nil
	case "employee", "emp", "e":
		return models.RoleEmployee, nil
	}
	return "", fmt.Errorf("invalid role '%s'. Use: employee or admin", input)
}
