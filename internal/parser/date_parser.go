package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/punch/internal/models"
)

var (
	isoDateRegex      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashDateRegex    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeDateRegex = regexp.MustCompile(`^(\d+)\s*(day|days|d|week|weeks|w)(\s+ago)?$`)
)

// ParseReportDate turns a report bound into YYYY-MM-DD relative to now.
// Supported formats:
// - YYYY-MM-DD (e.g., "2024-03-04")
// - dd/mm/yyyy (e.g., "04/03/2024")
// - today, yesterday
// - X days / X weeks, counted back from today (e.g., "7 days", "2 weeks ago")
// An empty input means no bound and returns "".
func ParseReportDate(input string, now time.Time) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", nil
	}

	switch input {
	case "today":
		return now.Format(models.DateLayout), nil
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(models.DateLayout), nil
	}

	if isoDateRegex.MatchString(input) {
		if _, err := time.Parse(models.DateLayout, input); err != nil {
			return "", fmt.Errorf("invalid date %q", input)
		}
		return input, nil
	}

	if d, err := parseSlashDate(input); err == nil {
		return d, nil
	}

	if d, err := parseDaysAgo(input, now); err == nil {
		return d, nil
	}

	return "", fmt.Errorf("invalid date format %q. Use: YYYY-MM-DD, dd/mm/yyyy, today, yesterday, X days or X weeks", input)
}

// parseSlashDate parses dd/mm/yyyy format
func parseSlashDate(input string) (string, error) {
	matches := slashDateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return "", fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// Reject dates that normalize into another day (31/02, 29/02 on non-leap years)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return "", fmt.Errorf("invalid date")
	}

	return date.Format(models.DateLayout), nil
}

// parseDaysAgo parses "X days" and "X weeks" counted back from now
func parseDaysAgo(input string, now time.Time) (string, error) {
	matches := relativeDateRegex.FindStringSubmatch(input)
	if len(matches) < 3 {
		return "", fmt.Errorf("invalid relative date format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return "", fmt.Errorf("invalid number")
	}

	switch matches[2] {
	case "day", "days", "d":
		if amount > 3660 {
			return "", fmt.Errorf("days must be at most 3660")
		}
		return now.AddDate(0, 0, -amount).Format(models.DateLayout), nil
	case "week", "weeks", "w":
		if amount > 520 {
			return "", fmt.Errorf("weeks must be at most 520")
		}
		return now.AddDate(0, 0, -7*amount).Format(models.DateLayout), nil
	}
	return "", fmt.Errorf("unsupported time unit")
}
