package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
)

// printJSON writes v as indented JSON
func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printStats prints a live summary of a session
func printStats(out io.Writer, stats *models.Stats, now time.Time) {
	fmt.Fprintf(out, "Logged in at: %s (%s)\n",
		stats.LoginTime.Local().Format("15:04:05"),
		humanize.RelTime(stats.LoginTime, now, "ago", "from now"))

	if stats.CurrentActivity != "" && stats.ActivitySince != nil {
		fmt.Fprintf(out, "Now: %s since %s (%s)\n",
			stats.CurrentActivity.Label(),
			stats.ActivitySince.Local().Format("15:04:05"),
			parser.FormatDuration(now.Sub(*stats.ActivitySince)))
	} else if stats.LogoutTime == nil {
		fmt.Fprintln(out, "Now: Idle")
	}

	fmt.Fprintln(out, strings.Repeat("-", 28))
	printTotalRow(out, models.ActivityWork, stats.TotalWorkTime)
	printTotalRow(out, models.ActivityBreak, stats.TotalBreakTime)
	printTotalRow(out, models.ActivityLunch, stats.TotalLunchTime)
	printTotalRow(out, models.ActivityBathroom, stats.TotalBathroomTime)
	printTotalRow(out, models.ActivityMeeting, stats.TotalMeetingTime)
	fmt.Fprintln(out, strings.Repeat("-", 28))
	fmt.Fprintf(out, "%-16s %s\n", "Total", parser.FormatSeconds(stats.TotalTime))
}

// printSessionTotals prints the accumulators of a closed session
func printSessionTotals(out io.Writer, s *models.Session) {
	for _, t := range models.ActivityTypes() {
		printTotalRow(out, t, s.Total(t))
	}
	if s.LogoutTime != nil {
		fmt.Fprintln(out, strings.Repeat("-", 28))
		fmt.Fprintf(out, "%-16s %s\n", "Total", parser.FormatSeconds(s.ElapsedSeconds(*s.LogoutTime)))
	}
}

func printTotalRow(out io.Writer, t models.ActivityType, seconds int64) {
	fmt.Fprintf(out, "%-16s %s\n", t.Label(), parser.FormatSeconds(seconds))
}

// printSessionTable prints one line per session
func printSessionTable(out io.Writer, views []models.SessionView) {
	fmt.Fprintf(out, "%-10s %-14s %-20s %-5s %-5s %-13s %-8s %-8s %-8s %-8s %s\n",
		"DATE", "USER", "NAME", "IN", "OUT", "NOW", "WORK", "BREAK", "LUNCH", "WC", "MEETING")
	fmt.Fprintln(out, strings.Repeat("-", 118))

	for _, v := range views {
		now := "-"
		if v.LogoutTime == nil {
			now = v.CurrentActivity.Label()
		}
		fmt.Fprintf(out, "%-10s %-14s %-20s %-5s %-5s %-13s %-8s %-8s %-8s %-8s %s\n",
			v.Date,
			truncate(v.Username, 14),
			truncate(v.FullName, 20),
			parser.FormatClock(&v.LoginTime),
			parser.FormatClock(v.LogoutTime),
			now,
			parser.FormatSeconds(v.TotalWorkTime),
			parser.FormatSeconds(v.TotalBreakTime),
			parser.FormatSeconds(v.TotalLunchTime),
			parser.FormatSeconds(v.TotalBathroomTime),
			parser.FormatSeconds(v.TotalMeetingTime),
		)
	}
}

// truncate shortens s to n runes with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
