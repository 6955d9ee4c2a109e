package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportDate(t *testing.T) {
	now := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"2024-02-29", "2024-02-29"},
		{"04/03/2024", "2024-03-04"},
		{"1/2/2024", "2024-02-01"},
		{"today", "2024-03-04"},
		{"  Today ", "2024-03-04"},
		{"yesterday", "2024-03-03"},
		{"7 days", "2024-02-26"},
		{"1 day ago", "2024-03-03"},
		{"0 days", "2024-03-04"},
		{"2 weeks", "2024-02-19"},
		{"3d", "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReportDate(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReportDateErrors(t *testing.T) {
	now := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"2023-02-29",
		"2024-13-01",
		"31/02/2024",
		"next week",
		"5 fortnights",
		"9999 weeks",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseReportDate(input, now)
			assert.Error(t, err)
		})
	}
}
