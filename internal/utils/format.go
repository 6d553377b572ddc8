package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// FormatDuration formats seconds to a readable duration like "1h 4m 2s".
func FormatDuration(seconds float64) string {
	s := int(seconds)
	hours := s / 3600
	minutes := (s % 3600) / 60
	secs := s % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatSize formats bytes to a human-readable file size.
func FormatSize(size int64) string {
	f := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if f < 1024 {
			return fmt.Sprintf("%.1f %s", f, unit)
		}
		f /= 1024
	}
	return fmt.Sprintf("%.1f PB", f)
}

// TimeAgo converts a timestamp to a "time ago" string.
func TimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff >= 365*24*time.Hour:
		return plural(int(diff.Hours()/(365*24)), "year")
	case diff >= 30*24*time.Hour:
		return plural(int(diff.Hours()/(30*24)), "month")
	case diff >= 24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff >= time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff >= time.Minute:
		return plural(int(diff.Minutes()), "minute")
	default:
		return "just now"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Truncate truncates text to maxLen characters, appending "..." when cut.
func Truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

// SanitizeFilename removes characters that are invalid in file names and
// replaces spaces with underscores.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, " ", "_")
}

// ReadingTime estimates reading time in minutes at ~200 words per minute.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := words / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}
