package report

import (
	"fmt"
	"strconv"
	"strings"
)

// To24Hour normalizes a time string to zero-padded 24-hour "HH:MM".
// Input may be a bare 24-hour string, which is returned unchanged, or a
// labeled 12-hour string like "09:15 AM". Empty or unparseable input
// yields the empty string rather than an error.
func To24Hour(s string) string {
	normalized := strings.TrimSpace(s)
	if normalized == "" {
		return ""
	}
	if !strings.Contains(normalized, " ") {
		return normalized
	}

	clock, modifier, _ := strings.Cut(normalized, " ")
	modifier = strings.TrimSpace(modifier)
	if modifier == "" {
		return normalized
	}

	hours, minutes, ok := strings.Cut(clock, ":")
	if !ok {
		return ""
	}
	hour, err := strconv.Atoi(hours)
	if err != nil {
		return ""
	}

	switch strings.ToUpper(modifier) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	return fmt.Sprintf("%02d:%s", hour, minutes)
}

// To12Hour converts a 24-hour "HH:MM" string to zero-padded "hh:mm AM/PM".
// Hour 0 becomes 12 AM and hour 12 stays 12 PM. Empty or unparseable
// input yields the empty string.
func To12Hour(s string) string {
	if s == "" {
		return ""
	}
	hours, minutes, ok := strings.Cut(s, ":")
	if !ok {
		return ""
	}
	hour, err := strconv.Atoi(hours)
	if err != nil {
		return ""
	}
	minute, err := strconv.Atoi(minutes)
	if err != nil {
		return ""
	}

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%02d:%02d %s", hour, minute, suffix)
}
