package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParsePeriod parses an ISO-8601 period string as returned by the YouTube Data
// API (e.g. "PT1H2M3S") into a [time.Duration]. Date components are not
// supported; video durations never carry them.
func ParsePeriod(s string) (time.Duration, error) {
	orig := s
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "PT") {
		return 0, fmt.Errorf("invalid ISO-8601 period: %q", orig)
	}
	s = s[2:]
	if s == "" {
		return 0, fmt.Errorf("invalid ISO-8601 period: %q", orig)
	}

	var total time.Duration
	num := strings.Builder{}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			num.WriteRune(r)
			continue
		}

		n, err := strconv.Atoi(num.String())
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 period: %q", orig)
		}
		num.Reset()

		switch r {
		case 'H':
			total += time.Duration(n) * time.Hour
		case 'M':
			total += time.Duration(n) * time.Minute
		case 'S':
			total += time.Duration(n) * time.Second
		default:
			return 0, fmt.Errorf("invalid ISO-8601 period: %q", orig)
		}
	}
	if num.Len() > 0 {
		return 0, fmt.Errorf("invalid ISO-8601 period: %q", orig)
	}

	return total, nil
}

// FormatClock renders a duration as the human-readable clock string shown next
// to a video ("4:13", "1:02:03"). Sub-minute durations keep a leading zero
// minute ("0:52").
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatPeriod converts an ISO-8601 period directly to the clock string,
// returning the input unchanged when it does not parse.
func FormatPeriod(s string) string {
	d, err := ParsePeriod(s)
	if err != nil {
		return s
	}
	return FormatClock(d)
}
