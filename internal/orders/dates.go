package orders

import (
	"fmt"
	"strings"
	"time"
)

// Calendar layouts accepted for normalized order dates.
const (
	DateLayoutYMD = "2006-01-02"
	DateLayoutDMY = "02-01-2006"
)

// DateLayout maps a configured format name ("ymd" or "dmy") to its layout.
func DateLayout(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ymd", "yyyy-mm-dd":
		return DateLayoutYMD, nil
	case "dmy", "dd-mm-yyyy":
		return DateLayoutDMY, nil
	default:
		return "", fmt.Errorf("unsupported date format %q (want ymd or dmy)", name)
	}
}

// ParseDate reads a calendar date written in layout, ISO form or RFC3339 and
// returns midnight of that day in loc.
func ParseDate(s, layout string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, l := range []string{layout, DateLayoutYMD} {
		if l == "" {
			continue
		}
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return CalendarDay(t, loc), nil
}
