package domain

import (
	"math"
	"strings"
	"time"
)

// yearDuration is the 365.25-day year used for every age computation.
const yearDuration = time.Duration(365.25 * 24 * float64(time.Hour))

var birthDateLayouts = []string{"2006-01-02", time.RFC3339Nano, time.RFC3339}

// ParseBirthDate parses an ISO calendar date (or timestamp) as UTC.
func ParseBirthDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// AgeAt returns floor((now - birth) / 365.25 days). The second result is false
// when birthDate is absent or unparseable.
func AgeAt(birthDate *string, now time.Time) (int, bool) {
	if birthDate == nil {
		return 0, false
	}
	born, ok := ParseBirthDate(*birthDate)
	if !ok {
		return 0, false
	}
	elapsed := now.Sub(born)
	return int(math.Floor(float64(elapsed) / float64(yearDuration))), true
}

// AgePtr is AgeAt returning nil when the age is unknown.
func AgePtr(birthDate *string, now time.Time) *int {
	age, ok := AgeAt(birthDate, now)
	if !ok {
		return nil
	}
	return &age
}
