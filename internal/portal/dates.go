package portal

import (
	"strconv"
	"strings"
	"time"
)

// germanMonths maps portal month names to their numbers.
var germanMonths = map[string]time.Month{
	"Januar":    time.January,
	"Februar":   time.February,
	"März":      time.March,
	"April":     time.April,
	"Mai":       time.May,
	"Juni":      time.June,
	"Juli":      time.July,
	"August":    time.August,
	"September": time.September,
	"Oktober":   time.October,
	"November":  time.November,
	"Dezember":  time.December,
}

// ParseTermin parses an auction date string of the form
// "Montag, 07. August 2025, 10:00 Uhr" into a local time. The weekday part
// is ignored. Strings in any other shape report false rather than an error,
// matching how tolerant the rest of the entry handling is.
func ParseTermin(s string) (time.Time, bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 3 {
		return time.Time{}, false
	}

	datePart := strings.Fields(strings.ReplaceAll(parts[1], ".", ""))
	if len(datePart) != 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(datePart[0])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := germanMonths[datePart[1]]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(datePart[2])
	if err != nil {
		return time.Time{}, false
	}

	timePart := strings.TrimSpace(parts[2])
	if u := strings.ToLower(timePart); strings.HasSuffix(u, "uhr") {
		timePart = strings.TrimSpace(timePart[:len(timePart)-3])
	}
	clock := strings.Split(timePart, ":")
	if len(clock) != 2 {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(clock[0])
	if err != nil {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil {
		return time.Time{}, false
	}
	if day < 1 || day > 31 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}

	return time.Date(year, month, day, hour, minute, 0, 0, time.Local), true
}
