package addressing

import (
	"regexp"
	"strings"
)

// streetParts captures the leading street name and the trailing number part
// of a combined address line, e.g. "Hauptstraße 5-7" or "Am Markt 3a".
var streetParts = regexp.MustCompile(`^(\D+?)\s*(\d.*)?$`)

// SplitStreet separates a combined street line into the street name and the
// raw house-number part. Lines that start with a digit or carry no number
// come back whole in the street position with an empty number part.
func SplitStreet(full string) (street, numbers string) {
	full = strings.TrimSpace(full)
	m := streetParts.FindStringSubmatch(full)
	if m == nil {
		return full, ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}
