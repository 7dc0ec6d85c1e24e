// Package contacts tracks which listings were already exported and decides
// when a listing must be suppressed from new search results. Suppression
// covers exactly the calendar month before the reference date: contacts from
// the current month or from any earlier month stay visible.
package contacts

import (
	"fmt"
	"strings"
	"time"

	"zvgcli/pkg/contracts/domain"
)

// timestampLayouts are tried in order when reading stored contact times.
// New entries are written as RFC 3339 in UTC; histories from earlier
// versions of the tool may carry bare dates or space-separated local times.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatTimestamp renders a contact time the way histories store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp reads a stored contact time. Layouts without zone
// information are interpreted in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("contacts: unrecognized timestamp %q", raw)
}

// SuppressionWindow returns the half-open interval [start, end) covering the
// calendar month before ref's month, at local midnight in ref's zone. For a
// January reference the window is December of the previous year.
func SuppressionWindow(ref time.Time) (start, end time.Time) {
	y, m, _ := ref.Date()
	loc := ref.Location()
	start = time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
	end = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return start, end
}

// ShouldSuppress reports whether the listing was contacted inside the
// suppression window for ref. Listings without a history entry and entries
// that do not parse are never suppressed.
func ShouldSuppress(listingID string, history domain.ContactHistory, ref time.Time) bool {
	raw, ok := history[listingID]
	if !ok {
		return false
	}
	ts, err := ParseTimestamp(raw, ref.Location())
	if err != nil {
		return false
	}
	start, end := SuppressionWindow(ref)
	return !ts.Before(start) && ts.Before(end)
}

// FilterListings drops suppressed listings while preserving order and
// reports how many were removed.
func FilterListings(listings []domain.Listing, history domain.ContactHistory, ref time.Time) (kept []domain.Listing, suppressed int) {
	kept = make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if ShouldSuppress(l.ID, history, ref) {
			suppressed++
			continue
		}
		kept = append(kept, l)
	}
	return kept, suppressed
}
