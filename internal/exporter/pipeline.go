package exporter

import (
	"time"

	"zvgcli/internal/addressing"
	"zvgcli/internal/contacts"
	"zvgcli/pkg/contracts/domain"
)

// Result is the outcome of one export run. History is an updated copy of the
// input mapping; persisting it and handing Blob to the download sink are the
// caller's job. The pipeline itself performs no I/O.
type Result struct {
	Blob      []byte
	Filename  string
	Addresses []domain.AddressRecord
	Contacted []string
	History   domain.ContactHistory
}

// Export filters listings down to the selected ones in their original order,
// expands them into address records, serializes the records to CSV and stamps
// every selected id with now in a copy of history. Unselected listings never
// reach the history copy and the input mapping is never mutated. ok reports
// whether anything was selected; on false the zero Result must be ignored.
func Export(listings []domain.Listing, selection domain.SelectionSet, history domain.ContactHistory, now time.Time) (Result, bool) {
	var selected []domain.Listing
	for _, l := range listings {
		if selection[l.ID] {
			selected = append(selected, l)
		}
	}
	if len(selected) == 0 {
		return Result{}, false
	}

	records := addressing.ExpandListings(selected)
	blob := MarshalAddressCSV(records)

	updated := history.Clone()
	stamp := contacts.FormatTimestamp(now)
	contacted := make([]string, 0, len(selected))
	for _, l := range selected {
		updated[l.ID] = stamp
		contacted = append(contacted, l.ID)
	}

	return Result{
		Blob:      blob,
		Filename:  AddressCSVFilename,
		Addresses: records,
		Contacted: contacted,
		History:   updated,
	}, true
}
