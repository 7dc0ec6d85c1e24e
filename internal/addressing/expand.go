package addressing

import (
	"strings"

	"zvgcli/pkg/contracts/domain"
)

// ExpandListing resolves a listing into address records, one per house-number
// token in token order. A listing whose house-number field yields no tokens
// produces exactly one record for the bare street. Zip and city are carried
// through unchanged.
func ExpandListing(l domain.Listing) []domain.AddressRecord {
	street := strings.TrimSpace(l.Street)
	tokens := ExpandHouseNumbers(l.HouseNumbers)
	if len(tokens) == 0 {
		return []domain.AddressRecord{{Street: street, Zip: l.Zip, City: l.City}}
	}
	records := make([]domain.AddressRecord, 0, len(tokens))
	for _, tok := range tokens {
		s := street
		if tok != "" {
			s = street + " " + tok
		}
		records = append(records, domain.AddressRecord{Street: s, Zip: l.Zip, City: l.City})
	}
	return records
}

// ExpandListings flattens a slice of listings into one record sequence,
// preserving listing order and per-listing token order.
func ExpandListings(listings []domain.Listing) []domain.AddressRecord {
	var records []domain.AddressRecord
	for _, l := range listings {
		records = append(records, ExpandListing(l)...)
	}
	return records
}
