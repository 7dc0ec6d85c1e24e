package domain

// AddressRecord is one fully expanded postal address. Every record carries a
// single concrete house number; listings with number lists or ranges are
// expanded into multiple records before serialization.
type AddressRecord struct {
	Street string `json:"street"`
	Zip    string `json:"zip"`
	City   string `json:"city"`
}
