package domain

// Listing is one foreclosure auction as returned by the portal search.
// The identifying and address-bearing fields feed the export pipeline; the
// remaining fields are carried for display only and never interpreted.
type Listing struct {
	ID           string `json:"id" validate:"required"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Street       string `json:"street"`
	HouseNumbers string `json:"houseNumbers"`
	Zip          string `json:"zip"`
	City         string `json:"city"`
	State        string `json:"state"`
	AuctionType  string `json:"auctionType"`
	PropertyType string `json:"propertyType"`
	CourtName    string `json:"courtName,omitempty"`
	CaseNumber   string `json:"caseNumber,omitempty"`
	MarketValue  string `json:"marketValue,omitempty"`
	ObjectText   string `json:"objektLage,omitempty"`
	Description  string `json:"description,omitempty"`
}

// SelectionSet marks which listings of one search result set are selected
// for export. It is scoped to a single result set and rebuilt per search.
type SelectionSet map[string]bool

// SelectedIDs returns the ids of listings that are both present and selected,
// preserving the order of the listings slice.
func (s SelectionSet) SelectedIDs(listings []Listing) []string {
	var ids []string
	for _, l := range listings {
		if s[l.ID] {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
