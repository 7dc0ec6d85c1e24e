package domain

// SearchQuery carries the user-facing search filters. State selects the
// portal region to query; the remaining fields narrow the result set locally.
type SearchQuery struct {
	State            string   `json:"state" validate:"required"`
	AuctionTypes     []string `json:"auctionTypes,omitempty"`
	PropertyTypes    []string `json:"propertyTypes,omitempty"`
	MinDays          int      `json:"minDays" validate:"gte=0"`
	IncludeContacted bool     `json:"includeContacted"`
}

// SearchResult is the outcome of one search, after filtering and contact
// suppression have been applied.
type SearchResult struct {
	Listings   []Listing `json:"listings"`
	Total      int       `json:"total"`
	Suppressed int       `json:"suppressed"`
}
