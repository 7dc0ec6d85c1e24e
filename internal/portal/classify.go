package portal

import "strings"

// AuctionTypes lists the auction kinds the portal announces, in the wording
// used on the result pages. The search filter matches these exactly.
var AuctionTypes = []string{
	"Versteigerung im Wege der Zwangsvollstreckung",
	"Zwangsversteigerung zum Zwecke der Aufhebung der Gemeinschaft",
}

// propertyKeywords maps a selectable property type to the lowercase keywords
// that identify it in the listing text. Spelling variants cover both umlaut
// and ae/oe/ue forms since the portal mixes them.
var propertyKeywords = map[string][]string{
	"Reihenhaus":       {"reihenhaus"},
	"Doppelhaushälfte": {"doppelhaushälfte", "doppelhaushaelfte", "doppelhaus"},
	"Einfamilienhaus":  {"einfamilienhaus"},
	"Wohn- und Geschäftshaus": {
		"wohn- und geschäftshaus", "wohn- und geschaeftshaus",
		"wohn-und geschäftshaus", "wohn-und geschaeftshaus",
	},
	"Gewerbeeinheit": {"gewerbeeinheit", "gewerbefläche", "gewerbeobjekt"},
}

// PropertyTypes returns the selectable property types in a stable order.
func PropertyTypes() []string {
	return []string{
		"Reihenhaus",
		"Doppelhaushälfte",
		"Einfamilienhaus",
		"Wohn- und Geschäftshaus",
		"Gewerbeeinheit",
	}
}

// ClassifyPropertyType returns the first of the selected types whose
// keywords occur in text. Matching is case-insensitive; the empty string and
// false mean no selected type matched.
func ClassifyPropertyType(text string, selected []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, ptype := range selected {
		for _, kw := range propertyKeywords[ptype] {
			if strings.Contains(lower, kw) {
				return ptype, true
			}
		}
	}
	return "", false
}
