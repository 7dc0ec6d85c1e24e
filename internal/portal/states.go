package portal

import "strings"

// Land is one German federal state as the portal knows it. Code is the
// two-letter form value the portal's search form expects.
type Land struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// laender lists all sixteen states with their portal codes. Names carry
// proper umlauts; lookups fold both spellings onto the same entry.
var laender = []Land{
	{Code: "bw", Name: "Baden-Württemberg"},
	{Code: "by", Name: "Bayern"},
	{Code: "be", Name: "Berlin"},
	{Code: "br", Name: "Brandenburg"},
	{Code: "hb", Name: "Bremen"},
	{Code: "hh", Name: "Hamburg"},
	{Code: "he", Name: "Hessen"},
	{Code: "mv", Name: "Mecklenburg-Vorpommern"},
	{Code: "ni", Name: "Niedersachsen"},
	{Code: "nw", Name: "Nordrhein-Westfalen"},
	{Code: "rp", Name: "Rheinland-Pfalz"},
	{Code: "sl", Name: "Saarland"},
	{Code: "sn", Name: "Sachsen"},
	{Code: "st", Name: "Sachsen-Anhalt"},
	{Code: "sh", Name: "Schleswig-Holstein"},
	{Code: "th", Name: "Thüringen"},
}

var stateIndex = buildStateIndex()

func buildStateIndex() map[string]Land {
	index := make(map[string]Land, len(laender)*3)
	for _, l := range laender {
		index[l.Code] = l
		index[foldUmlauts(strings.ToLower(l.Name))] = l
	}
	return index
}

// Laender returns the state table in portal order.
func Laender() []Land {
	out := make([]Land, len(laender))
	copy(out, laender)
	return out
}

// NormalizeState resolves user input to a state. It accepts the two-letter
// code in any case, the proper name, and the ae/oe/ue spelling the portal
// uses itself ("Baden-Wuerttemberg").
func NormalizeState(input string) (Land, bool) {
	key := foldUmlauts(strings.ToLower(strings.TrimSpace(input)))
	l, ok := stateIndex[key]
	return l, ok
}

var umlautFolder = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
)

func foldUmlauts(s string) string {
	return umlautFolder.Replace(s)
}
