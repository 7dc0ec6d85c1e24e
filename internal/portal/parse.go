package portal

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"zvgcli/internal/addressing"
	"zvgcli/pkg/contracts/domain"
)

// ErrBadResultPage marks a response body that could not be read as a result
// page at all. Callers distinguish it from transport failures.
var ErrBadResultPage = errors.New("malformed result page")

// Labels on the portal's result rows. The value sits in the cell after the
// label cell.
const (
	labelAktenzeichen = "Aktenzeichen"
	labelArt          = "Art der Versteigerung"
	labelTermin       = "Termin"
	labelObjektLage   = "Objekt/Lage"
	labelBeschreibung = "Beschreibung"
	labelVerkehrswert = "Verkehrswert"
)

// zipCity matches the "12345 Stadt" part of an address line.
var zipCity = regexp.MustCompile(`^(\d{5})\s+(.+)$`)

type rawEntry struct {
	fields   map[string]string
	court    string
	detailID string
}

// parseResultPage extracts one rawEntry per auction from a result document.
// The portal renders label/value cell pairs row by row; a repeated
// "Aktenzeichen" label opens the next entry and full-width "Amtsgericht ..."
// rows set the court for every entry that follows.
func parseResultPage(body string) ([]rawEntry, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResultPage, err)
	}

	var (
		entries []rawEntry
		current *rawEntry
		court   string
	)
	flush := func() {
		if current != nil && len(current.fields) > 0 {
			entries = append(entries, *current)
		}
		current = nil
	}

	for _, row := range tableRows(doc) {
		cells := rowCells(row)
		if len(cells) == 0 {
			continue
		}
		first := FixEncoding(cells[0])

		if strings.HasPrefix(first, "Amtsgericht") && !hasSecondValue(cells) {
			court = first
			continue
		}

		key, ok := canonicalLabel(first)
		if !ok {
			continue
		}
		if key == labelAktenzeichen && current != nil && current.fields[labelAktenzeichen] != "" {
			flush()
		}
		if current == nil {
			current = &rawEntry{fields: make(map[string]string), court: court}
		}
		current.fields[key] = FixEncoding(firstValue(cells))
		if id := rowDetailID(row); id != "" {
			current.detailID = id
		}
	}
	flush()
	return entries, nil
}

// canonicalLabel maps a label cell to its canonical key. The market value
// label varies ("Verkehrswert", "Verkehrswert in €"), so it matches by
// prefix; everything else matches exactly.
func canonicalLabel(cell string) (string, bool) {
	t := strings.TrimSuffix(strings.TrimSpace(cell), ":")
	switch t {
	case labelAktenzeichen, labelArt, labelTermin, labelObjektLage, labelBeschreibung:
		return t, true
	}
	if strings.HasPrefix(t, labelVerkehrswert) {
		return labelVerkehrswert, true
	}
	return "", false
}

func hasSecondValue(cells []string) bool {
	for _, c := range cells[1:] {
		if c != "" {
			return true
		}
	}
	return false
}

func firstValue(cells []string) string {
	for _, c := range cells[1:] {
		if c != "" {
			return c
		}
	}
	return ""
}

// tableRows collects every tr element in document order.
func tableRows(doc *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

// rowCells returns the collapsed text of each td/th cell in the row,
// including empty cells so the label keeps its position.
func rowCells(row *html.Node) []string {
	var cells []string
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, collapseSpace(nodeText(c)))
		}
	}
	return cells
}

// nodeText flattens the text below n. Line breaks become single spaces.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// rowDetailID pulls the portal's numeric listing id out of a detail link in
// the row, if one exists.
func rowDetailID(row *html.Node) string {
	var id string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if id != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if u, err := url.Parse(attr.Val); err == nil {
					if v := u.Query().Get("zvg_id"); v != "" {
						id = v
						return
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(row)
	return id
}

// buildListing assembles a Listing from one raw entry. Entries without a
// case number or without a parseable auction date are rejected; the portal
// keeps such rows around for cancelled or postponed auctions.
func buildListing(e rawEntry, land Land) (domain.Listing, error) {
	caseNumber := e.fields[labelAktenzeichen]
	if caseNumber == "" {
		return domain.Listing{}, fmt.Errorf("entry without case number")
	}
	termin, ok := ParseTermin(e.fields[labelTermin])
	if !ok {
		return domain.Listing{}, fmt.Errorf("entry %s: unparseable termin %q", caseNumber, e.fields[labelTermin])
	}
	id := e.detailID
	if id == "" {
		id = land.Code + "/" + caseNumber
	}
	street, houseNumbers, zip, city := parseObjektLage(e.fields[labelObjektLage])

	return domain.Listing{
		ID:           id,
		Date:         termin.Format("2006-01-02"),
		Time:         termin.Format("15:04"),
		Street:       street,
		HouseNumbers: houseNumbers,
		Zip:          zip,
		City:         city,
		State:        land.Name,
		AuctionType:  e.fields[labelArt],
		CourtName:    e.court,
		CaseNumber:   caseNumber,
		MarketValue:  e.fields[labelVerkehrswert],
		ObjectText:   e.fields[labelObjektLage],
		Description:  e.fields[labelBeschreibung],
	}, nil
}

// parseObjektLage pulls the deliverable address out of the free-text
// "Objekt/Lage" field. The usual shape is "<what>, <street line>, <zip city>".
// Without a zip part the first comma part is taken as the street line and a
// digit-leading token from the following part as the house numbers.
func parseObjektLage(text string) (street, houseNumbers, zip, city string) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	zipIdx := -1
	for i, p := range parts {
		if m := zipCity.FindStringSubmatch(p); m != nil {
			zip, city = m[1], strings.TrimSpace(m[2])
			zipIdx = i
			break
		}
	}
	if zipIdx == 0 {
		return "", "", zip, city
	}
	lineIdx := 0
	if zipIdx > 0 {
		lineIdx = zipIdx - 1
	}
	street, houseNumbers = addressing.SplitStreet(parts[lineIdx])
	if houseNumbers == "" && lineIdx+1 < len(parts) && lineIdx+1 != zipIdx {
		if tokens := strings.Fields(parts[lineIdx+1]); len(tokens) > 0 && tokens[0][0] >= '0' && tokens[0][0] <= '9' {
			houseNumbers = tokens[0]
		}
	}
	return street, houseNumbers, zip, city
}
