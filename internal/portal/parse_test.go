package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zvgcli/pkg/contracts/domain"
)

// resultPageFixture mimics the portal's result markup: one table of
// label/value rows, court headers spanning the table, detail links carrying
// the zvg_id.
const resultPageFixture = `<html><body>
<table border="1">
<tr><td colspan="2"><b>Amtsgericht Leipzig</b></td></tr>
<tr><td>Aktenzeichen:</td><td><a href="index.php?button=showZvg&zvg_id=4711&land_abk=sn">0123 K 0045/2024</a></td></tr>
<tr><td>Art der Versteigerung:</td><td>Versteigerung im Wege der Zwangsvollstreckung</td></tr>
<tr><td>Objekt/Lage:</td><td>Einfamilienhaus, Hauptstra&szlig;e 5-7, 04109 Leipzig</td></tr>
<tr><td>Beschreibung:</td><td>Einfamilienhaus mit Garage</td></tr>
<tr><td>Verkehrswert in &euro;:</td><td>250.000,00</td></tr>
<tr><td>Termin:</td><td>Montag, 07. August 2025, 10:00 Uhr</td></tr>
<tr><td>Aktenzeichen:</td><td>0123 K 0099/2024</td></tr>
<tr><td>Objekt/Lage:</td><td>Wohnung, Musterweg 3, 04109 Leipzig</td></tr>
<tr><td>Termin:</td><td>Dienstag, 09. September 2025, 09:30 Uhr</td></tr>
<tr><td colspan="2"><b>Amtsgericht Dresden</b></td></tr>
<tr><td>Aktenzeichen:</td><td>0517 K 0012/2024</td></tr>
<tr><td>Objekt/Lage:</td><td>Reihenhaus, MÃ¼hlenweg 2, 01067 Dresden</td></tr>
<tr><td>Termin:</td><td>kein Termin bestimmt</td></tr>
</table>
</body></html>`

func TestParseResultPage(t *testing.T) {
	entries, err := parseResultPage(resultPageFixture)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0]
	assert.Equal(t, "Amtsgericht Leipzig", first.court)
	assert.Equal(t, "4711", first.detailID)
	assert.Equal(t, "0123 K 0045/2024", first.fields[labelAktenzeichen])
	assert.Equal(t, "Versteigerung im Wege der Zwangsvollstreckung", first.fields[labelArt])
	assert.Equal(t, "Einfamilienhaus, Hauptstraße 5-7, 04109 Leipzig", first.fields[labelObjektLage])
	assert.Equal(t, "Einfamilienhaus mit Garage", first.fields[labelBeschreibung])
	assert.Equal(t, "250.000,00", first.fields[labelVerkehrswert])
	assert.Equal(t, "Montag, 07. August 2025, 10:00 Uhr", first.fields[labelTermin])

	second := entries[1]
	assert.Equal(t, "Amtsgericht Leipzig", second.court, "court carries over until the next header row")
	assert.Empty(t, second.detailID)
	assert.Equal(t, "0123 K 0099/2024", second.fields[labelAktenzeichen])

	third := entries[2]
	assert.Equal(t, "Amtsgericht Dresden", third.court)
	assert.Equal(t, "Reihenhaus, Mühlenweg 2, 01067 Dresden", third.fields[labelObjektLage],
		"mojibake in values is repaired during parsing")
}

func TestParseResultPageEmpty(t *testing.T) {
	entries, err := parseResultPage("<html><body><p>Keine Treffer</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildListing(t *testing.T) {
	entries, err := parseResultPage(resultPageFixture)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	land := Land{Code: "sn", Name: "Sachsen"}

	first, err := buildListing(entries[0], land)
	require.NoError(t, err)
	assert.Equal(t, domain.Listing{
		ID:           "4711",
		Date:         "2025-08-07",
		Time:         "10:00",
		Street:       "Hauptstraße",
		HouseNumbers: "5-7",
		Zip:          "04109",
		City:         "Leipzig",
		State:        "Sachsen",
		AuctionType:  "Versteigerung im Wege der Zwangsvollstreckung",
		CourtName:    "Amtsgericht Leipzig",
		CaseNumber:   "0123 K 0045/2024",
		MarketValue:  "250.000,00",
		Description:  "Einfamilienhaus mit Garage",
	}, first)

	second, err := buildListing(entries[1], land)
	require.NoError(t, err)
	assert.Equal(t, "sn/0123 K 0099/2024", second.ID, "entries without a detail link fall back to a case number id")
	assert.Equal(t, "Musterweg", second.Street)
	assert.Equal(t, "3", second.HouseNumbers)

	_, err = buildListing(entries[2], land)
	assert.Error(t, err, "entries without a parseable termin are rejected")
}

func TestBuildListingWithoutCaseNumber(t *testing.T) {
	_, err := buildListing(rawEntry{fields: map[string]string{labelTermin: "Montag, 07. August 2025, 10:00 Uhr"}}, Land{Code: "sn"})
	assert.Error(t, err)
}

func TestParseObjektLage(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		street       string
		houseNumbers string
		zip          string
		city         string
	}{
		{
			name:   "type street zip city",
			text:   "Einfamilienhaus, Hauptstraße 5-7, 04109 Leipzig",
			street: "Hauptstraße", houseNumbers: "5-7", zip: "04109", city: "Leipzig",
		},
		{
			name:   "street line first",
			text:   "Musterweg 3, 01067 Dresden",
			street: "Musterweg", houseNumbers: "3", zip: "01067", city: "Dresden",
		},
		{
			name:   "no zip part falls back to first parts",
			text:   "Hauptstraße, 5 und 7",
			street: "Hauptstraße", houseNumbers: "5",
		},
		{
			name:   "word after comma is not a house number",
			text:   "Wohnung, Obergeschoss links",
			street: "Wohnung",
		},
		{
			name: "zip city only",
			text: "04109 Leipzig",
			zip:  "04109", city: "Leipzig",
		},
		{
			name:   "single street line",
			text:   "Am Markt 12",
			street: "Am Markt", houseNumbers: "12",
		},
		{name: "empty text", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			street, houseNumbers, zip, city := parseObjektLage(tt.text)
			assert.Equal(t, tt.street, street)
			assert.Equal(t, tt.houseNumbers, houseNumbers)
			assert.Equal(t, tt.zip, zip)
			assert.Equal(t, tt.city, city)
		})
	}
}
