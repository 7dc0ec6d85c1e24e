package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPropertyType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		selected []string
		want     string
		wantOK   bool
	}{
		{
			name:     "direct keyword",
			text:     "gepflegtes einfamilienhaus mit garten",
			selected: []string{"Einfamilienhaus"},
			want:     "Einfamilienhaus",
			wantOK:   true,
		},
		{
			name:     "matching is case insensitive",
			text:     "REIHENHAUS in ruhiger Lage",
			selected: []string{"Reihenhaus"},
			want:     "Reihenhaus",
			wantOK:   true,
		},
		{
			name:     "ascii umlaut spelling",
			text:     "doppelhaushaelfte mit carport",
			selected: []string{"Doppelhaushälfte"},
			want:     "Doppelhaushälfte",
			wantOK:   true,
		},
		{
			name:     "gewerbe synonym",
			text:     "vermietete gewerbefläche im erdgeschoss",
			selected: []string{"Gewerbeeinheit"},
			want:     "Gewerbeeinheit",
			wantOK:   true,
		},
		{
			name:     "first selected type wins",
			text:     "reihenhaus mit gewerbeeinheit im anbau",
			selected: []string{"Gewerbeeinheit", "Reihenhaus"},
			want:     "Gewerbeeinheit",
			wantOK:   true,
		},
		{
			name:     "no match",
			text:     "unbebautes grundstück",
			selected: []string{"Einfamilienhaus", "Reihenhaus"},
			wantOK:   false,
		},
		{
			name:     "unknown selected type is ignored",
			text:     "einfamilienhaus",
			selected: []string{"Schloss"},
			wantOK:   false,
		},
		{
			name:     "empty selection never matches",
			text:     "einfamilienhaus",
			selected: nil,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyPropertyType(tt.text, tt.selected)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPropertyTypes(t *testing.T) {
	types := PropertyTypes()
	require.Len(t, types, 5)
	for _, pt := range types {
		assert.Contains(t, propertyKeywords, pt)
	}
}

func TestAuctionTypes(t *testing.T) {
	require.Len(t, AuctionTypes, 2)
	assert.Contains(t, AuctionTypes[0], "Zwangsvollstreckung")
	assert.Contains(t, AuctionTypes[1], "Aufhebung der Gemeinschaft")
}
