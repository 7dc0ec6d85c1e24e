package addressing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStreet(t *testing.T) {
	tests := []struct {
		name    string
		full    string
		street  string
		numbers string
	}{
		{name: "name and single number", full: "Hauptstraße 5", street: "Hauptstraße", numbers: "5"},
		{name: "name and range", full: "Am Markt 5-7", street: "Am Markt", numbers: "5-7"},
		{name: "suffixed number", full: "Ringstraße 3a", street: "Ringstraße", numbers: "3a"},
		{name: "number list", full: "Gartenweg 1, 3, 5", street: "Gartenweg", numbers: "1, 3, 5"},
		{name: "no numbers", full: "Unter den Linden", street: "Unter den Linden", numbers: ""},
		{name: "leading digit keeps line whole", full: "5. Ring", street: "5. Ring", numbers: ""},
		{name: "padded input", full: "  Gartenweg 12  ", street: "Gartenweg", numbers: "12"},
		{name: "empty", full: "", street: "", numbers: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			street, numbers := SplitStreet(tt.full)
			assert.Equal(t, tt.street, street)
			assert.Equal(t, tt.numbers, numbers)
		})
	}
}
