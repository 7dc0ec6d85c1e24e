package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"zvgcli/pkg/contracts/domain"
)

func TestMarshalAddressXLSX(t *testing.T) {
	records := []domain.AddressRecord{
		{Street: "Hauptstraße 5", Zip: "10115", City: "Berlin"},
		{Street: "Am Markt 3a", Zip: "04109", City: "Leipzig"},
	}

	blob, err := MarshalAddressXLSX(records)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	f, err := excelize.OpenReader(bytes.NewReader(blob))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Adressen")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Straße", "PLZ", "Ort"}, rows[0])
	assert.Equal(t, []string{"Hauptstraße 5", "10115", "Berlin"}, rows[1])
	assert.Equal(t, []string{"Am Markt 3a", "04109", "Leipzig"}, rows[2])
}

func TestMarshalAddressXLSXEmpty(t *testing.T) {
	blob, err := MarshalAddressXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(blob))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Adressen")
	require.NoError(t, err)
	require.Len(t, rows, 1, "only the header row is written")
}
