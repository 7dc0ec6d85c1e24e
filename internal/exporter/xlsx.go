package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"zvgcli/pkg/contracts/domain"
)

// AddressXLSXFilename is the download name suggested for workbook exports.
const AddressXLSXFilename = "adressliste.xlsx"

const addressSheet = "Adressen"

// MarshalAddressXLSX renders address records as a single-sheet workbook with
// the same column layout as the CSV export.
func MarshalAddressXLSX(records []domain.AddressRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", addressSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(addressSheet)
	if err != nil {
		return nil, fmt.Errorf("create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", []interface{}{"Straße", "PLZ", "Ort"}); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("locate row %d: %w", i+2, err)
		}
		if err := sw.SetRow(cell, []interface{}{r.Street, r.Zip, r.City}); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush stream writer: %w", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
