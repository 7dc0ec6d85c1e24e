package exporter

import (
	"bytes"

	"zvgcli/pkg/contracts/domain"
)

// AddressCSVFilename is the download name suggested for CSV exports.
const AddressCSVFilename = "adressliste.csv"

// addressHeader is written verbatim and stays unquoted.
const addressHeader = "Straße,PLZ,Ort\n"

// MarshalAddressCSV renders address records into the export format: the fixed
// header row, then one row per record in input order with every field wrapped
// in double quotes and embedded quotes doubled. Every row ends with a bare
// newline, the last one included. encoding/csv quotes only when a field needs
// it, while the downstream mail-merge templates expect quoting on every
// field, so the escaping is done by hand.
func MarshalAddressCSV(records []domain.AddressRecord) []byte {
	var buf bytes.Buffer
	buf.Grow(len(addressHeader) + len(records)*48)
	buf.WriteString(addressHeader)
	for _, r := range records {
		writeQuoted(&buf, r.Street)
		buf.WriteByte(',')
		writeQuoted(&buf, r.Zip)
		buf.WriteByte(',')
		writeQuoted(&buf, r.City)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// writeQuoted writes one field wrapped in double quotes with interior quotes
// doubled. The quote byte cannot occur inside a UTF-8 continuation sequence,
// so scanning bytes is safe for umlaut-bearing values.
func writeQuoted(buf *bytes.Buffer, field string) {
	buf.WriteByte('"')
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c == '"' {
			buf.WriteByte('"')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('"')
}
