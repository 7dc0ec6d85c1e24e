package portal

import (
	"strings"
	"unicode/utf8"
)

// decodeBody interprets a raw response body. The portal serves ISO-8859-1;
// when the bytes are not valid UTF-8 each byte is widened to its Latin-1
// code point, which is a one-to-one mapping.
func decodeBody(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// FixEncoding repairs values that went through a UTF-8 to Latin-1 round trip
// on the portal side, the classic "StraÃŸe" mojibake. Detection keys on 'Ã'
// and 'Â', which appear in German text only as damage. Undamaged strings
// pass through untouched.
func FixEncoding(s string) string {
	if !strings.ContainsAny(s, "ÃÂ") {
		return s
	}
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x100 {
			b = append(b, byte(r))
		}
	}
	return strings.ToValidUTF8(string(b), "")
}
