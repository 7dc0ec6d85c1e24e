// Package addressing resolves raw listing address fields into deliverable
// postal addresses. House-number fields on the portal are free text entered
// by court clerks, so expansion is forgiving: anything that does not parse
// as a clean numeric range passes through as a literal token.
package addressing

import (
	"strconv"
	"strings"
)

// maxRangeSpan is the largest distance between range bounds that still gets
// expanded. Ranges spanning 20 or more stay literal.
const maxRangeSpan = 20

// ExpandHouseNumbers parses a raw house-number field into an ordered list of
// discrete unit tokens. Segments are split on runs of ',', ';' and '/',
// trimmed, and empty segments dropped. A segment of the form "a-b" with both
// bounds plain ASCII integers, a <= b and b-a below 20 expands to one token
// per number; every other segment is kept verbatim. The function is total:
// malformed input degrades to literal tokens, never an error.
func ExpandHouseNumbers(raw string) []string {
	var tokens []string
	for _, seg := range strings.FieldsFunc(raw, isSeparator) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if start, end, ok := parseRange(seg); ok {
			for n := start; n <= end; n++ {
				tokens = append(tokens, strconv.Itoa(n))
			}
			continue
		}
		tokens = append(tokens, seg)
	}
	return tokens
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || r == '/'
}

// parseRange splits seg around its first '-' and reports whether it denotes
// an expandable numeric range. Reversed bounds, non-numeric bounds and spans
// of maxRangeSpan or more all report false so the caller keeps the segment
// literal.
func parseRange(seg string) (start, end int, ok bool) {
	i := strings.IndexByte(seg, '-')
	if i < 0 {
		return 0, 0, false
	}
	lo := strings.TrimSpace(seg[:i])
	hi := strings.TrimSpace(seg[i+1:])
	if !isDigits(lo) || !isDigits(hi) {
		return 0, 0, false
	}
	start, err := strconv.Atoi(lo)
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(hi)
	if err != nil {
		return 0, 0, false
	}
	if start > end || end-start >= maxRangeSpan {
		return 0, 0, false
	}
	return start, end, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
