// Package order implements the shared order aggregate: free-text parsing,
// the persisted item/quantity store, and the audit trail types.
package order

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// quantityRe matches the accepted quantity shape: a plain non-negative decimal
// with either '.' or ',' as separator. Signs, exponents, and repeated
// separators are rejected so that lines like "ul. Lenina 1-2" never turn into
// order positions.
var quantityRe = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)

// ParseText extracts item/quantity pairs from free-form text, one pair per
// line. A line is recognized when its last whitespace-separated token is a
// quantity; everything before it becomes the item name, lower-cased. Lines
// without a recognizable quantity are skipped. Repeated names within the same
// text sum up. An empty map is a valid result meaning nothing was recognized.
func ParseText(text string) map[string]float64 {
	items := make(map[string]float64)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, qty, ok := parseLine(line)
		if !ok {
			continue
		}
		items[name] += qty
	}
	return items
}

func parseLine(line string) (string, float64, bool) {
	cut := strings.LastIndexFunc(line, unicode.IsSpace)
	if cut < 0 {
		return "", 0, false
	}
	token := line[cut+1:]
	if !quantityRe.MatchString(token) {
		return "", 0, false
	}
	name := strings.ToLower(strings.TrimSpace(line[:cut]))
	if name == "" {
		return "", 0, false
	}
	qty, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
	if err != nil {
		return "", 0, false
	}
	return name, qty, true
}
