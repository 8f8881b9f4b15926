package handlers

import (
	"math"
	"strconv"
	"strings"
)

// formatEuro renders v as "€ 1 234,56": space thousands separator, comma
// decimal separator.
func formatEuro(v float64) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString("€ ")
	if v < 0 && s != "0.00" {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
