package extract

import (
	"regexp"
	"strings"
)

var (
	euroDecimalRe = regexp.MustCompile(`\d,\d{2}$`)
	usDecimalRe   = regexp.MustCompile(`\d\.\d{2}$`)
	euroGroupRe   = regexp.MustCompile(`\d\.\d{3}`)
	usGroupRe     = regexp.MustCompile(`\d,\d{3}`)
)

// ProbeDialect inspects sample amount cells and infers the regional
// number dialect of the document. Cells that end in a two-digit fraction
// vote for that separator as the decimal mark; three-digit groups vote
// for the opposite role. Blank and non-numeric cells are ignored.
// Returns DialectUnknown when the evidence is balanced or absent.
func ProbeDialect(samples []string) Dialect {
	european := 0
	american := 0

	for _, raw := range samples {
		s := strings.TrimSpace(raw)
		if IsBlank(s) {
			continue
		}
		if euroDecimalRe.MatchString(s) {
			european++
		}
		if usDecimalRe.MatchString(s) {
			american++
		}
		if euroGroupRe.MatchString(s) && strings.Contains(s, ",") {
			european++
		}
		if usGroupRe.MatchString(s) && strings.Contains(s, ".") {
			american++
		}
	}

	switch {
	case european > american:
		return DialectEuropean
	case american > european:
		return DialectAmerican
	default:
		return DialectUnknown
	}
}
