package tables

import (
	"regexp"
	"strings"
)

// Patterns holds the compiled expressions used to recognise table lines.
// Build it once with NewPatterns and share it between parsers.
type Patterns struct {
	OldRegion       *regexp.Regexp
	OldMunicipality *regexp.Regexp
	NewHeader       *regexp.Regexp
	Quarterly       *regexp.Regexp
	Yearly          *regexp.Regexp
}

// Building blocks of the table grammar. Names are upper-case Cyrillic words
// joined by spaces or hyphens; figures are separated by '|' or '!'.
const (
	capLetter   = `\p{Lu}`
	lowLetter   = `\p{Ll}`
	separator   = `[|!]\s*`
	namePart    = `[\s|-]*` + capLetter + `*`
	oldNamePart = `[.\s|-]` + capLetter + `*`
	typeAbbr    = capLetter + `{1,2}\.`
	word        = lowLetter + `+`
	numberGroup = separator + `(\d+)\s*`
)

var (
	name    = capLetter + `+` + strings.Repeat(namePart, 3)
	oldName = capLetter + `+(?:` + oldNamePart + `){0,3}`
)

// NewPatterns compiles the table grammar.
func NewPatterns() *Patterns {
	settlement := `(` + typeAbbr + name + `)\s*`
	return &Patterns{
		OldRegion:       regexp.MustCompile(`ОБЛАСТ:(` + oldName + `)`),
		OldMunicipality: regexp.MustCompile(`ОБЩИНА:(` + oldName + `)`),
		NewHeader:       regexp.MustCompile(word + ` (` + name + `) ` + word + ` (` + name + `)`),
		Quarterly:       regexp.MustCompile(settlement + strings.Repeat(numberGroup, 3)),
		Yearly:          regexp.MustCompile(settlement + strings.Repeat(numberGroup, 6)),
	}
}
