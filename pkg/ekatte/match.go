package ekatte

import (
	"strings"
	"time"
)

// regionAliases lists regions the register names differently from GRAO.
// When the key's region is one of these, a candidate region containing the
// alias is accepted as well.
var regionAliases = map[string]string{
	"софийска":  "софия",
	"смолян":    "пловдивска",
	"пазарджик": "пазарджишки",
}

// Match picks the code of the candidate matching key. A name matches when
// the key's region and municipality are substrings of the first two parts
// and the settlement equals the third part without its type abbreviation,
// all compared case-insensitively. Of several matches the one whose name
// stayed valid the longest wins, ties going to the greater code.
func Match(key Key, candidates []Candidate) (Code, bool) {
	region := strings.ToLower(key.Region)
	municipality := strings.ToLower(key.Municipality)
	settlement := strings.ToLower(key.Settlement)
	alias, hasAlias := regionAliases[region]

	var (
		best    Code
		bestEnd time.Time
		found   bool
	)
	for _, c := range candidates {
		for _, n := range c.Names {
			if len(n.Parts) < 3 {
				continue
			}
			p0 := strings.ToLower(n.Parts[0])
			regionOK := strings.Contains(p0, region) || (hasAlias && strings.Contains(p0, alias))
			if !regionOK ||
				!strings.Contains(strings.ToLower(n.Parts[1]), municipality) ||
				strings.ToLower(settlementTail(n.Parts[2])) != settlement {
				continue
			}
			if !found || n.End.After(bestEnd) || (n.End.Equal(bestEnd) && c.Code > best) {
				best, bestEnd, found = c.Code, n.End, true
			}
		}
	}
	return best, found
}
