// Package ekatte resolves settlement names to EKATTE codes using the name
// history published by the NSI settlement register.
//
// A lookup sends the settlement name to the register and reads back every
// code whose history contains that name, together with the administrative
// path (region, municipality, settlement) and validity range of each
// historical name. The candidate whose path matches the key and whose name
// was valid most recently wins.
package ekatte

import (
	"strings"
	"time"
)

// Code is an EKATTE settlement code.
type Code string

// Key identifies a settlement as printed in a GRAO table: normalized region,
// municipality and settlement name without its type abbreviation.
type Key struct {
	Region       string `yaml:"region" json:"region"`
	Municipality string `yaml:"municipality" json:"municipality"`
	Settlement   string `yaml:"settlement" json:"settlement"`
}

// String joins the key parts with '/'.
func (k Key) String() string {
	return k.Region + "/" + k.Municipality + "/" + k.Settlement
}

// Less orders keys by region, municipality and settlement.
func (k Key) Less(o Key) bool {
	if k.Region != o.Region {
		return k.Region < o.Region
	}
	if k.Municipality != o.Municipality {
		return k.Municipality < o.Municipality
	}
	return k.Settlement < o.Settlement
}

// NameRecord is one historical name of a settlement. Parts run from the
// outermost unit to the settlement itself.
type NameRecord struct {
	Parts []string
	Start time.Time
	End   time.Time
}

// Open reports whether the name is still in use.
func (r NameRecord) Open() bool {
	return r.End.Equal(OpenEnd)
}

// Candidate is a code returned by the register with its name history.
type Candidate struct {
	Code  Code
	Names []NameRecord
}

var (
	// Epoch is the earliest validity end taken into account.
	Epoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

	// OpenEnd stands for the end of a name that is still valid.
	OpenEnd = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// settlementTail strips the type abbreviation from a register name part:
// "с.Петрово" becomes "Петрово".
func settlementTail(part string) string {
	if i := strings.LastIndex(part, "."); i >= 0 {
		part = part[i+1:]
	}
	return strings.TrimSpace(part)
}
