// Package layout classifies GRAO source descriptors by header format and
// period type and derives the period label and reference date embedded in
// the descriptor.
package layout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
)

// HeaderFormat is the layout of region/municipality headers in a table.
type HeaderFormat int

const (
	// HeaderOld tables carry the region and the municipality on separate lines.
	HeaderOld HeaderFormat = iota + 1
	// HeaderNew tables carry both on one line.
	HeaderNew
)

// String returns the format name.
func (f HeaderFormat) String() string {
	switch f {
	case HeaderOld:
		return "old"
	case HeaderNew:
		return "new"
	default:
		return fmt.Sprintf("HeaderFormat(%d)", int(f))
	}
}

// PeriodType is the reporting period of a table.
type PeriodType int

const (
	// Quarterly tables report three numeric columns per settlement.
	Quarterly PeriodType = iota + 1
	// Yearly tables report six numeric columns per settlement.
	Yearly
)

// String returns the period type name.
func (p PeriodType) String() string {
	switch p {
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		return fmt.Sprintf("PeriodType(%d)", int(p))
	}
}

// Layout is the pair of tags that drives table parsing.
type Layout struct {
	Header HeaderFormat
	Period PeriodType
}

// Descriptor is a classified source identifier.
type Descriptor struct {
	Source string
	Layout Layout

	label string
	date  time.Time
}

// oldFormatLastYear is the last year published with the old header format.
const oldFormatLastYear = 2005

var (
	monthYearPattern = regexp.MustCompile(`(\d{2}-\d{4})`)
	yearPattern      = regexp.MustCompile(`(\d{4})`)
	fullDatePattern  = regexp.MustCompile(`(\d{2}-\d{2}-\d{4})`)
)

// Classify determines the layout of a descriptor. A month-year group marks a
// new-format quarterly table; a bare year marks a yearly table whose header
// format depends on the year.
func Classify(source string) (Descriptor, error) {
	d := Descriptor{Source: source}

	if m := monthYearPattern.FindStringSubmatch(source); m != nil {
		d.Layout = Layout{Header: HeaderNew, Period: Quarterly}
		d.label = strings.ReplaceAll(m[1], "-", "_")
	} else if m := yearPattern.FindStringSubmatch(source); m != nil {
		year, err := strconv.Atoi(m[1])
		if err != nil {
			return Descriptor{}, errors.NewClassificationError(source)
		}
		header := HeaderOld
		if year > oldFormatLastYear {
			header = HeaderNew
		}
		d.Layout = Layout{Header: header, Period: Yearly}
		d.label = m[1]
	} else {
		return Descriptor{}, errors.NewClassificationError(source)
	}

	date, err := referenceDate(source)
	if err != nil {
		return Descriptor{}, err
	}
	d.date = date
	return d, nil
}

// Label is the period label used in column and file names, e.g. "03_2020"
// or "2004".
func (d Descriptor) Label() string {
	return d.label
}

// Date is the reference date of the period: the full date in the descriptor
// when present, otherwise the last day of the month or year.
func (d Descriptor) Date() time.Time {
	return d.date
}

// PermanentColumn is the permanent-address column name of the period.
func (d Descriptor) PermanentColumn() string {
	return "permanent_" + d.label
}

// CurrentColumn is the current-address column name of the period.
func (d Descriptor) CurrentColumn() string {
	return "current_" + d.label
}

func referenceDate(source string) (time.Time, error) {
	if m := fullDatePattern.FindStringSubmatch(source); m != nil {
		t, err := time.Parse("02-01-2006", m[1])
		if err != nil {
			return time.Time{}, errors.NewParseError("date", "", fmt.Sprintf("descriptor %q", source), err)
		}
		return t, nil
	}
	if m := monthYearPattern.FindStringSubmatch(source); m != nil {
		t, err := time.Parse("01-2006", m[1])
		if err != nil {
			return time.Time{}, errors.NewParseError("date", "", fmt.Sprintf("descriptor %q", source), err)
		}
		return t.AddDate(0, 1, -1), nil
	}
	m := yearPattern.FindStringSubmatch(source)
	if m == nil {
		return time.Time{}, errors.NewClassificationError(source)
	}
	year, _ := strconv.Atoi(m[1])
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC), nil
}

// ClassifyAll classifies descriptors in order and rejects duplicate labels.
func ClassifyAll(sources []string) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(sources))
	seen := make(map[string]string, len(sources))
	for _, s := range sources {
		d, err := Classify(s)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[d.Label()]; ok {
			return nil, errors.NewValidationError("label", d.Label(),
				fmt.Sprintf("period %s appears in both %s and %s", d.Label(), prev, s))
		}
		seen[d.Label()] = s
		out = append(out, d)
	}
	return out, nil
}
