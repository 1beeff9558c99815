package tables

import (
	"fmt"
	"strings"

	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
	"github.com/db-afk/GRAO-tables-processing/pkg/names"
)

// State is the position of the parser in the header grammar.
type State int

const (
	// SeekingHeader waits for an old-format region line.
	SeekingHeader State = iota
	// SeekingMunicipality holds a region and waits for its municipality line.
	SeekingMunicipality
	// Scanning is used for new-format tables, whose headers fit on one line.
	Scanning
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case SeekingHeader:
		return "seeking_header"
	case SeekingMunicipality:
		return "seeking_municipality"
	case Scanning:
		return "scanning"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Parser extracts headers and settlement rows from table lines.
type Parser struct {
	patterns *Patterns
	layout   layout.Layout

	state  State
	region string
}

// NewParser returns a parser for tables of the given layout.
func NewParser(patterns *Patterns, l layout.Layout) (*Parser, error) {
	if patterns == nil {
		return nil, errors.NewValidationError("patterns", nil, "patterns are required")
	}
	switch l.Header {
	case layout.HeaderOld, layout.HeaderNew:
	default:
		return nil, errors.NewValidationError("header", l.Header, "unknown header format")
	}
	switch l.Period {
	case layout.Quarterly, layout.Yearly:
	default:
		return nil, errors.NewValidationError("period", l.Period, "unknown period type")
	}
	p := &Parser{patterns: patterns, layout: l}
	p.Reset()
	return p, nil
}

// Reset returns the parser to its initial state.
func (p *Parser) Reset() {
	p.region = ""
	switch p.layout.Header {
	case layout.HeaderOld:
		p.state = SeekingHeader
	case layout.HeaderNew:
		p.state = Scanning
	}
}

// State reports the current state.
func (p *Parser) State() State {
	return p.state
}

// Parse runs the parser over all lines of a document. Lines that match
// neither a header nor a settlement row are skipped.
func (p *Parser) Parse(lines []string) ParsedDocument {
	p.Reset()
	var doc ParsedDocument
	for pos, line := range lines {
		header, consumed := p.header(line, pos)
		if header != nil {
			doc.Headers = append(doc.Headers, *header)
		}
		if consumed {
			continue
		}
		if row, ok := p.row(line, pos); ok {
			doc.Rows = append(doc.Rows, row)
		}
	}
	return doc
}

// header advances the header state machine by one line. It reports whether
// the line was used as (part of) a header.
func (p *Parser) header(line string, pos int) (*RegionHeader, bool) {
	switch p.layout.Header {
	case layout.HeaderNew:
		m := p.patterns.NewHeader.FindStringSubmatch(line)
		if m == nil {
			return nil, false
		}
		return &RegionHeader{
			Region:       strings.TrimSpace(m[1]),
			Municipality: strings.TrimSpace(m[2]),
			Position:     pos,
		}, true
	case layout.HeaderOld:
		return p.oldHeader(line, pos)
	default:
		return nil, false
	}
}

func (p *Parser) oldHeader(line string, pos int) (*RegionHeader, bool) {
	municipality := p.patterns.OldMunicipality.FindStringSubmatch(line)
	regionText := line
	if loc := p.patterns.OldMunicipality.FindStringIndex(line); loc != nil {
		regionText = line[:loc[0]]
	}
	region := p.patterns.OldRegion.FindStringSubmatch(regionText)

	switch p.state {
	case SeekingHeader:
		if region == nil {
			return nil, false
		}
		if municipality != nil {
			return p.emit(region[1], municipality[1], pos), true
		}
		p.region = region[1]
		p.state = SeekingMunicipality
		return nil, true

	case SeekingMunicipality:
		switch {
		case municipality != nil:
			return p.emit(p.region, municipality[1], pos), true
		case strings.TrimSpace(line) == "":
			return nil, true
		case region != nil:
			p.region = region[1]
			return nil, true
		default:
			p.region = ""
			p.state = SeekingHeader
			return nil, false
		}

	default:
		return nil, false
	}
}

func (p *Parser) emit(region, municipality string, pos int) *RegionHeader {
	p.region = ""
	p.state = SeekingHeader
	return &RegionHeader{
		Region:       names.Normalize(strings.TrimSpace(region)),
		Municipality: names.Normalize(strings.TrimSpace(municipality)),
		Position:     pos,
	}
}

// row matches a settlement line. Quarterly tables carry the permanent and
// current counts in the first two figures; yearly tables in the second and
// sixth.
func (p *Parser) row(line string, pos int) (SettlementRecord, bool) {
	var m []string
	var permanent, current int
	switch p.layout.Period {
	case layout.Quarterly:
		m = p.patterns.Quarterly.FindStringSubmatch(line)
		permanent, current = 2, 3
	case layout.Yearly:
		m = p.patterns.Yearly.FindStringSubmatch(line)
		permanent, current = 3, 7
	}
	if m == nil {
		return SettlementRecord{}, false
	}
	return SettlementRecord{
		Name:      settlementName(m[1]),
		Permanent: m[permanent],
		Current:   m[current],
		Position:  pos,
	}, true
}

// settlementName rebuilds "ТП.ПЕТРОВО " as "ТП. ПЕТРОВО".
func settlementName(raw string) string {
	abbr, rest, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok {
		return names.Normalize(strings.TrimSpace(raw))
	}
	return abbr + ". " + names.Normalize(strings.TrimSpace(rest))
}
