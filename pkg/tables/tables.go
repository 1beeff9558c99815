// Package tables turns the text lines of a GRAO population table into region
// headers and settlement rows and joins the two by line position.
package tables

// RegionHeader is a region/municipality heading found at Position.
type RegionHeader struct {
	Region       string
	Municipality string
	Position     int
}

// SettlementRecord is one settlement row found at Position. Name has the form
// "<abbreviation>. <name>"; the counts are the raw digit text of the table.
type SettlementRecord struct {
	Name      string
	Permanent string
	Current   string
	Position  int
}

// ParsedDocument holds the headers and rows of a table, each ordered by
// position.
type ParsedDocument struct {
	Headers []RegionHeader
	Rows    []SettlementRecord
}

// FullRecord is a settlement row resolved against its header.
type FullRecord struct {
	Region       string
	Municipality string
	Settlement   string
	Permanent    string
	Current      string
}
