package ekatte

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
)

// historyTableFromEnd locates the history table counting from the last
// table of the page.
const historyTableFromEnd = 4

// headerRows are the caption rows at the top of the history table.
const headerRows = 2

const dateLayout = "02.01.2006"

// ParseHistory reads the name history table of a register search page. Rows
// alternate between a two-cell code row and three-cell name rows holding the
// comma-separated administrative path, an empty cell and the validity range.
// Names that ended before Epoch or lack a full path are dropped.
func ParseHistory(r io.Reader) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.WrapParse("html", "", err)
	}

	tables := doc.Find("table")
	if tables.Length() < historyTableFromEnd {
		return nil, errors.NewParseError("html", "",
			fmt.Sprintf("expected at least %d tables, found %d", historyTableFromEnd, tables.Length()), nil)
	}
	table := tables.Eq(tables.Length() - historyTableFromEnd)

	var (
		out     []Candidate
		current = -1
		perr    error
	)
	rows := table.Find("tr")
	if rows.Length() <= headerRows {
		return nil, nil
	}
	rows.Slice(headerRows, goquery.ToEnd).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		switch cells.Length() {
		case 2:
			out = append(out, Candidate{Code: Code(strings.TrimSpace(cells.Eq(0).Text()))})
			current = len(out) - 1
		case 3:
			start, end, err := parseRange(cells.Eq(2).Text())
			if err != nil {
				perr = err
				return false
			}
			parts := nameParts(cells.Eq(0).Text())
			if current < 0 || !end.After(Epoch) || len(parts) < 3 {
				return true
			}
			out[current].Names = append(out[current].Names, NameRecord{Parts: parts, Start: start, End: end})
		}
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return out, nil
}

// parseRange parses "dd.mm.yyyy - dd.mm.yyyy"; an empty end is open.
func parseRange(text string) (time.Time, time.Time, error) {
	from, to, ok := strings.Cut(text, "-")
	if !ok {
		return time.Time{}, time.Time{}, errors.NewParseError("date", "", fmt.Sprintf("no range in %q", text), nil)
	}
	start, err := time.Parse(dateLayout, strings.TrimSpace(from))
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewParseError("date", "", fmt.Sprintf("bad start in %q", text), err)
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return start, OpenEnd, nil
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewParseError("date", "", fmt.Sprintf("bad end in %q", text), err)
	}
	return start, end, nil
}

// nameParts splits "с.Петрово, общ.Аврен, обл.Варна" into
// ["обл.Варна", "общ.Аврен", "с.Петрово"].
func nameParts(text string) []string {
	raw := strings.Split(text, ",")
	parts := make([]string, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		parts = append(parts, strings.TrimSpace(raw[i]))
	}
	return parts
}
