// Package sources loads the catalog of GRAO tables to process.
//
// A catalog is a file holding an ordered list of descriptors, usually the
// URLs of the published tables. JSON and YAML are both accepted:
//
//	[
//	  "https://www.grao.bg/tna/tadr2004.txt",
//	  "https://www.grao.bg/tna/t41nm-15-03-2020_2.txt"
//	]
//
// The catalog order is the processing order and the column order of the
// combined table.
package sources

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/layout"
)

// Catalog is an ordered list of table descriptors.
type Catalog struct {
	Path    string
	Entries []string
}

// Load reads the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingFileError("sources", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(path, data)
}

// Parse decodes catalog data. path is only used in errors.
func Parse(path string, data []byte) (*Catalog, error) {
	var entries []string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	c := &Catalog{Path: path, Entries: make([]string, 0, len(entries))}
	for i, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			return nil, errors.NewValidationError("sources", i, "empty descriptor in "+path)
		}
		c.Entries = append(c.Entries, e)
	}
	if len(c.Entries) == 0 {
		return nil, errors.NewValidationError("sources", path, "catalog lists no tables")
	}
	return c, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.Entries)
}

// Descriptors classifies every entry in catalog order.
func (c *Catalog) Descriptors() ([]layout.Descriptor, error) {
	return layout.ClassifyAll(c.Entries)
}
