package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed diseases.yaml
var embedded []byte

// Record is the human-written description of one category.
type Record struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Symptoms    []string `yaml:"symptoms" json:"symptoms"`
	Treatment   []string `yaml:"treatment" json:"treatment"`
}

type file struct {
	Diseases map[string]Record `yaml:"diseases"`
}

// Catalog is a read-only lookup from category identifier to Record.
type Catalog struct {
	records map[string]Record
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Load reads a catalog file. An empty path selects the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog YAML. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for id, r := range f.Diseases {
		if r.Name == "" {
			return nil, fmt.Errorf("record %q has no name", id)
		}
	}
	if f.Diseases == nil {
		f.Diseases = map[string]Record{}
	}
	return &Catalog{records: f.Diseases}, nil
}

// Lookup finds the record for an exact category identifier. A miss is a
// normal outcome: the classifier may know categories the catalog does not.
func (c *Catalog) Lookup(id string) (Record, bool) {
	r, ok := c.records[id]
	if !ok {
		return Record{}, false
	}
	r.Symptoms = append([]string(nil), r.Symptoms...)
	r.Treatment = append([]string(nil), r.Treatment...)
	return r, true
}

// IDs lists category identifiers in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Catalog) Len() int { return len(c.records) }
