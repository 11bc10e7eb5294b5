// Package catalog loads the read-only price lists (sponsoring products,
// sports registrations) used to price catalog-backed invoice lines.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCatalog  = errors.New("catalog has no entries")
	ErrDuplicateName = errors.New("duplicate catalog display name")
	ErrNegativePrice = errors.New("catalog price must not be negative")
	ErrEmptyName     = errors.New("catalog display name is empty")
)

// Entry is one priced product or service
type Entry struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"price"`
}

// Catalog is an immutable, ordered price list. Lookups are by display name.
type Catalog struct {
	entries []Entry
	byName  map[string]int
}

type fileEntry struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Load reads a JSON catalog of the form {"<key>": {"name": ..., "price": ...}}
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog JSON. Entries are ordered by numeric key, then by key.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{ID: k, DisplayName: raw[k].Name, UnitPrice: raw[k].Price})
	}
	return New(entries)
}

// New validates entries and builds a catalog preserving their order
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		entries: make([]Entry, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	copy(c.entries, entries)

	for i, e := range c.entries {
		name := strings.TrimSpace(e.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("%w (id %s)", ErrEmptyName, e.ID)
		}
		if e.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: %s costs %s", ErrNegativePrice, name, e.UnitPrice)
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		c.entries[i].DisplayName = name
		c.byName[name] = i
	}

	return c, nil
}

// Lookup returns the entry with the given display name
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns a copy of the entries in catalog order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns the display names in catalog order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.DisplayName
	}
	return names
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.entries)
}

func keyLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}
