package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultTemplatePattern names one template per item count
const DefaultTemplatePattern = "InvoiceModel_CH95_DefaultProducts_%d.docx"

// MaxTemplateItems is the largest item count a template exists for
const MaxTemplateItems = 5

// TemplateSet resolves and caches the template for an item count
type TemplateSet struct {
	dir     string
	pattern string

	mu    sync.Mutex
	cache map[int]*Document
}

// NewTemplateSet creates a template set rooted at dir. An empty pattern uses DefaultTemplatePattern.
func NewTemplateSet(dir, pattern string) *TemplateSet {
	if pattern == "" {
		pattern = DefaultTemplatePattern
	}
	return &TemplateSet{dir: dir, pattern: pattern, cache: make(map[int]*Document)}
}

// Select returns the template path for itemCount (1..5)
func (s *TemplateSet) Select(itemCount int) (string, error) {
	if itemCount < 1 || itemCount > MaxTemplateItems {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedItemCount, itemCount)
	}
	return filepath.Join(s.dir, fmt.Sprintf(s.pattern, itemCount)), nil
}

// Load opens the template for itemCount, reading it from disk only once
func (s *TemplateSet) Load(itemCount int) (*Document, error) {
	path, err := s.Select(itemCount)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.cache[itemCount]; ok {
		return doc, nil
	}
	doc, err := Open(path)
	if err != nil {
		return nil, err
	}
	s.cache[itemCount] = doc
	return doc, nil
}

// Check reports every missing template file
func (s *TemplateSet) Check() error {
	var missing []string
	for n := 1; n <= MaxTemplateItems; n++ {
		path, _ := s.Select(n)
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, filepath.Base(path))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w in %s: %v", ErrTemplateNotFound, s.dir, missing)
	}
	return nil
}
