// Package catalog holds the reference list of valid part numbers used to
// validate and correct OCR reads. A Catalog is built once and is read-only
// afterwards, so one value can be shared by any number of resolvers.
package catalog

import (
	"slices"
	"strings"
)

// Catalog maps normalized part-number keys to their canonical full value.
// The key is the uppercased base, i.e. everything before an "*OPn" suffix.
type Catalog struct {
	full   map[string]string
	keys   []string
	source string
}

// New builds a catalog from canonical part-number strings. Blank entries are
// skipped and the first occurrence of a key wins.
func New(parts []string) *Catalog {
	c := &Catalog{full: make(map[string]string, len(parts))}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		k := Key(p)
		if k == "" {
			continue
		}
		if _, dup := c.full[k]; dup {
			continue
		}
		c.full[k] = p
		c.keys = append(c.keys, k)
	}
	slices.Sort(c.keys)
	return c
}

// Empty returns a catalog with no entries. Resolvers treat it as pass-through.
func Empty() *Catalog {
	return New(nil)
}

// Key normalizes a part number to its lookup key.
func Key(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '*'); i >= 0 {
		s = s[:i]
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// Len is the number of distinct keys.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Loaded reports whether the catalog can validate anything.
func (c *Catalog) Loaded() bool { return c.Len() > 0 }

// Source is the file the catalog was loaded from, if any.
func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Contains reports whether base (case-insensitive, suffix ignored) is known.
func (c *Catalog) Contains(base string) bool {
	_, ok := c.Full(base)
	return ok
}

// Full returns the canonical full value stored for base, suffix included.
func (c *Catalog) Full(base string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.full[Key(base)]
	return v, ok
}

// Canonical returns the catalog spelling of base without any suffix.
func (c *Catalog) Canonical(base string) (string, bool) {
	v, ok := c.Full(base)
	if !ok {
		return "", false
	}
	if i := strings.IndexByte(v, '*'); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v), true
}

// Keys returns the sorted lookup keys. The slice is a copy.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.keys)
}
