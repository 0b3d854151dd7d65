// Package geo holds the catalog of known places rides can start and end at.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

// KmPerUnit converts catalog grid units to kilometres.
const KmPerUnit = 0.05

// ErrUnknownLocation is returned when a place name is not in the catalog.
var ErrUnknownLocation = errors.New("unknown location")

// Place is a named point on the catalog grid.
type Place struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Catalog resolves place names to grid coordinates. Lookups ignore case and
// surrounding whitespace. A Catalog is immutable and safe for concurrent use.
type Catalog struct {
	places map[string]Place
	sorted []Place
}

// NewCatalog builds a catalog; later duplicates replace earlier ones.
func NewCatalog(places []Place) *Catalog {
	c := &Catalog{places: make(map[string]Place, len(places))}
	for _, p := range places {
		c.places[key(p.Name)] = p
	}
	for _, p := range c.places {
		c.sorted = append(c.sorted, p)
	}
	sort.Slice(c.sorted, func(i, j int) bool { return c.sorted[i].Name < c.sorted[j].Name })
	return c
}

// LoadCatalog reads a JSON array of places from path.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations file: %w", err)
	}
	var places []Place
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, fmt.Errorf("failed to parse locations file: %w", err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("locations file %s has no places", path)
	}
	return NewCatalog(places), nil
}

// Lookup returns the place registered under name.
func (c *Catalog) Lookup(name string) (Place, bool) {
	p, ok := c.places[key(name)]
	return p, ok
}

// Distance returns the straight-line distance in kilometres between two
// places, rounded to one decimal.
func (c *Catalog) Distance(origin, destination string) (float64, error) {
	from, ok := c.Lookup(origin)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLocation, origin)
	}
	to, ok := c.Lookup(destination)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLocation, destination)
	}
	units := math.Hypot(to.X-from.X, to.Y-from.Y)
	return math.Round(units*KmPerUnit*10) / 10, nil
}

// Suggest returns up to limit places whose name contains text, ignoring case.
// An empty text matches every place.
func (c *Catalog) Suggest(text string, limit int) []Place {
	needle := key(text)
	out := make([]Place, 0)
	for _, p := range c.sorted {
		if limit > 0 && len(out) == limit {
			break
		}
		if strings.Contains(key(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Len reports how many places the catalog holds.
func (c *Catalog) Len() int { return len(c.sorted) }

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
