package shipping

import (
	"context"
	"strings"
	"time"

	applog "leder/internal/log"
)

const (
	citiesTTL     = 5 * time.Minute
	warehousesTTL = 10 * time.Minute
	minQueryLen   = 2
)

// Directory serves carrier lookups from a per-process cache. Upstream failures
// fall back to the last known answer for the key, or an empty list.
type Directory struct {
	carrier    Carrier
	cities     *staleCache[[]City]
	warehouses *staleCache[[]Warehouse]
}

func NewDirectory(c Carrier) *Directory { return NewDirectoryWithClock(c, time.Now) }

func NewDirectoryWithClock(c Carrier, now func() time.Time) *Directory {
	return &Directory{
		carrier:    c,
		cities:     newStaleCache[[]City](citiesTTL, now),
		warehouses: newStaleCache[[]Warehouse](warehousesTTL, now),
	}
}

func (d *Directory) Cities(ctx context.Context, query string) []City {
	key := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(key)) < minQueryLen {
		return []City{}
	}
	return lookup(d.cities, key, "shipping.cities", func() ([]City, error) {
		return d.carrier.Cities(ctx, strings.TrimSpace(query))
	})
}

func (d *Directory) Warehouses(ctx context.Context, cityRef string) []Warehouse {
	key := strings.TrimSpace(cityRef)
	if key == "" {
		return []Warehouse{}
	}
	return lookup(d.warehouses, key, "shipping.warehouses", func() ([]Warehouse, error) {
		return d.carrier.Warehouses(ctx, key)
	})
}

func lookup[T any](c *staleCache[[]T], key, action string, fetch func() ([]T, error)) []T {
	prev, have, fresh := c.get(key)
	if fresh {
		return prev
	}
	got, err := fetch()
	if err == nil {
		c.put(key, got)
		return got
	}
	applog.Warn(nil, action+".fallback", err, map[string]any{"key": key, "stale": have})
	if have {
		return prev
	}
	return []T{}
}
