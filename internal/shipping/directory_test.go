package shipping

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCarrier struct {
	mu        sync.Mutex
	cityCalls int
	whCalls   int
	fail      bool
	lastQuery string
}

func (f *fakeCarrier) Cities(_ context.Context, q string) ([]City, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cityCalls++
	f.lastQuery = q
	if f.fail {
		return nil, errors.New("upstream down")
	}
	return []City{{Ref: "ref-" + q, Description: q}}, nil
}

func (f *fakeCarrier) Warehouses(_ context.Context, ref string) ([]Warehouse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whCalls++
	if f.fail {
		return nil, errors.New("upstream down")
	}
	return []Warehouse{{Ref: "wh-1", Description: "Відділення №1", Number: "1"}}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time      { return c.t }
func (c *clock) add(d time.Duration) { c.t = c.t.Add(d) }

func TestCitiesCachedByNormalisedQuery(t *testing.T) {
	fc := &fakeCarrier{}
	clk := &clock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	d := NewDirectoryWithClock(fc, clk.now)
	ctx := context.Background()

	first := d.Cities(ctx, " Київ ")
	assert.Len(t, first, 1)
	assert.Equal(t, "Київ", fc.lastQuery)

	d.Cities(ctx, "київ")
	d.Cities(ctx, "КИЇВ")
	assert.Equal(t, 1, fc.cityCalls)

	clk.add(citiesTTL + time.Second)
	d.Cities(ctx, "київ")
	assert.Equal(t, 2, fc.cityCalls)
}

func TestShortQueriesSkipUpstream(t *testing.T) {
	fc := &fakeCarrier{}
	d := NewDirectory(fc)

	assert.Empty(t, d.Cities(context.Background(), "К"))
	assert.NotNil(t, d.Cities(context.Background(), " "))
	assert.Empty(t, d.Warehouses(context.Background(), "  "))
	assert.Zero(t, fc.cityCalls)
	assert.Zero(t, fc.whCalls)
}

func TestStaleValueServedOnFailure(t *testing.T) {
	fc := &fakeCarrier{}
	clk := &clock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	d := NewDirectoryWithClock(fc, clk.now)
	ctx := context.Background()

	assert.Len(t, d.Warehouses(ctx, "city-1"), 1)
	clk.add(warehousesTTL - time.Second)
	d.Warehouses(ctx, "city-1")
	assert.Equal(t, 1, fc.whCalls)

	clk.add(2 * time.Second)
	fc.fail = true
	got := d.Warehouses(ctx, "city-1")
	assert.Equal(t, 2, fc.whCalls)
	assert.Equal(t, "wh-1", got[0].Ref)

	empty := d.Warehouses(ctx, "city-2")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Empty(t, d.Cities(ctx, "Львів"))
}
