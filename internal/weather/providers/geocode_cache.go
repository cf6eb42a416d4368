package providers

import (
	"container/list"
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/i474232898/wildfire-risk/internal/weather"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
// Only successful lookups are cached.
type CachedGeocoder struct {
	inner      weather.Geocoder
	maxEntries int
	onLookup   func(hit bool)

	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key string
	loc weather.Location
}

func NewCachedGeocoder(inner weather.Geocoder, maxEntries int) *CachedGeocoder {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &CachedGeocoder{
		inner:      inner,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// OnLookup registers a hook invoked with the hit/miss outcome of each lookup.
func (c *CachedGeocoder) OnLookup(fn func(hit bool)) *CachedGeocoder {
	c.onLookup = fn
	return c
}

func (c *CachedGeocoder) Geocode(ctx context.Context, query string) (weather.Location, error) {
	key := "fwd:" + weather.NormalizeName(query)
	if loc, ok := c.get(key); ok {
		c.record(true)
		return loc, nil
	}
	c.record(false)

	loc, err := c.inner.Geocode(ctx, query)
	if err != nil {
		return loc, err
	}
	c.put(key, loc)
	return loc, nil
}

func (c *CachedGeocoder) record(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}

func (c *CachedGeocoder) get(key string) (weather.Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return weather.Location{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).loc, true
}

func (c *CachedGeocoder) put(key string, loc weather.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).loc = loc
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, loc: loc})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// GeocoderChain tries each geocoder in turn. A not-found answer moves on to
// the next one; the last error is returned when all fail.
type GeocoderChain []weather.Geocoder

func (gc GeocoderChain) Geocode(ctx context.Context, query string) (weather.Location, error) {
	err := error(weather.ErrLocationNotFound)
	for _, g := range gc {
		var loc weather.Location
		loc, err = g.Geocode(ctx, query)
		if err == nil {
			return loc, nil
		}
		if ctx.Err() != nil {
			return weather.Location{}, ctx.Err()
		}
		if !errors.Is(err, weather.ErrLocationNotFound) {
			log.Warn().Err(err).Str("query", query).Msg("geocoder failed; trying next")
		}
	}
	return weather.Location{}, err
}
