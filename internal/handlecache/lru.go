// Package handlecache bounds the number of open random-access streams a
// Reader may hold at once. Eviction is FIFO on the order streams were
// first opened, not on last access.
package handlecache

import "github.com/nicolapapp/bioformats/internal/stream"

// Capacity is the maximum number of concurrently open streams before the
// oldest is evicted.
const Capacity = 100

// Opener opens a path into a stream.Stream, typically stream.VFS.OpenRead.
type Opener func(path string) (stream.Stream, error)

// Cache is a bounded mapping path -> open stream with FIFO eviction.
// Not safe for concurrent use; neither is the owning Reader, whose
// callers serialise access to it.
type Cache struct {
	open    Opener
	streams map[string]stream.Stream
	order   map[uint64]string
	counter uint64
	oldest  uint64
}

// New constructs an empty Cache backed by the given Opener.
func New(open Opener) *Cache {
	return &Cache{
		open:    open,
		streams: make(map[string]stream.Stream),
		order:   make(map[uint64]string),
	}
}

// Get returns the open stream for path, opening (and possibly evicting
// the oldest entry) on a miss.
func (c *Cache) Get(path string) (stream.Stream, error) {
	if s, ok := c.streams[path]; ok {
		return s, nil
	}

	if len(c.streams) > Capacity-1 {
		c.evictOldest()
	}

	s, err := c.open(path)
	if err != nil {
		return nil, err
	}

	c.streams[path] = s
	c.order[c.counter] = path
	c.counter++

	return s, nil
}

// evictOldest closes and removes the entry with the smallest surviving
// insertion counter.
func (c *Cache) evictOldest() {
	for {
		path, ok := c.order[c.oldest]
		delete(c.order, c.oldest)
		c.oldest++
		if !ok {
			continue
		}
		if closer, ok := c.streams[path].(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		delete(c.streams, path)
		return
	}
}

// Len reports the number of currently open streams.
func (c *Cache) Len() int {
	return len(c.streams)
}

// CloseAll closes every open stream. Called when the owning Reader is
// closed.
func (c *Cache) CloseAll() {
	for path, s := range c.streams {
		if closer, ok := s.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		delete(c.streams, path)
	}
	c.order = make(map[uint64]string)
}
