package metadata

import (
	"sort"
	"sync"

	"github.com/openreal2sim/review-dashboard/api/v1alpha1"
)

// Undo restores the keys touched by one mutation to their previous state.
type Undo func()

// Cache is the local copy of the metadata document.
type Cache struct {
	mu      sync.RWMutex
	records map[string]v1alpha1.Reconstruction
	loaded  bool
}

func NewCache() *Cache {
	return &Cache{records: make(map[string]v1alpha1.Reconstruction)}
}

func (c *Cache) Get(name string) (v1alpha1.Reconstruction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, found := c.records[name]
	return rec, found
}

// All returns a copy of the cached records sorted by name.
func (c *Cache) All() v1alpha1.ReconstructionList {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make(v1alpha1.ReconstructionList, 0, len(c.records))
	for _, rec := range c.records {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Replace swaps the whole content for doc.
func (c *Cache) Replace(doc v1alpha1.MetadataDocument) {
	records := make(map[string]v1alpha1.Reconstruction, len(doc))
	for name, rec := range doc {
		rec.Name = name
		records[name] = rec
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	c.loaded = true
}

// Set replaces the record stored under rec.Name.
func (c *Cache) Set(rec v1alpha1.Reconstruction) Undo {
	return c.SetMany(v1alpha1.ReconstructionList{rec})
}

func (c *Cache) SetMany(recs v1alpha1.ReconstructionList) Undo {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		names = append(names, rec.Name)
	}
	undo := c.snapshot(names)

	for _, rec := range recs {
		c.records[rec.Name] = rec
	}
	return undo
}

func (c *Cache) Delete(name string) Undo {
	c.mu.Lock()
	defer c.mu.Unlock()

	undo := c.snapshot([]string{name})
	delete(c.records, name)
	return undo
}

// snapshot must be called with the lock held.
func (c *Cache) snapshot(names []string) Undo {
	type previous struct {
		rec   v1alpha1.Reconstruction
		found bool
	}

	saved := make(map[string]previous, len(names))
	for _, name := range names {
		if _, done := saved[name]; done {
			continue
		}
		rec, found := c.records[name]
		saved[name] = previous{rec: rec, found: found}
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for name, p := range saved {
			if p.found {
				c.records[name] = p.rec
			} else {
				delete(c.records, name)
			}
		}
	}
}
