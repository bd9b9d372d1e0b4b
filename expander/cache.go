package expander

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"sort"
	"sync"
	"time"
)

// cacheEntry holds one memoized expansion result.
type cacheEntry struct {
	instances  []Instance
	expiresAt  time.Time
	accessedAt time.Time
}

// ExpansionCache memoizes expansion results. Keys are content hashes of the
// full input tuple, so any change to a template or exception automatically
// misses; stale entries only cost memory until TTL or cleanup removes them.
// The engine itself stays a pure function, the cache wraps around it.
type ExpansionCache struct {
	entries         map[string]*cacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// CacheConfig holds configuration for the expansion cache.
type CacheConfig struct {
	TTL             time.Duration // how long entries stay valid
	MaxEntries      int           // maximum entries before forced cleanup
	CleanupInterval time.Duration // how often expired entries are swept
}

// DefaultCacheConfig provides sensible defaults for expansion caching.
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewExpansionCache creates a cache and starts its cleanup goroutine.
// Call Close when done.
func NewExpansionCache(config CacheConfig) *ExpansionCache {
	cache := &ExpansionCache{
		entries:         make(map[string]*cacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// CacheKey hashes the full expansion input tuple. Identical inputs always map to
// the same key regardless of when they are hashed.
func CacheKey(templates []Template, exceptions []Exception, now time.Time, opts ExpansionOptions) string {
	hasher := sha256.New()

	writeTime(hasher, now)
	binary.Write(hasher, binary.LittleEndian, int64(opts.MaxOccurrences))
	binary.Write(hasher, binary.LittleEndian, int64(opts.Horizon))

	for _, tpl := range templates {
		hashTemplate(hasher, tpl)
	}
	for _, exc := range exceptions {
		hashException(hasher, exc)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

func hashTemplate(h hash.Hash, tpl Template) {
	writeString(h, tpl.ID)
	writeString(h, tpl.Title)
	writeTime(h, tpl.Start)
	writeTimePtr(h, tpl.End)
	writeBool(h, tpl.AllDay)
	writeString(h, string(tpl.Recurrence))
	writeTimePtr(h, tpl.RecurrenceEnd)
	writeString(h, tpl.TypeID)
	writeString(h, tpl.LocationID)
	writeString(h, tpl.Description)
	writeString(h, tpl.MeetingPoint)
	writeTimePtr(h, tpl.MeetingTime)
	writeString(h, string(tpl.Visibility.Type))
	for _, team := range tpl.Visibility.TeamIDs {
		writeString(h, team)
	}
}

func hashException(h hash.Hash, exc Exception) {
	writeString(h, exc.ID)
	writeString(h, exc.TemplateID)
	writeTime(h, exc.Date)
	writeString(h, string(exc.Status))
	writeTime(h, exc.CreatedAt)

	ov := exc.Overlay
	writeTimePtr(h, ov.Start.ToPointer())
	writeTimePtr(h, ov.End.ToPointer())
	writeStringPtr(h, ov.Title.ToPointer())
	writeStringPtr(h, ov.LocationID.ToPointer())
	writeStringPtr(h, ov.Description.ToPointer())
	writeStringPtr(h, ov.MeetingPoint.ToPointer())
	writeTimePtr(h, ov.MeetingTime.ToPointer())
	if allDay, ok := ov.AllDay.Get(); ok {
		writeBool(h, allDay)
	} else {
		writeString(h, "-")
	}
}

func writeString(h hash.Hash, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}

func writeStringPtr(h hash.Hash, s *string) {
	if s == nil {
		writeString(h, "-")
		return
	}
	writeString(h, *s)
}

func writeTime(h hash.Hash, t time.Time) {
	writeString(h, t.Format(time.RFC3339Nano))
}

func writeTimePtr(h hash.Hash, t *time.Time) {
	if t == nil {
		writeString(h, "-")
		return
	}
	writeTime(h, *t)
}

func writeBool(h hash.Hash, b bool) {
	if b {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
}

// Get retrieves a cached result if it exists and hasn't expired. The
// returned slice is shared; callers must treat it as read-only.
func (c *ExpansionCache) Get(key string) ([]Instance, bool) {
	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		c.mutex.Lock()
		delete(c.entries, key)
		c.mutex.Unlock()
		return nil, false
	}

	c.mutex.Lock()
	entry.accessedAt = now
	c.mutex.Unlock()

	return entry.instances, true
}

// Set stores an expansion result.
func (c *ExpansionCache) Set(key string, instances []Instance) {
	now := time.Now()
	entry := &cacheEntry{
		instances:  instances,
		expiresAt:  now.Add(c.ttl),
		accessedAt: now,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry

	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries and, when still over the limit, the least
// recently accessed ones. Caller must hold the write lock.
func (c *ExpansionCache) cleanup() {
	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) > c.maxEntries {
		type keyAccess struct {
			key        string
			accessedAt time.Time
		}

		keyAccessList := make([]keyAccess, 0, len(c.entries))
		for key, entry := range c.entries {
			keyAccessList = append(keyAccessList, keyAccess{key: key, accessedAt: entry.accessedAt})
		}
		sort.Slice(keyAccessList, func(i, j int) bool {
			return keyAccessList[i].accessedAt.Before(keyAccessList[j].accessedAt)
		})

		entriesToRemove := len(c.entries) - c.maxEntries
		for i := 0; i < entriesToRemove && i < len(keyAccessList); i++ {
			delete(c.entries, keyAccessList[i].key)
		}
	}
}

// cleanupLoop runs periodic cleanup until Close.
func (c *ExpansionCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache.
func (c *ExpansionCache) Close() {
	close(c.stopCleanup)
	c.mutex.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mutex.Unlock()
}

// Stats returns cache statistics.
func (c *ExpansionCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entryCount := len(c.entries)
	expiredCount := 0
	now := time.Now()

	for _, entry := range c.entries {
		if now.After(entry.expiresAt) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   entryCount,
		ExpiredEntries: expiredCount,
		ActiveEntries:  entryCount - expiredCount,
	}
}

// CacheStats provides information about cache usage.
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}
