// Package cache provides a generic in-memory LRU cache with per-entry expiry.
package cache

// Cache is the read/write surface services depend on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Sweeper is implemented by caches whose expired entries can be dropped in
// bulk. CleanExpired returns how many entries were removed.
type Sweeper interface {
	CleanExpired() int
}

// Registry groups sweepable caches so a scheduler can clean them together.
type Registry struct {
	caches []Sweeper
}

// NewRegistry returns a registry holding caches.
func NewRegistry(caches ...Sweeper) *Registry {
	return &Registry{caches: caches}
}

// Register adds c to the registry.
func (r *Registry) Register(c Sweeper) {
	r.caches = append(r.caches, c)
}

// Sweep cleans every registered cache and returns the total removed.
func (r *Registry) Sweep() int {
	total := 0
	for _, c := range r.caches {
		total += c.CleanExpired()
	}
	return total
}
