// Package cache provides the generic write-through cache behind the image
// renderer's atlas lookups.
//
// # Cache[K, V]
//
// A map-backed cache without an eviction policy: entries stay until they are
// deleted explicitly, by predicate, or by Clear. Removal callbacks let the
// owner release resources tied to a value (atlas slices, textures).
//
//	c := cache.New[key, handle]()
//	h, created, err := c.GetOrCreate(k, upload)
//	c.Clear(func(_ key, h handle) { release(h) })
//
// # Thread Safety
//
// Cache is not safe for concurrent use. It lives on the render loop together
// with the image pool it indexes.
package cache
