// Package cache stores computed layouts and fetched documents between runs.
//
// A [Cache] is a byte store with per-entry TTLs. Backends:
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [MongoCache]: a MongoDB collection with an expiry field
//   - [NullCache]: stores nothing
//
// Keys are produced by a [Keyer] so that every backend sees the same
// namespaced, hashed keys. [Observed] wraps any backend and reports hits,
// misses and writes to the observability hooks.
package cache
