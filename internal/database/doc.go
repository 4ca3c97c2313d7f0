// Package database provides the embedded SQLite cache store for footprint.
//
// DB implements cache.Store on a single file under the user's cache
// directory. It is used when no Redis server is configured or reachable, so
// the CLI keeps its read-through cache between runs without any service
// running. It stores:
//   - key/value entries with an optional expiry (serialized reports)
//   - string sets with an optional expiry (the user agent pool)
//
// The driver is modernc.org/sqlite, which needs no cgo.
package database
