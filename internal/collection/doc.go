// Package collection owns the persisted movie catalog.
//
// The collection lives in a single versioned JSON document that is cached in
// memory and rewritten atomically on every mutation, after copying the
// previous file into a timestamped backup directory with bounded retention.
// All writes pass through one coercion path: formats collapse onto a closed
// enum via keyword rules, upgrade targets outside the allowed set are
// ignored, and release dates must be a bare 4-digit year or empty.
//
// The Store serializes mutations internally; callers on the HTTP and
// pipeline paths share one instance per process.
package collection
