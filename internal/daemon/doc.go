// Package daemon wires the collection store, import pipeline, and HTTP API
// into a single long-running process. A file lock enforces one instance per
// data directory.
package daemon
