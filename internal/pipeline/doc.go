// Package pipeline drives unattended photo imports.
//
// A watcher on the sources directory queues new images after their writes
// settle. A single drain loop pulls the queue one photo at a time: barcode
// lookup first, shelf identification as the fallback, then an auto-commit
// into the collection. Every run is recorded as a job in SQLite and its
// state transitions are published on an event hub.
package pipeline
