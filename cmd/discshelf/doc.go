// Command discshelf is the CLI for the movie disc collection manager. It
// runs the daemon in the foreground, inspects the collection and import
// pipeline, and drives one-off CSV and photo imports.
package main
