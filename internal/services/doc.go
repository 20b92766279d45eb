// Package services holds the shared error taxonomy for external
// collaborators (Claude vision, UPCitemdb, TMDB, ntfy) plus the client
// subpackages that talk to them.
//
// Callers classify failures with errors.Is against the exported sentinels:
// a missing API key surfaces as ErrNotConfigured so the UI can prompt for
// setup, while network or upstream faults surface as ErrTransient and are
// simply reported.
package services
