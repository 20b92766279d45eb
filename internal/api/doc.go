// Package api serves the REST surface: collection CRUD, stats, exports,
// and the import endpoints (CSV, photo upload, review confirm, barcode,
// watcher status).
//
// Handlers map the service error taxonomy onto HTTP statuses. In
// production mode internal failure detail is scrubbed from responses;
// missing-configuration errors additionally carry a needsSetup flag so
// clients can point at the fix.
package api
