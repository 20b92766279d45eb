// Package notifications pushes import outcomes to a phone through ntfy.
//
// The service is optional: without a configured topic every notify call is
// a no-op, so callers never branch on whether notifications are enabled.
package notifications
