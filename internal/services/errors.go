package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured marks operations that need an API key or other
	// setup before they can run.
	ErrNotConfigured = errors.New("not configured")
	// ErrValidation marks failures caused by bad input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups that completed but matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks network and upstream faults worth retrying.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes service context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, service, operation, message string, err error) error {
	detail := buildDetail(service, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// NeedsSetup reports whether err indicates missing configuration rather
// than an operational failure.
func NeedsSetup(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

func buildDetail(service, operation, message string) string {
	parts := make([]string, 0, 3)
	if service = strings.TrimSpace(service); service != "" {
		parts = append(parts, service)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
