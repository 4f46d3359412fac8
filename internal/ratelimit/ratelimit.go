// Package ratelimit holds the counter stores behind request throttling.
// Stores are keyed by a composed identity (for example route + user) and
// are swappable: in-memory for a single process, Redis when shared.
package ratelimit

import (
	"context"
	"strings"
)

type Store interface {
	// Allow records one hit for key and reports whether it is within the
	// limit.
	Allow(ctx context.Context, key string) (bool, error)
}

// Key joins identity parts with ':' and skips empty parts.
func Key(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ":")
}
