// Package moderation provides content-safety checks run before user text
// is persisted.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Providers
const (
	ProviderStream    = "stream"
	ProviderBlocklist = "blocklist"
)

var (
	// ErrNotConfigured is returned by every check of a gate missing its credentials
	ErrNotConfigured = errors.New("moderation provider not configured")
)

// Verdict is the outcome of a single check
type Verdict struct {
	Blocked bool
	// Action as reported by the provider (e.g. "block", "keep")
	Action string
}

// Gate checks text before it is stored. Implementations return an error
// when the outcome is unknown; callers must treat that as a failure,
// never as an allow.
type Gate interface {
	Check(ctx context.Context, text string) (Verdict, error)
}

// Config selects and configures a gate
type Config struct {
	Provider  string
	Stream    StreamConfig
	Blocklist []string
}

// NewGate builds the gate named by cfg.Provider
func NewGate(cfg Config) (Gate, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderStream:
		return NewStreamGate(cfg.Stream), nil
	case ProviderBlocklist:
		return NewBlocklistGate(cfg.Blocklist), nil
	default:
		return nil, fmt.Errorf("unknown moderation provider %q", cfg.Provider)
	}
}
