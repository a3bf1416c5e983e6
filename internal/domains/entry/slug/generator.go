// Package slug derives the public unique_name of an entry and resolves
// collisions against the names already stored.
package slug

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"kindled-backend/internal/shared/utils"
)

// Policy selects how the base slug is derived
type Policy string

const (
	// PolicyWordPair joins two random vocabulary words: "grace-river"
	PolicyWordPair Policy = "word_pair"
	// PolicyTitle slugifies the entry title: "Morning Prayer" → "morning-prayer"
	PolicyTitle Policy = "title"
)

// IsValid reports whether p is a known policy
func (p Policy) IsValid() bool {
	return p == PolicyWordPair || p == PolicyTitle
}

// MinMaxLength is the smallest accepted length bound; shorter bounds
// cannot fit a word plus a numeric suffix.
const MinMaxLength = 8

// ErrNoFreeName is returned when every suffix that fits the length bound is taken
var ErrNoFreeName = errors.New("no free unique name within the length bound")

// NameLookup returns every stored unique_name matching the
// case-insensitive regular expression pattern.
type NameLookup func(ctx context.Context, pattern string) ([]string, error)

// Generator produces unique, URL-safe names for new entries
type Generator struct {
	policy    Policy
	maxLength int
	words     []string
	intn      func(n int) int
}

// Option customizes a Generator
type Option func(*Generator)

// WithWords replaces the word-pair vocabulary
func WithWords(words []string) Option {
	return func(g *Generator) {
		if len(words) > 0 {
			g.words = words
		}
	}
}

// WithIntn replaces the uniform random source, intn(n) must return [0, n)
func WithIntn(intn func(n int) int) Option {
	return func(g *Generator) {
		if intn != nil {
			g.intn = intn
		}
	}
}

// NewGenerator creates a generator. Unknown policies fall back to
// word-pair; maxLength is raised to MinMaxLength when smaller.
func NewGenerator(policy Policy, maxLength int, opts ...Option) *Generator {
	if !policy.IsValid() {
		policy = PolicyWordPair
	}
	if maxLength < MinMaxLength {
		maxLength = MinMaxLength
	}
	g := &Generator{
		policy:    policy,
		maxLength: maxLength,
		words:     DefaultWords,
		intn:      rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MaxLength returns the configured length bound
func (g *Generator) MaxLength() int {
	return g.maxLength
}

// Generate derives a base slug for title and returns the first name not
// present in the snapshot returned by lookup. The snapshot and the later
// insert are separate operations; callers rely on the store's unique
// index to catch a concurrent winner.
func (g *Generator) Generate(ctx context.Context, lookup NameLookup, title string) (string, error) {
	return g.Resolve(ctx, lookup, g.Base(title))
}

// Base derives the collision-free-looking base slug
func (g *Generator) Base(title string) string {
	var base string
	if g.policy == PolicyTitle {
		base = utils.TruncateSlug(utils.GenerateSlug(title), g.maxLength)
	}
	if base == "" {
		base = utils.TruncateSlug(g.wordPair(), g.maxLength)
	}
	return base
}

func (g *Generator) wordPair() string {
	first := g.words[g.intn(len(g.words))]
	second := g.words[g.intn(len(g.words))]
	return first + "-" + second
}

// Resolve appends the smallest free "-N" suffix to base when base is taken.
// Comparison is case-insensitive. When base+suffix would exceed the length
// bound, base is cut (dropping a trailing hyphen) and the shorter stem's
// own matches are loaded before the candidate is checked.
func (g *Generator) Resolve(ctx context.Context, lookup NameLookup, base string) (string, error) {
	base = strings.ToLower(base)

	taken := make(map[string]struct{})
	loaded := make(map[string]struct{})
	load := func(stem string) error {
		if _, ok := loaded[stem]; ok {
			return nil
		}
		loaded[stem] = struct{}{}

		names, err := lookup(ctx, CollisionPattern(stem))
		if err != nil {
			return fmt.Errorf("failed to load existing names for %q: %w", stem, err)
		}
		for _, name := range names {
			taken[strings.ToLower(name)] = struct{}{}
		}
		return nil
	}

	if err := load(base); err != nil {
		return "", err
	}
	if _, ok := taken[base]; !ok {
		return base, nil
	}

	for n := 1; ; n++ {
		suffix := "-" + strconv.Itoa(n)
		stem, ok := g.fitStem(base, len(suffix))
		if !ok {
			return "", ErrNoFreeName
		}
		if stem != base {
			if err := load(stem); err != nil {
				return "", err
			}
		}

		candidate := stem + suffix
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}

// fitStem cuts base so that base+suffix respects the length bound.
// It reports false once the suffix leaves no room for a one-character stem.
func (g *Generator) fitStem(base string, suffixLen int) (string, bool) {
	if len(base)+suffixLen <= g.maxLength {
		return base, true
	}
	keep := g.maxLength - suffixLen
	if keep < 1 {
		return "", false
	}
	stem := strings.TrimRight(base[:keep], "-")
	if stem == "" {
		stem = base[:1]
	}
	return stem, true
}

// CollisionPattern matches stem and stem-<digits>; apply case-insensitively
func CollisionPattern(stem string) string {
	return "^" + regexp.QuoteMeta(stem) + `(-\d+)?$`
}
