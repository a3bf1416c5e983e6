package repository

import (
	"context"
	"encoding/binary"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kindled-backend/internal/domains/entry/model"
)

// =====================================================
// IN-MEMORY STORE (development and tests)
// =====================================================

// memoryStore keeps entries in process memory. IDs are ObjectIDs so that
// creation times are derived exactly like the Mongo store does.
type memoryStore struct {
	mu      sync.RWMutex
	entries []*model.Entry // insertion order == ID order
	now     func() time.Time
}

// MemoryOption customizes the in-memory store
type MemoryOption func(*memoryStore)

// WithClock sets the clock used to stamp new IDs
func WithClock(now func() time.Time) MemoryOption {
	return func(s *memoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) DocumentStore {
	s := &memoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *memoryStore) Insert(ctx context.Context, entry *model.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if strings.EqualFold(e.UniqueName, entry.UniqueName) {
			return "", model.ErrDuplicateUniqueName
		}
	}

	oid := primitive.NewObjectID()
	binary.BigEndian.PutUint32(oid[0:4], uint32(s.now().Unix()))

	stored := *entry
	stored.ID = oid.Hex()
	stored.CreatedAt = oid.Timestamp().UTC()
	s.entries = append(s.entries, &stored)

	entry.ID = stored.ID
	entry.CreatedAt = stored.CreatedAt
	return stored.ID, nil
}

func (s *memoryStore) FindOne(ctx context.Context, filter Filter) (*model.Entry, error) {
	matcher, err := newMemoryMatcher(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if matcher.match(e) {
			found := *e
			return &found, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *memoryStore) FindMany(ctx context.Context, filter Filter, opts FindOptions) ([]*model.Entry, error) {
	matcher, err := newMemoryMatcher(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*model.Entry, 0)
	for _, e := range s.entries {
		if matcher.match(e) {
			found := *e
			matched = append(matched, &found)
		}
	}
	s.mu.RUnlock()

	desc := opts.SortOrder == model.SortDesc
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if opts.SortBy == model.SortByTitle {
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				if desc {
					return at > bt
				}
				return at < bt
			}
		}
		if desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	if opts.Skip > 0 {
		if opts.Skip >= len(matched) {
			return []*model.Entry{}, nil
		}
		matched = matched[opts.Skip:]
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (s *memoryStore) Count(ctx context.Context, filter Filter) (int64, error) {
	matcher, err := newMemoryMatcher(filter)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.entries {
		if matcher.match(e) {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) FindOneAndUpdate(ctx context.Context, filter Filter, patch Patch) (*model.Entry, error) {
	matcher, err := newMemoryMatcher(filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if !matcher.match(e) {
			continue
		}
		e.Title = patch.Title
		e.Content = patch.Content
		if patch.Type != "" {
			e.Type = patch.Type
		}
		updated := *e
		return &updated, nil
	}
	return nil, model.ErrNotFound
}

func (s *memoryStore) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	matcher, err := newMemoryMatcher(filter)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if matcher.match(e) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *memoryStore) DistinctValues(ctx context.Context, field string, filter Filter) ([]string, error) {
	if field != FieldUniqueName {
		return nil, fmt.Errorf("distinct on unsupported field %q", field)
	}

	matcher, err := newMemoryMatcher(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, e := range s.entries {
		if !matcher.match(e) {
			continue
		}
		if _, ok := seen[e.UniqueName]; ok {
			continue
		}
		seen[e.UniqueName] = struct{}{}
		values = append(values, e.UniqueName)
	}
	return values, nil
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return nil
}

// memoryMatcher is a compiled Filter
type memoryMatcher struct {
	filter  Filter
	pattern *regexp.Regexp
	search  string
}

func newMemoryMatcher(filter Filter) (*memoryMatcher, error) {
	m := &memoryMatcher{filter: filter, search: strings.ToLower(filter.Search)}
	if filter.UniqueNamePattern != "" {
		re, err := regexp.Compile("(?i)" + filter.UniqueNamePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid unique name pattern: %w", err)
		}
		m.pattern = re
	}
	return m, nil
}

func (m *memoryMatcher) match(e *model.Entry) bool {
	f := m.filter
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.UniqueName != "" && e.UniqueName != f.UniqueName {
		return false
	}
	if f.EditCodeHash != "" && e.EditCodeHash != f.EditCodeHash {
		return false
	}
	if m.pattern != nil && !m.pattern.MatchString(e.UniqueName) {
		return false
	}
	if m.search != "" &&
		!strings.Contains(strings.ToLower(e.Title), m.search) &&
		!strings.Contains(strings.ToLower(e.Content), m.search) {
		return false
	}
	if f.CreatedFrom != nil && e.CreatedAt.Before(f.CreatedFrom.Truncate(time.Second)) {
		return false
	}
	if f.CreatedTo != nil && e.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}
