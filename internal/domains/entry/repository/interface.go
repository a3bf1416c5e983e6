package repository

import (
	"context"
	"time"

	"kindled-backend/internal/domains/entry/model"
)

// =====================================================
// DOCUMENT STORE INTERFACE
// =====================================================

// Field names usable with DistinctValues
const (
	FieldUniqueName = "unique_name"
)

// Filter selects entries. Zero-value fields do not constrain the match.
type Filter struct {
	Type         model.EntryType
	UniqueName   string // exact match
	EditCodeHash string // exact match

	// Case-insensitive regular expression on unique_name (collision checks only)
	UniqueNamePattern string

	// Already-sanitized text, matched case-insensitively as a literal
	// substring of title or content
	Search string

	// Bounds on the creation time embedded in the store-assigned ID (inclusive)
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// FindOptions sorting and pagination for FindMany
type FindOptions struct {
	SortBy    model.SortField
	SortOrder model.SortOrder
	Skip      int
	Limit     int
}

// Patch replacement values for FindOneAndUpdate.
// An empty Type keeps the stored one; unique_name and edit_code_hash are never patched.
type Patch struct {
	Title   string
	Content string
	Type    model.EntryType
}

// DocumentStore is the persistence collection behind EntryService
type DocumentStore interface {
	// Insert assigns the ID, stores the entry and returns the ID.
	// Returns model.ErrDuplicateUniqueName when unique_name is taken (case-insensitive).
	Insert(ctx context.Context, entry *model.Entry) (string, error)

	// FindOne returns model.ErrNotFound when nothing matches
	FindOne(ctx context.Context, filter Filter) (*model.Entry, error)

	FindMany(ctx context.Context, filter Filter, opts FindOptions) ([]*model.Entry, error)

	Count(ctx context.Context, filter Filter) (int64, error)

	// FindOneAndUpdate matches and patches in a single atomic operation and
	// returns the updated entry, or model.ErrNotFound when nothing matched
	FindOneAndUpdate(ctx context.Context, filter Filter, patch Patch) (*model.Entry, error)

	// DeleteOne removes at most one matching entry and returns the deleted count
	DeleteOne(ctx context.Context, filter Filter) (int64, error)

	// DistinctValues returns the distinct values of field among matching entries
	DistinctValues(ctx context.Context, field string, filter Filter) ([]string, error)

	// Ping verifies the store is reachable (health endpoint)
	Ping(ctx context.Context) error
}
