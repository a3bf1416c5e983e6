package service

import (
	"context"

	"kindled-backend/internal/domains/entry/model"
)

// =====================================================
// ENTRY SERVICE INTERFACE
// =====================================================

// ServiceInterface is shared by the notes and prayer-request routes.
// scope pins an operation to one entry type; an empty scope matches any type.
type ServiceInterface interface {
	// CreateEntry validates, moderates, names and stores a new entry
	CreateEntry(ctx context.Context, req model.CreateEntryRequest) (*model.EntryResponse, error)

	// GetEntry gets an entry by unique_name
	GetEntry(ctx context.Context, scope model.EntryType, uniqueName string) (*model.EntryResponse, error)

	// EditEntry replaces title/content (and optionally type) when the edit code matches
	EditEntry(ctx context.Context, scope model.EntryType, uniqueName string, req model.EditEntryRequest) (*model.EntryResponse, error)

	// DeleteEntry removes an entry when the edit code matches
	DeleteEntry(ctx context.Context, scope model.EntryType, uniqueName string, req model.DeleteEntryRequest) (*model.DeleteEntryResponse, error)

	// ListEntries filters, searches and paginates entries
	ListEntries(ctx context.Context, scope model.EntryType, req model.ListEntriesRequest) (*model.ListEntriesResponse, error)

	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error
}
