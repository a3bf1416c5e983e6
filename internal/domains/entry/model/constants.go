package model

import "time"

// EntryType is the discriminant of the note / prayer request family
type EntryType string

const (
	EntryTypeGeneral       EntryType = "general"
	EntryTypePrayerRequest EntryType = "prayer_request"
)

// IsValid reports whether t belongs to the closed set of entry types
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeGeneral, EntryTypePrayerRequest:
		return true
	}
	return false
}

// EntryTypes lists every accepted type, used by validation rules
var EntryTypes = []interface{}{EntryTypeGeneral, EntryTypePrayerRequest}

const (
	// Content limits (measured in characters after trimming)
	MinTitleLength   = 1
	MaxTitleLength   = 100
	MinContentLength = 1
	MaxContentLength = 2000

	// Edit code limits (not trimmed)
	MinEditCodeLength = 6
	MaxEditCodeLength = 64

	// Pagination
	DefaultListLimit = 20
	MinListLimit     = 1
	MaxListLimit     = 100

	// Free-text search input is capped before it reaches the store
	MaxSearchLength = 100

	// Slug generation
	DefaultSlugMaxLength = 20
	MaxCreateAttempts    = 5

	// Moderation check budget when the caller did not set one
	DefaultModerationTimeout = 5 * time.Second
)

// SortField is a sortable column of the list endpoint
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByTitle     SortField = "title"
)

// SortOrder is the direction of the list endpoint sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)
