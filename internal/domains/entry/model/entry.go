package model

import "time"

// Entry represents a stored note or prayer request
type Entry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Type       EntryType `json:"type"`
	UniqueName string    `json:"unique_name"`

	// One-way digest of the creator's edit code. Never serialized.
	EditCodeHash string `json:"-"`

	// Derived from the store-assigned ID, not persisted as a column/field
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse builds the public representation of the entry
func (e *Entry) ToResponse() EntryResponse {
	return EntryResponse{
		ID:         e.ID,
		Title:      e.Title,
		Content:    e.Content,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		UniqueName: e.UniqueName,
		Type:       e.Type,
	}
}
