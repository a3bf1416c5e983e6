package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// CreateEntryRequest request to create a note or prayer request
type CreateEntryRequest struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	EditCode string    `json:"edit_code"`
	Type     EntryType `json:"type"`
}

// Normalize trims title/content and fills the default type
func (r *CreateEntryRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	if r.Type == "" {
		r.Type = EntryTypeGeneral
	}
}

func (r CreateEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		titleField(&r.Title),
		contentField(&r.Content),
		editCodeField(&r.EditCode),
		validation.Field(&r.Type,
			validation.Required.Error("type is required"),
			validation.In(EntryTypes...).Error("type must be general or prayer_request"),
		),
	)
}

// EditEntryRequest request to replace title/content (and optionally type)
type EditEntryRequest struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	EditCode string    `json:"edit_code"`
	Type     EntryType `json:"type"`
}

func (r *EditEntryRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
}

func (r EditEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		titleField(&r.Title),
		contentField(&r.Content),
		editCodeField(&r.EditCode),
		validation.Field(&r.Type,
			validation.In(EntryTypes...).Error("type must be general or prayer_request"),
		),
	)
}

// DeleteEntryRequest request to delete an entry
type DeleteEntryRequest struct {
	EditCode string `json:"edit_code"`
}

func (r DeleteEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		editCodeField(&r.EditCode),
	)
}

func titleField(title *string) *validation.FieldRules {
	return validation.Field(title,
		validation.Required.Error("title is required"),
		validation.RuneLength(MinTitleLength, MaxTitleLength).Error("title must be 1-100 characters"),
	)
}

func contentField(content *string) *validation.FieldRules {
	return validation.Field(content,
		validation.Required.Error("content is required"),
		validation.RuneLength(MinContentLength, MaxContentLength).Error("content must be 1-2000 characters"),
	)
}

func editCodeField(code *string) *validation.FieldRules {
	return validation.Field(code,
		validation.Required.Error("edit_code is required"),
		validation.RuneLength(MinEditCodeLength, MaxEditCodeLength).Error("edit_code must be 6-64 characters"),
	)
}

// ListEntriesRequest query parameters of the list endpoint
type ListEntriesRequest struct {
	Type      EntryType `form:"type"`
	Query     string    `form:"q"`
	Limit     int       `form:"limit,default=20"`
	Skip      int       `form:"skip,default=0"`
	SortBy    SortField `form:"sort_by,default=created_at"`
	SortOrder SortOrder `form:"sort_order,default=desc"`
	DateFrom  string    `form:"date_from"`
	DateTo    string    `form:"date_to"`
}

func (r ListEntriesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type,
			validation.In(EntryTypes...).Error("type must be general or prayer_request"),
		),
		validation.Field(&r.Limit,
			validation.Required.Error("limit must be between 1 and 100"),
			validation.Min(MinListLimit).Error("limit must be between 1 and 100"),
			validation.Max(MaxListLimit).Error("limit must be between 1 and 100"),
		),
		validation.Field(&r.Skip,
			validation.Min(0).Error("skip must be >= 0"),
		),
		validation.Field(&r.SortBy,
			validation.In(SortByCreatedAt, SortByTitle).Error("sort_by must be created_at or title"),
		),
		validation.Field(&r.SortOrder,
			validation.In(SortAsc, SortDesc).Error("sort_order must be asc or desc"),
		),
		validation.Field(&r.DateFrom, validation.By(isoDate)),
		validation.Field(&r.DateTo, validation.By(isoDate)),
	)
}

// ToQuery converts validated query parameters into a store query.
// A date-only date_to covers the whole day.
func (r ListEntriesRequest) ToQuery() ListQuery {
	q := ListQuery{
		Type:      r.Type,
		Search:    r.Query,
		Limit:     r.Limit,
		Skip:      r.Skip,
		SortBy:    r.SortBy,
		SortOrder: r.SortOrder,
	}
	if t, _, err := ParseISODate(r.DateFrom); err == nil && !t.IsZero() {
		q.CreatedFrom = &t
	}
	if t, dateOnly, err := ParseISODate(r.DateTo); err == nil && !t.IsZero() {
		if dateOnly {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		q.CreatedTo = &t
	}
	return q
}

// ListQuery is the parsed list request handed to the service
type ListQuery struct {
	Type        EntryType
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      SortField
	SortOrder   SortOrder
	Skip        int
	Limit       int
}

var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseISODate accepts RFC3339 timestamps, zone-less timestamps (UTC) and plain dates.
// An empty input returns the zero time.
func ParseISODate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), layout == "2006-01-02", nil
		}
	}
	return time.Time{}, false, errors.New("must be an ISO-8601 date or timestamp")
}

func isoDate(value interface{}) error {
	s, _ := value.(string)
	_, _, err := ParseISODate(s)
	return err
}

// =====================================================
// RESPONSE DTOs
// =====================================================

// EntryResponse public representation; edit_code_hash is never part of it
type EntryResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  string    `json:"created_at"`
	UniqueName string    `json:"unique_name"`
	Type       EntryType `json:"type"`
}

// ListMeta pagination metadata
type ListMeta struct {
	TotalCount    int64 `json:"total_count"`
	Limit         int   `json:"limit"`
	Skip          int   `json:"skip"`
	ReturnedCount int   `json:"returned_count"`
}

// ListEntriesResponse response for the list endpoint
type ListEntriesResponse struct {
	Meta ListMeta        `json:"meta"`
	Data []EntryResponse `json:"data"`
}

// DeleteEntryResponse response for a successful delete
type DeleteEntryResponse struct {
	Deleted      bool  `json:"deleted"`
	DeletedCount int64 `json:"deleted_count"`
}
