package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kindled-backend/internal/domains/entry/model"
	"kindled-backend/internal/domains/entry/repository"
	"kindled-backend/internal/domains/entry/secret"
	"kindled-backend/internal/domains/entry/slug"
	"kindled-backend/internal/infrastructure/moderation"
	"kindled-backend/internal/shared/utils"
	"kindled-backend/pkg/logger"
)

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

// Config tunables of the entry service
type Config struct {
	// ModerationTimeout bounds a single moderation check; a timeout fails closed
	ModerationTimeout time.Duration
	// MaxCreateAttempts bounds slug regeneration after a unique index conflict
	MaxCreateAttempts int
}

type entryService struct {
	store  repository.DocumentStore
	gate   moderation.Gate
	slugs  *slug.Generator
	hasher secret.Hasher
	config Config
}

func NewEntryService(
	store repository.DocumentStore,
	gate moderation.Gate,
	slugs *slug.Generator,
	hasher secret.Hasher,
	config Config,
) ServiceInterface {
	if config.ModerationTimeout <= 0 {
		config.ModerationTimeout = model.DefaultModerationTimeout
	}
	if config.MaxCreateAttempts <= 0 {
		config.MaxCreateAttempts = model.MaxCreateAttempts
	}
	return &entryService{
		store:  store,
		gate:   gate,
		slugs:  slugs,
		hasher: hasher,
		config: config,
	}
}

// =====================================================
// CREATE ENTRY
// =====================================================

func (s *entryService) CreateEntry(ctx context.Context, req model.CreateEntryRequest) (*model.EntryResponse, error) {
	// Step 1: Validate request
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 2: Moderate before anything is written
	if err := s.moderate(ctx, req.Title+" "+req.Content); err != nil {
		return nil, err
	}

	editCodeHash := s.hasher.Hash(req.EditCode)

	// Step 3: Name and insert; a concurrent winner on the same name
	// surfaces as ErrDuplicateUniqueName and triggers a fresh name
	for attempt := 1; attempt <= s.config.MaxCreateAttempts; attempt++ {
		uniqueName, err := s.slugs.Generate(ctx, s.lookupNames, req.Title)
		if err != nil {
			return nil, fmt.Errorf("failed to generate unique name: %w", err)
		}

		entry := &model.Entry{
			Title:        req.Title,
			Content:      req.Content,
			Type:         req.Type,
			UniqueName:   uniqueName,
			EditCodeHash: editCodeHash,
		}

		if _, err := s.store.Insert(ctx, entry); err != nil {
			if errors.Is(err, model.ErrDuplicateUniqueName) {
				logger.Warn("unique name taken concurrently, retrying", map[string]interface{}{
					"unique_name": uniqueName,
					"attempt":     attempt,
				})
				continue
			}
			return nil, fmt.Errorf("failed to create entry: %w", err)
		}

		logger.Info("entry created", map[string]interface{}{
			"unique_name": entry.UniqueName,
			"type":        entry.Type,
		})

		response := entry.ToResponse()
		return &response, nil
	}

	return nil, model.NewUniqueNameExhaustedError()
}

// lookupNames feeds the slug generator from the store
func (s *entryService) lookupNames(ctx context.Context, pattern string) ([]string, error) {
	return s.store.DistinctValues(ctx, repository.FieldUniqueName, repository.Filter{
		UniqueNamePattern: pattern,
	})
}

// =====================================================
// GET ENTRY
// =====================================================

func (s *entryService) GetEntry(ctx context.Context, scope model.EntryType, uniqueName string) (*model.EntryResponse, error) {
	entry, err := s.store.FindOne(ctx, repository.Filter{
		Type:       scope,
		UniqueName: uniqueName,
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewNotFoundError()
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	response := entry.ToResponse()
	return &response, nil
}

// =====================================================
// EDIT ENTRY
// =====================================================

func (s *entryService) EditEntry(
	ctx context.Context,
	scope model.EntryType,
	uniqueName string,
	req model.EditEntryRequest,
) (*model.EntryResponse, error) {
	// Step 1: Validate request
	req.Normalize()
	if scope != "" {
		req.Type = scope
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 2: Moderate the replacement text
	if err := s.moderate(ctx, req.Title+" "+req.Content); err != nil {
		return nil, err
	}

	// Step 3: Match on name and digest in the same atomic update
	updated, err := s.store.FindOneAndUpdate(ctx,
		repository.Filter{
			Type:         scope,
			UniqueName:   uniqueName,
			EditCodeHash: s.hasher.Hash(req.EditCode),
		},
		repository.Patch{
			Title:   req.Title,
			Content: req.Content,
			Type:    req.Type,
		},
	)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAuthOrNotFoundError()
		}
		return nil, fmt.Errorf("failed to edit entry: %w", err)
	}

	logger.Info("entry edited", map[string]interface{}{
		"unique_name": updated.UniqueName,
	})

	response := updated.ToResponse()
	return &response, nil
}

// =====================================================
// DELETE ENTRY
// =====================================================

func (s *entryService) DeleteEntry(
	ctx context.Context,
	scope model.EntryType,
	uniqueName string,
	req model.DeleteEntryRequest,
) (*model.DeleteEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	deleted, err := s.store.DeleteOne(ctx, repository.Filter{
		Type:         scope,
		UniqueName:   uniqueName,
		EditCodeHash: s.hasher.Hash(req.EditCode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete entry: %w", err)
	}
	if deleted == 0 {
		return nil, model.NewAuthOrNotFoundError()
	}

	logger.Info("entry deleted", map[string]interface{}{
		"unique_name": uniqueName,
	})

	return &model.DeleteEntryResponse{Deleted: true, DeletedCount: deleted}, nil
}

// =====================================================
// LIST ENTRIES
// =====================================================

func (s *entryService) ListEntries(
	ctx context.Context,
	scope model.EntryType,
	req model.ListEntriesRequest,
) (*model.ListEntriesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	q := req.ToQuery()
	if scope != "" {
		q.Type = scope
	}

	filter := repository.Filter{
		Type:        q.Type,
		Search:      utils.SanitizeSearch(q.Search, model.MaxSearchLength),
		CreatedFrom: q.CreatedFrom,
		CreatedTo:   q.CreatedTo,
	}

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	entries, err := s.store.FindMany(ctx, filter, repository.FindOptions{
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Skip:      q.Skip,
		Limit:     q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	data := make([]model.EntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, entry.ToResponse())
	}

	return &model.ListEntriesResponse{
		Meta: model.ListMeta{
			TotalCount:    total,
			Limit:         q.Limit,
			Skip:          q.Skip,
			ReturnedCount: len(data),
		},
		Data: data,
	}, nil
}

func (s *entryService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// =====================================================
// HELPERS
// =====================================================

// moderate runs the gate under the configured timeout. Anything other
// than an explicit allow stops the operation.
func (s *entryService) moderate(ctx context.Context, text string) error {
	checkCtx, cancel := context.WithTimeout(ctx, s.config.ModerationTimeout)
	defer cancel()

	verdict, err := s.gate.Check(checkCtx, text)
	if err != nil {
		logger.Error("moderation check failed", err)
		return model.NewModerationUnavailableError(err)
	}
	if verdict.Blocked {
		logger.Info("content rejected by moderation", map[string]interface{}{
			"action": verdict.Action,
		})
		return model.NewContentRejectedError()
	}
	return nil
}
