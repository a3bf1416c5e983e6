package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kindled-backend/internal/domains/entry/model"
	"kindled-backend/internal/domains/entry/repository"
	"kindled-backend/internal/domains/entry/secret"
	"kindled-backend/internal/domains/entry/slug"
	"kindled-backend/internal/infrastructure/moderation"
)

// =====================================================
// TEST DOUBLES
// =====================================================

type mockGate struct {
	mock.Mock
}

func (m *mockGate) Check(ctx context.Context, text string) (moderation.Verdict, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(moderation.Verdict), args.Error(1)
}

// slowGate blocks until the context gives up
type slowGate struct{}

func (slowGate) Check(ctx context.Context, text string) (moderation.Verdict, error) {
	<-ctx.Done()
	return moderation.Verdict{}, ctx.Err()
}

// conflictingStore rejects the first n inserts as duplicates
type conflictingStore struct {
	repository.DocumentStore
	conflicts int
	inserts   int
}

func (s *conflictingStore) Insert(ctx context.Context, entry *model.Entry) (string, error) {
	s.inserts++
	if s.inserts <= s.conflicts {
		return "", model.ErrDuplicateUniqueName
	}
	return s.DocumentStore.Insert(ctx, entry)
}

func allowAll() *mockGate {
	gate := &mockGate{}
	gate.On("Check", mock.Anything, mock.Anything).Return(moderation.Verdict{Action: "keep"}, nil)
	return gate
}

func newTestService(store repository.DocumentStore, gate moderation.Gate, policy slug.Policy) ServiceInterface {
	return NewEntryService(
		store,
		gate,
		slug.NewGenerator(policy, model.DefaultSlugMaxLength),
		secret.NewBlake2bHasher(),
		Config{ModerationTimeout: 200 * time.Millisecond},
	)
}

func createReq(title, content string) model.CreateEntryRequest {
	return model.CreateEntryRequest{Title: title, Content: content, EditCode: "secret1"}
}

func listReq() model.ListEntriesRequest {
	return model.ListEntriesRequest{
		Limit:     model.DefaultListLimit,
		SortBy:    model.SortByCreatedAt,
		SortOrder: model.SortDesc,
	}
}

// =====================================================
// CREATE / GET
// =====================================================

func TestCreateEntry_RoundTrip(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyWordPair)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, createReq("  Grace  ", "Peace be with you"))
	require.NoError(t, err)
	assert.Equal(t, "Grace", created.Title)
	assert.Equal(t, model.EntryTypeGeneral, created.Type)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.CreatedAt)
	assert.Regexp(t, `^[a-z]+-[a-z]+$`, created.UniqueName)

	got, err := svc.GetEntry(ctx, "", created.UniqueName)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Content, got.Content)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "edit_code")
}

func TestCreateEntry_ModeratesTitleAndContent(t *testing.T) {
	gate := &mockGate{}
	gate.On("Check", mock.Anything, "Hope Lord hear us").Return(moderation.Verdict{Action: "keep"}, nil).Once()

	svc := newTestService(repository.NewMemoryStore(), gate, slug.PolicyWordPair)
	_, err := svc.CreateEntry(context.Background(), createReq("Hope", "Lord hear us"))

	require.NoError(t, err)
	gate.AssertExpectations(t)
}

func TestCreateEntry_Validation(t *testing.T) {
	gate := &mockGate{}
	svc := newTestService(repository.NewMemoryStore(), gate, slug.PolicyWordPair)

	tests := []struct {
		name string
		req  model.CreateEntryRequest
	}{
		{name: "blank title", req: model.CreateEntryRequest{Title: "   ", Content: "c", EditCode: "secret1"}},
		{name: "blank content", req: model.CreateEntryRequest{Title: "t", Content: "\n\t", EditCode: "secret1"}},
		{name: "short edit code", req: model.CreateEntryRequest{Title: "t", Content: "c", EditCode: "abc"}},
		{name: "unknown type", req: model.CreateEntryRequest{Title: "t", Content: "c", EditCode: "secret1", Type: "diary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEntry(context.Background(), tt.req)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
	gate.AssertNotCalled(t, "Check", mock.Anything, mock.Anything)
}

func TestCreateEntry_RejectedContentIsNotStored(t *testing.T) {
	store := repository.NewMemoryStore()
	gate := &mockGate{}
	gate.On("Check", mock.Anything, mock.Anything).Return(moderation.Verdict{Blocked: true, Action: "block"}, nil)

	svc := newTestService(store, gate, slug.PolicyWordPair)
	_, err := svc.CreateEntry(context.Background(), createReq("bad", "very bad"))

	var entryErr *model.EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, model.ErrCodeContentRejected, entryErr.Code)

	list, err := svc.ListEntries(context.Background(), "", listReq())
	require.NoError(t, err)
	assert.Zero(t, list.Meta.TotalCount)
}

func TestCreateEntry_ModerationFailureFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		gate moderation.Gate
	}{
		{name: "provider error", gate: func() moderation.Gate {
			g := &mockGate{}
			g.On("Check", mock.Anything, mock.Anything).Return(moderation.Verdict{}, errors.New("503 from provider"))
			return g
		}()},
		{name: "timeout", gate: slowGate{}},
		{name: "not configured", gate: moderation.NewStreamGate(moderation.StreamConfig{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemoryStore()
			svc := newTestService(store, tt.gate, slug.PolicyWordPair)

			_, err := svc.CreateEntry(context.Background(), createReq("t", "c"))
			assert.ErrorIs(t, err, model.ErrModerationUnavailable)

			n, err := store.Count(context.Background(), repository.Filter{})
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestCreateEntry_SameTitleGetsSuffix(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyTitle)
	ctx := context.Background()

	first, err := svc.CreateEntry(ctx, model.CreateEntryRequest{Title: "Hope", Content: "one", EditCode: "abcdef"})
	require.NoError(t, err)
	second, err := svc.CreateEntry(ctx, model.CreateEntryRequest{Title: "Hope", Content: "two", EditCode: "abcdef"})
	require.NoError(t, err)

	assert.Equal(t, "hope", first.UniqueName)
	assert.Equal(t, "hope-1", second.UniqueName)
}

func TestCreateEntry_RetriesOnDuplicate(t *testing.T) {
	store := &conflictingStore{DocumentStore: repository.NewMemoryStore(), conflicts: 2}
	svc := newTestService(store, allowAll(), slug.PolicyWordPair)

	created, err := svc.CreateEntry(context.Background(), createReq("t", "c"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.UniqueName)
	assert.Equal(t, 3, store.inserts)
}

func TestCreateEntry_GivesUpAfterMaxAttempts(t *testing.T) {
	store := &conflictingStore{DocumentStore: repository.NewMemoryStore(), conflicts: 100}
	svc := newTestService(store, allowAll(), slug.PolicyWordPair)

	_, err := svc.CreateEntry(context.Background(), createReq("t", "c"))

	var entryErr *model.EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, model.ErrCodeUniqueNameExhausted, entryErr.Code)
	assert.Equal(t, model.MaxCreateAttempts, store.inserts)
}

func TestGetEntry_NotFoundAndScope(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyWordPair)
	ctx := context.Background()

	_, err := svc.GetEntry(ctx, "", "missing-name")
	assert.ErrorIs(t, err, model.ErrNotFound)

	note, err := svc.CreateEntry(ctx, createReq("t", "c"))
	require.NoError(t, err)

	_, err = svc.GetEntry(ctx, model.EntryTypePrayerRequest, note.UniqueName)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

// =====================================================
// EDIT / DELETE
// =====================================================

func TestEditEntry(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyWordPair)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, createReq("Old", "old body"))
	require.NoError(t, err)

	updated, err := svc.EditEntry(ctx, "", created.UniqueName, model.EditEntryRequest{
		Title: "New", Content: "new body", EditCode: "secret1", Type: model.EntryTypePrayerRequest,
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "new body", updated.Content)
	assert.Equal(t, model.EntryTypePrayerRequest, updated.Type)
	assert.Equal(t, created.UniqueName, updated.UniqueName)
	assert.Equal(t, created.ID, updated.ID)
}

func TestEditEntry_WrongCodeIndistinguishableFromMissing(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyWordPair)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, createReq("t", "c"))
	require.NoError(t, err)

	edit := model.EditEntryRequest{Title: "x", Content: "y", EditCode: "wrong-code"}
	_, wrongCode := svc.EditEntry(ctx, "", created.UniqueName, edit)
	_, missing := svc.EditEntry(ctx, "", "no-such-name", edit)

	var a, b *model.EntryError
	require.ErrorAs(t, wrongCode, &a)
	require.ErrorAs(t, missing, &b)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, model.ErrCodeAuthOrNotFound, a.Code)

	got, err := svc.GetEntry(ctx, "", created.UniqueName)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
}

func TestEditEntry_BlockedLeavesEntryUntouched(t *testing.T) {
	store := repository.NewMemoryStore()
	gate := &mockGate{}
	gate.On("Check", mock.Anything, "t c").Return(moderation.Verdict{Action: "keep"}, nil)
	gate.On("Check", mock.Anything, "bad words").Return(moderation.Verdict{Blocked: true, Action: "remove"}, nil)

	svc := newTestService(store, gate, slug.PolicyWordPair)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, createReq("t", "c"))
	require.NoError(t, err)

	_, err = svc.EditEntry(ctx, "", created.UniqueName, model.EditEntryRequest{Title: "bad", Content: "words", EditCode: "secret1"})
	assert.ErrorIs(t, err, model.ErrContentRejected)

	got, err := svc.GetEntry(ctx, "", created.UniqueName)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
}

func TestEditEntry_ScopePinsType(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyWordPair)
	ctx := context.Background()

	req := createReq("t", "c")
	req.Type = model.EntryTypePrayerRequest
	created, err := svc.CreateEntry(ctx, req)
	require.NoError(t, err)

	updated, err := svc.EditEntry(ctx, model.EntryTypePrayerRequest, created.UniqueName, model.EditEntryRequest{
		Title: "x", Content: "y", EditCode: "secret1", Type: model.EntryTypeGeneral,
	})
	require.NoError(t, err)
	assert.Equal(t, model.EntryTypePrayerRequest, updated.Type)
}

func TestDeleteEntry_Twice(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyWordPair)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, createReq("t", "c"))
	require.NoError(t, err)

	_, err = svc.DeleteEntry(ctx, "", created.UniqueName, model.DeleteEntryRequest{EditCode: "wrong-code"})
	assert.ErrorIs(t, err, model.ErrAuthOrNotFound)

	res, err := svc.DeleteEntry(ctx, "", created.UniqueName, model.DeleteEntryRequest{EditCode: "secret1"})
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.EqualValues(t, 1, res.DeletedCount)

	_, err = svc.DeleteEntry(ctx, "", created.UniqueName, model.DeleteEntryRequest{EditCode: "secret1"})
	assert.ErrorIs(t, err, model.ErrAuthOrNotFound)

	_, err = svc.GetEntry(ctx, "", created.UniqueName)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

// =====================================================
// LIST
// =====================================================

func TestListEntries_Pagination(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyWordPair)
	ctx := context.Background()

	var names []string
	for _, title := range []string{"one", "two", "three"} {
		created, err := svc.CreateEntry(ctx, createReq(title, "body"))
		require.NoError(t, err)
		names = append(names, created.UniqueName)
	}

	req := listReq()
	req.Limit = 1
	req.Skip = 1
	res, err := svc.ListEntries(ctx, "", req)
	require.NoError(t, err)

	assert.EqualValues(t, 3, res.Meta.TotalCount)
	assert.Equal(t, 1, res.Meta.ReturnedCount)
	assert.Equal(t, 1, res.Meta.Limit)
	assert.Equal(t, 1, res.Meta.Skip)
	require.Len(t, res.Data, 1)
	// newest first: three, two, one
	assert.Equal(t, names[1], res.Data[0].UniqueName)
}

func TestListEntries_FiltersAndSearch(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyWordPair)
	ctx := context.Background()

	prayer := createReq("Pray for rain", "the fields are dry")
	prayer.Type = model.EntryTypePrayerRequest
	_, err := svc.CreateEntry(ctx, prayer)
	require.NoError(t, err)
	_, err = svc.CreateEntry(ctx, createReq("Rainy day", "stayed in"))
	require.NoError(t, err)
	_, err = svc.CreateEntry(ctx, createReq("Sunny", "went out"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		scope model.EntryType
		edit  func(r *model.ListEntriesRequest)
		want  int64
	}{
		{name: "all", want: 3},
		{name: "by type", edit: func(r *model.ListEntriesRequest) { r.Type = model.EntryTypeGeneral }, want: 2},
		{name: "search", edit: func(r *model.ListEntriesRequest) { r.Query = "  RAIN \x00" }, want: 2},
		{name: "scope wins over type", scope: model.EntryTypePrayerRequest, edit: func(r *model.ListEntriesRequest) { r.Type = model.EntryTypeGeneral }, want: 1},
		{name: "regex characters are literal", edit: func(r *model.ListEntriesRequest) { r.Query = ".*" }, want: 0},
		{name: "future date_from", edit: func(r *model.ListEntriesRequest) { r.DateFrom = "2999-01-01" }, want: 0},
		{name: "today date_to", edit: func(r *model.ListEntriesRequest) { r.DateTo = time.Now().UTC().Format("2006-01-02") }, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := listReq()
			if tt.edit != nil {
				tt.edit(&req)
			}
			res, err := svc.ListEntries(ctx, tt.scope, req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Meta.TotalCount)
			assert.NotNil(t, res.Data)
		})
	}
}

func TestListEntries_Validation(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), allowAll(), slug.PolicyWordPair)

	tests := []struct {
		name string
		edit func(r *model.ListEntriesRequest)
	}{
		{name: "limit zero", edit: func(r *model.ListEntriesRequest) { r.Limit = 0 }},
		{name: "limit too big", edit: func(r *model.ListEntriesRequest) { r.Limit = 101 }},
		{name: "negative skip", edit: func(r *model.ListEntriesRequest) { r.Skip = -1 }},
		{name: "bad sort", edit: func(r *model.ListEntriesRequest) { r.SortBy = "unique_name" }},
		{name: "bad order", edit: func(r *model.ListEntriesRequest) { r.SortOrder = "up" }},
		{name: "bad date", edit: func(r *model.ListEntriesRequest) { r.DateFrom = "yesterday" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := listReq()
			tt.edit(&req)
			_, err := svc.ListEntries(context.Background(), "", req)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}
