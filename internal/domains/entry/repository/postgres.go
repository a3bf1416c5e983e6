package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"kindled-backend/internal/domains/entry/model"
	"kindled-backend/internal/shared/utils"
)

// =====================================================
// POSTGRES STORE
// =====================================================

// pgUniqueViolation SQLSTATE raised by uniq_entries_unique_name_ci
const pgUniqueViolation = "23505"

const entryColumns = `id, title, content, type, unique_name, edit_code_hash`

type postgresStore struct {
	db    *sql.DB
	newID func() (uuid.UUID, error)
}

// PostgresOption customizes the Postgres store
type PostgresOption func(*postgresStore)

// WithIDGenerator replaces uuid.NewV7; generated ids must be version 7
func WithIDGenerator(newID func() (uuid.UUID, error)) PostgresOption {
	return func(s *postgresStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewPostgresStore(db *sql.DB, opts ...PostgresOption) DocumentStore {
	s := &postgresStore{db: db, newID: uuid.NewV7}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =====================================================
// CREATE
// =====================================================

func (s *postgresStore) Insert(ctx context.Context, entry *model.Entry) (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate entry id: %w", err)
	}

	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		id,
		entry.Title,
		entry.Content,
		string(entry.Type),
		entry.UniqueName,
		entry.EditCodeHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", model.ErrDuplicateUniqueName
		}
		return "", fmt.Errorf("failed to insert entry: %w", err)
	}

	entry.ID = id.String()
	entry.CreatedAt = timeFromUUIDv7(id)
	return entry.ID, nil
}

// =====================================================
// READ
// =====================================================

func (s *postgresStore) FindOne(ctx context.Context, filter Filter) (*model.Entry, error) {
	where, args := buildPostgresWhere(filter)
	query := `SELECT ` + entryColumns + ` FROM entries ` + where + ` LIMIT 1`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	return entry, nil
}

func (s *postgresStore) FindMany(ctx context.Context, filter Filter, opts FindOptions) ([]*model.Entry, error) {
	where, args := buildPostgresWhere(filter)
	argPos := len(args) + 1

	query := `SELECT ` + entryColumns + ` FROM entries ` + where + ` ` + buildPostgresOrderBy(opts)
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, opts.Limit)
		argPos++
	}
	if opts.Skip > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, opts.Skip)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

func (s *postgresStore) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args := buildPostgresWhere(filter)

	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return total, nil
}

func (s *postgresStore) DistinctValues(ctx context.Context, field string, filter Filter) ([]string, error) {
	if field != FieldUniqueName {
		return nil, fmt.Errorf("distinct on unsupported field %q", field)
	}

	where, args := buildPostgresWhere(filter)
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT unique_name FROM entries `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load distinct %s: %w", field, err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", field, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// =====================================================
// UPDATE / DELETE
// =====================================================

// errMutationNeedsName guards UPDATE/DELETE: the case-insensitive unique
// index on unique_name is what bounds them to a single row.
var errMutationNeedsName = errors.New("mutation filter requires unique_name")

// FindOneAndUpdate runs a single UPDATE ... RETURNING so the edit-code
// check and the write cannot interleave with another request.
func (s *postgresStore) FindOneAndUpdate(ctx context.Context, filter Filter, patch Patch) (*model.Entry, error) {
	if filter.UniqueName == "" {
		return nil, errMutationNeedsName
	}
	where, args := buildPostgresWhere(filter)
	argPos := len(args) + 1

	sets := []string{
		fmt.Sprintf("title = $%d", argPos),
		fmt.Sprintf("content = $%d", argPos+1),
	}
	args = append(args, patch.Title, patch.Content)
	argPos += 2
	if patch.Type != "" {
		sets = append(sets, fmt.Sprintf("type = $%d", argPos))
		args = append(args, string(patch.Type))
	}

	query := `
		UPDATE entries SET ` + strings.Join(sets, ", ") + `
		` + where + `
		RETURNING ` + entryColumns

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return entry, nil
}

func (s *postgresStore) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	if filter.UniqueName == "" {
		return 0, errMutationNeedsName
	}
	where, args := buildPostgresWhere(filter)
	query := `DELETE FROM entries ` + where

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted count: %w", err)
	}
	return n, nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// =====================================================
// HELPERS
// =====================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	var (
		id        uuid.UUID
		entryType string
		entry     model.Entry
	)
	if err := row.Scan(&id, &entry.Title, &entry.Content, &entryType, &entry.UniqueName, &entry.EditCodeHash); err != nil {
		return nil, err
	}
	entry.ID = id.String()
	entry.Type = model.EntryType(entryType)
	entry.CreatedAt = timeFromUUIDv7(id)
	return &entry, nil
}

// buildPostgresWhere renders f as a WHERE clause with positional args
func buildPostgresWhere(f Filter) (string, []interface{}) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if f.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", argPos)
		args = append(args, string(f.Type))
		argPos++
	}
	if f.UniqueName != "" {
		where += fmt.Sprintf(" AND unique_name = $%d", argPos)
		args = append(args, f.UniqueName)
		argPos++
	}
	if f.EditCodeHash != "" {
		where += fmt.Sprintf(" AND edit_code_hash = $%d", argPos)
		args = append(args, f.EditCodeHash)
		argPos++
	}
	if f.UniqueNamePattern != "" {
		where += fmt.Sprintf(" AND unique_name ~* $%d", argPos)
		args = append(args, f.UniqueNamePattern)
		argPos++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR content ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+utils.EscapeLike(f.Search)+"%")
		argPos++
	}
	if f.CreatedFrom != nil {
		where += fmt.Sprintf(" AND id >= $%d", argPos)
		args = append(args, uuidv7Lower(*f.CreatedFrom))
		argPos++
	}
	if f.CreatedTo != nil {
		where += fmt.Sprintf(" AND id <= $%d", argPos)
		args = append(args, uuidv7Upper(*f.CreatedTo))
	}

	return where, args
}

func buildPostgresOrderBy(opts FindOptions) string {
	dir := "DESC"
	if opts.SortOrder == model.SortAsc {
		dir = "ASC"
	}
	if opts.SortBy == model.SortByTitle {
		return fmt.Sprintf("ORDER BY LOWER(title) %s, id %s", dir, dir)
	}
	return "ORDER BY id " + dir
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
