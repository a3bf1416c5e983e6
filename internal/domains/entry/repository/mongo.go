package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindled-backend/internal/domains/entry/model"
)

// =====================================================
// MONGO STORE
// =====================================================

// entryDocument is the persisted shape; created_at is never stored,
// it is read back from the ObjectID timestamp.
type entryDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Content      string             `bson:"content"`
	Type         string             `bson:"type"`
	UniqueName   string             `bson:"unique_name"`
	EditCodeHash string             `bson:"edit_code_hash"`
}

func (d *entryDocument) toEntry() *model.Entry {
	return &model.Entry{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Content:      d.Content,
		Type:         model.EntryType(d.Type),
		UniqueName:   d.UniqueName,
		EditCodeHash: d.EditCodeHash,
		CreatedAt:    d.ID.Timestamp().UTC(),
	}
}

// caseInsensitive collation shared by the unique index and title sort
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type mongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) DocumentStore {
	return &mongoStore{coll: coll}
}

// EnsureMongoIndexes creates the case-insensitive unique index on
// unique_name and the type index. Safe to call repeatedly.
func EnsureMongoIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "unique_name", Value: 1}},
			Options: options.Index().
				SetName("uniq_unique_name_ci").
				SetUnique(true).
				SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}},
			Options: options.Index().SetName("idx_type"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create entry indexes: %w", err)
	}
	return nil
}

func (s *mongoStore) Insert(ctx context.Context, entry *model.Entry) (string, error) {
	doc := entryDocument{
		ID:           primitive.NewObjectID(),
		Title:        entry.Title,
		Content:      entry.Content,
		Type:         string(entry.Type),
		UniqueName:   entry.UniqueName,
		EditCodeHash: entry.EditCodeHash,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", model.ErrDuplicateUniqueName
		}
		return "", fmt.Errorf("failed to insert entry: %w", err)
	}

	entry.ID = doc.ID.Hex()
	entry.CreatedAt = doc.ID.Timestamp().UTC()
	return entry.ID, nil
}

func (s *mongoStore) FindOne(ctx context.Context, filter Filter) (*model.Entry, error) {
	var doc entryDocument
	err := s.coll.FindOne(ctx, BuildMongoFilter(filter)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	return doc.toEntry(), nil
}

func (s *mongoStore) FindMany(ctx context.Context, filter Filter, opts FindOptions) ([]*model.Entry, error) {
	findOpts := options.Find().
		SetSort(BuildMongoSort(opts)).
		SetSkip(int64(opts.Skip))
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.SortBy == model.SortByTitle {
		findOpts.SetCollation(caseInsensitive)
	}

	cursor, err := s.coll.Find(ctx, BuildMongoFilter(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*model.Entry, 0)
	for cursor.Next(ctx) {
		var doc entryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode entry: %w", err)
		}
		entries = append(entries, doc.toEntry())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return entries, nil
}

func (s *mongoStore) Count(ctx context.Context, filter Filter) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, BuildMongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (s *mongoStore) FindOneAndUpdate(ctx context.Context, filter Filter, patch Patch) (*model.Entry, error) {
	set := bson.D{
		{Key: "title", Value: patch.Title},
		{Key: "content", Value: patch.Content},
	}
	if patch.Type != "" {
		set = append(set, bson.E{Key: "type", Value: string(patch.Type)})
	}

	var doc entryDocument
	err := s.coll.FindOneAndUpdate(ctx,
		BuildMongoFilter(filter),
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return doc.toEntry(), nil
}

func (s *mongoStore) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	res, err := s.coll.DeleteOne(ctx, BuildMongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to delete entry: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *mongoStore) DistinctValues(ctx context.Context, field string, filter Filter) ([]string, error) {
	raw, err := s.coll.Distinct(ctx, field, BuildMongoFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to load distinct %s: %w", field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			values = append(values, str)
		}
	}
	return values, nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// BuildMongoFilter translates a Filter into a bson query document
func BuildMongoFilter(f Filter) bson.D {
	query := bson.D{}

	if f.Type != "" {
		query = append(query, bson.E{Key: "type", Value: string(f.Type)})
	}
	if f.UniqueName != "" {
		query = append(query, bson.E{Key: "unique_name", Value: f.UniqueName})
	}
	if f.EditCodeHash != "" {
		query = append(query, bson.E{Key: "edit_code_hash", Value: f.EditCodeHash})
	}
	if f.UniqueNamePattern != "" {
		query = append(query, bson.E{Key: "unique_name", Value: primitive.Regex{
			Pattern: f.UniqueNamePattern,
			Options: "i",
		}})
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query = append(query, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "content", Value: re}},
		}})
	}

	if f.CreatedFrom != nil || f.CreatedTo != nil {
		bounds := bson.D{}
		if f.CreatedFrom != nil {
			bounds = append(bounds, bson.E{Key: "$gte", Value: primitive.NewObjectIDFromTimestamp(*f.CreatedFrom)})
		}
		if f.CreatedTo != nil {
			// the upper bound covers every ObjectID minted within that second
			upper := primitive.NewObjectIDFromTimestamp(*f.CreatedTo)
			for i := 4; i < len(upper); i++ {
				upper[i] = 0xff
			}
			bounds = append(bounds, bson.E{Key: "$lte", Value: upper})
		}
		query = append(query, bson.E{Key: "_id", Value: bounds})
	}

	return query
}

// BuildMongoSort maps FindOptions to a sort document. _id breaks ties and
// doubles as the created_at ordering.
func BuildMongoSort(opts FindOptions) bson.D {
	dir := -1
	if opts.SortOrder == model.SortAsc {
		dir = 1
	}
	if opts.SortBy == model.SortByTitle {
		return bson.D{{Key: "title", Value: dir}, {Key: "_id", Value: dir}}
	}
	return bson.D{{Key: "_id", Value: dir}}
}
