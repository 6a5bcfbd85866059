package authors

import (
	"context"
	"errors"

	"github.com/5w1tchy/library-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("author not found")

type Store struct{ coll *mongo.Collection }

func New(db *mongo.Database) *Store { return &Store{coll: db.Collection("authors")} }

// EnsureIndexes enforces one author per name at the store layer, so two
// concurrent Ensure calls can't insert twins.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.D{})
}

func (s *Store) All(ctx context.Context) ([]models.Author, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var out []models.Author
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ensure returns the author with the given name, creating it (born unset,
// zero books) if absent. Implemented as a single upsert rather than
// find-then-insert so the lookup-or-create cannot race.
func (s *Store) Ensure(ctx context.Context, name string) (models.Author, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": bson.M{
		"name":      name,
		"born":      nil,
		"bookCount": 0,
	}}
	var a models.Author
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"name": name}, update, opts).Decode(&a); err != nil {
		return models.Author{}, err
	}
	return a, nil
}

// SetBorn updates the birth year of the named author and returns the updated
// record, or ErrNotFound if no such author exists.
func (s *Store) SetBorn(ctx context.Context, name string, born int) (models.Author, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Author
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"name": name}, bson.M{"$set": bson.M{"born": born}}, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Author{}, ErrNotFound
	}
	if err != nil {
		return models.Author{}, err
	}
	return a, nil
}

// IncBookCount bumps the denormalized book counter after a book insert.
func (s *Store) IncBookCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"bookCount": 1}})
	return err
}

// FindByIDs resolves author documents for a batch of book references.
func (s *Store) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Author, error) {
	out := make(map[primitive.ObjectID]models.Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var batch []models.Author
	if err := cur.All(ctx, &batch); err != nil {
		return nil, err
	}
	for _, a := range batch {
		out[a.ID] = a
	}
	return out, nil
}
