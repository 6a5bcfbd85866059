package books

import (
	"context"
	"errors"

	"github.com/5w1tchy/library-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrConflict = errors.New("book already exists")

type Store struct{ coll *mongo.Collection }

func New(db *mongo.Database) *Store { return &Store{coll: db.Collection("books")} }

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.D{})
}

func (s *Store) All(ctx context.Context) ([]models.Book, error) {
	return s.find(ctx, bson.D{})
}

// ByGenre filters at the store level: matches books whose genres array
// contains the given genre.
func (s *Store) ByGenre(ctx context.Context, genre string) ([]models.Book, error) {
	return s.find(ctx, bson.M{"genres": genre})
}

func (s *Store) Insert(ctx context.Context, b models.Book) (models.Book, error) {
	res, err := s.coll.InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Book{}, ErrConflict
		}
		return models.Book{}, err
	}
	b.ID = res.InsertedID.(primitive.ObjectID)
	return b, nil
}

func (s *Store) find(ctx context.Context, filter interface{}) ([]models.Book, error) {
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var out []models.Book
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
