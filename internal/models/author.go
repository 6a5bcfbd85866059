package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Author keeps a denormalized bookCount, bumped whenever a book is created.
type Author struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Born      *int               `bson:"born" json:"born,omitempty"`
	BookCount int                `bson:"bookCount" json:"bookCount"`
}
