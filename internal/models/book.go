package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Book struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Published int                `bson:"published" json:"published"`
	AuthorID  primitive.ObjectID `bson:"author" json:"author"`
	Genres    []string           `bson:"genres" json:"genres"`
}
