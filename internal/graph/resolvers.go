package graph

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/5w1tchy/library-api/internal/api/middlewares"
	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/pubsub"
	jwtutil "github.com/5w1tchy/library-api/internal/security/jwt"
	"github.com/5w1tchy/library-api/internal/security/password"
	"github.com/5w1tchy/library-api/internal/store/authors"
	"github.com/5w1tchy/library-api/internal/store/books"
	"github.com/5w1tchy/library-api/internal/store/users"
	"github.com/5w1tchy/library-api/internal/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store contracts the resolver needs; the mongo stores satisfy them, tests
// substitute in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, username, favoriteGenre string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
}

type AuthorStore interface {
	Count(ctx context.Context) (int64, error)
	All(ctx context.Context) ([]models.Author, error)
	Ensure(ctx context.Context, name string) (models.Author, error)
	SetBorn(ctx context.Context, name string, born int) (models.Author, error)
	IncBookCount(ctx context.Context, id primitive.ObjectID) error
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Author, error)
}

type BookStore interface {
	Count(ctx context.Context) (int64, error)
	All(ctx context.Context) ([]models.Book, error)
	ByGenre(ctx context.Context, genre string) ([]models.Book, error)
	Insert(ctx context.Context, b models.Book) (models.Book, error)
}

// Resolver is the root resolver; everything it touches is injected from main.
type Resolver struct {
	Users     UserStore
	Authors   AuthorStore
	Books     BookStore
	Broker    pubsub.Broker
	Gate      *password.Gate
	JWTSecret []byte
}

// ---------- queries ----------

func (r *Resolver) BookCount(ctx context.Context) (int64, error) {
	return r.Books.Count(ctx)
}

func (r *Resolver) AuthorCount(ctx context.Context) (int64, error) {
	return r.Authors.Count(ctx)
}

// AllBooks applies the filter policy: genre filters at the store, author
// filters in memory on the resolved author name, and combining both yields
// the intersection.
func (r *Resolver) AllBooks(ctx context.Context, author, genre string) ([]Book, error) {
	var recs []models.Book
	var err error
	if genre != "" {
		recs, err = r.Books.ByGenre(ctx, genre)
	} else {
		recs, err = r.Books.All(ctx)
	}
	if err != nil {
		return nil, err
	}

	out, err := r.resolveBooks(ctx, recs)
	if err != nil {
		return nil, err
	}
	if author == "" {
		return out, nil
	}
	matched := out[:0]
	for _, b := range out {
		if b.Author.Name == author {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (r *Resolver) AllAuthors(ctx context.Context) ([]Author, error) {
	recs, err := r.Authors.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Author, 0, len(recs))
	for _, a := range recs {
		out = append(out, toAuthor(a))
	}
	return out, nil
}

// Me returns the request identity, or nil when unauthenticated. Never an
// error: anonymous callers simply see null.
func (r *Resolver) Me(ctx context.Context) (*User, error) {
	u, ok := middlewares.CurrentUserFrom(ctx)
	if !ok {
		return nil, nil
	}
	out := toUser(u)
	return &out, nil
}

// ---------- mutations ----------

func (r *Resolver) CreateUser(ctx context.Context, username, favoriteGenre string) (*User, error) {
	invalid := map[string]interface{}{"username": username, "favoriteGenre": favoriteGenre}
	username, err := validate.RequireBounded("username", username, 1, 64)
	if err != nil {
		return nil, errUserInput(err.Error(), invalid)
	}
	u, err := r.Users.Create(ctx, username, validate.Clean(favoriteGenre))
	if errors.Is(err, users.ErrConflict) {
		return nil, errUserInput(err.Error(), invalid)
	}
	if err != nil {
		return nil, err
	}
	out := toUser(u)
	return &out, nil
}

func (r *Resolver) Login(ctx context.Context, username, pass string) (*Token, error) {
	u, err := r.Users.FindByUsername(ctx, username)
	if errors.Is(err, users.ErrNotFound) {
		// Burn the compare anyway so a missing user costs the same as a
		// wrong password.
		_, _ = r.Gate.Verify(pass)
		return nil, errWrongCredentials()
	}
	if err != nil {
		return nil, err
	}
	ok, err := r.Gate.Verify(pass)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errWrongCredentials()
	}
	signed, err := jwtutil.Sign(r.JWTSecret, u.Username, u.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &Token{Value: signed}, nil
}

type AddBookInput struct {
	Title     string
	Author    string
	Published int
	Genres    []string
}

func (r *Resolver) AddBook(ctx context.Context, in AddBookInput) (*Book, error) {
	if _, ok := middlewares.CurrentUserFrom(ctx); !ok {
		return nil, errNotAuthenticated()
	}

	invalid := map[string]interface{}{
		"title":     in.Title,
		"author":    in.Author,
		"published": in.Published,
		"genres":    in.Genres,
	}
	title, err := validate.RequireBounded("title", in.Title, 1, 300)
	if err != nil {
		return nil, errUserInput(err.Error(), invalid)
	}
	authorName, err := validate.RequireBounded("author", in.Author, 1, 200)
	if err != nil {
		return nil, errUserInput(err.Error(), invalid)
	}
	if err := validate.Year("published", in.Published); err != nil {
		return nil, errUserInput(err.Error(), invalid)
	}

	a, err := r.Authors.Ensure(ctx, authorName)
	if err != nil {
		return nil, err
	}

	rec, err := r.Books.Insert(ctx, models.Book{
		Title:     title,
		Published: in.Published,
		AuthorID:  a.ID,
		Genres:    validate.Genres(in.Genres),
	})
	if errors.Is(err, books.ErrConflict) {
		return nil, errUserInput(err.Error(), invalid)
	}
	if err != nil {
		return nil, err
	}

	if err := r.Authors.IncBookCount(ctx, a.ID); err != nil {
		return nil, err
	}
	a.BookCount++

	book := toBook(rec, a)
	r.publishBookAdded(ctx, book)
	return &book, nil
}

func (r *Resolver) EditAuthor(ctx context.Context, name string, setBornTo int) (*Author, error) {
	if _, ok := middlewares.CurrentUserFrom(ctx); !ok {
		return nil, errNotAuthenticated()
	}
	if err := validate.Year("setBornTo", setBornTo); err != nil {
		return nil, errUserInput(err.Error(), map[string]interface{}{"name": name, "setBornTo": setBornTo})
	}
	a, err := r.Authors.SetBorn(ctx, validate.Clean(name), setBornTo)
	if errors.Is(err, authors.ErrNotFound) {
		return nil, nil // missing author is a null result, not a failure
	}
	if err != nil {
		return nil, err
	}
	out := toAuthor(a)
	return &out, nil
}

// ---------- subscription ----------

// SubscribeBookAdded bridges the broker into the channel shape the GraphQL
// engine consumes. The channel closes when ctx does.
func (r *Resolver) SubscribeBookAdded(ctx context.Context) (chan interface{}, error) {
	sub, err := r.Broker.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	ch := make(chan interface{})
	go func() {
		defer close(ch)
		for payload := range sub {
			var b Book
			if err := json.Unmarshal(payload, &b); err != nil {
				log.Printf("[pubsub] dropping malformed event: %v", err)
				continue
			}
			select {
			case ch <- &b:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (r *Resolver) publishBookAdded(ctx context.Context, b Book) {
	payload, err := json.Marshal(b)
	if err != nil {
		log.Printf("[pubsub] marshal bookAdded: %v", err)
		return
	}
	// Fire-and-forget: a broker hiccup must not fail the mutation.
	if err := r.Broker.Publish(ctx, payload); err != nil {
		log.Printf("[pubsub] publish bookAdded: %v", err)
	}
}

// ---------- helpers ----------

func (r *Resolver) resolveBooks(ctx context.Context, recs []models.Book) ([]Book, error) {
	ids := make([]primitive.ObjectID, 0, len(recs))
	seen := map[primitive.ObjectID]struct{}{}
	for _, b := range recs {
		if _, ok := seen[b.AuthorID]; ok {
			continue
		}
		seen[b.AuthorID] = struct{}{}
		ids = append(ids, b.AuthorID)
	}
	byID, err := r.Authors.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Book, 0, len(recs))
	for _, b := range recs {
		a, ok := byID[b.AuthorID]
		if !ok {
			return nil, errors.New("book " + b.ID.Hex() + " references a missing author")
		}
		out = append(out, toBook(b, a))
	}
	return out, nil
}

func toUser(u models.User) User {
	return User{ID: u.ID.Hex(), Username: u.Username, FavoriteGenre: u.FavoriteGenre}
}

func toAuthor(a models.Author) Author {
	return Author{ID: a.ID.Hex(), Name: a.Name, Born: a.Born, BookCount: a.BookCount}
}

func toBook(b models.Book, a models.Author) Book {
	genres := b.Genres
	if genres == nil {
		genres = []string{}
	}
	return Book{
		ID:        b.ID.Hex(),
		Title:     b.Title,
		Published: b.Published,
		Author:    toAuthor(a),
		Genres:    genres,
	}
}
