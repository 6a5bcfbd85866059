package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/library-api/internal/api/middlewares"
	"github.com/5w1tchy/library-api/internal/models"
	jwtutil "github.com/5w1tchy/library-api/internal/security/jwt"
	"github.com/5w1tchy/library-api/internal/store/users"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

type finderFunc func(ctx context.Context, id string) (models.User, error)

func (f finderFunc) FindByID(ctx context.Context, id string) (models.User, error) {
	return f(ctx, id)
}

func authHandler(t *testing.T, finder mw.UserFinder) (http.Handler, *models.User, *bool) {
	t.Helper()
	var seen models.User
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if u, ok := mw.CurrentUserFrom(r.Context()); ok {
			seen = u
		}
		w.WriteHeader(http.StatusOK)
	})
	return mw.Auth(secret, finder, next), &seen, &called
}

func TestAuth_NoHeaderIsAnonymous(t *testing.T) {
	h, seen, called := authHandler(t, finderFunc(func(context.Context, string) (models.User, error) {
		t.Fatal("finder must not be called without a token")
		return models.User{}, nil
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/graphql", nil))

	if !*called {
		t.Fatal("request must proceed anonymously")
	}
	if !seen.ID.IsZero() {
		t.Fatalf("no currentUser expected, got %+v", seen)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}

func TestAuth_ValidTokenResolvesUser(t *testing.T) {
	u := models.User{ID: primitive.NewObjectID(), Username: "bob"}
	token, err := jwtutil.Sign(secret, u.Username, u.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}

	h, seen, _ := authHandler(t, finderFunc(func(_ context.Context, id string) (models.User, error) {
		if id != u.ID.Hex() {
			t.Fatalf("finder got id %q", id)
		}
		return u, nil
	}))

	req := httptest.NewRequest("POST", "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen.Username != "bob" {
		t.Fatalf("want currentUser bob, got %+v", seen)
	}
}

func TestAuth_BearerPrefixIsCaseInsensitive(t *testing.T) {
	u := models.User{ID: primitive.NewObjectID(), Username: "bob"}
	token, _ := jwtutil.Sign(secret, u.Username, u.ID.Hex())

	h, seen, _ := authHandler(t, finderFunc(func(context.Context, string) (models.User, error) {
		return u, nil
	}))

	req := httptest.NewRequest("POST", "/graphql", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen.Username != "bob" {
		t.Fatal("lowercase bearer prefix must be accepted")
	}
}

func TestAuth_InvalidTokenFailsRequest(t *testing.T) {
	h, _, called := authHandler(t, finderFunc(func(context.Context, string) (models.User, error) {
		t.Fatal("finder must not be called for an invalid token")
		return models.User{}, nil
	}))

	req := httptest.NewRequest("POST", "/graphql", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if *called {
		t.Fatal("request must not reach the handler")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestAuth_TokenForDeletedUserIsAnonymous(t *testing.T) {
	token, _ := jwtutil.Sign(secret, "ghost", primitive.NewObjectID().Hex())

	h, seen, called := authHandler(t, finderFunc(func(context.Context, string) (models.User, error) {
		return models.User{}, users.ErrNotFound
	}))

	req := httptest.NewRequest("POST", "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !*called || !seen.ID.IsZero() {
		t.Fatalf("want anonymous pass-through, called=%v seen=%+v", *called, seen)
	}
}
