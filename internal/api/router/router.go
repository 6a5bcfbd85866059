package router

import (
	"net/http"

	"github.com/5w1tchy/library-api/internal/api/httpx"
	"github.com/5w1tchy/library-api/internal/api/middlewares"
	"github.com/5w1tchy/library-api/internal/graph/gqlws"
	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
)

// Router mounts the single GraphQL endpoint. Queries and mutations go over
// HTTP; a websocket upgrade on the same path reaches the subscription
// transport. Only the HTTP side runs the auth middleware; the bookAdded
// subscription carries no protected data and needs no token.
func Router(schema graphql.Schema, jwtSecret []byte, finder middlewares.UserFinder) http.Handler {
	mux := http.NewServeMux()

	gql := middlewares.Auth(jwtSecret, finder, handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: true,
	}))
	ws := gqlws.New(schema)

	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			ws.ServeHTTP(w, r)
			return
		}
		gql.ServeHTTP(w, r)
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"service": "library-api",
			"graphql": "/graphql",
		})
	})

	return mux
}
