package main

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"time"

	mw "github.com/5w1tchy/library-api/internal/api/middlewares"
	"github.com/5w1tchy/library-api/internal/api/router"
	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/graph"
	"github.com/5w1tchy/library-api/internal/pubsub"
	"github.com/5w1tchy/library-api/internal/security/password"
	"github.com/5w1tchy/library-api/internal/store/authors"
	"github.com/5w1tchy/library-api/internal/store/books"
	"github.com/5w1tchy/library-api/internal/store/mongoconnect"
	"github.com/5w1tchy/library-api/internal/store/users"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Println("connecting to", cfg.MongoURI)
	client, err := mongoconnect.ConnectDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	log.Println("connected to MongoDB")

	db := client.Database(cfg.MongoDB)
	userStore := users.New(db)
	authorStore := authors.New(db)
	bookStore := books.New(db)

	idxCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := userStore.EnsureIndexes(idxCtx); err != nil {
		log.Fatalf("users indexes: %v", err)
	}
	if err := authorStore.EnsureIndexes(idxCtx); err != nil {
		log.Fatalf("authors indexes: %v", err)
	}

	gate, err := password.NewGate(cfg.LoginSecret)
	if err != nil {
		log.Fatalf("login gate: %v", err)
	}

	rdb := connectRedis()

	var broker pubsub.Broker
	if rdb != nil {
		broker = pubsub.NewRedis(rdb, "library:book_added")
		log.Println("pubsub: Redis fan-out")
	} else {
		broker = pubsub.NewMemory()
		log.Println("pubsub: in-memory fan-out")
	}
	defer broker.Close()

	resolver := &graph.Resolver{
		Users:     userStore,
		Authors:   authorStore,
		Books:     bookStore,
		Broker:    broker,
		Gate:      gate,
		JWTSecret: cfg.JWTSecret,
	}
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	h := router.Router(schema, cfg.JWTSecret, userStore)
	h = mw.Recovery(h)
	h = mw.BodySizeLimit(h)
	if rdb != nil {
		tb := mw.NewRedisTokenBucket(rdb, 10, 40, mw.PerIPKey("tb"))
		h = tb.Middleware(h)
	}
	h = mw.SecurityHeaders(h)
	h = mw.ResponseTimeMiddleware(h)
	h = mw.RequestID(h)
	h = mw.Cors(h)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		// No blanket read/write timeouts: the websocket transport hijacks the
		// connection and handles its own deadlines.
	}

	log.Println("Server ready at", cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalln("Error starting server:", err)
	}
}

// connectRedis is optional wiring: with no Redis configured the API runs
// single-instance with the in-memory broker and no rate limiting.
func connectRedis() *redis.Client {
	var rdb *redis.Client

	if url := os.Getenv("REDIS_URL"); url != "" {
		opt, err := redis.ParseURL(url) // e.g. rediss://default:<token>@host:port
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = 1 * time.Second
		opt.WriteTimeout = 1 * time.Second
		rdb = redis.NewClient(opt)
	} else if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         addr,
			Username:     os.Getenv("REDIS_USER"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           0,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
	} else {
		return nil
	}

	// Fail fast if Redis isn't reachable
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Println("connected to Redis")
	return rdb
}
