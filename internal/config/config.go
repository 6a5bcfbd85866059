package config

import (
	"errors"
	"os"
)

type Config struct {
	MongoURI    string
	MongoDB     string
	JWTSecret   []byte
	LoginSecret string // one shared passphrase for every account
	Port        string
}

func Load() (Config, error) {
	cfg := Config{
		MongoURI:    os.Getenv("MONGODB_URI"),
		MongoDB:     envOr("MONGODB_DB", "library"),
		JWTSecret:   []byte(os.Getenv("AUTH_JWT_SECRET")),
		LoginSecret: envOr("LOGIN_SHARED_SECRET", "secretpass"),
		Port:        envOr("PORT", ":4000"),
	}
	if cfg.MongoURI == "" {
		return Config{}, errors.New("MONGODB_URI not set")
	}
	if len(cfg.JWTSecret) == 0 {
		return Config{}, errors.New("AUTH_JWT_SECRET not set")
	}
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
