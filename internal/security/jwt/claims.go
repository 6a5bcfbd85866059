package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginClaims is the token payload issued by the login mutation. Clients
// decode it as {username, id}, so the user id travels in its own claim rather
// than the registered subject. No expiry is set; tokens stay valid until the
// signing secret rotates.
type LoginClaims struct {
	Username string `json:"username"`
	UserID   string `json:"id"`
	jwt.RegisteredClaims
}

func NewLoginClaims(username, userID string) LoginClaims {
	return LoginClaims{
		Username: username,
		UserID:   userID,
	}
}
