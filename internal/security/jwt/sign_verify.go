package jwtutil

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Sign returns an HS256 token whose payload carries {username, id}.
func Sign(secret []byte, username, userID string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, NewLoginClaims(username, userID))
	return t.SignedString(secret)
}

// Parse verifies the HS256 signature and returns the claims.
func Parse(secret []byte, tokenStr string) (*LoginClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.ParseWithClaims(tokenStr, &LoginClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*LoginClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
