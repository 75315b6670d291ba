package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the portal session cookie payload: which session record to load
// plus enough identity to route-guard without a store round trip.
type Claims struct {
	SessionID string `json:"sid"`
	UserID    int    `json:"uid"`
	UserType  string `json:"utype"`
	jwt.RegisteredClaims
}

func SignSessionJWT(secret string, sessionID string, userID int, userType string, expiresMin int) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		UserID:    userID,
		UserType:  userType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresMin) * time.Minute)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

func ParseSessionJWT(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
