package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Session) issueToken(u *model.User) (string, *Principal, error) {
	now := s.now()
	p := &Principal{
		UserID:    u.ID,
		Email:     u.Email,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ID:        p.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("issueToken: %w", err)
	}
	return signed, p, nil
}

func (s *Session) parseToken(tokenStr string) (*Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if token.Method.Alg() != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("only HS512 is allowed")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if c.Subject == "" || c.ID == "" {
		return nil, ErrInvalidToken
	}
	var exp time.Time
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	return &Principal{UserID: c.Subject, Email: c.Email, TokenID: c.ID, ExpiresAt: exp}, nil
}
