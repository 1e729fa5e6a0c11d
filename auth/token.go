package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	AccessTTL  = time.Hour
	RefreshTTL = 30 * 24 * time.Hour
)

var ErrWrongTokenType = errors.New("wrong token type")

// Claims is the payload of both token kinds. Subject holds the user's email.
type Claims struct {
	UID  int64  `json:"uid"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is what login and refresh hand back to the client.
type Pair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Issuer mints and verifies HS256 tokens.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type Option func(*Issuer)

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func WithTTL(access, refresh time.Duration) Option {
	return func(i *Issuer) {
		i.accessTTL = access
		i.refreshTTL = refresh
	}
}

func NewIssuer(accessSecret, refreshSecret string, opts ...Option) *Issuer {
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}
	i := &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     AccessTTL,
		refreshTTL:    RefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) IssuePair(uid int64, email string) (Pair, error) {
	access, err := i.sign(uid, email, TypeAccess, i.accessTTL, i.accessSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(uid, email, TypeRefresh, i.refreshTTL, i.refreshSecret)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Pair{Token: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(uid int64, email, typ string, ttl time.Duration, secret []byte) (string, error) {
	now := i.now().UTC().Truncate(time.Second)
	claims := Claims{
		UID:  uid,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) VerifyAccess(token string) (*Claims, error) {
	return i.verify(token, TypeAccess, i.accessSecret)
}

func (i *Issuer) VerifyRefresh(token string) (*Claims, error) {
	return i.verify(token, TypeRefresh, i.refreshSecret)
}

func (i *Issuer) verify(raw, typ string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
