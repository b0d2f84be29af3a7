package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSigningKey = errors.New("auth: signing key is empty")

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTer issues HS256 tokens bound to a user id. Key is called on every
// Issue/Parse so a rotated secret takes effect without rebuilding the issuer.
type JWTer struct {
	Key    func() []byte
	Issuer string
	TTL    time.Duration // 0 = no exp claim
	Now    func() time.Time
}

func StaticKey(secret string) func() []byte {
	return func() []byte { return []byte(secret) }
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) key() ([]byte, error) {
	if j.Key == nil {
		return nil, ErrNoSigningKey
	}
	k := j.Key()
	if len(k) == 0 {
		return nil, ErrNoSigningKey
	}
	return k, nil
}

func (j *JWTer) Issue(userID string) (string, error) {
	key, err := j.key()
	if err != nil {
		return "", err
	}
	now := j.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   j.Issuer,
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if j.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.TTL))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// Parse is not mounted on any route; it backs tests and operator tooling.
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	key, err := j.key()
	if err != nil {
		return nil, err
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}
