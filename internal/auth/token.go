package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authorization token is missing")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims - данные, которые хранятся внутри JWT.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Gate выпускает и проверяет bearer-токены, подписанные общим секретом HS256.
type Gate struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewGate(secret, issuer string) *Gate {
	return &Gate{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue создаёт подписанный токен для userID со сроком жизни ttl.
func (g *Gate) Issue(userID string, ttl time.Duration) (string, error) {
	now := g.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    g.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Verify разбирает токен и возвращает id аутентифицированного пользователя.
func (g *Gate) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(g.now))
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
