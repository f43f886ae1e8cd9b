package storage

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSignature = errors.New("invalid or expired blob signature")

type blobClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// URLSigner mints and verifies HS256 tokens that grant read access to one key
// until they expire.
type URLSigner struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

func NewURLSigner(secret, baseURL string) *URLSigner {
	return &URLSigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Sign returns a download URL for key served under /api/v1/blobs/.
func (s *URLSigner) Sign(key string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &blobClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign blob token")
	}
	return s.baseURL + "/api/v1/blobs/" + token, nil
}

// Verify returns the key a token grants access to.
func (s *URLSigner) Verify(tokenStr string) (string, error) {
	claims := &blobClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.Key == "" {
		return "", ErrInvalidSignature
	}
	return claims.Key, nil
}
