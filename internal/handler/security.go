package handler

import (
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/xenking/sales-api/internal/domain/auth"
)

// HeaderAPIKey is the request header carrying a raw API key.
const HeaderAPIKey = "api_key"

var _ Authenticator = (*SecurityHandler)(nil)

// Claims are the JWT claims accepted as bearer credentials. The subject is
// the caller id that owns created orders.
type Claims struct {
	Name   string   `json:"name,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// SecurityHandler authenticates requests with HMAC-SHA256 hashed API keys
// or, when a signing secret is configured, HS256 bearer tokens.
type SecurityHandler struct {
	apikeys   auth.Repository
	pepper    []byte
	jwtSecret []byte
}

// NewSecurityHandler creates a SecurityHandler. An empty jwtSecret disables
// bearer tokens.
func NewSecurityHandler(apikeys auth.Repository, pepper, jwtSecret []byte) *SecurityHandler {
	return &SecurityHandler{
		apikeys:   apikeys,
		pepper:    pepper,
		jwtSecret: jwtSecret,
	}
}

// Authenticate resolves the caller of r. Bad or missing credentials yield
// auth.ErrUnauthenticated; any other error is a lookup failure.
func (s *SecurityHandler) Authenticate(r *http.Request) (*auth.Caller, error) {
	if key := r.Header.Get(HeaderAPIKey); key != "" {
		return s.apiKey(r, key)
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && len(s.jwtSecret) > 0 {
		return s.bearer(token)
	}
	return nil, auth.ErrUnauthenticated
}

func (s *SecurityHandler) apiKey(r *http.Request, key string) (*auth.Caller, error) {
	hexHash := auth.HashAPIKey(s.pepper, key)

	info, err := s.apikeys.FindByHash(r.Context(), hexHash)
	if err != nil {
		if errors.Is(err, auth.ErrKeyNotFound) {
			return nil, auth.ErrUnauthenticated
		}
		return nil, errors.Wrap(err, "look up api key")
	}

	// The repository may hand back a row for a different hash.
	computed, _ := hex.DecodeString(hexHash)
	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil || subtle.ConstantTimeCompare(computed, stored) != 1 {
		return nil, auth.ErrUnauthenticated
	}
	return info.Caller(), nil
}

func (s *SecurityHandler) bearer(token string) (*auth.Caller, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(auth.ErrUnauthenticated, err.Error())
	}
	if claims.Subject == "" {
		return nil, errors.Wrap(auth.ErrUnauthenticated, "token has no subject")
	}
	return &auth.Caller{
		ID:     claims.Subject,
		Name:   claims.Name,
		Scopes: claims.Scopes,
	}, nil
}

// SignToken issues a bearer token for c valid for ttl.
func SignToken(secret []byte, c *auth.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:   c.Name,
		Scopes: c.Scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}
