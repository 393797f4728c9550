package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vaughan-dsouza/bookcart/internal/models"
)

// TTL is the fixed lifetime of an identity token.
const TTL = time.Hour

// ErrInvalidToken covers malformed, tampered, unknown-key and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity carried by a token.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Keyring maps key ids to HMAC secrets. ActiveKID signs new tokens; every
// key in Keys is accepted for verification so old keys can be retired
// after their tokens expire.
type Keyring struct {
	ActiveKID string
	Keys      map[string][]byte
}

// ParseKeyring parses "kid:secret,kid:secret". The first entry is active
// unless activeKID is given.
func ParseKeyring(list, activeKID string) (Keyring, error) {
	kr := Keyring{Keys: map[string][]byte{}}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kid, secret, ok := strings.Cut(part, ":")
		kid = strings.TrimSpace(kid)
		if !ok || kid == "" || secret == "" {
			return Keyring{}, fmt.Errorf("token: malformed key entry %q", kid)
		}
		if _, dup := kr.Keys[kid]; dup {
			return Keyring{}, fmt.Errorf("token: duplicate key id %q", kid)
		}
		kr.Keys[kid] = []byte(secret)
		if kr.ActiveKID == "" {
			kr.ActiveKID = kid
		}
	}
	if activeKID = strings.TrimSpace(activeKID); activeKID != "" {
		kr.ActiveKID = activeKID
	}
	return kr, kr.Validate()
}

// SingleKey builds a keyring holding one secret.
func SingleKey(kid, secret string) Keyring {
	return Keyring{ActiveKID: kid, Keys: map[string][]byte{kid: []byte(secret)}}
}

func (k Keyring) Validate() error {
	if len(k.Keys) == 0 {
		return errors.New("token: no signing keys configured")
	}
	if _, ok := k.Keys[k.ActiveKID]; !ok {
		return fmt.Errorf("token: active key id %q not in keyring", k.ActiveKID)
	}
	return nil
}

// Service issues and verifies HS256 identity tokens.
type Service struct {
	keys Keyring
	now  func() time.Time
}

func NewService(keys Keyring) (*Service, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	return &Service{keys: keys, now: time.Now}, nil
}

// WithClock returns a copy of s that reads time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// Issue signs a token for email/role expiring TTL after issuance.
func (s *Service) Issue(email string, role models.Role) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(TTL)

	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = s.keys.ActiveKID

	signed, err := tok.SignedString(s.keys.Keys[s.keys.ActiveKID])
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, key id and expiry and returns the claims.
func (s *Service) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := s.keys.Keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	return &claims, nil
}
