package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// CatalogTokenService mints short-lived HS256 tokens accepted by the
// external card catalogue API. The engine uses sync tokens for its own
// card-stat lookups; clients request read tokens for card art and stats.
type CatalogTokenService struct {
	catalogSecret   string
	catalogIssuer   string
	catalogAudience string
}

const (
	CatalogTokenActionRead = "read"
	CatalogTokenActionSync = "sync"
)

func NewCatalogTokenService(secret, issuer, audience string) *CatalogTokenService {
	return &CatalogTokenService{
		catalogSecret:   secret,
		catalogIssuer:   issuer,
		catalogAudience: audience,
	}
}

// GenerateToken returns a signed token for the given subject and action.
func (s *CatalogTokenService) GenerateToken(subject, action string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("catalog token service is nil")
	}
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if s.catalogSecret == "" || s.catalogIssuer == "" || s.catalogAudience == "" {
		return "", fmt.Errorf("catalog token config is incomplete")
	}

	switch action {
	case CatalogTokenActionRead, CatalogTokenActionSync:
	default:
		return "", fmt.Errorf("unsupported catalog token action: %s", action)
	}

	claims := jwt.MapClaims{
		"iss":   s.catalogIssuer,
		"sub":   subject,
		"aud":   s.catalogAudience,
		"exp":   time.Now().Add(time.Hour * 1).Unix(),
		"scope": action,
		"jti":   fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.catalogSecret))
}
