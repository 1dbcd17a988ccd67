package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

const (
	audienceAccess  = "aithena-api"
	audienceRefresh = "aithena-refresh"
)

// Identity is the token-relevant slice of a user.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  user.Role
}

type Claims struct {
	Email string    `json:"email,omitempty"`
	Name  string    `json:"name,omitempty"`
	Role  user.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresAt  int64  `json:"access_expires_at"`
	RefreshExpiresAt int64  `json:"refresh_expires_at"`
}

// TokenService issues and verifies HMAC-signed access/refresh pairs.
// Stateless: there is no revocation list, a refresh token stays valid
// until natural expiry.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair signs a fresh access+refresh pair for id.
func (s *TokenService) IssuePair(id Identity) (TokenPair, error) {
	now := s.now()
	access, err := s.sign(id, audienceAccess, now, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(id, audienceRefresh, now, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(s.accessTTL).Unix(),
		RefreshExpiresAt: now.Add(s.refreshTTL).Unix(),
	}, nil
}

func (s *TokenService) sign(id Identity, audience string, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// VerifyAccess parses an access token. Signature, expiry, issuer and
// audience must all check out.
func (s *TokenService) VerifyAccess(token string) (*Claims, error) {
	return s.verify(token, audienceAccess)
}

// VerifyRefresh parses a refresh token.
func (s *TokenService) VerifyRefresh(token string) (*Claims, error) {
	return s.verify(token, audienceRefresh)
}

func (s *TokenService) verify(tokenStr, audience string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, apperr.BadToken("invalid or expired token")
	}
	c, ok := token.Claims.(*Claims)
	if !ok {
		return nil, apperr.BadToken("invalid or expired token")
	}
	return c, nil
}
