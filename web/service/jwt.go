package service

import (
	"strconv"
	"time"

	"github.com/aguszappia/proyecto-de-software/config"
	"github.com/aguszappia/proyecto-de-software/util/common"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	accessTokenTTL  = time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// TokenClaims carries the token type next to the registered claims.
type TokenClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is what the public login and refresh endpoints return.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenService issues and validates the HS256 tokens of the public API.
type TokenService struct{}

func (s *TokenService) secret() []byte {
	return []byte(config.GetJWTSecret())
}

// IssueTokenPair signs a fresh access/refresh pair for the user.
func (s *TokenService) IssueTokenPair(userId int) (*TokenPair, error) {
	access, err := s.sign(userId, TokenTypeAccess, accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userId, TokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *TokenService) sign(userId int, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userId),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret())
}

// ParseToken validates signature and expiry and checks the expected type.
// It returns the user id the token was issued for.
func (s *TokenService) ParseToken(tokenString, expectedType string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.NewErrorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret(), nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return 0, common.NewError("invalid token")
	}
	if claims.Type != expectedType {
		return 0, common.NewErrorf("expected %s token, got %s", expectedType, claims.Type)
	}
	userId, err := strconv.Atoi(claims.Subject)
	if err != nil || userId <= 0 {
		return 0, common.NewError("invalid token subject")
	}
	return userId, nil
}
