package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ukydev/fleet-admin/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the fixed lifetime of an API token.
const TokenTTL = 7 * 24 * time.Hour

// Claim names shared with the legacy token format.
const (
	ClaimSubject     = "token"
	ClaimAccountType = "accountType"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Service issues and verifies API tokens.
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	clock     clock.Clock
}

// NewService creates a token service signing with secret. A nil clock
// uses wall time.
func NewService(secret string, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		jwtSecret: []byte(secret),
		tokenExp:  TokenTTL,
		clock:     clk,
	}
}

// GenerateToken signs a token for subject. Extra claims are merged in but
// cannot override the subject or the time claims.
func (s *Service) GenerateToken(subject string, extra map[string]interface{}) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims[ClaimSubject] = subject
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.tokenExp).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a token and returns its claims. The error is
// ErrExpiredToken for a well-signed token past its expiry and
// ErrInvalidToken for anything else that fails.
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	},
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subject, ok := mc[ClaimSubject].(string)
	if !ok || subject == "" {
		return nil, ErrInvalidToken
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	role, _ := mc[ClaimAccountType].(string)

	all := make(map[string]interface{}, len(mc))
	for k, v := range mc {
		all[k] = v
	}

	return &models.Claims{
		Subject: subject,
		Role:    models.Role(role),
		Exp:     exp.Unix(),
		All:     all,
	}, nil
}

// HashPassword hashes an admin password with bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a bcrypt hash.
func (s *Service) CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
