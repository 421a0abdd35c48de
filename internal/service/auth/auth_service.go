package auth

import (
	"context"
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vx-landing/internal/domain"
	"vx-landing/internal/service"
	"vx-landing/pkg/logger"
)

const (
	// TokenTTL is how long an admin token stays valid
	TokenTTL = 24 * time.Hour
	// Issuer is stamped into every admin token
	Issuer = "vx-landing"
)

var (
	// ErrInvalidCredentials is returned when login credentials do not match
	ErrInvalidCredentials = stderrors.New("invalid credentials")
	// ErrInvalidToken is returned for any token that fails verification
	ErrInvalidToken = stderrors.New("invalid token")
)

// Claims are the JWT claims of an admin session
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service implements the AuthService interface
type Service struct {
	username string
	password string
	secret   []byte
	now      func() time.Time
	logger   *logger.Logger
}

// NewService creates a new auth service for the configured admin identity
func NewService(username, password, secret string, logger *logger.Logger) *Service {
	return &Service{
		username: username,
		password: password,
		secret:   []byte(secret),
		now:      time.Now,
		logger:   logger,
	}
}

var _ service.AuthService = (*Service)(nil)

// WithClock overrides the clock used to stamp and check tokens
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Login checks the credentials and mints a signed admin token. Both fields
// are always compared so timing does not reveal which one was wrong.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password))
	if userOK&passOK != 1 {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := Claims{
		Username: s.username,
		Role:     domain.AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   s.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}

	s.logger.WithField("username", s.username).Debug("Admin token issued")
	return token, nil
}

// VerifyToken validates signature, expiry and issuer, then requires the
// embedded username to still be the configured admin.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*domain.AdminUser, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if subtle.ConstantTimeCompare([]byte(claims.Username), []byte(s.username)) != 1 {
		return nil, fmt.Errorf("%w: unknown principal", ErrInvalidToken)
	}

	return &domain.AdminUser{Username: claims.Username}, nil
}
