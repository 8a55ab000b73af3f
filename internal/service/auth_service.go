package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"todo-planner/internal/logger"
	"todo-planner/internal/model"
	"todo-planner/internal/repository"
	"todo-planner/internal/tokenstore"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// Claims identify the user a token was issued to.
type Claims struct {
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

// AuthService registers users and issues bearer tokens.
type AuthService struct {
	users   *repository.UserRepository
	revoked tokenstore.Revoker
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewAuthService(users *repository.UserRepository, revoked tokenstore.Revoker, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:   users,
		revoked: revoked,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *AuthService) SignUp(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	email := normalizeEmail(creds.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		logger.WarnContext(ctx, "Email already exists", "email", email)
		return model.AuthResult{}, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent sign-up may win between the lookup and the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			logger.WarnContext(ctx, "Email already exists", "email", email)
			return model.AuthResult{}, ErrEmailExists
		}
		return model.AuthResult{}, err
	}
	logger.InfoContext(ctx, "User created", "user_id", user.ID)

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	email := normalizeEmail(creds.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.WarnContext(ctx, "Login failed - email not found", "email", email)
			return model.AuthResult{}, ErrInvalidCredentials
		}
		return model.AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		logger.WarnContext(ctx, "Login failed - invalid password", "user_id", user.ID)
		return model.AuthResult{}, ErrInvalidCredentials
	}

	logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return s.issue(user)
}

// Me returns the user behind a verified token.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims Claims) error {
	if err := s.revoked.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	logger.InfoContext(ctx, "User logged out", "user_id", claims.UserID)
	return nil
}

// ParseToken verifies signature, expiry and revocation.
func (s *AuthService) ParseToken(ctx context.Context, raw string) (Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}

	registered, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || registered.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(registered.Subject)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{UserID: userID, TokenID: registered.ID, ExpiresAt: registered.ExpiresAt.Time}
	revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return Claims{}, err
	}
	if revoked {
		return Claims{}, ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) issue(user *model.User) (model.AuthResult, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("sign token: %w", err)
	}
	return model.AuthResult{Token: signed, User: *user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
