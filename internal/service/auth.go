package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/mini_shop/internal/events"
	"github.com/Skotchmaster/mini_shop/internal/hash"
	"github.com/Skotchmaster/mini_shop/internal/logging"
	"github.com/Skotchmaster/mini_shop/internal/models"
	"github.com/Skotchmaster/mini_shop/internal/repo"
	"github.com/Skotchmaster/mini_shop/internal/tokens"
)

type UserStore interface {
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type AuthService struct {
	Users      UserStore
	Events     events.Publisher
	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int

	dummyOnce sync.Once
	dummyHash string
}

func (s *AuthService) Register(ctx context.Context, username, password, role string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	if username == "" {
		return "", validationf("username is required")
	}
	if password == "" {
		return "", validationf("password is required")
	}
	switch role {
	case "":
		role = models.RoleCustomer
	case models.RoleAdmin, models.RoleCustomer:
	default:
		return "", validationf("role must be %q or %q", models.RoleAdmin, models.RoleCustomer)
	}

	pwHash, err := hash.HashPassword(password, s.BcryptCost)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Users.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			l.Warn("register_error", "status", 409, "reason", "user already exists")
			return "", fmt.Errorf("user %q: %w", username, ErrConflict)
		}
		l.Error("register_error", "status", 500, "reason", "db_error", "error", err)
		return "", fmt.Errorf("create user: %w", err)
	}

	token, err := tokens.Sign(s.JWTSecret, user.ID, user.Role, s.TokenTTL)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	publish(ctx, s.Events, events.TopicUser, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	l.Info("register_success", "user_id", user.ID)
	return token, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			l.Error("login_error", "status", 500, "error", err)
			return "", fmt.Errorf("find user: %w", err)
		}
		// unknown usernames cost one bcrypt comparison, like wrong passwords
		hash.CheckPassword(s.dummy(), password)
		l.Warn("login_failed", "status", 401)
		return "", ErrInvalidCredentials
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401)
		return "", ErrInvalidCredentials
	}

	token, err := tokens.Sign(s.JWTSecret, user.ID, user.Role, s.TokenTTL)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	publish(ctx, s.Events, events.TopicUser, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login_success", "user_id", user.ID)
	return token, nil
}

// Verify checks a raw token value and returns the identity it carries.
func (s *AuthService) Verify(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := tokens.Parse(s.JWTSecret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Identity{ID: claims.UserID, Role: claims.Role}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = hash.HashPassword("dummy-password", s.BcryptCost)
	})
	return s.dummyHash
}
