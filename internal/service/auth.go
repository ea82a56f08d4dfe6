package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/akulov/points-api/internal/events"
	"github.com/akulov/points-api/internal/models"
	"github.com/akulov/points-api/internal/repo"
	"github.com/akulov/points-api/internal/transport"
	pkg_hash "github.com/akulov/points-api/pkg/hash"
	"github.com/akulov/points-api/pkg/logging"
	"github.com/akulov/points-api/pkg/tokens"
)

type AuthService struct {
	Repo      *repo.GormRepo
	Events    *events.Producer
	JWTSecret []byte
	TokenTTL  time.Duration
}

func (s *AuthService) issueToken(u *models.User) (string, error) {
	exp := time.Now().Add(s.TokenTTL)
	return tokens.Issue(u.ID, u.Username, u.Email, u.Role, s.JWTSecret, exp)
}

func (s *AuthService) Register(ctx context.Context, username, email, password, role string) (*transport.AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || email == "" || password == "" || role == "" {
		l.Warn("register rejected", "status", 400, "reason", "missing fields")
		return nil, ErrValidation
	}
	// Admin creation through the public path is a distinct rejection from a
	// role nobody has ever heard of.
	if role == models.RoleAdmin {
		l.Warn("register rejected", "status", 403, "reason", "admin role requested", "username", username)
		return nil, ErrAdminRegistration
	}
	if !slices.Contains(models.RegistrableRoles, role) {
		l.Warn("register rejected", "status", 400, "reason", "unknown role", "role", role)
		return nil, ErrInvalidRole
	}

	exists, err := s.Repo.UserExists(ctx, username, email)
	if err != nil {
		l.Error("register failed", "status", 500, "error", err)
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if exists {
		l.Warn("register rejected", "status", 400, "reason", "duplicate username or email")
		return nil, ErrUserExists
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("register failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		Points:       0,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		l.Error("register failed", "status", 500, "error", err)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.issueToken(&user)
	if err != nil {
		l.Error("register failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, fmt.Errorf("signing token: %w", err)
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	l.Info("user registered", "user_id", user.ID, "role", user.Role)
	return &transport.AuthResult{Token: token, User: transport.UserViewFrom(&user)}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*transport.AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		l.Warn("login rejected", "status", 400, "reason", "missing fields")
		return nil, ErrValidation
	}

	// Unknown email and wrong password collapse into the same rejection so
	// the response never confirms whether an account exists.
	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login rejected", "status", 401, "reason", "invalid credentials")
			return nil, ErrInvalidCredentials
		}
		l.Error("login failed", "status", 500, "error", err)
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login rejected", "status", 401, "reason", "invalid credentials")
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		l.Error("login failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, fmt.Errorf("signing token: %w", err)
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_login",
		"user_id": user.ID,
	})

	l.Info("login successful", "user_id", user.ID)
	return &transport.AuthResult{Token: token, User: transport.UserViewFrom(user)}, nil
}

// Invalidate appends the token string to the revocation ledger. There is no
// check that the string was ever a valid token.
func (s *AuthService) Invalidate(ctx context.Context, tokenStr, userLabel string) error {
	l := logging.FromContext(ctx).With("svc", "auth.invalidate")

	if err := s.Repo.InsertRevocation(ctx, tokenStr, userLabel); err != nil {
		l.Error("invalidate failed", "status", 500, "error", err)
		return fmt.Errorf("recording revocation: %w", err)
	}

	s.publish(ctx, userLabel, map[string]any{
		"type":       "token_revoked",
		"user_label": userLabel,
	})

	l.Info("token invalidated", "user_label", userLabel)
	return nil
}

// publish is fire-and-forget: a broker problem is logged and never fails the
// request that triggered the event.
func (s *AuthService) publish(ctx context.Context, key string, event map[string]any) {
	if err := s.Events.PublishEvent(ctx, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
