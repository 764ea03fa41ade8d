package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/monster_tracker/internal/hash"
	"github.com/Skotchmaster/monster_tracker/internal/logging"
	"github.com/Skotchmaster/monster_tracker/internal/models"
	"github.com/Skotchmaster/monster_tracker/internal/mykafka"
	"github.com/Skotchmaster/monster_tracker/internal/repo"
	"github.com/Skotchmaster/monster_tracker/internal/tokens"
)

type TokenResult struct {
	AccessToken string
	Username    string
}

type AuthService struct {
	Repo   repo.Users
	Tokens *tokens.Issuer
	Events mykafka.Publisher
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*TokenResult, error) {
	l := logging.FromContext(ctx)

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if len(password) > hash.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, hash.MaxPasswordBytes)
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_hash_failed", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: hashed}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Info("register_conflict", "username", username)
			return nil, ErrConflict
		}
		l.Error("register_error", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	res, err := s.issue(username)
	if err != nil {
		l.Error("register_token_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, mykafka.NewEvent(mykafka.EventUserRegistered, username))
	l.Info("user_registered", "username", username)
	return res, nil
}

// Login reports ErrUnauthorized for both an unknown user and a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResult, error) {
	l := logging.FromContext(ctx)

	user, err := s.Repo.FindUser(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Info("login_failed", "username", username)
			return nil, ErrUnauthorized
		}
		l.Error("login_error", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Info("login_failed", "username", username)
		return nil, ErrUnauthorized
	}

	res, err := s.issue(user.Username)
	if err != nil {
		l.Error("login_token_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, mykafka.NewEvent(mykafka.EventUserLoggedIn, user.Username))
	return res, nil
}

// VerifyToken returns the subject of a valid access token.
func (s *AuthService) VerifyToken(token string) (string, error) {
	username, err := s.Tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return username, nil
}

func (s *AuthService) issue(username string) (*TokenResult, error) {
	token, _, err := s.Tokens.Issue(username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &TokenResult{AccessToken: token, Username: username}, nil
}

func (s *AuthService) publish(ctx context.Context, ev mykafka.Event) {
	publishEvent(ctx, s.Events, ev)
}

func publishEvent(ctx context.Context, pub mykafka.Publisher, ev mykafka.Event) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(ctx, ev.Username, ev); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "event", ev.Type, "error", err)
	}
}
