// Package services holds the application services composing repositories,
// the attachment handler and the session token layer. Handlers talk to
// services only; services return the sentinel errors from internal/common.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/passwords"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

type UserService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	jwtSecret               []byte
	sessionValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                      db,
		repomanager:             m,
		jwtSecret:               []byte(cfg.SecretKey),
		sessionValidityDuration: cfg.SessionValidityDuration,
	}
}

// Register creates an account. The username must be unique and both fields
// non-empty; the confirmation must match the password. Only a one-way hash
// of the password is stored.
func (s *UserService) Register(ctx context.Context, username, password, confirm string) (*models.User, error) {

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.ErrorValidation
	}
	if password != confirm {
		return nil, common.ErrorPasswordsDiffer
	}

	hash, err := passwords.Hash(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate validates a login attempt. Unknown username and wrong
// password both map to the same generic ErrorUnauthorized so account
// existence is not leaked.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !passwords.Verify(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// IssueSession mints the signed session token handed to the browser on
// successful login.
func (s *UserService) IssueSession(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, s.jwtSecret, s.sessionValidityDuration)
}

// ResolveSession maps a session token back to the user it was issued for.
// A valid token referencing a user that no longer resolves yields
// ErrorUnauthorized.
func (s *UserService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}
