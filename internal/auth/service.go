package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/velorie/teamhub-backend/internal/users"
	pkgauth "github.com/velorie/teamhub-backend/pkg/auth"
	"github.com/velorie/teamhub-backend/pkg/config"
	"github.com/velorie/teamhub-backend/pkg/db/models"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

// LoginResult is the outcome of a successful credential check.
type LoginResult struct {
	Token string
	User  *models.User
}

// Service authenticates users and mints access tokens.
type Service interface {
	Login(ctx context.Context, login, password string) (*LoginResult, error)
}

// ServiceParams carries the auth service dependencies.
type ServiceParams struct {
	Logger *logger.Logger
	Repo   users.Repository
	JWT    config.JWTConfig
}

type service struct {
	logg *logger.Logger
	repo users.Repository
	jwt  config.JWTConfig
	now  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "jwt secret required")
	}
	return &service{
		logg: params.Logger,
		repo: params.Repo,
		jwt:  params.JWT,
		now:  time.Now,
	}, nil
}

// Login verifies the credentials. A missing account and a wrong password
// produce the same error so logins cannot be enumerated.
func (s *service) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "bad credentials")
	}

	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if users.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "bad credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "bad credentials")
	}

	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Login:  user.Login,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user authenticated")
	return &LoginResult{Token: token, User: user}, nil
}
