package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/utils"
)

// notifyTimeout bounds the background publish of lifecycle events.
const notifyTimeout = 10 * time.Second

// UserStore is the credential store.  Each call is an atomic operation on a
// whole user document (user row plus addresses).
type UserStore interface {
	FindByEmailOrUsername(ctx context.Context, email, username string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	Save(ctx context.Context, u model.User) (model.User, error)
}

// Notifier publishes user lifecycle events to other services.
type Notifier interface {
	UserCreated(ctx context.Context, u model.User) error
}

// TokenIssuer is the signing half of utils.TokenCodec.
type TokenIssuer interface {
	Issue(identity model.Identity) (utils.SessionToken, error)
}

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      model.Role
}

// AuthService implements registration and login.
type AuthService struct {
	users      UserStore
	tokens     TokenIssuer
	notifier   Notifier
	bcryptCost int
	log        *zap.Logger
}

// NewAuthService wires the store, token issuer and notifier.  A nil notifier
// disables event publishing.
func NewAuthService(users UserStore, tokens TokenIssuer, notifier Notifier, bcryptCost int, log *zap.Logger) *AuthService {
	if users == nil || tokens == nil {
		panic("nil dependency passed to NewAuthService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, tokens: tokens, notifier: notifier, bcryptCost: bcryptCost, log: log}
}

// Register creates the account, announces it and signs the caller in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, utils.SessionToken, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	_, err := s.users.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		return model.User{}, utils.SessionToken{}, ErrConflict
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.User{}, utils.SessionToken{}, wrapInternal(err, "lookup user")
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, utils.SessionToken{}, wrapInternal(err, "hash password")
	}

	role := in.Role
	if !role.Valid() {
		role = model.RoleUser
	}
	user, err := s.users.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     model.FullName{FirstName: in.FirstName, LastName: in.LastName},
		Role:         role,
		Addresses:    []model.Address{},
	})
	if err != nil {
		// the lookup above races with concurrent registrations; the unique
		// index is the final word
		if errors.Is(err, repository.ErrUserExists) {
			return model.User{}, utils.SessionToken{}, ErrConflict
		}
		return model.User{}, utils.SessionToken{}, wrapInternal(err, "create user")
	}

	s.notifyCreated(ctx, user)

	tok, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return model.User{}, utils.SessionToken{}, wrapInternal(err, "issue token")
	}
	return user, tok, nil
}

// Login accepts either the username or the email as identifier.  Unknown
// identifiers and wrong passwords both produce ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (model.User, utils.SessionToken, error) {
	identifier = strings.TrimSpace(identifier)
	user, err := s.users.FindByEmailOrUsername(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			utils.BurnPasswordCheck(password)
			return model.User{}, utils.SessionToken{}, ErrInvalidCredentials
		}
		return model.User{}, utils.SessionToken{}, wrapInternal(err, "lookup user")
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return model.User{}, utils.SessionToken{}, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return model.User{}, utils.SessionToken{}, wrapInternal(err, "issue token")
	}
	return user, tok, nil
}

// notifyCreated publishes in the background so a slow or unavailable broker
// never delays the registration response.
func (s *AuthService) notifyCreated(ctx context.Context, u model.User) {
	if s.notifier == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, notifyTimeout)
		defer cancel()
		if err := s.notifier.UserCreated(ctx, u); err != nil {
			s.log.Warn("publish user created failed", zap.String("user_id", u.ID), zap.Error(err))
		}
	}()
}
