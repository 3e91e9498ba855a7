package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ict-ticketing/internal/domain/apperr"
	"ict-ticketing/internal/domain/user"
)

const TokenType = "bearer"

var (
	ErrInvalidCredentials = apperr.New(apperr.KindAuthentication, "incorrect username or password")
	ErrUnauthenticated    = apperr.New(apperr.KindAuthentication, "could not validate credentials")
	ErrForbidden          = apperr.New(apperr.KindAuthorization, "insufficient permissions")
	ErrMissingCredentials = apperr.New(apperr.KindValidation, "username and password are required")
	ErrMissingFields      = apperr.New(apperr.KindValidation, "username, email and password are required")
)

type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Parse(token string) (subject string, err error)
}

type Usecase struct {
	users    user.Repository
	hasher   Hasher
	tokens   TokenIssuer
	tokenTTL time.Duration
	log      *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewUsecase(users user.Repository, hasher Hasher, tokens TokenIssuer, tokenTTL time.Duration, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{users: users, hasher: hasher, tokens: tokens, tokenTTL: tokenTTL, log: log}
}

func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	role := user.Role(in.Role)
	if role == "" {
		role = user.RoleUser
	}
	if !role.Valid() {
		return nil, user.ErrInvalidRole
	}

	// advisory: the unique indexes still decide on a race
	if err := u.ensureAbsent(ctx, u.users.GetByUsername, in.Username, user.ErrDuplicateUsername); err != nil {
		return nil, err
	}
	if err := u.ensureAbsent(ctx, u.users.GetByEmail, in.Email, user.ErrDuplicateEmail); err != nil {
		return nil, err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	nu := &user.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hashed,
		Name:           in.Name,
		Role:           role,
	}
	if err := u.users.Create(ctx, nu); err != nil {
		return nil, err
	}
	u.log.Info("user registered", zap.Uint64("user_id", nu.ID), zap.String("role", string(nu.Role)))
	return nu, nil
}

func (u *Usecase) ensureAbsent(ctx context.Context, lookup func(context.Context, string) (*user.User, error), key string, dup error) error {
	_, err := lookup(ctx, key)
	switch {
	case err == nil:
		return dup
	case errors.Is(err, user.ErrNotFound):
		return nil
	default:
		return err
	}
}

// Authenticate never says which half of the credentials was wrong.
func (u *Usecase) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	found, err := u.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// burn a comparable amount of time so existence does not leak
			u.hasher.Verify(u.dummy(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.hasher.Verify(found.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	return found, nil
}

func (u *Usecase) dummy() string {
	u.dummyOnce.Do(func() {
		h, err := u.hasher.Hash("not-a-real-password")
		if err != nil {
			u.log.Warn("dummy hash unavailable", zap.Error(err))
			return
		}
		u.dummyHash = h
	})
	return u.dummyHash
}

func (u *Usecase) Login(ctx context.Context, username, password string) (*TokenDTO, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	found, err := u.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	tok, err := u.IssueClaim(found, u.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenDTO{AccessToken: tok, TokenType: TokenType}, nil
}

func (u *Usecase) IssueClaim(usr *user.User, ttl time.Duration) (string, error) {
	tok, err := u.tokens.Issue(usr.Username, ttl)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return tok, nil
}

// ResolveIdentity maps every token problem, including a deleted subject, to ErrUnauthenticated.
func (u *Usecase) ResolveIdentity(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	subject, err := u.tokens.Parse(token)
	if err != nil {
		u.log.Debug("token rejected", zap.Error(err))
		return nil, ErrUnauthenticated
	}
	found, err := u.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return found, nil
}

// Authorize fails closed: no identity is unauthenticated, a lower role is forbidden.
func Authorize(u *user.User, min user.Role) error {
	if u == nil {
		return ErrUnauthenticated
	}
	if !u.Role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}
