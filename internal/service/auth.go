package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// Session is the result of a successful login or refresh.
type Session struct {
	Tokens utils.TokenPair
	UserID uint64
	Rol    string
}

// RegisterInput is a validated self-registration request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// RegisterResult is the created user plus any non-fatal warnings (e.g. the
// default role could not be assigned).
type RegisterResult struct {
	User     model.User
	Warnings []string
}

// ProfileInput holds the optional fields of a partial profile update.
type ProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
}

// AuthService authenticates users and manages their profile.
type AuthService struct {
	tx     database.TxRunner
	users  UserStore
	roles  RoleStore
	tokens TokenStore
	issuer *utils.Issuer
	log    *zap.Logger

	BcryptCost  int
	DefaultRole string
	RolePolicy  string
}

func NewAuthService(cfg config.Config, tx database.TxRunner, users UserStore, roles RoleStore, tokens TokenStore,
	issuer *utils.Issuer, log *zap.Logger) *AuthService {
	return &AuthService{
		tx:          tx,
		users:       users,
		roles:       roles,
		tokens:      tokens,
		issuer:      issuer,
		log:         log,
		BcryptCost:  cfg.BcryptCost,
		DefaultRole: cfg.DefaultRoleName,
		RolePolicy:  cfg.DefaultRolePolicy,
	}
}

func noAccount() error {
	return &AuthError{Code: CodeNoAccount, Message: "No active account found with the given credentials"}
}

// Login checks credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Session{}, noAccount()
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, noAccount()
	}
	if !u.IsActive {
		return Session{}, &AuthError{Code: CodeInactiveAccount, Message: "This account is inactive"}
	}
	return s.issue(ctx, u)
}

func (s *AuthService) issue(ctx context.Context, u model.User) (Session, error) {
	rol := u.RoleClaim()
	pair, err := s.issuer.IssuePair(u.ID, rol)
	if err != nil {
		return Session{}, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashToken(pair.Refresh.Token), pair.Refresh.Exp); err != nil {
		return Session{}, fmt.Errorf("save refresh: %w", err)
	}
	return Session{Tokens: pair, UserID: u.ID, Rol: rol}, nil
}

func tokenNotValid() error {
	return &AuthError{Code: CodeTokenNotValid, Message: "Token is invalid or expired"}
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
	raw = strings.TrimSpace(raw)
	if _, err := s.issuer.Parse(raw, utils.RefreshTokenType); err != nil {
		return Session{}, tokenNotValid()
	}
	userID, err := s.tokens.ConsumeRefresh(ctx, utils.HashToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRefresh) {
			return Session{}, tokenNotValid()
		}
		return Session{}, fmt.Errorf("consume refresh: %w", err)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Session{}, noAccount()
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return Session{}, &AuthError{Code: CodeInactiveAccount, Message: "This account is inactive"}
	}
	return s.issue(ctx, u)
}

// Logout revokes one refresh token.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if _, err := s.issuer.Parse(raw, utils.RefreshTokenType); err != nil {
		return tokenNotValid()
	}
	if _, err := s.tokens.ConsumeRefresh(ctx, utils.HashToken(raw)); err != nil {
		if errors.Is(err, repository.ErrInvalidRefresh) {
			return tokenNotValid()
		}
		return err
	}
	return nil
}

// LogoutAll revokes every refresh token of the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint64) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

// Register creates a user and assigns the configured default role according
// to RolePolicy.  User insert and role assignment share one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	var out RegisterResult
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		u := model.User{
			Username:  strings.TrimSpace(in.Username),
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
		}

		role, err := s.roles.GetByNameTx(ctx, tx, s.DefaultRole)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrRoleNotFound):
			switch s.RolePolicy {
			case config.RolePolicyCreate:
				if role, err = s.roles.CreateTx(ctx, tx, s.DefaultRole); err != nil {
					return fmt.Errorf("create default role: %w", err)
				}
				s.log.Info("default role created", zap.String("role", s.DefaultRole))
			case config.RolePolicyReject:
				s.log.Error("registration rejected: default role missing", zap.String("role", s.DefaultRole))
				return fmt.Errorf("%w: role %q not found", ErrDefaultRoleMissing, s.DefaultRole)
			default:
				msg := fmt.Sprintf("default role %q not found; user created without a role", s.DefaultRole)
				s.log.Warn(msg, zap.String("username", u.Username))
				out.Warnings = append(out.Warnings, msg)
			}
		default:
			return fmt.Errorf("load default role: %w", err)
		}
		if role.ID != 0 {
			id := role.ID
			u.RoleID = &id
			u.RoleName = role.Name
		}

		if err := s.users.CreateTx(ctx, tx, &u, in.Password, s.BcryptCost); err != nil {
			switch {
			case errors.Is(err, repository.ErrUsernameExists):
				return NewValidationError("username", "a user with that username already exists")
			case errors.Is(err, utils.ErrPasswordTooLong):
				return NewValidationError("password", fmt.Sprintf("must be at most %d bytes", utils.MaxPasswordBytes))
			}
			return fmt.Errorf("create user: %w", err)
		}
		out.User = u
		return nil
	})
	if err != nil {
		return RegisterResult{}, err
	}
	s.log.Info("user registered", zap.Uint64("user_id", out.User.ID), zap.String("rol", out.User.RoleClaim()))
	return out, nil
}

// Profile returns the caller's own record.
func (s *AuthService) Profile(ctx context.Context, userID uint64) (model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies a partial update and returns the fresh record.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, in ProfileInput) (model.User, error) {
	ch := repository.ProfileChanges{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	}
	if err := s.users.UpdateProfile(ctx, userID, ch); err != nil {
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}
	return s.users.GetByID(ctx, userID)
}
