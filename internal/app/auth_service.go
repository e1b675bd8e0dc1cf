package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"webnova-quiz-service/internal/domain"
)

const minPasswordLength = 8

var emailValidator = validator.New()

// PasswordHasher hashes and checks login passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Session is returned on signup and login.
type Session struct {
	UserID string             `json:"userId"`
	Token  string             `json:"token"`
	User   domain.UserAccount `json:"user"`
}

// AuthService handles signup, login and token lifecycle.
type AuthService struct {
	users       UserLedger
	credentials CredentialStore
	identities  IdentityProvider
	hasher      PasswordHasher
	log         *zap.Logger
	now         func() time.Time
}

func NewAuthService(store BackingStore, identities IdentityProvider, hasher PasswordHasher, log *zap.Logger) *AuthService {
	return &AuthService{
		users:       store.Users(),
		credentials: store.Credentials(),
		identities:  identities,
		hasher:      hasher,
		log:         log,
		now:         time.Now,
	}
}

// Signup creates a credential and a fresh account, then issues a token.
func (s *AuthService) Signup(ctx context.Context, email, password, username string) (Session, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return Session{}, domain.Errorf(domain.KindBadRequest, "Invalid email address")
	}
	if len(password) < minPasswordLength {
		return Session{}, domain.Errorf(domain.KindBadRequest, "Password must be at least %d characters", minPasswordLength)
	}
	if username == "" || len([]rune(username)) > maxUsernameLength {
		return Session{}, domain.Errorf(domain.KindBadRequest, "Username must be 1-%d characters", maxUsernameLength)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.UserAccount{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		Level:     1,
		CreatedAt: s.now().UTC(),
	}
	if err := s.credentials.Create(ctx, domain.Credential{UserID: account.ID, Email: email, PasswordHash: hash}); err != nil {
		return Session{}, err
	}
	if err := s.users.Create(ctx, account); err != nil {
		// Without the account the credential would block the email forever.
		if delErr := s.credentials.Delete(ctx, email); delErr != nil {
			s.log.Error("orphaned credential after failed signup",
				zap.String("user_id", account.ID), zap.Error(delErr))
		}
		return Session{}, fmt.Errorf("create account: %w", err)
	}

	token, err := s.identities.Issue(ctx, account.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user signed up", zap.String("user_id", account.ID))
	return Session{UserID: account.ID, Token: token, User: account}, nil
}

// Login checks a password and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	cred, err := s.credentials.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return Session{}, domain.ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := s.hasher.Compare(cred.PasswordHash, password); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	account, err := s.users.Get(ctx, cred.UserID)
	if err != nil {
		return Session{}, err
	}
	token, err := s.identities.Issue(ctx, account.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{UserID: account.ID, Token: token, User: account}, nil
}

// ResolveIdentity maps a bearer credential to its user id.
func (s *AuthService) ResolveIdentity(ctx context.Context, credential string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", domain.ErrUnauthorized
	}
	return s.identities.ResolveIdentity(ctx, credential)
}

// Logout revokes the credential if it is still valid. Unknown credentials are ignored.
func (s *AuthService) Logout(ctx context.Context, credential string) error {
	if credential == "" {
		return nil
	}
	if err := s.identities.Revoke(ctx, credential); err != nil && domain.KindOf(err) != domain.KindUnauthorized {
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
