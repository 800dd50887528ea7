package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

// AuthService owns credentials: registration, login, bearer tokens and
// password changes.
type AuthService struct {
	store         *repository.Store
	secret        []byte
	tokenLifetime time.Duration
	now           func() time.Time
}

// NewAuthService creates a new AuthService. secretKey keys the digest under
// which tokens are stored.
func NewAuthService(store *repository.Store, secretKey string, tokenLifetime time.Duration) *AuthService {
	return &AuthService{
		store:         store,
		secret:        []byte(secretKey),
		tokenLifetime: tokenLifetime,
		now:           time.Now,
	}
}

// RegisterInput represents the information needed to self-register.
type RegisterInput struct {
	Username string
	Password string
	Name     string
}

// Register creates a user. The first user ever registered becomes an admin.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	var user *models.User
	err := s.store.Transaction(func(tx *repository.Store) error {
		var err error
		user, err = register(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Signup registers a user and mints their first token in one transaction, so
// a failed token write leaves no account behind.
func (s *AuthService) Signup(input RegisterInput) (*models.User, string, error) {
	var (
		user *models.User
		raw  string
	)
	err := s.store.Transaction(func(tx *repository.Store) error {
		var err error
		if user, err = register(tx, input); err != nil {
			return err
		}
		raw, err = s.issueToken(tx, user)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return user, raw, nil
}

func register(tx *repository.Store, input RegisterInput) (*models.User, error) {
	username := NormalizeUsername(input.Username)
	if !utils.IsEmail(username) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	name, err := cleanName(input.Name, false)
	if err != nil {
		return nil, err
	}

	if err := ensureUsernameFree(tx.Users, username); err != nil {
		return nil, err
	}

	count, err := tx.Users.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	role := models.UserRoleUser
	if count == 0 {
		role = models.UserRoleAdmin
	}

	user, err := newUser(username, input.Password, name, role)
	if err != nil {
		return nil, err
	}
	if err := tx.Users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies credentials and mints a new bearer token. Tokens issued
// earlier stay valid.
func (s *AuthService) Authenticate(username, password string) (*models.User, string, error) {
	user, err := s.store.Users.FindByUsername(NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive || !utils.VerifyPassword(user.Salt, password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken mints a bearer token for user and returns the raw token.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	return s.issueToken(s.store, user)
}

func (s *AuthService) issueToken(store *repository.Store, user *models.User) (string, error) {
	raw, err := utils.RandomHex(constants.TokenBytes)
	if err != nil {
		return "", err
	}

	now := s.now()
	token := &models.AuthToken{
		UserID:    user.ID,
		TokenHash: s.digest(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenLifetime),
		IsActive:  true,
	}
	if err := store.Tokens.Create(token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return raw, nil
}

// ResolveToken returns the active user owning an active, unexpired token.
func (s *AuthService) ResolveToken(raw string) (*models.User, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	token, err := s.store.Tokens.FindValid(s.digest(raw), s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	user, err := s.store.Users.FindByID(token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// RevokeToken deactivates a token. Unknown tokens are ignored.
func (s *AuthService) RevokeToken(raw string) error {
	if err := s.store.Tokens.Deactivate(s.digest(raw)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ChangePassword replaces the password of user after checking the current one.
// Existing tokens are not revoked.
func (s *AuthService) ChangePassword(user *models.User, current, next string) error {
	if !utils.VerifyPassword(user.Salt, current, user.PasswordHash) {
		return ErrWrongPassword
	}
	return s.AdminSetPassword(user, next)
}

// AdminSetPassword replaces the password of user without checking the old one.
func (s *AuthService) AdminSetPassword(user *models.User, password string) error {
	if err := setPassword(user, password); err != nil {
		return err
	}
	if err := s.store.Users.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *AuthService) digest(raw string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// NormalizeUsername trims and lowercases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// UserID derives the stable user id from a normalized username.
func UserID(username string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(username)).String()
}

func newUser(username, password, name string, role models.UserRole) (*models.User, error) {
	user := &models.User{
		ID:       UserID(username),
		Username: username,
		Name:     name,
		Role:     role,
		IsActive: true,
	}
	if err := setPassword(user, password); err != nil {
		return nil, err
	}
	return user, nil
}

func setPassword(user *models.User, password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	salt, err := utils.RandomHex(constants.SaltBytes)
	if err != nil {
		return err
	}
	user.Salt = salt
	user.PasswordHash = utils.HashPassword(salt, password)
	return nil
}

func ensureUsernameFree(users repository.UserRepository, username string) error {
	if _, err := users.FindByUsername(username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}

func cleanName(name string, required bool) (string, error) {
	name = strings.TrimSpace(name)
	if required && name == "" {
		return "", invalid("name is required")
	}
	if len(name) > constants.MaxNameLength {
		return "", invalid("name must be at most %d characters", constants.MaxNameLength)
	}
	return name, nil
}
