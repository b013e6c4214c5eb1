package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"gorm.io/gorm"
)

const (
	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 6

	verificationTTL  = 24 * time.Hour
	passwordResetTTL = 10 * time.Minute
)

type UserService interface {
	// CreateUser hashes the password and stores a new user. ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// IssueEmailVerification stores a fresh verification token and returns the plain value
	IssueEmailVerification(ctx context.Context, user *models.User) (string, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	// IssuePasswordReset stores a reset token valid for 10 minutes and returns the plain value
	IssuePasswordReset(ctx context.Context, user *models.User) (string, error)
	ClearPasswordReset(ctx context.Context, user *models.User) error
	ResetPassword(ctx context.Context, token, password, confirm string) (*models.User, error)
}

type userService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db, now: time.Now}
}

// ValidatePassword checks the password rules shared by signup and reset
func ValidatePassword(password, confirm string) error {
	if password == "" || confirm == "" {
		return fmt.Errorf("%w: password and passwordConfirm are required", ErrValidation)
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	return nil
}

// NormalizeEmail lowercases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	if user.Email == "" || strings.TrimSpace(user.Name) == "" {
		return fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: user with email %s", ErrConflict, user.Email)
	}

	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (s *userService) IssueEmailVerification(ctx context.Context, user *models.User) (string, error) {
	token, hashed, err := newToken()
	if err != nil {
		return "", err
	}
	expires := s.now().Add(verificationTTL)
	err = s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"email_verification_token":   hashed,
		"email_verification_expires": expires,
	}).Error
	if err != nil {
		return "", err
	}
	user.EmailVerificationToken = &hashed
	user.EmailVerificationExpires = &expires
	return token, nil
}

func (s *userService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email_verification_token = ? AND email_verification_expires > ?", hashToken(token), s.now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"is_email_verified":          true,
		"email_verification_token":   nil,
		"email_verification_expires": nil,
	}).Error
	if err != nil {
		return nil, err
	}
	user.IsEmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExpires = nil
	return &user, nil
}

func (s *userService) IssuePasswordReset(ctx context.Context, user *models.User) (string, error) {
	token, hashed, err := newToken()
	if err != nil {
		return "", err
	}
	expires := s.now().Add(passwordResetTTL)
	err = s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"password_reset_token":   hashed,
		"password_reset_expires": expires,
	}).Error
	if err != nil {
		return "", err
	}
	user.PasswordResetToken = &hashed
	user.PasswordResetExpires = &expires
	return token, nil
}

func (s *userService) ClearPasswordReset(ctx context.Context, user *models.User) error {
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	return s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	}).Error
}

func (s *userService) ResetPassword(ctx context.Context, token, password, confirm string) (*models.User, error) {
	if err := ValidatePassword(password, confirm); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_expires > ?", hashToken(token), s.now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user.Password = password
	if err := user.HashPassword(); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	// Backdated one second so a session issued right after the reset stays valid
	changed := s.now().Add(-time.Second)
	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password":               user.Password,
		"password_changed_at":    changed,
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	}).Error
	if err != nil {
		return nil, err
	}
	user.PasswordChangedAt = &changed
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	return &user, nil
}

// newToken returns a random hex token and the SHA-256 digest that gets stored
func newToken() (plain, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	plain = hex.EncodeToString(buf)
	return plain, hashToken(plain), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// notFound maps gorm's record-not-found to ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
