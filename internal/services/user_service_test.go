package services

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantErr  bool
	}{
		{"valid", "secret1", "secret1", false},
		{"missing confirm", "secret1", "", true},
		{"mismatch", "secret1", "secret2", true},
		{"too short", "abc", "abc", true},
		{"exactly minimum", "abcdef", "abcdef", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.confirm)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user := &models.User{Name: "Alice", Email: "  Alice@Example.com ", Password: "secret123"}
	require.NoError(t, svc.CreateUser(ctx, user))

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.CheckPassword("secret123"))

	dup := &models.User{Name: "Alice 2", Email: "alice@example.com", Password: "secret123"}
	assert.ErrorIs(t, svc.CreateUser(ctx, dup), ErrConflict)

	found, err := svc.GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = svc.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmailVerification(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "verify@example.com")

	token, err := svc.IssueEmailVerification(ctx, user)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NotNil(t, stored.EmailVerificationToken)
	assert.NotEqual(t, token, *stored.EmailVerificationToken, "only the digest is stored")

	_, err = svc.VerifyEmail(ctx, "not-the-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	verified, err := svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)

	_, err = svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken, "token is single use")
}

func TestEmailVerificationExpires(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db).(*userService)
	ctx := context.Background()
	user := createTestUser(t, db, "late@example.com")

	issued := time.Now()
	svc.now = func() time.Time { return issued }
	token, err := svc.IssueEmailVerification(ctx, user)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(25 * time.Hour) }
	_, err = svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordReset(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "reset@example.com")

	token, err := svc.IssuePasswordReset(ctx, user)
	require.NoError(t, err)

	_, err = svc.ResetPassword(ctx, token, "newpass1", "different")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ResetPassword(ctx, "bogus", "newpass1", "newpass1")
	assert.ErrorIs(t, err, ErrInvalidToken)

	updated, err := svc.ResetPassword(ctx, token, "newpass1", "newpass1")
	require.NoError(t, err)
	assert.True(t, updated.CheckPassword("newpass1"))
	require.NotNil(t, updated.PasswordChangedAt)
	assert.True(t, updated.ChangedPasswordAfter(time.Now().Add(-time.Hour)))
	assert.False(t, updated.ChangedPasswordAfter(time.Now().Add(time.Second)))

	_, err = svc.ResetPassword(ctx, token, "again123", "again123")
	assert.ErrorIs(t, err, ErrInvalidToken, "reset token is cleared after use")
}

func TestClearPasswordReset(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "clear@example.com")

	token, err := svc.IssuePasswordReset(ctx, user)
	require.NoError(t, err)
	require.NoError(t, svc.ClearPasswordReset(ctx, user))

	_, err = svc.ResetPassword(ctx, token, "newpass1", "newpass1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
