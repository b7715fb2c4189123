package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkai/picshare/models"
	"github.com/berkai/picshare/utils"
)

const goodPassword = "Str0ng!pass"

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, &fakeMailer{}, "http://localhost:5173/auth/reset")

	user, err := svc.Register(ctx, "Ada Lovelace", "adalove", "ada@example.com", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, "adalove", user.Username)
	assert.NotEqual(t, goodPassword, user.PasswordHash)
	assert.True(t, utils.CheckPassword(user.PasswordHash, goodPassword))
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, &fakeMailer{}, "http://localhost:5173/auth/reset")

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "ab@example.com", goodPassword},
		{"long username", "averyveryverylongusername", "long@example.com", goodPassword},
		{"bad email", "gooduser", "not-an-email", goodPassword},
		{"weak password", "gooduser", "good@example.com", "short"},
		{"denylisted password", "gooduser", "good@example.com", "Passw0rd!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, "Name", tc.username, tc.email, tc.password)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestRegisterConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, &fakeMailer{}, "http://localhost:5173/auth/reset")

	_, err := svc.Register(ctx, "Ada", "adalove", "ada@example.com", goodPassword)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Imposter", "adalove", "other@example.com", goodPassword)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = svc.Register(ctx, "Imposter", "othername", "ada@example.com", goodPassword)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, &fakeMailer{}, "http://localhost:5173/auth/reset")

	registered, err := svc.Register(ctx, "Ada", "adalove", "ada@example.com", goodPassword)
	require.NoError(t, err)

	byEmail, err := svc.Login(ctx, "ada@example.com", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byEmail.ID)

	byUsername, err := svc.Login(ctx, "adalove", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byUsername.ID)

	_, err = svc.Login(ctx, "adalove", "Wr0ng!pass")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.Login(ctx, "nobody", goodPassword)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSendResetEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	mailer := &fakeMailer{}
	svc := NewAuthService(db, mailer, "http://localhost:5173/auth/reset/")

	_, err := svc.Register(ctx, "Ada", "adalove", "ada@example.com", goodPassword)
	require.NoError(t, err)

	token, err := svc.SendResetEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Len(t, token, 5)

	var user models.User
	require.NoError(t, db.Where("email = ?", "ada@example.com").First(&user).Error)
	assert.Equal(t, token, user.ResetToken)

	assert.Equal(t, "ada@example.com", mailer.to)
	assert.Equal(t, "Password Reset", mailer.subject)
	assert.Contains(t, mailer.body, fmt.Sprintf("http://localhost:5173/auth/reset/%s", token))

	_, err = svc.SendResetEmail(ctx, "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSendResetEmailMailerFailure(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, &fakeMailer{fail: true}, "http://localhost:5173/auth/reset")

	_, err := svc.Register(ctx, "Ada", "adalove", "ada@example.com", goodPassword)
	require.NoError(t, err)

	_, err = svc.SendResetEmail(ctx, "ada@example.com")
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))
}

func TestResetPassword(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, &fakeMailer{}, "http://localhost:5173/auth/reset")

	_, err := svc.Register(ctx, "Ada", "adalove", "ada@example.com", goodPassword)
	require.NoError(t, err)
	token, err := svc.SendResetEmail(ctx, "ada@example.com")
	require.NoError(t, err)

	const newPassword = "N3w!secret"
	msg, err := svc.ResetPassword(ctx, token, newPassword)
	require.NoError(t, err)
	assert.Equal(t, "Password reset successful", msg)

	// the token is single use
	var user models.User
	require.NoError(t, db.Where("email = ?", "ada@example.com").First(&user).Error)
	assert.Empty(t, user.ResetToken)

	_, err = svc.Login(ctx, "adalove", newPassword)
	require.NoError(t, err)
	_, err = svc.Login(ctx, "adalove", goodPassword)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestResetPasswordGuards(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, &fakeMailer{}, "http://localhost:5173/auth/reset")

	_, err := svc.ResetPassword(ctx, "", "N3w!secret")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.ResetPassword(ctx, "zzzzz", "N3w!secret")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.Register(ctx, "Ada", "adalove", "ada@example.com", goodPassword)
	require.NoError(t, err)
	token, err := svc.SendResetEmail(ctx, "ada@example.com")
	require.NoError(t, err)

	_, err = svc.ResetPassword(ctx, token, "weak")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAuthByID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewAuthService(db, &fakeMailer{}, "http://localhost:5173/auth/reset")

	registered, err := svc.Register(ctx, "Ada", "adalove", "ada@example.com", goodPassword)
	require.NoError(t, err)

	got, err := svc.ByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "adalove", got.Username)

	_, err = svc.ByID(ctx, 9999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
