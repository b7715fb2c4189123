package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/berkai/picshare/models"
	"github.com/berkai/picshare/utils"
)

// Mailer delivers transactional email. Implementations live outside the
// services package.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// AuthService handles registration, login and the password-reset flow.
type AuthService struct {
	db           *gorm.DB
	mailer       Mailer
	resetBaseURL string
}

// NewAuthService creates an AuthService. resetBaseURL is the frontend route
// the emailed reset token is appended to.
func NewAuthService(db *gorm.DB, mailer Mailer, resetBaseURL string) *AuthService {
	return &AuthService{db: db, mailer: mailer, resetBaseURL: strings.TrimSuffix(resetBaseURL, "/")}
}

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Register creates an account after validating the username and password
// policy, and returns the stored user.
func (a *AuthService) Register(ctx context.Context, name, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if l := len(username); l < 4 || l > 20 {
		return nil, Invalid("username must be between 4 and 20 characters")
	}
	if !emailPattern.MatchString(email) {
		return nil, Invalid("invalid email address")
	}
	if err := utils.ValidatePasswordPolicy(password); err != nil {
		return nil, Invalid(err.Error())
	}

	var existing models.User
	err := a.db.WithContext(ctx).Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, Conflict("user already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{Name: name, Username: username, Email: email, PasswordHash: hash}
	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials against either the email or the username,
// depending on the identifier's shape.
func (a *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	column := "username"
	if emailPattern.MatchString(identifier) {
		column = "email"
	}

	var user models.User
	if err := a.db.WithContext(ctx).Where(column+" = ?", identifier).First(&user).Error; err != nil {
		return nil, orNotFound(err, "invalid credentials")
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, Forbidden("invalid credentials")
	}
	return &user, nil
}

// ByID loads the authenticated user's record.
func (a *AuthService) ByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := a.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, orNotFound(err, "user not found")
	}
	return &user, nil
}

// SendResetEmail stores a short reset token on the user row and mails the
// reset link. The token is returned so the caller can surface it.
func (a *AuthService) SendResetEmail(ctx context.Context, email string) (string, error) {
	var user models.User
	if err := a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", orNotFound(err, "user not found")
	}

	token := utils.RandomToken(5)
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("reset_token", token).Error; err != nil {
		return "", err
	}

	body := fmt.Sprintf(
		`Click the following link to reset your password: <a href="%s/%s">Reset Password</a>`,
		a.resetBaseURL, token,
	)
	if err := a.mailer.Send(email, "Password Reset", body); err != nil {
		return "", Upstream("failed to send reset email", err)
	}
	return token, nil
}

// ResetPassword consumes a reset token and replaces the password.
func (a *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if token == "" {
		return "", Invalid("missing reset token")
	}
	var user models.User
	if err := a.db.WithContext(ctx).Where("reset_token = ?", token).First(&user).Error; err != nil {
		return "", orNotFound(err, "user not found")
	}
	if err := utils.ValidatePasswordPolicy(newPassword); err != nil {
		return "", Invalid(err.Error())
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumns(map[string]interface{}{"password_hash": hash, "reset_token": ""}).Error; err != nil {
		return "", err
	}
	return "Password reset successful", nil
}
