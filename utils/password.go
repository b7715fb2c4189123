package utils

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of the password using a cost that balances security and performance.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Passwords that satisfy the character-class rules but are still trivially guessable.
var weakPasswords = []string{"Passw0rd!", "P@ssword1"}

// ValidatePasswordPolicy enforces the registration password rules: 8-20
// characters with at least one uppercase letter, one lowercase letter, one
// digit and one symbol, no whitespace, and not on the weak-password list.
func ValidatePasswordPolicy(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return errors.New("password must be between 8 and 20 characters")
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return errors.New("password must not contain spaces")
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return errors.New("password must contain uppercase, lowercase, digit and symbol characters")
	}
	for _, weak := range weakPasswords {
		if password == weak {
			return errors.New("password is too common")
		}
	}
	return nil
}
