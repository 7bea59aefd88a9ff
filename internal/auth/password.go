package auth

import (
	"errors"
	"unicode/utf8"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 5 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 40 characters")
)

const (
	minPasswordLength = 5
	maxPasswordLength = 40
)

// ValidatePassword applies the commerce backend's password length rules
// before an account is created, so obviously bad input never leaves the process.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength {
		return ErrPasswordTooShort
	}
	if n > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
