package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrValidation wraps all input validation failures; handlers map it to a
// 400 response carrying the specific message.
var ErrValidation = errors.New("validation error")

const (
	minPasswordLength = 8
	maxPasswordLength = 100
	maxNameLength     = 100
)

const passwordSpecials = `!@#$%^&*()-_=+[]{}|;:,.<>?/`

func ValidateRegisterInput(name, email, plaintext string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	return validatePassword(plaintext)
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLength)
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}

func validatePassword(plaintext string) error {
	if len(plaintext) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if len(plaintext) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d characters", ErrValidation, maxPasswordLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		default:
			return fmt.Errorf("%w: password contains an invalid character", ErrValidation)
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("%w: password must contain at least one uppercase letter, lowercase letter, digit, and special character", ErrValidation)
	}
	return nil
}
