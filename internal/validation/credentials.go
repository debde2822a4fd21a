// Package validation holds input validation rules shared by web and API paths.
package validation

import (
	"errors"
	"unicode"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
	maxPasswordLen = 128
	maxAboutMeLen  = 140
)

// ValidateUsername checks length and character set: letters, digits,
// underscore, hyphen and dot, starting with a letter or digit.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLen {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > maxUsernameLen {
		return errors.New("username must be at most 32 characters")
	}
	for i, r := range username {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
		case (r == '_' || r == '-' || r == '.') && i > 0:
		default:
			return errors.New("username may only contain letters, digits, underscore, hyphen and dot")
		}
	}
	return nil
}

// ValidatePassword enforces a minimum length and at least one letter and
// one digit. The plaintext is never stored or logged.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > maxPasswordLen {
		return errors.New("password must be at most 128 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("password must contain at least one letter and one digit")
	}
	return nil
}

// ValidateAboutMe bounds the profile blurb to the stored column size.
func ValidateAboutMe(aboutMe string) error {
	if len(aboutMe) > maxAboutMeLen {
		return errors.New("about_me must be at most 140 characters")
	}
	return nil
}
