package service

import "regexp"

// Input boundaries for account credentials. The username doubles as a
// contact address, so it must look like an email; the password bounds keep
// Argon2id work and storage predictable without constraining passphrases.
const (
	usernameMaxLength = 80
	passwordMinLength = 8
	passwordMaxLength = 512
)

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateCredentials checks registration input and returns
// ErrInvalidDataProvided on any violation. The password value itself is
// never inspected beyond its length.
func validateCredentials(username, password string) error {
	if username == "" || len(username) > usernameMaxLength || !emailShape.MatchString(username) {
		return ErrInvalidDataProvided
	}
	if len(password) < passwordMinLength || len(password) > passwordMaxLength {
		return ErrInvalidDataProvided
	}

	return nil
}
