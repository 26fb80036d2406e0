package command

import (
	"strings"
	"unicode/utf8"
)

// PasswordSymbols is the set of characters that satisfy the symbol rule.
const PasswordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// MinPasswordLength is the minimum number of characters in a new password.
const MinPasswordLength = 8

// ValidatePassword checks the administrator-chosen password against the
// complexity rule. It returns ErrWeakPassword without describing the input.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}
