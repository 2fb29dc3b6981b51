package service

import (
	"unicode"

	"github.com/oblozinskyroman/stars/internal/domain"
)

// MinPasswordScore is the score a password must reach before sign-up is
// allowed to call the auth collaborator.
const MinPasswordScore = 2

// commonPasswords always score zero regardless of composition.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"12345678":   {},
	"123456789":  {},
	"qwertyuiop": {},
	"iloveyou":   {},
	"heslo1234":  {},
}

// ScorePassword rates a password on a 0-4 scale. The score is deterministic
// and monotone: adding a character class to a password never lowers it.
// Scoring is length-gated first, then one point per extra character class.
func ScorePassword(password string) domain.PasswordStrength {
	if _, common := commonPasswords[password]; common {
		return domain.PasswordStrength{
			Score:       0,
			Suggestions: []string{"avoid common passwords"},
		}
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	classes := 0
	for _, has := range []bool{lower, upper, digit, symbol} {
		if has {
			classes++
		}
	}

	score := classes
	if len(password) < 8 {
		// Short passwords top out at 1 no matter how mixed they are.
		if score > 1 {
			score = 1
		}
	}
	if score > 4 {
		score = 4
	}

	var suggestions []string
	if len(password) < 8 {
		suggestions = append(suggestions, "use at least 8 characters")
	}
	if !upper {
		suggestions = append(suggestions, "add an uppercase letter")
	}
	if !digit {
		suggestions = append(suggestions, "add a digit")
	}
	if !symbol {
		suggestions = append(suggestions, "add a symbol")
	}

	return domain.PasswordStrength{Score: score, Suggestions: suggestions}
}
