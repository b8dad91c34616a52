// Package validation holds input validation rules shared across services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// Route segments and operational names a member must not claim, since
// profile URLs embed the username.
var reservedUsernames = map[string]struct{}{
	"admin":   {},
	"api":     {},
	"auth":    {},
	"me":      {},
	"details": {},
	"user":    {},
	"users":   {},
	"topics":  {},
	"threads": {},
	"posts":   {},
	"stats":   {},
	"health":  {},
	"metrics": {},
	"login":   {},
	"logout":  {},
	"signup":  {},
	"root":    {},
	"system":  {},
}

// ValidateUsername checks format and reserved-name rules.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 characters and contain only letters, numbers, and underscore")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return fmt.Errorf("username %q is reserved", username)
	}
	return nil
}
