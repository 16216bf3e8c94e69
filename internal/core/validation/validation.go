// Package validation holds the request-value predicates applied before any
// payload is forwarded to the user-service. Unknown update fields reject the
// whole payload; they are never stripped.
package validation

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aioutlet/admin-service/internal/core/domain"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValidObjectID reports whether id has the user store's identifier shape (24 hex chars).
func IsValidObjectID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// IsValidRoles reports whether v is a list of known role names. An empty list is valid.
func IsValidRoles(v any) bool {
	switch roles := v.(type) {
	case []string:
		for _, r := range roles {
			if _, ok := domain.ParseRole(r); !ok {
				return false
			}
		}
		return true
	case []any:
		for _, r := range roles {
			s, ok := r.(string)
			if !ok {
				return false
			}
			if _, ok := domain.ParseRole(s); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsValidIsActive accepts only a real boolean, not "true" or 1.
func IsValidIsActive(v any) bool {
	_, ok := v.(bool)
	return ok
}

// IsValidEmail is intentionally permissive: something@something.tld, no whitespace.
func IsValidEmail(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return emailPattern.MatchString(s)
}

// IsValidPassword requires at least 8 characters with one ASCII letter and one digit.
func IsValidPassword(v any) bool {
	s, ok := v.(string)
	if !ok || len(s) < minPasswordLength {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return letter && digit
}

// IsValidUpdatePayload reports whether v is a non-nil object whose keys are all
// whitelisted update fields. The empty object is valid.
func IsValidUpdatePayload(v any) bool {
	var keys []string
	switch p := v.(type) {
	case map[string]any:
		if p == nil {
			return false
		}
		for k := range p {
			keys = append(keys, k)
		}
	case domain.UpdatePayload:
		if p == nil {
			return false
		}
		for k := range p {
			keys = append(keys, k)
		}
	default:
		return false
	}
	for _, k := range keys {
		if _, ok := domain.ParseUpdateField(k); !ok {
			return false
		}
	}
	return true
}

// ValidateUpdatePayload applies the whitelist and then the per-field rules for
// every field present, returning the first violation.
func ValidateUpdatePayload(v any) (domain.UpdatePayload, error) {
	if !IsValidUpdatePayload(v) {
		return nil, domain.NewValidationError("", "Invalid update payload")
	}
	var payload domain.UpdatePayload
	switch p := v.(type) {
	case map[string]any:
		payload = domain.UpdatePayload(p)
	case domain.UpdatePayload:
		payload = p
	}

	if roles, ok := payload[string(domain.FieldRoles)]; ok && !IsValidRoles(roles) {
		return nil, domain.NewValidationError(string(domain.FieldRoles), "Invalid roles")
	}
	if active, ok := payload[string(domain.FieldIsActive)]; ok && !IsValidIsActive(active) {
		return nil, domain.NewValidationError(string(domain.FieldIsActive), "Invalid isActive value")
	}
	if email, ok := payload[string(domain.FieldEmail)]; ok && !IsValidEmail(email) {
		return nil, domain.NewValidationError(string(domain.FieldEmail), "Invalid email")
	}
	if password, ok := payload[string(domain.FieldPassword)]; ok && !IsValidPassword(password) {
		return nil, domain.NewValidationError(string(domain.FieldPassword),
			"Invalid password: must be at least 8 characters and contain a letter and a digit")
	}
	return payload, nil
}
