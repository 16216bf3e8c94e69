package domain

// Role is a closed set of account roles understood by the admin service.
type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Roles lists every known role.
var Roles = []Role{RoleUser, RoleAdmin, RoleCustomer}

// ParseRole returns the Role for s and false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin, RoleCustomer:
		return Role(s), true
	}
	return "", false
}

// RoleNames converts roles to plain strings, mainly for logs and error details.
func RoleNames(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
