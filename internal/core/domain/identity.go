package domain

// Identity is the authenticated caller derived from a verified bearer token.
// It lives for one request only.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Roles []Role `json:"roles"`
}

// HasAnyRole reports whether the identity holds at least one of required.
func (i *Identity) HasAnyRole(required ...Role) bool {
	if i == nil {
		return false
	}
	for _, have := range i.Roles {
		for _, want := range required {
			if have == want {
				return true
			}
		}
	}
	return false
}
