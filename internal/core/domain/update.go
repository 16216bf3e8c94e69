package domain

// UpdateField enumerates the user attributes an administrator may change.
type UpdateField string

const (
	FieldFirstName   UpdateField = "firstName"
	FieldLastName    UpdateField = "lastName"
	FieldName        UpdateField = "name"
	FieldEmail       UpdateField = "email"
	FieldRoles       UpdateField = "roles"
	FieldIsActive    UpdateField = "isActive"
	FieldPassword    UpdateField = "password"
	FieldPhoneNumber UpdateField = "phoneNumber"
)

// UpdateFields lists every field accepted in an update payload.
var UpdateFields = []UpdateField{
	FieldFirstName,
	FieldLastName,
	FieldName,
	FieldEmail,
	FieldRoles,
	FieldIsActive,
	FieldPassword,
	FieldPhoneNumber,
}

// ParseUpdateField returns the UpdateField for s and false when s is not whitelisted.
func ParseUpdateField(s string) (UpdateField, bool) {
	switch UpdateField(s) {
	case FieldFirstName, FieldLastName, FieldName, FieldEmail,
		FieldRoles, FieldIsActive, FieldPassword, FieldPhoneNumber:
		return UpdateField(s), true
	}
	return "", false
}

// UpdatePayload is a decoded PATCH body: field name to new value.
// Values keep their JSON-decoded Go types (string, bool, float64, []any, ...).
type UpdatePayload map[string]any
