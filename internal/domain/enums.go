package domain

// AttributeRole names the regulatory meaning of a catalog attribute
type AttributeRole string

const (
	AttributeRoleType   AttributeRole = "type"
	AttributeRoleLength AttributeRole = "length"
	AttributeRoleWeight AttributeRole = "weight"
)

// IsValid checks if the attribute role is known
func (r AttributeRole) IsValid() bool {
	switch r {
	case AttributeRoleType,
		AttributeRoleLength,
		AttributeRoleWeight:
		return true
	default:
		return false
	}
}

// AttributeRoles lists every role in resolution order
func AttributeRoles() []AttributeRole {
	return []AttributeRole{AttributeRoleType, AttributeRoleLength, AttributeRoleWeight}
}
