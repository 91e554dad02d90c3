package models

// Identity is the authenticated caller resolved from the access token.
// A zero UserID means anonymous.
type Identity struct {
	UserID uint
	Role   Role
}

func (i Identity) Anonymous() bool {
	return i.UserID == 0
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
