package entity

// UserStatusActive marks a directory user eligible to act as an approver.
const UserStatusActive = "active"

// User is the slice of the identity directory the engine consumes: enough
// to authorize an actor and to reach them on both notification channels.
type User struct {
	ID          string
	Name        string
	Email       string
	PhoneNumber string
	Department  string
	Status      string
	Roles       []string
}

// IsActive reports whether the user may act in any workflow.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// HasRole reports whether the user holds the given permission role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
