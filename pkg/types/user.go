package types

// User roles, ordered by increasing privilege.
const (
	RoleUser             = "user"
	RoleInstitutionAdmin = "institution_admin"
	RoleAdmin            = "admin"
	RoleSuperAdmin       = "super_admin"
)

// validRoles is the set of recognized role values.
var validRoles = map[string]bool{
	RoleUser:             true,
	RoleInstitutionAdmin: true,
	RoleAdmin:            true,
	RoleSuperAdmin:       true,
}

// ValidRole reports whether role is a recognized user role.
func ValidRole(role string) bool {
	return validRoles[role]
}

// User represents a portal account.
type User struct {
	ID                string   // UUID, generated on creation.
	UID               string   // External identity, unique across users.
	Name              string
	Phone             string
	Email             string
	PasswordHash      string   // bcrypt hash; never the plain password.
	Role              string   // One of the Role constants.
	PreferredLanguage string   // One of the Lang constants.
	Bookmarks         []string // Bookmarked form ids, stored as a JSON list.
	CreatedAt         string
	UpdatedAt         string
}

// HasBookmark reports whether formID is in the user's bookmark list.
func (u *User) HasBookmark(formID string) bool {
	for _, id := range u.Bookmarks {
		if id == formID {
			return true
		}
	}
	return false
}
