package domain

type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGuest, RoleAdmin:
		return Role(s), nil
	}
	return "", Validationf("unknown role %q", s)
}

// Identity is what the auth collaborator yields for a bearer credential.
type Identity struct {
	Username string
	Role     Role
}

func (i Identity) Admin() bool { return i.Role == RoleAdmin }

// MayCancel implements the cancellation capability: admins may cancel any
// reservation, guests only their own.
func (i Identity) MayCancel(s Stay) bool {
	return i.Admin() || i.Username == s.GuestName
}
