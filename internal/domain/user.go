package domain

// Role is a coarse permission level carried in access tokens.
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// HasPermission reports whether r grants at least the permissions of required.
func (r Role) HasPermission(required Role) bool {
	return r.level() >= required.level()
}

func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleOperator:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// User is a registered account, referenced by name in requests.
type User struct {
	ID   int64
	Name string
}

// Project groups project items and their audit trail.
type Project struct {
	ID    int64
	Name  string
	Owner string
	// Shared projects have more than one owner; their history is hidden.
	Shared bool
}
