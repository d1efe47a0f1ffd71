package enums

// UserRole separates the single administrator from regular employees.
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleEmployee UserRole = "employee"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleEmployee:
		return true
	}
	return false
}
