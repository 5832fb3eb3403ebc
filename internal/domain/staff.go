package domain

import "strings"

// Role is a staff member role.
type Role int32

// Staff roles, in on-disk order.
const (
	RoleManager Role = iota
	RoleEmployee
)

func (r Role) String() string {
	switch r {
	case RoleManager:
		return "manager"
	case RoleEmployee:
		return "employee"
	}

	return "unknown"
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleEmployee
}

// ParseRole converts "manager" or "employee" into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "manager":
		return RoleManager, nil
	case "employee":
		return RoleEmployee, nil
	}

	return 0, ErrInvalidRole
}

// Staff holds a bank employee or manager.
type Staff struct {
	ID        int32  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"-"`
	Role      Role   `json:"-"`
}

// StaffResponse is Staff as returned to clients.
type StaffResponse struct {
	ID        int32  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Response drops the password hash.
func (s Staff) Response() StaffResponse {
	return StaffResponse{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, Role: s.Role.String()}
}

// CreateStaffParams is the input data to create a staff member.
type CreateStaffParams struct {
	ID        int32
	FirstName string
	LastName  string
	Password  string
	Role      Role
}
