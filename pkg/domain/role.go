package domain

import dErrors "govdash/pkg/domain-errors"

// Role is the dashboard variant a signed-in user is entitled to.
// Invariant: the value must be one of the three supported roles.
//
// Usage: construct via ParseRole at trust boundaries (login responses, token
// claims); direct casting bypasses validation.
type Role string

const (
	RolePolicymaker    Role = "policymaker"
	RoleFieldWorker    Role = "field_worker"
	RoleDataSupervisor Role = "data_supervisor"
)

var validRoles = map[Role]bool{
	RolePolicymaker:    true,
	RoleFieldWorker:    true,
	RoleDataSupervisor: true,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unsupported role: "+s)
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}

// LabelKey is the localisation key used when the role is shown to a user.
func (r Role) LabelKey() string {
	switch r {
	case RolePolicymaker:
		return "role_admin"
	case RoleFieldWorker:
		return "role_field"
	case RoleDataSupervisor:
		return "role_supervisor"
	}
	return "role_unknown"
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID string
	Role   Role
}

// IsZero reports whether no principal is present.
func (p Principal) IsZero() bool {
	return p.UserID == ""
}
