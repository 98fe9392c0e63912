package enums

import "fmt"

// UserRole distinguishes the two marketplace actors.
type UserRole string

const (
	UserRoleFarmer    UserRole = "farmer"
	UserRoleShopOwner UserRole = "shop_owner"
)

var validUserRoles = []UserRole{
	UserRoleFarmer,
	UserRoleShopOwner,
}

// IsValid checks whether the role matches the canonical enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw strings into UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

func (r UserRole) String() string {
	return string(r)
}
