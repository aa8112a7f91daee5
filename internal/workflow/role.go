package workflow

import (
	"fmt"
	"strings"
)

// Role — закрытый набор ролей пользователей мастерской.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleTechnician
	RoleCustomerCare
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTechnician:
		return "technician"
	case RoleCustomerCare:
		return "customer-care"
	case RoleUnknown:
		return "unknown"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole принимает как "customer-care", так и "customer_care".
func ParseRole(v string) (Role, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "_", "-") {
	case "admin":
		return RoleAdmin, nil
	case "technician", "tech":
		return RoleTechnician, nil
	case "customer-care", "customercare":
		return RoleCustomerCare, nil
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", v)
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// RoleSet — набор ролей, которым разрешено действие.
type RoleSet []Role

func (s RoleSet) Has(r Role) bool {
	for _, v := range s {
		if v == r {
			return true
		}
	}
	return false
}

// User — кто нажимает кнопку.
type User struct {
	ID   string
	Role Role
}
