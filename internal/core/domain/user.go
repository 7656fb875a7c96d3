package domain

import "time"

// Role is the staff role carried in every session. The set is closed;
// anything outside it must be rejected at the token boundary.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleRegistration Role = "REGISTRATION"
	RoleTriage       Role = "TRIAGE"
	RoleDoctor       Role = "DOCTOR"
	RoleLab          Role = "LAB"
	RolePharmacy     Role = "PHARMACY"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleRegistration, RoleTriage, RoleDoctor, RoleLab, RolePharmacy}

// ParseRole maps a raw string to a Role, reporting whether it is one of
// the enumerated set.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// User models a staff account at one facility.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	FacilityID   string    `json:"facility_id"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Patient is the minimal patient reference this core needs: identity,
// facility scope, and the soft-delete marker. Demographics live elsewhere.
type Patient struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	FacilityID string    `json:"facility_id" bson:"facility_id"`
	Deleted    bool      `json:"-" bson:"deleted"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
