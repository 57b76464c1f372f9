package auth

// Role is the closed set of user roles. Route access is declared as an
// allow-list of these values; unknown role strings never pass authorization.
type Role string

const (
	RolePatient      Role = "patient"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RolePharmacist   Role = "pharmacist"
	RoleAdmin        Role = "admin"
	RoleHR           Role = "hr"
)

var allRoles = map[Role]bool{
	RolePatient:      true,
	RoleDoctor:       true,
	RoleReceptionist: true,
	RolePharmacist:   true,
	RoleAdmin:        true,
	RoleHR:           true,
}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	return allRoles[Role(s)]
}

// StaffRoles lists every role that requires the staff registration secret
// at sign-up. Patients self-register freely.
func StaffRoles() []Role {
	return []Role{RoleDoctor, RoleReceptionist, RolePharmacist, RoleAdmin, RoleHR}
}

// IsStaff reports whether r is any role other than patient.
func IsStaff(r Role) bool {
	return allRoles[r] && r != RolePatient
}
