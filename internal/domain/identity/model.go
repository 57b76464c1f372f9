// Package identity manages user accounts, authentication, and profiles for
// every role in the hospital: patients, doctors, receptionists, pharmacists,
// HR staff, and admins.
package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/medicore/hms/internal/platform/auth"
)

// User maps to the users table.
type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Role            auth.Role  `db:"role" json:"role"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	Address         *string    `db:"address" json:"address,omitempty"`
	Gender          *string    `db:"gender" json:"gender,omitempty"`
	DateOfBirth     *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	BloodGroup      *string    `db:"blood_group" json:"blood_group,omitempty"`
	Specialization  *string    `db:"specialization" json:"specialization,omitempty"`
	Department      *string    `db:"department" json:"department,omitempty"`
	ProfileImageKey *string    `db:"profile_image_key" json:"profile_image_key,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// RegisterRequest is the payload for account creation. StaffSecret must match
// the configured registration secret for any non-patient role.
type RegisterRequest struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Role        string     `json:"role"`
	StaffSecret string     `json:"staff_secret,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries the profile fields a user may change. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Name           *string    `json:"name,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Address        *string    `json:"address,omitempty"`
	Gender         *string    `json:"gender,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	BloodGroup     *string    `json:"blood_group,omitempty"`
	Specialization *string    `json:"specialization,omitempty"`
	Department     *string    `json:"department,omitempty"`
}
