package model

import "time"

// Role classifies a user account. The set is closed: anything outside
// it is rejected at validation time rather than stored as free text.
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// User is a system account. Staff users can be booked on appointments
// and recorded as image uploaders; patient users own a Patient profile.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Password  string    `db:"password" json:"-"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateUserRequest is the user write-shape: the only fields a client
// may supply at creation time. id and created_at are server-assigned.
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required"`
	FullName string  `json:"full_name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone" validate:"omitempty"`
	Address  *string `json:"address" validate:"omitempty"`
	Role     *Role   `json:"role" validate:"omitempty,oneof=patient admin staff"`
}

type UserFilter struct {
	Role       Role
	SearchTerm string
}
