package domain

import "time"

// UserRole enumerates account roles.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleTechnician UserRole = "technician"
	UserRoleUser       UserRole = "user"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleTechnician, UserRoleUser:
		return true
	}
	return false
}

// User is the domain model for people who request or work tickets.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	ContactNo    string
	Role         UserRole
	Department   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the joined requester shape embedded in ticket responses.
type UserSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
	}
}
