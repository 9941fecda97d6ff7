package domain

import "time"

// Skill is a competence tickets can require and technicians can hold.
type Skill struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
