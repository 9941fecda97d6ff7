package domain

import "time"

// AvailabilityStatus enumerates what a technician is currently doing.
type AvailabilityStatus string

const (
	AvailabilityAvailable  AvailabilityStatus = "available"
	AvailabilityBusy       AvailabilityStatus = "busy"
	AvailabilityInMeeting  AvailabilityStatus = "in_meeting"
	AvailabilityOnBreak    AvailabilityStatus = "on_break"
	AvailabilityEndOfShift AvailabilityStatus = "end_of_shift"
	AvailabilityFocusMode  AvailabilityStatus = "focus_mode"
)

func (a AvailabilityStatus) IsValid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityInMeeting,
		AvailabilityOnBreak, AvailabilityEndOfShift, AvailabilityFocusMode:
		return true
	}
	return false
}

// SkillLevel enumerates seniority.
type SkillLevel string

const (
	SkillLevelJunior SkillLevel = "junior"
	SkillLevelMid    SkillLevel = "mid"
	SkillLevelSenior SkillLevel = "senior"
	SkillLevelExpert SkillLevel = "expert"
)

func (l SkillLevel) IsValid() bool {
	switch l {
	case SkillLevelJunior, SkillLevelMid, SkillLevelSenior, SkillLevelExpert:
		return true
	}
	return false
}

// TechnicianSkill pairs a skill with a proficiency percentage.
type TechnicianSkill struct {
	SkillID    int64 `json:"skill_id"`
	Percentage int   `json:"percentage"`
}

// Technician models a support operator tied to a user account.
type Technician struct {
	ID                   int64
	Name                 string
	UserID               int64
	Skills               []TechnicianSkill
	Workload             int
	AvailabilityStatus   AvailabilityStatus
	SkillLevel           SkillLevel
	Specialization       string
	AssignedTicketsTotal int
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time

	User *UserSummary
}

// TechnicianSummary is the joined assignee shape embedded in ticket responses.
type TechnicianSummary struct {
	ID                 int64              `json:"id"`
	Name               string             `json:"name"`
	SkillLevel         SkillLevel         `json:"skill_level"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	User               *UserSummary       `json:"user,omitempty"`
}

func (t *Technician) Summary() *TechnicianSummary {
	if t == nil {
		return nil
	}
	return &TechnicianSummary{
		ID:                 t.ID,
		Name:               t.Name,
		SkillLevel:         t.SkillLevel,
		AvailabilityStatus: t.AvailabilityStatus,
		User:               t.User,
	}
}
