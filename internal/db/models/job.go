package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobType represents the employment type of a job posting.
type JobType string

const (
	// JobTypeFullTime is a full time position.
	JobTypeFullTime JobType = "FULL_TIME"
	// JobTypePartTime is a part time position.
	JobTypePartTime JobType = "PART_TIME"
	// JobTypeContract is a fixed term contract position.
	JobTypeContract JobType = "CONTRACT"
	// JobTypeInternship is an internship position.
	JobTypeInternship JobType = "INTERNSHIP"
	// JobTypeFreelance is a freelance position.
	JobTypeFreelance JobType = "FREELANCE"
)

// JobTypes lists all valid job types in display order.
func JobTypes() []JobType {
	return []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeFreelance}
}

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeFreelance:
		return true
	}

	return false
}

// Label returns a human readable label for the job type.
func (t JobType) Label() string {
	switch t {
	case JobTypeFullTime:
		return "Full-time"
	case JobTypePartTime:
		return "Part-time"
	case JobTypeContract:
		return "Contract"
	case JobTypeInternship:
		return "Internship"
	case JobTypeFreelance:
		return "Freelance"
	}

	return string(t)
}

// Job represents a job posting on the board.
// Ownership is tied to the identity provider's user id, not a local user table.
type Job struct {
	// ID is the unique identifier for the posting.
	ID string `gorm:"primaryKey;size:36"`
	// Title is the position title.
	Title string `gorm:"size:200;not null"`
	// Company is the hiring company name.
	Company string `gorm:"size:200;not null"`
	// Description is the full job description.
	Description string `gorm:"type:text;not null"`
	// Salary is an optional free form salary statement.
	Salary string `gorm:"size:100"`
	// City is the job location city, empty for remote only positions.
	City string `gorm:"size:100"`
	// Country is the job location country.
	Country string `gorm:"size:100"`
	// Remote indicates a remote position.
	Remote bool
	// Type is the employment type.
	Type JobType `gorm:"type:varchar(20);not null"`
	// ApplyURL is the external application link.
	ApplyURL string `gorm:"size:500;not null"`
	// OwnerID is the identity provider user id of the posting owner.
	OwnerID string `gorm:"size:64;index;not null"`
	// CreatedAt is the timestamp when the posting was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the posting was last updated (managed by GORM).
	UpdatedAt time.Time
}

// BeforeCreate assigns a uuid if the posting has none yet.
func (j *Job) BeforeCreate(_ *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}

	return nil
}

// Location renders the location the way listing pages show it.
func (j *Job) Location() string {
	if j.Remote {
		return "Remote"
	}

	if j.City != "" && j.Country != "" {
		return j.City + ", " + j.Country
	}

	if j.Country != "" {
		return j.Country
	}

	return j.City
}
