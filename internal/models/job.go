package models

import (
	"time"

	"gorm.io/gorm"
)

// JobStatus is the lifecycle state of a job post.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// JobPost is a position advertised by an employer.
type JobPost struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EmployerID  uint           `gorm:"not null;index" json:"employer_id"`
	Employer    *User          `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Industry    string         `gorm:"size:80;index" json:"industry"`
	State       string         `gorm:"size:8;index" json:"state"`
	Suburb      string         `gorm:"size:120" json:"suburb"`
	PayMin      float64        `json:"pay_min"`
	PayMax      float64        `json:"pay_max"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	Description string         `gorm:"type:text" json:"description"`
	Status      JobStatus      `gorm:"type:varchar(16);not null;default:open;index" json:"status"`
	Liked       bool           `gorm:"-" json:"liked"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
