package scorm

import "time"

const (
	Version12   = "1.2"
	Version2004 = "2004"
)

// Package describes the SCORM content attached to a course. When present it
// replaces the chapter player for that course.
type Package struct {
	CourseID  string    `json:"courseId" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Version   string    `json:"version" db:"version"`
	LaunchURL string    `json:"launchUrl" db:"launch_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type PackageNew struct {
	Title     string `json:"title" validate:"required"`
	Version   string `json:"version" validate:"required,oneof=1.2 2004"`
	LaunchURL string `json:"launchUrl" validate:"required,url"`
}
