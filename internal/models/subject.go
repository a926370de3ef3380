package models

import "time"

// SubjectType classifies how a subject is placed on the weekly grid.
type SubjectType string

const (
	SubjectTypeTheory    SubjectType = "THEORY"
	SubjectTypePractical SubjectType = "PRACTICAL"
	SubjectTypeCRT       SubjectType = "CRT"
	SubjectTypeMentoring SubjectType = "MENTORING"
	SubjectTypeOther     SubjectType = "OTHER"
)

// Subject represents an academic subject offered for a year/branch/semester/regulation.
type Subject struct {
	ID           string      `db:"id" json:"id"`
	AcademicYear string      `db:"academic_year" json:"academic_year"`
	Branch       string      `db:"branch" json:"branch"`
	Semester     string      `db:"semester" json:"semester"`
	Regulation   string      `db:"regulation" json:"regulation"`
	SubjectID    string      `db:"subject_id" json:"subject_id"`
	SubjectName  string      `db:"subject_name" json:"subject_name"`
	SubjectType  SubjectType `db:"subject_type" json:"subject_type"`
	Credits      float64     `db:"credits" json:"credits"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	AcademicYear string
	Branch       string
	Semester     string
	Regulation   string
	SubjectType  string
	Search       string
	Page         int
	PageSize     int
}
