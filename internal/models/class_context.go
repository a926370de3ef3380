package models

import "fmt"

// ClassContext identifies one class section whose timetable is being built.
// All occupancy bookkeeping is scoped by this tuple except explicit
// cross-context checks.
type ClassContext struct {
	AcademicYear string `db:"academic_year" json:"academic_year"`
	Branch       string `db:"branch" json:"branch"`
	Semester     string `db:"semester" json:"semester"`
	Section      string `db:"section" json:"section"`
	Regulation   string `db:"regulation" json:"regulation"`
}

// SubjectScope drops the section: subjects are shared across sections of the
// same year/branch/semester/regulation.
type SubjectScope struct {
	AcademicYear string
	Branch       string
	Semester     string
	Regulation   string
}

// SubjectScope returns the section-less scope of the context.
func (c ClassContext) SubjectScope() SubjectScope {
	return SubjectScope{
		AcademicYear: c.AcademicYear,
		Branch:       c.Branch,
		Semester:     c.Semester,
		Regulation:   c.Regulation,
	}
}

// CacheKey renders a stable redis key component for the context.
func (c ClassContext) CacheKey() string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", c.AcademicYear, c.Branch, c.Semester, c.Section, c.Regulation)
}

// String renders the context for log and error messages.
func (c ClassContext) String() string {
	return fmt.Sprintf("%s %s sem %s sec %s (%s)", c.AcademicYear, c.Branch, c.Semester, c.Section, c.Regulation)
}
