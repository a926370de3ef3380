package models

import "time"

// TimeSlot is the canonical (day, period) entity with fixed clock times.
type TimeSlot struct {
	ID           string    `db:"id" json:"id"`
	Day          string    `db:"day" json:"day"`
	PeriodNumber int       `db:"period_number" json:"period_number"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TimetableEntry is one generated cell of a class timetable: a subject pinned
// to a (day, period) slot for a class context.
type TimetableEntry struct {
	ID           string    `db:"id" json:"id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Branch       string    `db:"branch" json:"branch"`
	Semester     string    `db:"semester" json:"semester"`
	Section      string    `db:"section" json:"section"`
	Regulation   string    `db:"regulation" json:"regulation"`
	Day          string    `db:"day" json:"day"`
	PeriodNo     int       `db:"period_no" json:"period_no"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	TimeSlotID   string    `db:"time_slot_id" json:"time_slot_id"`
	GeneratedAt  time.Time `db:"generated_at" json:"generated_at"`
}

// TimetableEntryDetail joins the subject row needed to resolve faculty and
// subject type when scanning other classes' generated schedules.
type TimetableEntryDetail struct {
	TimetableEntry
	SubjectCode string      `db:"subject_code" json:"subject_code"`
	SubjectName string      `db:"subject_name" json:"subject_name"`
	SubjectType SubjectType `db:"subject_type" json:"subject_type"`
}

// TimetableMapping is a manually fixed commitment: a faculty teaching a
// subject for a class at a specific (day, period).
type TimetableMapping struct {
	ID           string    `db:"id" json:"id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Branch       string    `db:"branch" json:"branch"`
	Semester     string    `db:"semester" json:"semester"`
	Section      string    `db:"section" json:"section"`
	WeekDay      string    `db:"week_day" json:"week_day"`
	PeriodNo     int       `db:"period_no" json:"period_no"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	FacultyID    string    `db:"faculty_id" json:"faculty_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SubjectFacultyMapping binds one faculty to a subject within a class context.
type SubjectFacultyMapping struct {
	ID           string    `db:"id" json:"id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Branch       string    `db:"branch" json:"branch"`
	Semester     string    `db:"semester" json:"semester"`
	Section      string    `db:"section" json:"section"`
	Regulation   string    `db:"regulation" json:"regulation"`
	SubjectCode  string    `db:"subject_code" json:"subject_code"`
	FacultyID    string    `db:"faculty_id" json:"faculty_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Context reconstructs the class context of a mapping row.
func (m SubjectFacultyMapping) Context() ClassContext {
	return ClassContext{
		AcademicYear: m.AcademicYear,
		Branch:       m.Branch,
		Semester:     m.Semester,
		Section:      m.Section,
		Regulation:   m.Regulation,
	}
}
