package dto

// ClassContextRequest identifies the class whose timetable is addressed.
type ClassContextRequest struct {
	AcademicYear string `json:"academicYear" form:"academicYear" validate:"required"`
	Branch       string `json:"branch" form:"branch" validate:"required"`
	Semester     string `json:"semester" form:"semester" validate:"required"`
	Section      string `json:"section" form:"section" validate:"required"`
	Regulation   string `json:"regulation" form:"regulation" validate:"required"`
}

// GenerateTimetableRequest triggers generation for a class context.
type GenerateTimetableRequest struct {
	ClassContextRequest
}

// TimetableCell is one rendered period of a day.
type TimetableCell struct {
	Period      int    `json:"period"`
	Time        string `json:"time"`
	SubjectCode string `json:"subject_code"`
	Subject     string `json:"subject"`
}

// TimetableResponse renders a full week keyed by day name in canonical order.
type TimetableResponse struct {
	Context  ClassContextRequest        `json:"context"`
	Days     []string                   `json:"days"`
	Week     map[string][]TimetableCell `json:"week"`
	Attempts int                        `json:"attempts,omitempty"`
}
