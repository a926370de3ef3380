package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-erp-api/internal/models"
)

// TimetableMappingRepository reads manually fixed timetable commitments.
type TimetableMappingRepository struct {
	db *sqlx.DB
}

// NewTimetableMappingRepository builds the repository.
func NewTimetableMappingRepository(db *sqlx.DB) *TimetableMappingRepository {
	return &TimetableMappingRepository{db: db}
}

const timetableMappingColumns = "id, academic_year, branch, semester, section, week_day, period_no, subject_id, faculty_id, created_at"

// ListOutsideClass returns manual commitments belonging to any other class.
// Manual mappings carry no regulation, so the exclusion matches on the
// remaining four context fields.
func (r *TimetableMappingRepository) ListOutsideClass(ctx context.Context, class models.ClassContext) ([]models.TimetableMapping, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_mappings
WHERE NOT (academic_year = $1 AND branch = $2 AND semester = $3 AND section = $4)`, timetableMappingColumns)
	var mappings []models.TimetableMapping
	if err := r.db.SelectContext(ctx, &mappings, query,
		class.AcademicYear, class.Branch, class.Semester, class.Section); err != nil {
		return nil, fmt.Errorf("list timetable mappings outside class: %w", err)
	}
	return mappings, nil
}

// ListPracticalSlotsByBranch returns (day, period) pairs where another class
// of the same branch has a manually mapped practical. Shared labs are
// per-branch resources.
func (r *TimetableMappingRepository) ListPracticalSlotsByBranch(ctx context.Context, class models.ClassContext) ([]models.TimetableMapping, error) {
	const query = `SELECT tm.id, tm.academic_year, tm.branch, tm.semester, tm.section, tm.week_day, tm.period_no, tm.subject_id, tm.faculty_id, tm.created_at
FROM timetable_mappings tm
JOIN subjects s ON s.id = tm.subject_id
WHERE tm.branch = $1 AND s.subject_type = 'PRACTICAL'
  AND NOT (tm.academic_year = $2 AND tm.semester = $3 AND tm.section = $4)`
	var mappings []models.TimetableMapping
	if err := r.db.SelectContext(ctx, &mappings, query,
		class.Branch, class.AcademicYear, class.Semester, class.Section); err != nil {
		return nil, fmt.Errorf("list practical timetable mappings by branch: %w", err)
	}
	return mappings, nil
}
