package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-erp-api/internal/models"
)

// TimetableRepository persists generated timetable rows.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// BeginTxx starts a transaction; generation persists atomically through it.
func (r *TimetableRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

const timetableColumns = "id, academic_year, branch, semester, section, regulation, day, period_no, subject_id, time_slot_id, generated_at"

// ListByClass returns the stored timetable of one class ordered by slot.
func (r *TimetableRepository) ListByClass(ctx context.Context, class models.ClassContext) ([]models.TimetableEntryDetail, error) {
	const query = `SELECT t.id, t.academic_year, t.branch, t.semester, t.section, t.regulation, t.day, t.period_no,
       t.subject_id, t.time_slot_id, t.generated_at, s.subject_id AS subject_code, s.subject_name, s.subject_type
FROM timetables t
JOIN subjects s ON s.id = t.subject_id
WHERE t.academic_year = $1 AND t.branch = $2 AND t.semester = $3 AND t.section = $4 AND t.regulation = $5
ORDER BY t.day ASC, t.period_no ASC`
	var entries []models.TimetableEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query,
		class.AcademicYear, class.Branch, class.Semester, class.Section, class.Regulation); err != nil {
		return nil, fmt.Errorf("list timetable by class: %w", err)
	}
	return entries, nil
}

// ListOutsideClass returns generated rows of every other class. The external
// occupancy loader resolves their faculty through the mapping lookup.
func (r *TimetableRepository) ListOutsideClass(ctx context.Context, class models.ClassContext) ([]models.TimetableEntryDetail, error) {
	const query = `SELECT t.id, t.academic_year, t.branch, t.semester, t.section, t.regulation, t.day, t.period_no,
       t.subject_id, t.time_slot_id, t.generated_at, s.subject_id AS subject_code, s.subject_name, s.subject_type
FROM timetables t
JOIN subjects s ON s.id = t.subject_id
WHERE NOT (t.academic_year = $1 AND t.branch = $2 AND t.semester = $3 AND t.section = $4 AND t.regulation = $5)`
	var entries []models.TimetableEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query,
		class.AcademicYear, class.Branch, class.Semester, class.Section, class.Regulation); err != nil {
		return nil, fmt.Errorf("list timetable outside class: %w", err)
	}
	return entries, nil
}

// ListPracticalSlotsByBranch returns generated practical rows of other
// sections in the same branch, for the shared-lab conflict set.
func (r *TimetableRepository) ListPracticalSlotsByBranch(ctx context.Context, class models.ClassContext) ([]models.TimetableEntryDetail, error) {
	const query = `SELECT t.id, t.academic_year, t.branch, t.semester, t.section, t.regulation, t.day, t.period_no,
       t.subject_id, t.time_slot_id, t.generated_at, s.subject_id AS subject_code, s.subject_name, s.subject_type
FROM timetables t
JOIN subjects s ON s.id = t.subject_id
WHERE t.branch = $1 AND s.subject_type = 'PRACTICAL'
  AND NOT (t.academic_year = $2 AND t.branch = $3 AND t.semester = $4 AND t.section = $5 AND t.regulation = $6)`
	var entries []models.TimetableEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query,
		class.Branch, class.AcademicYear, class.Branch, class.Semester, class.Section, class.Regulation); err != nil {
		return nil, fmt.Errorf("list practical timetable slots by branch: %w", err)
	}
	return entries, nil
}

// DeleteByClass removes any stored timetable for the exact context.
func (r *TimetableRepository) DeleteByClass(ctx context.Context, exec sqlx.ExtContext, class models.ClassContext) error {
	if exec == nil {
		exec = r.db
	}
	const query = `DELETE FROM timetables
WHERE academic_year = $1 AND branch = $2 AND semester = $3 AND section = $4 AND regulation = $5`
	if _, err := exec.ExecContext(ctx, query,
		class.AcademicYear, class.Branch, class.Semester, class.Section, class.Regulation); err != nil {
		return fmt.Errorf("delete timetable by class: %w", err)
	}
	return nil
}

// BulkCreate inserts one row per board cell.
func (r *TimetableRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	if exec == nil {
		exec = r.db
	}
	now := time.Now().UTC()
	const query = `INSERT INTO timetables (id, academic_year, branch, semester, section, regulation, day, period_no, subject_id, time_slot_id, generated_at)
VALUES (:id, :academic_year, :branch, :semester, :section, :regulation, :day, :period_no, :subject_id, :time_slot_id, :generated_at)`
	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.GeneratedAt.IsZero() {
			entry.GeneratedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, exec, query, entry); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}
	return nil
}
