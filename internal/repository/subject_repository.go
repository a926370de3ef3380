package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-erp-api/internal/models"
)

// SubjectRepository provides persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = "id, academic_year, branch, semester, regulation, subject_id, subject_name, subject_type, credits, created_at, updated_at"

// ListByScope returns every subject offered for a year/branch/semester/regulation,
// ordered by subject code. Sections share the same subject pool.
func (r *SubjectRepository) ListByScope(ctx context.Context, scope models.SubjectScope) ([]models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects
WHERE academic_year = $1 AND branch = $2 AND semester = $3 AND regulation = $4
ORDER BY subject_id ASC`, subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, scope.AcademicYear, scope.Branch, scope.Semester, scope.Regulation); err != nil {
		return nil, fmt.Errorf("list subjects by scope: %w", err)
	}
	return subjects, nil
}

// List returns subjects with optional filtering and pagination.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	base := "FROM subjects WHERE 1=1"
	var conditions []string
	var args []interface{}

	add := func(column, value string) {
		if value == "" {
			return
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}
	add("academic_year", filter.AcademicYear)
	add("branch", filter.Branch)
	add("semester", filter.Semester)
	add("regulation", filter.Regulation)
	add("subject_type", filter.SubjectType)
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(subject_id ILIKE $%d OR subject_name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY subject_id ASC LIMIT %d OFFSET %d", subjectColumns, base, size, offset)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	return subjects, total, nil
}
