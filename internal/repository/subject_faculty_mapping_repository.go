package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-erp-api/internal/models"
)

// SubjectFacultyMappingRepository reads subject-to-faculty bindings.
type SubjectFacultyMappingRepository struct {
	db *sqlx.DB
}

// NewSubjectFacultyMappingRepository builds the repository.
func NewSubjectFacultyMappingRepository(db *sqlx.DB) *SubjectFacultyMappingRepository {
	return &SubjectFacultyMappingRepository{db: db}
}

const mappingColumns = "id, academic_year, branch, semester, section, regulation, subject_code, faculty_id, created_at"

// ListByClass returns the bindings of one class context.
func (r *SubjectFacultyMappingRepository) ListByClass(ctx context.Context, class models.ClassContext) ([]models.SubjectFacultyMapping, error) {
	query := fmt.Sprintf(`SELECT %s FROM subject_faculty_mappings
WHERE academic_year = $1 AND branch = $2 AND semester = $3 AND section = $4 AND regulation = $5`, mappingColumns)
	var mappings []models.SubjectFacultyMapping
	if err := r.db.SelectContext(ctx, &mappings, query,
		class.AcademicYear, class.Branch, class.Semester, class.Section, class.Regulation); err != nil {
		return nil, fmt.Errorf("list subject faculty mappings by class: %w", err)
	}
	return mappings, nil
}

// ListAll returns every binding across all contexts. The external occupancy
// loader uses this to resolve faculty for other classes' timetable rows.
func (r *SubjectFacultyMappingRepository) ListAll(ctx context.Context) ([]models.SubjectFacultyMapping, error) {
	query := fmt.Sprintf("SELECT %s FROM subject_faculty_mappings", mappingColumns)
	var mappings []models.SubjectFacultyMapping
	if err := r.db.SelectContext(ctx, &mappings, query); err != nil {
		return nil, fmt.Errorf("list all subject faculty mappings: %w", err)
	}
	return mappings, nil
}
