package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-erp-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func testClass() models.ClassContext {
	return models.ClassContext{
		AcademicYear: "2025-26",
		Branch:       "CSE",
		Semester:     "5",
		Section:      "A",
		Regulation:   "R22",
	}
}

func timetableRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "academic_year", "branch", "semester", "section", "regulation",
		"day", "period_no", "subject_id", "time_slot_id", "generated_at",
		"subject_code", "subject_name", "subject_type",
	}).AddRow("tt-1", "2025-26", "CSE", "5", "A", "R22",
		"Monday", 1, "row-CS301", "slot-1", time.Now(),
		"CS301", "Theory CS301", "THEORY")
}

func TestTimetableRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery("FROM timetables t\\s+JOIN subjects s").
		WithArgs("2025-26", "CSE", "5", "A", "R22").
		WillReturnRows(timetableRows())

	entries, err := repo.ListByClass(context.Background(), testClass())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "CS301", entries[0].SubjectCode)
	require.Equal(t, models.SubjectTypeTheory, entries[0].SubjectType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListPracticalSlotsByBranch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("s.subject_type = 'PRACTICAL'")).
		WithArgs("CSE", "2025-26", "CSE", "5", "A", "R22").
		WillReturnRows(timetableRows())

	entries, err := repo.ListPracticalSlotsByBranch(context.Background(), testClass())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDeleteByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables")).
		WithArgs("2025-26", "CSE", "5", "A", "R22").
		WillReturnResult(sqlmock.NewResult(0, 42))

	require.NoError(t, repo.DeleteByClass(context.Background(), db, testClass()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryBulkCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entries := []models.TimetableEntry{{
		AcademicYear: "2025-26",
		Branch:       "CSE",
		Semester:     "5",
		Section:      "A",
		Regulation:   "R22",
		Day:          "Monday",
		PeriodNo:     1,
		SubjectID:    "row-CS301",
		TimeSlotID:   "slot-1",
	}}
	require.NoError(t, repo.BulkCreate(context.Background(), db, entries))
	require.NotEmpty(t, entries[0].ID, "id must be generated")
	require.False(t, entries[0].GeneratedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryTransactionRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetables")).
		WithArgs("2025-26", "CSE", "5", "A", "R22").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByClass(context.Background(), tx, testClass()))
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
