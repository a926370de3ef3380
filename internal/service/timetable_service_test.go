package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-erp-api/internal/dto"
	"github.com/noah-isme/college-erp-api/internal/models"
	"github.com/noah-isme/college-erp-api/internal/scheduler"
	appErrors "github.com/noah-isme/college-erp-api/pkg/errors"
)

// --- Fixtures ---

type subjectSourceStub struct {
	subjects []models.Subject
}

func (s subjectSourceStub) ListByScope(ctx context.Context, scope models.SubjectScope) ([]models.Subject, error) {
	return s.subjects, nil
}

type mappingSourceStub struct {
	byClass []models.SubjectFacultyMapping
	all     []models.SubjectFacultyMapping
}

func (s mappingSourceStub) ListByClass(ctx context.Context, class models.ClassContext) ([]models.SubjectFacultyMapping, error) {
	return s.byClass, nil
}

func (s mappingSourceStub) ListAll(ctx context.Context) ([]models.SubjectFacultyMapping, error) {
	return s.all, nil
}

type manualSourceStub struct {
	outside    []models.TimetableMapping
	practicals []models.TimetableMapping
}

func (s manualSourceStub) ListOutsideClass(ctx context.Context, class models.ClassContext) ([]models.TimetableMapping, error) {
	return s.outside, nil
}

func (s manualSourceStub) ListPracticalSlotsByBranch(ctx context.Context, class models.ClassContext) ([]models.TimetableMapping, error) {
	return s.practicals, nil
}

type timetableStoreStub struct {
	db         *sqlx.DB
	stored     []models.TimetableEntryDetail
	outside    []models.TimetableEntryDetail
	practicals []models.TimetableEntryDetail

	begun   bool
	deleted []models.ClassContext
	created []models.TimetableEntry
}

func (s *timetableStoreStub) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	s.begun = true
	return s.db.BeginTxx(ctx, opts)
}

func (s *timetableStoreStub) ListByClass(ctx context.Context, class models.ClassContext) ([]models.TimetableEntryDetail, error) {
	return s.stored, nil
}

func (s *timetableStoreStub) ListOutsideClass(ctx context.Context, class models.ClassContext) ([]models.TimetableEntryDetail, error) {
	return s.outside, nil
}

func (s *timetableStoreStub) ListPracticalSlotsByBranch(ctx context.Context, class models.ClassContext) ([]models.TimetableEntryDetail, error) {
	return s.practicals, nil
}

func (s *timetableStoreStub) DeleteByClass(ctx context.Context, exec sqlx.ExtContext, class models.ClassContext) error {
	s.deleted = append(s.deleted, class)
	return nil
}

func (s *timetableStoreStub) BulkCreate(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	s.created = append(s.created, entries...)
	return nil
}

type timeSlotStoreStub struct{}

func (timeSlotStoreStub) EnsureWeek(ctx context.Context, slots []models.TimeSlot) (map[string]models.TimeSlot, error) {
	lookup := make(map[string]models.TimeSlot, len(slots))
	for _, slot := range slots {
		key := testSlotKey(slot.Day, slot.PeriodNumber)
		slot.ID = "slot-" + key
		lookup[key] = slot
	}
	return lookup, nil
}

func testSlotKey(day string, period int) string {
	return fmt.Sprintf("%s|%d", day, period)
}

type timetableFixture struct {
	service *TimetableService
	store   *timetableStoreStub
	mock    sqlmock.Sqlmock
}

func catalogSubject(code, name string, kind models.SubjectType) models.Subject {
	return models.Subject{
		ID:           "row-" + code,
		AcademicYear: "2025-26",
		Branch:       "CSE",
		Semester:     "5",
		Regulation:   "R22",
		SubjectID:    code,
		SubjectName:  name,
		SubjectType:  kind,
	}
}

func fullCatalog() []models.Subject {
	var subjects []models.Subject
	for i := 1; i <= 6; i++ {
		code := fmt.Sprintf("CS30%d", i)
		subjects = append(subjects, catalogSubject(code, "Theory "+code, models.SubjectTypeTheory))
	}
	for i := 1; i <= 3; i++ {
		code := fmt.Sprintf("CS30%dL", i)
		subjects = append(subjects, catalogSubject(code, "Lab "+code, models.SubjectTypePractical))
	}
	subjects = append(subjects,
		catalogSubject("CRT01", "Placement Training", models.SubjectTypeCRT),
		catalogSubject("MEN01", "Mentoring", models.SubjectTypeMentoring))
	return subjects
}

func classMappings(subjects []models.Subject) []models.SubjectFacultyMapping {
	mappings := make([]models.SubjectFacultyMapping, 0, len(subjects))
	for i, subject := range subjects {
		mappings = append(mappings, models.SubjectFacultyMapping{
			AcademicYear: "2025-26",
			Branch:       "CSE",
			Semester:     "5",
			Section:      "A",
			Regulation:   "R22",
			SubjectCode:  subject.SubjectID,
			FacultyID:    fmt.Sprintf("f-%d", i+1),
		})
	}
	return mappings
}

type fixtureConfig struct {
	subjects    []models.Subject
	mappings    []models.SubjectFacultyMapping
	allMappings []models.SubjectFacultyMapping
	stored      []models.TimetableEntryDetail
	outside     []models.TimetableEntryDetail
}

func newTimetableFixture(t *testing.T, cfg fixtureConfig) *timetableFixture {
	t.Helper()
	if cfg.subjects == nil {
		cfg.subjects = fullCatalog()
	}
	if cfg.mappings == nil {
		cfg.mappings = classMappings(cfg.subjects)
	}
	if cfg.allMappings == nil {
		cfg.allMappings = cfg.mappings
	}

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })

	store := &timetableStoreStub{db: sqlxdb, stored: cfg.stored, outside: cfg.outside}
	svc := NewTimetableService(
		subjectSourceStub{subjects: cfg.subjects},
		mappingSourceStub{byClass: cfg.mappings, all: cfg.allMappings},
		manualSourceStub{},
		store,
		timeSlotStoreStub{},
		testSlotKey,
		scheduler.NewGenerator(zap.NewNop(), 0),
		nil,
		nil,
		nil,
		zap.NewNop(),
		0,
	)
	return &timetableFixture{service: svc, store: store, mock: mock}
}

func classRequest() dto.ClassContextRequest {
	return dto.ClassContextRequest{
		AcademicYear: "2025-26",
		Branch:       "CSE",
		Semester:     "5",
		Section:      "A",
		Regulation:   "R22",
	}
}

// --- Tests ---

func TestTimetableServiceGenerateSuccess(t *testing.T) {
	fixture := newTimetableFixture(t, fixtureConfig{})
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	resp, err := fixture.service.Generate(context.Background(), dto.GenerateTimetableRequest{ClassContextRequest: classRequest()})
	require.NoError(t, err)
	require.NotNil(t, resp)

	require.Len(t, resp.Days, 6)
	for _, day := range resp.Days {
		cells := resp.Week[day]
		require.Len(t, cells, 7, "day %s", day)
		for _, cell := range cells {
			assert.NotEmpty(t, cell.SubjectCode, "%s period %d unassigned", day, cell.Period)
			assert.NotEmpty(t, cell.Time)
		}
	}
	assert.GreaterOrEqual(t, resp.Attempts, 1)

	require.Len(t, fixture.store.deleted, 1)
	require.Len(t, fixture.store.created, 42)
	for _, entry := range fixture.store.created {
		assert.True(t, strings.HasPrefix(entry.SubjectID, "row-"), "subject id %s not resolved to catalog row", entry.SubjectID)
		assert.NotEmpty(t, entry.TimeSlotID)
		assert.Equal(t, "A", entry.Section)
	}
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestTimetableServiceExternalStateMarksEveryMappedFaculty(t *testing.T) {
	mappings := classMappings(fullCatalog())
	otherClass := models.SubjectFacultyMapping{
		AcademicYear: "2025-26",
		Branch:       "ECE",
		Semester:     "7",
		Section:      "B",
		Regulation:   "R22",
		SubjectCode:  "EC401",
	}
	first := otherClass
	first.FacultyID = "f-ec-1"
	second := otherClass
	second.FacultyID = "f-ec-2"

	outside := []models.TimetableEntryDetail{
		{
			TimetableEntry: models.TimetableEntry{
				AcademicYear: "2025-26",
				Branch:       "ECE",
				Semester:     "7",
				Section:      "B",
				Regulation:   "R22",
				Day:          "Monday",
				PeriodNo:     1,
			},
			SubjectCode: "EC401",
			SubjectType: models.SubjectTypeTheory,
		},
	}

	fixture := newTimetableFixture(t, fixtureConfig{
		allMappings: append(mappings, first, second),
		outside:     outside,
	})

	class := models.ClassContext{
		AcademicYear: "2025-26",
		Branch:       "CSE",
		Semester:     "5",
		Section:      "A",
		Regulation:   "R22",
	}
	external, _, err := fixture.service.buildExternalState(context.Background(), class)
	require.NoError(t, err)

	assert.True(t, external.Conflict("f-ec-1", scheduler.Monday, 1))
	assert.True(t, external.Conflict("f-ec-2", scheduler.Monday, 1))
}

func TestTimetableServiceGenerateRejectsAmbiguousMapping(t *testing.T) {
	subjects := fullCatalog()
	mappings := classMappings(subjects)
	duplicate := mappings[0]
	duplicate.FacultyID = "f-other"
	mappings = append(mappings, duplicate)

	fixture := newTimetableFixture(t, fixtureConfig{subjects: subjects, mappings: mappings})

	_, err := fixture.service.Generate(context.Background(), dto.GenerateTimetableRequest{ClassContextRequest: classRequest()})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrScheduleConfig.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "multiple faculties")
	assert.False(t, fixture.store.begun, "nothing may be persisted on a configuration fault")
}

func TestTimetableServiceGenerateRejectsMissingPools(t *testing.T) {
	subjects := fullCatalog()[:6] // theory only
	fixture := newTimetableFixture(t, fixtureConfig{subjects: subjects})

	_, err := fixture.service.Generate(context.Background(), dto.GenerateTimetableRequest{ClassContextRequest: classRequest()})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrScheduleConfig.Code, appErr.Code)
	assert.False(t, fixture.store.begun)
}

func TestTimetableServiceGenerateValidatesRequest(t *testing.T) {
	fixture := newTimetableFixture(t, fixtureConfig{})

	req := classRequest()
	req.Section = ""
	_, err := fixture.service.Generate(context.Background(), dto.GenerateTimetableRequest{ClassContextRequest: req})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGetNotFound(t *testing.T) {
	fixture := newTimetableFixture(t, fixtureConfig{})

	_, err := fixture.service.Get(context.Background(), classRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func storedEntries() []models.TimetableEntryDetail {
	return []models.TimetableEntryDetail{
		{
			TimetableEntry: models.TimetableEntry{Day: "Monday", PeriodNo: 1},
			SubjectCode:    "CS301",
			SubjectName:    "Theory CS301",
			SubjectType:    models.SubjectTypeTheory,
		},
		{
			TimetableEntry: models.TimetableEntry{Day: "Saturday", PeriodNo: 7},
			SubjectCode:    "MEN01",
			SubjectName:    "Mentoring",
			SubjectType:    models.SubjectTypeMentoring,
		},
	}
}

func TestTimetableServiceGetRendersStoredWeek(t *testing.T) {
	fixture := newTimetableFixture(t, fixtureConfig{stored: storedEntries()})

	resp, err := fixture.service.Get(context.Background(), classRequest())
	require.NoError(t, err)

	assert.Equal(t, "CS301", resp.Week["Monday"][0].SubjectCode)
	assert.Equal(t, "Mentoring", resp.Week["Saturday"][6].Subject)
	assert.Empty(t, resp.Week["Tuesday"][0].SubjectCode)
	assert.Equal(t, "09:30-10:20", resp.Week["Monday"][0].Time)
}

func TestTimetableServiceDelete(t *testing.T) {
	fixture := newTimetableFixture(t, fixtureConfig{})
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	require.NoError(t, fixture.service.Delete(context.Background(), classRequest()))
	require.Len(t, fixture.store.deleted, 1)
	assert.Equal(t, "A", fixture.store.deleted[0].Section)
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestTimetableServiceExportCSV(t *testing.T) {
	fixture := newTimetableFixture(t, fixtureConfig{stored: storedEntries()})

	payload, filename, contentType, err := fixture.service.Export(context.Background(), classRequest(), "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", contentType)
	assert.True(t, strings.HasSuffix(filename, ".csv"))
	content := string(payload)
	assert.Contains(t, content, "Day")
	assert.Contains(t, content, "CS301")
	assert.Contains(t, content, "MEN01")
}

func TestTimetableServiceExportRejectsUnknownFormat(t *testing.T) {
	fixture := newTimetableFixture(t, fixtureConfig{stored: storedEntries()})

	_, _, _, err := fixture.service.Export(context.Background(), classRequest(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
