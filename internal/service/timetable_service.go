package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/college-erp-api/internal/dto"
	"github.com/noah-isme/college-erp-api/internal/models"
	"github.com/noah-isme/college-erp-api/internal/scheduler"
	appErrors "github.com/noah-isme/college-erp-api/pkg/errors"
	"github.com/noah-isme/college-erp-api/pkg/export"
)

type subjectSource interface {
	ListByScope(ctx context.Context, scope models.SubjectScope) ([]models.Subject, error)
}

type facultyMappingSource interface {
	ListByClass(ctx context.Context, class models.ClassContext) ([]models.SubjectFacultyMapping, error)
	ListAll(ctx context.Context) ([]models.SubjectFacultyMapping, error)
}

type manualMappingSource interface {
	ListOutsideClass(ctx context.Context, class models.ClassContext) ([]models.TimetableMapping, error)
	ListPracticalSlotsByBranch(ctx context.Context, class models.ClassContext) ([]models.TimetableMapping, error)
}

type timetableStore interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	ListByClass(ctx context.Context, class models.ClassContext) ([]models.TimetableEntryDetail, error)
	ListOutsideClass(ctx context.Context, class models.ClassContext) ([]models.TimetableEntryDetail, error)
	ListPracticalSlotsByBranch(ctx context.Context, class models.ClassContext) ([]models.TimetableEntryDetail, error)
	DeleteByClass(ctx context.Context, exec sqlx.ExtContext, class models.ClassContext) error
	BulkCreate(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error
}

type timeSlotStore interface {
	EnsureWeek(ctx context.Context, slots []models.TimeSlot) (map[string]models.TimeSlot, error)
}

// SlotKeyFunc mirrors the repository key for looking up persisted time slots.
type SlotKeyFunc func(day string, period int) string

// TimetableService orchestrates timetable generation: it loads subject pools
// and faculty commitments, runs the placement engine, persists the winning
// board transactionally and serves rendered weeks from cache.
type TimetableService struct {
	subjects  subjectSource
	mappings  facultyMappingSource
	manual    manualMappingSource
	store     timetableStore
	slots     timeSlotStore
	slotKey   SlotKeyFunc
	cache     *CacheService
	metrics   *MetricsService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	generator *scheduler.Generator
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewTimetableService wires the timetable orchestrator.
func NewTimetableService(
	subjects subjectSource,
	mappings facultyMappingSource,
	manual manualMappingSource,
	store timetableStore,
	slots timeSlotStore,
	slotKey SlotKeyFunc,
	generator *scheduler.Generator,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if generator == nil {
		generator = scheduler.NewGenerator(logger, 0)
	}
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &TimetableService{
		subjects:  subjects,
		mappings:  mappings,
		manual:    manual,
		store:     store,
		slots:     slots,
		slotKey:   slotKey,
		cache:     cache,
		metrics:   metrics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		generator: generator,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// Generate builds, validates and persists a fresh weekly timetable for the
// class. Any previously generated timetable for the class is replaced in the
// same transaction.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class context")
	}
	class := classFromRequest(req.ClassContextRequest)
	started := time.Now()

	input, pools, err := s.buildInput(ctx, class)
	if err != nil {
		s.recordGeneration(err, 0, started)
		return nil, err
	}

	result, err := s.generator.Generate(*input)
	if err != nil {
		s.recordGeneration(err, 0, started)
		return nil, err
	}

	if err := s.persist(ctx, class, result, pools); err != nil {
		s.recordGeneration(err, result.Attempts, started)
		return nil, err
	}

	s.recordGeneration(nil, result.Attempts, started)

	names := make(map[string]string, len(pools))
	for code, subject := range pools {
		names[code] = subject.SubjectName
	}
	resp := responseFromBoard(class, result.Board, names, result.Attempts)

	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, timetableCachePattern(class))
		_ = s.cache.Set(ctx, timetableCacheKey(class), resp, s.cacheTTL)
	}

	s.logger.Info("timetable persisted",
		zap.String("context", class.String()),
		zap.Int("attempts", result.Attempts),
		zap.Duration("elapsed", time.Since(started)))
	return resp, nil
}

// Get returns the stored timetable for the class, preferring the cache.
func (s *TimetableService) Get(ctx context.Context, req dto.ClassContextRequest) (*dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class context")
	}
	class := classFromRequest(req)

	var cached dto.TimetableResponse
	if hit, err := s.cache.Get(ctx, timetableCacheKey(class), &cached); err == nil && hit {
		return &cached, nil
	}

	entries, err := s.store.ListByClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load timetable")
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no timetable generated for %s", class.String()))
	}

	resp := responseFromEntries(class, entries)
	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, timetableCacheKey(class), resp, s.cacheTTL)
	}
	return resp, nil
}

// Delete removes the stored timetable for the class and drops cached copies.
func (s *TimetableService) Delete(ctx context.Context, req dto.ClassContextRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class context")
	}
	class := classFromRequest(req)

	tx, err := s.store.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "begin transaction")
	}
	if err := s.store.DeleteByClass(ctx, tx, class); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete timetable")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "commit delete")
	}

	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, timetableCachePattern(class))
	}
	s.logger.Info("timetable deleted", zap.String("context", class.String()))
	return nil
}

// Export renders the stored timetable as a CSV or PDF document.
func (s *TimetableService) Export(ctx context.Context, req dto.ClassContextRequest, format string) ([]byte, string, string, error) {
	resp, err := s.Get(ctx, req)
	if err != nil {
		return nil, "", "", err
	}
	class := classFromRequest(req)
	dataset := datasetFromResponse(resp)
	base := fmt.Sprintf("timetable_%s_%s_sem%s_%s", class.AcademicYear, class.Branch, class.Semester, class.Section)
	base = strings.ReplaceAll(strings.ToLower(base), " ", "-")

	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
		}
		return payload, base + ".csv", "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Class Timetable "+class.String())
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf")
		}
		return payload, base + ".pdf", "application/pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// buildInput loads pools, faculty bindings and the external occupancy
// baseline for one class. The returned map indexes every scoped subject by
// its code for later row-id resolution.
func (s *TimetableService) buildInput(ctx context.Context, class models.ClassContext) (*scheduler.Input, map[string]models.Subject, error) {
	subjects, err := s.subjects.ListByScope(ctx, class.SubjectScope())
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load subjects")
	}

	byCode := make(map[string]models.Subject, len(subjects))
	input := scheduler.Input{Context: class, FacultyBySubject: make(map[string]string)}
	for _, subject := range subjects {
		byCode[subject.SubjectID] = subject
		switch subject.SubjectType {
		case models.SubjectTypeTheory:
			input.TheoryPool = append(input.TheoryPool, subject)
		case models.SubjectTypePractical:
			input.PracticalPool = append(input.PracticalPool, subject)
		case models.SubjectTypeCRT:
			input.CRTPool = append(input.CRTPool, subject)
		case models.SubjectTypeMentoring:
			input.MentoringPool = append(input.MentoringPool, subject)
		}
	}

	classMappings, err := s.mappings.ListByClass(ctx, class)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load faculty mappings")
	}
	for _, mapping := range classMappings {
		if existing, ok := input.FacultyBySubject[mapping.SubjectCode]; ok && existing != mapping.FacultyID {
			return nil, nil, appErrors.Clone(appErrors.ErrScheduleConfig,
				fmt.Sprintf("subject %s is mapped to multiple faculties; resolve the duplicate mapping first", mapping.SubjectCode))
		}
		input.FacultyBySubject[mapping.SubjectCode] = mapping.FacultyID
	}

	external, practicalBusy, err := s.buildExternalState(ctx, class)
	if err != nil {
		return nil, nil, err
	}
	input.External = external
	input.PracticalBusy = practicalBusy
	return &input, byCode, nil
}

// buildExternalState folds other classes' commitments into one occupancy
// baseline. Manual mappings carry their faculty directly; generated rows are
// resolved through the full subject-faculty mapping table since the faculty
// id is not denormalised onto timetable rows.
func (s *TimetableService) buildExternalState(ctx context.Context, class models.ClassContext) (*scheduler.Occupancy, map[scheduler.Slot]struct{}, error) {
	external := scheduler.NewOccupancy()

	manualRows, err := s.manual.ListOutsideClass(ctx, class)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load manual mappings")
	}
	for _, row := range manualRows {
		external.Assign(row.FacultyID, scheduler.Day(row.WeekDay), row.PeriodNo)
	}

	allMappings, err := s.mappings.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load faculty mappings")
	}
	// A subject taught by multiple faculties yields one mapping per faculty;
	// every one of them is committed to the slot, so all must be marked busy.
	facultyLookup := make(map[string][]string, len(allMappings))
	for _, mapping := range allMappings {
		key := mappingKey(mapping.Context(), mapping.SubjectCode)
		facultyLookup[key] = append(facultyLookup[key], mapping.FacultyID)
	}

	generatedRows, err := s.store.ListOutsideClass(ctx, class)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load generated timetables")
	}
	for _, row := range generatedRows {
		rowClass := models.ClassContext{
			AcademicYear: row.AcademicYear,
			Branch:       row.Branch,
			Semester:     row.Semester,
			Section:      row.Section,
			Regulation:   row.Regulation,
		}
		for _, facultyID := range facultyLookup[mappingKey(rowClass, row.SubjectCode)] {
			external.Assign(facultyID, scheduler.Day(row.Day), row.PeriodNo)
		}
	}

	practicalBusy := make(map[scheduler.Slot]struct{})
	generatedPracticals, err := s.store.ListPracticalSlotsByBranch(ctx, class)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load practical lab usage")
	}
	for _, row := range generatedPracticals {
		practicalBusy[scheduler.Slot{Day: scheduler.Day(row.Day), Period: row.PeriodNo}] = struct{}{}
	}
	manualPracticals, err := s.manual.ListPracticalSlotsByBranch(ctx, class)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load practical lab usage")
	}
	for _, row := range manualPracticals {
		practicalBusy[scheduler.Slot{Day: scheduler.Day(row.WeekDay), Period: row.PeriodNo}] = struct{}{}
	}
	return external, practicalBusy, nil
}

// persist replaces the class timetable with the validated board in one
// transaction, resolving subject row ids and canonical time-slot ids first.
func (s *TimetableService) persist(ctx context.Context, class models.ClassContext, result *scheduler.Result, pools map[string]models.Subject) error {
	slotIDs, err := s.slots.EnsureWeek(ctx, canonicalWeek())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "ensure time slots")
	}

	generatedAt := time.Now().UTC()
	entries := make([]models.TimetableEntry, 0, scheduler.TotalWeeklyPeriods)
	for _, slot := range scheduler.AllSlots() {
		code := result.Board.At(slot.Day, slot.Period)
		if code == "" {
			continue
		}
		subject, ok := pools[code]
		if !ok {
			return appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("placed subject %s has no catalog row", code))
		}
		entry := models.TimetableEntry{
			AcademicYear: class.AcademicYear,
			Branch:       class.Branch,
			Semester:     class.Semester,
			Section:      class.Section,
			Regulation:   class.Regulation,
			Day:          string(slot.Day),
			PeriodNo:     slot.Period,
			SubjectID:    subject.ID,
			GeneratedAt:  generatedAt,
		}
		if persisted, ok := slotIDs[s.slotKey(string(slot.Day), slot.Period)]; ok {
			entry.TimeSlotID = persisted.ID
		}
		entries = append(entries, entry)
	}

	tx, err := s.store.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "begin transaction")
	}
	if err := s.store.DeleteByClass(ctx, tx, class); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "replace timetable")
	}
	if err := s.store.BulkCreate(ctx, tx, entries); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store timetable")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "commit timetable")
	}
	return nil
}

func (s *TimetableService) recordGeneration(err error, attempts int, started time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		switch appErrors.FromError(err).Code {
		case appErrors.ErrScheduleConfig.Code:
			outcome = "config_error"
		case appErrors.ErrScheduleExhausted.Code:
			outcome = "exhausted"
		}
	}
	s.metrics.RecordGeneration(outcome, attempts, time.Since(started))
}

func classFromRequest(req dto.ClassContextRequest) models.ClassContext {
	return models.ClassContext{
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Branch:       strings.TrimSpace(req.Branch),
		Semester:     strings.TrimSpace(req.Semester),
		Section:      strings.TrimSpace(req.Section),
		Regulation:   strings.TrimSpace(req.Regulation),
	}
}

func mappingKey(class models.ClassContext, subjectCode string) string {
	return class.CacheKey() + "|" + subjectCode
}

func timetableCacheKey(class models.ClassContext) string {
	return "timetable:" + class.CacheKey()
}

func timetableCachePattern(class models.ClassContext) string {
	return "timetable:" + class.CacheKey() + "*"
}

// canonicalWeek expands the fixed grid into persistable time-slot rows.
func canonicalWeek() []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, scheduler.TotalWeeklyPeriods)
	for _, slot := range scheduler.AllSlots() {
		window := scheduler.PeriodTimes[slot.Period]
		slots = append(slots, models.TimeSlot{
			Day:          string(slot.Day),
			PeriodNumber: slot.Period,
			StartTime:    window.Start,
			EndTime:      window.End,
		})
	}
	return slots
}

func contextToRequest(class models.ClassContext) dto.ClassContextRequest {
	return dto.ClassContextRequest{
		AcademicYear: class.AcademicYear,
		Branch:       class.Branch,
		Semester:     class.Semester,
		Section:      class.Section,
		Regulation:   class.Regulation,
	}
}

func emptyWeek() map[string][]dto.TimetableCell {
	week := make(map[string][]dto.TimetableCell, len(scheduler.Days))
	for _, day := range scheduler.Days {
		cells := make([]dto.TimetableCell, 0, scheduler.PeriodsPerDay)
		for period := 1; period <= scheduler.PeriodsPerDay; period++ {
			window := scheduler.PeriodTimes[period]
			cells = append(cells, dto.TimetableCell{
				Period: period,
				Time:   window.Start + "-" + window.End,
			})
		}
		week[string(day)] = cells
	}
	return week
}

func dayNames() []string {
	names := make([]string, len(scheduler.Days))
	for i, day := range scheduler.Days {
		names[i] = string(day)
	}
	return names
}

func responseFromBoard(class models.ClassContext, board *scheduler.Board, names map[string]string, attempts int) *dto.TimetableResponse {
	week := emptyWeek()
	for _, slot := range scheduler.AllSlots() {
		code := board.At(slot.Day, slot.Period)
		if code == "" {
			continue
		}
		cell := &week[string(slot.Day)][slot.Period-1]
		cell.SubjectCode = code
		cell.Subject = names[code]
	}
	return &dto.TimetableResponse{
		Context:  contextToRequest(class),
		Days:     dayNames(),
		Week:     week,
		Attempts: attempts,
	}
}

func responseFromEntries(class models.ClassContext, entries []models.TimetableEntryDetail) *dto.TimetableResponse {
	week := emptyWeek()
	for _, entry := range entries {
		cells, ok := week[entry.Day]
		if !ok || entry.PeriodNo < 1 || entry.PeriodNo > scheduler.PeriodsPerDay {
			continue
		}
		cells[entry.PeriodNo-1].SubjectCode = entry.SubjectCode
		cells[entry.PeriodNo-1].Subject = entry.SubjectName
	}
	return &dto.TimetableResponse{
		Context: contextToRequest(class),
		Days:    dayNames(),
		Week:    week,
	}
}

// datasetFromResponse lays the week out as one row per day with a column per
// period, matching how printed timetables read.
func datasetFromResponse(resp *dto.TimetableResponse) export.Dataset {
	headers := []string{"Day"}
	for period := 1; period <= scheduler.PeriodsPerDay; period++ {
		window := scheduler.PeriodTimes[period]
		headers = append(headers, fmt.Sprintf("P%d (%s-%s)", period, window.Start, window.End))
	}
	rows := make([]map[string]string, 0, len(resp.Days))
	for _, day := range resp.Days {
		row := map[string]string{"Day": day}
		for i, cell := range resp.Week[day] {
			value := cell.SubjectCode
			if value == "" {
				value = "-"
			}
			row[headers[i+1]] = value
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
