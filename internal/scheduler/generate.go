package scheduler

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/college-erp-api/internal/models"
	appErrors "github.com/noah-isme/college-erp-api/pkg/errors"
)

// subjectBinding couples a subject code with the single faculty teaching it
// for the class being scheduled.
type subjectBinding struct {
	Code      string
	FacultyID string
}

// selection holds the subjects chosen from the pools for one generation run.
type selection struct {
	Theory           []subjectBinding
	Practical        []subjectBinding
	CRT              subjectBinding
	Mentoring        subjectBinding
	FacultyBySubject map[string]string
}

// Input is everything the engine needs for one class context. External state
// is provided up front; the engine performs no I/O.
type Input struct {
	Context models.ClassContext

	TheoryPool    []models.Subject
	PracticalPool []models.Subject
	CRTPool       []models.Subject
	MentoringPool []models.Subject

	// FacultyBySubject maps subject code to its single faculty for this class.
	FacultyBySubject map[string]string

	// External is the immutable occupancy baseline built from other classes'
	// timetables and manual mappings. Never mutated; each attempt works on a
	// clone.
	External *Occupancy

	// PracticalBusy marks slots where another section of the same branch
	// already runs a practical (shared labs are per-branch resources).
	PracticalBusy map[Slot]struct{}
}

// Result is a validated, fully assigned board.
type Result struct {
	Board     *Board
	Theory    []models.Subject
	Practical []models.Subject
	CRT       models.Subject
	Mentoring models.Subject
	Attempts  int
}

// Generator runs the multi-phase placement pipeline with bounded retries.
type Generator struct {
	logger      *zap.Logger
	maxAttempts int
}

// NewGenerator builds a generator. maxAttempts <= 0 falls back to MaxAttempts.
func NewGenerator(logger *zap.Logger, maxAttempts int) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxAttempts <= 0 {
		maxAttempts = MaxAttempts
	}
	return &Generator{logger: logger, maxAttempts: maxAttempts}
}

// Generate runs placement attempts until one produces a board that survives
// full validation. Configuration faults abort immediately; placement and
// validation failures advance to the next attempt with a fresh board and a
// fresh copy of the external occupancy baseline.
func (g *Generator) Generate(in Input) (*Result, error) {
	theory, practical, crt, mentoring, err := selectPools(in)
	if err != nil {
		return nil, err
	}

	sel := selection{FacultyBySubject: make(map[string]string)}
	selected := append(append([]models.Subject{}, theory...), practical...)
	selected = append(selected, crt, mentoring)
	for _, subject := range selected {
		facultyID, ok := in.FacultyBySubject[subject.SubjectID]
		if !ok {
			return nil, errConfig("no faculty mapping found for subject %s; save subject-faculty mapping first", subject.SubjectID)
		}
		sel.FacultyBySubject[subject.SubjectID] = facultyID
	}
	for _, subject := range theory {
		sel.Theory = append(sel.Theory, subjectBinding{Code: subject.SubjectID, FacultyID: sel.FacultyBySubject[subject.SubjectID]})
	}
	for _, subject := range practical {
		sel.Practical = append(sel.Practical, subjectBinding{Code: subject.SubjectID, FacultyID: sel.FacultyBySubject[subject.SubjectID]})
	}
	sel.CRT = subjectBinding{Code: crt.SubjectID, FacultyID: sel.FacultyBySubject[crt.SubjectID]}
	sel.Mentoring = subjectBinding{Code: mentoring.SubjectID, FacultyID: sel.FacultyBySubject[mentoring.SubjectID]}

	external := in.External
	if external == nil {
		external = NewOccupancy()
	}

	lastErr := ""
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		board := NewBoard()
		occ := external.Clone()

		if !placePracticals(board, sel.Practical, occ, in.PracticalBusy, attempt) {
			lastErr = "unable to place practical blocks with updated constraints"
			g.logger.Debug("attempt failed", zap.Int("attempt", attempt), zap.String("phase", "practical"))
			continue
		}
		if !placeMentoring(board, sel.Mentoring, occ) {
			lastErr = fmt.Sprintf("unable to place mentoring period for subject %s (faculty %s) without clash",
				sel.Mentoring.Code, sel.Mentoring.FacultyID)
			g.logger.Debug("attempt failed", zap.Int("attempt", attempt), zap.String("phase", "mentoring"))
			continue
		}
		if !placeCRT(board, sel.CRT, occ) {
			lastErr = fmt.Sprintf("unable to place CRT periods for subject %s without clash", sel.CRT.Code)
			g.logger.Debug("attempt failed", zap.Int("attempt", attempt), zap.String("phase", "crt"))
			continue
		}
		ok, reason, cfgErr := placeTheory(board, sel.Theory, occ)
		if cfgErr != nil {
			return nil, cfgErr
		}
		if !ok {
			if reason == "" {
				reason = theoryFailureReason(sel.Theory, external)
			}
			lastErr = "unable to place theory subjects with current constraints: " + reason
			g.logger.Debug("attempt failed", zap.Int("attempt", attempt), zap.String("phase", "theory"), zap.String("reason", reason))
			continue
		}

		if err := validateFullSchedule(board, sel, external); err != nil {
			lastErr = err.Error()
			g.logger.Debug("attempt failed validation", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		g.logger.Info("timetable generated",
			zap.String("context", in.Context.String()),
			zap.Int("attempts", attempt+1))
		return &Result{
			Board:     board,
			Theory:    theory,
			Practical: practical,
			CRT:       crt,
			Mentoring: mentoring,
			Attempts:  attempt + 1,
		}, nil
	}

	if lastErr == "" {
		lastErr = "unable to generate timetable"
	}
	return nil, appErrors.Clone(appErrors.ErrScheduleExhausted, lastErr)
}

// selectPools validates pool sizes and slices the subjects actually used,
// keeping subject-code order deterministic.
func selectPools(in Input) (theory, practical []models.Subject, crt, mentoring models.Subject, err error) {
	theoryPool := sortedByCode(in.TheoryPool)
	practicalPool := sortedByCode(in.PracticalPool)
	crtPool := sortedByCode(in.CRTPool)
	mentoringPool := sortedByCode(in.MentoringPool)

	if len(theoryPool) < TheoryRequiredCount {
		return nil, nil, crt, mentoring, errConfig("at least %d THEORY subjects are required", TheoryRequiredCount)
	}
	if len(practicalPool) < PracticalRequiredCount {
		return nil, nil, crt, mentoring, errConfig("at least %d PRACTICAL subjects are required", PracticalRequiredCount)
	}
	if len(crtPool) == 0 {
		return nil, nil, crt, mentoring, errConfig("at least 1 CRT subject is required")
	}
	if len(mentoringPool) == 0 {
		return nil, nil, crt, mentoring, errConfig("at least 1 MENTORING subject is required")
	}
	return theoryPool[:TheoryRequiredCount], practicalPool[:PracticalRequiredCount], crtPool[0], mentoringPool[0], nil
}

func sortedByCode(subjects []models.Subject) []models.Subject {
	sorted := append([]models.Subject{}, subjects...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SubjectID < sorted[j].SubjectID })
	return sorted
}

// theoryFailureReason is the fallback when the theory search fails without
// naming a culprit. It points at the faculty carrying the heaviest external
// weekly load.
func theoryFailureReason(theory []subjectBinding, external *Occupancy) string {
	worst := ""
	worstLoad := -1
	for _, subject := range theory {
		if load := external.WeekLoad(subject.FacultyID); load > worstLoad {
			worst = fmt.Sprintf("subject %s (faculty %s, external weekly load %d)", subject.Code, subject.FacultyID, load)
			worstLoad = load
		}
	}
	return "most constrained: " + worst
}

func errConfig(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrScheduleConfig, fmt.Sprintf(format, args...))
}
