// Package scheduler implements the weekly class-timetable generation engine:
// a multi-phase constraint search that places practical blocks, the mentoring
// period, CRT periods and theory periods onto a fixed 6-day x 7-period grid
// without faculty clashes, retrying with varied search orderings.
package scheduler

// Day is a canonical weekday name as persisted in timetable rows.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
)

// Days lists the scheduling week in canonical order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// PeriodsPerDay is the number of teaching periods on each day.
const PeriodsPerDay = 7

// TotalWeeklyPeriods is the number of cells on a full board.
const TotalWeeklyPeriods = 6 * PeriodsPerDay

// Slot addresses one cell of the weekly grid.
type Slot struct {
	Day    Day
	Period int
}

// PeriodWindow carries the fixed clock times of a period.
type PeriodWindow struct {
	Start string
	End   string
}

// PeriodTimes maps each period number to its canonical clock window.
var PeriodTimes = map[int]PeriodWindow{
	1: {Start: "09:30", End: "10:20"},
	2: {Start: "10:20", End: "11:10"},
	3: {Start: "11:30", End: "12:20"},
	4: {Start: "12:20", End: "13:10"},
	5: {Start: "14:00", End: "14:50"},
	6: {Start: "14:50", End: "15:40"},
	7: {Start: "15:40", End: "16:30"},
}

// Pool sizes and per-subject weekly period counts.
const (
	TheoryRequiredCount        = 6
	PracticalRequiredCount     = 3
	TheoryPeriodsPerSubject    = 5
	PracticalPeriodsPerSubject = 3
	CRTPeriodsPerWeek          = 2
	MentoringPeriodsPerWeek    = 1
)

// Faculty workload caps, counting external commitments and the board together.
const (
	MaxDailyFacultyLoad  = 6
	MaxWeeklyFacultyLoad = 30
)

// MaxAttempts bounds the generation retry loop; it is the engine's sole
// runaway-computation guard.
const MaxAttempts = 10

// Block is a contiguous 3-period run on a single day used for practicals.
type Block [3]int

// ValidPracticalBlocks are the only block shapes a practical may occupy.
// Blocks never cross the lunch boundary between periods 4 and 5.
var ValidPracticalBlocks = []Block{{1, 2, 3}, {2, 3, 4}, {5, 6, 7}}

// IsMorning reports whether the block sits before the lunch boundary.
func (b Block) IsMorning() bool {
	return b[2] <= 4
}

// IsValidPracticalBlock reports whether periods form one of the fixed blocks.
func IsValidPracticalBlock(periods []int) bool {
	if len(periods) != 3 {
		return false
	}
	candidate := Block{periods[0], periods[1], periods[2]}
	for _, block := range ValidPracticalBlocks {
		if candidate == block {
			return true
		}
	}
	return false
}

// AllSlots returns every (day, period) pair in canonical scan order.
func AllSlots() []Slot {
	slots := make([]Slot, 0, TotalWeeklyPeriods)
	for _, day := range Days {
		for period := 1; period <= PeriodsPerDay; period++ {
			slots = append(slots, Slot{Day: day, Period: period})
		}
	}
	return slots
}
