package scheduler

import (
	"fmt"
	"sort"
)

// validateFullSchedule exhaustively re-checks every hard constraint over a
// completed board, independent of whatever the placers already verified. The
// faculty replay against the external baseline is the authoritative
// faculty-safety check.
func validateFullSchedule(board *Board, sel selection, external *Occupancy) error {
	for _, slot := range AllSlots() {
		if board.At(slot.Day, slot.Period) == "" {
			return fmt.Errorf("no empty periods allowed: %s period %d is unassigned", slot.Day, slot.Period)
		}
	}
	if board.Filled() != TotalWeeklyPeriods {
		return fmt.Errorf("total weekly periods must be exactly %d", TotalWeeklyPeriods)
	}

	subjectSlots := board.SubjectSlots()

	for _, subject := range sel.Theory {
		if len(subjectSlots[subject.Code]) != TheoryPeriodsPerSubject {
			return fmt.Errorf("theory subject %s must have exactly %d periods", subject.Code, TheoryPeriodsPerSubject)
		}
	}

	morning, afternoon := 0, 0
	for _, subject := range sel.Practical {
		slots := subjectSlots[subject.Code]
		if len(slots) != PracticalPeriodsPerSubject {
			return fmt.Errorf("practical subject %s must have exactly %d periods", subject.Code, PracticalPeriodsPerSubject)
		}
		day := slots[0].Day
		periods := make([]int, 0, len(slots))
		for _, slot := range slots {
			if slot.Day != day {
				return fmt.Errorf("practical subject %s must be in the same day", subject.Code)
			}
			periods = append(periods, slot.Period)
		}
		sort.Ints(periods)
		if !IsValidPracticalBlock(periods) {
			return fmt.Errorf("practical subject %s must be one of: (1,2,3), (2,3,4), (5,6,7)", subject.Code)
		}
		if (Block{periods[0], periods[1], periods[2]}).IsMorning() {
			morning++
		} else {
			afternoon++
		}
	}
	if morning == 0 || afternoon == 0 {
		return fmt.Errorf("practical distribution must include both morning and afternoon blocks")
	}

	if len(subjectSlots[sel.CRT.Code]) != CRTPeriodsPerWeek {
		return fmt.Errorf("CRT must have exactly %d periods", CRTPeriodsPerWeek)
	}
	if board.At(Monday, 1) == sel.CRT.Code {
		return fmt.Errorf("CRT cannot be scheduled in Monday 1st period")
	}

	if len(subjectSlots[sel.Mentoring.Code]) != MentoringPeriodsPerWeek {
		return fmt.Errorf("mentoring must have exactly %d period", MentoringPeriodsPerWeek)
	}

	perDayCapped := append(append([]subjectBinding{}, sel.Theory...), sel.CRT, sel.Mentoring)
	for _, day := range Days {
		counts := make(map[string]int, PeriodsPerDay)
		for period := 1; period <= PeriodsPerDay; period++ {
			counts[board.At(day, period)]++
		}
		for _, subject := range perDayCapped {
			if counts[subject.Code] > 2 {
				return fmt.Errorf("subject %s cannot appear more than 2 times in a day", subject.Code)
			}
		}
	}

	// Replay the whole board on top of the untouched external baseline.
	replay := external.Clone()
	for _, slot := range AllSlots() {
		code := board.At(slot.Day, slot.Period)
		facultyID := sel.FacultyBySubject[code]
		if replay.Conflict(facultyID, slot.Day, slot.Period) {
			return fmt.Errorf("faculty clash detected for subject %s on %s period %d", code, slot.Day, slot.Period)
		}
		replay.Assign(facultyID, slot.Day, slot.Period)
	}
	return nil
}
