package scheduler

// crtPreferredSlots spread the two CRT periods over early periods of distinct
// days. Monday period 1 is never allowed for CRT.
var crtPreferredSlots = []Slot{
	{Day: Tuesday, Period: 1},
	{Day: Thursday, Period: 1},
	{Day: Wednesday, Period: 2},
	{Day: Friday, Period: 2},
	{Day: Saturday, Period: 2},
	{Day: Monday, Period: 2},
}

// placeCRT assigns exactly two CRT periods, never adjacent on the same day,
// consuming the preference list first and the rest of the grid in canonical
// order after it.
func placeCRT(board *Board, subject subjectBinding, occ *Occupancy) bool {
	preferred := make(map[Slot]bool, len(crtPreferredSlots))
	for _, slot := range crtPreferredSlots {
		preferred[slot] = true
	}
	order := append([]Slot{}, crtPreferredSlots...)
	for _, slot := range AllSlots() {
		if !preferred[slot] {
			order = append(order, slot)
		}
	}

	var placed []Slot
	for _, slot := range order {
		if len(placed) >= CRTPeriodsPerWeek {
			break
		}
		if slot.Day == Monday && slot.Period == 1 {
			continue
		}
		if board.At(slot.Day, slot.Period) != "" {
			continue
		}
		if adjacentOnSameDay(placed, slot) {
			continue
		}
		if occ.Conflict(subject.FacultyID, slot.Day, slot.Period) {
			continue
		}
		board.Set(slot.Day, slot.Period, subject.Code)
		occ.Assign(subject.FacultyID, slot.Day, slot.Period)
		placed = append(placed, slot)
	}
	return len(placed) == CRTPeriodsPerWeek
}

func adjacentOnSameDay(placed []Slot, candidate Slot) bool {
	for _, slot := range placed {
		if slot.Day != candidate.Day {
			continue
		}
		diff := slot.Period - candidate.Period
		if diff == 1 || diff == -1 {
			return true
		}
	}
	return false
}
