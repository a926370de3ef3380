package scheduler

// placeMentoring assigns the single weekly mentoring period. Saturday's last
// period is preferred, then the remaining Saturday periods descending, then
// the rest of the week in descending period order.
func placeMentoring(board *Board, subject subjectBinding, occ *Occupancy) bool {
	preferred := []Slot{{Day: Saturday, Period: 7}}
	for period := PeriodsPerDay; period >= 1; period-- {
		if period != 7 {
			preferred = append(preferred, Slot{Day: Saturday, Period: period})
		}
	}
	for _, day := range Days {
		for period := PeriodsPerDay; period >= 1; period-- {
			if day == Saturday {
				continue
			}
			preferred = append(preferred, Slot{Day: day, Period: period})
		}
	}

	for _, slot := range preferred {
		if board.At(slot.Day, slot.Period) != "" {
			continue
		}
		if occ.Conflict(subject.FacultyID, slot.Day, slot.Period) {
			continue
		}
		board.Set(slot.Day, slot.Period, subject.Code)
		occ.Assign(subject.FacultyID, slot.Day, slot.Period)
		return true
	}
	return false
}
