package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSelection() selection {
	sel := selection{
		Theory:           theoryBindings(),
		Practical:        practicalBindings(),
		CRT:              subjectBinding{Code: "CRT01", FacultyID: "f-crt"},
		Mentoring:        subjectBinding{Code: "MEN01", FacultyID: "f-men"},
		FacultyBySubject: make(map[string]string),
	}
	for _, binding := range append(append([]subjectBinding{}, sel.Theory...), sel.Practical...) {
		sel.FacultyBySubject[binding.Code] = binding.FacultyID
	}
	sel.FacultyBySubject[sel.CRT.Code] = sel.CRT.FacultyID
	sel.FacultyBySubject[sel.Mentoring.Code] = sel.Mentoring.FacultyID
	return sel
}

func buildFullBoard(t *testing.T, sel selection, external *Occupancy) *Board {
	t.Helper()
	board := NewBoard()
	occ := external.Clone()
	require.True(t, placePracticals(board, sel.Practical, occ, nil, 0))
	require.True(t, placeMentoring(board, sel.Mentoring, occ))
	require.True(t, placeCRT(board, sel.CRT, occ))
	ok, _, err := placeTheory(board, sel.Theory, occ)
	require.NoError(t, err)
	require.True(t, ok)
	return board
}

func TestValidateFullScheduleAcceptsGeneratedBoard(t *testing.T) {
	sel := fullSelection()
	board := buildFullBoard(t, sel, NewOccupancy())

	assert.NoError(t, validateFullSchedule(board, sel, NewOccupancy()))
}

func TestValidateFullScheduleRejectsEmptyCell(t *testing.T) {
	sel := fullSelection()
	board := buildFullBoard(t, sel, NewOccupancy())
	board.Clear(Friday, 4)

	err := validateFullSchedule(board, sel, NewOccupancy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no empty periods allowed")
}

func TestValidateFullScheduleRejectsWrongTheoryCount(t *testing.T) {
	sel := fullSelection()
	board := buildFullBoard(t, sel, NewOccupancy())

	// Overwrite one theory period with another theory subject: one subject
	// drops below its weekly count, the other exceeds it.
	slots := board.SubjectSlots()
	victim := slots[sel.Theory[0].Code][0]
	board.Set(victim.Day, victim.Period, sel.Theory[1].Code)

	err := validateFullSchedule(board, sel, NewOccupancy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have exactly")
}

func TestValidateFullScheduleRejectsExternalFacultyClash(t *testing.T) {
	sel := fullSelection()
	board := buildFullBoard(t, sel, NewOccupancy())

	// The baseline used for replay now books a placed faculty at one of its
	// board slots, which the builder never saw.
	clashing := NewOccupancy()
	slot := board.SubjectSlots()[sel.Theory[0].Code][0]
	clashing.Assign(sel.Theory[0].FacultyID, slot.Day, slot.Period)

	err := validateFullSchedule(board, sel, clashing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "faculty clash")
}

func TestValidateFullScheduleRejectsSplitPractical(t *testing.T) {
	sel := fullSelection()
	board := buildFullBoard(t, sel, NewOccupancy())

	// Swap one practical period with a theory period on another day.
	practicalSlot := board.SubjectSlots()[sel.Practical[0].Code][0]
	var theorySlot Slot
	for _, slot := range board.SubjectSlots()[sel.Theory[0].Code] {
		if slot.Day != practicalSlot.Day {
			theorySlot = slot
			break
		}
	}
	practicalCode := board.At(practicalSlot.Day, practicalSlot.Period)
	theoryCode := board.At(theorySlot.Day, theorySlot.Period)
	board.Set(practicalSlot.Day, practicalSlot.Period, theoryCode)
	board.Set(theorySlot.Day, theorySlot.Period, practicalCode)

	err := validateFullSchedule(board, sel, NewOccupancy())
	require.Error(t, err)
}
