package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func theoryBindings() []subjectBinding {
	return []subjectBinding{
		{Code: "CS301", FacultyID: "f-1"},
		{Code: "CS302", FacultyID: "f-2"},
		{Code: "CS303", FacultyID: "f-3"},
		{Code: "CS304", FacultyID: "f-4"},
		{Code: "CS305", FacultyID: "f-5"},
		{Code: "CS306", FacultyID: "f-6"},
	}
}

// prefilledBoard occupies the 12 non-theory periods the earlier phases would
// have placed, leaving exactly 30 open slots.
func prefilledBoard() *Board {
	board := NewBoard()
	for _, period := range []int{1, 2, 3} {
		board.Set(Monday, period, "CS301L")
	}
	for _, period := range []int{2, 3, 4} {
		board.Set(Tuesday, period, "CS302L")
	}
	for _, period := range []int{5, 6, 7} {
		board.Set(Wednesday, period, "CS303L")
	}
	board.Set(Thursday, 1, "CRT01")
	board.Set(Friday, 2, "CRT01")
	board.Set(Saturday, 7, "MEN01")
	return board
}

func TestPlaceTheoryFillsEveryOpenSlot(t *testing.T) {
	board := prefilledBoard()
	occ := NewOccupancy()

	ok, _, err := placeTheory(board, theoryBindings(), occ)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, TotalWeeklyPeriods, board.Filled())
	slots := board.SubjectSlots()
	for _, binding := range theoryBindings() {
		assert.Len(t, slots[binding.Code], TheoryPeriodsPerSubject, "subject %s", binding.Code)
	}
}

func TestPlaceTheoryHonoursDailyCapAndAdjacency(t *testing.T) {
	board := prefilledBoard()
	occ := NewOccupancy()

	ok, _, err := placeTheory(board, theoryBindings(), occ)
	require.NoError(t, err)
	require.True(t, ok)

	for _, day := range Days {
		counts := make(map[string]int)
		for period := 1; period <= PeriodsPerDay; period++ {
			counts[board.At(day, period)]++
		}
		for _, binding := range theoryBindings() {
			assert.LessOrEqual(t, counts[binding.Code], 2, "subject %s on %s", binding.Code, day)
		}
		for period := 1; period < PeriodsPerDay; period++ {
			code := board.At(day, period)
			for _, binding := range theoryBindings() {
				if code == binding.Code {
					assert.NotEqual(t, code, board.At(day, period+1),
						"subject %s adjacent on %s", code, day)
				}
			}
		}
	}
}

func TestPlaceTheoryRejectsWrongOpenSlotCount(t *testing.T) {
	board := NewBoard()
	occ := NewOccupancy()

	ok, _, err := placeTheory(board, theoryBindings(), occ)
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot distribution")
}

func TestPlaceTheoryFailsWhenFacultyOverloaded(t *testing.T) {
	board := prefilledBoard()
	occ := NewOccupancy()
	for _, binding := range theoryBindings() {
		for _, day := range Days {
			for period := 1; period <= 5; period++ {
				occ.Assign(binding.FacultyID, day, period)
			}
		}
	}

	ok, _, err := placeTheory(board, theoryBindings(), occ)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlaceTheoryFailsFastWhenSingleFacultyBookedSolid(t *testing.T) {
	board := prefilledBoard()
	occ := NewOccupancy()
	for _, day := range []Day{Monday, Tuesday, Wednesday, Thursday, Friday} {
		for period := 1; period <= PeriodsPerDay; period++ {
			occ.Assign("f-1", day, period)
		}
	}

	ok, reason, err := placeTheory(board, theoryBindings(), occ)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "CS301")
	assert.Contains(t, reason, "f-1")
}
