package scheduler

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func practicalBindings() []subjectBinding {
	return []subjectBinding{
		{Code: "CS301L", FacultyID: "f-lab-1"},
		{Code: "CS302L", FacultyID: "f-lab-2"},
		{Code: "CS303L", FacultyID: "f-lab-3"},
	}
}

func TestPlacePracticalsAssignsValidBlocks(t *testing.T) {
	board := NewBoard()
	occ := NewOccupancy()

	ok := placePracticals(board, practicalBindings(), occ, nil, 0)
	require.True(t, ok)

	morning, afternoon := 0, 0
	usedDays := make(map[Day]bool)
	for code, slots := range board.SubjectSlots() {
		require.Len(t, slots, PracticalPeriodsPerSubject, "subject %s", code)

		day := slots[0].Day
		periods := make([]int, 0, len(slots))
		for _, slot := range slots {
			assert.Equal(t, day, slot.Day, "subject %s spans days", code)
			periods = append(periods, slot.Period)
		}
		assert.False(t, usedDays[day], "two practicals share day %s", day)
		usedDays[day] = true

		sort.Ints(periods)
		require.True(t, IsValidPracticalBlock(periods), "subject %s block %v", code, periods)
		if (Block{periods[0], periods[1], periods[2]}).IsMorning() {
			morning++
		} else {
			afternoon++
		}
	}
	assert.Greater(t, morning, 0)
	assert.Greater(t, afternoon, 0)
}

func TestPlacePracticalsTracksFacultyOccupancy(t *testing.T) {
	board := NewBoard()
	occ := NewOccupancy()

	require.True(t, placePracticals(board, practicalBindings(), occ, nil, 0))

	for _, binding := range practicalBindings() {
		assert.Equal(t, PracticalPeriodsPerSubject, occ.WeekLoad(binding.FacultyID))
	}
}

func TestPlacePracticalsHonoursBranchLabBusy(t *testing.T) {
	board := NewBoard()
	occ := NewOccupancy()

	// Block out every morning period across the week so no morning block
	// can be formed; the morning+afternoon mix then becomes unsatisfiable.
	labBusy := make(map[Slot]struct{})
	for _, day := range Days {
		for period := 1; period <= 4; period++ {
			labBusy[Slot{Day: day, Period: period}] = struct{}{}
		}
	}

	assert.False(t, placePracticals(board, practicalBindings(), occ, labBusy, 0))
	assert.Equal(t, 0, board.Filled(), "failed placement must leave the board untouched")
}

func TestPlacePracticalsRespectsFacultyConflicts(t *testing.T) {
	board := NewBoard()
	occ := NewOccupancy()
	for _, day := range Days {
		for period := 1; period <= PeriodsPerDay; period++ {
			occ.Assign("f-lab-1", day, period)
		}
	}

	assert.False(t, placePracticals(board, practicalBindings(), occ, nil, 0))
}

func TestPlacePracticalsAttemptDiversification(t *testing.T) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		board := NewBoard()
		occ := NewOccupancy()
		assert.True(t, placePracticals(board, practicalBindings(), occ, nil, attempt), "attempt %d", attempt)
	}
}
