package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceMentoringPrefersSaturdayLastPeriod(t *testing.T) {
	board := NewBoard()
	occ := NewOccupancy()

	require.True(t, placeMentoring(board, subjectBinding{Code: "MEN01", FacultyID: "f-m"}, occ))
	assert.Equal(t, "MEN01", board.At(Saturday, 7))
	assert.Equal(t, 1, occ.WeekLoad("f-m"))
}

func TestPlaceMentoringFallsBackDownSaturday(t *testing.T) {
	board := NewBoard()
	occ := NewOccupancy()
	board.Set(Saturday, 7, "CS301L")

	require.True(t, placeMentoring(board, subjectBinding{Code: "MEN01", FacultyID: "f-m"}, occ))
	assert.Equal(t, "MEN01", board.At(Saturday, 6))
}

func TestPlaceMentoringMovesOffSaturdayWhenFull(t *testing.T) {
	board := NewBoard()
	occ := NewOccupancy()
	for period := 1; period <= PeriodsPerDay; period++ {
		board.Set(Saturday, period, "CS301")
	}

	require.True(t, placeMentoring(board, subjectBinding{Code: "MEN01", FacultyID: "f-m"}, occ))
	assert.Equal(t, "MEN01", board.At(Monday, 7))
}

func TestPlaceMentoringFailsWhenFacultyFullyCommitted(t *testing.T) {
	board := NewBoard()
	occ := NewOccupancy()
	for _, day := range Days {
		for period := 1; period <= PeriodsPerDay; period++ {
			occ.Assign("f-m", day, period)
		}
	}

	assert.False(t, placeMentoring(board, subjectBinding{Code: "MEN01", FacultyID: "f-m"}, occ))
}
