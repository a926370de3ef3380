package scheduler

import "sort"

type blockOption struct {
	Day   Day
	Block Block
}

// placePracticals assigns every practical subject to one (day, block) using
// depth-first search with backtracking. Each day carries at most one practical
// block for the class, and the final assignment must cover at least one
// morning block and at least one afternoon block.
//
// The day scan order rotates with the attempt number and the block order
// reverses on odd attempts, so retries explore different paths.
func placePracticals(board *Board, subjects []subjectBinding, occ *Occupancy, labBusy map[Slot]struct{}, attempt int) bool {
	shift := attempt % len(Days)
	dayOrder := append(append([]Day{}, Days[shift:]...), Days[:shift]...)

	blockOrder := append([]Block{}, ValidPracticalBlocks...)
	if attempt%2 == 1 {
		for i, j := 0, len(blockOrder)-1; i < j; i, j = i+1, j-1 {
			blockOrder[i], blockOrder[j] = blockOrder[j], blockOrder[i]
		}
	}

	candidates := make(map[string][]blockOption, len(subjects))
	bindings := make(map[string]subjectBinding, len(subjects))
	order := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		bindings[subject.Code] = subject
		order = append(order, subject.Code)
		var options []blockOption
		for _, day := range dayOrder {
			for _, block := range blockOrder {
				if blockBlockedByBranch(day, block, labBusy) {
					continue
				}
				if blockOccupied(board, day, block) {
					continue
				}
				if blockFacultyConflict(occ, subject.FacultyID, day, block) {
					continue
				}
				options = append(options, blockOption{Day: day, Block: block})
			}
		}
		candidates[subject.Code] = options
	}

	// Most-constrained-first: fewest candidate blocks placed first.
	sort.SliceStable(order, func(i, j int) bool {
		return len(candidates[order[i]]) < len(candidates[order[j]])
	})

	usedDays := make(map[Day]bool)
	morning, afternoon := 0, 0

	var dfs func(index int) bool
	dfs = func(index int) bool {
		if index == len(order) {
			return morning > 0 && afternoon > 0
		}
		subject := bindings[order[index]]
		for _, option := range candidates[subject.Code] {
			if usedDays[option.Day] {
				continue
			}
			if blockOccupied(board, option.Day, option.Block) {
				continue
			}
			if blockFacultyConflict(occ, subject.FacultyID, option.Day, option.Block) {
				continue
			}

			usedDays[option.Day] = true
			for _, period := range option.Block {
				board.Set(option.Day, period, subject.Code)
				occ.Assign(subject.FacultyID, option.Day, period)
			}
			if option.Block.IsMorning() {
				morning++
			} else {
				afternoon++
			}

			if dfs(index + 1) {
				return true
			}

			if option.Block.IsMorning() {
				morning--
			} else {
				afternoon--
			}
			for _, period := range option.Block {
				board.Clear(option.Day, period)
				occ.Unassign(subject.FacultyID, option.Day, period)
			}
			delete(usedDays, option.Day)
		}
		return false
	}

	return dfs(0)
}

// blockBlockedByBranch checks the shared-lab constraint: another section of
// the same branch already runs a practical in one of the block's periods.
func blockBlockedByBranch(day Day, block Block, labBusy map[Slot]struct{}) bool {
	for _, period := range block {
		if _, ok := labBusy[Slot{Day: day, Period: period}]; ok {
			return true
		}
	}
	return false
}

func blockOccupied(board *Board, day Day, block Block) bool {
	for _, period := range block {
		if board.At(day, period) != "" {
			return true
		}
	}
	return false
}

func blockFacultyConflict(occ *Occupancy, facultyID string, day Day, block Block) bool {
	for _, period := range block {
		if occ.Conflict(facultyID, day, period) {
			return true
		}
	}
	return false
}
