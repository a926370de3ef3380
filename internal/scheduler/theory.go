package scheduler

import (
	"fmt"
	"sort"
)

// theorySearchBudget caps the number of DFS nodes one theory search may
// expand. A budgeted failure fails the attempt, not the whole generation.
const theorySearchBudget = 200000

// theoryState carries the mutable bookkeeping for theory backtracking.
type theoryState struct {
	board           *Board
	occ             *Occupancy
	bindings        map[string]subjectBinding
	remaining       map[string]int
	daySubjectCount map[Day]map[string]int
	dayPresence     map[string]map[Day]bool
	nodes           int
}

// placeTheory fills every remaining open slot with theory subjects using
// most-constrained-slot-first backtracking. Each subject needs exactly 5
// periods, may take at most 2 periods per day, and never sits adjacent to
// itself on the same day. The open-slot count must equal 6x5=30 before the
// search starts; anything else is a configuration fault, not a search failure.
//
// On a placement failure the returned reason names what the search itself
// ran into: a subject without enough feasible slots, or an exhausted node
// budget. A fast infeasibility check runs before the DFS so a faculty booked
// solid fails the phase immediately instead of forcing the search to prove it.
func placeTheory(board *Board, subjects []subjectBinding, occ *Occupancy) (bool, string, error) {
	state := &theoryState{
		board:           board,
		occ:             occ,
		bindings:        make(map[string]subjectBinding, len(subjects)),
		remaining:       make(map[string]int, len(subjects)),
		daySubjectCount: make(map[Day]map[string]int, len(Days)),
		dayPresence:     make(map[string]map[Day]bool),
	}
	for _, day := range Days {
		state.daySubjectCount[day] = make(map[string]int)
	}
	for _, subject := range subjects {
		state.bindings[subject.Code] = subject
		state.remaining[subject.Code] = TheoryPeriodsPerSubject
	}
	for _, slot := range AllSlots() {
		code := board.At(slot.Day, slot.Period)
		if code == "" {
			continue
		}
		state.daySubjectCount[slot.Day][code]++
		state.markPresent(code, slot.Day)
	}

	if open := len(board.OpenSlots()); open != TheoryRequiredCount*TheoryPeriodsPerSubject {
		return false, "", errConfig("weekly slot distribution does not match required %d theory periods (found %d open slots)",
			TheoryRequiredCount*TheoryPeriodsPerSubject, open)
	}

	if reason := state.infeasibleSubject(); reason != "" {
		return false, reason, nil
	}

	if state.search() {
		return true, "", nil
	}
	if state.nodes >= theorySearchBudget {
		return false, fmt.Sprintf("theory search exceeded %d nodes without a complete assignment", theorySearchBudget), nil
	}
	return false, "", nil
}

// infeasibleSubject reports the first subject that provably cannot reach its
// weekly period count: counting at most 2 feasible open slots per day, the
// total must cover the remaining periods. Empty string means no subject is
// ruled out up front.
func (s *theoryState) infeasibleSubject() string {
	open := s.board.OpenSlots()
	codes := make([]string, 0, len(s.bindings))
	for code := range s.bindings {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		subject := s.bindings[code]
		feasible := 0
		for _, day := range Days {
			onDay := 0
			for _, slot := range open {
				if slot.Day != day {
					continue
				}
				if s.occ.Conflict(subject.FacultyID, slot.Day, slot.Period) {
					continue
				}
				onDay++
				if onDay == 2 {
					break
				}
			}
			feasible += onDay
		}
		if feasible < s.remaining[subject.Code] {
			return fmt.Sprintf("subject %s (faculty %s) has only %d feasible periods of the required %d",
				subject.Code, subject.FacultyID, feasible, s.remaining[subject.Code])
		}
	}
	return ""
}

func (s *theoryState) markPresent(code string, day Day) {
	if s.dayPresence[code] == nil {
		s.dayPresence[code] = make(map[Day]bool)
	}
	s.dayPresence[code][day] = true
}

// candidates returns eligible subjects for the slot, ordered to spread
// subjects across days: fewest same-day occurrences first, then fewest
// distinct days used, then most periods still needed, then subject code.
func (s *theoryState) candidates(slot Slot) []string {
	prev := s.board.At(slot.Day, slot.Period-1)
	next := s.board.At(slot.Day, slot.Period+1)

	var eligible []string
	for code, left := range s.remaining {
		if left <= 0 {
			continue
		}
		if s.daySubjectCount[slot.Day][code] >= 2 {
			continue
		}
		if prev == code || next == code {
			continue
		}
		if s.occ.Conflict(s.bindings[code].FacultyID, slot.Day, slot.Period) {
			continue
		}
		eligible = append(eligible, code)
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if s.daySubjectCount[slot.Day][a] != s.daySubjectCount[slot.Day][b] {
			return s.daySubjectCount[slot.Day][a] < s.daySubjectCount[slot.Day][b]
		}
		if len(s.dayPresence[a]) != len(s.dayPresence[b]) {
			return len(s.dayPresence[a]) < len(s.dayPresence[b])
		}
		if s.remaining[a] != s.remaining[b] {
			return s.remaining[a] > s.remaining[b]
		}
		return a < b
	})
	return eligible
}

// pickSlot selects the open slot with the fewest eligible candidates,
// breaking ties by canonical scan order.
func (s *theoryState) pickSlot() (Slot, []string, bool) {
	var best Slot
	var bestCandidates []string
	found := false
	for _, slot := range s.board.OpenSlots() {
		cands := s.candidates(slot)
		if !found || len(cands) < len(bestCandidates) {
			best = slot
			bestCandidates = cands
			found = true
			if len(bestCandidates) <= 1 {
				break
			}
		}
	}
	return best, bestCandidates, found
}

func (s *theoryState) search() bool {
	s.nodes++
	if s.nodes >= theorySearchBudget {
		return false
	}

	done := true
	for _, left := range s.remaining {
		if left != 0 {
			done = false
			break
		}
	}
	if done {
		return len(s.board.OpenSlots()) == 0
	}

	slot, cands, ok := s.pickSlot()
	if !ok || len(cands) == 0 {
		return false
	}

	for _, code := range cands {
		facultyID := s.bindings[code].FacultyID
		s.board.Set(slot.Day, slot.Period, code)
		s.remaining[code]--
		s.daySubjectCount[slot.Day][code]++
		s.markPresent(code, slot.Day)
		s.occ.Assign(facultyID, slot.Day, slot.Period)

		if s.search() {
			return true
		}

		s.occ.Unassign(facultyID, slot.Day, slot.Period)
		s.daySubjectCount[slot.Day][code]--
		if s.daySubjectCount[slot.Day][code] == 0 {
			delete(s.dayPresence[code], slot.Day)
		}
		s.remaining[code]++
		s.board.Clear(slot.Day, slot.Period)
	}
	return false
}
