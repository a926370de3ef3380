package scheduler

// Board is the 42-cell day x period grid of subject assignments for one
// class context. Cells hold subject codes; an empty string means unassigned.
// It is mutated in place during search and must end fully assigned.
type Board struct {
	cells map[Slot]string
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{cells: make(map[Slot]string, TotalWeeklyPeriods)}
}

// At returns the subject code at the slot, or "" when open.
func (b *Board) At(day Day, period int) string {
	return b.cells[Slot{Day: day, Period: period}]
}

// Set assigns a subject code to the slot.
func (b *Board) Set(day Day, period int, subjectCode string) {
	b.cells[Slot{Day: day, Period: period}] = subjectCode
}

// Clear reopens the slot.
func (b *Board) Clear(day Day, period int) {
	delete(b.cells, Slot{Day: day, Period: period})
}

// Filled counts assigned cells.
func (b *Board) Filled() int {
	return len(b.cells)
}

// OpenSlots returns unassigned slots in canonical scan order.
func (b *Board) OpenSlots() []Slot {
	var open []Slot
	for _, slot := range AllSlots() {
		if b.cells[slot] == "" {
			open = append(open, slot)
		}
	}
	return open
}

// SubjectSlots re-derives the subject -> slot-list view of the board in
// canonical order.
func (b *Board) SubjectSlots() map[string][]Slot {
	bySubject := make(map[string][]Slot)
	for _, slot := range AllSlots() {
		if code := b.cells[slot]; code != "" {
			bySubject[code] = append(bySubject[code], slot)
		}
	}
	return bySubject
}
