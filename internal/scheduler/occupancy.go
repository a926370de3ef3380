package scheduler

type facultyDay struct {
	FacultyID string
	Day       Day
}

// Occupancy tracks which slots each faculty is committed to, together with
// per-day and weekly load counters. The busy-set size for a faculty always
// equals the sum of its per-day counts, which equals its weekly count.
type Occupancy struct {
	busy     map[string]map[Slot]struct{}
	dayLoad  map[facultyDay]int
	weekLoad map[string]int
}

// NewOccupancy returns an empty tracker.
func NewOccupancy() *Occupancy {
	return &Occupancy{
		busy:     make(map[string]map[Slot]struct{}),
		dayLoad:  make(map[facultyDay]int),
		weekLoad: make(map[string]int),
	}
}

// Conflict reports whether the faculty is already busy at (day, period), or
// has hit the daily or weekly workload cap.
func (o *Occupancy) Conflict(facultyID string, day Day, period int) bool {
	if _, ok := o.busy[facultyID][Slot{Day: day, Period: period}]; ok {
		return true
	}
	if o.dayLoad[facultyDay{FacultyID: facultyID, Day: day}] >= MaxDailyFacultyLoad {
		return true
	}
	if o.weekLoad[facultyID] >= MaxWeeklyFacultyLoad {
		return true
	}
	return false
}

// Assign marks the slot busy. Re-assigning an already-busy slot is a no-op so
// counters never double-count.
func (o *Occupancy) Assign(facultyID string, day Day, period int) {
	slot := Slot{Day: day, Period: period}
	if o.busy[facultyID] == nil {
		o.busy[facultyID] = make(map[Slot]struct{})
	}
	if _, ok := o.busy[facultyID][slot]; ok {
		return
	}
	o.busy[facultyID][slot] = struct{}{}
	o.dayLoad[facultyDay{FacultyID: facultyID, Day: day}]++
	o.weekLoad[facultyID]++
}

// Unassign releases the slot, flooring counters at zero.
func (o *Occupancy) Unassign(facultyID string, day Day, period int) {
	slot := Slot{Day: day, Period: period}
	if _, ok := o.busy[facultyID][slot]; !ok {
		return
	}
	delete(o.busy[facultyID], slot)
	key := facultyDay{FacultyID: facultyID, Day: day}
	if o.dayLoad[key] > 0 {
		o.dayLoad[key]--
	}
	if o.weekLoad[facultyID] > 0 {
		o.weekLoad[facultyID]--
	}
}

// Clone deep-copies the tracker so a per-attempt working copy can layer board
// assignments on top of the external baseline without mutating it.
func (o *Occupancy) Clone() *Occupancy {
	next := NewOccupancy()
	for facultyID, slots := range o.busy {
		copied := make(map[Slot]struct{}, len(slots))
		for slot := range slots {
			copied[slot] = struct{}{}
		}
		next.busy[facultyID] = copied
	}
	for key, count := range o.dayLoad {
		next.dayLoad[key] = count
	}
	for facultyID, count := range o.weekLoad {
		next.weekLoad[facultyID] = count
	}
	return next
}

// WeekLoad returns the weekly committed-period count for a faculty.
func (o *Occupancy) WeekLoad(facultyID string) int {
	return o.weekLoad[facultyID]
}

// DayLoad returns the committed-period count for a faculty on one day.
func (o *Occupancy) DayLoad(facultyID string, day Day) int {
	return o.dayLoad[facultyDay{FacultyID: facultyID, Day: day}]
}

// BusyCount returns the size of the busy-slot set for a faculty.
func (o *Occupancy) BusyCount(facultyID string) int {
	return len(o.busy[facultyID])
}
