package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-erp-api/internal/models"
)

// TimeSlotRepository maintains the canonical (day, period) time-slot entities.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository builds the repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// EnsureWeek upserts the full week of slots with their clock times and
// returns a lookup keyed by "day|period".
func (r *TimeSlotRepository) EnsureWeek(ctx context.Context, slots []models.TimeSlot) (map[string]models.TimeSlot, error) {
	const upsert = `INSERT INTO time_slots (id, day, period_number, start_time, end_time)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (day, period_number) DO NOTHING`
	for _, slot := range slots {
		id := slot.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := r.db.ExecContext(ctx, upsert, id, slot.Day, slot.PeriodNumber, slot.StartTime, slot.EndTime); err != nil {
			return nil, fmt.Errorf("ensure time slot %s P%d: %w", slot.Day, slot.PeriodNumber, err)
		}
	}

	const query = `SELECT id, day, period_number, start_time, end_time, created_at FROM time_slots`
	var stored []models.TimeSlot
	if err := r.db.SelectContext(ctx, &stored, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	lookup := make(map[string]models.TimeSlot, len(stored))
	for _, slot := range stored {
		lookup[SlotKey(slot.Day, slot.PeriodNumber)] = slot
	}
	return lookup, nil
}

// SlotKey renders the lookup key for a (day, period) pair.
func SlotKey(day string, period int) string {
	return fmt.Sprintf("%s|%d", day, period)
}
