package model

import (
	"time"
)

type Status string

const (
	StatusPending             Status = "pending"
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusConfirmed           Status = "confirmed"
	StatusCancelled           Status = "cancelled"
	StatusCompleted           Status = "completed"
)

// TerminalStatuses are excluded from conflict detection: a cancelled or
// completed reservation no longer occupies its room.
var TerminalStatuses = []Status{StatusCancelled, StatusCompleted}

// ActiveStatuses are the states counted as current occupancy of a room.
var ActiveStatuses = []Status{StatusConfirmed, StatusPendingConfirmation}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusPendingConfirmation, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

// Reservation occupies a room for an inclusive range of calendar dates.
// StartDate and EndDate are stored as UTC midnight; both boundary days are
// occupied, so a reservation ending on day X conflicts with one starting on X.
type Reservation struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	GuestID     int64     `json:"guest_id" bson:"guest_id" validate:"required,gt=0"`
	RoomID      int64     `json:"room_id" bson:"room_id" validate:"required,gt=0"`
	StartDate   time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" bson:"end_date" validate:"required"`
	TotalAmount float64   `json:"total_amount" bson:"total_amount" validate:"omitempty,gte=0"`
	Status      Status    `json:"status" bson:"status" validate:"omitempty,oneof=pending pending_confirmation confirmed cancelled completed"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// ReservationUpdate carries a full-record update. Nil/empty fields keep the
// existing value.
type ReservationUpdate struct {
	GuestID   *int64     `json:"guest_id,omitempty" validate:"omitempty,gt=0"`
	RoomID    *int64     `json:"room_id,omitempty" validate:"omitempty,gt=0"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Status    Status     `json:"status,omitempty" validate:"omitempty,oneof=pending pending_confirmation confirmed cancelled completed"`
}

// DateOnly normalizes a timestamp to UTC midnight so inclusive date-range
// comparisons are exact.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two inclusive date ranges intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}
