package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrInvalidRange: start date after end date.
	ErrInvalidRange = errors.New("start date cannot be after end date")

	// ErrPastDate: start date before today.
	ErrPastDate = errors.New("start date cannot be in the past")

	// ErrGuestUnavailable covers both "guest does not exist" and "guest
	// directory unreachable"; the proxy collapses them into one signal.
	ErrGuestUnavailable = errors.New("guest not found or directory unavailable")

	// ErrRoomUnavailable is the inventory-side twin of ErrGuestUnavailable.
	ErrRoomUnavailable = errors.New("room not found or inventory unavailable")

	// ErrRoomNotAvailable: a real scheduling conflict on the requested dates.
	ErrRoomNotAvailable = errors.New("room is not available for the selected dates")

	// ErrInvalidTransition: mutation attempted on a cancelled reservation.
	ErrInvalidTransition = errors.New("cancelled reservations cannot be modified")

	// ErrRoomLocked: another request is booking the same room right now.
	ErrRoomLocked = errors.New("room is currently being booked by another request")
)
