package service

import (
	"context"
	"fmt"
	"net/http"

	"innbook/internal/events"
	reserrors "innbook/internal/reservations/errors"
	apperrors "innbook/pkg/errors"
	"innbook/pkg/model"
)

// SetStatus drives the reservation state machine. Cancellation is terminal:
// no transition out of cancelled is permitted, including cancelling twice.
// Confirming occupies the room in inventory, cancelling releases it; both
// propagations are best-effort and never roll back the committed transition.
func (s *reservationService) SetStatus(ctx context.Context, id string, status string) (*model.Reservation, error) {
	parsed, ok := model.ParseStatus(status)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown reservation status: %s", status))
	}

	res, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if res.IsCancelled() {
		return nil, apperrors.Wrap(reserrors.ErrInvalidTransition, apperrors.CodeConflict,
			"Cannot change the status of a cancelled reservation", http.StatusConflict)
	}

	previous := res.Status
	if err := s.repo.UpdateStatus(ctx, id, parsed); err != nil {
		return nil, s.mapRepoError(id, err, "Failed to update reservation status")
	}
	res.Status = parsed

	s.cfg.Log.Info("Reservation status changed",
		"id", id,
		"from", previous,
		"to", parsed,
	)

	switch parsed {
	case model.StatusConfirmed:
		s.applyAvailability(ctx, res.RoomID, false)
	case model.StatusCancelled:
		s.applyAvailability(ctx, res.RoomID, true)
	}

	s.publisher.Publish(ctx, events.ReservationEvent{
		Type:           events.TypeStatusChanged,
		ReservationID:  res.ID,
		GuestID:        res.GuestID,
		RoomID:         res.RoomID,
		Status:         parsed,
		PreviousStatus: previous,
	})

	return res, nil
}

// Confirm is the named shortcut for SetStatus(confirmed).
func (s *reservationService) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	return s.SetStatus(ctx, id, string(model.StatusConfirmed))
}

// Cancel is the named shortcut for SetStatus(cancelled).
func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	return s.SetStatus(ctx, id, string(model.StatusCancelled))
}
