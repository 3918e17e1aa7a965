package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"innbook/internal/events"
	reserrors "innbook/internal/reservations/errors"
	"innbook/internal/reservations/repository"
	"innbook/internal/reservations/validator"
	"innbook/pkg/config"
	apperrors "innbook/pkg/errors"
	"innbook/pkg/model"
)

// GuestDirectory is the resilient lookup boundary for the guest registry.
// Implementations never fail: an unknown-guest sentinel stands in for both
// "not found" and "directory unreachable".
type GuestDirectory interface {
	Lookup(ctx context.Context, id int64) model.Guest
}

// RoomInventory is the resilient boundary for the room inventory service.
type RoomInventory interface {
	Lookup(ctx context.Context, id int64) model.Room
	SetAvailability(ctx context.Context, id int64, available bool) (model.Room, error)
}

// EventPublisher emits best-effort reservation lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.ReservationEvent)
}

type ReservationService interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetByGuest(ctx context.Context, guestID int64) ([]*model.Reservation, error)
	GetByRoom(ctx context.Context, roomID int64) ([]*model.Reservation, error)
	GetByStatus(ctx context.Context, status string) ([]*model.Reservation, error)
	GetActiveForRoom(ctx context.Context, roomID int64) ([]*model.Reservation, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*model.Reservation, error)
	CheckInsToday(ctx context.Context) ([]*model.Reservation, error)
	CheckOutsToday(ctx context.Context) ([]*model.Reservation, error)
	CheckAvailability(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
	Update(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error)
	SetStatus(ctx context.Context, id string, status string) (*model.Reservation, error)
	Confirm(ctx context.Context, id string) (*model.Reservation, error)
	Cancel(ctx context.Context, id string) (*model.Reservation, error)
	Delete(ctx context.Context, id string) error
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.RoomLockRepository
	guestDir  GuestDirectory
	roomInv   RoomInventory
	publisher EventPublisher
	validator *validator.ReservationValidator
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.RoomLockRepository,
	guestDir GuestDirectory,
	roomInv RoomInventory,
	publisher EventPublisher,
	validator *validator.ReservationValidator,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		guestDir:  guestDir,
		roomInv:   roomInv,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *reservationService) Create(ctx context.Context, res *model.Reservation) error {
	s.applyDefaults(res)

	if err := s.validate(res); err != nil {
		return err
	}
	if err := s.checkDateRange(res.StartDate, res.EndDate); err != nil {
		return err
	}
	if res.StartDate.Before(model.DateOnly(time.Now())) {
		return apperrors.Wrap(reserrors.ErrPastDate, apperrors.CodeBadRequest,
			"Start date cannot be in the past", http.StatusBadRequest)
	}

	guest := s.guestDir.Lookup(ctx, res.GuestID)
	if guest.IsUnknown() {
		return apperrors.Wrap(reserrors.ErrGuestUnavailable, apperrors.CodeBadRequest,
			fmt.Sprintf("Guest %d not found or guest directory unavailable", res.GuestID),
			http.StatusBadRequest)
	}

	room := s.roomInv.Lookup(ctx, res.RoomID)
	if room.IsUnknown() {
		return apperrors.Wrap(reserrors.ErrRoomUnavailable, apperrors.CodeBadRequest,
			fmt.Sprintf("Room %d not found or room inventory unavailable", res.RoomID),
			http.StatusBadRequest)
	}

	res.TotalAmount = computeAmount(room.NightlyRate, res.StartDate, res.EndDate)

	// The conflict check and the insert must commit as one unit per room:
	// the advisory lock serializes concurrent requests for the same room,
	// the transaction keeps the read-then-write atomic.
	lockID, err := s.acquireRoomLock(ctx, res.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoConflict(sessCtx, res.RoomID, res.StartDate, res.EndDate, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, res); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation", "error", err)
		return err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", res.ID,
		"guest_id", res.GuestID,
		"room_id", res.RoomID,
		"start_date", res.StartDate,
		"end_date", res.EndDate,
		"total_amount", res.TotalAmount,
	)

	// Post-commit side effects are best-effort: the reservation stands even
	// when room inventory cannot be reached.
	s.applyAvailability(ctx, res.RoomID, false)
	s.publisher.Publish(ctx, events.ReservationEvent{
		Type:          events.TypeCreated,
		ReservationID: res.ID,
		GuestID:       res.GuestID,
		RoomID:        res.RoomID,
		Status:        res.Status,
	})

	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return s.loadReservation(ctx, id)
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) GetByGuest(ctx context.Context, guestID int64) ([]*model.Reservation, error) {
	if guestID <= 0 {
		return nil, apperrors.InvalidInput("Guest ID must be positive")
	}

	reservations, err := s.repo.FindByGuest(ctx, guestID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve reservations by guest", err)
	}
	return reservations, nil
}

func (s *reservationService) GetByRoom(ctx context.Context, roomID int64) ([]*model.Reservation, error) {
	if roomID <= 0 {
		return nil, apperrors.InvalidInput("Room ID must be positive")
	}

	reservations, err := s.repo.FindByRoom(ctx, roomID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve reservations by room", err)
	}
	return reservations, nil
}

func (s *reservationService) GetByStatus(ctx context.Context, status string) ([]*model.Reservation, error) {
	parsed, ok := model.ParseStatus(status)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown reservation status: %s", status))
	}

	reservations, err := s.repo.FindByStatus(ctx, parsed)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve reservations by status", err)
	}
	return reservations, nil
}

func (s *reservationService) GetActiveForRoom(ctx context.Context, roomID int64) ([]*model.Reservation, error) {
	if roomID <= 0 {
		return nil, apperrors.InvalidInput("Room ID must be positive")
	}

	reservations, err := s.repo.FindActiveByRoom(ctx, roomID, model.DateOnly(time.Now()))
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve active reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) GetByDateRange(ctx context.Context, start, end time.Time) ([]*model.Reservation, error) {
	start, end = model.DateOnly(start), model.DateOnly(end)
	if err := s.checkDateRange(start, end); err != nil {
		return nil, err
	}

	reservations, err := s.repo.FindByStartDateBetween(ctx, start, end)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve reservations by date range", err)
	}
	return reservations, nil
}

func (s *reservationService) CheckInsToday(ctx context.Context) ([]*model.Reservation, error) {
	reservations, err := s.repo.FindByCheckIn(ctx, model.DateOnly(time.Now()))
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve today's check-ins", err)
	}
	return reservations, nil
}

func (s *reservationService) CheckOutsToday(ctx context.Context) ([]*model.Reservation, error) {
	reservations, err := s.repo.FindByCheckOut(ctx, model.DateOnly(time.Now()))
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve today's check-outs", err)
	}
	return reservations, nil
}

// CheckAvailability is the pure query twin of the create-path conflict check.
func (s *reservationService) CheckAvailability(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	if roomID <= 0 {
		return false, apperrors.InvalidInput("Room ID must be positive")
	}
	start, end = model.DateOnly(start), model.DateOnly(end)
	if err := s.checkDateRange(start, end); err != nil {
		return false, err
	}

	conflict, err := s.hasConflict(ctx, roomID, start, end, "")
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

func (s *reservationService) Update(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error) {
	existing, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	// Cancellation is terminal: nothing on a cancelled reservation may
	// change, checked before any field is touched.
	if existing.IsCancelled() {
		return nil, apperrors.Wrap(reserrors.ErrInvalidTransition, apperrors.CodeConflict,
			"Cannot update a cancelled reservation", http.StatusConflict)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	if err := s.checkDateRange(merged.StartDate, merged.EndDate); err != nil {
		return nil, err
	}

	// Guest and room are re-validated against live state, not against the
	// previously stored record.
	guest := s.guestDir.Lookup(ctx, merged.GuestID)
	if guest.IsUnknown() {
		return nil, apperrors.Wrap(reserrors.ErrGuestUnavailable, apperrors.CodeBadRequest,
			fmt.Sprintf("Guest %d not found or guest directory unavailable", merged.GuestID),
			http.StatusBadRequest)
	}

	room := s.roomInv.Lookup(ctx, merged.RoomID)
	if room.IsUnknown() {
		return nil, apperrors.Wrap(reserrors.ErrRoomUnavailable, apperrors.CodeBadRequest,
			fmt.Sprintf("Room %d not found or room inventory unavailable", merged.RoomID),
			http.StatusBadRequest)
	}

	availabilityRelevant := merged.RoomID != existing.RoomID ||
		!merged.StartDate.Equal(existing.StartDate) ||
		!merged.EndDate.Equal(existing.EndDate)

	if !availabilityRelevant {
		if err := s.repo.Update(ctx, id, merged); err != nil {
			return nil, s.mapRepoError(id, err, "Failed to update reservation")
		}
		s.cfg.Log.Info("Reservation updated successfully", "id", id)
		return merged, nil
	}

	merged.TotalAmount = computeAmount(room.NightlyRate, merged.StartDate, merged.EndDate)

	lockID, err := s.acquireRoomLock(ctx, merged.RoomID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The reservation must not conflict with itself on the update path.
		if err := s.verifyNoConflict(sessCtx, merged.RoomID, merged.StartDate, merged.EndDate, id); err != nil {
			return err
		}
		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			return s.mapRepoError(id, err, "Failed to update reservation")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update reservation", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Reservation updated successfully",
		"id", id,
		"room_id", merged.RoomID,
		"total_amount", merged.TotalAmount,
	)
	return merged, nil
}

func (s *reservationService) Delete(ctx context.Context, id string) error {
	existing, err := s.loadReservation(ctx, id)
	if err != nil {
		return err
	}

	// Removal is unconditional: no state check, any status may be deleted.
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(id, err, "Failed to delete reservation")
	}

	s.cfg.Log.Info("Reservation deleted successfully", "id", id)
	s.publisher.Publish(ctx, events.ReservationEvent{
		Type:          events.TypeDeleted,
		ReservationID: id,
		GuestID:       existing.GuestID,
		RoomID:        existing.RoomID,
		Status:        existing.Status,
	})
	return nil
}

// --- Helpers ---

func (s *reservationService) applyDefaults(res *model.Reservation) {
	if res.Status == "" {
		res.Status = model.StatusPending
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	res.StartDate = model.DateOnly(res.StartDate)
	res.EndDate = model.DateOnly(res.EndDate)
}

func (s *reservationService) validate(res *model.Reservation) error {
	if err := s.validator.Validate(res); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) checkDateRange(start, end time.Time) error {
	if start.After(end) {
		return apperrors.Wrap(reserrors.ErrInvalidRange, apperrors.CodeBadRequest,
			"Start date cannot be after end date", http.StatusBadRequest)
	}
	return nil
}

func (s *reservationService) hasConflict(ctx context.Context, roomID int64, start, end time.Time, excludeID string) (bool, error) {
	conflicts, err := s.repo.FindConflicting(ctx, roomID, start, end, excludeID)
	if err != nil {
		return false, apperrors.Internal("Failed to check existing reservations", err)
	}
	return len(conflicts) > 0, nil
}

func (s *reservationService) verifyNoConflict(ctx context.Context, roomID int64, start, end time.Time, excludeID string) error {
	conflict, err := s.hasConflict(ctx, roomID, start, end, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return apperrors.Wrap(reserrors.ErrRoomNotAvailable, apperrors.CodeConflict,
			fmt.Sprintf("Room %d is not available for the selected dates", roomID),
			http.StatusConflict)
	}
	return nil
}

func (s *reservationService) acquireRoomLock(ctx context.Context, roomID int64) (string, error) {
	lockID := fmt.Sprintf("room_lock_%d", roomID)

	lock := &model.RoomLock{
		ID:        lockID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.RoomLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Wrap(reserrors.ErrRoomLocked, apperrors.CodeConflict,
				"This room is currently being booked by another request. Please try again.",
				http.StatusConflict)
		}
		return "", apperrors.Internal("Failed to acquire room lock", err)
	}

	return lockID, nil
}

func (s *reservationService) mergeUpdates(existing *model.Reservation, updates *model.ReservationUpdate) *model.Reservation {
	merged := *existing

	if updates.GuestID != nil {
		merged.GuestID = *updates.GuestID
	}
	if updates.RoomID != nil {
		merged.RoomID = *updates.RoomID
	}
	if updates.StartDate != nil {
		merged.StartDate = model.DateOnly(*updates.StartDate)
	}
	if updates.EndDate != nil {
		merged.EndDate = model.DateOnly(*updates.EndDate)
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *reservationService) loadReservation(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(id, err, "Failed to retrieve reservation")
	}
	return res, nil
}

func (s *reservationService) mapRepoError(id string, err error, internalMsg string) error {
	if errors.Is(err, reserrors.ErrNotFound) {
		return apperrors.Wrap(reserrors.ErrNotFound, apperrors.CodeNotFound,
			"Reservation not found", http.StatusNotFound).
			WithDetails(map[string]any{"id": id})
	}
	if errors.Is(err, reserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid reservation ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal(internalMsg, err)
}

// applyAvailability propagates occupancy back to room inventory. Failure is
// expected during inventory outages and is logged only; the reservation's
// own state has already been committed.
func (s *reservationService) applyAvailability(ctx context.Context, roomID int64, available bool) {
	if _, err := s.roomInv.SetAvailability(ctx, roomID, available); err != nil {
		s.cfg.Log.Warn("Best-effort room availability update failed",
			"room_id", roomID,
			"available", available,
			"error", err,
		)
	}
}
