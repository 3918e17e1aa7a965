package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"innbook/internal/events"
	reserrors "innbook/internal/reservations/errors"
	"innbook/internal/reservations/validator"
	"innbook/pkg/config"
	mongotx "innbook/pkg/db/mongo"
	"innbook/pkg/logger"
	"innbook/pkg/model"
)

// Mock repository for testing
type mockReservationRepository struct {
	createFunc          func(ctx context.Context, res *model.Reservation) error
	findByIDFunc        func(ctx context.Context, id string) (*model.Reservation, error)
	findAllFunc         func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	countFunc           func(ctx context.Context) (int64, error)
	updateFunc          func(ctx context.Context, id string, res *model.Reservation) error
	updateStatusFunc    func(ctx context.Context, id string, status model.Status) error
	deleteFunc          func(ctx context.Context, id string) error
	findConflictingFunc func(ctx context.Context, roomID int64, start, end time.Time, excludeID string) ([]*model.Reservation, error)
}

func (m *mockReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, res)
	}
	return nil
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reserrors.ErrNotFound
}

func (m *mockReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockReservationRepository) Update(ctx context.Context, id string, res *model.Reservation) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, res)
	}
	return nil
}

func (m *mockReservationRepository) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockReservationRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockReservationRepository) FindByGuest(ctx context.Context, guestID int64) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) FindByRoom(ctx context.Context, roomID int64) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) FindByStatus(ctx context.Context, status model.Status) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) FindActiveByRoom(ctx context.Context, roomID int64, today time.Time) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) FindByStartDateBetween(ctx context.Context, start, end time.Time) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) FindByCheckIn(ctx context.Context, date time.Time) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) FindByCheckOut(ctx context.Context, date time.Time) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) FindConflicting(ctx context.Context, roomID int64, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
	if m.findConflictingFunc != nil {
		return m.findConflictingFunc(ctx, roomID, start, end, excludeID)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockRoomLockRepository struct {
	createFunc func(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockRoomLockRepository) Create(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockRoomLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockGuestDirectory struct {
	lookupFunc func(ctx context.Context, id int64) model.Guest
}

func (m *mockGuestDirectory) Lookup(ctx context.Context, id int64) model.Guest {
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, id)
	}
	return model.Guest{ID: id, FirstName: "Ana", LastName: "Reyes"}
}

type mockRoomInventory struct {
	lookupFunc          func(ctx context.Context, id int64) model.Room
	setAvailabilityFunc func(ctx context.Context, id int64, available bool) (model.Room, error)

	availabilityCalls []bool
}

func (m *mockRoomInventory) Lookup(ctx context.Context, id int64) model.Room {
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, id)
	}
	return model.Room{ID: id, Number: "101", NightlyRate: 100, Available: true, State: model.RoomStateActive}
}

func (m *mockRoomInventory) SetAvailability(ctx context.Context, id int64, available bool) (model.Room, error) {
	m.availabilityCalls = append(m.availabilityCalls, available)
	if m.setAvailabilityFunc != nil {
		return m.setAvailabilityFunc(ctx, id, available)
	}
	return model.Room{ID: id, Available: available}, nil
}

type mockPublisher struct {
	published []events.ReservationEvent
}

func (m *mockPublisher) Publish(ctx context.Context, event events.ReservationEvent) {
	m.published = append(m.published, event)
}

type testDeps struct {
	repo      *mockReservationRepository
	lockRepo  *mockRoomLockRepository
	guestDir  *mockGuestDirectory
	roomInv   *mockRoomInventory
	publisher *mockPublisher
}

func newTestService(deps *testDeps) ReservationService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:          log,
		RoomLockTTL:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	return NewReservationService(
		deps.repo,
		deps.lockRepo,
		deps.guestDir,
		deps.roomInv,
		deps.publisher,
		validator.NewReservationValidator(),
		cfg,
	)
}

func futureDate(days int) time.Time {
	return model.DateOnly(time.Now().AddDate(0, 0, days))
}

func TestCreate_DefaultsPricingAndSideEffects(t *testing.T) {
	deps := &testDeps{
		repo:      &mockReservationRepository{},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	res := &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: futureDate(1),
		EndDate:   futureDate(3),
	}

	if err := service.Create(context.Background(), res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != model.StatusPending {
		t.Errorf("expected default status %q, got %q", model.StatusPending, res.Status)
	}
	// Two nights at the room's nightly rate of 100.
	if res.TotalAmount != 200 {
		t.Errorf("expected total amount 200, got %v", res.TotalAmount)
	}
	if res.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be defaulted")
	}

	if len(deps.roomInv.availabilityCalls) != 1 || deps.roomInv.availabilityCalls[0] != false {
		t.Errorf("expected one availability call with false, got %v", deps.roomInv.availabilityCalls)
	}
	if len(deps.publisher.published) != 1 || deps.publisher.published[0].Type != events.TypeCreated {
		t.Errorf("expected one %s event, got %v", events.TypeCreated, deps.publisher.published)
	}
}

func TestCreate_SameDayStayBillsOneNight(t *testing.T) {
	deps := &testDeps{
		repo:      &mockReservationRepository{},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	res := &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: futureDate(2),
		EndDate:   futureDate(2),
	}

	if err := service.Create(context.Background(), res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalAmount != 100 {
		t.Errorf("expected same-day stay to bill one night (100), got %v", res.TotalAmount)
	}
}

func TestCreate_StartAfterEndRejected(t *testing.T) {
	deps := &testDeps{
		repo:      &mockReservationRepository{},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	res := &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: futureDate(5),
		EndDate:   futureDate(3),
	}

	err := service.Create(context.Background(), res)
	if !errors.Is(err, reserrors.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCreate_PastStartDateRejected(t *testing.T) {
	deps := &testDeps{
		repo:      &mockReservationRepository{},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	res := &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: futureDate(-1),
		EndDate:   futureDate(2),
	}

	err := service.Create(context.Background(), res)
	if !errors.Is(err, reserrors.ErrPastDate) {
		t.Fatalf("expected ErrPastDate, got %v", err)
	}
}

func TestCreate_UnknownGuestRejected(t *testing.T) {
	deps := &testDeps{
		repo:     &mockReservationRepository{},
		lockRepo: &mockRoomLockRepository{},
		guestDir: &mockGuestDirectory{
			lookupFunc: func(ctx context.Context, id int64) model.Guest {
				return model.UnknownGuest()
			},
		},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	res := &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: futureDate(1),
		EndDate:   futureDate(2),
	}

	err := service.Create(context.Background(), res)
	if !errors.Is(err, reserrors.ErrGuestUnavailable) {
		t.Fatalf("expected ErrGuestUnavailable, got %v", err)
	}
}

func TestCreate_UnknownRoomRejected(t *testing.T) {
	deps := &testDeps{
		repo:     &mockReservationRepository{},
		lockRepo: &mockRoomLockRepository{},
		guestDir: &mockGuestDirectory{},
		roomInv: &mockRoomInventory{
			lookupFunc: func(ctx context.Context, id int64) model.Room {
				return model.UnknownRoom()
			},
		},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	res := &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: futureDate(1),
		EndDate:   futureDate(2),
	}

	err := service.Create(context.Background(), res)
	if !errors.Is(err, reserrors.ErrRoomUnavailable) {
		t.Fatalf("expected ErrRoomUnavailable, got %v", err)
	}
}

func TestCreate_InclusiveBoundaryConflict(t *testing.T) {
	// An existing reservation occupies days 10 through 14. A new one starting
	// on day 14 touches the boundary and must conflict; day 15 must not.
	existingStart := futureDate(10)
	existingEnd := futureDate(14)

	conflictFilter := func(ctx context.Context, roomID int64, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
		if model.Overlaps(start, end, existingStart, existingEnd) {
			return []*model.Reservation{{ID: "already-there", RoomID: roomID}}, nil
		}
		return []*model.Reservation{}, nil
	}

	deps := &testDeps{
		repo:      &mockReservationRepository{findConflictingFunc: conflictFilter},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	touching := &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: futureDate(14),
		EndDate:   futureDate(16),
	}
	err := service.Create(context.Background(), touching)
	if !errors.Is(err, reserrors.ErrRoomNotAvailable) {
		t.Fatalf("expected ErrRoomNotAvailable for touching boundary, got %v", err)
	}

	adjacent := &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: futureDate(15),
		EndDate:   futureDate(16),
	}
	if err := service.Create(context.Background(), adjacent); err != nil {
		t.Fatalf("expected day-after reservation to succeed, got %v", err)
	}
}

func TestCreate_RoomLockContention(t *testing.T) {
	deps := &testDeps{
		repo: &mockReservationRepository{},
		lockRepo: &mockRoomLockRepository{
			createFunc: func(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error) {
				return nil, mongo.WriteException{
					WriteErrors: mongo.WriteErrors{{Code: 11000}},
				}
			},
		},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	res := &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: futureDate(1),
		EndDate:   futureDate(2),
	}

	err := service.Create(context.Background(), res)
	if !errors.Is(err, reserrors.ErrRoomLocked) {
		t.Fatalf("expected ErrRoomLocked, got %v", err)
	}
}

func TestUpdate_CancelledReservationRejected(t *testing.T) {
	deps := &testDeps{
		repo: &mockReservationRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
				return &model.Reservation{
					ID:        id,
					GuestID:   5,
					RoomID:    7,
					StartDate: futureDate(1),
					EndDate:   futureDate(3),
					Status:    model.StatusCancelled,
				}, nil
			},
		},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	newGuest := int64(9)
	_, err := service.Update(context.Background(), "65d4a1b2c3d4e5f6a7b8c9d0", &model.ReservationUpdate{GuestID: &newGuest})
	if !errors.Is(err, reserrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdate_RoomChangeRecomputesAmount(t *testing.T) {
	conflictChecked := false
	deps := &testDeps{
		repo: &mockReservationRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
				return &model.Reservation{
					ID:          id,
					GuestID:     5,
					RoomID:      7,
					StartDate:   futureDate(1),
					EndDate:     futureDate(3),
					TotalAmount: 200,
					Status:      model.StatusPending,
				}, nil
			},
			findConflictingFunc: func(ctx context.Context, roomID int64, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
				conflictChecked = true
				if excludeID == "" {
					t.Error("expected update conflict check to exclude the reservation itself")
				}
				return []*model.Reservation{}, nil
			},
		},
		lockRepo: &mockRoomLockRepository{},
		guestDir: &mockGuestDirectory{},
		roomInv: &mockRoomInventory{
			lookupFunc: func(ctx context.Context, id int64) model.Room {
				rate := 100.0
				if id == 9 {
					rate = 150
				}
				return model.Room{ID: id, NightlyRate: rate, Available: true}
			},
		},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	newRoom := int64(9)
	updated, err := service.Update(context.Background(), "65d4a1b2c3d4e5f6a7b8c9d0", &model.ReservationUpdate{RoomID: &newRoom})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !conflictChecked {
		t.Error("expected conflict check when the room changes")
	}
	if updated.RoomID != 9 {
		t.Errorf("expected room 9, got %d", updated.RoomID)
	}
	// Two nights at the new room's rate of 150.
	if updated.TotalAmount != 300 {
		t.Errorf("expected recomputed amount 300, got %v", updated.TotalAmount)
	}
}

func TestUpdate_GuestOnlyChangeSkipsConflictCheck(t *testing.T) {
	conflictChecked := false
	deps := &testDeps{
		repo: &mockReservationRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
				return &model.Reservation{
					ID:          id,
					GuestID:     5,
					RoomID:      7,
					StartDate:   futureDate(1),
					EndDate:     futureDate(3),
					TotalAmount: 200,
					Status:      model.StatusPending,
				}, nil
			},
			findConflictingFunc: func(ctx context.Context, roomID int64, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
				conflictChecked = true
				return []*model.Reservation{}, nil
			},
		},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	newGuest := int64(9)
	updated, err := service.Update(context.Background(), "65d4a1b2c3d4e5f6a7b8c9d0", &model.ReservationUpdate{GuestID: &newGuest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conflictChecked {
		t.Error("expected no conflict check when room and dates are unchanged")
	}
	if updated.GuestID != 9 {
		t.Errorf("expected guest 9, got %d", updated.GuestID)
	}
	if updated.TotalAmount != 200 {
		t.Errorf("expected amount unchanged at 200, got %v", updated.TotalAmount)
	}
}

func TestSetStatus_UnknownStatusRejected(t *testing.T) {
	deps := &testDeps{
		repo:      &mockReservationRepository{},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	_, err := service.SetStatus(context.Background(), "65d4a1b2c3d4e5f6a7b8c9d0", "checked_in")
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestCancel_CancelledReservationRejected(t *testing.T) {
	deps := &testDeps{
		repo: &mockReservationRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
				return &model.Reservation{
					ID:     id,
					Status: model.StatusCancelled,
				}, nil
			},
		},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	_, err := service.Cancel(context.Background(), "65d4a1b2c3d4e5f6a7b8c9d0")
	if !errors.Is(err, reserrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double cancel, got %v", err)
	}
}

func TestCancel_ReleasesRoomAndPublishes(t *testing.T) {
	deps := &testDeps{
		repo: &mockReservationRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
				return &model.Reservation{
					ID:      id,
					GuestID: 5,
					RoomID:  7,
					Status:  model.StatusConfirmed,
				}, nil
			},
		},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	res, err := service.Cancel(context.Background(), "65d4a1b2c3d4e5f6a7b8c9d0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != model.StatusCancelled {
		t.Errorf("expected status cancelled, got %q", res.Status)
	}

	if len(deps.roomInv.availabilityCalls) != 1 || deps.roomInv.availabilityCalls[0] != true {
		t.Errorf("expected room released (available=true), got %v", deps.roomInv.availabilityCalls)
	}

	if len(deps.publisher.published) != 1 {
		t.Fatalf("expected one event, got %d", len(deps.publisher.published))
	}
	event := deps.publisher.published[0]
	if event.Type != events.TypeStatusChanged {
		t.Errorf("expected %s event, got %s", events.TypeStatusChanged, event.Type)
	}
	if event.PreviousStatus != model.StatusConfirmed {
		t.Errorf("expected previous status confirmed, got %q", event.PreviousStatus)
	}
}

func TestConfirm_SucceedsWhenAvailabilityUpdateFails(t *testing.T) {
	deps := &testDeps{
		repo: &mockReservationRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
				return &model.Reservation{
					ID:      id,
					GuestID: 5,
					RoomID:  7,
					Status:  model.StatusPending,
				}, nil
			},
		},
		lockRepo: &mockRoomLockRepository{},
		guestDir: &mockGuestDirectory{},
		roomInv: &mockRoomInventory{
			setAvailabilityFunc: func(ctx context.Context, id int64, available bool) (model.Room, error) {
				return model.UnknownRoom(), errors.New("inventory unreachable")
			},
		},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	res, err := service.Confirm(context.Background(), "65d4a1b2c3d4e5f6a7b8c9d0")
	if err != nil {
		t.Fatalf("expected confirm to succeed despite availability failure, got %v", err)
	}
	if res.Status != model.StatusConfirmed {
		t.Errorf("expected status confirmed, got %q", res.Status)
	}

	if len(deps.roomInv.availabilityCalls) != 1 || deps.roomInv.availabilityCalls[0] != false {
		t.Errorf("expected one availability call with false, got %v", deps.roomInv.availabilityCalls)
	}
}

func TestDelete_PublishesEvent(t *testing.T) {
	deleted := ""
	deps := &testDeps{
		repo: &mockReservationRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
				return &model.Reservation{
					ID:      id,
					GuestID: 5,
					RoomID:  7,
					Status:  model.StatusCancelled,
				}, nil
			},
			deleteFunc: func(ctx context.Context, id string) error {
				deleted = id
				return nil
			},
		},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	id := "65d4a1b2c3d4e5f6a7b8c9d0"
	if err := service.Delete(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != id {
		t.Errorf("expected repository delete for %s, got %q", id, deleted)
	}
	if len(deps.publisher.published) != 1 || deps.publisher.published[0].Type != events.TypeDeleted {
		t.Errorf("expected one %s event, got %v", events.TypeDeleted, deps.publisher.published)
	}
}

func TestDelete_NotFound(t *testing.T) {
	deps := &testDeps{
		repo:      &mockReservationRepository{},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	err := service.Delete(context.Background(), "65d4a1b2c3d4e5f6a7b8c9d0")
	if !errors.Is(err, reserrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	existingStart := futureDate(10)
	existingEnd := futureDate(14)

	deps := &testDeps{
		repo: &mockReservationRepository{
			findConflictingFunc: func(ctx context.Context, roomID int64, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
				if model.Overlaps(start, end, existingStart, existingEnd) {
					return []*model.Reservation{{ID: "busy"}}, nil
				}
				return []*model.Reservation{}, nil
			},
		},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	available, err := service.CheckAvailability(context.Background(), 7, futureDate(12), futureDate(13))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Error("expected overlapping range to be unavailable")
	}

	available, err = service.CheckAvailability(context.Background(), 7, futureDate(15), futureDate(16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Error("expected free range to be available")
	}
}

func TestGetByStatus_UnknownStatusRejected(t *testing.T) {
	deps := &testDeps{
		repo:      &mockReservationRepository{},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	_, err := service.GetByStatus(context.Background(), "nonsense")
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestGetAll_ConcurrentCountAndFind(t *testing.T) {
	deps := &testDeps{
		repo: &mockReservationRepository{
			countFunc: func(ctx context.Context) (int64, error) {
				time.Sleep(10 * time.Millisecond)
				return 42, nil
			},
			findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
				time.Sleep(10 * time.Millisecond)
				return []*model.Reservation{{ID: "1"}}, nil
			},
		},
		lockRepo:  &mockRoomLockRepository{},
		guestDir:  &mockGuestDirectory{},
		roomInv:   &mockRoomInventory{},
		publisher: &mockPublisher{},
	}
	service := newTestService(deps)

	// Run with -race to catch unsynchronized access between the goroutines.
	for i := 0; i < 10; i++ {
		reservations, count, err := service.GetAll(context.Background(), 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 42 {
			t.Errorf("iteration %d: expected count 42, got %d", i, count)
		}
		if len(reservations) != 1 {
			t.Errorf("iteration %d: expected 1 reservation, got %d", i, len(reservations))
		}
	}
}
