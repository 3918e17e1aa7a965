package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reserrors "innbook/internal/reservations/errors"
	"innbook/pkg/config"
	mongotx "innbook/pkg/db/mongo"
	"innbook/pkg/model"
)

const CollectionName = "Reservations"

type ReservationRepository interface {
	Create(ctx context.Context, res *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, res *model.Reservation) error
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	Delete(ctx context.Context, id string) error

	FindByGuest(ctx context.Context, guestID int64) ([]*model.Reservation, error)
	FindByRoom(ctx context.Context, roomID int64) ([]*model.Reservation, error)
	FindByStatus(ctx context.Context, status model.Status) ([]*model.Reservation, error)
	FindActiveByRoom(ctx context.Context, roomID int64, today time.Time) ([]*model.Reservation, error)
	FindByStartDateBetween(ctx context.Context, start, end time.Time) ([]*model.Reservation, error)
	FindByCheckIn(ctx context.Context, date time.Time) ([]*model.Reservation, error)
	FindByCheckOut(ctx context.Context, date time.Time) ([]*model.Reservation, error)

	// FindConflicting returns non-terminal reservations on roomID whose
	// inclusive date range intersects [start, end]. excludeID ("" for none)
	// removes a reservation from consideration on the update path.
	FindConflicting(ctx context.Context, roomID int64, start, end time.Time, excludeID string) ([]*model.Reservation, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction: a SessionContext cannot be wrapped without breaking
// transaction semantics, so it is returned unchanged with a no-op cancel.
func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		res.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var res model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &res, nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.findMany(ctx, bson.M{}, opts)
}

func (r *mongoReservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) Update(ctx context.Context, id string, res *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"guest_id":     res.GuestID,
			"room_id":      res.RoomID,
			"start_date":   res.StartDate,
			"end_date":     res.EndDate,
			"total_amount": res.TotalAmount,
			"status":       res.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	if result.MatchedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

func (r *mongoReservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

func (r *mongoReservationRepository) FindByGuest(ctx context.Context, guestID int64) ([]*model.Reservation, error) {
	return r.findMany(ctx, bson.M{"guest_id": guestID}, sortByStartDate())
}

func (r *mongoReservationRepository) FindByRoom(ctx context.Context, roomID int64) ([]*model.Reservation, error) {
	return r.findMany(ctx, bson.M{"room_id": roomID}, sortByStartDate())
}

func (r *mongoReservationRepository) FindByStatus(ctx context.Context, status model.Status) ([]*model.Reservation, error) {
	return r.findMany(ctx, bson.M{"status": status}, sortByStartDate())
}

func (r *mongoReservationRepository) FindActiveByRoom(ctx context.Context, roomID int64, today time.Time) ([]*model.Reservation, error) {
	filter := bson.M{
		"room_id":  roomID,
		"status":   bson.M{"$in": model.ActiveStatuses},
		"end_date": bson.M{"$gte": today},
	}
	return r.findMany(ctx, filter, sortByStartDate())
}

func (r *mongoReservationRepository) FindByStartDateBetween(ctx context.Context, start, end time.Time) ([]*model.Reservation, error) {
	filter := bson.M{
		"start_date": bson.M{"$gte": start, "$lte": end},
	}
	return r.findMany(ctx, filter, sortByStartDate())
}

func (r *mongoReservationRepository) FindByCheckIn(ctx context.Context, date time.Time) ([]*model.Reservation, error) {
	filter := bson.M{
		"start_date": date,
		"status":     model.StatusConfirmed,
	}
	return r.findMany(ctx, filter, sortByStartDate())
}

func (r *mongoReservationRepository) FindByCheckOut(ctx context.Context, date time.Time) ([]*model.Reservation, error) {
	filter := bson.M{
		"end_date": date,
		"status":   model.StatusConfirmed,
	}
	return r.findMany(ctx, filter, sortByStartDate())
}

func (r *mongoReservationRepository) FindConflicting(ctx context.Context, roomID int64, start, end time.Time, excludeID string) ([]*model.Reservation, error) {
	// Boundaries are inclusive: a reservation ending on day X conflicts with
	// one starting on day X.
	filter := bson.M{
		"room_id":    roomID,
		"status":     bson.M{"$nin": model.TerminalStatuses},
		"start_date": bson.M{"$lte": end},
		"end_date":   bson.M{"$gte": start},
	}

	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	return r.findMany(ctx, filter, sortByStartDate())
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoReservationRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func sortByStartDate() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
}
