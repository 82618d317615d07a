package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "rentals/internal/bookings/errors"
	"rentals/pkg/config"
	mongotx "rentals/pkg/db/mongo"
	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"

	usersCollection      = "Users"
	propertiesCollection = "Properties"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	HasPending(ctx context.Context, userID, propertyID, excludeID string) (bool, error)
	FindByProperty(ctx context.Context, propertyID string) ([]*model.Booking, error)
	Find(ctx context.Context, userID string, skip int64, limit int) ([]*model.Booking, error)
	Count(ctx context.Context, userID string) (int64, error)
	CountByStatus(ctx context.Context, userID string) (model.StatusBreakdown, error)
	CountByUserRole(ctx context.Context) (map[string]int64, error)
	TopProperties(ctx context.Context, limit int) ([]model.TopProperty, error)
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*time.Time, error)
	UpdateTime(ctx context.Context, id, userID string, update *model.BookingTimeUpdate) (*model.Booking, error)
	RequestTimeChange(ctx context.Context, id string, request model.TimeChangeRequest) (*model.Booking, error)
	ResolveTimeChange(ctx context.Context, id, userID string, acceptSlot *string) (*model.Booking, error)
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// Create inserts a pending booking. The partial unique index on pending
// (user, property) pairs surfaces as ErrDuplicatePending.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return bookingserrors.ErrDuplicatePending
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// HasPending reports whether userID holds a pending booking on propertyID
// other than excludeID. An empty excludeID considers every booking.
func (r *mongoBookingRepository) HasPending(ctx context.Context, userID, propertyID, excludeID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"user": userID, "property": propertyID, "status": model.BookingPending}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return false, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check pending bookings: %w", err)
	}
	return count > 0, nil
}

// FindByProperty lists the visits booked against a listing, earliest first.
func (r *mongoBookingRepository) FindByProperty(ctx context.Context, propertyID string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "visit_date", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"property": propertyID}, opts)
}

// Find pages through bookings newest first. An empty userID means every user.
func (r *mongoBookingRepository) Find(ctx context.Context, userID string, skip int64, limit int) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	return r.find(ctx, userFilter(userID), mongotx.FindOptions(skip, int64(limit), sort))
}

func (r *mongoBookingRepository) Count(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, userFilter(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) CountByStatus(ctx context.Context, userID string) (model.StatusBreakdown, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: userFilter(userID)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	rows, err := r.groupCounts(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking statuses: %w", err)
	}

	breakdown := make(model.StatusBreakdown, len(model.BookingStatuses))
	for _, status := range model.BookingStatuses {
		breakdown[string(status)] = 0
	}
	for key, count := range rows {
		breakdown[key] = count
	}
	return breakdown, nil
}

// CountByUserRole joins each booking to its user and counts per role.
// Bookings whose user no longer exists are not counted.
func (r *mongoBookingRepository) CountByUserRole(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{{Key: "user_oid", Value: bson.D{{Key: "$toObjectId", Value: "$user"}}}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "user_oid"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "booked_by"},
		}}},
		{{Key: "$unwind", Value: "$booked_by"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$booked_by.role"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	rows, err := r.groupCounts(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings by role: %w", err)
	}
	return rows, nil
}

// TopProperties returns the most booked listings with their titles.
func (r *mongoBookingRepository) TopProperties(ctx context.Context, limit int) ([]model.TopProperty, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$property"},
			{Key: "bookings_count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "bookings_count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$addFields", Value: bson.D{{Key: "property_oid", Value: bson.D{{Key: "$toObjectId", Value: "$_id"}}}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: propertiesCollection},
			{Key: "localField", Value: "property_oid"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "listing"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$listing"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "property_id", Value: "$_id"},
			{Key: "title", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$listing.title", ""}}}},
			{Key: "bookings_count", Value: 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top properties: %w", err)
	}
	defer cursor.Close(ctx)

	top := []model.TopProperty{}
	if err = cursor.All(ctx, &top); err != nil {
		return nil, fmt.Errorf("failed to decode top properties: %w", err)
	}
	return top, nil
}

// UpdateStatus moves a booking from one status to another only if it is
// still in from.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*time.Time, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, bookingserrors.ErrStatusChanged
	}
	return &now, nil
}

// UpdateTime reschedules a booking owned by userID and puts it back to pending.
// Any open time change request is withdrawn. Another pending booking on the
// same listing surfaces as ErrDuplicatePending.
func (r *mongoBookingRepository) UpdateTime(ctx context.Context, id, userID string, update *model.BookingTimeUpdate) (*model.Booking, error) {
	set := bson.M{
		"status":              model.BookingPending,
		"time_change_request": model.ClearedTimeChangeRequest(),
	}
	if update.VisitDate != nil {
		set["visit_date"] = update.VisitDate.UTC()
	}
	if update.TimeSlot != nil {
		set["time_slot"] = *update.TimeSlot
	}

	return r.findAndSet(ctx, id, bson.M{"user": userID}, set, bookingserrors.ErrNotFound)
}

// RequestTimeChange stores an admin proposal unless one is already active.
func (r *mongoBookingRepository) RequestTimeChange(ctx context.Context, id string, request model.TimeChangeRequest) (*model.Booking, error) {
	guard := bson.M{"time_change_request.requested": bson.M{"$ne": true}}
	set := bson.M{"time_change_request": request}

	return r.findAndSet(ctx, id, guard, set, bookingserrors.ErrActiveRequest)
}

// ResolveTimeChange clears the active request of a booking owned by userID.
// A non-nil acceptSlot must be one of the suggested slots; it becomes the
// booking's slot and the booking is approved.
func (r *mongoBookingRepository) ResolveTimeChange(ctx context.Context, id, userID string, acceptSlot *string) (*model.Booking, error) {
	guard := bson.M{"user": userID, "time_change_request.requested": true}
	set := bson.M{"time_change_request": model.ClearedTimeChangeRequest()}
	if acceptSlot != nil {
		guard["time_change_request.suggested_slots"] = *acceptSlot
		set["time_slot"] = *acceptSlot
		set["status"] = model.BookingApproved
	}

	return r.findAndSet(ctx, id, guard, set, bookingserrors.ErrNoActiveRequest)
}

// findAndSet applies set to the booking matching id and guard and returns the
// updated document, or missErr when nothing matched.
func (r *mongoBookingRepository) findAndSet(ctx context.Context, id string, guard, set bson.M, missErr error) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	for k, v := range guard {
		filter[k] = v
	}
	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, missErr
		}
		if mongotx.IsDuplicateKey(err) {
			return nil, bookingserrors.ErrDuplicatePending
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) groupCounts(ctx context.Context, pipeline mongo.Pipeline) (map[string]int64, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func userFilter(userID string) bson.M {
	if userID == "" {
		return bson.M{}
	}
	return bson.M{"user": userID}
}
