package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	propertieserrors "rentals/internal/properties/errors"
	"rentals/pkg/config"
	mongotx "rentals/pkg/db/mongo"
	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Properties"
)

// SimilarFilter narrows a published-listing lookup for one tier of the
// similar-listings search. Empty fields are not filtered on; results come
// back closest to ClosestTo in rent first.
type SimilarFilter struct {
	ClosestTo    float64
	City         string
	PropertyType model.PropertyType
	MinRent      *float64
	MaxRent      *float64
	ExcludeIDs   []string
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type PropertyRepository interface {
	Create(ctx context.Context, property *model.Property) error
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Property, error)
	Search(ctx context.Context, criteria *model.PropertySearch) ([]*model.Property, error)
	CountSearch(ctx context.Context, criteria *model.PropertySearch) (int64, error)
	FindSimilar(ctx context.Context, filter SimilarFilter, limit int) ([]*model.Property, error)
	FindByOwner(ctx context.Context, ownerID string, skip int64, limit int) ([]*model.Property, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	FindAll(ctx context.Context, status model.PropertyStatus, skip int64, limit int) ([]*model.Property, error)
	Count(ctx context.Context, status model.PropertyStatus) (int64, error)
	CountByStatus(ctx context.Context) (model.StatusBreakdown, error)
	UpdateStatus(ctx context.Context, id string, from, to model.PropertyStatus) (*time.Time, error)
	UpdateOwned(ctx context.Context, property *model.Property, observed model.PropertyStatus) error
	DeleteOwned(ctx context.Context, id string, ownerID string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoPropertyRepository) Create(ctx context.Context, property *model.Property) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	property.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, property)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		property.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	var property model.Property
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &property, nil
}

// FindByIDs returns the listings in ids order; unknown ids are skipped.
func (r *mongoPropertyRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := toObjectIDs(ids)
	if len(objectIDs) == 0 {
		return []*model.Property{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find properties: %w", err)
	}
	defer cursor.Close(ctx)

	var found []*model.Property
	if err = cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	byID := make(map[string]*model.Property, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]*model.Property, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *mongoPropertyRepository) Search(ctx context.Context, criteria *model.PropertySearch) ([]*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := mongotx.FindOptions(criteria.Skip(), int64(criteria.Limit), SearchSort(criteria.SortBy))
	return r.find(ctx, SearchFilter(criteria), opts)
}

func (r *mongoPropertyRepository) CountSearch(ctx context.Context, criteria *model.PropertySearch) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, SearchFilter(criteria))
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

func (r *mongoPropertyRepository) FindSimilar(ctx context.Context, filter SimilarFilter, limit int) ([]*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: similarQuery(filter)}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "rent_diff", Value: bson.D{{Key: "$abs", Value: bson.A{
				bson.D{{Key: "$subtract", Value: bson.A{"$rent", filter.ClosestTo}}},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "rent_diff", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$project", Value: bson.D{{Key: "rent_diff", Value: 0}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to find similar properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []*model.Property{}
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode similar properties: %w", err)
	}
	return properties, nil
}

func (r *mongoPropertyRepository) FindByOwner(ctx context.Context, ownerID string, skip int64, limit int) ([]*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := mongotx.FindOptions(skip, int64(limit), SearchSort(model.SortNewest))
	return r.find(ctx, bson.M{"owner": ownerID}, opts)
}

func (r *mongoPropertyRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"owner": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count owner properties: %w", err)
	}
	return count, nil
}

func (r *mongoPropertyRepository) FindAll(ctx context.Context, status model.PropertyStatus, skip int64, limit int) ([]*model.Property, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := mongotx.FindOptions(skip, int64(limit), SearchSort(model.SortNewest))
	return r.find(ctx, statusFilter(status), opts)
}

func (r *mongoPropertyRepository) Count(ctx context.Context, status model.PropertyStatus) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, statusFilter(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

func (r *mongoPropertyRepository) CountByStatus(ctx context.Context) (model.StatusBreakdown, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate property statuses: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode property statuses: %w", err)
	}

	breakdown := make(model.StatusBreakdown, len(model.PropertyStatuses))
	for _, status := range model.PropertyStatuses {
		breakdown[string(status)] = 0
	}
	for _, row := range rows {
		breakdown[row.Status] = row.Count
	}
	return breakdown, nil
}

// UpdateStatus moves a listing from one status to another only if it is
// still in from. It returns the new updated_at stamp.
func (r *mongoPropertyRepository) UpdateStatus(ctx context.Context, id string, from, to model.PropertyStatus) (*time.Time, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update property status: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, propertieserrors.ErrStatusChanged
	}
	return &now, nil
}

// UpdateOwned writes the editable fields and status of property, guarded by
// owner and by the status the caller read.
func (r *mongoPropertyRepository) UpdateOwned(ctx context.Context, property *model.Property, observed model.PropertyStatus) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(property.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, property.ID)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	property.UpdatedAt = &now

	update := bson.M{
		"$set": bson.M{
			"title":         property.Title,
			"description":   property.Description,
			"location":      property.Location,
			"rent":          property.Rent,
			"deposit":       property.Deposit,
			"property_type": property.PropertyType,
			"bedrooms":      property.Bedrooms,
			"bathrooms":     property.Bathrooms,
			"area":          property.Area,
			"amenities":     property.Amenities,
			"images":        property.Images,
			"status":        property.Status,
			"updated_at":    now,
		},
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "owner": property.Owner, "status": observed},
		update,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	if result.MatchedCount == 0 {
		return propertieserrors.ErrStatusChanged
	}
	return nil
}

func (r *mongoPropertyRepository) DeleteOwned(ctx context.Context, id string, ownerID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "owner": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if result.DeletedCount == 0 {
		return propertieserrors.ErrNotFound
	}
	return nil
}

func (r *mongoPropertyRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoPropertyRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Property, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []*model.Property{}
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

func statusFilter(status model.PropertyStatus) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}

func toObjectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
