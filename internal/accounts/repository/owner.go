package repository

import (
	"context"
	"errors"
	"fmt"

	accountserrors "rentals/internal/accounts/errors"
	"rentals/pkg/config"
	mongotx "rentals/pkg/db/mongo"
	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	OwnersCollection = "Owners"
)

type mongoOwnerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// OwnerRepository stores owner profiles. Properties is the authoritative
// list of an owner's listings and is only changed alongside the listing.
type OwnerRepository interface {
	Create(ctx context.Context, owner *model.Owner) error
	FindByID(ctx context.Context, id string) (*model.Owner, error)
	FindByUser(ctx context.Context, userID string) (*model.Owner, error)
	AddProperty(ctx context.Context, ownerID, propertyID string) error
	RemoveProperty(ctx context.Context, ownerID, propertyID string) error
}

func NewMongoOwnerRepository(cfg *config.Config) OwnerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOwnerRepository{
		cfg:        cfg,
		collection: db.Collection(OwnersCollection),
	}
}

func (r *mongoOwnerRepository) Create(ctx context.Context, owner *model.Owner) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if owner.Properties == nil {
		owner.Properties = []string{}
	}
	result, err := r.collection.InsertOne(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to create owner profile: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		owner.ID = oid.Hex()
	}
	return nil
}

func (r *mongoOwnerRepository) FindByID(ctx context.Context, id string) (*model.Owner, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", accountserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoOwnerRepository) FindByUser(ctx context.Context, userID string) (*model.Owner, error) {
	return r.findOne(ctx, bson.M{"user": userID})
}

func (r *mongoOwnerRepository) findOne(ctx context.Context, filter bson.M) (*model.Owner, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var owner model.Owner
	err := r.collection.FindOne(ctx, filter).Decode(&owner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, accountserrors.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to find owner profile: %w", err)
	}
	return &owner, nil
}

func (r *mongoOwnerRepository) AddProperty(ctx context.Context, ownerID, propertyID string) error {
	return r.updateMembership(ctx, ownerID, bson.M{"$push": bson.M{"properties": propertyID}})
}

func (r *mongoOwnerRepository) RemoveProperty(ctx context.Context, ownerID, propertyID string) error {
	return r.updateMembership(ctx, ownerID, bson.M{"$pull": bson.M{"properties": propertyID}})
}

func (r *mongoOwnerRepository) updateMembership(ctx context.Context, ownerID string, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return fmt.Errorf("%w: %s", accountserrors.ErrInvalidID, ownerID)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update owner properties: %w", err)
	}
	if result.MatchedCount == 0 {
		return accountserrors.ErrOwnerNotFound
	}
	return nil
}
