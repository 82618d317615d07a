package repository

import (
	"context"
	"errors"
	"fmt"

	wishlistserrors "rentals/internal/wishlists/errors"
	"rentals/pkg/config"
	mongotx "rentals/pkg/db/mongo"
	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Wishlists"
)

type mongoWishlistRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// WishlistRepository keeps one document per user holding the saved
// property ids in insertion order.
type WishlistRepository interface {
	Add(ctx context.Context, userID, propertyID string) (bool, error)
	FindByUser(ctx context.Context, userID string) (*model.Wishlist, error)
	Remove(ctx context.Context, userID, propertyID string) error
}

func NewMongoWishlistRepository(cfg *config.Config) WishlistRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWishlistRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// Add reports whether propertyID was new to the wishlist. The wishlist is
// created on first use.
func (r *mongoWishlistRepository) Add(ctx context.Context, userID, propertyID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{"$addToSet": bson.M{"properties": propertyID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return result.ModifiedCount > 0 || result.UpsertedCount > 0, nil
}

// FindByUser returns an empty wishlist for users that never saved anything.
func (r *mongoWishlistRepository) FindByUser(ctx context.Context, userID string) (*model.Wishlist, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var wishlist model.Wishlist
	err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&wishlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.Wishlist{User: userID, Properties: []string{}}, nil
		}
		return nil, fmt.Errorf("failed to find wishlist: %w", err)
	}
	if wishlist.Properties == nil {
		wishlist.Properties = []string{}
	}
	return &wishlist, nil
}

func (r *mongoWishlistRepository) Remove(ctx context.Context, userID, propertyID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"user": userID, "properties": propertyID},
		bson.M{"$pull": bson.M{"properties": propertyID}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	if result.MatchedCount == 0 {
		return wishlistserrors.ErrNotInWishlist
	}
	return nil
}
