package service

import (
	"context"
	"errors"
	"strings"

	"rentals/internal/access"
	propertieserrors "rentals/internal/properties/errors"
	wishlistserrors "rentals/internal/wishlists/errors"
	"rentals/internal/wishlists/repository"
	"rentals/pkg/auth"
	"rentals/pkg/config"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/model"
	"rentals/pkg/validation"
)

// Listings resolves the properties a wishlist refers to.
type Listings interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Property, error)
}

type WishlistService interface {
	Add(ctx context.Context, add *model.WishlistAdd) (*model.WishlistView, error)
	List(ctx context.Context) (*model.WishlistView, error)
	Remove(ctx context.Context, propertyID string) (*model.WishlistView, error)
}

type wishlistService struct {
	repo      repository.WishlistRepository
	listings  Listings
	validator *validation.Validator
	cfg       *config.Config
}

func NewWishlistService(
	repo repository.WishlistRepository,
	listings Listings,
	validator *validation.Validator,
	cfg *config.Config,
) WishlistService {
	return &wishlistService{
		repo:      repo,
		listings:  listings,
		validator: validator,
		cfg:       cfg,
	}
}

// Add saves a published listing. Saving it again is not an error; the view
// reports is_new_property=false instead.
func (s *wishlistService) Add(ctx context.Context, add *model.WishlistAdd) (*model.WishlistView, error) {
	log := s.cfg.Log.WithContext(ctx)
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.WishlistManage); err != nil {
		return nil, err
	}

	add.PropertyID = strings.TrimSpace(add.PropertyID)
	if err := s.validator.Struct(add); err != nil {
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Invalid wishlist input", verrs.Details())
		}
		return nil, apperrors.Validation("Invalid wishlist input", map[string]any{"error": err.Error()})
	}

	property, err := s.listings.FindByID(ctx, add.PropertyID)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) || errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Property", add.PropertyID)
		}
		log.Error("Failed to load property for wishlist", "property_id", add.PropertyID, "error", err)
		return nil, apperrors.Internal("Failed to update wishlist", err)
	}
	if property.Status != model.PropertyPublished {
		return nil, apperrors.NotFoundWithID("Property", add.PropertyID)
	}

	added, err := s.repo.Add(ctx, actor.ID, add.PropertyID)
	if err != nil {
		log.Error("Failed to add to wishlist", "property_id", add.PropertyID, "error", err)
		return nil, apperrors.Internal("Failed to update wishlist", err)
	}

	view, err := s.view(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	view.IsNewProperty = &added
	log.Info("Wishlist updated", "property_id", add.PropertyID, "is_new", added)
	return view, nil
}

func (s *wishlistService) List(ctx context.Context) (*model.WishlistView, error) {
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.WishlistManage); err != nil {
		return nil, err
	}
	return s.view(ctx, actor.ID)
}

func (s *wishlistService) Remove(ctx context.Context, propertyID string) (*model.WishlistView, error) {
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.WishlistManage); err != nil {
		return nil, err
	}

	if err := s.repo.Remove(ctx, actor.ID, propertyID); err != nil {
		if errors.Is(err, wishlistserrors.ErrNotInWishlist) {
			return nil, apperrors.NotFoundWithID("Wishlist entry", propertyID)
		}
		s.cfg.Log.WithContext(ctx).Error("Failed to remove from wishlist", "property_id", propertyID, "error", err)
		return nil, apperrors.Internal("Failed to update wishlist", err)
	}

	return s.view(ctx, actor.ID)
}

// view resolves the saved ids. Listings deleted since they were saved are
// left out of the result.
func (s *wishlistService) view(ctx context.Context, userID string) (*model.WishlistView, error) {
	wishlist, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to load wishlist", "error", err)
		return nil, apperrors.Internal("Failed to retrieve wishlist", err)
	}

	properties, err := s.listings.FindByIDs(ctx, wishlist.Properties)
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to resolve wishlist properties", "error", err)
		return nil, apperrors.Internal("Failed to retrieve wishlist", err)
	}

	return &model.WishlistView{
		Properties: properties,
		TotalItems: len(properties),
	}, nil
}
