package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"rentals/internal/access"
	accountserrors "rentals/internal/accounts/errors"
	propertieserrors "rentals/internal/properties/errors"
	"rentals/internal/properties/repository"
	"rentals/internal/properties/validator"
	"rentals/pkg/auth"
	"rentals/pkg/cache"
	"rentals/pkg/config"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/events"
	"rentals/pkg/model"
	"rentals/pkg/sanitizer"
	"rentals/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

// OwnerDirectory resolves owner profiles and maintains their listing membership.
type OwnerDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Owner, error)
	FindByUser(ctx context.Context, userID string) (*model.Owner, error)
	AddProperty(ctx context.Context, ownerID, propertyID string) error
	RemoveProperty(ctx context.Context, ownerID, propertyID string) error
}

// UserDirectory resolves the account behind an owner profile.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// BookingSlots lists the visits booked against a listing.
type BookingSlots interface {
	FindByProperty(ctx context.Context, propertyID string) ([]*model.Booking, error)
}

type PropertyService interface {
	Search(ctx context.Context, criteria *model.PropertySearch) (*model.SearchResult, error)
	GetDetail(ctx context.Context, id string) (*model.PropertyDetail, error)
	FindSimilar(ctx context.Context, id string) ([]*model.Property, error)
	OwnerContact(ctx context.Context, id string) (*model.OwnerContact, error)

	Upload(ctx context.Context, upload *model.PropertyUpload) (*model.Property, error)
	ListOwn(ctx context.Context, page, limit int) (*model.PropertyList, error)
	GetOwn(ctx context.Context, id string) (*model.Property, error)
	UpdateOwn(ctx context.Context, id string, update *model.PropertyUpdate) (*model.Property, error)
	DeleteOwn(ctx context.Context, id string) error

	ListAll(ctx context.Context, status model.PropertyStatus, page, limit int) (*model.PropertyList, error)
	ChangeStatus(ctx context.Context, id string, to model.PropertyStatus) (*model.Property, error)
	Review(ctx context.Context, id string, to model.PropertyStatus) (*model.Property, error)
	Publish(ctx context.Context, id string) (*model.Property, error)
	MarkSold(ctx context.Context, id string) (*model.Property, error)
}

type propertyService struct {
	repo      repository.PropertyRepository
	owners    OwnerDirectory
	users     UserDirectory
	bookings  BookingSlots
	validator *validator.PropertyValidator
	cache     cache.SearchCache
	events    *events.Dispatcher
	cfg       *config.Config
}

func NewPropertyService(
	repo repository.PropertyRepository,
	owners OwnerDirectory,
	users UserDirectory,
	bookings BookingSlots,
	validator *validator.PropertyValidator,
	searchCache cache.SearchCache,
	dispatcher *events.Dispatcher,
	cfg *config.Config,
) PropertyService {
	if searchCache == nil {
		searchCache = cache.NopSearchCache{}
	}
	return &propertyService{
		repo:      repo,
		owners:    owners,
		users:     users,
		bookings:  bookings,
		validator: validator,
		cache:     searchCache,
		events:    dispatcher,
		cfg:       cfg,
	}
}

// --- Directory ---

func (s *propertyService) Search(ctx context.Context, criteria *model.PropertySearch) (*model.SearchResult, error) {
	log := s.cfg.Log.WithContext(ctx)
	s.applySearchDefaults(criteria)

	if err := s.validator.ValidateSearch(criteria, s.cfg.MaxPageSize); err != nil {
		log.Warn("Property search validation failed", "error", err)
		return nil, validationError("Invalid search parameters", err)
	}

	params := searchParams(criteria)
	var cached model.SearchResult
	cacheKey, hit, err := s.cache.Get(ctx, params, &cached)
	if err != nil {
		log.Warn("Search cache read failed", "error", err)
	}
	if hit {
		log.Debug("Search cache hit", "page", criteria.Page)
		return &cached, nil
	}

	var count int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountSearch(ctx, criteria)
		if errCount != nil {
			log.Error("Failed to count properties", "error", errCount)
			errCount = apperrors.Internal("Failed to count properties", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		properties, errFind = s.repo.Search(ctx, criteria)
		if errFind != nil {
			log.Error("Failed to search properties", "error", errFind)
			errFind = apperrors.Internal("Failed to search properties", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, errCount
	}
	if errFind != nil {
		return nil, errFind
	}

	result := &model.SearchResult{
		Properties:     properties,
		Pagination:     model.NewPagination(criteria.Page, criteria.Limit, count, len(properties)),
		AppliedFilters: *criteria,
	}

	if err := s.cache.Set(ctx, cacheKey, result); err != nil {
		log.Warn("Search cache write failed", "error", err)
	}

	log.Debug("Property search completed",
		"count", len(properties),
		"total_count", count,
		"page", criteria.Page,
	)
	return result, nil
}

func (s *propertyService) GetDetail(ctx context.Context, id string) (*model.PropertyDetail, error) {
	property, err := s.getPublished(ctx, id)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.FindByProperty(ctx, property.ID)
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to load booked slots", "property_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load booked slots", err)
	}

	similar, err := s.similarTo(ctx, property)
	if err != nil {
		return nil, err
	}

	return &model.PropertyDetail{
		Property:          property,
		BookingInfo:       bookingInfo(bookings, auth.ActorFrom(ctx)),
		SimilarProperties: similar,
	}, nil
}

func (s *propertyService) FindSimilar(ctx context.Context, id string) ([]*model.Property, error) {
	property, err := s.getPublished(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.similarTo(ctx, property)
}

// OwnerContact reveals who to call about a published listing.
func (s *propertyService) OwnerContact(ctx context.Context, id string) (*model.OwnerContact, error) {
	log := s.cfg.Log.WithContext(ctx)
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.PropertyContact); err != nil {
		return nil, err
	}

	property, err := s.getPublished(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.owners.FindByID(ctx, property.Owner)
	if err != nil {
		if errors.Is(err, accountserrors.ErrOwnerNotFound) {
			return nil, apperrors.NotFound("Owner profile")
		}
		log.Error("Failed to load listing owner", "property_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve owner contact", err)
	}
	user, err := s.users.FindByID(ctx, owner.User)
	if err != nil {
		if errors.Is(err, accountserrors.ErrUserNotFound) {
			return nil, apperrors.NotFound("Owner account")
		}
		log.Error("Failed to load owner account", "property_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve owner contact", err)
	}

	log.Info("Owner contact revealed", "property_id", property.ID, "user_id", actor.ID)
	return &model.OwnerContact{
		PropertyID: property.ID,
		Title:      property.Title,
		Location:   property.Location,
		Name:       user.DisplayName(),
		Email:      user.Email,
		Phone:      user.Phone,
	}, nil
}

// --- Owner listings ---

func (s *propertyService) Upload(ctx context.Context, upload *model.PropertyUpload) (*model.Property, error) {
	log := s.cfg.Log.WithContext(ctx)
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.PropertyUpload); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpload(upload); err != nil {
		log.Warn("Property upload validation failed", "error", err)
		return nil, validationError("Invalid property input", err)
	}

	owner, err := s.ownerOf(ctx, actor)
	if err != nil {
		return nil, err
	}

	property := &model.Property{
		Owner:        owner.ID,
		Title:        upload.Title,
		Description:  upload.Description,
		Location:     upload.Location,
		Rent:         upload.Rent,
		Deposit:      upload.Deposit,
		PropertyType: upload.PropertyType,
		Bedrooms:     upload.Bedrooms,
		Bathrooms:    upload.Bathrooms,
		Area:         upload.Area,
		Amenities:    upload.Amenities,
		Images:       upload.Images,
		Status:       model.PropertyPending,
	}
	s.sanitize(property)
	if err := s.validator.Validate(property); err != nil {
		log.Warn("Property validation failed", "error", err)
		return nil, validationError("Property validation failed", err)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, property); err != nil {
			return apperrors.Internal("Failed to create property", err)
		}
		if err := s.owners.AddProperty(sessCtx, owner.ID, property.ID); err != nil {
			return apperrors.Internal("Failed to link property to owner", err)
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to upload property", "owner_id", owner.ID, "error", err)
		return nil, apperrors.AsAppError(err)
	}

	s.events.Emit(ctx, events.PropertySubmitted, property.ID, events.PropertyPayload{
		PropertyID: property.ID,
		OwnerID:    owner.ID,
		Title:      property.Title,
		To:         string(property.Status),
	})

	log.Info("Property uploaded successfully",
		"id", property.ID,
		"owner_id", owner.ID,
		"city", property.Location.City,
	)
	return property, nil
}

func (s *propertyService) ListOwn(ctx context.Context, page, limit int) (*model.PropertyList, error) {
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.PropertyListOwn); err != nil {
		return nil, err
	}
	if err := s.validatePage(page, limit); err != nil {
		return nil, err
	}
	owner, err := s.ownerOf(ctx, actor)
	if err != nil {
		return nil, err
	}

	skip := int64(page-1) * int64(limit)
	var count int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByOwner(ctx, owner.ID)
	}()

	go func() {
		defer wg.Done()
		properties, errFind = s.repo.FindByOwner(ctx, owner.ID, skip, limit)
	}()

	wg.Wait()
	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list owner properties", "owner_id", owner.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve properties", err)
	}

	return &model.PropertyList{
		Properties: properties,
		Pagination: model.NewPagination(page, limit, count, len(properties)),
	}, nil
}

func (s *propertyService) GetOwn(ctx context.Context, id string) (*model.Property, error) {
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.PropertyListOwn); err != nil {
		return nil, err
	}
	_, property, err := s.ownedProperty(ctx, actor, id)
	return property, err
}

func (s *propertyService) UpdateOwn(ctx context.Context, id string, update *model.PropertyUpdate) (*model.Property, error) {
	log := s.cfg.Log.WithContext(ctx)
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.PropertyUpdateOwn); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		log.Warn("Property update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	owner, existing, err := s.ownedProperty(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	observed := existing.Status
	merged := mergePropertyUpdates(existing, update)
	if access.ResetsOnEdit(observed) {
		merged.Status = model.PropertyPending
	}
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		log.Warn("Property validation failed", "id", id, "error", err)
		return nil, validationError("Property validation failed", err)
	}

	if err := s.repo.UpdateOwned(ctx, merged, observed); err != nil {
		log.Error("Failed to update property", "id", id, "error", err)
		return nil, mapRepositoryError(err, id, "Failed to update property")
	}

	if merged.Status != observed {
		s.afterStatusChange(ctx, merged, observed)
	} else if observed == model.PropertyPublished {
		s.invalidateSearch(ctx)
	}

	log.Info("Property updated successfully", "id", id, "owner_id", owner.ID, "status", merged.Status)
	return merged, nil
}

func (s *propertyService) DeleteOwn(ctx context.Context, id string) error {
	log := s.cfg.Log.WithContext(ctx)
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.PropertyDeleteOwn); err != nil {
		return err
	}

	owner, property, err := s.ownedProperty(ctx, actor, id)
	if err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.DeleteOwned(sessCtx, id, owner.ID); err != nil {
			return mapRepositoryError(err, id, "Failed to delete property")
		}
		if err := s.owners.RemoveProperty(sessCtx, owner.ID, id); err != nil {
			return apperrors.Internal("Failed to unlink property from owner", err)
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to delete property", "id", id, "error", err)
		return apperrors.AsAppError(err)
	}

	if property.Status == model.PropertyPublished {
		s.invalidateSearch(ctx)
	}

	log.Info("Property deleted successfully", "id", id, "owner_id", owner.ID)
	return nil
}

// --- Moderation ---

func (s *propertyService) ListAll(ctx context.Context, status model.PropertyStatus, page, limit int) (*model.PropertyList, error) {
	if err := access.Authorize(auth.ActorFrom(ctx), access.PropertyListAll); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("Invalid status filter", map[string]any{
			"status":  status,
			"allowed": model.PropertyStatuses,
		})
	}
	if err := s.validatePage(page, limit); err != nil {
		return nil, err
	}

	skip := int64(page-1) * int64(limit)
	var count int64
	var properties []*model.Property
	var breakdown model.StatusBreakdown
	var errCount, errFind, errBreakdown error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
	}()

	go func() {
		defer wg.Done()
		properties, errFind = s.repo.FindAll(ctx, status, skip, limit)
	}()

	go func() {
		defer wg.Done()
		breakdown, errBreakdown = s.repo.CountByStatus(ctx)
	}()

	wg.Wait()
	if err := errors.Join(errCount, errFind, errBreakdown); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list properties", "error", err)
		return nil, apperrors.Internal("Failed to retrieve properties", err)
	}

	return &model.PropertyList{
		Properties:    properties,
		Pagination:    model.NewPagination(page, limit, count, len(properties)),
		TotalByStatus: breakdown,
	}, nil
}

func (s *propertyService) ChangeStatus(ctx context.Context, id string, to model.PropertyStatus) (*model.Property, error) {
	log := s.cfg.Log.WithContext(ctx)
	if err := access.Authorize(auth.ActorFrom(ctx), access.PropertyModerate); err != nil {
		return nil, err
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, id, "Failed to retrieve property")
	}

	from := property.Status
	noop, err := access.CheckPropertyTransition(from, to)
	if err != nil {
		log.Warn("Property transition rejected", "id", id, "from", from, "to", to)
		return nil, err
	}
	if noop {
		log.Debug("Property already in requested status", "id", id, "status", to)
		return property, nil
	}

	updatedAt, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		log.Error("Failed to update property status", "id", id, "from", from, "to", to, "error", err)
		return nil, mapRepositoryError(err, id, "Failed to update property status")
	}
	property.Status = to
	property.UpdatedAt = updatedAt

	s.afterStatusChange(ctx, property, from)

	log.Info("Property status updated", "id", id, "from", from, "to", to)
	return property, nil
}

func (s *propertyService) Review(ctx context.Context, id string, to model.PropertyStatus) (*model.Property, error) {
	if to != model.PropertyApproved && to != model.PropertyRejected {
		return nil, apperrors.Validation("Review outcome must be approved or rejected", map[string]any{
			"status": to,
		})
	}
	return s.ChangeStatus(ctx, id, to)
}

func (s *propertyService) Publish(ctx context.Context, id string) (*model.Property, error) {
	return s.ChangeStatus(ctx, id, model.PropertyPublished)
}

func (s *propertyService) MarkSold(ctx context.Context, id string) (*model.Property, error) {
	return s.ChangeStatus(ctx, id, model.PropertySold)
}

// --- Helpers ---

func (s *propertyService) getPublished(ctx context.Context, id string) (*model.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, id, "Failed to retrieve property")
	}
	if property.Status != model.PropertyPublished {
		return nil, apperrors.NotFoundWithID("Property", id)
	}
	return property, nil
}

func (s *propertyService) ownerOf(ctx context.Context, actor *auth.Actor) (*model.Owner, error) {
	owner, err := s.owners.FindByUser(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, accountserrors.ErrOwnerNotFound) {
			return nil, apperrors.NotFound("Owner profile")
		}
		return nil, apperrors.Internal("Failed to retrieve owner profile", err)
	}
	return owner, nil
}

func (s *propertyService) ownedProperty(ctx context.Context, actor *auth.Actor, id string) (*model.Owner, *model.Property, error) {
	owner, err := s.ownerOf(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, mapRepositoryError(err, id, "Failed to retrieve property")
	}
	if property.Owner != owner.ID {
		s.cfg.Log.WithContext(ctx).Warn("Owner acted on a foreign property", "id", id, "owner_id", owner.ID)
		return nil, nil, apperrors.Forbidden("You do not own this property")
	}
	return owner, property, nil
}

func (s *propertyService) afterStatusChange(ctx context.Context, property *model.Property, from model.PropertyStatus) {
	if from == model.PropertyPublished || property.Status == model.PropertyPublished {
		s.invalidateSearch(ctx)
	}
	s.events.Emit(ctx, events.PropertyStatusChanged, property.ID, events.PropertyPayload{
		PropertyID: property.ID,
		OwnerID:    property.Owner,
		Title:      property.Title,
		From:       string(from),
		To:         string(property.Status),
	})
}

func (s *propertyService) invalidateSearch(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Search cache invalidation failed", "error", err)
	}
}

func (s *propertyService) applySearchDefaults(c *model.PropertySearch) {
	if c.SortBy == "" {
		c.SortBy = model.SortNewest
	}
	c.Query = sanitizer.TrimAndNormalize(c.Query)
	c.City = sanitizer.TrimAndNormalize(c.City)
	c.State = sanitizer.TrimAndNormalize(c.State)
	c.Address = sanitizer.TrimAndNormalize(c.Address)
	if len(c.Amenities) > 0 {
		c.Amenities = sanitizer.NormalizeAmenities(c.Amenities)
	}
}

func (s *propertyService) validatePage(page, limit int) error {
	var errs validation.ValidationErrors
	if page < 1 {
		errs = append(errs, validation.Fail("page", "page must be at least 1")...)
	}
	if limit < 1 || limit > s.cfg.MaxPageSize {
		errs = append(errs, validation.Fail("limit", "limit is out of range")...)
	}
	if len(errs) > 0 {
		return validationError("Invalid pagination parameters", errs)
	}
	return nil
}

func (s *propertyService) sanitize(p *model.Property) {
	p.Title = sanitizer.TrimAndNormalize(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Location.Address = sanitizer.TrimAndNormalize(p.Location.Address)
	p.Location.City = sanitizer.TrimAndNormalize(p.Location.City)
	p.Location.State = sanitizer.TrimAndNormalize(p.Location.State)
	p.Location.Country = sanitizer.TrimAndNormalize(p.Location.Country)
	p.Amenities = sanitizer.NormalizeAmenities(p.Amenities)
	p.Images = sanitizer.NormalizeImageURLs(p.Images)
}

func mergePropertyUpdates(existing *model.Property, updates *model.PropertyUpdate) *model.Property {
	merged := *existing

	if updates.Title != nil {
		merged.Title = *updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Rent != nil {
		merged.Rent = *updates.Rent
	}
	if updates.Deposit != nil {
		merged.Deposit = *updates.Deposit
	}
	if updates.PropertyType != nil {
		merged.PropertyType = *updates.PropertyType
	}
	if updates.Bedrooms != nil {
		merged.Bedrooms = *updates.Bedrooms
	}
	if updates.Bathrooms != nil {
		merged.Bathrooms = *updates.Bathrooms
	}
	if updates.Area != nil {
		merged.Area = *updates.Area
	}
	if updates.Amenities != nil {
		merged.Amenities = *updates.Amenities
	}
	if updates.Images != nil {
		merged.Images = *updates.Images
	}

	return &merged
}

func bookingInfo(bookings []*model.Booking, actor *auth.Actor) model.BookingInfo {
	info := model.BookingInfo{BookedSlots: make([]model.BookedSlot, 0, len(bookings))}
	for _, b := range bookings {
		mine := actor != nil && b.User == actor.ID
		info.BookedSlots = append(info.BookedSlots, model.BookedSlot{
			ID:                  b.ID,
			VisitDate:           b.VisitDate,
			TimeSlot:            b.TimeSlot,
			Status:              b.Status,
			BookedByCurrentUser: mine,
		})
		info.UserHasBooking = info.UserHasBooking || mine
	}
	return info
}

func mapRepositoryError(err error, id, message string) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, propertieserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Property", id)
	case errors.Is(err, propertieserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid property ID format")
	case errors.Is(err, propertieserrors.ErrStatusChanged):
		return apperrors.Conflict("Property was modified concurrently, reload and retry").
			WithDetails(map[string]any{"id": id})
	default:
		return apperrors.Internal(message, err)
	}
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
