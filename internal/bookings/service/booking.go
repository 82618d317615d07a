package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"rentals/internal/access"
	bookingserrors "rentals/internal/bookings/errors"
	"rentals/internal/bookings/repository"
	"rentals/internal/bookings/validator"
	propertieserrors "rentals/internal/properties/errors"
	"rentals/pkg/auth"
	"rentals/pkg/config"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/events"
	"rentals/pkg/model"
	"rentals/pkg/sanitizer"
	"rentals/pkg/validation"
)

const maxTopProperties = 50

// Listings resolves the property a booking is made against.
type Listings interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
}

type BookingService interface {
	Create(ctx context.Context, create *model.BookingCreate) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, page, limit int) (*model.BookingList, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error)
	UpdateTime(ctx context.Context, id string, update *model.BookingTimeUpdate) (*model.Booking, error)
	RequestTimeChange(ctx context.Context, id string, proposal *model.TimeChangeProposal) (*model.Booking, error)
	RespondTimeChange(ctx context.Context, id string, response *model.TimeChangeResponse) (*model.Booking, error)
	Analytics(ctx context.Context, top int) (*model.BookingAnalytics, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	listings  Listings
	validator *validator.BookingValidator
	events    *events.Dispatcher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	listings Listings,
	validator *validator.BookingValidator,
	dispatcher *events.Dispatcher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		listings:  listings,
		validator: validator,
		events:    dispatcher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, create *model.BookingCreate) (*model.Booking, error) {
	log := s.cfg.Log.WithContext(ctx)
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.BookingCreate); err != nil {
		return nil, err
	}

	create.TimeSlot = sanitizer.NormalizeTimeSlot(create.TimeSlot)
	create.Message = strings.TrimSpace(create.Message)
	if err := s.validator.ValidateCreate(create); err != nil {
		log.Warn("Booking validation failed", "error", err)
		return nil, validationError("Invalid booking input", err)
	}

	property, err := s.listings.FindByID(ctx, create.PropertyID)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) || errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Property", create.PropertyID)
		}
		log.Error("Failed to retrieve property for booking", "property_id", create.PropertyID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}
	if property.Status != model.PropertyPublished {
		return nil, apperrors.NotFoundWithID("Property", create.PropertyID)
	}

	pending, err := s.repo.HasPending(ctx, actor.ID, property.ID, "")
	if err != nil {
		log.Error("Failed to check pending bookings", "property_id", property.ID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}
	if pending {
		return nil, duplicatePending(property.ID)
	}

	booking := &model.Booking{
		User:              actor.ID,
		Property:          property.ID,
		VisitDate:         create.VisitDate.UTC(),
		TimeSlot:          create.TimeSlot,
		Status:            model.BookingPending,
		Message:           create.Message,
		TimeChangeRequest: model.ClearedTimeChangeRequest(),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrDuplicatePending) {
			return nil, duplicatePending(property.ID)
		}
		log.Error("Failed to create booking", "property_id", property.ID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.emit(ctx, events.BookingCreated, booking, events.BookingPayload{})

	log.Info("Booking created successfully",
		"id", booking.ID,
		"property_id", booking.Property,
		"visit_date", booking.VisitDate,
		"time_slot", booking.TimeSlot,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.BookingRead); err != nil {
		return nil, err
	}
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(model.RoleAdmin) {
		if err := requireBooker(actor, booking); err != nil {
			return nil, err
		}
	}
	return booking, nil
}

// List returns the caller's bookings, or every booking for an admin.
func (s *bookingService) List(ctx context.Context, page, limit int) (*model.BookingList, error) {
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.BookingList); err != nil {
		return nil, err
	}
	if err := s.validatePage(page, limit); err != nil {
		return nil, err
	}

	userID := actor.ID
	if actor.Is(model.RoleAdmin) {
		userID = ""
	}

	skip := int64(page-1) * int64(limit)
	var count int64
	var bookings []*model.Booking
	var breakdown model.StatusBreakdown
	var errCount, errFind, errBreakdown error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, userID)
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.Find(ctx, userID, skip, limit)
	}()

	go func() {
		defer wg.Done()
		breakdown, errBreakdown = s.repo.CountByStatus(ctx, userID)
	}()

	wg.Wait()
	if err := errors.Join(errCount, errFind, errBreakdown); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return &model.BookingList{
		Bookings:      bookings,
		TotalBookings: count,
		TotalByStatus: breakdown,
		Pagination:    model.NewPagination(page, limit, count, len(bookings)),
	}, nil
}

// UpdateStatus sets an admin decision. Any current status may be overwritten;
// repeating the current status changes nothing.
func (s *bookingService) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	log := s.cfg.Log.WithContext(ctx)
	if err := access.Authorize(auth.ActorFrom(ctx), access.BookingUpdateStatus); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateStatusChange(&model.BookingStatusChange{Status: status}); err != nil {
		log.Warn("Booking status validation failed", "id", id, "status", status)
		return nil, validationError("Invalid booking status", err)
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	from := booking.Status
	if from == status {
		log.Debug("Booking already in requested status", "id", id, "status", status)
		return booking, nil
	}

	updatedAt, err := s.repo.UpdateStatus(ctx, id, from, status)
	if err != nil {
		log.Error("Failed to update booking status", "id", id, "from", from, "to", status, "error", err)
		return nil, mapRepositoryError(err, id, "Failed to update booking status")
	}
	booking.Status = status
	booking.UpdatedAt = updatedAt

	s.emit(ctx, events.BookingStatusChanged, booking, events.BookingPayload{PreviousStatus: string(from)})

	log.Info("Booking status updated", "id", id, "from", from, "to", status)
	return booking, nil
}

// UpdateTime reschedules the caller's booking, sending it back for approval.
func (s *bookingService) UpdateTime(ctx context.Context, id string, update *model.BookingTimeUpdate) (*model.Booking, error) {
	log := s.cfg.Log.WithContext(ctx)
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.BookingModifyOwn); err != nil {
		return nil, err
	}

	if update.TimeSlot != nil {
		slot := sanitizer.NormalizeTimeSlot(*update.TimeSlot)
		update.TimeSlot = &slot
	}
	if err := s.validator.ValidateTimeUpdate(update); err != nil {
		log.Warn("Booking time update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid booking time", err)
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireBooker(actor, existing); err != nil {
		return nil, err
	}

	if existing.Status != model.BookingPending {
		pending, err := s.repo.HasPending(ctx, actor.ID, existing.Property, id)
		if err != nil {
			log.Error("Failed to check pending bookings", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to update booking time", err)
		}
		if pending {
			return nil, duplicatePending(existing.Property)
		}
	}

	booking, err := s.repo.UpdateTime(ctx, id, actor.ID, update)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrDuplicatePending) {
			return nil, duplicatePending(existing.Property)
		}
		log.Error("Failed to update booking time", "id", id, "error", err)
		return nil, mapRepositoryError(err, id, "Failed to update booking time")
	}

	s.emit(ctx, events.BookingTimeUpdated, booking, events.BookingPayload{PreviousStatus: string(existing.Status)})

	log.Info("Booking time updated", "id", id, "time_slot", booking.TimeSlot)
	return booking, nil
}

// RequestTimeChange records an admin proposal of alternative slots.
func (s *bookingService) RequestTimeChange(ctx context.Context, id string, proposal *model.TimeChangeProposal) (*model.Booking, error) {
	log := s.cfg.Log.WithContext(ctx)
	if err := access.Authorize(auth.ActorFrom(ctx), access.BookingRequestTimeChange); err != nil {
		return nil, err
	}

	proposal.Reason = strings.TrimSpace(proposal.Reason)
	proposal.SuggestedSlots = sanitizer.NormalizeTimeSlots(proposal.SuggestedSlots)
	if err := s.validator.ValidateProposal(proposal); err != nil {
		log.Warn("Time change proposal validation failed", "id", id, "error", err)
		return nil, validationError("Invalid time change request", err)
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.TimeChangeRequest.Requested {
		return nil, activeRequest(id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	reason := proposal.Reason
	request := model.TimeChangeRequest{
		Requested:      true,
		Reason:         &reason,
		SuggestedSlots: proposal.SuggestedSlots,
		RequestedAt:    &now,
	}

	booking, err := s.repo.RequestTimeChange(ctx, id, request)
	if err != nil {
		log.Error("Failed to request time change", "id", id, "error", err)
		return nil, mapRepositoryError(err, id, "Failed to request time change")
	}

	s.emit(ctx, events.BookingTimeChangeRequested, booking, events.BookingPayload{
		Reason:         reason,
		SuggestedSlots: request.SuggestedSlots,
	})

	log.Info("Time change requested", "id", id, "suggested_slots", request.SuggestedSlots)
	return booking, nil
}

// RespondTimeChange lets the booker accept one of the suggested slots or
// decline. Either answer clears the request.
func (s *bookingService) RespondTimeChange(ctx context.Context, id string, response *model.TimeChangeResponse) (*model.Booking, error) {
	log := s.cfg.Log.WithContext(ctx)
	actor := auth.ActorFrom(ctx)
	if err := access.Authorize(actor, access.BookingModifyOwn); err != nil {
		return nil, err
	}

	response.NewTimeSlot = sanitizer.NormalizeTimeSlot(response.NewTimeSlot)
	if err := s.validator.ValidateResponse(response); err != nil {
		log.Warn("Time change response validation failed", "id", id, "error", err)
		return nil, validationError("Invalid time change response", err)
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireBooker(actor, existing); err != nil {
		return nil, err
	}

	request := existing.TimeChangeRequest
	if !request.Requested {
		return nil, noActiveRequest(id)
	}

	var accepted *string
	if response.Accept {
		if !request.Offers(response.NewTimeSlot) {
			log.Warn("Time change answered with an unoffered slot", "id", id, "time_slot", response.NewTimeSlot)
			return nil, apperrors.Conflict("Selected time slot was not offered").
				WithDetails(map[string]any{"valid_options": request.SuggestedSlots})
		}
		accepted = &response.NewTimeSlot
	}

	booking, err := s.repo.ResolveTimeChange(ctx, id, actor.ID, accepted)
	if err != nil {
		log.Error("Failed to resolve time change", "id", id, "error", err)
		return nil, mapRepositoryError(err, id, "Failed to resolve time change")
	}

	accept := response.Accept
	s.emit(ctx, events.BookingTimeChangeResolved, booking, events.BookingPayload{
		PreviousStatus: string(existing.Status),
		Accepted:       &accept,
	})

	log.Info("Time change resolved", "id", id, "accepted", accept, "time_slot", booking.TimeSlot)
	return booking, nil
}

func (s *bookingService) Analytics(ctx context.Context, top int) (*model.BookingAnalytics, error) {
	if err := access.Authorize(auth.ActorFrom(ctx), access.BookingAnalytics); err != nil {
		return nil, err
	}
	if top == 0 {
		top = s.cfg.TopPropertiesDefault
	}
	if top < 1 || top > maxTopProperties {
		return nil, validationError("Invalid analytics parameters",
			validation.Fail("top", "top must be between 1 and 50"))
	}

	analytics := &model.BookingAnalytics{}
	var errTotal, errStatus, errRole, errTop error
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		analytics.TotalBookings, errTotal = s.repo.Count(ctx, "")
	}()

	go func() {
		defer wg.Done()
		analytics.BookingsByStatus, errStatus = s.repo.CountByStatus(ctx, "")
	}()

	go func() {
		defer wg.Done()
		analytics.BookingsByUserRole, errRole = s.repo.CountByUserRole(ctx)
	}()

	go func() {
		defer wg.Done()
		analytics.TopProperties, errTop = s.repo.TopProperties(ctx, top)
	}()

	wg.Wait()
	if err := errors.Join(errTotal, errStatus, errRole, errTop); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to compute booking analytics", "error", err)
		return nil, apperrors.Internal("Failed to compute booking analytics", err)
	}
	return analytics, nil
}

// --- Helpers ---

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, bookingserrors.ErrNotFound) && !errors.Is(err, bookingserrors.ErrInvalidID) {
			s.cfg.Log.WithContext(ctx).Error("Failed to retrieve booking", "id", id, "error", err)
		}
		return nil, mapRepositoryError(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) emit(ctx context.Context, eventType string, b *model.Booking, payload events.BookingPayload) {
	payload.BookingID = b.ID
	payload.UserID = b.User
	payload.PropertyID = b.Property
	payload.Status = string(b.Status)
	visit := b.VisitDate
	payload.VisitDate = &visit
	payload.TimeSlot = b.TimeSlot
	s.events.Emit(ctx, eventType, b.ID, payload)
}

func (s *bookingService) validatePage(page, limit int) error {
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

func requireBooker(actor *auth.Actor, b *model.Booking) error {
	if actor == nil || b.User != actor.ID {
		return apperrors.Forbidden("You do not own this booking")
	}
	return nil
}

func duplicatePending(propertyID string) error {
	return apperrors.Conflict("You already have a pending booking for this property").
		WithDetails(map[string]any{"property_id": propertyID})
}

func noActiveRequest(id string) error {
	return apperrors.Conflict("No active time change request for this booking").
		WithDetails(map[string]any{"id": id})
}

func activeRequest(id string) error {
	return apperrors.Conflict("A time change request is already active for this booking").
		WithDetails(map[string]any{"id": id})
}

func mapRepositoryError(err error, id, message string) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrNoActiveRequest):
		return noActiveRequest(id)
	case errors.Is(err, bookingserrors.ErrActiveRequest):
		return activeRequest(id)
	case errors.Is(err, bookingserrors.ErrStatusChanged):
		return apperrors.Conflict("Booking was modified concurrently, reload and retry").
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
