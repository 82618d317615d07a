package access

import (
	"fmt"

	"rentals/pkg/auth"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/model"
)

type Action string

const (
	BookingCreate            Action = "booking:create"
	BookingUpdateStatus      Action = "booking:update-status"
	BookingRequestTimeChange Action = "booking:request-time-change"
	BookingModifyOwn         Action = "booking:modify-own"
	BookingList              Action = "booking:list"
	BookingRead              Action = "booking:read"
	BookingAnalytics         Action = "booking:analytics"

	PropertyUpload    Action = "property:upload"
	PropertyUpdateOwn Action = "property:update-own"
	PropertyDeleteOwn Action = "property:delete-own"
	PropertyListOwn   Action = "property:list-own"
	PropertyModerate  Action = "property:moderate"
	PropertyListAll   Action = "property:list-all"
	PropertyContact   Action = "property:contact"

	WishlistManage Action = "wishlist:manage"
	UserListAll    Action = "user:list-all"
)

var roles = map[Action][]model.Role{
	BookingCreate:            {model.RoleUser},
	BookingUpdateStatus:      {model.RoleAdmin},
	BookingRequestTimeChange: {model.RoleAdmin},
	BookingModifyOwn:         {model.RoleUser},
	BookingList:              {model.RoleUser, model.RoleAdmin},
	BookingRead:              {model.RoleUser, model.RoleAdmin},
	BookingAnalytics:         {model.RoleAdmin},

	PropertyUpload:    {model.RoleOwner},
	PropertyUpdateOwn: {model.RoleOwner},
	PropertyDeleteOwn: {model.RoleOwner},
	PropertyListOwn:   {model.RoleOwner},
	PropertyModerate:  {model.RoleAdmin},
	PropertyListAll:   {model.RoleAdmin},
	PropertyContact:   {model.RoleUser},

	WishlistManage: {model.RoleUser},
	UserListAll:    {model.RoleAdmin},
}

// Authorize fails with Unauthorized when there is no actor and Forbidden
// when the actor's role does not carry the capability.
func Authorize(actor *auth.Actor, action Action) error {
	if actor == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	allowed, ok := roles[action]
	if !ok {
		return apperrors.Forbidden(fmt.Sprintf("Unknown action %q", action))
	}
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return apperrors.Forbidden(fmt.Sprintf("Role %q may not perform %s", actor.Role, action))
}

// RequireOwnership checks that the actor is the principal recorded on a resource.
func RequireOwnership(actor *auth.Actor, ownerID string) error {
	if actor == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if ownerID == "" || actor.ID != ownerID {
		return apperrors.Forbidden("You do not own this resource")
	}
	return nil
}

// CheckPropertyTransition validates a moderation move. A move to the current
// status is reported as a noop and must not be written.
func CheckPropertyTransition(from, to model.PropertyStatus) (bool, error) {
	if !to.Valid() {
		return false, apperrors.Validation("Invalid property status", map[string]any{
			"status":  to,
			"allowed": model.PropertyStatuses,
		})
	}
	if from == to {
		return true, nil
	}

	var allowed bool
	switch to {
	case model.PropertyRejected:
		allowed = true
	case model.PropertyApproved:
		allowed = from == model.PropertyPending || from == model.PropertyRejected
	case model.PropertyPublished:
		allowed = from == model.PropertyApproved
	case model.PropertySold:
		allowed = from == model.PropertyPublished
	case model.PropertyPending:
		// reachable only through an owner edit
		allowed = false
	}
	if !allowed {
		return false, apperrors.Conflict(fmt.Sprintf("Cannot move property from %s to %s", from, to)).
			WithDetails(map[string]any{"from": from, "to": to})
	}
	return false, nil
}

// ResetsOnEdit reports whether an owner edit sends a listing back to review.
func ResetsOnEdit(status model.PropertyStatus) bool {
	return status == model.PropertyApproved || status == model.PropertyPublished
}
