package access

import (
	"testing"

	"rentals/pkg/auth"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/model"
)

func TestAuthorize(t *testing.T) {
	user := &auth.Actor{ID: "u1", Role: model.RoleUser}
	owner := &auth.Actor{ID: "o1", Role: model.RoleOwner}
	admin := &auth.Actor{ID: "a1", Role: model.RoleAdmin}

	tests := []struct {
		name     string
		actor    *auth.Actor
		action   Action
		wantCode string
	}{
		{"user creates booking", user, BookingCreate, ""},
		{"admin cannot create booking", admin, BookingCreate, apperrors.CodeForbidden},
		{"owner cannot create booking", owner, BookingCreate, apperrors.CodeForbidden},
		{"admin updates booking status", admin, BookingUpdateStatus, ""},
		{"user cannot update booking status", user, BookingUpdateStatus, apperrors.CodeForbidden},
		{"admin requests time change", admin, BookingRequestTimeChange, ""},
		{"user modifies own booking", user, BookingModifyOwn, ""},
		{"user lists bookings", user, BookingList, ""},
		{"admin lists bookings", admin, BookingList, ""},
		{"owner cannot list bookings", owner, BookingList, apperrors.CodeForbidden},
		{"owner uploads property", owner, PropertyUpload, ""},
		{"user cannot upload property", user, PropertyUpload, apperrors.CodeForbidden},
		{"admin moderates property", admin, PropertyModerate, ""},
		{"owner cannot moderate property", owner, PropertyModerate, apperrors.CodeForbidden},
		{"user manages wishlist", user, WishlistManage, ""},
		{"user reads owner contact", user, PropertyContact, ""},
		{"owner cannot read owner contact", owner, PropertyContact, apperrors.CodeForbidden},
		{"anonymous is unauthorized", nil, BookingList, apperrors.CodeUnauthorized},
		{"unknown action", admin, Action("nope"), apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.action)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	actor := &auth.Actor{ID: "u1", Role: model.RoleUser}

	if err := RequireOwnership(actor, "u1"); err != nil {
		t.Errorf("owner should pass: %v", err)
	}
	if err := RequireOwnership(actor, "u2"); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN, got %v", err)
	}
	if err := RequireOwnership(actor, ""); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for empty owner, got %v", err)
	}
	if err := RequireOwnership(nil, "u1"); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestCheckPropertyTransition(t *testing.T) {
	const (
		pending   = model.PropertyPending
		approved  = model.PropertyApproved
		rejected  = model.PropertyRejected
		published = model.PropertyPublished
		sold      = model.PropertySold
	)

	tests := []struct {
		from     model.PropertyStatus
		to       model.PropertyStatus
		wantNoop bool
		wantErr  bool
	}{
		{pending, approved, false, false},
		{rejected, approved, false, false},
		{published, approved, false, true},
		{sold, approved, false, true},

		{pending, rejected, false, false},
		{approved, rejected, false, false},
		{published, rejected, false, false},
		{sold, rejected, false, false},

		{approved, published, false, false},
		{pending, published, false, true},
		{rejected, published, false, true},
		{sold, published, false, true},

		{published, sold, false, false},
		{approved, sold, false, true},
		{pending, sold, false, true},

		{approved, pending, false, true},
		{published, pending, false, true},

		{pending, pending, true, false},
		{approved, approved, true, false},
		{published, published, true, false},
		{sold, sold, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			noop, err := CheckPropertyTransition(tt.from, tt.to)
			if noop != tt.wantNoop {
				t.Errorf("noop = %v, want %v", noop, tt.wantNoop)
			}
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeConflict) {
					t.Errorf("expected CONFLICT, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckPropertyTransition_UnknownTarget(t *testing.T) {
	_, err := CheckPropertyTransition(model.PropertyPending, "archived")
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestResetsOnEdit(t *testing.T) {
	for status, want := range map[model.PropertyStatus]bool{
		model.PropertyPending:   false,
		model.PropertyApproved:  true,
		model.PropertyRejected:  false,
		model.PropertyPublished: true,
		model.PropertySold:      false,
	} {
		if got := ResetsOnEdit(status); got != want {
			t.Errorf("ResetsOnEdit(%s) = %v, want %v", status, got, want)
		}
	}
}
