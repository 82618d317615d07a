package validator

import (
	"rentals/pkg/model"
	"rentals/pkg/validation"
)

type BookingValidator struct {
	validate *validation.Validator
}

func NewBookingValidator(v *validation.Validator) *BookingValidator {
	return &BookingValidator{validate: v}
}

func (v *BookingValidator) ValidateCreate(create *model.BookingCreate) error {
	if err := v.validate.Struct(create); err != nil {
		return err
	}
	if create.VisitDate.IsZero() {
		return validation.Fail("visit_date", "visit_date is required")
	}
	return nil
}

func (v *BookingValidator) ValidateStatusChange(change *model.BookingStatusChange) error {
	return v.validate.Struct(change)
}

func (v *BookingValidator) ValidateTimeUpdate(update *model.BookingTimeUpdate) error {
	if update.VisitDate == nil && update.TimeSlot == nil {
		return validation.Fail("body", "visit_date or time_slot must be provided")
	}
	return v.validate.Struct(update)
}

func (v *BookingValidator) ValidateProposal(proposal *model.TimeChangeProposal) error {
	return v.validate.Struct(proposal)
}

func (v *BookingValidator) ValidateResponse(response *model.TimeChangeResponse) error {
	return v.validate.Struct(response)
}
