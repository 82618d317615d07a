package validator

import (
	"fmt"

	"rentals/pkg/model"
	"rentals/pkg/validation"
)

type PropertyValidator struct {
	validate *validation.Validator
}

func NewPropertyValidator(v *validation.Validator) *PropertyValidator {
	return &PropertyValidator{validate: v}
}

func (v *PropertyValidator) Validate(property *model.Property) error {
	return v.validate.Struct(property)
}

func (v *PropertyValidator) ValidateUpload(upload *model.PropertyUpload) error {
	return v.validate.Struct(upload)
}

func (v *PropertyValidator) ValidateUpdate(update *model.PropertyUpdate) error {
	if update.Empty() {
		return validation.Fail("body", "at least one field must be provided")
	}
	return v.validate.Struct(update)
}

func (v *PropertyValidator) ValidateStatusChange(change *model.PropertyStatusChange) error {
	return v.validate.Struct(change)
}

// ValidateSearch checks the criteria before any store round trip.
func (v *PropertyValidator) ValidateSearch(criteria *model.PropertySearch, maxLimit int) error {
	if err := v.validate.Struct(criteria); err != nil {
		return err
	}

	var errs validation.ValidationErrors
	if criteria.Limit > maxLimit {
		errs = append(errs, validation.ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must be at most %d", maxLimit),
		})
	}
	ranges := []struct {
		name string
		r    model.NumberRange
	}{
		{"rent", criteria.Rent},
		{"deposit", criteria.Deposit},
		{"area", criteria.Area},
	}
	for _, rng := range ranges {
		if rng.r.Min != nil && rng.r.Max != nil && *rng.r.Min > *rng.r.Max {
			errs = append(errs, validation.ValidationError{
				Field:   "min_" + rng.name,
				Message: fmt.Sprintf("min_%s must not exceed max_%s", rng.name, rng.name),
			})
		}
		if rng.r.Min != nil && *rng.r.Min < 0 {
			errs = append(errs, validation.ValidationError{
				Field:   "min_" + rng.name,
				Message: fmt.Sprintf("min_%s must not be negative", rng.name),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
