package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	clockRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as the payload of a VALIDATION_ERROR response.
func (v ValidationErrors) Details() map[string]any {
	return map[string]any{"errors": []ValidationError(v)}
}

// Fail builds a single-field ValidationErrors.
func Fail(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// Validator is a validator.Validate with the marketplace tags registered
// and field names reported by their JSON key.
type Validator struct {
	validate *validator.Validate
}

func New(log *logger.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	tags := map[string]validator.Func{
		"time_slot":              validateTimeSlot,
		"property_type":          validatePropertyType,
		"property_status":        validatePropertyStatus,
		"property_target_status": validatePropertyTargetStatus,
		"booking_target_status":  validateBookingTargetStatus,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	return &Validator{validate: v}
}

// Struct validates s and returns ValidationErrors for tag failures.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// IsTimeSlot reports whether s is "HH:MM" or "HH:MM-HH:MM" with the end
// after the start.
func IsTimeSlot(s string) bool {
	start, end, isRange := strings.Cut(s, "-")
	startMin, ok := clockMinutes(start)
	if !ok {
		return false
	}
	if !isRange {
		return true
	}
	endMin, ok := clockMinutes(end)
	return ok && endMin > startMin
}

func clockMinutes(s string) (int, bool) {
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour*60 + minute, true
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return IsTimeSlot(fl.Field().String())
}

func validatePropertyType(fl validator.FieldLevel) bool {
	return model.PropertyType(fl.Field().String()).Valid()
}

func validatePropertyStatus(fl validator.FieldLevel) bool {
	return model.PropertyStatus(fl.Field().String()).Valid()
}

// Pending is not a moderation target; listings return to it only via owner edits.
func validatePropertyTargetStatus(fl validator.FieldLevel) bool {
	status := model.PropertyStatus(fl.Field().String())
	return status.Valid() && status != model.PropertyPending
}

func validateBookingTargetStatus(fl validator.FieldLevel) bool {
	return model.BookingStatus(fl.Field().String()).AdminSettable()
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required", "required_if", "required_without":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		case "numeric":
			message = fmt.Sprintf("%s must contain digits only", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "time_slot":
			message = fmt.Sprintf("%s must look like 10:00 or 10:00-11:00", err.Field())
		case "property_type":
			message = fmt.Sprintf("%s must be one of: apartment house villa condo", err.Field())
		case "property_status":
			message = fmt.Sprintf("%s must be one of: pending approved rejected published sold", err.Field())
		case "property_target_status":
			message = fmt.Sprintf("%s must be one of: approved rejected published sold", err.Field())
		case "booking_target_status":
			message = fmt.Sprintf("%s must be one of: approved rejected completed", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
