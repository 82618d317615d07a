package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentals/pkg/logger"

	"github.com/google/uuid"
)

const (
	BookingCreated             = "booking.created"
	BookingStatusChanged       = "booking.status_changed"
	BookingTimeUpdated         = "booking.time_updated"
	BookingTimeChangeRequested = "booking.time_change_requested"
	BookingTimeChangeResolved  = "booking.time_change_resolved"

	PropertySubmitted     = "property.submitted"
	PropertyStatusChanged = "property.status_changed"

	AccountRegistered = "account.registered"
)

// Event is the envelope every bus carries. Payload holds one of the
// *Payload types below, JSON encoded.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Key           string          `json:"key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

func New(ctx context.Context, eventType, key string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Key:           key,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: logger.RequestID(ctx),
		Payload:       raw,
	}, nil
}

func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

type BookingPayload struct {
	BookingID      string     `json:"booking_id"`
	UserID         string     `json:"user_id"`
	PropertyID     string     `json:"property_id"`
	Status         string     `json:"status"`
	PreviousStatus string     `json:"previous_status,omitempty"`
	VisitDate      *time.Time `json:"visit_date,omitempty"`
	TimeSlot       string     `json:"time_slot,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	SuggestedSlots []string   `json:"suggested_slots,omitempty"`
	Accepted       *bool      `json:"accepted,omitempty"`
}

type PropertyPayload struct {
	PropertyID string `json:"property_id"`
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title"`
	From       string `json:"from,omitempty"`
	To         string `json:"to"`
}

type AccountPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Role      string `json:"role"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type Handler func(ctx context.Context, event Event) error
