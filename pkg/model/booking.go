package model

import "time"

type TimeChangeRequest struct {
	Requested      bool       `json:"requested" bson:"requested"`
	Reason         *string    `json:"reason" bson:"reason"`
	SuggestedSlots []string   `json:"suggested_slots" bson:"suggested_slots"`
	RequestedAt    *time.Time `json:"requested_at" bson:"requested_at"`
}

// ClearedTimeChangeRequest is the resting state of a booking's negotiation record.
func ClearedTimeChangeRequest() TimeChangeRequest {
	return TimeChangeRequest{
		Requested:      false,
		Reason:         nil,
		SuggestedSlots: []string{},
		RequestedAt:    nil,
	}
}

func (t TimeChangeRequest) Offers(slot string) bool {
	for _, s := range t.SuggestedSlots {
		if s == slot {
			return true
		}
	}
	return false
}

type Booking struct {
	ID                string            `json:"id,omitempty" bson:"_id,omitempty"`
	User              string            `json:"user" bson:"user"`
	Property          string            `json:"property" bson:"property"`
	VisitDate         time.Time         `json:"visit_date" bson:"visit_date"`
	TimeSlot          string            `json:"time_slot" bson:"time_slot"`
	Status            BookingStatus     `json:"status" bson:"status"`
	Message           string            `json:"message,omitempty" bson:"message,omitempty"`
	TimeChangeRequest TimeChangeRequest `json:"time_change_request" bson:"time_change_request"`
	CreatedAt         time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt         *time.Time        `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type BookingCreate struct {
	PropertyID string    `json:"property_id" validate:"required,mongodb"`
	VisitDate  time.Time `json:"visit_date" validate:"required"`
	TimeSlot   string    `json:"time_slot" validate:"required,time_slot"`
	Message    string    `json:"message,omitempty" validate:"omitempty,max=1000"`
}

type BookingStatusChange struct {
	Status BookingStatus `json:"status" validate:"required,booking_target_status"`
}

type BookingTimeUpdate struct {
	VisitDate *time.Time `json:"visit_date,omitempty" validate:"required_without=TimeSlot"`
	TimeSlot  *string    `json:"time_slot,omitempty" validate:"required_without=VisitDate,omitempty,time_slot"`
}

type TimeChangeProposal struct {
	Reason         string   `json:"reason" validate:"required,min=3,max=500"`
	SuggestedSlots []string `json:"suggested_slots" validate:"required,min=1,max=10,dive,required,time_slot"`
}

type TimeChangeResponse struct {
	Accept      bool   `json:"accept"`
	NewTimeSlot string `json:"new_time_slot,omitempty" validate:"required_if=Accept true,omitempty,time_slot"`
}

// BookedSlot is the public projection of a booking shown on a listing page.
type BookedSlot struct {
	ID                  string        `json:"id"`
	VisitDate           time.Time     `json:"visit_date"`
	TimeSlot            string        `json:"time_slot"`
	Status              BookingStatus `json:"status"`
	BookedByCurrentUser bool          `json:"booked_by_current_user"`
}

type BookingList struct {
	Bookings      []*Booking      `json:"bookings"`
	TotalBookings int64           `json:"total_bookings"`
	TotalByStatus StatusBreakdown `json:"total_by_status"`
	Pagination    Pagination      `json:"pagination"`
}

type TopProperty struct {
	PropertyID    string `json:"property_id" bson:"property_id"`
	Title         string `json:"title" bson:"title"`
	BookingsCount int64  `json:"bookings_count" bson:"bookings_count"`
}

type BookingAnalytics struct {
	TotalBookings      int64            `json:"total_bookings"`
	BookingsByStatus   StatusBreakdown  `json:"bookings_by_status"`
	BookingsByUserRole map[string]int64 `json:"bookings_by_user_role"`
	TopProperties      []TopProperty    `json:"top_properties"`
}
