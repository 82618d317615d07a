package model

import "time"

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"min=-180,max=180"`
}

type Location struct {
	Address     string       `json:"address" bson:"address" validate:"omitempty,max=200"`
	City        string       `json:"city" bson:"city" validate:"required,min=2,max=100"`
	State       string       `json:"state" bson:"state" validate:"omitempty,max=100"`
	Country     string       `json:"country" bson:"country" validate:"omitempty,max=100"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty" validate:"omitempty"`
}

type Property struct {
	ID           string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Owner        string         `json:"owner" bson:"owner" validate:"required,mongodb"`
	Title        string         `json:"title" bson:"title" validate:"required,min=3,max=150"`
	Description  string         `json:"description" bson:"description" validate:"omitempty,max=5000"`
	Location     Location       `json:"location" bson:"location" validate:"required"`
	Rent         float64        `json:"rent" bson:"rent" validate:"required,gt=0"`
	Deposit      float64        `json:"deposit" bson:"deposit" validate:"min=0"`
	PropertyType PropertyType   `json:"property_type" bson:"property_type" validate:"required,property_type"`
	Bedrooms     int            `json:"bedrooms" bson:"bedrooms" validate:"min=0,max=50"`
	Bathrooms    int            `json:"bathrooms" bson:"bathrooms" validate:"min=0,max=50"`
	Area         float64        `json:"area" bson:"area" validate:"min=0"`
	Amenities    []string       `json:"amenities" bson:"amenities" validate:"max=50,dive,min=1,max=50"`
	Images       []string       `json:"images" bson:"images" validate:"max=30,dive,url"`
	Status       PropertyStatus `json:"status" bson:"status" validate:"required,property_status"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt    *time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// PropertyUpload is the owner-supplied body for a new listing.
type PropertyUpload struct {
	Title        string       `json:"title" validate:"required,min=3,max=150"`
	Description  string       `json:"description" validate:"omitempty,max=5000"`
	Location     Location     `json:"location" validate:"required"`
	Rent         float64      `json:"rent" validate:"required,gt=0"`
	Deposit      float64      `json:"deposit" validate:"min=0"`
	PropertyType PropertyType `json:"property_type" validate:"required,property_type"`
	Bedrooms     int          `json:"bedrooms" validate:"min=0,max=50"`
	Bathrooms    int          `json:"bathrooms" validate:"min=0,max=50"`
	Area         float64      `json:"area" validate:"min=0"`
	Amenities    []string     `json:"amenities" validate:"max=50,dive,min=1,max=50"`
	Images       []string     `json:"images" validate:"max=30,dive,url"`
}

// PropertyUpdate carries the fields an owner may edit. Nil means unchanged.
type PropertyUpdate struct {
	Title        *string       `json:"title,omitempty" validate:"omitempty,min=3,max=150"`
	Description  *string       `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location     *Location     `json:"location,omitempty" validate:"omitempty"`
	Rent         *float64      `json:"rent,omitempty" validate:"omitempty,gt=0"`
	Deposit      *float64      `json:"deposit,omitempty" validate:"omitempty,min=0"`
	PropertyType *PropertyType `json:"property_type,omitempty" validate:"omitempty,property_type"`
	Bedrooms     *int          `json:"bedrooms,omitempty" validate:"omitempty,min=0,max=50"`
	Bathrooms    *int          `json:"bathrooms,omitempty" validate:"omitempty,min=0,max=50"`
	Area         *float64      `json:"area,omitempty" validate:"omitempty,min=0"`
	Amenities    *[]string     `json:"amenities,omitempty" validate:"omitempty,max=50,dive,min=1,max=50"`
	Images       *[]string     `json:"images,omitempty" validate:"omitempty,max=30,dive,url"`
}

func (u *PropertyUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Location == nil && u.Rent == nil &&
		u.Deposit == nil && u.PropertyType == nil && u.Bedrooms == nil && u.Bathrooms == nil &&
		u.Area == nil && u.Amenities == nil && u.Images == nil
}

type PropertyStatusChange struct {
	Status PropertyStatus `json:"status" validate:"required,property_status"`
}

// StatusBreakdown counts documents per status value.
type StatusBreakdown map[string]int64

type BookingInfo struct {
	BookedSlots    []BookedSlot `json:"booked_slots"`
	UserHasBooking bool         `json:"user_has_booking"`
}

// PropertyDetail is the public listing page.
type PropertyDetail struct {
	Property          *Property   `json:"property"`
	BookingInfo       BookingInfo `json:"booking_info"`
	SimilarProperties []*Property `json:"similar_properties"`
}

// OwnerContact is what a renter sees after unlocking a listing.
type OwnerContact struct {
	PropertyID string   `json:"property_id"`
	Title      string   `json:"title"`
	Location   Location `json:"location"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone,omitempty"`
}

type PropertyList struct {
	Properties    []*Property     `json:"properties"`
	Pagination    Pagination      `json:"pagination"`
	TotalByStatus StatusBreakdown `json:"total_by_status,omitempty"`
}
