package model

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

type PropertyStatus string

const (
	PropertyPending   PropertyStatus = "pending"
	PropertyApproved  PropertyStatus = "approved"
	PropertyRejected  PropertyStatus = "rejected"
	PropertyPublished PropertyStatus = "published"
	PropertySold      PropertyStatus = "sold"
)

var PropertyStatuses = []PropertyStatus{
	PropertyPending,
	PropertyApproved,
	PropertyRejected,
	PropertyPublished,
	PropertySold,
}

func (s PropertyStatus) Valid() bool {
	for _, known := range PropertyStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
)

var BookingStatuses = []BookingStatus{
	BookingPending,
	BookingApproved,
	BookingRejected,
	BookingCompleted,
}

func (s BookingStatus) Valid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// AdminSettable reports whether an admin may move a booking into s.
// Pending is only reachable through creation or a user time update.
func (s BookingStatus) AdminSettable() bool {
	return s == BookingApproved || s == BookingRejected || s == BookingCompleted
}

type PropertyType string

const (
	Apartment PropertyType = "apartment"
	House     PropertyType = "house"
	Villa     PropertyType = "villa"
	Condo     PropertyType = "condo"
)

func (t PropertyType) Valid() bool {
	switch t {
	case Apartment, House, Villa, Condo:
		return true
	}
	return false
}
