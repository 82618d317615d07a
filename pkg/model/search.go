package model

type SortKey string

const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortRentAsc  SortKey = "rent_asc"
	SortRentDesc SortKey = "rent_desc"
	SortAreaAsc  SortKey = "area_asc"
	SortAreaDesc SortKey = "area_desc"
)

type NumberRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r NumberRange) Set() bool {
	return r.Min != nil || r.Max != nil
}

// PropertySearch is the criteria for a directory search. Zero values mean "no filter".
type PropertySearch struct {
	Query        string       `json:"search,omitempty" validate:"omitempty,max=200"`
	Rent         NumberRange  `json:"rent"`
	Deposit      NumberRange  `json:"deposit"`
	Area         NumberRange  `json:"area"`
	PropertyType PropertyType `json:"property_type,omitempty" validate:"omitempty,property_type"`
	Bedrooms     *int         `json:"bedrooms,omitempty" validate:"omitempty,min=0"`
	Bathrooms    *int         `json:"bathrooms,omitempty" validate:"omitempty,min=0"`
	City         string       `json:"city,omitempty" validate:"omitempty,max=100"`
	State        string       `json:"state,omitempty" validate:"omitempty,max=100"`
	Address      string       `json:"address,omitempty" validate:"omitempty,max=200"`
	Amenities    []string     `json:"amenities,omitempty" validate:"omitempty,max=20"`
	SortBy       SortKey      `json:"sort_by" validate:"required,oneof=newest oldest rent_asc rent_desc area_asc area_desc"`
	Page         int          `json:"page" validate:"min=1"`
	Limit        int          `json:"limit" validate:"min=1,max=100"`
}

func (s *PropertySearch) Skip() int64 {
	return int64(s.Page-1) * int64(s.Limit)
}

type Pagination struct {
	CurrentPage     int   `json:"current_page"`
	TotalPages      int   `json:"total_pages"`
	TotalProperties int64 `json:"total_properties"`
	PerPage         int   `json:"per_page"`
	OnCurrentPage   int   `json:"on_current_page"`
	HasNextPage     bool  `json:"has_next_page"`
	HasPrevPage     bool  `json:"has_prev_page"`
	NextPage        *int  `json:"next_page"`
	PrevPage        *int  `json:"prev_page"`
}

// NewPagination derives page metadata from the total match count.
func NewPagination(page, limit int, total int64, onPage int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	p := Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalProperties: total,
		PerPage:         limit,
		OnCurrentPage:   onPage,
		HasNextPage:     page < totalPages,
		HasPrevPage:     page > 1,
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

type SearchResult struct {
	Properties     []*Property    `json:"properties"`
	Pagination     Pagination     `json:"pagination"`
	AppliedFilters PropertySearch `json:"applied_filters"`
}
