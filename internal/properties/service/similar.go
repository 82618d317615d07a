package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"rentals/internal/properties/repository"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/model"
)

const rentBand = 0.2

// similarTo collects up to SimilarLimit published listings like ref, widening
// the query tier by tier: same city, type and rent band; same city and type;
// same type anywhere.
func (s *propertyService) similarTo(ctx context.Context, ref *model.Property) ([]*model.Property, error) {
	limit := s.cfg.SimilarLimit
	minRent := ref.Rent * (1 - rentBand)
	maxRent := ref.Rent * (1 + rentBand)

	tiers := []repository.SimilarFilter{
		{City: ref.Location.City, PropertyType: ref.PropertyType, MinRent: &minRent, MaxRent: &maxRent},
		{City: ref.Location.City, PropertyType: ref.PropertyType},
		{PropertyType: ref.PropertyType},
	}

	seen := map[string]bool{ref.ID: true}
	var candidates []*model.Property

	for i, tier := range tiers {
		if len(candidates) >= limit {
			break
		}
		tier.ClosestTo = ref.Rent
		tier.ExcludeIDs = seenIDs(seen)

		found, err := s.repo.FindSimilar(ctx, tier, limit)
		if err != nil {
			s.cfg.Log.WithContext(ctx).Error("Failed to find similar properties", "id", ref.ID, "tier", i+1, "error", err)
			return nil, apperrors.Internal("Failed to find similar properties", err)
		}
		for _, p := range found {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			candidates = append(candidates, p)
		}
	}

	return rankSimilar(ref, candidates, limit), nil
}

// rankSimilar orders candidates by rent distance from ref, breaking ties by
// id, and keeps the first limit.
func rankSimilar(ref *model.Property, candidates []*model.Property, limit int) []*model.Property {
	ranked := make([]*model.Property, 0, len(candidates))
	seen := map[string]bool{ref.ID: true}
	for _, p := range candidates {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		ranked = append(ranked, p)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		di := math.Abs(ranked[i].Rent - ref.Rent)
		dj := math.Abs(ranked[j].Rent - ref.Rent)
		if di != dj {
			return di < dj
		}
		return ranked[i].ID < ranked[j].ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func seenIDs(seen map[string]bool) []string {
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// searchParams flattens criteria into the cache key input.
func searchParams(c *model.PropertySearch) map[string]string {
	params := map[string]string{
		"sort_by": string(c.SortBy),
		"page":    strconv.Itoa(c.Page),
		"limit":   strconv.Itoa(c.Limit),
	}
	set := func(key, value string) {
		if value != "" {
			params[key] = value
		}
	}
	setFloat := func(key string, v *float64) {
		if v != nil {
			params[key] = strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}
	setInt := func(key string, v *int) {
		if v != nil {
			params[key] = strconv.Itoa(*v)
		}
	}

	set("search", c.Query)
	set("city", c.City)
	set("state", c.State)
	set("address", c.Address)
	set("property_type", string(c.PropertyType))
	setFloat("min_rent", c.Rent.Min)
	setFloat("max_rent", c.Rent.Max)
	setFloat("min_deposit", c.Deposit.Min)
	setFloat("max_deposit", c.Deposit.Max)
	setFloat("min_area", c.Area.Min)
	setFloat("max_area", c.Area.Max)
	setInt("bedrooms", c.Bedrooms)
	setInt("bathrooms", c.Bathrooms)

	if len(c.Amenities) > 0 {
		amenities := append([]string(nil), c.Amenities...)
		sort.Strings(amenities)
		params["amenities"] = strings.Join(amenities, ",")
	}
	return params
}
