package repository

import (
	"regexp"

	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchFilter builds the directory query. Only published listings match and
// every user-supplied string is matched literally.
func SearchFilter(criteria *model.PropertySearch) bson.M {
	filter := bson.M{"status": model.PropertyPublished}

	if criteria.Query != "" {
		pattern := containsPattern(criteria.Query)
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	addRange(filter, "rent", criteria.Rent)
	addRange(filter, "deposit", criteria.Deposit)
	addRange(filter, "area", criteria.Area)

	if criteria.PropertyType != "" {
		filter["property_type"] = criteria.PropertyType
	}
	if criteria.Bedrooms != nil {
		filter["bedrooms"] = *criteria.Bedrooms
	}
	if criteria.Bathrooms != nil {
		filter["bathrooms"] = *criteria.Bathrooms
	}
	if criteria.City != "" {
		filter["location.city"] = containsPattern(criteria.City)
	}
	if criteria.State != "" {
		filter["location.state"] = containsPattern(criteria.State)
	}
	if criteria.Address != "" {
		filter["location.address"] = containsPattern(criteria.Address)
	}
	if len(criteria.Amenities) > 0 {
		filter["amenities"] = bson.M{"$in": criteria.Amenities}
	}

	return filter
}

// SearchSort maps a sort key to a stable sort; _id breaks ties so pages
// never overlap.
func SearchSort(key model.SortKey) bson.D {
	switch key {
	case model.SortOldest:
		return bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	case model.SortRentAsc:
		return bson.D{{Key: "rent", Value: 1}, {Key: "_id", Value: 1}}
	case model.SortRentDesc:
		return bson.D{{Key: "rent", Value: -1}, {Key: "_id", Value: 1}}
	case model.SortAreaAsc:
		return bson.D{{Key: "area", Value: 1}, {Key: "_id", Value: 1}}
	case model.SortAreaDesc:
		return bson.D{{Key: "area", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func similarQuery(f SimilarFilter) bson.M {
	filter := bson.M{"status": model.PropertyPublished}

	if excluded := toObjectIDs(f.ExcludeIDs); len(excluded) > 0 {
		filter["_id"] = bson.M{"$nin": excluded}
	}
	if f.PropertyType != "" {
		filter["property_type"] = f.PropertyType
	}
	if f.City != "" {
		filter["location.city"] = f.City
	}
	addRange(filter, "rent", model.NumberRange{Min: f.MinRent, Max: f.MaxRent})

	return filter
}

func containsPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func addRange(filter bson.M, field string, r model.NumberRange) {
	if !r.Set() {
		return
	}
	bounds := bson.M{}
	if r.Min != nil {
		bounds["$gte"] = *r.Min
	}
	if r.Max != nil {
		bounds["$lte"] = *r.Max
	}
	filter[field] = bounds
}
