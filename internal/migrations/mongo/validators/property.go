package validators

import "go.mongodb.org/mongo-driver/bson"

var number = []string{"double", "int", "long", "decimal"}

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner",
			"title",
			"location",
			"rent",
			"property_type",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 150,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 5000,
			},

			"location": bson.M{
				"bsonType": "object",
				"required": []string{"city"},
				"properties": bson.M{
					"address": bson.M{"bsonType": "string"},
					"city": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 100,
					},
					"state":   bson.M{"bsonType": "string"},
					"country": bson.M{"bsonType": "string"},
					"coordinates": bson.M{
						"bsonType": "object",
						"properties": bson.M{
							"lat": bson.M{"bsonType": number, "minimum": -90, "maximum": 90},
							"lng": bson.M{"bsonType": number, "minimum": -180, "maximum": 180},
						},
					},
				},
			},

			"rent": bson.M{
				"bsonType":         number,
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"deposit": bson.M{
				"bsonType": number,
				"minimum":  0,
			},

			"property_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"apartment",
					"house",
					"villa",
					"condo",
				},
			},

			"bedrooms": bson.M{
				"bsonType": number,
				"minimum":  0,
				"maximum":  50,
			},

			"bathrooms": bson.M{
				"bsonType": number,
				"minimum":  0,
				"maximum":  50,
			},

			"area": bson.M{
				"bsonType": number,
				"minimum":  0,
			},

			"amenities": bson.M{
				"bsonType": "array",
				"maxItems": 50,
				"items":    bson.M{"bsonType": "string"},
			},

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 30,
				"items":    bson.M{"bsonType": "string"},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"approved",
					"rejected",
					"published",
					"sold",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
