package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user",
			"property",
			"visit_date",
			"time_slot",
			"status",
			"time_change_request",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"property": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"visit_date": bson.M{
				"bsonType": "date",
			},

			"time_slot": bson.M{
				"bsonType":  "string",
				"minLength": 4,
				"maxLength": 11,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"approved",
					"rejected",
					"completed",
				},
			},

			"message": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"time_change_request": bson.M{
				"bsonType": "object",
				"required": []string{"requested"},
				"properties": bson.M{
					"requested": bson.M{"bsonType": "bool"},
					"reason":    bson.M{"bsonType": []string{"string", "null"}},
					"suggested_slots": bson.M{
						"bsonType": []string{"array", "null"},
						"items":    bson.M{"bsonType": "string"},
					},
					"requested_at": bson.M{"bsonType": []string{"date", "null"}},
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
