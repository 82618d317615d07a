package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IsDuplicateKey reports whether err came from a unique index violation,
// including ones surfaced through bulk or transactional writes.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// FindOptions builds the paging options shared by list endpoints.
func FindOptions(skip, limit int64, sort any) *options.FindOptions {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	if sort != nil {
		opts.SetSort(sort)
	}
	return opts
}
