package mongo

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	if !IsDuplicateKey(dup) {
		t.Error("expected write exception with code 11000 to be a duplicate key error")
	}
	if IsDuplicateKey(errors.New("network reset")) {
		t.Error("plain errors are not duplicate key errors")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("find: %w", mongo.ErrNoDocuments)) {
		t.Error("expected wrapped ErrNoDocuments to be detected")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("unexpected match")
	}
}
