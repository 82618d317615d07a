package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	accountserrors "rentals/internal/accounts/errors"
	"rentals/pkg/config"
	mongotx "rentals/pkg/db/mongo"
	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	OTPsCollection = "OTPs"
)

type mongoOTPRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// OTPRepository keeps at most one pending code per e-mail address.
type OTPRepository interface {
	Upsert(ctx context.Context, otp *model.OTP) error
	FindByEmail(ctx context.Context, email string) (*model.OTP, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

func NewMongoOTPRepository(cfg *config.Config) OTPRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOTPRepository{
		cfg:        cfg,
		collection: db.Collection(OTPsCollection),
	}
}

func (r *mongoOTPRepository) Upsert(ctx context.Context, otp *model.OTP) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	otp.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"email": otp.Email},
		bson.M{"$set": bson.M{
			"code_hash":  otp.CodeHash,
			"expires_at": otp.ExpiresAt,
			"created_at": otp.CreatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

func (r *mongoOTPRepository) FindByEmail(ctx context.Context, email string) (*model.OTP, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var otp model.OTP
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&otp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, accountserrors.ErrOTPNotFound
		}
		return nil, fmt.Errorf("failed to find otp: %w", err)
	}
	return &otp, nil
}

func (r *mongoOTPRepository) Delete(ctx context.Context, email string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

// DeleteExpired removes codes that expired before now and reports how many.
func (r *mongoOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otps: %w", err)
	}
	return result.DeletedCount, nil
}
