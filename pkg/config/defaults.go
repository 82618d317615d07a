package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "rentals"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTTTL      = 24 * time.Hour
	DefaultCORSOrigins = "*"

	DefaultRedisDB        = 0
	DefaultSearchCacheTTL = 2 * time.Minute

	EventBusKafka = "kafka"
	EventBusNATS  = "nats"
	EventBusNone  = "none"

	DefaultEventBus    = EventBusNone
	DefaultNATSURL     = "nats://localhost:4222"
	DefaultNATSSubject = "rentals.events"

	DefaultMailFromName  = "Rentals"
	DefaultMailFromEmail = "no-reply@rentals.local"

	DefaultOTPTTL      = 10 * time.Minute
	DefaultOTPLength   = 6
	DefaultCleanupCron = "@every 15m"

	DefaultSimilarLimit         = 5
	DefaultPageSize             = 10
	DefaultMaxPageSize          = 100
	DefaultTopPropertiesDefault = 5
	MaxTopProperties            = 50

	MinAdminPasswordLength = 8
)
