package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret   = "JWT_SECRET"
	EnvJWTTTL      = "JWT_TTL"
	EnvCORSOrigins = "CORS_ORIGINS"

	EnvRedisAddr      = "REDIS_ADDR"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvRedisDB        = "REDIS_DB"
	EnvSearchCache    = "SEARCH_CACHE_ENABLED"
	EnvSearchCacheTTL = "SEARCH_CACHE_TTL"

	EnvEventBus    = "EVENT_BUS"
	EnvNATSURL     = "NATS_URL"
	EnvNATSSubject = "NATS_SUBJECT"

	EnvMailerSendAPIKey = "MAILERSEND_API_KEY"
	EnvMailFromName     = "MAIL_FROM_NAME"
	EnvMailFromEmail    = "MAIL_FROM_EMAIL"

	EnvOTPTTL      = "OTP_TTL"
	EnvOTPLength   = "OTP_LENGTH"
	EnvCleanupCron = "CLEANUP_CRON"

	EnvSimilarLimit         = "SIMILAR_LIMIT"
	EnvDefaultPageSize      = "DEFAULT_PAGE_SIZE"
	EnvMaxPageSize          = "MAX_PAGE_SIZE"
	EnvTopPropertiesDefault = "TOP_PROPERTIES_DEFAULT"

	EnvAdminEmail    = "ADMIN_EMAIL"
	EnvAdminPassword = "ADMIN_PASSWORD"
)
