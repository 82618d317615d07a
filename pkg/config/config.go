package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rentals/pkg/client"
	"rentals/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins []string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	SearchCacheEnabled bool
	SearchCacheTTL     time.Duration

	EventBus    string
	NATSURL     string
	NATSSubject string

	MailerSendAPIKey string
	MailFromName     string
	MailFromEmail    string

	OTPTTL      time.Duration
	OTPLength   int
	CleanupCron string

	SimilarLimit         int
	DefaultPageSize      int
	MaxPageSize          int
	TopPropertiesDefault int

	// Bootstrap administrator created by the migration job.
	AdminEmail    string
	AdminPassword string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg := fromEnv(serviceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func fromEnv(serviceName string) *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		JWTSecret:   getEnvStr(EnvJWTSecret, ""),
		JWTTTL:      getEnvDuration(EnvJWTTTL, DefaultJWTTTL),
		CORSOrigins: getEnvList(EnvCORSOrigins, DefaultCORSOrigins),

		RedisAddr:          getEnvStr(EnvRedisAddr, ""),
		RedisPassword:      getEnvStr(EnvRedisPassword, ""),
		RedisDB:            getEnvNum(EnvRedisDB, DefaultRedisDB),
		SearchCacheEnabled: getEnvBool(EnvSearchCache, true),
		SearchCacheTTL:     getEnvDuration(EnvSearchCacheTTL, DefaultSearchCacheTTL),

		EventBus:    strings.ToLower(getEnvStr(EnvEventBus, DefaultEventBus)),
		NATSURL:     getEnvStr(EnvNATSURL, DefaultNATSURL),
		NATSSubject: getEnvStr(EnvNATSSubject, DefaultNATSSubject),

		MailerSendAPIKey: getEnvStr(EnvMailerSendAPIKey, ""),
		MailFromName:     getEnvStr(EnvMailFromName, DefaultMailFromName),
		MailFromEmail:    getEnvStr(EnvMailFromEmail, DefaultMailFromEmail),

		OTPTTL:      getEnvDuration(EnvOTPTTL, DefaultOTPTTL),
		OTPLength:   getEnvNum(EnvOTPLength, DefaultOTPLength),
		CleanupCron: getEnvStr(EnvCleanupCron, DefaultCleanupCron),

		SimilarLimit:         getEnvNum(EnvSimilarLimit, DefaultSimilarLimit),
		DefaultPageSize:      getEnvNum(EnvDefaultPageSize, DefaultPageSize),
		MaxPageSize:          getEnvNum(EnvMaxPageSize, DefaultMaxPageSize),
		TopPropertiesDefault: getEnvNum(EnvTopPropertiesDefault, DefaultTopPropertiesDefault),

		AdminEmail:    strings.TrimSpace(getEnvStr(EnvAdminEmail, "")),
		AdminPassword: getEnvStr(EnvAdminPassword, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, logger.JSON),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the search cache backend. Without REDIS_ADDR the
// cache stays disabled and searches always hit Mongo.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" || !cfg.SearchCacheEnabled {
		cfg.Log.Info("Redis not configured, search cache disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"JWTTTL", cfg.JWTTTL},
		{"SearchCacheTTL", cfg.SearchCacheTTL},
		{"OTPTTL", cfg.OTPTTL},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(cfg.JWTSecret) < 32 {
		errors = append(errors, "JWTSecret must be at least 32 characters")
	}

	switch cfg.EventBus {
	case EventBusKafka, EventBusNATS, EventBusNone:
	default:
		errors = append(errors, fmt.Sprintf("EventBus must be one of kafka, nats, none, got: %s", cfg.EventBus))
	}

	if cfg.OTPLength < 4 || cfg.OTPLength > 10 {
		errors = append(errors, fmt.Sprintf("OTPLength must be between 4 and 10, got: %d", cfg.OTPLength))
	}
	if _, err := cron.ParseStandard(cfg.CleanupCron); err != nil {
		errors = append(errors, fmt.Sprintf("CleanupCron is not a valid schedule: %s", cfg.CleanupCron))
	}

	if cfg.SimilarLimit <= 0 {
		errors = append(errors, fmt.Sprintf("SimilarLimit must be positive, got: %d", cfg.SimilarLimit))
	}
	if cfg.MaxPageSize <= 0 || cfg.MaxPageSize > DefaultMaxPageSize {
		errors = append(errors, fmt.Sprintf("MaxPageSize must be between 1 and %d, got: %d", DefaultMaxPageSize, cfg.MaxPageSize))
	}
	if cfg.DefaultPageSize <= 0 || cfg.DefaultPageSize > cfg.MaxPageSize {
		errors = append(errors, fmt.Sprintf("DefaultPageSize (%d) must be between 1 and MaxPageSize (%d)", cfg.DefaultPageSize, cfg.MaxPageSize))
	}
	if cfg.TopPropertiesDefault <= 0 || cfg.TopPropertiesDefault > MaxTopProperties {
		errors = append(errors, fmt.Sprintf("TopPropertiesDefault must be between 1 and %d, got: %d", MaxTopProperties, cfg.TopPropertiesDefault))
	}

	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		errors = append(errors, "AdminEmail and AdminPassword must be set together")
	} else if cfg.AdminPassword != "" && len(cfg.AdminPassword) < MinAdminPasswordLength {
		errors = append(errors, fmt.Sprintf("AdminPassword must be at least %d characters", MinAdminPasswordLength))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_ttl", cfg.JWTTTL,
		"cors_origins", cfg.CORSOrigins,
		"redis_addr", cfg.RedisAddr,
		"search_cache_enabled", cfg.SearchCacheEnabled,
		"search_cache_ttl", cfg.SearchCacheTTL,
		"event_bus", cfg.EventBus,
		"mailersend_key_set", cfg.MailerSendAPIKey != "",
		"otp_ttl", cfg.OTPTTL,
		"cleanup_cron", cfg.CleanupCron,
		"similar_limit", cfg.SimilarLimit,
		"default_page_size", cfg.DefaultPageSize,
		"max_page_size", cfg.MaxPageSize,
		"admin_bootstrap", cfg.AdminEmail != "",
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
