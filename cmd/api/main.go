package main

import (
	"context"

	accountshandler "rentals/internal/accounts/handler"
	accountsrepository "rentals/internal/accounts/repository"
	accountsservice "rentals/internal/accounts/service"
	bookingshandler "rentals/internal/bookings/handler"
	bookingsrepository "rentals/internal/bookings/repository"
	bookingsservice "rentals/internal/bookings/service"
	bookingsvalidator "rentals/internal/bookings/validator"
	"rentals/internal/health"
	"rentals/internal/maintenance"
	propertieshandler "rentals/internal/properties/handler"
	propertiesrepository "rentals/internal/properties/repository"
	propertiesservice "rentals/internal/properties/service"
	propertiesvalidator "rentals/internal/properties/validator"
	wishlistshandler "rentals/internal/wishlists/handler"
	wishlistsrepository "rentals/internal/wishlists/repository"
	wishlistsservice "rentals/internal/wishlists/service"
	"rentals/pkg/app"
	"rentals/pkg/auth"
	"rentals/pkg/cache"
	"rentals/pkg/config"
	"rentals/pkg/contracts"
	"rentals/pkg/events"
	"rentals/pkg/mailer"
	"rentals/pkg/validation"
)

const ServiceName = "rentals-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	publisher, err := events.NewPublisher(cfg.EventBus, cfg.NATSURL, cfg.NATSSubject, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to connect event bus", "bus", cfg.EventBus, "error", err)
	}
	dispatcher := events.NewDispatcher(publisher, cfg.Log)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	handlers, otps := initServices(cfg, dispatcher, tokens)

	scheduler := maintenance.NewScheduler(otps, cfg.CleanupCron, cfg.WriteTimeout, cfg.Log)
	if err := scheduler.Start(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to start maintenance scheduler", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(scheduler.Stop)
	serverApp.OnShutdown(func(context.Context) {
		if err := dispatcher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.SetApp(tokens, health.NewHealthHandler(cfg.Client.Mongo, cfg.Client.Redis, cfg.Log), handlers...)
	serverApp.Run()
}

func initServices(cfg *config.Config, dispatcher *events.Dispatcher, tokens *auth.TokenIssuer) ([]contracts.Handler, accountsrepository.OTPRepository) {
	validate := validation.New(cfg.Log)
	mail := mailer.New(cfg.MailerSendAPIKey, cfg.MailFromName, cfg.MailFromEmail, cfg.Log)

	var searchCache cache.SearchCache = cache.NopSearchCache{}
	if cfg.SearchCacheEnabled && cfg.Client.Redis != nil {
		searchCache = cache.NewRedisSearchCache(cfg.Client.Redis, cfg.SearchCacheTTL)
	}

	userRepo := accountsrepository.NewMongoUserRepository(cfg)
	ownerRepo := accountsrepository.NewMongoOwnerRepository(cfg)
	otpRepo := accountsrepository.NewMongoOTPRepository(cfg)
	propertyRepo := propertiesrepository.NewMongoPropertyRepository(cfg)
	bookingRepo := bookingsrepository.NewMongoBookingRepository(cfg)
	wishlistRepo := wishlistsrepository.NewMongoWishlistRepository(cfg)

	accountService := accountsservice.NewAccountService(userRepo, ownerRepo, otpRepo, validate, tokens, mail, dispatcher, cfg)
	propertyService := propertiesservice.NewPropertyService(
		propertyRepo,
		ownerRepo,
		userRepo,
		bookingRepo,
		propertiesvalidator.NewPropertyValidator(validate),
		searchCache,
		dispatcher,
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		propertyRepo,
		bookingsvalidator.NewBookingValidator(validate),
		dispatcher,
		cfg,
	)
	wishlistService := wishlistsservice.NewWishlistService(wishlistRepo, propertyRepo, validate, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		accountshandler.NewAccountHandler(accountService, cfg.Log, cfg.DefaultPageSize),
		propertieshandler.NewPropertyHandler(propertyService, cfg.Log, cfg.DefaultPageSize),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log, cfg.DefaultPageSize),
		wishlistshandler.NewWishlistHandler(wishlistService, cfg.Log),
	}, otpRepo
}
