package config

import (
	"zerohunger-backend/internal/api/handlers"
	"zerohunger-backend/internal/api/routes"
	"zerohunger-backend/internal/middleware"
	"zerohunger-backend/internal/utils"
	"zerohunger-backend/internal/utils/storage"
	"zerohunger-backend/pkg/admin"
	"zerohunger-backend/pkg/donation"
	"zerohunger-backend/pkg/geocode"
	"zerohunger-backend/pkg/jwt"
	"zerohunger-backend/pkg/ngo"
	"zerohunger-backend/pkg/notification"
	"zerohunger-backend/pkg/restaurant"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Kolkata",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	cache := newRedisClient()

	// Repository
	donationRepository := donation.NewDonationRepository(db)
	ngoRepository := ngo.NewNGORepository(db)
	restaurantRepository := restaurant.NewRestaurantRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	geocodeService := geocode.NewGeocodeService()
	dispatcher := notification.NewMailDispatcher()
	donationService := donation.NewDonationService(
		donationRepository,
		ngoRepository,
		restaurantRepository,
		geocodeService,
		dispatcher,
		s3,
		cache,
	)
	ngoService := ngo.NewNGOService(ngoRepository, geocodeService)
	restaurantService := restaurant.NewRestaurantService(restaurantRepository, geocodeService)
	adminService := admin.NewAdminService(ngoRepository, restaurantRepository, donationRepository, dispatcher)

	// Handler
	donationHandler := handlers.NewDonationHandler(donationService, validator)
	ngoHandler := handlers.NewNGOHandler(ngoService, validator)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService, validator)
	adminHandler := handlers.NewAdminHandler(adminService, validator)

	// routes
	routesConfig := routes.Config{
		App:               app,
		DonationHandler:   donationHandler,
		NGOHandler:        ngoHandler,
		RestaurantHandler: restaurantHandler,
		AdminHandler:      adminHandler,
		Middleware:        middlewares,
		JWTService:        jwtService,
	}
	routesConfig.Setup()
	return app, nil
}

// newRedisClient builds the cache client for public nearby queries. A missing
// REDIS_ADDR disables caching rather than failing startup.
func newRedisClient() *redis.Client {
	addr := utils.GetConfig("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: utils.GetConfig("REDIS_PASSWORD"),
	})
}
