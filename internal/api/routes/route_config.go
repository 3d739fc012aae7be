package routes

import (
	"zerohunger-backend/domain"
	"zerohunger-backend/internal/api/handlers"
	"zerohunger-backend/internal/middleware"
	"zerohunger-backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App               *fiber.App
	DonationHandler   handlers.DonationHandler
	NGOHandler        handlers.NGOHandler
	RestaurantHandler handlers.RestaurantHandler
	AdminHandler      handlers.AdminHandler
	Middleware        middleware.Middleware
	JWTService        jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Donations()
	c.NGOs()
	c.Restaurants()
	c.Admin()
	c.GuestRoute()
}

func (c *Config) Donations() {
	donations := c.App.Group("/api/v1/donations")

	// public browse, no auth
	donations.Get("/public", c.DonationHandler.GetPublicDonations)

	donations.Use(c.Middleware.AuthMiddleware(c.JWTService))

	// restaurant routes
	donations.Post("", c.Middleware.OnlyAllow(domain.RoleRestaurant), c.DonationHandler.CreateDonation)
	donations.Get("/restaurant", c.Middleware.OnlyAllow(domain.RoleRestaurant), c.DonationHandler.GetDonationHistory)

	// ngo routes
	donations.Get("/nearby", c.Middleware.OnlyAllow(domain.RoleNGO), c.DonationHandler.GetNearbyDonations)
	donations.Put("/:id/claim", c.Middleware.OnlyAllow(domain.RoleNGO), c.DonationHandler.ClaimDonation)
	donations.Put("/:id/complete", c.Middleware.OnlyAllow(domain.RoleNGO), c.DonationHandler.CompleteDonation)

	// admin routes
	donations.Put("/:id/cancel", c.Middleware.OnlyAllow(domain.RoleAdmin), c.DonationHandler.CancelDonation)

	// shared routes
	donations.Get("", c.DonationHandler.GetDonations)
	donations.Get("/:id", c.DonationHandler.GetDonationByID)
	donations.Put("/:id", c.Middleware.OnlyAllow(domain.RoleRestaurant, domain.RoleAdmin), c.DonationHandler.UpdateDonation)
	donations.Delete("/:id", c.Middleware.OnlyAllow(domain.RoleRestaurant, domain.RoleAdmin), c.DonationHandler.DeleteDonation)
}

func (c *Config) NGOs() {
	ngos := c.App.Group("/api/v1/ngos",
		c.Middleware.AuthMiddleware(c.JWTService),
		c.Middleware.OnlyAllow(domain.RoleNGO),
	)
	{
		ngos.Get("/me", c.NGOHandler.GetProfile)
		ngos.Put("/me", c.NGOHandler.UpdateProfile)
		ngos.Put("/radius", c.NGOHandler.UpdateOperatingRadius)
	}
}

func (c *Config) Restaurants() {
	restaurants := c.App.Group("/api/v1/restaurants",
		c.Middleware.AuthMiddleware(c.JWTService),
		c.Middleware.OnlyAllow(domain.RoleRestaurant),
	)
	{
		restaurants.Get("/me", c.RestaurantHandler.GetProfile)
		restaurants.Put("/me", c.RestaurantHandler.UpdateProfile)
	}
}

func (c *Config) Admin() {
	admin := c.App.Group("/api/v1/admin",
		c.Middleware.AuthMiddleware(c.JWTService),
		c.Middleware.OnlyAllow(domain.RoleAdmin),
	)
	{
		admin.Get("/pending", c.AdminHandler.GetPendingVerifications)
		admin.Put("/verify/:id", c.AdminHandler.VerifyEntity)
		admin.Get("/stats", c.AdminHandler.GetSystemStats)
		admin.Get("/ngos", c.AdminHandler.GetAllNGOs)
		admin.Get("/restaurants", c.AdminHandler.GetAllRestaurants)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
