package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/visitgate/visitgate/internal/config"
	"github.com/visitgate/visitgate/internal/handlers"
	"github.com/visitgate/visitgate/internal/middleware"
	"github.com/visitgate/visitgate/internal/models"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/health", healthHandler.Check)

	auth := app.Group("/auth")

	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google-login", authHandler.GoogleLogin)
	auth.Post("/google-verify-otp", authHandler.GoogleVerifyOTP)
	auth.Post("/google-resend-otp", authHandler.GoogleResendOTP)
	auth.Post("/facebook-login", authHandler.FacebookLogin)
	auth.Post("/tiktok-login", authHandler.TikTokLogin)
	auth.Post("/apple-login", authHandler.AppleLogin)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/request-password-reset", authHandler.RequestPasswordReset)
	auth.Post("/reset-password", authHandler.ResetPassword)

	auth.Get("/me", middleware.JWTProtected(cfg), authHandler.Me)
	auth.Post("/promote", middleware.JWTProtected(cfg), middleware.RequireRole(models.RoleAdmin), authHandler.Promote)
}
