package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/visitgate/visitgate/internal/config"
	"github.com/visitgate/visitgate/internal/dto"
	"github.com/visitgate/visitgate/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// parseAndValidate rejects malformed bodies before any store or provider
// call is attempted.
func parseAndValidate(c *fiber.Ctx, req interface{}) bool {
	if err := c.BodyParser(req); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
		return false
	}
	if err := config.Validate.Struct(req); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing or invalid fields",
		})
		return false
	}
	return true
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	if err := h.authService.Register(&req); err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Username already taken",
			})
		}
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "Registration successful"})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	resp, err := h.authService.LoginLocal(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid credentials",
			})
		}
		return internalError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	resp, err := h.authService.LoginGoogle(c.UserContext(), req.IDToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidProviderToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid Google token",
			})
		}
		return internalError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) GoogleVerifyOTP(c *fiber.Ctx) error {
	var req dto.GoogleVerifyOTPRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	resp, err := h.authService.VerifyGoogleOTP(c.UserContext(), req.IDToken, req.OTP)
	if err != nil {
		if errors.Is(err, services.ErrInvalidProviderToken) || errors.Is(err, services.ErrInvalidOTP) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired code",
			})
		}
		return internalError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) GoogleResendOTP(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	if err := h.authService.ResendGoogleOTP(c.UserContext(), req.IDToken); err != nil {
		if errors.Is(err, services.ErrInvalidProviderToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid Google token",
			})
		}
		return internalError(c)
	}

	return c.JSON(dto.MessageResponse{Message: "A new verification code has been sent"})
}

func (h *AuthHandler) FacebookLogin(c *fiber.Ctx) error {
	var req dto.FacebookLoginRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	resp, err := h.authService.LoginFacebook(c.UserContext(), req.AccessToken)
	if err != nil {
		var provErr *services.ProviderAuthError
		if errors.As(err, &provErr) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Facebook authentication failed",
			})
		}
		return internalError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) TikTokLogin(c *fiber.Ctx) error {
	var req dto.TikTokLoginRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	resp, err := h.authService.LoginTikTok(c.UserContext(), req.AuthCode, req.CodeVerifier)
	if err != nil {
		var provErr *services.ProviderAuthError
		if errors.As(err, &provErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "TikTok authentication failed",
			})
		}
		return internalError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) AppleLogin(c *fiber.Ctx) error {
	var req dto.AppleLoginRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	resp, err := h.authService.LoginApple(req.IdentityToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidProviderToken) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Identity token is required",
			})
		}
		return internalError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	resp, err := h.authService.VerifyOTP(req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOTP) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired code",
			})
		}
		return internalError(c)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.RequestPasswordResetRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	h.authService.RequestPasswordReset(req.Email)

	return c.JSON(dto.MessageResponse{
		Message: "If an account exists for that email, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	ok, err := h.authService.ResetPassword(req.Token, req.NewPassword)
	if err != nil {
		return internalError(c)
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid or expired reset token",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Password has been reset"})
}

// Me echoes the claims of the presented session token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid claims",
		})
	}
	return c.JSON(fiber.Map{
		"sub":      claims["sub"],
		"username": claims["username"],
		"email":    claims["email"],
		"role":     claims["role"],
	})
}

func (h *AuthHandler) Promote(c *fiber.Ctx) error {
	var req dto.PromoteRequest
	if !parseAndValidate(c, &req) {
		return nil
	}

	if err := h.authService.PromoteRole(req.Email, req.Role); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Role updated"})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
