package dto

import "github.com/visitgate/visitgate/internal/models"

type RegisterRequest struct {
	FullName string `json:"full_Name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type GoogleVerifyOTPRequest struct {
	IDToken string `json:"idToken" validate:"required"`
	OTP     string `json:"otp" validate:"required,len=6"`
}

type FacebookLoginRequest struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

type TikTokLoginRequest struct {
	AuthCode     string `json:"authCode" validate:"required"`
	CodeVerifier string `json:"codeVerifier" validate:"required"`
}

type AppleLoginRequest struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type PromoteRequest struct {
	Email string      `json:"email" validate:"required,email"`
	Role  models.Role `json:"role" validate:"required,oneof=Admin Staff Security Student"`
}

// TokenResponse carries a freshly minted session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// SessionResponse is returned by provider logins that skip the OTP step.
type SessionResponse struct {
	Token       string `json:"token"`
	RequiresOTP bool   `json:"requiresOtp"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
}

// PendingOTPResponse is returned by provider logins that defer session
// issuance until the emailed code is verified. It never carries the code.
type PendingOTPResponse struct {
	Message     string `json:"message"`
	RequiresOTP bool   `json:"requiresOtp"`
	Email       string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
