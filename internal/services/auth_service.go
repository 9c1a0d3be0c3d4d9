package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/visitgate/visitgate/internal/config"
	"github.com/visitgate/visitgate/internal/dto"
	"github.com/visitgate/visitgate/internal/mail"
	"github.com/visitgate/visitgate/internal/models"
	"github.com/visitgate/visitgate/internal/providers"
	"github.com/visitgate/visitgate/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// Adapter interfaces, one per external identity provider. The concrete
// clients live under internal/providers; tests substitute stubs.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*providers.Identity, error)
}

type FacebookResolver interface {
	Resolve(ctx context.Context, accessToken string) (*providers.Identity, error)
}

type TikTokResolver interface {
	Resolve(ctx context.Context, authCode, codeVerifier string) (*providers.Identity, error)
}

type AppleResolver interface {
	Resolve(identityToken string) (*providers.Identity, error)
}

// AuthService sequences provider adapters, the credential store and the
// OTP/session issuers according to each provider's trust tier.
//
// Local, Facebook and TikTok logins issue a session directly; Google and
// Apple logins always defer issuance behind an email-delivered code. The
// asymmetry is deliberate and load-bearing: callers depend on it.
type AuthService struct {
	cfg    *config.Config
	users  *store.UserStore
	otp    *OTPService
	tokens *TokenService
	mailer mail.Mailer

	google   GoogleVerifier
	facebook FacebookResolver
	tiktok   TikTokResolver
	apple    AppleResolver
}

func NewAuthService(
	cfg *config.Config,
	users *store.UserStore,
	otp *OTPService,
	tokens *TokenService,
	mailer mail.Mailer,
	google GoogleVerifier,
	facebook FacebookResolver,
	tiktok TikTokResolver,
	apple AppleResolver,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		otp:      otp,
		tokens:   tokens,
		mailer:   mailer,
		google:   google,
		facebook: facebook,
		tiktok:   tiktok,
		apple:    apple,
	}
}

// SeedBootstrapAdmin creates the bootstrap admin row on first startup when
// enabled. LoginLocal still honors the configured credential pair even
// without the row, so existing clients keep working against a fresh database.
func (s *AuthService) SeedBootstrapAdmin() error {
	if !s.cfg.BootstrapAdminEnabled {
		return nil
	}
	if _, err := s.users.FindByUsername(s.cfg.BootstrapAdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	email := s.cfg.BootstrapAdminUsername + "@visitgate.local"
	if _, err := s.users.CreateLocal("Administrator", email, s.cfg.BootstrapAdminUsername, string(hash), models.RoleAdmin); err != nil {
		return err
	}
	slog.Warn("bootstrap admin seeded with default credentials; rotate or disable in production",
		"username", s.cfg.BootstrapAdminUsername)
	return nil
}

func (s *AuthService) Register(req *dto.RegisterRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.users.CreateLocal(req.FullName, req.Email, req.Username, string(hash), models.RoleStudent)
	if errors.Is(err, store.ErrDuplicateUsername) {
		return ErrDuplicateUsername
	}
	return err
}

// LoginLocal issues a session directly on password match; the password
// itself already proves identity, so no OTP step follows.
func (s *AuthService) LoginLocal(username, password string) (*dto.TokenResponse, error) {
	if s.cfg.BootstrapAdminEnabled &&
		username == s.cfg.BootstrapAdminUsername &&
		password == s.cfg.BootstrapAdminPassword {
		return s.issueBootstrapAdmin(username)
	}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Token: token}, nil
}

func (s *AuthService) issueBootstrapAdmin(username string) (*dto.TokenResponse, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		// Works without a seeded row: the credential pair alone is enough.
		user = &models.User{
			FullName: "Administrator",
			Email:    username + "@visitgate.local",
			Username: &username,
			Role:     models.RoleAdmin,
		}
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Token: token}, nil
}

// LoginGoogle verifies the ID token, upserts the provider account and defers
// session issuance behind an emailed code. The code never appears in the
// response.
func (s *AuthService) LoginGoogle(ctx context.Context, idToken string) (*dto.PendingOTPResponse, error) {
	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		slog.Error("google token verification failed", "provider", "google", "error", err)
		return nil, ErrInvalidProviderToken
	}
	return s.beginOTPChallenge(identity)
}

// LoginApple accepts the token without validation (see internal/providers/apple)
// and therefore always requires the OTP step before a session exists.
func (s *AuthService) LoginApple(identityToken string) (*dto.PendingOTPResponse, error) {
	identity, err := s.apple.Resolve(identityToken)
	if err != nil {
		return nil, ErrInvalidProviderToken
	}
	return s.beginOTPChallenge(identity)
}

func (s *AuthService) beginOTPChallenge(identity *providers.Identity) (*dto.PendingOTPResponse, error) {
	if _, err := s.users.GetOrCreateProviderUser(identity.Email, identity.ProviderID, identity.DisplayName, models.RoleStudent); err != nil {
		return nil, err
	}

	code, err := s.otp.Issue(identity.Email)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendOTP(identity.Email, code); err != nil {
		slog.Error("otp delivery failed", "action", "send_otp", "error", err)
		return nil, ErrDeliveryFailed
	}

	return &dto.PendingOTPResponse{
		Message:     "A verification code has been sent to your email",
		RequiresOTP: true,
		Email:       identity.Email,
	}, nil
}

// LoginFacebook issues a session immediately; the server-to-server profile
// call is treated as sufficient proof.
func (s *AuthService) LoginFacebook(ctx context.Context, accessToken string) (*dto.SessionResponse, error) {
	identity, err := s.facebook.Resolve(ctx, accessToken)
	if err != nil {
		return nil, &ProviderAuthError{Provider: "facebook", Err: err}
	}
	return s.issueProviderSession(identity)
}

// LoginTikTok issues a session immediately after the code+PKCE exchange.
func (s *AuthService) LoginTikTok(ctx context.Context, authCode, codeVerifier string) (*dto.SessionResponse, error) {
	identity, err := s.tiktok.Resolve(ctx, authCode, codeVerifier)
	if err != nil {
		return nil, &ProviderAuthError{Provider: "tiktok", Err: err}
	}
	return s.issueProviderSession(identity)
}

func (s *AuthService) issueProviderSession(identity *providers.Identity) (*dto.SessionResponse, error) {
	user, err := s.users.GetOrCreateProviderUser(identity.Email, identity.ProviderID, identity.DisplayName, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{
		Token:       token,
		RequiresOTP: false,
		Email:       user.Email,
		Name:        user.FullName,
	}, nil
}

// VerifyOTP trades a pending code for a session. Wrong code, expired code
// and unknown email all fail identically.
func (s *AuthService) VerifyOTP(email, code string) (*dto.TokenResponse, error) {
	if !s.otp.Verify(email, code) {
		return nil, ErrInvalidOTP
	}

	user, err := s.users.FindByEmail(email, true)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Token: token}, nil
}

// ResendOTP reissues and redelivers a code without revealing whether the
// identity exists.
func (s *AuthService) ResendOTP(email string) error {
	code, err := s.otp.Resend(email)
	if err != nil {
		return err
	}
	if err := s.mailer.SendOTP(email, code); err != nil {
		slog.Error("otp delivery failed", "action", "resend_otp", "error", err)
		return ErrDeliveryFailed
	}
	return nil
}

// RequestPasswordReset sets a fresh reset grant for eligible local accounts.
// The caller always gets the same generic outcome regardless of whether the
// email matched anything.
func (s *AuthService) RequestPasswordReset(email string) {
	user, err := s.users.FindByEmail(email, false)
	if err != nil {
		return
	}

	token := uuid.NewString()
	expiry := time.Now().Add(s.cfg.ResetGrantExpiry)
	if err := s.users.SetResetGrant(user, token, expiry); err != nil {
		slog.Error("failed to set reset grant", "action", "request_password_reset", "error", err)
		return
	}
	if err := s.mailer.SendPasswordReset(email, token); err != nil {
		slog.Error("reset delivery failed", "action", "request_password_reset", "error", err)
	}
}

// ResetPassword redeems a single-use grant. It reports false for unknown and
// expired tokens alike, leaving the stored hash untouched.
func (s *AuthService) ResetPassword(token, newPassword string) (bool, error) {
	user, err := s.users.FindByResetToken(token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.SetPassword(user, string(hash)); err != nil {
		return false, err
	}
	if err := s.users.ClearResetGrant(user); err != nil {
		return false, err
	}
	return true, nil
}

// PromoteRole changes a user's role going forward. Sessions issued before
// the change keep their original role claim until they expire.
func (s *AuthService) PromoteRole(email string, role models.Role) error {
	user, err := s.users.FindByEmail(email, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			user, err = s.users.FindByEmail(email, true)
		}
		if err != nil {
			return err
		}
	}
	return s.users.PromoteRole(user, role)
}

// VerifyGoogleOTP re-resolves the email from the ID token so the client
// never has to send the email alongside the code.
func (s *AuthService) VerifyGoogleOTP(ctx context.Context, idToken, code string) (*dto.TokenResponse, error) {
	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidProviderToken
	}
	return s.VerifyOTP(identity.Email, code)
}

func (s *AuthService) ResendGoogleOTP(ctx context.Context, idToken string) error {
	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return ErrInvalidProviderToken
	}
	return s.ResendOTP(identity.Email)
}
