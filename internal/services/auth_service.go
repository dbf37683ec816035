// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/config"
	"github.com/marketbay/storefront-backend/internal/models"
	"github.com/marketbay/storefront-backend/internal/utils"
)

const (
	resetTokenTTL = 10 * time.Minute
	otpTTL        = 5 * time.Minute
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidOTP         = errors.New("invalid or expired one-time code")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strong_password"`
}

type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,otp_code"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, notifications *NotificationService) *AuthService {
	return &AuthService{
		db:            db,
		cfg:           cfg,
		notifications: notifications,
	}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Check if user already exists
	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, ErrEmailTaken
	}

	// Create new user
	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  models.RoleCustomer,
	}

	// Set password
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Save user
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Send welcome email (async)
	s.notifications.NotifyAsync("welcome", func() error {
		return s.notifications.SendWelcomeEmail(user)
	})

	return s.issueTokens(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Find user
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Record login time
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return s.issueTokens(&user)
}

func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token subject: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	return s.issueTokens(&user)
}

// ForgotPassword stores a hashed single-use reset token and emails the
// plain token to the account. A send failure rolls the stored token back
// so the account is not left holding a token nobody ever saw.
func (s *AuthService) ForgotPassword(req *ForgotPasswordRequest) error {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Find user by email
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Don't reveal if email exists or not
		return nil
	}

	// Generate reset token, store only its hash
	resetToken, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expires := time.Now().Add(resetTokenTTL)
	updates := map[string]interface{}{
		"reset_token_hash":    utils.HashString(resetToken),
		"reset_token_expires": expires,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	if err := s.notifications.SendPasswordResetEmail(&user, resetToken); err != nil {
		// Roll the token back so it cannot linger unused
		s.db.Model(&user).Updates(map[string]interface{}{
			"reset_token_hash":    "",
			"reset_token_expires": nil,
		})
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

func (s *AuthService) ResetPassword(req *ResetPasswordRequest) error {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return ErrInvalidResetToken
	}

	if !user.ResetTokenValid(utils.HashString(req.Token), time.Now()) {
		return ErrInvalidResetToken
	}

	// Update password
	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Clear reset token, single use
	user.ClearResetToken()

	updates := map[string]interface{}{
		"password_hash":       user.PasswordHash,
		"reset_token_hash":    "",
		"reset_token_expires": nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// RequestOTP stores a hashed 6-digit code and emails the code. Like
// ForgotPassword, a send failure rolls the stored code back.
func (s *AuthService) RequestOTP(req *RequestOTPRequest) error {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Don't reveal if email exists or not
		return nil
	}

	code, err := utils.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate one-time code: %w", err)
	}

	expires := time.Now().Add(otpTTL)
	updates := map[string]interface{}{
		"otp_hash":    utils.HashString(code),
		"otp_expires": expires,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to save one-time code: %w", err)
	}

	if err := s.notifications.SendOTPEmail(&user, code); err != nil {
		s.db.Model(&user).Updates(map[string]interface{}{
			"otp_hash":    "",
			"otp_expires": nil,
		})
		return fmt.Errorf("failed to send one-time code: %w", err)
	}

	return nil
}

func (s *AuthService) VerifyOTP(req *VerifyOTPRequest) (*AuthResponse, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, ErrInvalidOTP
	}

	if !user.OTPValid(utils.HashString(req.Code), time.Now()) {
		return nil, ErrInvalidOTP
	}

	// Clear the code, single use
	user.ClearOTP()
	now := time.Now()
	updates := map[string]interface{}{
		"otp_hash":      "",
		"otp_expires":   nil,
		"last_login_at": now,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to clear one-time code: %w", err)
	}

	return s.issueTokens(&user)
}

func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(
		user.ID,
		user.Name,
		string(user.Role),
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}
