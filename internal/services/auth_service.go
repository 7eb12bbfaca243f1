package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/mail"
	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

const (
	otpValidity   = 10 * time.Minute
	tokenValidity = 24 * time.Hour
	bcryptCost    = 10
)

type authService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	mailer    mail.Mailer
	jwtSecret string
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, mailer mail.Mailer, jwtSecret string) AuthService {
	return &authService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		mailer:    mailer,
		jwtSecret: jwtSecret,
	}
}

// ===== REGISTRATION =====

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	taken, err := s.repo.User().EmailExists(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(otpValidity)

	user := &models.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   string(hash),
		Role:       models.RoleUser,
		OTP:        &otp,
		OTPExpires: &expires,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// OTP mail is best-effort on registration; the user can always resend
	if err := s.mailer.SendOTP(user.Email, user.Name, otp); err != nil {
		s.logger.Warn("Failed to send OTP mail", "user_id", user.ID, "error", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)

	return &RegisterResponse{UserID: user.ID}, nil
}

// ===== OTP VERIFICATION =====

func (s *authService) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.OTP == nil || *user.OTP != req.OTP {
		return nil, ErrInvalidOTP
	}
	if user.OTPExpires == nil || time.Now().After(*user.OTPExpires) {
		return nil, ErrInvalidOTP
	}

	user.IsVerified = true
	user.OTP = nil
	user.OTPExpires = nil

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendWelcome(user.Email, user.Name); err != nil {
		s.logger.Warn("Failed to send welcome mail", "user_id", user.ID, "error", err)
	}

	s.logger.Info("User verified", "user_id", user.ID)

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) ResendOTP(ctx context.Context, req *ResendOTPRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, nil, req.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsVerified {
		return NewBusinessRuleError("already_verified", "email is already verified")
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	expires := time.Now().Add(otpValidity)

	user.OTP = &otp
	user.OTPExpires = &expires

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	// Resend exists only to deliver the code, so a send failure is fatal here
	if err := s.mailer.SendOTP(user.Email, user.Name, otp); err != nil {
		return fmt.Errorf("failed to send otp mail: %w", err)
	}

	return nil
}

// ===== LOGIN =====

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		// Caller needs the user id to offer an OTP resend
		return &AuthResponse{User: user}, ErrUserNotVerified
	}
	if !user.IsActive {
		return nil, ErrUserDeactivated
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return NewBusinessRuleError("password_mismatch", "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hash)
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password changed", "user_id", userID)

	return nil
}

// ===== TOKEN ISSUANCE =====

func (s *authService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   user.ID,
		"name": user.Name,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenValidity).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
