package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/osian-labs/quiz-platform/internal/mail"
	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestAuthService(repo *fakeRepository, mailer *mail.MockMailer) AuthService {
	return NewAuthService(repo, nil, testLogger(), validator.New(), mailer, "test-secret")
}

func seedVerifiedUser(repo *fakeRepository, email, password string, role models.UserRole) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return repo.addUser(&models.User{
		Name:       "Test User",
		Email:      email,
		Password:   string(hash),
		Role:       role,
		IsVerified: true,
		IsActive:   true,
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates unverified user and mails otp", func(t *testing.T) {
		repo := newFakeRepository()
		mailer := mail.NewMockMailer()
		svc := newTestAuthService(repo, mailer)

		resp, err := svc.Register(ctx, &RegisterRequest{
			Name:     "Asha Verma",
			Email:    "asha@example.com",
			Password: "secret123",
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if resp.UserID == 0 {
			t.Fatal("Register() returned zero user id")
		}

		user, err := repo.User().GetByID(ctx, nil, resp.UserID)
		if err != nil {
			t.Fatalf("stored user not found: %v", err)
		}
		if user.IsVerified {
			t.Error("new user should not be verified")
		}
		if user.Role != models.RoleUser {
			t.Errorf("Role = %q, want %q", user.Role, models.RoleUser)
		}
		if user.OTP == nil || len(*user.OTP) != 6 {
			t.Error("expected a 6-digit otp on the stored user")
		}
		if user.Password == "secret123" {
			t.Error("password stored in plaintext")
		}

		sent := mailer.Sent()
		if len(sent) != 1 || sent[0].Kind != "otp" {
			t.Fatalf("expected one otp mail, got %+v", sent)
		}
		if sent[0].OTP != *user.OTP {
			t.Error("mailed otp does not match stored otp")
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := newFakeRepository()
		seedVerifiedUser(repo, "taken@example.com", "secret123", models.RoleUser)
		svc := newTestAuthService(repo, mail.NewMockMailer())

		_, err := svc.Register(ctx, &RegisterRequest{
			Name:     "Other",
			Email:    "taken@example.com",
			Password: "secret123",
		})
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("Register() error = %v, want ErrEmailTaken", err)
		}
	})

	t.Run("succeeds even when otp mail fails", func(t *testing.T) {
		repo := newFakeRepository()
		mailer := mail.NewMockMailer()
		mailer.FailNext = fmt.Errorf("smtp down")
		svc := newTestAuthService(repo, mailer)

		if _, err := svc.Register(ctx, &RegisterRequest{
			Name:     "Asha Verma",
			Email:    "asha@example.com",
			Password: "secret123",
		}); err != nil {
			t.Errorf("Register() error = %v, want nil despite mail failure", err)
		}
	})
}

func TestVerifyOTP(t *testing.T) {
	ctx := context.Background()

	seedUnverified := func(repo *fakeRepository, otp string, expires time.Time) *models.User {
		return repo.addUser(&models.User{
			Name:       "Pending",
			Email:      "pending@example.com",
			Password:   "x",
			Role:       models.RoleUser,
			IsActive:   true,
			OTP:        &otp,
			OTPExpires: &expires,
		})
	}

	t.Run("activates the account and issues a token", func(t *testing.T) {
		repo := newFakeRepository()
		seedUnverified(repo, "123456", time.Now().Add(5*time.Minute))
		svc := newTestAuthService(repo, mail.NewMockMailer())

		resp, err := svc.VerifyOTP(ctx, &VerifyOTPRequest{Email: "pending@example.com", OTP: "123456"})
		if err != nil {
			t.Fatalf("VerifyOTP() error = %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a signed token")
		}
		if !resp.User.IsVerified {
			t.Error("user should be verified")
		}

		stored, _ := repo.User().GetByEmail(ctx, nil, "pending@example.com")
		if stored.OTP != nil || stored.OTPExpires != nil {
			t.Error("otp should be cleared after verification")
		}
	})

	t.Run("rejects wrong code", func(t *testing.T) {
		repo := newFakeRepository()
		seedUnverified(repo, "123456", time.Now().Add(5*time.Minute))
		svc := newTestAuthService(repo, mail.NewMockMailer())

		_, err := svc.VerifyOTP(ctx, &VerifyOTPRequest{Email: "pending@example.com", OTP: "654321"})
		if !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("VerifyOTP() error = %v, want ErrInvalidOTP", err)
		}
	})

	t.Run("rejects expired code", func(t *testing.T) {
		repo := newFakeRepository()
		seedUnverified(repo, "123456", time.Now().Add(-time.Minute))
		svc := newTestAuthService(repo, mail.NewMockMailer())

		_, err := svc.VerifyOTP(ctx, &VerifyOTPRequest{Email: "pending@example.com", OTP: "123456"})
		if !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("VerifyOTP() error = %v, want ErrInvalidOTP", err)
		}
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestAuthService(repo, mail.NewMockMailer())

		_, err := svc.VerifyOTP(ctx, &VerifyOTPRequest{Email: "nobody@example.com", OTP: "123456"})
		if !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("VerifyOTP() error = %v, want ErrInvalidOTP", err)
		}
	})
}

func TestResendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the code and mails it", func(t *testing.T) {
		repo := newFakeRepository()
		old := "111111"
		expired := time.Now().Add(-time.Hour)
		user := repo.addUser(&models.User{
			Name:       "Pending",
			Email:      "pending@example.com",
			Password:   "x",
			IsActive:   true,
			OTP:        &old,
			OTPExpires: &expired,
		})
		mailer := mail.NewMockMailer()
		svc := newTestAuthService(repo, mailer)

		if err := svc.ResendOTP(ctx, &ResendOTPRequest{UserID: user.ID}); err != nil {
			t.Fatalf("ResendOTP() error = %v", err)
		}

		stored, _ := repo.User().GetByID(ctx, nil, user.ID)
		if stored.OTP == nil || *stored.OTP == old {
			t.Error("otp was not rotated")
		}
		if stored.OTPExpires == nil || stored.OTPExpires.Before(time.Now()) {
			t.Error("otp expiry was not refreshed")
		}
		if sent := mailer.Sent(); len(sent) != 1 || sent[0].OTP != *stored.OTP {
			t.Errorf("mailed otp mismatch: %+v", sent)
		}
	})

	t.Run("rejects already verified accounts", func(t *testing.T) {
		repo := newFakeRepository()
		user := seedVerifiedUser(repo, "done@example.com", "secret123", models.RoleUser)
		svc := newTestAuthService(repo, mail.NewMockMailer())

		err := svc.ResendOTP(ctx, &ResendOTPRequest{UserID: user.ID})
		if !IsBusinessRuleError(err) {
			t.Errorf("ResendOTP() error = %v, want business rule error", err)
		}
	})

	t.Run("mail failure is fatal", func(t *testing.T) {
		repo := newFakeRepository()
		otp := "111111"
		user := repo.addUser(&models.User{
			Name: "Pending", Email: "pending@example.com", Password: "x",
			IsActive: true, OTP: &otp,
		})
		mailer := mail.NewMockMailer()
		mailer.FailNext = fmt.Errorf("smtp down")
		svc := newTestAuthService(repo, mailer)

		if err := svc.ResendOTP(ctx, &ResendOTPRequest{UserID: user.ID}); err == nil {
			t.Error("ResendOTP() should fail when the mail cannot be delivered")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestAuthService(repo, mail.NewMockMailer())

		err := svc.ResendOTP(ctx, &ResendOTPRequest{UserID: 42})
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("ResendOTP() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("returns token for verified active user", func(t *testing.T) {
		repo := newFakeRepository()
		seedVerifiedUser(repo, "asha@example.com", "secret123", models.RoleUser)
		svc := newTestAuthService(repo, mail.NewMockMailer())

		resp, err := svc.Login(ctx, &LoginRequest{Email: "asha@example.com", Password: "secret123"})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := newFakeRepository()
		seedVerifiedUser(repo, "asha@example.com", "secret123", models.RoleUser)
		svc := newTestAuthService(repo, mail.NewMockMailer())

		_, err := svc.Login(ctx, &LoginRequest{Email: "asha@example.com", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestAuthService(repo, mail.NewMockMailer())

		_, err := svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "secret123"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unverified user carries the user back for otp resend", func(t *testing.T) {
		repo := newFakeRepository()
		hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
		user := repo.addUser(&models.User{
			Name: "Pending", Email: "pending@example.com", Password: string(hash), IsActive: true,
		})
		svc := newTestAuthService(repo, mail.NewMockMailer())

		resp, err := svc.Login(ctx, &LoginRequest{Email: "pending@example.com", Password: "secret123"})
		if !errors.Is(err, ErrUserNotVerified) {
			t.Fatalf("Login() error = %v, want ErrUserNotVerified", err)
		}
		if resp == nil || resp.User == nil || resp.User.ID != user.ID {
			t.Error("unverified login should still expose the user id")
		}
	})

	t.Run("deactivated user", func(t *testing.T) {
		repo := newFakeRepository()
		user := seedVerifiedUser(repo, "off@example.com", "secret123", models.RoleUser)
		user.IsActive = false
		_ = repo.User().Update(ctx, nil, user)
		svc := newTestAuthService(repo, mail.NewMockMailer())

		_, err := svc.Login(ctx, &LoginRequest{Email: "off@example.com", Password: "secret123"})
		if !errors.Is(err, ErrUserDeactivated) {
			t.Errorf("Login() error = %v, want ErrUserDeactivated", err)
		}
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	repo := newFakeRepository()
	user := seedVerifiedUser(repo, "asha@example.com", "oldpass1", models.RoleUser)
	svc := newTestAuthService(repo, mail.NewMockMailer())

	if err := svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpass1",
	}); !IsBusinessRuleError(err) {
		t.Errorf("ChangePassword() error = %v, want business rule error", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{
		CurrentPassword: "oldpass1",
		NewPassword:     "newpass1",
	}); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if _, err := svc.Login(ctx, &LoginRequest{Email: "asha@example.com", Password: "newpass1"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}
