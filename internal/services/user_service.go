package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== PROFILE =====

func (s *userService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Profile != nil {
		profile := user.Profile.Data()
		mergeProfile(&profile, req.Profile)
		user.Profile = datatypes.NewJSONType(profile)
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// mergeProfile applies only the fields the caller actually sent
func mergeProfile(dst *models.Profile, src *validator.ProfileRequest) {
	if src.Avatar != nil {
		dst.Avatar = *src.Avatar
	}
	if src.Age != nil {
		dst.Age = *src.Age
	}
	if src.College != nil {
		dst.College = *src.College
	}
	if src.Course != nil {
		dst.Course = *src.Course
	}
	if src.Year != nil {
		dst.Year = *src.Year
	}
	if src.State != nil {
		dst.State = *src.State
	}
	if src.City != nil {
		dst.City = *src.City
	}
	if src.Phone != nil {
		dst.Phone = *src.Phone
	}
	if src.CurrentAddress != nil {
		dst.CurrentAddress = *src.CurrentAddress
	}
}

// ===== ADMIN USER MANAGEMENT =====

func (s *userService) List(ctx context.Context, page, limit int, search string) (*UserListResponse, error) {
	if limit < 1 {
		limit = 10
	}

	filters := repositories.UserFilters{
		Search: search,
		Limit:  limit,
		Offset: utils.PageOffset(page, limit),
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	pagination := utils.NewPagination(total, page, limit)

	return &UserListResponse{Users: users, Pagination: &pagination}, nil
}

func (s *userService) ListAdmins(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.User().GetByRoles(ctx, nil, models.RoleAdmin, models.RoleSuperAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return users, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.GetProfile(ctx, id)
}

func (s *userService) AdminUpdate(ctx context.Context, callerID uint, callerRole models.UserRole, targetID uint, req *AdminUpdateUserRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, targetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	// Role changes ride along on this endpoint but only take effect for superadmins
	if req.Role != nil && callerRole == models.RoleSuperAdmin {
		role, ok := models.ParseRole(*req.Role)
		if !ok {
			return nil, NewBusinessRuleError("invalid_role", "unknown role")
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated by admin", "caller_id", callerID, "user_id", targetID)

	return user, nil
}

func (s *userService) Delete(ctx context.Context, callerID, targetID uint) error {
	user, err := s.repo.User().GetByID(ctx, nil, targetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	// Superadmin accounts cannot be deleted, not even by another superadmin
	if user.Role == models.RoleSuperAdmin {
		return NewPermissionError(callerID, targetID, "user", "delete", "cannot delete a superadmin account")
	}

	if err := s.repo.User().Delete(ctx, nil, targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "caller_id", callerID, "user_id", targetID)

	return nil
}

func (s *userService) UpdateRole(ctx context.Context, callerID uint, req *UpdateRoleRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return NewBusinessRuleError("invalid_role", "unknown role")
	}

	user, err := s.repo.User().GetByID(ctx, nil, req.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == models.RoleSuperAdmin && role != models.RoleSuperAdmin {
		if user.ID == callerID {
			return NewPermissionError(callerID, req.UserID, "user", "update_role", "superadmins cannot demote themselves")
		}
		return NewPermissionError(callerID, req.UserID, "user", "update_role", "cannot demote another superadmin")
	}

	if err := s.repo.User().UpdateRole(ctx, nil, req.UserID, role); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("User role updated", "caller_id", callerID, "user_id", req.UserID, "role", role)

	return nil
}

func (s *userService) UpdateStatus(ctx context.Context, callerID uint, req *UpdateUserStatusRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if req.UserID == callerID {
		return NewPermissionError(callerID, req.UserID, "user", "update_status", "cannot change own status")
	}

	user, err := s.repo.User().GetByID(ctx, nil, req.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == models.RoleSuperAdmin && !req.IsActive {
		return NewPermissionError(callerID, req.UserID, "user", "update_status", "cannot deactivate a superadmin")
	}

	if err := s.repo.User().UpdateStatus(ctx, nil, req.UserID, req.IsActive); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update status: %w", err)
	}

	s.logger.Info("User status updated", "caller_id", callerID, "user_id", req.UserID, "is_active", req.IsActive)

	return nil
}

// ===== STATS =====

func (s *userService) GetStats(ctx context.Context, userID uint) (*UserStatsResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	stats, err := s.repo.Result().GetUserStats(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return &UserStatsResponse{
		QuizzesTaken:  len(user.QuizzesTaken),
		TotalAttempts: stats.TotalAttempts,
		AverageScore:  stats.AverageScore,
		PassedCount:   stats.PassedCount,
		PassRate:      stats.PassRate,
	}, nil
}
