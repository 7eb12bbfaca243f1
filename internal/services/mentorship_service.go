package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type mentorshipService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMentorshipService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) MentorshipService {
	return &mentorshipService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *mentorshipService) Create(ctx context.Context, creatorID uint, req *VideoCreateRequest) (*models.MentorshipVideo, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	video := &models.MentorshipVideo{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Thumbnail:   req.Thumbnail,
		Duration:    req.Duration,
		CreatedBy:   creatorID,
	}

	if err := s.repo.Mentorship().Create(ctx, nil, video); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	s.logger.Info("Mentorship video created", "video_id", video.ID, "creator_id", creatorID)

	return video, nil
}

func (s *mentorshipService) GetByID(ctx context.Context, id uint) (*models.MentorshipVideo, error) {
	video, err := s.repo.Mentorship().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

func (s *mentorshipService) Update(ctx context.Context, id uint, req *VideoUpdateRequest) (*models.MentorshipVideo, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	video, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.URL != nil {
		video.URL = *req.URL
	}
	if req.Thumbnail != nil {
		video.Thumbnail = *req.Thumbnail
	}
	if req.Duration != nil {
		video.Duration = *req.Duration
	}

	if err := s.repo.Mentorship().Update(ctx, nil, video); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}

	return video, nil
}

func (s *mentorshipService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Mentorship().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("failed to delete video: %w", err)
	}

	s.logger.Info("Mentorship video deleted", "video_id", id)

	return nil
}

func (s *mentorshipService) List(ctx context.Context, page, limit int) ([]*models.MentorshipVideo, *utils.Pagination, error) {
	if limit < 1 {
		limit = 10
	}

	videos, total, err := s.repo.Mentorship().List(ctx, nil, limit, utils.PageOffset(page, limit))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list videos: %w", err)
	}

	pagination := utils.NewPagination(total, page, limit)

	return videos, &pagination, nil
}

func (s *mentorshipService) RecordView(ctx context.Context, id uint) error {
	if err := s.repo.Mentorship().IncrementViews(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}
