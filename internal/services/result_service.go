package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/events"
	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

const defaultLeaderboardLimit = 10

type resultService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewResultService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ResultService {
	return &resultService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== SUBMISSION & SCORING =====

func (s *resultService) Submit(ctx context.Context, userID uint, req *SubmitResultRequest) (*SubmitResultResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	// One submission per user per quiz
	if _, err := s.repo.Result().GetByUserAndQuiz(ctx, nil, userID, req.QuizID); err == nil {
		return nil, ErrResultExists
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check prior result: %w", err)
	}

	// Paid quizzes require enrollment through a verified payment
	if quiz.QuizType == models.QuizPaid && !quiz.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	answers, correct := gradeAnswers(quiz.Questions, req.Answers)

	total := len(quiz.Questions)
	percentage := float64(0)
	if total > 0 {
		percentage = float64(correct) / float64(total) * 100
	}
	passed := percentage >= float64(quiz.EffectivePassingScore())

	now := time.Now()
	result := &models.Result{
		UserID:         userID,
		QuizID:         req.QuizID,
		Score:          correct,
		TotalQuestions: total,
		Status:         models.ResultCompleted,
		Passed:         passed,
		Answers:        answers,
		TimeTaken:      req.TimeTaken,
		StartedAt:      req.StartedAt,
		CompletedAt:    &now,
	}

	if err := s.repo.Result().Create(ctx, nil, result); err != nil {
		return nil, fmt.Errorf("failed to store result: %w", err)
	}

	// Second write on purpose: the history push is not transactional with
	// the result insert.
	if err := s.repo.User().AppendQuizTaken(ctx, nil, userID, models.QuizTaken{
		QuizID:      req.QuizID,
		Score:       correct,
		CompletedAt: now,
	}); err != nil {
		s.logger.Warn("Failed to push quiz history", "user_id", userID, "quiz_id", req.QuizID, "error", err)
	}

	s.publishSubmitted(ctx, result)

	s.logger.Info("Quiz submitted", "user_id", userID, "quiz_id", req.QuizID, "score", correct, "passed", passed)

	return &SubmitResultResponse{
		ResultID:       result.ID,
		Score:          correct,
		TotalQuestions: total,
		CorrectAnswers: correct,
		Percentage:     int(math.Round(percentage)),
		Passed:         passed,
		TimeTaken:      req.TimeTaken,
	}, nil
}

// gradeAnswers correlates each answer with the quiz question at its index.
// Out-of-range answers are skipped, matching the submission contract.
func gradeAnswers(questions datatypes.JSONSlice[models.Question], submissions []validator.AnswerSubmission) (datatypes.JSONSlice[models.AnswerRecord], int) {
	answers := make(datatypes.JSONSlice[models.AnswerRecord], 0, len(submissions))
	correct := 0

	for _, sub := range submissions {
		if sub.QuestionIndex < 0 || sub.QuestionIndex >= len(questions) {
			continue
		}

		question := questions[sub.QuestionIndex]
		isCorrect := question.CorrectAnswer != nil && sub.SelectedAnswer == *question.CorrectAnswer
		if isCorrect {
			correct++
		}

		answers = append(answers, models.AnswerRecord{
			QuestionIndex:  sub.QuestionIndex,
			SelectedAnswer: sub.SelectedAnswer,
			IsCorrect:      isCorrect,
			TimeSpent:      sub.TimeSpent,
		})
	}

	return answers, correct
}

func (s *resultService) publishSubmitted(ctx context.Context, result *models.Result) {
	event := events.NewEvent(events.EventQuizSubmitted, events.QuizSubmittedEvent{
		UserID: result.UserID,
		QuizID: result.QuizID,
		Score:  result.Score,
		Passed: result.Passed,
	})

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish submission event", "quiz_id", result.QuizID, "error", err)
	}
}

// ===== RETRIEVAL =====

func (s *resultService) GetByID(ctx context.Context, callerID uint, callerRole models.UserRole, id uint) (*models.Result, error) {
	result, err := s.repo.Result().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if result.UserID != callerID && !callerRole.IsStaff() {
		return nil, NewPermissionError(callerID, id, "result", "read", "not owner or insufficient permissions")
	}

	return result, nil
}

func (s *resultService) GetUserResults(ctx context.Context, userID uint, page, limit int) (*ResultListResponse, error) {
	if limit < 1 {
		limit = 10
	}

	filters := repositories.ResultFilters{
		UserID: &userID,
		Limit:  limit,
		Offset: utils.PageOffset(page, limit),
	}

	results, total, err := s.repo.Result().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	pagination := utils.NewPagination(total, page, limit)

	return &ResultListResponse{Results: results, Pagination: &pagination}, nil
}

func (s *resultService) GetQuizResults(ctx context.Context, quizID uint, page, limit int) (*ResultListResponse, error) {
	if limit < 1 {
		limit = 10
	}

	status := models.ResultCompleted
	filters := repositories.ResultFilters{
		QuizID: &quizID,
		Status: &status,
		Limit:  limit,
		Offset: utils.PageOffset(page, limit),
	}

	results, total, err := s.repo.Result().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz results: %w", err)
	}

	pagination := utils.NewPagination(total, page, limit)

	return &ResultListResponse{Results: results, Pagination: &pagination}, nil
}

// ===== LEADERBOARD =====

func (s *resultService) GetLeaderboard(ctx context.Context, quizID uint, limit int) (*LeaderboardResponse, error) {
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}

	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	results, err := s.repo.Result().Leaderboard(ctx, nil, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]*LeaderboardEntry, len(results))
	for i, r := range results {
		entry := &LeaderboardEntry{
			Rank:       i + 1,
			Score:      r.Score,
			Percentage: r.Percentage(),
			TimeTaken:  r.TimeTaken,
			User: &LeaderboardUser{
				ID:    r.User.ID,
				Name:  r.User.Name,
				Email: r.User.Email,
			},
		}
		if r.CompletedAt != nil {
			entry.CompletedAt = *r.CompletedAt
		}
		entries[i] = entry
	}

	return &LeaderboardResponse{QuizID: quizID, Entries: entries}, nil
}

// ===== ADMIN VIEWS =====

func (s *resultService) GetAdminResults(ctx context.Context, callerID uint, callerRole models.UserRole, page, limit int) (*ResultListResponse, error) {
	if limit < 1 {
		limit = 10
	}

	filters, err := s.adminResultFilters(ctx, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	filters.Limit = limit
	filters.Offset = utils.PageOffset(page, limit)

	results, total, err := s.repo.Result().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin results: %w", err)
	}

	pagination := utils.NewPagination(total, page, limit)

	return &ResultListResponse{Results: results, Pagination: &pagination}, nil
}

// adminResultFilters scopes admins to their own quizzes; superadmins see all
func (s *resultService) adminResultFilters(ctx context.Context, callerID uint, callerRole models.UserRole) (repositories.ResultFilters, error) {
	status := models.ResultCompleted
	filters := repositories.ResultFilters{Status: &status}

	if callerRole == models.RoleSuperAdmin {
		return filters, nil
	}

	quizIDs, err := s.repo.Quiz().GetIDsByCreator(ctx, nil, callerID)
	if err != nil {
		return filters, fmt.Errorf("failed to load creator quizzes: %w", err)
	}
	if len(quizIDs) == 0 {
		// No quizzes means no results; an impossible id keeps the query empty
		quizIDs = []uint{0}
	}
	filters.QuizIDs = quizIDs

	return filters, nil
}

// ExportAdminResults renders the admin result listing as an xlsx workbook
func (s *resultService) ExportAdminResults(ctx context.Context, callerID uint, callerRole models.UserRole) ([]byte, error) {
	filters, err := s.adminResultFilters(ctx, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	filters.SortBy = "created_at"
	filters.SortOrder = "desc"

	results, _, err := s.repo.Result().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{"Result ID", "User", "Email", "Quiz", "Score", "Total Questions", "Percentage", "Passed", "Time Taken (s)", "Completed At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, r := range results {
		completedAt := ""
		if r.CompletedAt != nil {
			completedAt = r.CompletedAt.Format(time.RFC3339)
		}
		values := []interface{}{
			r.ID,
			r.User.Name,
			r.User.Email,
			r.Quiz.Title,
			r.Score,
			r.TotalQuestions,
			math.Round(r.Percentage()),
			r.Passed,
			r.TimeTaken,
			completedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	return buf.Bytes(), nil
}
