package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

// Catalog categories surfaced on the landing page
var catalogCategories = []string{"technical", "law", "engineering", "gk", "sports", "coding", "studies"}

const featuredSectionLimit = 10

type quizService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *quizService) Create(ctx context.Context, creatorID uint, req *QuizCreateRequest) (*models.Quiz, error) {
	s.logger.Info("Creating quiz", "creator_id", creatorID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateQuizCreate(req); len(errs) > 0 {
		return nil, errs
	}

	quiz := &models.Quiz{
		Title:             req.Title,
		Category:          req.Category,
		QuizType:          req.QuizType,
		Duration:          req.Duration,
		Price:             req.Price,
		RegistrationLimit: req.RegistrationLimit,
		ScheduleTime:      req.ScheduleTime,
		CoverImage:        req.CoverImage,
		PassingScore:      models.DefaultPassingScore,
		Status:            models.DeriveStatus(req.ScheduleTime, time.Now()),
		CreatedBy:         creatorID,
		Questions:         buildQuestions(req.Questions),
		Participants:      datatypes.JSONSlice[models.Participant]{},
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}

	if err := s.repo.Quiz().Create(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID)

	return quiz, nil
}

func buildQuestions(reqs []validator.QuestionRequest) datatypes.JSONSlice[models.Question] {
	questions := make(datatypes.JSONSlice[models.Question], 0, len(reqs))
	for _, q := range reqs {
		question := models.Question{
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			CorrectAnswer: q.CorrectAnswer,
		}
		for _, opt := range q.Options {
			question.Options = append(question.Options, models.QuestionOption{Text: opt.Text})
		}
		questions = append(questions, question)
	}
	return questions
}

// GetByID returns the quiz, stripping mcq answer keys for regular users
func (s *quizService) GetByID(ctx context.Context, id uint, role models.UserRole) (*models.Quiz, error) {
	quiz, err := s.getQuiz(ctx, id)
	if err != nil {
		return nil, err
	}

	if !role.IsStaff() {
		quiz = stripAnswers(quiz)
	}

	return quiz, nil
}

// stripAnswers removes the answer key from mcq questions on a copy of the
// quiz, so cached instances stay intact.
func stripAnswers(quiz *models.Quiz) *models.Quiz {
	sanitized := *quiz
	questions := make(datatypes.JSONSlice[models.Question], len(quiz.Questions))
	for i, q := range quiz.Questions {
		if q.QuestionType == models.QuestionMCQ {
			q.CorrectAnswer = nil
		}
		questions[i] = q
	}
	sanitized.Questions = questions
	return &sanitized
}

func (s *quizService) Update(ctx context.Context, callerID uint, callerRole models.UserRole, id uint, req *QuizUpdateRequest) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateQuizUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	quiz, err := s.getQuiz(ctx, id)
	if err != nil {
		return nil, err
	}

	if quiz.CreatedBy != callerID && !callerRole.IsStaff() {
		return nil, NewPermissionError(callerID, id, "quiz", "update", "not owner or insufficient permissions")
	}

	applyQuizUpdate(quiz, req)

	if err := s.repo.Quiz().Update(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	s.logger.Info("Quiz updated", "quiz_id", id, "caller_id", callerID)

	return quiz, nil
}

func applyQuizUpdate(quiz *models.Quiz, req *QuizUpdateRequest) {
	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Category != nil {
		quiz.Category = *req.Category
	}
	if req.QuizType != nil {
		quiz.QuizType = *req.QuizType
	}
	if req.Duration != nil {
		quiz.Duration = *req.Duration
	}
	if req.Price != nil {
		quiz.Price = *req.Price
	}
	if req.RegistrationLimit != nil {
		quiz.RegistrationLimit = *req.RegistrationLimit
	}
	if req.ScheduleTime != nil {
		quiz.ScheduleTime = req.ScheduleTime
	}
	if req.CoverImage != nil {
		quiz.CoverImage = *req.CoverImage
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.Status != nil {
		quiz.Status = *req.Status
	}
	if len(req.Questions) > 0 {
		quiz.Questions = buildQuestions(req.Questions)
	}
}

func (s *quizService) Delete(ctx context.Context, callerID uint, callerRole models.UserRole, id uint) error {
	quiz, err := s.getQuiz(ctx, id)
	if err != nil {
		return err
	}

	if quiz.CreatedBy != callerID && !callerRole.IsStaff() {
		return NewPermissionError(callerID, id, "quiz", "delete", "not owner or insufficient permissions")
	}

	if err := s.repo.Quiz().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.logger.Info("Quiz deleted", "quiz_id", id, "caller_id", callerID)

	return nil
}

// ===== CATALOG VIEWS =====

// ListAll pages through the catalog, stripping mcq answer keys for
// regular users
func (s *quizService) ListAll(ctx context.Context, role models.UserRole, page, limit int) (*QuizListResponse, error) {
	if limit < 1 {
		limit = 10
	}

	filters := repositories.QuizFilters{
		Limit:  limit,
		Offset: utils.PageOffset(page, limit),
	}

	quizzes, total, err := s.repo.Quiz().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	if !role.IsStaff() {
		quizzes = stripAnswersAll(quizzes)
	}

	pagination := utils.NewPagination(total, page, limit)

	return &QuizListResponse{Quizzes: quizzes, Pagination: &pagination}, nil
}

// GetFeatured builds the user-facing catalog: featured sections by quiz
// type plus one section per known category. Answer keys are stripped.
func (s *quizService) GetFeatured(ctx context.Context) (*FeaturedQuizzesResponse, error) {
	resp := &FeaturedQuizzesResponse{
		Featured:   make(map[string][]*models.Quiz),
		Categories: make(map[string][]*models.Quiz),
	}

	for _, quizType := range []models.QuizType{models.QuizLive, models.QuizPaid, models.QuizUpcoming} {
		quizzes, err := s.repo.Quiz().GetByTypes(ctx, nil, []models.QuizType{quizType}, featuredSectionLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load featured quizzes: %w", err)
		}
		resp.Featured[string(quizType)] = stripAnswersAll(quizzes)
	}

	for _, category := range catalogCategories {
		quizzes, err := s.repo.Quiz().GetByCategory(ctx, nil, category, featuredSectionLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load category quizzes: %w", err)
		}
		resp.Categories[category] = stripAnswersAll(quizzes)
	}

	return resp, nil
}

func stripAnswersAll(quizzes []*models.Quiz) []*models.Quiz {
	out := make([]*models.Quiz, len(quizzes))
	for i, q := range quizzes {
		out[i] = stripAnswers(q)
	}
	return out
}

func (s *quizService) GetCategories(ctx context.Context) ([]CategoryChartPoint, error) {
	counts, err := s.repo.Quiz().CountByCategory(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	points := make([]CategoryChartPoint, len(counts))
	for i, c := range counts {
		points[i] = CategoryChartPoint{Category: c.Category, Count: c.Count}
	}
	return points, nil
}

func (s *quizService) GetByCreator(ctx context.Context, creatorID uint, page, limit int) (*QuizListResponse, error) {
	if limit < 1 {
		limit = 10
	}

	filters := repositories.QuizFilters{
		CreatedBy: &creatorID,
		Limit:     limit,
		Offset:    utils.PageOffset(page, limit),
	}

	quizzes, total, err := s.repo.Quiz().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	pagination := utils.NewPagination(total, page, limit)

	return &QuizListResponse{Quizzes: quizzes, Pagination: &pagination}, nil
}

func (s *quizService) GetRegistered(ctx context.Context, userID uint) ([]*models.Quiz, error) {
	quizzes, err := s.repo.Quiz().GetRegisteredByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load registered quizzes: %w", err)
	}
	return stripAnswersAll(quizzes), nil
}

// ===== STATS =====

func (s *quizService) GetStats(ctx context.Context, id uint) (*QuizStatsResponse, error) {
	quiz, err := s.getQuiz(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Result().GetQuizStats(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz stats: %w", err)
	}

	return &QuizStatsResponse{
		QuizID:            id,
		Attempts:          stats.Attempts,
		Completed:         stats.Completed,
		AveragePercentage: stats.AveragePercentage,
		PassRate:          stats.PassRate,
		RegisteredUsers:   quiz.RegisteredUsers,
	}, nil
}

// ===== HELPERS =====

func (s *quizService) getQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}
