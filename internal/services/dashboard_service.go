package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/repositories"
)

const attemptsChartDays = 30

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *dashboardService) GetSuperadminKPIs(ctx context.Context) (*DashboardKPIs, error) {
	totals, err := s.repo.Dashboard().GetPlatformTotals(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform totals: %w", err)
	}

	return kpisFromTotals(totals), nil
}

func (s *dashboardService) GetAdminKPIs(ctx context.Context, adminID uint) (*DashboardKPIs, error) {
	quizIDs, err := s.repo.Quiz().GetIDsByCreator(ctx, nil, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin quizzes: %w", err)
	}

	totals, err := s.repo.Dashboard().GetCreatorTotals(ctx, nil, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator totals: %w", err)
	}

	return kpisFromTotals(totals), nil
}

func kpisFromTotals(totals *repositories.PlatformTotals) *DashboardKPIs {
	kpis := &DashboardKPIs{
		TotalUsers:    totals.Users,
		TotalQuizzes:  totals.Quizzes,
		TotalAttempts: totals.Results,
		Revenue:       totals.Revenue,
	}

	if totals.Results > 0 {
		kpis.CompletionRate = float64(totals.CompletedResults) / float64(totals.Results) * 100
	}
	if totals.CompletedResults > 0 {
		kpis.PassRate = float64(totals.PassedResults) / float64(totals.CompletedResults) * 100
	}

	return kpis
}

func (s *dashboardService) GetCharts(ctx context.Context) (*ChartData, error) {
	categories, err := s.repo.Dashboard().GetQuizzesByCategory(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load category chart: %w", err)
	}

	daily, err := s.repo.Dashboard().GetAttemptsByDay(ctx, nil, attemptsChartDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts chart: %w", err)
	}

	data := &ChartData{
		QuizzesByCategory: make([]CategoryChartPoint, len(categories)),
		AttemptsByDay:     make([]DailyChartPoint, len(daily)),
	}
	for i, c := range categories {
		data.QuizzesByCategory[i] = CategoryChartPoint{Category: c.Category, Count: c.Count}
	}
	for i, d := range daily {
		data.AttemptsByDay[i] = DailyChartPoint{Day: d.Day, Count: d.Count}
	}

	return data, nil
}
