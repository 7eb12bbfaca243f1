package services

import (
	"context"
	"testing"
	"time"

	"github.com/osian-labs/quiz-platform/internal/models"
)

func newTestDashboardService(repo *fakeRepository) DashboardService {
	return NewDashboardService(repo, nil, testLogger())
}

func seedDashboardData(t *testing.T, repo *fakeRepository) {
	t.Helper()
	now := time.Now()

	repo.addUser(&models.User{Name: "U1", Email: "u1@example.com", Role: models.RoleUser})
	repo.addUser(&models.User{Name: "U2", Email: "u2@example.com", Role: models.RoleUser})
	repo.addUser(&models.User{Name: "A1", Email: "a1@example.com", Role: models.RoleAdmin})

	adminQuiz := repo.addQuiz(&models.Quiz{Title: "Law", Category: "law", QuizType: models.QuizRegular, Duration: 30, CreatedBy: 3})
	otherQuiz := repo.addQuiz(&models.Quiz{Title: "GK", Category: "gk", QuizType: models.QuizRegular, Duration: 30, CreatedBy: 9})

	results := []*models.Result{
		{UserID: 1, QuizID: adminQuiz.ID, Score: 8, TotalQuestions: 10, Status: models.ResultCompleted, Passed: true, CompletedAt: &now},
		{UserID: 2, QuizID: adminQuiz.ID, Score: 3, TotalQuestions: 10, Status: models.ResultCompleted, Passed: false, CompletedAt: &now},
		{UserID: 1, QuizID: otherQuiz.ID, Score: 9, TotalQuestions: 10, Status: models.ResultCompleted, Passed: true, CompletedAt: &now},
	}
	for _, r := range results {
		if err := repo.Result().Create(context.Background(), nil, r); err != nil {
			t.Fatalf("seed result error = %v", err)
		}
	}
}

func TestGetSuperadminKPIs(t *testing.T) {
	repo := newFakeRepository()
	seedDashboardData(t, repo)
	svc := newTestDashboardService(repo)

	kpis, err := svc.GetSuperadminKPIs(context.Background())
	if err != nil {
		t.Fatalf("GetSuperadminKPIs() error = %v", err)
	}

	if kpis.TotalUsers != 3 {
		t.Errorf("TotalUsers = %d, want 3", kpis.TotalUsers)
	}
	if kpis.TotalQuizzes != 2 {
		t.Errorf("TotalQuizzes = %d, want 2", kpis.TotalQuizzes)
	}
	if kpis.TotalAttempts != 3 {
		t.Errorf("TotalAttempts = %d, want 3", kpis.TotalAttempts)
	}
	if kpis.CompletionRate != 100 {
		t.Errorf("CompletionRate = %v, want 100", kpis.CompletionRate)
	}
	// 2 of 3 completed results passed
	if kpis.PassRate < 66 || kpis.PassRate > 67 {
		t.Errorf("PassRate = %v, want ~66.7", kpis.PassRate)
	}
}

func TestGetAdminKPIs(t *testing.T) {
	repo := newFakeRepository()
	seedDashboardData(t, repo)
	svc := newTestDashboardService(repo)

	kpis, err := svc.GetAdminKPIs(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetAdminKPIs() error = %v", err)
	}

	if kpis.TotalQuizzes != 1 {
		t.Errorf("TotalQuizzes = %d, want only the creator's quiz", kpis.TotalQuizzes)
	}
	if kpis.TotalAttempts != 2 {
		t.Errorf("TotalAttempts = %d, want 2", kpis.TotalAttempts)
	}
	if kpis.PassRate != 50 {
		t.Errorf("PassRate = %v, want 50", kpis.PassRate)
	}

	t.Run("creator without quizzes", func(t *testing.T) {
		kpis, err := svc.GetAdminKPIs(context.Background(), 42)
		if err != nil {
			t.Fatalf("GetAdminKPIs() error = %v", err)
		}
		if kpis.TotalQuizzes != 0 || kpis.TotalAttempts != 0 {
			t.Errorf("kpis = %+v, want zeroes", kpis)
		}
	})
}

func TestGetCharts(t *testing.T) {
	repo := newFakeRepository()
	seedDashboardData(t, repo)
	svc := newTestDashboardService(repo)

	charts, err := svc.GetCharts(context.Background())
	if err != nil {
		t.Fatalf("GetCharts() error = %v", err)
	}

	counts := make(map[string]int64)
	for _, p := range charts.QuizzesByCategory {
		counts[p.Category] = p.Count
	}
	if counts["law"] != 1 || counts["gk"] != 1 {
		t.Errorf("category counts = %+v", counts)
	}
}
