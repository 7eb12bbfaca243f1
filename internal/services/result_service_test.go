package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/osian-labs/quiz-platform/internal/events"
	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

func newTestResultService(repo *fakeRepository, publisher events.EventPublisher) ResultService {
	return NewResultService(repo, nil, testLogger(), validator.New(), publisher)
}

func intPtr(v int) *int { return &v }

func seedGradedQuiz(repo *fakeRepository) *models.Quiz {
	return repo.addQuiz(&models.Quiz{
		Title:        "Constitutional Law Basics",
		Category:     "law",
		QuizType:     models.QuizRegular,
		Duration:     30,
		PassingScore: 60,
		Status:       models.QuizStatusActive,
		CreatedBy:    1,
		Questions: datatypes.JSONSlice[models.Question]{
			{QuestionText: "Q1", QuestionType: models.QuestionMCQ, CorrectAnswer: intPtr(0)},
			{QuestionText: "Q2", QuestionType: models.QuestionMCQ, CorrectAnswer: intPtr(2)},
			{QuestionText: "Q3", QuestionType: models.QuestionMCQ, CorrectAnswer: intPtr(1)},
		},
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("grades answers against stored keys", func(t *testing.T) {
		repo := newFakeRepository()
		quiz := seedGradedQuiz(repo)
		repo.addUser(&models.User{Name: "Asha", Email: "asha@example.com"})
		publisher := events.NewMockEventPublisher(nil)
		svc := newTestResultService(repo, publisher)

		resp, err := svc.Submit(ctx, 1, &SubmitResultRequest{
			QuizID: quiz.ID,
			Answers: []AnswerSubmission{
				{QuestionIndex: 0, SelectedAnswer: 0, TimeSpent: 20},
				{QuestionIndex: 1, SelectedAnswer: 1, TimeSpent: 35},
				{QuestionIndex: 2, SelectedAnswer: 1, TimeSpent: 15},
			},
			TimeTaken: 70,
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}

		if resp.Score != 2 || resp.TotalQuestions != 3 {
			t.Errorf("score = %d/%d, want 2/3", resp.Score, resp.TotalQuestions)
		}
		if resp.Percentage != 67 {
			t.Errorf("percentage = %d, want 67", resp.Percentage)
		}
		if !resp.Passed {
			t.Error("67%% should pass a 60%% threshold")
		}

		stored, err := repo.Result().GetByID(ctx, nil, resp.ResultID)
		if err != nil {
			t.Fatalf("stored result missing: %v", err)
		}
		if len(stored.Answers) != 3 {
			t.Fatalf("stored answers = %d, want 3", len(stored.Answers))
		}
		if !stored.Answers[0].IsCorrect || stored.Answers[1].IsCorrect || !stored.Answers[2].IsCorrect {
			t.Errorf("answer correctness = %+v", stored.Answers)
		}
		if stored.CompletedAt == nil || stored.Status != models.ResultCompleted {
			t.Errorf("stored result = %+v, want completed", stored)
		}

		user, _ := repo.User().GetByID(ctx, nil, 1)
		if len(user.QuizzesTaken) != 1 || user.QuizzesTaken[0].QuizID != quiz.ID || user.QuizzesTaken[0].Score != 2 {
			t.Errorf("quiz history = %+v", user.QuizzesTaken)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventQuizSubmitted {
			t.Errorf("published events = %+v", published)
		}
	})

	t.Run("fails below passing score", func(t *testing.T) {
		repo := newFakeRepository()
		quiz := seedGradedQuiz(repo)
		svc := newTestResultService(repo, events.NewMockEventPublisher(nil))

		resp, err := svc.Submit(ctx, 1, &SubmitResultRequest{
			QuizID: quiz.ID,
			Answers: []AnswerSubmission{
				{QuestionIndex: 0, SelectedAnswer: 0},
				{QuestionIndex: 1, SelectedAnswer: 1},
				{QuestionIndex: 2, SelectedAnswer: 0},
			},
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if resp.Score != 1 || resp.Passed {
			t.Errorf("score = %d passed = %v, want 1 and failed", resp.Score, resp.Passed)
		}
	})

	t.Run("skips out of range question indexes", func(t *testing.T) {
		repo := newFakeRepository()
		quiz := seedGradedQuiz(repo)
		svc := newTestResultService(repo, events.NewMockEventPublisher(nil))

		resp, err := svc.Submit(ctx, 1, &SubmitResultRequest{
			QuizID: quiz.ID,
			Answers: []AnswerSubmission{
				{QuestionIndex: 0, SelectedAnswer: 0},
				{QuestionIndex: 9, SelectedAnswer: 0},
			},
		})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if resp.Score != 1 {
			t.Errorf("score = %d, want 1", resp.Score)
		}

		stored, _ := repo.Result().GetByID(ctx, nil, resp.ResultID)
		if len(stored.Answers) != 1 {
			t.Errorf("stored answers = %d, want 1 after skipping rogue index", len(stored.Answers))
		}
	})

	t.Run("rejects repeat submissions", func(t *testing.T) {
		repo := newFakeRepository()
		quiz := seedGradedQuiz(repo)
		svc := newTestResultService(repo, events.NewMockEventPublisher(nil))

		req := &SubmitResultRequest{
			QuizID:  quiz.ID,
			Answers: []AnswerSubmission{{QuestionIndex: 0, SelectedAnswer: 0}},
		}
		if _, err := svc.Submit(ctx, 1, req); err != nil {
			t.Fatalf("first Submit() error = %v", err)
		}
		if _, err := svc.Submit(ctx, 1, req); !errors.Is(err, ErrResultExists) {
			t.Errorf("second Submit() error = %v, want ErrResultExists", err)
		}
	})

	t.Run("paid quiz requires enrollment", func(t *testing.T) {
		repo := newFakeRepository()
		quiz := seedGradedQuiz(repo)
		quiz.QuizType = models.QuizPaid
		quiz.Price = 99
		_ = repo.Quiz().Update(ctx, nil, quiz)
		svc := newTestResultService(repo, events.NewMockEventPublisher(nil))

		req := &SubmitResultRequest{
			QuizID:  quiz.ID,
			Answers: []AnswerSubmission{{QuestionIndex: 0, SelectedAnswer: 0}},
		}
		if _, err := svc.Submit(ctx, 1, req); !errors.Is(err, ErrNotParticipant) {
			t.Errorf("Submit() error = %v, want ErrNotParticipant", err)
		}

		quiz.Participants = append(quiz.Participants, models.Participant{UserID: 1})
		_ = repo.Quiz().Update(ctx, nil, quiz)
		if _, err := svc.Submit(ctx, 1, req); err != nil {
			t.Errorf("enrolled Submit() error = %v", err)
		}
	})

	t.Run("unknown quiz", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestResultService(repo, events.NewMockEventPublisher(nil))

		_, err := svc.Submit(ctx, 1, &SubmitResultRequest{
			QuizID:  42,
			Answers: []AnswerSubmission{{QuestionIndex: 0, SelectedAnswer: 0}},
		})
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("Submit() error = %v, want ErrQuizNotFound", err)
		}
	})
}

func TestGetResultByID(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := seedGradedQuiz(repo)
	svc := newTestResultService(repo, events.NewMockEventPublisher(nil))

	resp, err := svc.Submit(ctx, 1, &SubmitResultRequest{
		QuizID:  quiz.ID,
		Answers: []AnswerSubmission{{QuestionIndex: 0, SelectedAnswer: 0}},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	tests := []struct {
		name     string
		callerID uint
		role     models.UserRole
		wantErr  bool
	}{
		{"owner reads own result", 1, models.RoleUser, false},
		{"other user is refused", 2, models.RoleUser, true},
		{"admin may read any result", 2, models.RoleAdmin, false},
		{"superadmin may read any result", 3, models.RoleSuperAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByID(ctx, tt.callerID, tt.role, resp.ResultID)
			if tt.wantErr {
				if !IsPermissionError(err) {
					t.Errorf("GetByID() error = %v, want permission error", err)
				}
				return
			}
			if err != nil {
				t.Errorf("GetByID() error = %v", err)
			}
		})
	}
}

func TestGetLeaderboard(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := seedGradedQuiz(repo)
	svc := newTestResultService(repo, events.NewMockEventPublisher(nil))

	// Three entrants: same score ties break on time taken
	submissions := []struct {
		userID  uint
		answers []AnswerSubmission
		taken   int
	}{
		{1, []AnswerSubmission{{QuestionIndex: 0, SelectedAnswer: 0}, {QuestionIndex: 1, SelectedAnswer: 2}, {QuestionIndex: 2, SelectedAnswer: 1}}, 120},
		{2, []AnswerSubmission{{QuestionIndex: 0, SelectedAnswer: 0}}, 90},
		{3, []AnswerSubmission{{QuestionIndex: 0, SelectedAnswer: 0}}, 45},
	}
	for i, sub := range submissions {
		repo.addUser(&models.User{Name: "User", Email: "u@example.com"})
		if _, err := svc.Submit(ctx, sub.userID, &SubmitResultRequest{
			QuizID: quiz.ID, Answers: sub.answers, TimeTaken: sub.taken,
		}); err != nil {
			t.Fatalf("submission %d error = %v", i, err)
		}
	}

	board, err := svc.GetLeaderboard(ctx, quiz.ID, 10)
	if err != nil {
		t.Fatalf("GetLeaderboard() error = %v", err)
	}
	if len(board.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(board.Entries))
	}

	wantOrder := []uint{1, 3, 2}
	for i, want := range wantOrder {
		if board.Entries[i].User.ID != want {
			t.Errorf("rank %d user = %d, want %d", i+1, board.Entries[i].User.ID, want)
		}
		if board.Entries[i].Rank != i+1 {
			t.Errorf("entry %d rank = %d", i, board.Entries[i].Rank)
		}
	}

	t.Run("limit truncates", func(t *testing.T) {
		board, err := svc.GetLeaderboard(ctx, quiz.ID, 2)
		if err != nil {
			t.Fatalf("GetLeaderboard() error = %v", err)
		}
		if len(board.Entries) != 2 {
			t.Errorf("entries = %d, want 2", len(board.Entries))
		}
	})

	t.Run("unknown quiz", func(t *testing.T) {
		if _, err := svc.GetLeaderboard(ctx, 99, 10); !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("GetLeaderboard() error = %v, want ErrQuizNotFound", err)
		}
	})
}

func TestGetAdminResults(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()

	// Two creators with one quiz each, one submission per quiz
	adminQuiz := seedGradedQuiz(repo)
	otherQuiz := repo.addQuiz(&models.Quiz{
		Title: "History Sprint", Category: "history", QuizType: models.QuizRegular,
		Duration: 20, Status: models.QuizStatusActive, CreatedBy: 2,
		Questions: datatypes.JSONSlice[models.Question]{
			{QuestionText: "Q1", QuestionType: models.QuestionMCQ, CorrectAnswer: intPtr(0)},
		},
	})
	svc := newTestResultService(repo, events.NewMockEventPublisher(nil))

	for _, quizID := range []uint{adminQuiz.ID, otherQuiz.ID} {
		if _, err := svc.Submit(ctx, 5, &SubmitResultRequest{
			QuizID:  quizID,
			Answers: []AnswerSubmission{{QuestionIndex: 0, SelectedAnswer: 0}},
		}); err != nil {
			t.Fatalf("seed submission error = %v", err)
		}
	}

	t.Run("admin sees only own quiz results", func(t *testing.T) {
		resp, err := svc.GetAdminResults(ctx, 1, models.RoleAdmin, 1, 10)
		if err != nil {
			t.Fatalf("GetAdminResults() error = %v", err)
		}
		if len(resp.Results) != 1 || resp.Results[0].QuizID != adminQuiz.ID {
			t.Errorf("results = %+v, want only the creator's quiz", resp.Results)
		}
	})

	t.Run("superadmin sees everything", func(t *testing.T) {
		resp, err := svc.GetAdminResults(ctx, 9, models.RoleSuperAdmin, 1, 10)
		if err != nil {
			t.Fatalf("GetAdminResults() error = %v", err)
		}
		if len(resp.Results) != 2 {
			t.Errorf("results = %d, want 2", len(resp.Results))
		}
	})

	t.Run("admin without quizzes sees nothing", func(t *testing.T) {
		resp, err := svc.GetAdminResults(ctx, 7, models.RoleAdmin, 1, 10)
		if err != nil {
			t.Fatalf("GetAdminResults() error = %v", err)
		}
		if len(resp.Results) != 0 {
			t.Errorf("results = %d, want 0", len(resp.Results))
		}
	})
}
