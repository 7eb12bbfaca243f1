package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

func newTestQuizService(repo *fakeRepository) QuizService {
	return NewQuizService(repo, nil, testLogger(), validator.New())
}

func mcqQuestionRequest(text string, correct int) validator.QuestionRequest {
	return validator.QuestionRequest{
		QuestionText: text,
		QuestionType: models.QuestionMCQ,
		Options: []validator.QuestionOptionRequest{
			{Text: "Option A"}, {Text: "Option B"}, {Text: "Option C"},
		},
		CorrectAnswer: intPtr(correct),
	}
}

func TestCreateQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active quiz with defaults", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestQuizService(repo)

		quiz, err := svc.Create(ctx, 3, &QuizCreateRequest{
			Title:    "Daily GK Challenge",
			Category: "gk",
			QuizType: models.QuizRegular,
			Duration: 30,
			Questions: []validator.QuestionRequest{
				mcqQuestionRequest("Capital of France?", 1),
			},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if quiz.ID == 0 {
			t.Error("quiz was not persisted")
		}
		if quiz.Status != models.QuizStatusActive {
			t.Errorf("Status = %q, want active without a schedule", quiz.Status)
		}
		if quiz.PassingScore != models.DefaultPassingScore {
			t.Errorf("PassingScore = %d, want default %d", quiz.PassingScore, models.DefaultPassingScore)
		}
		if quiz.CreatedBy != 3 {
			t.Errorf("CreatedBy = %d, want 3", quiz.CreatedBy)
		}
		if len(quiz.Questions) != 1 || len(quiz.Questions[0].Options) != 3 {
			t.Errorf("questions = %+v", quiz.Questions)
		}
	})

	t.Run("future schedule produces an upcoming quiz", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestQuizService(repo)
		future := time.Now().Add(48 * time.Hour)

		quiz, err := svc.Create(ctx, 3, &QuizCreateRequest{
			Title:        "Weekend Live Battle",
			Category:     "sports",
			QuizType:     models.QuizLive,
			Duration:     45,
			ScheduleTime: &future,
			Questions:    []validator.QuestionRequest{mcqQuestionRequest("Q", 0)},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if quiz.Status != models.QuizStatusUpcoming {
			t.Errorf("Status = %q, want upcoming", quiz.Status)
		}
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestQuizService(repo)

		_, err := svc.Create(ctx, 3, &QuizCreateRequest{Title: "No questions"})
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("Create() error = %v, want validation errors", err)
		}
	})
}

func TestGetQuizByID(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := seedGradedQuiz(repo)
	svc := newTestQuizService(repo)

	t.Run("regular users never see answer keys", func(t *testing.T) {
		got, err := svc.GetByID(ctx, quiz.ID, models.RoleUser)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		for i, q := range got.Questions {
			if q.CorrectAnswer != nil {
				t.Errorf("question %d leaked its answer key", i)
			}
		}
	})

	t.Run("staff see the full quiz", func(t *testing.T) {
		got, err := svc.GetByID(ctx, quiz.ID, models.RoleAdmin)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		for i, q := range got.Questions {
			if q.CorrectAnswer == nil {
				t.Errorf("question %d missing its answer key for staff", i)
			}
		}
	})

	t.Run("stripping leaves the stored quiz intact", func(t *testing.T) {
		if _, err := svc.GetByID(ctx, quiz.ID, models.RoleUser); err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		stored, _ := repo.Quiz().GetByID(ctx, nil, quiz.ID)
		if stored.Questions[0].CorrectAnswer == nil {
			t.Error("stored quiz lost its answer key")
		}
	})

	t.Run("unknown quiz", func(t *testing.T) {
		if _, err := svc.GetByID(ctx, 99, models.RoleUser); !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("GetByID() error = %v, want ErrQuizNotFound", err)
		}
	})
}

func TestListQuizzes(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := seedGradedQuiz(repo)
	svc := newTestQuizService(repo)

	t.Run("listing never serializes answer keys to regular users", func(t *testing.T) {
		resp, err := svc.ListAll(ctx, models.RoleUser, 1, 10)
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(resp.Quizzes) != 1 {
			t.Fatalf("len(Quizzes) = %d, want 1", len(resp.Quizzes))
		}
		for i, q := range resp.Quizzes[0].Questions {
			if q.CorrectAnswer != nil {
				t.Errorf("question %d leaked its answer key on the listing", i)
			}
		}
	})

	t.Run("staff listing keeps the answer keys", func(t *testing.T) {
		resp, err := svc.ListAll(ctx, models.RoleAdmin, 1, 10)
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if resp.Quizzes[0].Questions[0].CorrectAnswer == nil {
			t.Error("staff listing is missing the answer key")
		}
	})

	t.Run("stripping leaves the stored quiz intact", func(t *testing.T) {
		if _, err := svc.ListAll(ctx, models.RoleUser, 1, 10); err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		stored, _ := repo.Quiz().GetByID(ctx, nil, quiz.ID)
		if stored.Questions[0].CorrectAnswer == nil {
			t.Error("stored quiz lost its answer key")
		}
	})
}

func TestUpdateQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("creator applies partial updates", func(t *testing.T) {
		repo := newFakeRepository()
		quiz := seedGradedQuiz(repo)
		svc := newTestQuizService(repo)

		title := "Constitutional Law Advanced"
		price := 149.0
		updated, err := svc.Update(ctx, quiz.CreatedBy, models.RoleAdmin, quiz.ID, &QuizUpdateRequest{
			Title: &title,
			Price: &price,
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Title != title || updated.Price != price {
			t.Errorf("updated = %+v", updated)
		}
		if updated.Category != quiz.Category {
			t.Error("unset fields must keep their values")
		}
	})

	t.Run("non-staff stranger is refused", func(t *testing.T) {
		repo := newFakeRepository()
		quiz := seedGradedQuiz(repo)
		svc := newTestQuizService(repo)

		title := "Hijacked"
		_, err := svc.Update(ctx, 42, models.RoleUser, quiz.ID, &QuizUpdateRequest{Title: &title})
		if !IsPermissionError(err) {
			t.Errorf("Update() error = %v, want permission error", err)
		}
	})
}

func TestDeleteQuiz(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := seedGradedQuiz(repo)
	svc := newTestQuizService(repo)

	if err := svc.Delete(ctx, 42, models.RoleUser, quiz.ID); !IsPermissionError(err) {
		t.Errorf("stranger Delete() error = %v, want permission error", err)
	}

	if err := svc.Delete(ctx, quiz.CreatedBy, models.RoleAdmin, quiz.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Quiz().GetByID(ctx, nil, quiz.ID); err == nil {
		t.Error("quiz still present after delete")
	}
}

func TestGetRegistered(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := seedGradedQuiz(repo)
	quiz.QuizType = models.QuizPaid
	quiz.Participants = append(quiz.Participants, models.Participant{UserID: 7, JoinedAt: time.Now()})
	_ = repo.Quiz().Update(ctx, nil, quiz)
	seedGradedQuiz(repo) // quiz the user is not enrolled in
	svc := newTestQuizService(repo)

	quizzes, err := svc.GetRegistered(ctx, 7)
	if err != nil {
		t.Fatalf("GetRegistered() error = %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != quiz.ID {
		t.Errorf("registered = %+v, want only the enrolled quiz", quizzes)
	}
	if quizzes[0].Questions[0].CorrectAnswer != nil {
		t.Error("registered listing leaked an answer key")
	}
}
