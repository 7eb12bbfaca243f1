package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/osian-labs/quiz-platform/internal/models"
)

// BusinessValidator handles cross-field business rule validation that
// struct tags cannot express.
type BusinessValidator struct {
	validator *Validator
}

// NewBusinessValidator creates a business validator backed by an existing
// tag validator.
func NewBusinessValidator(v *Validator) *BusinessValidator {
	return &BusinessValidator{validator: v}
}

// ValidateQuizCreate validates quiz creation business rules.
func (bv *BusinessValidator) ValidateQuizCreate(req *QuizCreateRequest) ValidationErrors {
	var errors ValidationErrors

	if err := bv.validator.Validate(req); err != nil {
		if verrs, ok := err.(ValidationErrors); ok {
			errors = append(errors, verrs...)
		}
	}

	errors = append(errors, validateQuestions(req.Questions)...)

	// Paid quizzes need a positive price
	if req.QuizType == models.QuizPaid && req.Price <= 0 {
		errors = append(errors, ValidationError{
			Field:   "price",
			Message: "paid quizzes must have a positive price",
			Value:   req.Price,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateQuizUpdate validates quiz update business rules.
func (bv *BusinessValidator) ValidateQuizUpdate(req *QuizUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	if err := bv.validator.Validate(req); err != nil {
		if verrs, ok := err.(ValidationErrors); ok {
			errors = append(errors, verrs...)
		}
	}

	if req.Questions != nil {
		errors = append(errors, validateQuestions(req.Questions)...)
	}

	return errors
}

// ValidateScheduleTime checks a schedule against the derived status rule.
func (bv *BusinessValidator) ValidateScheduleTime(scheduleTime *time.Time, quizType models.QuizType) ValidationErrors {
	var errors ValidationErrors

	// Upcoming-typed quizzes must actually be scheduled in the future
	if quizType == models.QuizUpcoming {
		if scheduleTime == nil || !scheduleTime.After(time.Now()) {
			errors = append(errors, ValidationError{
				Field:   "schedule_time",
				Message: "upcoming quizzes require a future schedule time",
				Value:   scheduleTime,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// validateQuestions enforces per-question coherence: mcq questions need at
// least two options and a correct answer index inside the option range;
// written questions carry neither.
func validateQuestions(questions []QuestionRequest) ValidationErrors {
	var errors ValidationErrors

	for i, q := range questions {
		if strings.TrimSpace(q.QuestionText) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].question_text", i),
				Message: "question text cannot be blank",
				Rule:    "business_logic",
			})
		}

		switch q.QuestionType {
		case models.QuestionMCQ:
			if len(q.Options) < 2 {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("questions[%d].options", i),
					Message: "mcq questions require at least two options",
					Value:   len(q.Options),
					Rule:    "business_logic",
				})
			}
			if q.CorrectAnswer == nil {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("questions[%d].correct_answer", i),
					Message: "mcq questions require a correct answer",
					Rule:    "business_logic",
				})
			} else if *q.CorrectAnswer < 0 || *q.CorrectAnswer >= len(q.Options) {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("questions[%d].correct_answer", i),
					Message: "correct answer must reference an existing option",
					Value:   *q.CorrectAnswer,
					Rule:    "business_logic",
				})
			}
		case models.QuestionWritten:
			if q.CorrectAnswer != nil {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("questions[%d].correct_answer", i),
					Message: "written questions cannot have a correct answer index",
					Rule:    "business_logic",
				})
			}
		}
	}

	return errors
}
