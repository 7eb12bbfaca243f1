package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/osian-labs/quiz-platform/internal/models"
)

// Validator wraps go-playground/validator with the platform's custom rules.
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	validate := validator.New()

	v := &Validator{
		validate: validate,
	}
	v.business = NewBusinessValidator(v)
	v.registerRules()

	return v
}

// GetBusinessValidator returns the cross-field business rule validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Validate validates struct tags and converts failures to ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if verrs := ToValidationErrors(err); len(verrs) > 0 {
			return verrs
		}
		return err
	}
	return nil
}

// ValidationError describes a single failed field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

// ValidationErrors is a collection of field failures that implements error.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// ToValidationErrors converts validator.ValidationErrors into the internal
// representation.
func ToValidationErrors(err error) ValidationErrors {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// registerRules registers custom struct tag validators.
func (v *Validator) registerRules() {
	// Quiz type validation
	v.validate.RegisterValidation("quiz_type", func(fl validator.FieldLevel) bool {
		qt := models.QuizType(fl.Field().String())
		switch qt {
		case models.QuizRegular, models.QuizLive, models.QuizUpcoming, models.QuizPaid:
			return true
		}
		return false
	})

	// Question type validation
	v.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		qt := models.QuestionType(fl.Field().String())
		return qt == models.QuestionMCQ || qt == models.QuestionWritten
	})

	// User role validation (case-insensitive, normalized at the model level)
	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseRole(fl.Field().String())
		return ok
	})

	// Recipient group validation for broadcast notifications
	v.validate.RegisterValidation("recipient_group", func(fl validator.FieldLevel) bool {
		rg := models.RecipientGroup(strings.ToLower(fl.Field().String()))
		switch rg {
		case models.RecipientAll, models.RecipientUsers, models.RecipientAdmins:
			return true
		}
		return false
	})

	// Order status validation
	v.validate.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		os := models.OrderStatus(fl.Field().String())
		switch os {
		case models.OrderPending, models.OrderCompleted, models.OrderFailed, models.OrderCancelled:
			return true
		}
		return false
	})

	// Quiz duration validation (1 minute to 8 hours)
	v.validate.RegisterValidation("quiz_duration", func(fl validator.FieldLevel) bool {
		d := fl.Field().Int()
		return d >= 1 && d <= 480
	})

	// Passing score validation (0-100)
	v.validate.RegisterValidation("passing_score", func(fl validator.FieldLevel) bool {
		score := fl.Field().Int()
		return score >= 0 && score <= 100
	})
}
