package services

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	// Identity
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrUserNotVerified    = errors.New("email not verified")
	ErrUserDeactivated    = errors.New("account is deactivated")

	// Quiz catalog
	ErrQuizNotFound = errors.New("quiz not found")

	// Orders and payments
	ErrOrderNotFound           = errors.New("order not found")
	ErrSignatureVerification   = errors.New("payment signature verification failed")
	ErrPaymentSecretMissing    = errors.New("payment secret not configured")
	ErrPaymentSignatureMissing = errors.New("payment signature missing")
	ErrQuizNotPaid             = errors.New("quiz does not require payment")

	// Results
	ErrResultNotFound   = errors.New("result not found")
	ErrResultExists     = errors.New("quiz already submitted")
	ErrNotParticipant   = errors.New("user is not enrolled in this quiz")
	ErrAnswerOutOfRange = errors.New("answer references a question outside the quiz")

	// Notifications and mentorship
	ErrNotificationNotFound = errors.New("notification not found")
	ErrVideoNotFound        = errors.New("mentorship video not found")
)

// ===== TYPED ERRORS =====

// PermissionError carries who tried to do what to which resource
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether the error is a permission denial
func IsPermissionError(err error) bool {
	var permErr *PermissionError
	return errors.As(err, &permErr)
}

// BusinessRuleError signals a request that is well-formed but violates a
// domain rule, mapped to 400 at the transport layer.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

func IsBusinessRuleError(err error) bool {
	var ruleErr *BusinessRuleError
	return errors.As(err, &ruleErr)
}

// IsNotFoundError reports whether the error maps to a 404
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrVideoNotFound)
}

// IsConflictError reports whether the error maps to a 409
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrResultExists)
}
