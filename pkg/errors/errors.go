package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Code extracts the error code, or empty string for non-AppError values.
func Code(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ""
}

// Message extracts the user-facing message, falling back to a generic one for
// non-AppError values so raw internals never leak into a chat.
func Message(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Message
	}
	return "Something went wrong"
}

// Common error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeValidation    = "VALIDATION_ERROR"
)

// Session state machine rejection codes. Every out-of-turn call gets one of
// these back instead of mutating state.
const (
	ErrCodeSessionExists       = "SESSION_EXISTS"
	ErrCodeSessionFinished     = "SESSION_FINISHED"
	ErrCodeQuestionNotActive   = "QUESTION_NOT_ACTIVE"
	ErrCodeQuestionAlreadyOpen = "QUESTION_ALREADY_OPEN"
	ErrCodeAlreadyAnswered     = "ALREADY_ANSWERED"
	ErrCodeNotEnoughQuestions  = "NOT_ENOUGH_QUESTIONS"
	ErrCodeNotEnoughPlayers    = "NOT_ENOUGH_PLAYERS"
	ErrCodeQuestionsExhausted  = "QUESTIONS_EXHAUSTED"
	ErrCodeUnknownParticipant  = "UNKNOWN_PARTICIPANT"
)
