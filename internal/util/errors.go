package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrAssessmentClosed    = errors.New("assessment not published or outside its availability window")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptInProgress   = errors.New("an attempt for this assessment is already in progress")
	ErrAttemptFinished     = errors.New("attempt already reached a terminal state")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrSelfEvaluation      = errors.New("students cannot evaluate themselves")
	ErrDuplicateEvaluation = errors.New("evaluation already submitted for this rotation")
	ErrDuplicateReflection = errors.New("reflection already submitted for this week")
	ErrSectionOutOfRange   = errors.New("rubric section score out of range")
)
