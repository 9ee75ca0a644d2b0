package model

import "time"

// ResponseRecord is one row of the response ledger: created when the answer is
// locked, mutated exactly once when the rationale is submitted, never deleted
// during an attempt. At most one record exists per
// (student, assessment, question).
// swagger:model ResponseRecord
type ResponseRecord struct {
	UUIDBase
	AttemptID    string `gorm:"index;type:varchar(36)" json:"attemptId"`
	StudentID    uint   `gorm:"uniqueIndex:idx_responses_student_assessment_question;type:bigint unsigned" json:"studentId"`
	AssessmentID uint   `gorm:"uniqueIndex:idx_responses_student_assessment_question;type:bigint unsigned" json:"assessmentId"`
	QuestionID   uint   `gorm:"uniqueIndex:idx_responses_student_assessment_question;type:bigint unsigned" json:"questionId"`

	// Answer phase, immutable once written.
	AnswerID       uint      `gorm:"type:bigint unsigned" json:"answerId"`
	AnswerLockedAt time.Time `json:"answerLockedAt"`
	TimeOnQuestion int       `json:"timeOnQuestion"` // Seconds

	// Rationale phase, set by the single permitted mutation.
	RationaleID          *uint      `gorm:"type:bigint unsigned" json:"rationaleId,omitempty"`
	RationaleSubmittedAt *time.Time `json:"rationaleSubmittedAt,omitempty"`
	TimeOnRationale      *int       `json:"timeOnRationale,omitempty"`

	FlaggedForReview bool `gorm:"default:false" json:"flaggedForReview"`
}

func (ResponseRecord) TableName() string {
	return "response_records"
}

// HasRationale reports whether the rationale phase was completed.
func (r *ResponseRecord) HasRationale() bool {
	return r.RationaleID != nil
}
