package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptComplete   AttemptStatus = "complete"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// AssessmentAttempt is one student's pass through an assessment. The summary
// fields are filled when the attempt reaches a terminal state.
// swagger:model AssessmentAttempt
type AssessmentAttempt struct {
	UUIDBase
	AssessmentID uint          `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	StudentID    uint          `gorm:"index;type:bigint unsigned" json:"studentId"`
	Student      *User         `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Status       AttemptStatus `gorm:"size:20;default:'in_progress'" json:"status"`

	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	TotalTimeSpent     int     `gorm:"default:0" json:"totalTimeSpent"` // Seconds
	Score              float64 `gorm:"default:0" json:"score"`
	AnswerAccuracy     float64 `gorm:"default:0" json:"answerAccuracy"`
	RationaleAccuracy  float64 `gorm:"default:0" json:"rationaleAccuracy"`
	SuspiciousBehavior bool    `gorm:"default:false" json:"suspiciousBehavior"`

	Responses []ResponseRecord `gorm:"foreignKey:AttemptID" json:"responses,omitempty"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}
