package model

import (
	"encoding/json"
	"time"
)

type PatternType string

const (
	PatternRationaleMining         PatternType = "rationale_mining"
	PatternReciprocalInflation     PatternType = "reciprocal_inflation"
	PatternNoVariance              PatternType = "no_variance"
	PatternAnswerRationaleMismatch PatternType = "answer_rationale_mismatch"
	PatternRapidResponse           PatternType = "rapid_response"
)

// GamingPattern is one detected integrity anomaly. Stored rows are replaced,
// not appended: at most one row per (student, pattern type), carrying the
// confidence from the most recent evaluation. Details holds diagnostic numbers
// only and never feeds scoring.
// swagger:model GamingPattern
type GamingPattern struct {
	UUIDBase
	StudentID   uint            `gorm:"uniqueIndex:idx_patterns_student_type;type:bigint unsigned" json:"studentId"`
	PatternType PatternType     `gorm:"uniqueIndex:idx_patterns_student_type;size:40" json:"patternType"`
	Confidence  float64         `gorm:"default:0" json:"confidence"` // 0..1
	DetectedAt  time.Time       `json:"detectedAt"`
	Details     json.RawMessage `gorm:"type:json" json:"details,omitempty"`
}

func (GamingPattern) TableName() string {
	return "gaming_patterns"
}
