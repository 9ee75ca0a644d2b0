package model

// GradeRecord is the stored output of the grade calculator for one student.
// Derived data: recomputed on demand and upserted, never edited in place.
// swagger:model GradeRecord
type GradeRecord struct {
	UUIDBase
	StudentID uint  `gorm:"uniqueIndex;type:bigint unsigned" json:"studentId"`
	Student   *User `gorm:"foreignKey:StudentID" json:"student,omitempty"`

	// Component scores, each 0-100.
	Quizzes          float64 `gorm:"default:0" json:"quizzes"`
	Exams            float64 `gorm:"default:0" json:"exams"`
	Final            float64 `gorm:"default:0" json:"final"`
	Teaching         float64 `gorm:"default:0" json:"teaching"`
	GroupPerformance float64 `gorm:"default:0" json:"groupPerformance"`
	Engagement       float64 `gorm:"default:0" json:"engagement"`
	FeedbackQuality  float64 `gorm:"default:0" json:"feedbackQuality"`
	Reflection       float64 `gorm:"default:0" json:"reflection"`

	GamingPenalty float64 `gorm:"default:0" json:"gamingPenalty"`

	FinalGrade  float64 `gorm:"default:0" json:"finalGrade"`
	LetterGrade string  `gorm:"size:3" json:"letterGrade"`
}

func (GradeRecord) TableName() string {
	return "grade_records"
}
