package model

import "time"

type AssessmentType string

const (
	AssessmentQuiz  AssessmentType = "quiz"
	AssessmentExam  AssessmentType = "exam"
	AssessmentFinal AssessmentType = "final"
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Type        AssessmentType `gorm:"size:20;default:'quiz';index" json:"type"`
	CourseID    string         `gorm:"size:50;index" json:"courseId"`
	WeekNumber  int            `gorm:"default:1" json:"weekNumber"`

	TimeLimit    int     `gorm:"default:3600" json:"timeLimit"` // Seconds
	PassingScore float64 `gorm:"default:70" json:"passingScore"`

	TwoPhaseEnabled  bool `gorm:"default:true" json:"twoPhaseEnabled"`
	ShuffleQuestions bool `gorm:"default:false" json:"shuffleQuestions"`
	ShuffleOptions   bool `gorm:"default:false" json:"shuffleOptions"`

	AvailableFrom  *time.Time `json:"availableFrom,omitempty"`
	AvailableUntil *time.Time `json:"availableUntil,omitempty"`
	IsPublished    bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`

	Questions []Question `gorm:"foreignKey:AssessmentID" json:"questions,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}
