package model

// Reflection is a weekly structured reflection submission.
// swagger:model
type Reflection struct {
	UUIDBase
	UserID     uint `gorm:"index" json:"userId"`
	WeekNumber int  `gorm:"default:1" json:"weekNumber"`

	Summary     string `gorm:"type:text" json:"summary"`
	Challenges  string `gorm:"type:text" json:"challenges"`
	Connections string `gorm:"type:text" json:"connections"`
	NextSteps   string `gorm:"type:text" json:"nextSteps"`

	// QualityScore is assigned by faculty review, 0-100.
	QualityScore float64 `gorm:"default:0" json:"qualityScore"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Reflection) TableName() string {
	return "reflections"
}
