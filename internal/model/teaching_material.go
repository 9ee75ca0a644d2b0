package model

import "time"

// TeachingMaterial is a slide deck or session recording uploaded for a
// peer-teaching session. SubmittedAt versus SessionDate backs the rubric's
// advance-submission deduction.
// swagger:model TeachingMaterial
type TeachingMaterial struct {
	UUIDBase
	UploaderID uint  `gorm:"index;type:bigint unsigned" json:"uploaderId"`
	Uploader   *User `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	GroupID    *uint `gorm:"index" json:"groupId,omitempty"`
	WeekNumber int   `gorm:"default:1" json:"weekNumber"`

	Title       string `gorm:"size:255;not null" json:"title"`
	FileURL     string `gorm:"size:512" json:"fileUrl"`
	ContentType string `gorm:"size:100" json:"contentType"`
	SizeBytes   int64  `gorm:"default:0" json:"sizeBytes"`

	// DurationSeconds is probed for recordings, nil for documents.
	DurationSeconds *float64 `json:"durationSeconds,omitempty"`

	SubmittedAt time.Time  `json:"submittedAt"`
	SessionDate *time.Time `json:"sessionDate,omitempty"`
}

func (TeachingMaterial) TableName() string {
	return "teaching_materials"
}
