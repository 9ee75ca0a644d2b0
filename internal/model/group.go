package model

import "time"

// StudyGroup is a peer-teaching rotation group.
// swagger:model
type StudyGroup struct {
	BaseModel
	Name           string     `gorm:"size:100;not null" json:"name"`
	RotationNumber int        `gorm:"default:1" json:"rotationNumber"`
	FormationDate  *time.Time `json:"formationDate,omitempty"`

	Members []User `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

func (StudyGroup) TableName() string {
	return "study_groups"
}
