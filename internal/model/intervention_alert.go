package model

import "time"

type AlertPriority string

const (
	AlertLow      AlertPriority = "low"
	AlertMedium   AlertPriority = "medium"
	AlertHigh     AlertPriority = "high"
	AlertCritical AlertPriority = "critical"
)

type AlertStatus string

const (
	AlertPending      AlertStatus = "pending"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// InterventionAlert is raised for faculty review when any detected pattern
// crosses the high-confidence threshold.
// swagger:model InterventionAlert
type InterventionAlert struct {
	UUIDBase
	Type     string `gorm:"size:20;default:'individual'" json:"type"` // individual, group
	TargetID uint   `gorm:"index;type:bigint unsigned" json:"targetId"`
	Target   *User  `gorm:"foreignKey:TargetID" json:"target,omitempty"`

	Reason   string        `gorm:"type:text" json:"reason"`
	Priority AlertPriority `gorm:"size:20;default:'medium'" json:"priority"`
	Status   AlertStatus   `gorm:"size:20;default:'pending';index" json:"status"`

	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
	FacultyNotes string     `gorm:"type:text" json:"facultyNotes,omitempty"`
}

func (InterventionAlert) TableName() string {
	return "intervention_alerts"
}
