package model

import "encoding/json"

// Rubric section maxima for the peer-teaching evaluation.
const (
	MaxContentMastery          = 30
	MaxProfessionalApplication = 25
	MaxTeachingMethodology     = 25
	MaxProfessionalDelivery    = 20
)

// NegativeIndicator is one checkbox deduction on the rubric.
type NegativeIndicator struct {
	Item      string `json:"item"`
	Deduction int    `json:"deduction"`
	Applied   bool   `json:"applied"`
}

// PeerEvaluation is one evaluator's rubric for one peer-teaching session.
// Faculty benchmark evaluations share the table, distinguished by
// IsFacultyBenchmark, and are used to calibrate peer scores.
// swagger:model PeerEvaluation
type PeerEvaluation struct {
	UUIDBase
	EvaluatorID uint  `gorm:"index;type:bigint unsigned" json:"evaluatorId"`
	Evaluator   *User `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
	TeacherID   uint  `gorm:"index;type:bigint unsigned" json:"teacherId"`
	Teacher     *User `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	WeekNumber  int   `gorm:"default:1" json:"weekNumber"`

	ContentMastery          int `gorm:"default:0" json:"contentMastery"`          // 0-30
	ProfessionalApplication int `gorm:"default:0" json:"professionalApplication"` // 0-25
	TeachingMethodology     int `gorm:"default:0" json:"teachingMethodology"`     // 0-25
	ProfessionalDelivery    int `gorm:"default:0" json:"professionalDelivery"`    // 0-20

	NegativeIndicators json.RawMessage `gorm:"type:json" json:"negativeIndicators,omitempty"` // []NegativeIndicator
	TotalScore         float64         `gorm:"default:0" json:"totalScore"`

	Comments           string `gorm:"type:text" json:"comments,omitempty"`
	IsFacultyBenchmark bool   `gorm:"default:false;index" json:"isFacultyBenchmark"`
}

func (PeerEvaluation) TableName() string {
	return "peer_evaluations"
}

// SectionScores returns the four rubric section scores in rubric order.
func (e *PeerEvaluation) SectionScores() [4]int {
	return [4]int{
		e.ContentMastery,
		e.ProfessionalApplication,
		e.TeachingMethodology,
		e.ProfessionalDelivery,
	}
}
