package model

// Question is a two-phase item: the student locks an answer option first, then
// separately selects one of the rationales.
// swagger:model Question
type Question struct {
	BaseModel
	AssessmentID uint   `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	Content      string `gorm:"type:text;not null" json:"content"` // Stem
	Category     string `gorm:"size:50;index" json:"category"`     // diabetes, immunity, hematology, ...
	SubCategory  string `gorm:"size:50" json:"subCategory,omitempty"`
	Difficulty   string `gorm:"size:20;default:'medium'" json:"difficulty"` // easy, medium, hard

	ClinicalScenario string `gorm:"type:text" json:"clinicalScenario,omitempty"`
	BloomsLevel      string `gorm:"size:20" json:"bloomsLevel,omitempty"`

	CorrectAnswerID uint `gorm:"type:bigint unsigned" json:"correctAnswerId"`
	TimeEstimate    int  `gorm:"default:60" json:"timeEstimate"` // Seconds
	Order           int  `gorm:"default:0" json:"order"`

	Options    []AnswerOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	Rationales []Rationale    `gorm:"foreignKey:QuestionID" json:"rationales,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model AnswerOption
type AnswerOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (AnswerOption) TableName() string {
	return "answer_options"
}

// swagger:model Rationale
type Rationale struct {
	BaseModel
	QuestionID  uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Text        string `gorm:"type:text;not null" json:"text"`
	IsCorrect   bool   `gorm:"default:false" json:"isCorrect"`
	Explanation string `gorm:"type:text" json:"explanation,omitempty"`
	// plausible, partial, common_misconception, opposite
	DistractorType string `gorm:"size:30" json:"distractorType,omitempty"`
}

func (Rationale) TableName() string {
	return "rationales"
}

// CorrectRationale reports whether rationaleID names one of the question's
// rationales flagged correct.
func (q *Question) CorrectRationale(rationaleID uint) bool {
	for _, r := range q.Rationales {
		if r.ID == rationaleID {
			return r.IsCorrect
		}
	}
	return false
}

// HasOption reports whether optionID is one of the question's answer options.
func (q *Question) HasOption(optionID uint) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// HasRationale reports whether rationaleID is one of the question's rationales.
func (q *Question) HasRationale(rationaleID uint) bool {
	for _, r := range q.Rationales {
		if r.ID == rationaleID {
			return true
		}
	}
	return false
}
