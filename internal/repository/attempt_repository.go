package repository

import (
	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.AssessmentAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.AssessmentAttempt, error) {
	var attempt model.AssessmentAttempt
	err := r.DB.Preload("Responses").Where("id = ?", id).First(&attempt).Error
	return &attempt, err
}

func (r *AttemptRepository) FindInProgress(studentID, assessmentID uint) (*model.AssessmentAttempt, error) {
	var attempt model.AssessmentAttempt
	err := r.DB.
		Where("student_id = ? AND assessment_id = ? AND status = ?",
			studentID, assessmentID, model.AttemptInProgress).
		First(&attempt).Error
	return &attempt, err
}

func (r *AttemptRepository) Update(attempt *model.AssessmentAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) ListByStudent(studentID uint) ([]model.AssessmentAttempt, error) {
	var attempts []model.AssessmentAttempt
	err := r.DB.
		Where("student_id = ?", studentID).
		Order("started_at desc").
		Find(&attempts).Error
	return attempts, err
}

// ListByAssessment returns every attempt at one assessment with its response
// ledger, newest first. Feeds the faculty results list.
func (r *AttemptRepository) ListByAssessment(assessmentID uint) ([]model.AssessmentAttempt, error) {
	var attempts []model.AssessmentAttempt
	err := r.DB.
		Preload("Responses").
		Where("assessment_id = ?", assessmentID).
		Order("started_at desc").
		Find(&attempts).Error
	return attempts, err
}

// Finalize persists the terminal attempt row and its response ledger in one
// transaction. Responses carry a unique (student, assessment, question) index,
// so a re-save of the same attempt replaces rather than duplicates.
func (r *AttemptRepository) Finalize(attempt *model.AssessmentAttempt, responses []model.ResponseRecord) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}
		if len(responses) == 0 {
			return nil
		}
		if err := tx.Where("attempt_id = ?", attempt.ID).
			Delete(&model.ResponseRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(&responses).Error
	})
}

// SaveResponse upserts one ledger row. Rows keep the UUID assigned at lock
// time, so the rationale mutation lands on the row created for the answer.
func (r *AttemptRepository) SaveResponse(response *model.ResponseRecord) error {
	return r.DB.Save(response).Error
}

func (r *AttemptRepository) ListResponsesByStudent(studentID uint) ([]model.ResponseRecord, error) {
	var responses []model.ResponseRecord
	err := r.DB.
		Where("student_id = ?", studentID).
		Order("answer_locked_at asc").
		Find(&responses).Error
	return responses, err
}

// AverageScores returns each student's mean score over completed attempts.
// Reciprocal-inflation detection compares peer scores against these.
func (r *AttemptRepository) AverageScores() (map[uint]float64, error) {
	type row struct {
		StudentID uint
		Avg       float64
	}
	var rows []row
	err := r.DB.Model(&model.AssessmentAttempt{}).
		Select("student_id, AVG(score) as avg").
		Where("status = ?", model.AttemptComplete).
		Group("student_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	scores := make(map[uint]float64, len(rows))
	for _, r := range rows {
		scores[r.StudentID] = r.Avg
	}
	return scores, nil
}

func (r *AttemptRepository) ListResponsesByStudents(studentIDs []uint) (map[uint][]model.ResponseRecord, error) {
	byStudent := make(map[uint][]model.ResponseRecord, len(studentIDs))
	if len(studentIDs) == 0 {
		return byStudent, nil
	}
	var responses []model.ResponseRecord
	err := r.DB.
		Where("student_id IN ?", studentIDs).
		Order("answer_locked_at asc").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	for _, resp := range responses {
		byStudent[resp.StudentID] = append(byStudent[resp.StudentID], resp)
	}
	return byStudent, nil
}
