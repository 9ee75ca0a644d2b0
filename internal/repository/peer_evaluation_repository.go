package repository

import (
	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type PeerEvaluationRepository struct {
	DB *gorm.DB
}

func NewPeerEvaluationRepository(db *gorm.DB) *PeerEvaluationRepository {
	return &PeerEvaluationRepository{DB: db}
}

func (r *PeerEvaluationRepository) Create(evaluation *model.PeerEvaluation) error {
	return r.DB.Create(evaluation).Error
}

func (r *PeerEvaluationRepository) FindByID(id string) (*model.PeerEvaluation, error) {
	var evaluation model.PeerEvaluation
	err := r.DB.Where("id = ?", id).First(&evaluation).Error
	return &evaluation, err
}

func (r *PeerEvaluationRepository) ListByEvaluator(evaluatorID uint) ([]model.PeerEvaluation, error) {
	var evaluations []model.PeerEvaluation
	err := r.DB.
		Where("evaluator_id = ?", evaluatorID).
		Order("created_at asc").
		Find(&evaluations).Error
	return evaluations, err
}

// ListReceived returns peer evaluations of the given teacher, benchmarks
// excluded.
func (r *PeerEvaluationRepository) ListReceived(teacherID uint) ([]model.PeerEvaluation, error) {
	var evaluations []model.PeerEvaluation
	err := r.DB.
		Where("teacher_id = ? AND is_faculty_benchmark = ?", teacherID, false).
		Order("created_at asc").
		Find(&evaluations).Error
	return evaluations, err
}

func (r *PeerEvaluationRepository) ListBenchmarks(teacherID uint) ([]model.PeerEvaluation, error) {
	var evaluations []model.PeerEvaluation
	err := r.DB.
		Where("teacher_id = ? AND is_faculty_benchmark = ?", teacherID, true).
		Order("created_at asc").
		Find(&evaluations).Error
	return evaluations, err
}

func (r *PeerEvaluationRepository) ListAll() ([]model.PeerEvaluation, error) {
	var evaluations []model.PeerEvaluation
	err := r.DB.Order("created_at asc").Find(&evaluations).Error
	return evaluations, err
}

func (r *PeerEvaluationRepository) ListByWeek(week int) ([]model.PeerEvaluation, error) {
	var evaluations []model.PeerEvaluation
	err := r.DB.
		Where("week_number = ?", week).
		Order("created_at asc").
		Find(&evaluations).Error
	return evaluations, err
}

// Exists reports whether the evaluator already scored this teacher for the
// week. Repeat submissions for a rotation are rejected upstream.
func (r *PeerEvaluationRepository) Exists(evaluatorID, teacherID uint, week int) (bool, error) {
	var count int64
	err := r.DB.Model(&model.PeerEvaluation{}).
		Where("evaluator_id = ? AND teacher_id = ? AND week_number = ? AND is_faculty_benchmark = ?",
			evaluatorID, teacherID, week, false).
		Count(&count).Error
	return count > 0, err
}
