package repository

import (
	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// Create inserts the question together with its options and rationales.
func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.order asc, answer_options.id asc")
		}).
		Preload("Rationales").
		First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) ListByAssessment(assessmentID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.
		Where("assessment_id = ?", assessmentID).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.order asc, answer_options.id asc")
		}).
		Preload("Rationales").
		Order("`order` asc, id asc").
		Find(&qs).Error
	return qs, err
}

// ListAll loads the whole question catalog with reference data. The detector
// and the grade calculator both score against this set.
func (r *QuestionRepository) ListAll() ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.
		Preload("Options").
		Preload("Rationales").
		Order("assessment_id asc, `order` asc, id asc").
		Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) ListByCategory(category string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.
		Where("category = ?", category).
		Preload("Options").
		Preload("Rationales").
		Order("`order` asc, id asc").
		Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.AnswerOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&model.Rationale{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
}
