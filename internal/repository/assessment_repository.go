package repository

import (
	"time"

	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, id).Error
	return &a, err
}

// FindWithQuestions loads the assessment with its full question catalog,
// options and rationales included, in display order.
func (r *AssessmentRepository) FindWithQuestions(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order asc, questions.id asc")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.order asc, answer_options.id asc")
		}).
		Preload("Questions.Rationales").
		First(&a, id).Error
	return &a, err
}

func (r *AssessmentRepository) List(page, limit int) ([]model.Assessment, int64, error) {
	var as []model.Assessment
	var total int64
	query := r.DB.Model(&model.Assessment{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AssessmentRepository) ListAll() ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.Order("week_number asc, id asc").Find(&as).Error
	return as, err
}

func (r *AssessmentRepository) ListByType(t model.AssessmentType) ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.Where("type = ?", t).Order("week_number asc").Find(&as).Error
	return as, err
}

// ListAvailable returns published assessments whose availability window
// contains now.
func (r *AssessmentRepository) ListAvailable(now time.Time) ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.
		Where("is_published = ?", true).
		Where("available_from IS NULL OR available_from <= ?", now).
		Where("available_until IS NULL OR available_until >= ?", now).
		Order("week_number asc").
		Find(&as).Error
	return as, err
}

func (r *AssessmentRepository) Update(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

func (r *AssessmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Assessment{}, id).Error
}

func (r *AssessmentRepository) Publish(id uint, at time.Time) error {
	return r.DB.Model(&model.Assessment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_published": true,
			"published_at": at,
		}).Error
}
