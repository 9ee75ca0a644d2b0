package repository

import (
	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type ReflectionRepository struct {
	DB *gorm.DB
}

func NewReflectionRepository(db *gorm.DB) *ReflectionRepository {
	return &ReflectionRepository{DB: db}
}

func (r *ReflectionRepository) Create(reflection *model.Reflection) error {
	return r.DB.Create(reflection).Error
}

func (r *ReflectionRepository) FindByID(id string) (*model.Reflection, error) {
	var reflection model.Reflection
	err := r.DB.Where("id = ?", id).First(&reflection).Error
	return &reflection, err
}

func (r *ReflectionRepository) FindByUserAndWeek(userID uint, week int) (*model.Reflection, error) {
	var reflection model.Reflection
	err := r.DB.
		Where("user_id = ? AND week_number = ?", userID, week).
		First(&reflection).Error
	return &reflection, err
}

func (r *ReflectionRepository) ListByUser(userID uint) ([]model.Reflection, error) {
	var reflections []model.Reflection
	err := r.DB.
		Where("user_id = ?", userID).
		Order("week_number asc").
		Find(&reflections).Error
	return reflections, err
}

func (r *ReflectionRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Reflection{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// AverageQuality is the mean faculty quality score over the user's
// reflections; 0 when none are scored yet.
func (r *ReflectionRepository) AverageQuality(userID uint) (float64, error) {
	var avg *float64
	err := r.DB.Model(&model.Reflection{}).
		Where("user_id = ?", userID).
		Select("AVG(quality_score)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func (r *ReflectionRepository) Update(reflection *model.Reflection) error {
	return r.DB.Save(reflection).Error
}
