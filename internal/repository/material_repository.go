package repository

import (
	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type MaterialRepository struct {
	DB *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{DB: db}
}

func (r *MaterialRepository) Create(material *model.TeachingMaterial) error {
	return r.DB.Create(material).Error
}

func (r *MaterialRepository) FindByID(id string) (*model.TeachingMaterial, error) {
	var material model.TeachingMaterial
	err := r.DB.Where("id = ?", id).First(&material).Error
	return &material, err
}

func (r *MaterialRepository) ListByUploader(uploaderID uint) ([]model.TeachingMaterial, error) {
	var materials []model.TeachingMaterial
	err := r.DB.
		Where("uploader_id = ?", uploaderID).
		Order("submitted_at desc").
		Find(&materials).Error
	return materials, err
}

func (r *MaterialRepository) ListByGroupAndWeek(groupID uint, week int) ([]model.TeachingMaterial, error) {
	var materials []model.TeachingMaterial
	err := r.DB.
		Where("group_id = ? AND week_number = ?", groupID, week).
		Order("submitted_at desc").
		Find(&materials).Error
	return materials, err
}

func (r *MaterialRepository) Update(material *model.TeachingMaterial) error {
	return r.DB.Save(material).Error
}

func (r *MaterialRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.TeachingMaterial{}).Error
}
