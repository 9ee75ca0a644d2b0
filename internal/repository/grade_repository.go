package repository

import (
	"errors"

	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type GradeRepository struct {
	DB *gorm.DB
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{DB: db}
}

// Upsert writes the recomputed grade, replacing any existing row for the
// student. Grade rows are derived data and never edited in place.
func (r *GradeRepository) Upsert(record *model.GradeRecord) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.GradeRecord
		err := tx.Where("student_id = ?", record.StudentID).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(record).Error
			}
			return err
		}
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		return tx.Save(record).Error
	})
}

func (r *GradeRepository) FindByStudent(studentID uint) (*model.GradeRecord, error) {
	var record model.GradeRecord
	err := r.DB.Where("student_id = ?", studentID).First(&record).Error
	return &record, err
}

func (r *GradeRepository) ListAll(page, limit int) ([]model.GradeRecord, int64, error) {
	var records []model.GradeRecord
	var total int64
	query := r.DB.Model(&model.GradeRecord{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Student").
		Order("final_grade desc").
		Offset(offset).Limit(limit).
		Find(&records).Error
	return records, total, err
}
