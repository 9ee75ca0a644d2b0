package repository

import (
	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type PatternRepository struct {
	DB *gorm.DB
}

func NewPatternRepository(db *gorm.DB) *PatternRepository {
	return &PatternRepository{DB: db}
}

// ReplaceForStudent swaps the student's stored pattern set for the freshly
// detected one. Detection is recompute-and-replace: stale rows from earlier
// snapshots must not survive, so the delete covers every pattern type.
func (r *PatternRepository) ReplaceForStudent(studentID uint, patterns []model.GamingPattern) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", studentID).
			Delete(&model.GamingPattern{}).Error; err != nil {
			return err
		}
		if len(patterns) == 0 {
			return nil
		}
		return tx.Create(&patterns).Error
	})
}

func (r *PatternRepository) ListByStudent(studentID uint) ([]model.GamingPattern, error) {
	var patterns []model.GamingPattern
	err := r.DB.
		Where("student_id = ?", studentID).
		Order("detected_at desc").
		Find(&patterns).Error
	return patterns, err
}

func (r *PatternRepository) ListAll(page, limit int) ([]model.GamingPattern, int64, error) {
	var patterns []model.GamingPattern
	var total int64
	query := r.DB.Model(&model.GamingPattern{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("detected_at desc").Offset(offset).Limit(limit).Find(&patterns).Error
	return patterns, total, err
}

func (r *PatternRepository) ListHighConfidence(threshold float64) ([]model.GamingPattern, error) {
	var patterns []model.GamingPattern
	err := r.DB.
		Where("confidence > ?", threshold).
		Order("confidence desc").
		Find(&patterns).Error
	return patterns, err
}

// CountByType tallies stored patterns per pattern type for the class
// dashboard.
func (r *PatternRepository) CountByType() (map[model.PatternType]int64, error) {
	type row struct {
		PatternType model.PatternType
		Count       int64
	}
	var rows []row
	err := r.DB.Model(&model.GamingPattern{}).
		Select("pattern_type, COUNT(*) as count").
		Group("pattern_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.PatternType]int64, len(rows))
	for _, rw := range rows {
		counts[rw.PatternType] = rw.Count
	}
	return counts, nil
}
