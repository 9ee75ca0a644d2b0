package repository

import (
	"time"

	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type AlertRepository struct {
	DB *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{DB: db}
}

func (r *AlertRepository) Create(alert *model.InterventionAlert) error {
	return r.DB.Create(alert).Error
}

func (r *AlertRepository) FindByID(id string) (*model.InterventionAlert, error) {
	var alert model.InterventionAlert
	err := r.DB.Preload("Target").Where("id = ?", id).First(&alert).Error
	return &alert, err
}

func (r *AlertRepository) ListByStatus(status model.AlertStatus, page, limit int) ([]model.InterventionAlert, int64, error) {
	var alerts []model.InterventionAlert
	var total int64

	query := r.DB.Model(&model.InterventionAlert{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Target").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&alerts).Error
	return alerts, total, err
}

// FindPending returns the open alert for the target with the given reason, if
// any. Repeated detections update the open alert instead of stacking new ones.
func (r *AlertRepository) FindPending(targetID uint, reason string) (*model.InterventionAlert, error) {
	var alert model.InterventionAlert
	err := r.DB.
		Where("target_id = ? AND reason = ? AND status = ?", targetID, reason, model.AlertPending).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) Update(alert *model.InterventionAlert) error {
	return r.DB.Save(alert).Error
}

func (r *AlertRepository) Resolve(id string, notes string, at time.Time) error {
	return r.DB.Model(&model.InterventionAlert{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        model.AlertResolved,
			"faculty_notes": notes,
			"resolved_at":   at,
		}).Error
}
