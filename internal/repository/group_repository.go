package repository

import (
	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) Create(group *model.StudyGroup) error {
	return r.DB.Create(group).Error
}

func (r *GroupRepository) FindByID(id uint) (*model.StudyGroup, error) {
	var group model.StudyGroup
	err := r.DB.Preload("Members").First(&group, id).Error
	return &group, err
}

func (r *GroupRepository) List() ([]model.StudyGroup, error) {
	var groups []model.StudyGroup
	err := r.DB.Preload("Members").Order("rotation_number asc, name asc").Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) Update(group *model.StudyGroup) error {
	return r.DB.Save(group).Error
}

// AssignMember moves a student into the group and sets their rotation role in
// one transaction.
func (r *GroupRepository) AssignMember(groupID, userID uint, role model.RotationRole) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&model.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"group_id":      groupID,
				"rotation_role": role,
			}).Error
	})
}

func (r *GroupRepository) RemoveMember(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"group_id":      nil,
			"rotation_role": "",
		}).Error
}

// MemberIDs returns the ids of the group's members, excluding disabled users.
func (r *GroupRepository) MemberIDs(groupID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.User{}).
		Where("group_id = ?", groupID).
		Where("disabled = ?", false).
		Pluck("id", &ids).Error
	return ids, err
}
