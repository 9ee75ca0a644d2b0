package repository

import (
	"cptncf_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) ListStudents(name string, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.DB.Model(&model.User{}).
		Where("role = ?", model.Student).
		Where("disabled = ?", false)
	if name != "" {
		query = query.Where("(name LIKE ? OR email LIKE ?)", "%"+name+"%", "%"+name+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("name asc").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) ListStudentIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.User{}).
		Where("role = ?", model.Student).
		Where("disabled = ?", false).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepository) FindByGroup(groupID uint) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("group_id = ?", groupID).Order("name asc").Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateAttendance(userID uint, rate float64) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("attendance_rate", rate).
		Error
}

func (r *UserRepository) UpdateRotationRole(userID uint, role model.RotationRole) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("rotation_role", role).
		Error
}
