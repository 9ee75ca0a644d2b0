package service

import (
	"errors"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/repository"
	"cptncf_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) FindByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

func (s *UserService) ListStudents(name string, page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.ListStudents(name, page, limit)
}

// SetAttendance records the faculty-maintained attendance rate, 0..1.
func (s *UserService) SetAttendance(userID uint, rate float64) error {
	if rate < 0 || rate > 1 {
		return errors.New("attendance rate must be between 0 and 1")
	}
	if _, err := s.FindByID(userID); err != nil {
		return err
	}
	return s.UserRepo.UpdateAttendance(userID, rate)
}

func (s *UserService) Disable(userID uint) error {
	user, err := s.FindByID(userID)
	if err != nil {
		return err
	}
	user.Disabled = true
	return s.UserRepo.Update(user)
}
