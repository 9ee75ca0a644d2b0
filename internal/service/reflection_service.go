package service

import (
	"errors"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/repository"
	"cptncf_backend/internal/util"

	"gorm.io/gorm"
)

type ReflectionService struct {
	ReflectionRepo *repository.ReflectionRepository
}

func NewReflectionService(reflectionRepo *repository.ReflectionRepository) *ReflectionService {
	return &ReflectionService{ReflectionRepo: reflectionRepo}
}

// Submit stores a weekly reflection. One per student per week.
func (s *ReflectionService) Submit(reflection *model.Reflection) error {
	_, err := s.ReflectionRepo.FindByUserAndWeek(reflection.UserID, reflection.WeekNumber)
	if err == nil {
		return util.ErrDuplicateReflection
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.ReflectionRepo.Create(reflection)
}

func (s *ReflectionService) ListByUser(userID uint) ([]model.Reflection, error) {
	return s.ReflectionRepo.ListByUser(userID)
}

// Review sets the faculty quality score on a reflection.
func (s *ReflectionService) Review(id string, quality float64) error {
	reflection, err := s.ReflectionRepo.FindByID(id)
	if err != nil {
		return err
	}
	reflection.QualityScore = quality
	return s.ReflectionRepo.Update(reflection)
}
