package service

import (
	"errors"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/repository"
	"cptncf_backend/internal/util"
	"cptncf_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GroupService manages study groups and the weekly teacher/facilitator/
// assessor rotation.
type GroupService struct {
	GroupRepo *repository.GroupRepository
	UserRepo  *repository.UserRepository
}

func NewGroupService(groupRepo *repository.GroupRepository, userRepo *repository.UserRepository) *GroupService {
	return &GroupService{GroupRepo: groupRepo, UserRepo: userRepo}
}

func (s *GroupService) Create(group *model.StudyGroup) error {
	return s.GroupRepo.Create(group)
}

func (s *GroupService) FindByID(id uint) (*model.StudyGroup, error) {
	group, err := s.GroupRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("group not found")
	}
	return group, err
}

func (s *GroupService) List() ([]model.StudyGroup, error) {
	return s.GroupRepo.List()
}

func (s *GroupService) AssignMember(groupID, userID uint, role model.RotationRole) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	if user.Role != model.Student {
		return util.ErrPermissionDenied
	}
	return s.GroupRepo.AssignMember(groupID, userID, role)
}

func (s *GroupService) RemoveMember(userID uint) error {
	return s.GroupRepo.RemoveMember(userID)
}

// Rotate advances every member's rotation role one step
// (teacher -> facilitator -> assessor -> teacher) and bumps the group's
// rotation number.
func (s *GroupService) Rotate(groupID uint) error {
	group, err := s.GroupRepo.FindByID(groupID)
	if err != nil {
		return err
	}
	members, err := s.UserRepo.FindByGroup(groupID)
	if err != nil {
		return err
	}

	next := map[model.RotationRole]model.RotationRole{
		model.RotationTeacher:     model.RotationFacilitator,
		model.RotationFacilitator: model.RotationAssessor,
		model.RotationAssessor:    model.RotationTeacher,
	}

	for _, member := range members {
		role, ok := next[member.RotationRole]
		if !ok {
			role = model.RotationTeacher
		}
		if err := s.UserRepo.UpdateRotationRole(member.ID, role); err != nil {
			return err
		}
	}

	group.RotationNumber++
	if err := s.GroupRepo.Update(group); err != nil {
		return err
	}

	logger.Log.Info("group rotated",
		zap.Uint("group_id", groupID),
		zap.Int("rotation", group.RotationNumber))
	return nil
}
