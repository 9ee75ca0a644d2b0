package service

import (
	"encoding/json"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/repository"
	"cptncf_backend/internal/util"
	"cptncf_backend/pkg/logger"

	"go.uber.org/zap"
)

// PeerEvaluationService scores and stores peer-teaching rubrics. A rubric's
// total is the sum of its four sections minus applied negative-indicator
// deductions, floored at zero.
type PeerEvaluationService struct {
	EvalRepo  *repository.PeerEvaluationRepository
	UserRepo  *repository.UserRepository
	Analytics *AnalyticsService
}

func NewPeerEvaluationService(
	evalRepo *repository.PeerEvaluationRepository,
	userRepo *repository.UserRepository,
	analytics *AnalyticsService,
) *PeerEvaluationService {
	return &PeerEvaluationService{
		EvalRepo:  evalRepo,
		UserRepo:  userRepo,
		Analytics: analytics,
	}
}

// Score computes the rubric total from the section scores and the applied
// deductions.
func Score(e *model.PeerEvaluation) (float64, error) {
	if e.ContentMastery < 0 || e.ContentMastery > model.MaxContentMastery ||
		e.ProfessionalApplication < 0 || e.ProfessionalApplication > model.MaxProfessionalApplication ||
		e.TeachingMethodology < 0 || e.TeachingMethodology > model.MaxTeachingMethodology ||
		e.ProfessionalDelivery < 0 || e.ProfessionalDelivery > model.MaxProfessionalDelivery {
		return 0, util.ErrSectionOutOfRange
	}

	total := float64(e.ContentMastery + e.ProfessionalApplication +
		e.TeachingMethodology + e.ProfessionalDelivery)

	if len(e.NegativeIndicators) > 0 {
		var indicators []model.NegativeIndicator
		if err := json.Unmarshal(e.NegativeIndicators, &indicators); err != nil {
			return 0, err
		}
		for _, ind := range indicators {
			if ind.Applied {
				total -= float64(ind.Deduction)
			}
		}
	}

	if total < 0 {
		total = 0
	}
	return total, nil
}

// Submit validates and stores one rubric, then re-runs detection for both
// sides of the evaluation: reciprocal inflation implicates the evaluator and
// the teacher alike.
func (s *PeerEvaluationService) Submit(e *model.PeerEvaluation) error {
	if e.EvaluatorID == e.TeacherID {
		return util.ErrSelfEvaluation
	}
	if _, err := s.UserRepo.FindByID(e.TeacherID); err != nil {
		return util.ErrUserNotFound
	}

	if !e.IsFacultyBenchmark {
		exists, err := s.EvalRepo.Exists(e.EvaluatorID, e.TeacherID, e.WeekNumber)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrDuplicateEvaluation
		}
	}

	total, err := Score(e)
	if err != nil {
		return err
	}
	e.TotalScore = total

	if err := s.EvalRepo.Create(e); err != nil {
		return err
	}

	logger.Log.Info("peer evaluation submitted",
		zap.Uint("evaluator_id", e.EvaluatorID),
		zap.Uint("teacher_id", e.TeacherID),
		zap.Float64("total", e.TotalScore),
		zap.Bool("benchmark", e.IsFacultyBenchmark))

	if s.Analytics != nil {
		for _, id := range []uint{e.EvaluatorID, e.TeacherID} {
			if err := s.Analytics.RecomputeForStudent(id); err != nil {
				logger.Log.Error("post-evaluation detection failed",
					zap.Uint("student_id", id), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *PeerEvaluationService) Received(teacherID uint) ([]model.PeerEvaluation, error) {
	return s.EvalRepo.ListReceived(teacherID)
}

func (s *PeerEvaluationService) Given(evaluatorID uint) ([]model.PeerEvaluation, error) {
	return s.EvalRepo.ListByEvaluator(evaluatorID)
}

func (s *PeerEvaluationService) ByWeek(week int) ([]model.PeerEvaluation, error) {
	return s.EvalRepo.ListByWeek(week)
}
