package service

import (
	"errors"

	"cptncf_backend/internal/engine"
	"cptncf_backend/internal/model"
	"cptncf_backend/internal/repository"
	"cptncf_backend/internal/util"
	"cptncf_backend/pkg/logger"
	"cptncf_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GradeService assembles the calculator's input snapshot from the
// repositories, runs it and stores the result. Grades are derived data:
// recompute is always safe and always replaces the stored row.
type GradeService struct {
	AttemptRepo    *repository.AttemptRepository
	QuestionRepo   *repository.QuestionRepository
	AssessmentRepo *repository.AssessmentRepository
	EvalRepo       *repository.PeerEvaluationRepository
	PatternRepo    *repository.PatternRepository
	GradeRepo      *repository.GradeRepository
	ReflectionRepo *repository.ReflectionRepository
	UserRepo       *repository.UserRepository
	GroupRepo      *repository.GroupRepository

	calculator *engine.Calculator
}

func NewGradeService(
	attemptRepo *repository.AttemptRepository,
	questionRepo *repository.QuestionRepository,
	assessmentRepo *repository.AssessmentRepository,
	evalRepo *repository.PeerEvaluationRepository,
	patternRepo *repository.PatternRepository,
	gradeRepo *repository.GradeRepository,
	reflectionRepo *repository.ReflectionRepository,
	userRepo *repository.UserRepository,
	groupRepo *repository.GroupRepository,
) *GradeService {
	return &GradeService{
		AttemptRepo:    attemptRepo,
		QuestionRepo:   questionRepo,
		AssessmentRepo: assessmentRepo,
		EvalRepo:       evalRepo,
		PatternRepo:    patternRepo,
		GradeRepo:      gradeRepo,
		ReflectionRepo: reflectionRepo,
		UserRepo:       userRepo,
		GroupRepo:      groupRepo,
		calculator:     engine.NewCalculator(),
	}
}

func (s *GradeService) buildInput(studentID uint) (engine.GradeInput, error) {
	in := engine.GradeInput{StudentID: studentID}

	user, err := s.UserRepo.FindByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return in, util.ErrUserNotFound
		}
		return in, err
	}

	if in.Responses, err = s.AttemptRepo.ListResponsesByStudent(studentID); err != nil {
		return in, err
	}
	if in.Questions, err = s.QuestionRepo.ListAll(); err != nil {
		return in, err
	}
	if in.Assessments, err = s.AssessmentRepo.ListAll(); err != nil {
		return in, err
	}
	if in.EvaluationsReceived, err = s.EvalRepo.ListReceived(studentID); err != nil {
		return in, err
	}
	if in.FacultyBenchmarks, err = s.EvalRepo.ListBenchmarks(studentID); err != nil {
		return in, err
	}
	if in.EvaluationsGiven, err = s.EvalRepo.ListByEvaluator(studentID); err != nil {
		return in, err
	}
	if in.Patterns, err = s.PatternRepo.ListByStudent(studentID); err != nil {
		return in, err
	}

	if user.GroupID != nil {
		if in.GroupMemberIDs, err = s.GroupRepo.MemberIDs(*user.GroupID); err != nil {
			return in, err
		}
		if in.GroupResponses, err = s.AttemptRepo.ListResponsesByStudents(in.GroupMemberIDs); err != nil {
			return in, err
		}
	}

	in.AttendanceRate = user.AttendanceRate

	count, err := s.ReflectionRepo.CountByUser(studentID)
	if err != nil {
		return in, err
	}
	in.ReflectionCount = int(count)
	if in.ReflectionQuality, err = s.ReflectionRepo.AverageQuality(studentID); err != nil {
		return in, err
	}

	return in, nil
}

// ComputeForStudent recalculates the student's grade and upserts the stored
// record.
func (s *GradeService) ComputeForStudent(studentID uint) (*engine.GradeResult, error) {
	in, err := s.buildInput(studentID)
	if err != nil {
		return nil, err
	}

	result := s.calculator.Calculate(in)

	record := &model.GradeRecord{
		StudentID:        studentID,
		Quizzes:          result.Components.Quizzes,
		Exams:            result.Components.Exams,
		Final:            result.Components.Final,
		Teaching:         result.Components.Teaching,
		GroupPerformance: result.Components.GroupPerformance,
		Engagement:       result.Components.Engagement,
		FeedbackQuality:  result.Components.FeedbackQuality,
		Reflection:       result.Components.Reflection,
		GamingPenalty:    result.GamingPenalty,
		FinalGrade:       result.FinalGrade,
		LetterGrade:      result.LetterGrade,
	}
	if err := s.GradeRepo.Upsert(record); err != nil {
		return nil, err
	}

	monitoring.GradesComputed.Inc()
	logger.Log.Info("grade computed",
		zap.Uint("student_id", studentID),
		zap.Float64("final_grade", result.FinalGrade),
		zap.String("letter", result.LetterGrade))

	return &result, nil
}

// ComputeAll recalculates every active student. Used for the end-of-rotation
// export.
func (s *GradeService) ComputeAll() error {
	ids, err := s.UserRepo.ListStudentIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.ComputeForStudent(id); err != nil {
			logger.Log.Error("grade recompute failed", zap.Uint("student_id", id), zap.Error(err))
		}
	}
	return nil
}

// StoredGrade returns the persisted record without recomputing.
func (s *GradeService) StoredGrade(studentID uint) (*model.GradeRecord, error) {
	return s.GradeRepo.FindByStudent(studentID)
}

func (s *GradeService) ListAll(page, limit int) ([]model.GradeRecord, int64, error) {
	return s.GradeRepo.ListAll(page, limit)
}

// ReportText recomputes and renders the plain-text faculty breakdown.
func (s *GradeService) ReportText(studentID uint) (string, error) {
	result, err := s.ComputeForStudent(studentID)
	if err != nil {
		return "", err
	}
	return s.calculator.Report(*result), nil
}
