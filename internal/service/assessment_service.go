package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/repository"
	"cptncf_backend/internal/util"
	"cptncf_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	assessmentCacheKeyPrefix = "cptncf:assessment:"
	assessmentCacheTTL       = 10 * time.Minute
)

// AssessmentService manages assessments and their question catalogs. The
// assembled catalog (questions, options, rationales) is cached in Redis; any
// write to the assessment or its questions invalidates the entry.
type AssessmentService struct {
	AssessmentRepo *repository.AssessmentRepository
	QuestionRepo   *repository.QuestionRepository
	Redis          *redis.Client
}

func NewAssessmentService(
	assessmentRepo *repository.AssessmentRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
) *AssessmentService {
	return &AssessmentService{
		AssessmentRepo: assessmentRepo,
		QuestionRepo:   questionRepo,
		Redis:          rdb,
	}
}

func (s *AssessmentService) Create(a *model.Assessment) error {
	return s.AssessmentRepo.Create(a)
}

func (s *AssessmentService) FindByID(id uint) (*model.Assessment, error) {
	a, err := s.AssessmentRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssessmentNotFound
	}
	return a, err
}

// FindWithQuestions returns the assessment with its full catalog, served from
// cache when possible.
func (s *AssessmentService) FindWithQuestions(ctx context.Context, id uint) (*model.Assessment, error) {
	key := fmt.Sprintf("%s%d", assessmentCacheKeyPrefix, id)

	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, key).Result()
		if err == nil {
			var cached model.Assessment
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("assessment cache read failed", zap.Error(err))
		}
	}

	a, err := s.AssessmentRepo.FindWithQuestions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if payload, jsonErr := json.Marshal(a); jsonErr == nil {
			if err := s.Redis.Set(ctx, key, payload, assessmentCacheTTL).Err(); err != nil {
				logger.Log.Warn("assessment cache write failed", zap.Error(err))
			}
		}
	}

	return a, nil
}

func (s *AssessmentService) invalidate(ctx context.Context, id uint) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(ctx, fmt.Sprintf("%s%d", assessmentCacheKeyPrefix, id))
}

func (s *AssessmentService) Update(ctx context.Context, a *model.Assessment) error {
	if err := s.AssessmentRepo.Update(a); err != nil {
		return err
	}
	s.invalidate(ctx, a.ID)
	return nil
}

func (s *AssessmentService) Delete(ctx context.Context, id uint) error {
	if err := s.AssessmentRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *AssessmentService) Publish(ctx context.Context, id uint) error {
	if _, err := s.FindByID(id); err != nil {
		return err
	}
	if err := s.AssessmentRepo.Publish(id, time.Now()); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *AssessmentService) List(page, limit int) ([]model.Assessment, int64, error) {
	return s.AssessmentRepo.List(page, limit)
}

func (s *AssessmentService) ListAvailable() ([]model.Assessment, error) {
	return s.AssessmentRepo.ListAvailable(time.Now())
}

// AddQuestion attaches a question, with options and rationales, to an
// assessment. Exactly one rationale must be flagged correct and the correct
// answer must reference one of the supplied options by order.
func (s *AssessmentService) AddQuestion(ctx context.Context, q *model.Question) error {
	if _, err := s.FindByID(q.AssessmentID); err != nil {
		return err
	}

	correctRationales := 0
	for _, r := range q.Rationales {
		if r.IsCorrect {
			correctRationales++
		}
	}
	if correctRationales != 1 {
		return errors.New("exactly one rationale must be marked correct")
	}

	if err := s.QuestionRepo.Create(q); err != nil {
		return err
	}
	s.invalidate(ctx, q.AssessmentID)
	return nil
}

func (s *AssessmentService) UpdateQuestion(ctx context.Context, q *model.Question) error {
	if err := s.QuestionRepo.Update(q); err != nil {
		return err
	}
	s.invalidate(ctx, q.AssessmentID)
	return nil
}

func (s *AssessmentService) DeleteQuestion(ctx context.Context, id uint) error {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}
	if err := s.QuestionRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, q.AssessmentID)
	return nil
}

func (s *AssessmentService) QuestionsByCategory(category string) ([]model.Question, error) {
	return s.QuestionRepo.ListByCategory(category)
}
