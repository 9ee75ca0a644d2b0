package service

import (
	"errors"
	"fmt"
	"sort"

	"cptncf_backend/internal/config"
	"cptncf_backend/internal/engine"
	"cptncf_backend/internal/model"
	"cptncf_backend/internal/repository"
	"cptncf_backend/pkg/logger"
	"cptncf_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnalyticsService runs the gaming detectors over persisted data and turns
// high-confidence patterns into faculty intervention alerts. Detection is
// recompute-and-replace: each run rebuilds the student's stored pattern set
// from the current ledger, so withdrawn signals disappear on their own.
type AnalyticsService struct {
	AttemptRepo    *repository.AttemptRepository
	QuestionRepo   *repository.QuestionRepository
	AssessmentRepo *repository.AssessmentRepository
	EvalRepo       *repository.PeerEvaluationRepository
	PatternRepo    *repository.PatternRepository
	AlertRepo      *repository.AlertRepository
	UserRepo       *repository.UserRepository
	Cfg            *config.Config

	detector *engine.Detector
}

func NewAnalyticsService(
	attemptRepo *repository.AttemptRepository,
	questionRepo *repository.QuestionRepository,
	assessmentRepo *repository.AssessmentRepository,
	evalRepo *repository.PeerEvaluationRepository,
	patternRepo *repository.PatternRepository,
	alertRepo *repository.AlertRepository,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *AnalyticsService {
	return &AnalyticsService{
		AttemptRepo:    attemptRepo,
		QuestionRepo:   questionRepo,
		AssessmentRepo: assessmentRepo,
		EvalRepo:       evalRepo,
		PatternRepo:    patternRepo,
		AlertRepo:      alertRepo,
		UserRepo:       userRepo,
		Cfg:            cfg,
		detector:       engine.NewDetector(engine.SystemClock()),
	}
}

// RecomputeForStudent re-runs every detector over the student's current
// snapshot, replaces their stored pattern set and raises alerts as needed.
func (s *AnalyticsService) RecomputeForStudent(studentID uint) error {
	responses, err := s.AttemptRepo.ListResponsesByStudent(studentID)
	if err != nil {
		return err
	}
	questions, err := s.QuestionRepo.ListAll()
	if err != nil {
		return err
	}
	evaluations, err := s.EvalRepo.ListAll()
	if err != nil {
		return err
	}
	scores, err := s.AttemptRepo.AverageScores()
	if err != nil {
		return err
	}

	detected := engine.DedupePatterns(
		s.detector.DetectAll(responses, questions, evaluations, scores))

	var mine []model.GamingPattern
	for _, p := range detected {
		if p.StudentID == studentID {
			mine = append(mine, p)
		}
	}

	if err := s.PatternRepo.ReplaceForStudent(studentID, mine); err != nil {
		return err
	}

	for _, p := range mine {
		monitoring.PatternsDetected.WithLabelValues(string(p.PatternType)).Inc()
	}
	logger.Log.Debug("detection recomputed",
		zap.Uint("student_id", studentID),
		zap.Int("patterns", len(mine)))

	return s.raiseAlerts(mine)
}

// SweepAll recomputes detection for the whole cohort. Peer-evaluation driven
// patterns can implicate students who have not acted recently, so the app runs
// this on an interval as well as after writes.
func (s *AnalyticsService) SweepAll() error {
	ids, err := s.UserRepo.ListStudentIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.RecomputeForStudent(id); err != nil {
			logger.Log.Error("sweep: recompute failed", zap.Uint("student_id", id), zap.Error(err))
		}
	}
	return nil
}

// alertDecision maps a pattern confidence onto the alerting policy: no alert
// at or below the alert threshold, high priority strictly above the critical
// threshold, medium otherwise.
func alertDecision(confidence float64, cfg config.DetectionConfig) (bool, model.AlertPriority) {
	if confidence <= cfg.AlertConfidence {
		return false, ""
	}
	if confidence > cfg.CriticalConfidence {
		return true, model.AlertHigh
	}
	return true, model.AlertMedium
}

// refreshOrNewAlert updates a pending alert in place, or builds a fresh
// pending one when none exists. The second return reports whether the alert
// is new.
func refreshOrNewAlert(existing *model.InterventionAlert, studentID uint, reason string, priority model.AlertPriority) (*model.InterventionAlert, bool) {
	if existing != nil {
		existing.Priority = priority
		return existing, false
	}
	return &model.InterventionAlert{
		Type:     "individual",
		TargetID: studentID,
		Reason:   reason,
		Priority: priority,
		Status:   model.AlertPending,
	}, true
}

// raiseAlerts opens or refreshes a pending alert for each pattern above the
// configured confidence threshold. An existing pending alert for the same
// pattern is updated rather than duplicated.
func (s *AnalyticsService) raiseAlerts(patterns []model.GamingPattern) error {
	for _, p := range patterns {
		emit, priority := alertDecision(p.Confidence, s.Cfg.Detection)
		if !emit {
			continue
		}

		reason := alertReason(p.PatternType)
		existing, err := s.AlertRepo.FindPending(p.StudentID, reason)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			existing = nil
		}

		alert, created := refreshOrNewAlert(existing, p.StudentID, reason, priority)
		if !created {
			if err := s.AlertRepo.Update(alert); err != nil {
				return err
			}
			continue
		}
		if err := s.AlertRepo.Create(alert); err != nil {
			return err
		}
		monitoring.AlertsRaised.Inc()
		logger.Log.Warn("intervention alert raised",
			zap.Uint("student_id", p.StudentID),
			zap.String("pattern", string(p.PatternType)),
			zap.Float64("confidence", p.Confidence))
	}
	return nil
}

func alertReason(t model.PatternType) string {
	switch t {
	case model.PatternRationaleMining:
		return "Rationale accuracy far exceeds answer accuracy; responses suggest external lookup during the rationale phase"
	case model.PatternAnswerRationaleMismatch:
		return "Answer and rationale correctness frequently disagree, indicating guessing in one of the phases"
	case model.PatternRapidResponse:
		return "Majority of answers locked in under five seconds"
	case model.PatternReciprocalInflation:
		return "Mutually inflated peer-teaching evaluations relative to test performance"
	case model.PatternNoVariance:
		return "Peer evaluations show no score variance across different teachers"
	}
	return fmt.Sprintf("Detected pattern: %s", t)
}

// InterventionPlan is faculty-facing guidance attached to a student's current
// pattern set.
type InterventionPlan struct {
	StudentID       uint                  `json:"studentId"`
	Patterns        []model.GamingPattern `json:"patterns"`
	Recommendations []string              `json:"recommendations"`
}

func (s *AnalyticsService) InterventionsForStudent(studentID uint) (*InterventionPlan, error) {
	patterns, err := s.PatternRepo.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}

	plan := &InterventionPlan{StudentID: studentID, Patterns: patterns}
	for _, p := range patterns {
		plan.Recommendations = append(plan.Recommendations, recommendation(p.PatternType))
	}
	return plan, nil
}

func recommendation(t model.PatternType) string {
	switch t {
	case model.PatternRationaleMining:
		return "Schedule a one-on-one oral check: ask the student to explain the reasoning behind recent answers without references at hand"
	case model.PatternAnswerRationaleMismatch:
		return "Review the two-phase workflow with the student; mismatched phases usually mean one phase is being guessed"
	case model.PatternRapidResponse:
		return "Discuss pacing expectations and consider proctoring the next attempt"
	case model.PatternReciprocalInflation:
		return "Re-pair the students for the next rotation and compare their rubrics against a faculty benchmark"
	case model.PatternNoVariance:
		return "Walk through the rubric with the evaluator and require written justification per section"
	}
	return "Review recent activity with the student"
}

func (s *AnalyticsService) PatternsForStudent(studentID uint) ([]model.GamingPattern, error) {
	return s.PatternRepo.ListByStudent(studentID)
}

func (s *AnalyticsService) ListPatterns(page, limit int) ([]model.GamingPattern, int64, error) {
	return s.PatternRepo.ListAll(page, limit)
}

func (s *AnalyticsService) ListAlerts(status model.AlertStatus, page, limit int) ([]model.InterventionAlert, int64, error) {
	return s.AlertRepo.ListByStatus(status, page, limit)
}

func (s *AnalyticsService) AcknowledgeAlert(id string) error {
	alert, err := s.AlertRepo.FindByID(id)
	if err != nil {
		return err
	}
	alert.Status = model.AlertAcknowledged
	return s.AlertRepo.Update(alert)
}

func (s *AnalyticsService) ResolveAlert(id, notes string) error {
	return s.AlertRepo.Resolve(id, notes, engine.SystemClock().Now())
}

// ClassWeekTrend aggregates the completed attempts of one course week.
type ClassWeekTrend struct {
	Week               int     `json:"week"`
	AverageScore       float64 `json:"averageScore"`
	AnswerAccuracy     float64 `json:"answerAccuracy"`
	RationaleAccuracy  float64 `json:"rationaleAccuracy"`
	StudentsCompleted  int     `json:"studentsCompleted"`
	SuspiciousAttempts int     `json:"suspiciousAttempts"`
}

// PatternStat is one row of the pattern-type breakdown.
type PatternStat struct {
	Type  model.PatternType `json:"type"`
	Count int64             `json:"count"`
}

// ClassAnalytics is the faculty dashboard aggregate: weekly score trends,
// class-wide category accuracy, per-assessment-type averages, and the stored
// pattern breakdown.
type ClassAnalytics struct {
	WeeklyTrends           []ClassWeekTrend                 `json:"weeklyTrends"`
	PerformanceByCategory  map[string]float64               `json:"performanceByCategory"`
	AverageScoreByType     map[model.AssessmentType]float64 `json:"averageScoreByType"`
	PatternCounts          []PatternStat                    `json:"patternCounts"`
	HighConfidencePatterns []model.GamingPattern            `json:"highConfidencePatterns"`
}

// ClassOverview builds the cohort-wide analytics snapshot from the current
// ledger and pattern store.
func (s *AnalyticsService) ClassOverview() (*ClassAnalytics, error) {
	out := &ClassAnalytics{
		PerformanceByCategory: make(map[string]float64),
		AverageScoreByType:    make(map[model.AssessmentType]float64),
	}

	byWeek := make(map[int][]model.AssessmentAttempt)

	for _, typ := range []model.AssessmentType{model.AssessmentQuiz, model.AssessmentExam, model.AssessmentFinal} {
		assessments, err := s.AssessmentRepo.ListByType(typ)
		if err != nil {
			return nil, err
		}

		var typeSum float64
		var typeCount int
		for _, a := range assessments {
			attempts, err := s.AttemptRepo.ListByAssessment(a.ID)
			if err != nil {
				return nil, err
			}
			byWeek[a.WeekNumber] = append(byWeek[a.WeekNumber], attempts...)
			for _, at := range attempts {
				if at.Status != model.AttemptComplete {
					continue
				}
				typeSum += at.Score
				typeCount++
			}
		}
		if typeCount > 0 {
			out.AverageScoreByType[typ] = typeSum / float64(typeCount)
		}
	}

	out.WeeklyTrends = weeklyTrends(byWeek)

	questions, err := s.QuestionRepo.ListAll()
	if err != nil {
		return nil, err
	}
	studentIDs, err := s.UserRepo.ListStudentIDs()
	if err != nil {
		return nil, err
	}
	byStudent, err := s.AttemptRepo.ListResponsesByStudents(studentIDs)
	if err != nil {
		return nil, err
	}
	var responses []model.ResponseRecord
	for _, rs := range byStudent {
		responses = append(responses, rs...)
	}
	out.PerformanceByCategory = categoryAccuracy(responses, questions)

	counts, err := s.PatternRepo.CountByType()
	if err != nil {
		return nil, err
	}
	for _, typ := range []model.PatternType{
		model.PatternRationaleMining,
		model.PatternAnswerRationaleMismatch,
		model.PatternRapidResponse,
		model.PatternReciprocalInflation,
		model.PatternNoVariance,
	} {
		if c, ok := counts[typ]; ok {
			out.PatternCounts = append(out.PatternCounts, PatternStat{Type: typ, Count: c})
		}
	}

	high, err := s.PatternRepo.ListHighConfidence(s.Cfg.Detection.AlertConfidence)
	if err != nil {
		return nil, err
	}
	out.HighConfidencePatterns = high

	return out, nil
}

// weeklyTrends folds completed attempts into one trend row per course week,
// in week order. Weeks where nothing was completed produce no row.
func weeklyTrends(byWeek map[int][]model.AssessmentAttempt) []ClassWeekTrend {
	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	var trends []ClassWeekTrend
	for _, w := range weeks {
		row := ClassWeekTrend{Week: w}
		var score, answer, rationale float64
		for _, at := range byWeek[w] {
			if at.Status != model.AttemptComplete {
				continue
			}
			score += at.Score
			answer += at.AnswerAccuracy
			rationale += at.RationaleAccuracy
			row.StudentsCompleted++
			if at.SuspiciousBehavior {
				row.SuspiciousAttempts++
			}
		}
		if row.StudentsCompleted == 0 {
			continue
		}
		n := float64(row.StudentsCompleted)
		row.AverageScore = score / n
		row.AnswerAccuracy = answer / n
		row.RationaleAccuracy = rationale / n
		trends = append(trends, row)
	}
	return trends
}

// categoryAccuracy returns the percent of locked answers that were correct,
// per question category. Responses to unknown questions are skipped.
func categoryAccuracy(responses []model.ResponseRecord, questions []model.Question) map[string]float64 {
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	type catAcc struct{ correct, total int }
	accs := make(map[string]*catAcc)
	for _, r := range responses {
		q, ok := byID[r.QuestionID]
		if !ok {
			continue
		}
		acc := accs[q.Category]
		if acc == nil {
			acc = &catAcc{}
			accs[q.Category] = acc
		}
		acc.total++
		if r.AnswerID == q.CorrectAnswerID {
			acc.correct++
		}
	}

	out := make(map[string]float64, len(accs))
	for cat, acc := range accs {
		out[cat] = float64(acc.correct) / float64(acc.total) * 100
	}
	return out
}
