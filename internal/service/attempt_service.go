package service

import (
	"errors"
	"sync"
	"time"

	"cptncf_backend/internal/config"
	"cptncf_backend/internal/engine"
	"cptncf_backend/internal/model"
	"cptncf_backend/internal/repository"
	"cptncf_backend/internal/util"
	"cptncf_backend/pkg/logger"
	"cptncf_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService owns every live assessment session. The state machine itself
// lives in engine.Session; this layer adds the session registry, the one-second
// wall clock, persistence at terminal states and the detector feedback loop.
type AttemptService struct {
	AttemptRepo    *repository.AttemptRepository
	AssessmentRepo *repository.AssessmentRepository
	QuestionRepo   *repository.QuestionRepository
	Analytics      *AnalyticsService
	Cfg            *config.Config

	clock    engine.Clock
	detector *engine.Detector

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	session      *engine.Session
	stop         chan struct{}
	lastActivity time.Time
}

// SessionState is the snapshot handed to the frontend after every action.
type SessionState struct {
	AttemptID         string          `json:"attemptId"`
	Phase             engine.Phase    `json:"phase"`
	QuestionIndex     int             `json:"questionIndex"`
	TotalQuestions    int             `json:"totalQuestions"`
	Question          *model.Question `json:"question,omitempty"`
	SelectedAnswer    uint            `json:"selectedAnswer,omitempty"`
	LockedAnswer      uint            `json:"lockedAnswer,omitempty"`
	SelectedRationale uint            `json:"selectedRationale,omitempty"`
	CanProceed        bool            `json:"canProceed"`
	Progress          float64         `json:"progress"`
	TimeSpent         int             `json:"timeSpent"`
	TimeRemaining     int             `json:"timeRemaining"`
	Flagged           bool            `json:"flagged"`
	QuestionStatus    map[uint]string `json:"questionStatus"`
}

func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	assessmentRepo *repository.AssessmentRepository,
	questionRepo *repository.QuestionRepository,
	analytics *AnalyticsService,
	cfg *config.Config,
) *AttemptService {
	clock := engine.SystemClock()
	return &AttemptService{
		AttemptRepo:    attemptRepo,
		AssessmentRepo: assessmentRepo,
		QuestionRepo:   questionRepo,
		Analytics:      analytics,
		Cfg:            cfg,
		clock:          clock,
		detector:       engine.NewDetector(clock),
		sessions:       make(map[string]*liveSession),
	}
}

// Start opens a new attempt. Only one in-progress attempt per student and
// assessment is allowed; the availability window and publish flag gate entry.
func (s *AttemptService) Start(studentID, assessmentID uint) (*SessionState, error) {
	assessment, err := s.AssessmentRepo.FindWithQuestions(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}

	now := s.clock.Now()
	if !assessment.IsPublished ||
		(assessment.AvailableFrom != nil && now.Before(*assessment.AvailableFrom)) ||
		(assessment.AvailableUntil != nil && now.After(*assessment.AvailableUntil)) {
		return nil, util.ErrAssessmentClosed
	}

	if _, err := s.AttemptRepo.FindInProgress(studentID, assessmentID); err == nil {
		return nil, util.ErrAttemptInProgress
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attempt := &model.AssessmentAttempt{
		UUIDBase:     model.UUIDBase{ID: model.GenerateUUID()},
		AssessmentID: assessmentID,
		StudentID:    studentID,
		Status:       model.AttemptInProgress,
		StartedAt:    now,
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	session := engine.NewSession(s.clock, attempt.ID, studentID, *assessment, assessment.Questions)
	live := &liveSession{
		session:      session,
		stop:         make(chan struct{}),
		lastActivity: now,
	}

	s.mu.Lock()
	s.sessions[attempt.ID] = live
	s.mu.Unlock()

	go s.runTicker(attempt.ID, live)

	monitoring.AttemptsStarted.Inc()
	logger.Log.Info("attempt started",
		zap.String("attempt_id", attempt.ID),
		zap.Uint("student_id", studentID),
		zap.Uint("assessment_id", assessmentID))

	return s.snapshot(session), nil
}

// runTicker drives the session clock once per second and abandons sessions
// idle past the configured limit. It exits when the session goes terminal.
func (s *AttemptService) runTicker(attemptID string, live *liveSession) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	idleLimit := time.Duration(s.Cfg.Detection.SessionIdleMinutes) * time.Minute

	for {
		select {
		case <-live.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			live.session.Tick()
			idle := s.clock.Now().Sub(live.lastActivity)
			terminal := live.session.Terminal()
			if !terminal && idle > idleLimit {
				live.session.Abandon()
				terminal = true
				logger.Log.Warn("attempt abandoned after idle timeout",
					zap.String("attempt_id", attemptID),
					zap.Duration("idle", idle))
			}
			s.mu.Unlock()

			if terminal {
				s.finalize(attemptID)
				return
			}
		}
	}
}

func (s *AttemptService) withSession(attemptID string, fn func(*engine.Session)) (*SessionState, error) {
	s.mu.Lock()
	live, ok := s.sessions[attemptID]
	if !ok {
		s.mu.Unlock()
		return nil, util.ErrAttemptNotFound
	}

	fn(live.session)
	live.lastActivity = s.clock.Now()
	state := s.snapshot(live.session)
	terminal := live.session.Terminal()
	s.mu.Unlock()

	if terminal {
		s.finalize(attemptID)
	}
	return state, nil
}

func (s *AttemptService) SelectAnswer(attemptID string, optionID uint) (*SessionState, error) {
	return s.withSession(attemptID, func(session *engine.Session) {
		session.SelectAnswer(optionID)
	})
}

// LockAnswer freezes the provisional answer and persists the newly created
// ledger row right away, so a crash mid-attempt loses at most the question in
// flight. Finalize re-saves the full ledger under the same ids.
func (s *AttemptService) LockAnswer(attemptID string) (*SessionState, error) {
	var locked *model.ResponseRecord
	state, err := s.withSession(attemptID, func(session *engine.Session) {
		before := len(session.Responses())
		session.LockAnswer()
		if responses := session.Responses(); len(responses) > before {
			locked = &responses[len(responses)-1]
		}
	})
	if err == nil && locked != nil {
		if perr := s.AttemptRepo.SaveResponse(locked); perr != nil {
			logger.Log.Error("lock answer: response persist failed",
				zap.String("attempt_id", attemptID), zap.Error(perr))
		}
	}
	return state, err
}

func (s *AttemptService) SelectRationale(attemptID string, rationaleID uint) (*SessionState, error) {
	return s.withSession(attemptID, func(session *engine.Session) {
		session.SelectRationale(rationaleID)
	})
}

// SubmitRationale completes the current question, persists the mutated ledger
// row, and re-runs the response detectors over the session ledger so the flag
// state tracks the live attempt.
func (s *AttemptService) SubmitRationale(attemptID string) (*SessionState, error) {
	var completed *model.ResponseRecord
	state, err := s.withSession(attemptID, func(session *engine.Session) {
		q := session.CurrentQuestion()
		session.SubmitRationale()

		responses := session.Responses()
		if q != nil {
			for i := range responses {
				if responses[i].QuestionID == q.ID && responses[i].HasRationale() {
					completed = &responses[i]
					break
				}
			}
		}

		questions := session.Assessment().Questions
		patterns := engine.DedupePatterns(
			s.detector.DetectAll(responses, questions, nil, nil))
		session.SetPatterns(patterns)
	})
	if err == nil && completed != nil {
		if perr := s.AttemptRepo.SaveResponse(completed); perr != nil {
			logger.Log.Error("submit rationale: response persist failed",
				zap.String("attempt_id", attemptID), zap.Error(perr))
		}
	}
	return state, err
}

func (s *AttemptService) FlagForReview(attemptID string) (*SessionState, error) {
	return s.withSession(attemptID, func(session *engine.Session) {
		session.FlagForReview()
	})
}

func (s *AttemptService) NavigateTo(attemptID string, index int) (*SessionState, error) {
	return s.withSession(attemptID, func(session *engine.Session) {
		session.NavigateTo(index)
	})
}

func (s *AttemptService) Abandon(attemptID string) (*SessionState, error) {
	return s.withSession(attemptID, func(session *engine.Session) {
		session.Abandon()
	})
}

// State returns the current snapshot without mutating the session.
func (s *AttemptService) State(attemptID string) (*SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[attemptID]
	if !ok {
		return nil, util.ErrAttemptNotFound
	}
	return s.snapshot(live.session), nil
}

// finalize persists a terminal session and removes it from the registry.
// Safe to call more than once; only the first caller finds the session.
func (s *AttemptService) finalize(attemptID string) {
	s.mu.Lock()
	live, ok := s.sessions[attemptID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, attemptID)
	close(live.stop)
	session := live.session
	s.mu.Unlock()

	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		logger.Log.Error("finalize: attempt row missing", zap.String("attempt_id", attemptID), zap.Error(err))
		return
	}

	responses := session.Responses()
	questions := session.Assessment().Questions

	now := s.clock.Now()
	attempt.CompletedAt = &now
	attempt.TotalTimeSpent = session.TimeSpent()
	attempt.SuspiciousBehavior = session.Flagged()
	if session.Phase() == engine.PhaseAbandoned {
		attempt.Status = model.AttemptAbandoned
	} else {
		attempt.Status = model.AttemptComplete
		summary := engine.SummarizeAttempt(responses, questions)
		attempt.Score = summary.Score
		attempt.AnswerAccuracy = summary.AnswerAccuracy
		attempt.RationaleAccuracy = summary.RationaleAccuracy
	}

	if err := s.AttemptRepo.Finalize(attempt, responses); err != nil {
		logger.Log.Error("finalize: persist failed", zap.String("attempt_id", attemptID), zap.Error(err))
		return
	}

	monitoring.AttemptsFinished.WithLabelValues(string(attempt.Status)).Inc()
	logger.Log.Info("attempt finalized",
		zap.String("attempt_id", attemptID),
		zap.String("status", string(attempt.Status)),
		zap.Float64("score", attempt.Score))

	// Full re-detection over the persisted ledger, peers included.
	if s.Analytics != nil {
		if err := s.Analytics.RecomputeForStudent(session.StudentID()); err != nil {
			logger.Log.Error("finalize: detection failed",
				zap.Uint("student_id", session.StudentID()), zap.Error(err))
		}
	}
}

// Shutdown abandons every live session, persisting what it can. Called on
// server stop.
func (s *AttemptService) Shutdown() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id, live := range s.sessions {
		live.session.Abandon()
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.finalize(id)
	}
}

func (s *AttemptService) snapshot(session *engine.Session) *SessionState {
	statuses := make(map[uint]string, session.TotalQuestions())
	for _, q := range session.Assessment().Questions {
		statuses[q.ID] = session.QuestionStatus(q.ID)
	}

	return &SessionState{
		AttemptID:         session.AttemptID(),
		Phase:             session.Phase(),
		QuestionIndex:     session.Index(),
		TotalQuestions:    session.TotalQuestions(),
		Question:          session.CurrentQuestion(),
		SelectedAnswer:    session.SelectedAnswer(),
		LockedAnswer:      session.LockedAnswer(),
		SelectedRationale: session.SelectedRationale(),
		CanProceed:        session.CanProceed(),
		Progress:          session.Progress(),
		TimeSpent:         session.TimeSpent(),
		TimeRemaining:     session.TimeRemaining(),
		Flagged:           session.Flagged(),
		QuestionStatus:    statuses,
	}
}

// ListByStudent returns the student's persisted attempt history.
func (s *AttemptService) ListByStudent(studentID uint) ([]model.AssessmentAttempt, error) {
	return s.AttemptRepo.ListByStudent(studentID)
}

func (s *AttemptService) FindByID(attemptID string) (*model.AssessmentAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// AssessmentResults is the faculty view of every attempt on one assessment.
type AssessmentResults struct {
	Assessment            *model.Assessment         `json:"assessment"`
	Attempts              []model.AssessmentAttempt `json:"attempts"`
	AverageScore          float64                   `json:"averageScore"`
	CompletedCount        int                       `json:"completedCount"`
	SuspiciousCount       int                       `json:"suspiciousCount"`
	PerformanceByCategory map[string]float64        `json:"performanceByCategory"`
}

// ResultsByAssessment collects all persisted attempts for an assessment with
// class-level aggregates over the completed ones.
func (s *AttemptService) ResultsByAssessment(assessmentID uint) (*AssessmentResults, error) {
	assessment, err := s.AssessmentRepo.FindByID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListByAssessment(assessmentID)
	if err != nil {
		return nil, err
	}
	questions, err := s.QuestionRepo.ListByAssessment(assessmentID)
	if err != nil {
		return nil, err
	}

	return summarizeResults(assessment, attempts, questions), nil
}

// summarizeResults aggregates the completed attempts; in-progress and
// abandoned ones are listed but excluded from the numbers.
func summarizeResults(assessment *model.Assessment, attempts []model.AssessmentAttempt, questions []model.Question) *AssessmentResults {
	results := &AssessmentResults{
		Assessment: assessment,
		Attempts:   attempts,
	}
	var scoreSum float64
	var responses []model.ResponseRecord
	for _, at := range attempts {
		if at.Status != model.AttemptComplete {
			continue
		}
		results.CompletedCount++
		scoreSum += at.Score
		if at.SuspiciousBehavior {
			results.SuspiciousCount++
		}
		responses = append(responses, at.Responses...)
	}
	if results.CompletedCount > 0 {
		results.AverageScore = scoreSum / float64(results.CompletedCount)
	}
	results.PerformanceByCategory = categoryAccuracy(responses, questions)
	return results
}
