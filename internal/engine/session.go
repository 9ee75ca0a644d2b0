package engine

import (
	"time"

	"cptncf_backend/internal/model"
)

// Phase is the state of a two-phase attempt for the current question.
type Phase string

const (
	PhaseAnswer    Phase = "answer"
	PhaseRationale Phase = "rationale"
	PhaseComplete  Phase = "complete"
	PhaseAbandoned Phase = "abandoned"
)

// Rapid-click heuristic. Coarse, independent of the batch detectors: more than
// rapidClickLimit consecutive selections under rapidClickWindow apart marks the
// session suspicious.
const (
	rapidClickWindow = 500 * time.Millisecond
	rapidClickLimit  = 5
)

// QuestionUnanswered/Answered/Completed describe a question's ledger state.
const (
	QuestionUnanswered = "unanswered"
	QuestionAnswered   = "answered"
	QuestionCompleted  = "completed"
)

// Session drives one student's attempt through per-question answer-lock and
// rationale cycles. It is the sole owner of the in-progress response ledger
// rows until the attempt reaches a terminal phase. Every invalid transition is
// a silent no-op, never an error: callers rely on "the action was ignored".
//
// Session is not safe for concurrent use; the owning service serializes
// actions per attempt.
type Session struct {
	clock Clock

	attemptID  string
	studentID  uint
	assessment model.Assessment
	questions  []model.Question

	phase Phase
	index int

	selectedAnswer    uint
	lockedAnswer      uint
	selectedRationale uint
	responses         []*model.ResponseRecord

	timeSpent     int
	timeRemaining int
	questionStart time.Time
	answerLocked  time.Time

	rapidClickCount int
	lastClickAt     time.Time
	suspicious      bool

	patterns []model.GamingPattern
}

// NewSession starts an attempt at question 0 in the answer phase. The question
// slice must be the assessment's ordered catalog, loaded once; it is not
// re-read during the attempt.
func NewSession(clock Clock, attemptID string, studentID uint, assessment model.Assessment, questions []model.Question) *Session {
	if clock == nil {
		clock = SystemClock()
	}
	return &Session{
		clock:         clock,
		attemptID:     attemptID,
		studentID:     studentID,
		assessment:    assessment,
		questions:     questions,
		phase:         PhaseAnswer,
		timeRemaining: assessment.TimeLimit,
		questionStart: clock.Now(),
	}
}

// SelectAnswer stores a provisional answer choice. Valid only in the answer
// phase before the lock; option ids from other questions are ignored. Repeated
// calls overwrite the provisional value and feed the rapid-click counter.
func (s *Session) SelectAnswer(optionID uint) {
	if s.phase != PhaseAnswer {
		return
	}
	q := s.CurrentQuestion()
	if q == nil || !q.HasOption(optionID) {
		return
	}

	now := s.clock.Now()
	if !s.lastClickAt.IsZero() && now.Sub(s.lastClickAt) < rapidClickWindow {
		s.rapidClickCount++
		if s.rapidClickCount > rapidClickLimit {
			s.suspicious = true
		}
	} else {
		s.rapidClickCount = 0
	}
	s.lastClickAt = now

	s.selectedAnswer = optionID
}

// LockAnswer freezes the provisional choice, creates the ledger record for the
// current question, and moves to the rationale phase. Once locked the answer
// can never change for this question.
func (s *Session) LockAnswer() {
	if s.phase != PhaseAnswer || s.selectedAnswer == 0 {
		return
	}
	q := s.CurrentQuestion()
	if q == nil {
		return
	}

	now := s.clock.Now()
	timeOnQuestion := int(now.Sub(s.questionStart).Seconds())
	if timeOnQuestion < 0 {
		timeOnQuestion = 0
	}

	s.responses = append(s.responses, &model.ResponseRecord{
		UUIDBase:       model.UUIDBase{ID: model.GenerateUUID()},
		AttemptID:      s.attemptID,
		StudentID:      s.studentID,
		AssessmentID:   s.assessment.ID,
		QuestionID:     q.ID,
		AnswerID:       s.selectedAnswer,
		AnswerLockedAt: now,
		TimeOnQuestion: timeOnQuestion,
	})

	s.lockedAnswer = s.selectedAnswer
	s.answerLocked = now
	s.phase = PhaseRationale
}

// SelectRationale stores a provisional rationale choice; rationale ids from
// other questions are ignored, and multiple calls overwrite the value until
// SubmitRationale commits.
func (s *Session) SelectRationale(rationaleID uint) {
	if s.phase != PhaseRationale {
		return
	}
	q := s.CurrentQuestion()
	if q == nil || !q.HasRationale(rationaleID) {
		return
	}
	s.selectedRationale = rationaleID
}

// SubmitRationale applies the one permitted mutation to the current question's
// ledger record, then advances to the next question or completes the attempt.
func (s *Session) SubmitRationale() {
	if s.phase != PhaseRationale || s.selectedRationale == 0 {
		return
	}
	rec := s.currentResponse()
	if rec == nil || rec.RationaleID != nil {
		return
	}

	now := s.clock.Now()
	timeOnRationale := int(now.Sub(s.answerLocked).Seconds())
	if timeOnRationale < 0 {
		timeOnRationale = 0
	}

	rationaleID := s.selectedRationale
	rec.RationaleID = &rationaleID
	rec.RationaleSubmittedAt = &now
	rec.TimeOnRationale = &timeOnRationale

	if s.index < len(s.questions)-1 {
		s.index++
		s.phase = PhaseAnswer
		s.selectedAnswer = 0
		s.lockedAnswer = 0
		s.selectedRationale = 0
		s.questionStart = now
		s.answerLocked = time.Time{}
	} else {
		s.phase = PhaseComplete
	}
}

// FlagForReview marks the current question's ledger record; no effect on
// scoring. A no-op before the answer is locked (no record exists yet).
func (s *Session) FlagForReview() {
	if rec := s.currentResponse(); rec != nil {
		rec.FlaggedForReview = true
	}
}

// CanProceed gates the continue action: a provisional choice must exist for
// the current phase.
func (s *Session) CanProceed() bool {
	switch s.phase {
	case PhaseAnswer:
		return s.selectedAnswer != 0
	case PhaseRationale:
		return s.selectedRationale != 0
	}
	return false
}

// Tick advances the attempt clock by one second. The owning service drives it
// while the attempt is active and must stop at a terminal phase; a stray tick
// after that is ignored so elapsed-time accounting cannot be corrupted.
func (s *Session) Tick() {
	if s.Terminal() {
		return
	}
	s.timeSpent++
	if s.timeRemaining > 0 {
		s.timeRemaining--
	}
}

// Abandon ends the attempt in a distinct terminal state, keeping the ledger
// rows built so far.
func (s *Session) Abandon() {
	if s.Terminal() {
		return
	}
	s.phase = PhaseAbandoned
}

// NavigateTo moves the review cursor. Arbitrary navigation is disallowed in
// every state except complete.
func (s *Session) NavigateTo(index int) {
	if s.phase != PhaseComplete || index < 0 || index >= len(s.questions) {
		return
	}
	s.index = index
}

func (s *Session) currentResponse() *model.ResponseRecord {
	q := s.CurrentQuestion()
	if q == nil {
		return nil
	}
	for _, rec := range s.responses {
		if rec.QuestionID == q.ID {
			return rec
		}
	}
	return nil
}

// SetPatterns replaces the live detector output shown on the session. The
// transition logic never reads it.
func (s *Session) SetPatterns(patterns []model.GamingPattern) {
	s.patterns = patterns
}

// Flagged reports whether the session carries any live detector output or
// tripped the rapid-click heuristic.
func (s *Session) Flagged() bool {
	return s.suspicious || len(s.patterns) > 0
}

func (s *Session) Patterns() []model.GamingPattern {
	out := make([]model.GamingPattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Responses returns a snapshot of the ledger rows built so far.
func (s *Session) Responses() []model.ResponseRecord {
	out := make([]model.ResponseRecord, len(s.responses))
	for i, rec := range s.responses {
		out[i] = *rec
	}
	return out
}

// QuestionStatus reports a question's ledger state for progress displays.
func (s *Session) QuestionStatus(questionID uint) string {
	for _, rec := range s.responses {
		if rec.QuestionID == questionID {
			if rec.HasRationale() {
				return QuestionCompleted
			}
			return QuestionAnswered
		}
	}
	return QuestionUnanswered
}

// Progress is the percentage of questions with a committed rationale.
func (s *Session) Progress() float64 {
	if len(s.questions) == 0 {
		return 0
	}
	completed := 0
	for _, rec := range s.responses {
		if rec.HasRationale() {
			completed++
		}
	}
	return float64(completed) / float64(len(s.questions)) * 100
}

func (s *Session) Terminal() bool {
	return s.phase == PhaseComplete || s.phase == PhaseAbandoned
}

func (s *Session) Phase() Phase      { return s.phase }
func (s *Session) Index() int        { return s.index }
func (s *Session) AttemptID() string { return s.attemptID }
func (s *Session) StudentID() uint   { return s.studentID }

func (s *Session) Assessment() model.Assessment { return s.assessment }

func (s *Session) CurrentQuestion() *model.Question {
	if s.index < 0 || s.index >= len(s.questions) {
		return nil
	}
	return &s.questions[s.index]
}

func (s *Session) TotalQuestions() int { return len(s.questions) }

func (s *Session) SelectedAnswer() uint    { return s.selectedAnswer }
func (s *Session) LockedAnswer() uint      { return s.lockedAnswer }
func (s *Session) SelectedRationale() uint { return s.selectedRationale }

func (s *Session) TimeSpent() int     { return s.timeSpent }
func (s *Session) TimeRemaining() int { return s.timeRemaining }

func (s *Session) Suspicious() bool { return s.suspicious }
