package engine

import (
	"testing"
	"time"

	"cptncf_backend/internal/model"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// testQuestions builds n questions. Question i (1-based) has option IDs
// 10i+1..10i+4 with 10i+1 correct, and rationale IDs 100i+1..100i+4 with
// 100i+1 the correct one.
func testQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := 1; i <= n; i++ {
		q := model.Question{
			BaseModel:       model.BaseModel{ID: uint(i)},
			AssessmentID:    1,
			Content:         "stem",
			CorrectAnswerID: uint(10*i + 1),
		}
		for j := 1; j <= 4; j++ {
			q.Options = append(q.Options, model.AnswerOption{
				BaseModel:  model.BaseModel{ID: uint(10*i + j)},
				QuestionID: uint(i),
			})
			q.Rationales = append(q.Rationales, model.Rationale{
				BaseModel:  model.BaseModel{ID: uint(100*i + j)},
				QuestionID: uint(i),
				IsCorrect:  j == 1,
			})
		}
		qs[i-1] = q
	}
	return qs
}

func testSession(clock Clock, n int) *Session {
	assessment := model.Assessment{
		BaseModel: model.BaseModel{ID: 1},
		Type:      model.AssessmentQuiz,
		TimeLimit: 3600,
	}
	return NewSession(clock, "attempt-1", 7, assessment, testQuestions(n))
}

func answerQuestion(s *Session, clock *fakeClock, i int) {
	clock.Advance(10 * time.Second)
	s.SelectAnswer(uint(10*i + 1))
	s.LockAnswer()
	clock.Advance(8 * time.Second)
	s.SelectRationale(uint(100*i + 1))
	s.SubmitRationale()
}

func TestSession_TwoPhaseFlow(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 3)

	if s.Phase() != PhaseAnswer || s.Index() != 0 {
		t.Fatalf("new session should start in answer phase at index 0, got %s/%d", s.Phase(), s.Index())
	}

	clock.Advance(12 * time.Second)
	s.SelectAnswer(12)
	s.LockAnswer()

	if s.Phase() != PhaseRationale {
		t.Fatalf("lock should move to rationale phase, got %s", s.Phase())
	}

	responses := s.Responses()
	if len(responses) != 1 {
		t.Fatalf("lock should create exactly one ledger record, got %d", len(responses))
	}
	rec := responses[0]
	if rec.AnswerID != 12 || rec.QuestionID != 1 || rec.StudentID != 7 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.TimeOnQuestion != 12 {
		t.Fatalf("time on question should be 12s, got %d", rec.TimeOnQuestion)
	}
	if rec.HasRationale() {
		t.Fatal("rationale fields must be empty at lock")
	}

	clock.Advance(5 * time.Second)
	s.SelectRationale(101)
	s.SubmitRationale()

	if s.Phase() != PhaseAnswer || s.Index() != 1 {
		t.Fatalf("submit should advance to next question in answer phase, got %s/%d", s.Phase(), s.Index())
	}
	rec = s.Responses()[0]
	if !rec.HasRationale() || *rec.RationaleID != 101 {
		t.Fatalf("rationale should be committed, got %+v", rec)
	}
	if *rec.TimeOnRationale != 5 {
		t.Fatalf("time on rationale should be 5s, got %d", *rec.TimeOnRationale)
	}
	if s.SelectedAnswer() != 0 || s.SelectedRationale() != 0 {
		t.Fatal("provisional selections must reset between questions")
	}
}

func TestSession_CompletesAfterLastRationale(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 2)

	answerQuestion(s, clock, 1)
	answerQuestion(s, clock, 2)

	if s.Phase() != PhaseComplete {
		t.Fatalf("session should be complete, got %s", s.Phase())
	}
	if got := len(s.Responses()); got != 2 {
		t.Fatalf("expected 2 ledger records, got %d", got)
	}
	if s.Progress() != 100 {
		t.Fatalf("progress should be 100, got %f", s.Progress())
	}
}

func TestSession_LockIrreversibility(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 2)

	s.SelectAnswer(12)
	s.LockAnswer()

	// Any further selection attempts are ignored.
	s.SelectAnswer(13)
	s.SelectAnswer(14)
	s.LockAnswer()

	if got := s.LockedAnswer(); got != 12 {
		t.Fatalf("locked answer changed to %d", got)
	}
	if got := s.Responses()[0].AnswerID; got != 12 {
		t.Fatalf("ledger answer changed to %d", got)
	}
	if got := len(s.Responses()); got != 1 {
		t.Fatalf("repeated lock created %d records", got)
	}
}

func TestSession_SingleRationaleMutation(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 1)

	s.SelectAnswer(11)
	s.LockAnswer()
	s.SelectRationale(102)
	s.SelectRationale(103) // provisional overwrite is allowed
	s.SubmitRationale()

	if s.Phase() != PhaseComplete {
		t.Fatalf("expected complete, got %s", s.Phase())
	}

	// Terminal phase: further attempts must not touch the record.
	s.SelectRationale(104)
	s.SubmitRationale()

	rec := s.Responses()[0]
	if *rec.RationaleID != 103 {
		t.Fatalf("rationale mutated after commit: %d", *rec.RationaleID)
	}
}

func TestSession_InvalidTransitionsAreNoOps(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 2)

	// Nothing selected yet: lock and submit are ignored.
	s.LockAnswer()
	s.SubmitRationale()
	if len(s.Responses()) != 0 || s.Phase() != PhaseAnswer {
		t.Fatal("lock/submit without a selection must be ignored")
	}

	// Rationale actions are ignored in the answer phase.
	s.SelectRationale(101)
	if s.SelectedRationale() != 0 {
		t.Fatal("rationale selection must be ignored in answer phase")
	}

	s.SelectAnswer(11)
	s.LockAnswer()

	// Submit without a provisional rationale is ignored.
	s.SubmitRationale()
	if s.Phase() != PhaseRationale || s.Index() != 0 {
		t.Fatal("submit without a rationale must be ignored")
	}

	// Answer actions are ignored in the rationale phase.
	s.SelectAnswer(13)
	if s.SelectedAnswer() != 11 {
		t.Fatal("answer selection must be ignored in rationale phase")
	}
}

func TestSession_CanProceed(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 1)

	if s.CanProceed() {
		t.Fatal("cannot proceed before selecting an answer")
	}
	s.SelectAnswer(11)
	if !s.CanProceed() {
		t.Fatal("provisional answer should allow proceeding")
	}
	s.LockAnswer()
	if s.CanProceed() {
		t.Fatal("cannot proceed before selecting a rationale")
	}
	s.SelectRationale(101)
	if !s.CanProceed() {
		t.Fatal("provisional rationale should allow proceeding")
	}
	s.SubmitRationale()
	if s.CanProceed() {
		t.Fatal("cannot proceed once complete")
	}
}

func TestSession_RapidClickHeuristic(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 1)

	for i := 0; i < 10; i++ {
		clock.Advance(100 * time.Millisecond)
		s.SelectAnswer(11)
	}
	if !s.Suspicious() {
		t.Fatal("rapid clicking should mark the session suspicious")
	}

	// Normally paced selections never trip it.
	s2 := testSession(clock, 1)
	for i := 0; i < 10; i++ {
		clock.Advance(2 * time.Second)
		s2.SelectAnswer(11)
	}
	if s2.Suspicious() {
		t.Fatal("paced clicking should not be suspicious")
	}
}

func TestSession_TickAccounting(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 1)

	for i := 0; i < 5; i++ {
		s.Tick()
	}
	if s.TimeSpent() != 5 || s.TimeRemaining() != 3595 {
		t.Fatalf("tick accounting wrong: spent=%d remaining=%d", s.TimeSpent(), s.TimeRemaining())
	}

	s.SelectAnswer(11)
	s.LockAnswer()
	s.SelectRationale(101)
	s.SubmitRationale()

	// Ticks after a terminal phase are forbidden no-ops.
	s.Tick()
	s.Tick()
	if s.TimeSpent() != 5 {
		t.Fatalf("tick after completion corrupted elapsed time: %d", s.TimeSpent())
	}
}

func TestSession_TimeRemainingFloorsAtZero(t *testing.T) {
	clock := newFakeClock()
	assessment := model.Assessment{BaseModel: model.BaseModel{ID: 1}, TimeLimit: 3}
	s := NewSession(clock, "attempt-1", 7, assessment, testQuestions(1))

	for i := 0; i < 10; i++ {
		s.Tick()
	}
	if s.TimeRemaining() != 0 {
		t.Fatalf("remaining time should floor at zero, got %d", s.TimeRemaining())
	}
	if s.TimeSpent() != 10 {
		t.Fatalf("elapsed time should keep counting, got %d", s.TimeSpent())
	}
	// Expiry does not auto-submit.
	if s.Phase() != PhaseAnswer {
		t.Fatalf("expiry must not force a transition, got %s", s.Phase())
	}
}

func TestSession_NavigationOnlyInReview(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 3)

	s.NavigateTo(2)
	if s.Index() != 0 {
		t.Fatal("navigation must be disallowed mid-attempt")
	}

	for i := 1; i <= 3; i++ {
		answerQuestion(s, clock, i)
	}
	if s.Phase() != PhaseComplete {
		t.Fatalf("expected complete, got %s", s.Phase())
	}

	s.NavigateTo(1)
	if s.Index() != 1 {
		t.Fatal("review navigation should work once complete")
	}
	s.NavigateTo(99)
	if s.Index() != 1 {
		t.Fatal("out-of-range navigation must be ignored")
	}
}

func TestSession_Abandon(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 3)

	answerQuestion(s, clock, 1)
	s.SelectAnswer(21)
	s.LockAnswer()
	s.Abandon()

	if s.Phase() != PhaseAbandoned {
		t.Fatalf("expected abandoned, got %s", s.Phase())
	}
	// Partially built ledger rows survive for persistence.
	if got := len(s.Responses()); got != 2 {
		t.Fatalf("expected 2 records after abandonment, got %d", got)
	}

	// Abandoned is terminal.
	s.SelectRationale(201)
	s.SubmitRationale()
	s.Tick()
	if s.Responses()[1].HasRationale() {
		t.Fatal("no mutation may happen after abandonment")
	}
}

func TestSession_FlagForReview(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 2)

	// No record yet: flag is a no-op.
	s.FlagForReview()

	s.SelectAnswer(11)
	s.LockAnswer()
	s.FlagForReview()

	if !s.Responses()[0].FlaggedForReview {
		t.Fatal("flag should mark the current question's record")
	}
}

func TestSession_QuestionStatus(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 2)

	if got := s.QuestionStatus(1); got != QuestionUnanswered {
		t.Fatalf("expected unanswered, got %s", got)
	}
	s.SelectAnswer(11)
	s.LockAnswer()
	if got := s.QuestionStatus(1); got != QuestionAnswered {
		t.Fatalf("expected answered, got %s", got)
	}
	s.SelectRationale(101)
	s.SubmitRationale()
	if got := s.QuestionStatus(1); got != QuestionCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
}

func TestSession_DetectorFeedbackDoesNotAlterTransitions(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 2)

	s.SetPatterns([]model.GamingPattern{{StudentID: 7, PatternType: model.PatternRapidResponse, Confidence: 0.9}})
	if !s.Flagged() {
		t.Fatal("live detector output should flag the session")
	}

	// The flag has no effect on the state machine.
	s.SelectAnswer(11)
	s.LockAnswer()
	if s.Phase() != PhaseRationale {
		t.Fatalf("flagged session must still transition normally, got %s", s.Phase())
	}
}

func TestSession_RejectsChoicesFromOtherQuestions(t *testing.T) {
	clock := newFakeClock()
	s := testSession(clock, 2)

	// Option 21 belongs to question 2; question 1 is current.
	s.SelectAnswer(21)
	if s.SelectedAnswer() != 0 {
		t.Fatalf("foreign option id should be ignored, got %d", s.SelectedAnswer())
	}
	s.SelectAnswer(999)
	if s.SelectedAnswer() != 0 {
		t.Fatalf("unknown option id should be ignored, got %d", s.SelectedAnswer())
	}
	s.LockAnswer()
	if s.Phase() != PhaseAnswer {
		t.Fatal("lock without a valid selection must be a no-op")
	}

	s.SelectAnswer(11)
	s.LockAnswer()

	// Rationale 201 belongs to question 2.
	s.SelectRationale(201)
	if s.SelectedRationale() != 0 {
		t.Fatalf("foreign rationale id should be ignored, got %d", s.SelectedRationale())
	}
	s.SubmitRationale()
	if s.Phase() != PhaseRationale {
		t.Fatal("submit without a valid rationale must be a no-op")
	}

	s.SelectRationale(101)
	s.SubmitRationale()
	if s.Index() != 1 {
		t.Fatalf("valid rationale should advance the attempt, got index %d", s.Index())
	}
}
