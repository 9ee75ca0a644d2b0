package engine

import (
	"testing"

	"cptncf_backend/internal/model"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	d := a - b
	return d < epsilon && d > -epsilon
}

// buildResponses fabricates one response per question out of
// testQuestions(n): answerCorrect of them pick the correct option,
// rationaleCorrect pick the correct rationale, and all carry a rationale.
func buildResponses(n, answerCorrect, rationaleCorrect int) ([]model.ResponseRecord, []model.Question) {
	questions := testQuestions(n)
	responses := make([]model.ResponseRecord, n)
	for i := 1; i <= n; i++ {
		answerID := uint(10*i + 2) // wrong option
		if i <= answerCorrect {
			answerID = uint(10*i + 1)
		}
		rationaleID := uint(100*i + 2) // wrong rationale
		if i <= rationaleCorrect {
			rationaleID = uint(100*i + 1)
		}
		responses[i-1] = model.ResponseRecord{
			StudentID:      7,
			AssessmentID:   1,
			QuestionID:     uint(i),
			AnswerID:       answerID,
			RationaleID:    &rationaleID,
			TimeOnQuestion: 30,
		}
	}
	return responses, questions
}

func TestDetector_RationaleMining(t *testing.T) {
	d := NewDetector(newFakeClock())

	// 40% answer accuracy vs 71% rationale accuracy: difference 31 emits
	// with confidence 31/50.
	responses, questions := buildResponses(100, 40, 71)
	p := d.RationaleMining(responses, questions)
	if p == nil {
		t.Fatal("difference of 31 points should emit")
	}
	if p.PatternType != model.PatternRationaleMining || p.StudentID != 7 {
		t.Fatalf("unexpected pattern %+v", p)
	}
	if !approx(p.Confidence, 0.62) {
		t.Fatalf("confidence should be 0.62, got %f", p.Confidence)
	}

	// The threshold is strict: a difference of exactly 30 is silent.
	responses, questions = buildResponses(100, 40, 70)
	if p := d.RationaleMining(responses, questions); p != nil {
		t.Fatalf("difference of exactly 30 must not emit, got %+v", p)
	}

	// Confidence caps at 1.
	responses, questions = buildResponses(10, 1, 10)
	p = d.RationaleMining(responses, questions)
	if p == nil || !approx(p.Confidence, 1) {
		t.Fatalf("difference of 90 should cap confidence at 1, got %+v", p)
	}
}

func TestDetector_RationaleMiningMinimumSample(t *testing.T) {
	d := NewDetector(newFakeClock())

	responses, questions := buildResponses(4, 0, 4)
	if p := d.RationaleMining(responses, questions); p != nil {
		t.Fatal("fewer than 5 responses must not emit")
	}
}

func TestDetector_RationaleMiningSkipsUnknownQuestions(t *testing.T) {
	d := NewDetector(newFakeClock())

	responses, questions := buildResponses(10, 1, 10)
	// Point every response at a question id outside the catalog.
	for i := range responses {
		responses[i].QuestionID += 1000
	}
	if p := d.RationaleMining(responses, questions); p != nil {
		t.Fatal("responses with missing reference data must be skipped, not scored")
	}
}

func TestDetector_AnswerRationaleMismatch(t *testing.T) {
	d := NewDetector(newFakeClock())

	// 4 of 10 disagree: rate 0.4 > 0.3, confidence 0.4/0.5.
	responses, questions := buildResponses(10, 6, 10)
	p := d.AnswerRationaleMismatch(responses, questions)
	if p == nil {
		t.Fatal("mismatch rate of 0.4 should emit")
	}
	if p.PatternType != model.PatternAnswerRationaleMismatch {
		t.Fatalf("wrong pattern type %s", p.PatternType)
	}
	if !approx(p.Confidence, 0.8) {
		t.Fatalf("confidence should be 0.8, got %f", p.Confidence)
	}

	// Exactly 0.30 is silent.
	responses, questions = buildResponses(10, 7, 10)
	if p := d.AnswerRationaleMismatch(responses, questions); p != nil {
		t.Fatalf("rate of exactly 0.3 must not emit, got %+v", p)
	}
}

func TestDetector_RapidResponse(t *testing.T) {
	d := NewDetector(newFakeClock())

	responses, _ := buildResponses(4, 4, 4)
	for i := 0; i < 3; i++ {
		responses[i].TimeOnQuestion = 2
	}
	p := d.RapidResponse(responses)
	if p == nil {
		t.Fatal("3 of 4 rapid responses should emit")
	}
	if p.PatternType != model.PatternRapidResponse {
		t.Fatalf("rapid responses must carry their own tag, got %s", p.PatternType)
	}
	if !approx(p.Confidence, 0.75) {
		t.Fatalf("confidence should equal the rapid rate 0.75, got %f", p.Confidence)
	}

	// Exactly half is silent.
	responses[2].TimeOnQuestion = 30
	if p := d.RapidResponse(responses); p != nil {
		t.Fatalf("rate of exactly 0.5 must not emit, got %+v", p)
	}

	// Fewer than 3 responses is silent.
	short := responses[:2]
	short[0].TimeOnQuestion = 1
	short[1].TimeOnQuestion = 1
	if p := d.RapidResponse(short); p != nil {
		t.Fatal("fewer than 3 responses must not emit")
	}
}

func evaluation(evaluator, teacher uint, total float64) model.PeerEvaluation {
	return model.PeerEvaluation{
		EvaluatorID: evaluator,
		TeacherID:   teacher,
		TotalScore:  total,
	}
}

func TestDetector_ReciprocalInflation(t *testing.T) {
	d := NewDetector(newFakeClock())

	evals := []model.PeerEvaluation{
		evaluation(1, 2, 95),
		evaluation(2, 1, 92),
	}
	scores := map[uint]float64{1: 60, 2: 65}

	patterns := d.ReciprocalInflation(evals, scores)
	if len(patterns) != 2 {
		t.Fatalf("one pattern per evaluator expected, got %d", len(patterns))
	}
	for _, p := range patterns {
		if p.PatternType != model.PatternReciprocalInflation {
			t.Fatalf("wrong type %s", p.PatternType)
		}
		if !approx(p.Confidence, 0.8) {
			t.Fatalf("confidence should be fixed at 0.8, got %f", p.Confidence)
		}
	}
	if patterns[0].StudentID == patterns[1].StudentID {
		t.Fatal("patterns must cover both members of the pair")
	}

	// 95 > 60+20 but 92 <= 80+20: only one side inflated, no emission.
	scores[2] = 80
	if got := d.ReciprocalInflation(evals, scores); len(got) != 0 {
		t.Fatalf("one-sided inflation must not emit, got %d", len(got))
	}

	// No reciprocal evaluation, no emission.
	solo := []model.PeerEvaluation{evaluation(1, 2, 99)}
	if got := d.ReciprocalInflation(solo, map[uint]float64{1: 10, 2: 10}); len(got) != 0 {
		t.Fatal("unreciprocated evaluation must not emit")
	}
}

func TestDetector_NoVariance(t *testing.T) {
	d := NewDetector(newFakeClock())

	// Identical scores: CV 0, confidence 1.
	evals := []model.PeerEvaluation{
		evaluation(1, 2, 80),
		evaluation(1, 3, 80),
		evaluation(1, 4, 80),
	}
	patterns := d.NoVariance(evals)
	if len(patterns) != 1 {
		t.Fatalf("expected one pattern, got %d", len(patterns))
	}
	if !approx(patterns[0].Confidence, 1) {
		t.Fatalf("CV of 0 should give confidence 1, got %f", patterns[0].Confidence)
	}

	// Scores 70/80/90: CV ~ 0.102 > 0.1, no emission.
	spread := []model.PeerEvaluation{
		evaluation(1, 2, 70),
		evaluation(1, 3, 80),
		evaluation(1, 4, 90),
	}
	if got := d.NoVariance(spread); len(got) != 0 {
		t.Fatalf("CV above threshold must not emit, got %d", len(got))
	}

	// Zero mean leaves the coefficient undefined: treat as no pattern.
	zeros := []model.PeerEvaluation{
		evaluation(1, 2, 0),
		evaluation(1, 3, 0),
		evaluation(1, 4, 0),
	}
	if got := d.NoVariance(zeros); len(got) != 0 {
		t.Fatal("zero mean must not emit")
	}

	// Fewer than 3 evaluations per evaluator is silent.
	if got := d.NoVariance(evals[:2]); len(got) != 0 {
		t.Fatal("fewer than 3 evaluations must not emit")
	}
}

func TestDetector_DetectAllIsIdempotent(t *testing.T) {
	d := NewDetector(newFakeClock())

	responses, questions := buildResponses(10, 1, 9)
	evals := []model.PeerEvaluation{
		evaluation(7, 2, 95),
		evaluation(2, 7, 92),
	}
	scores := map[uint]float64{7: 60, 2: 65}

	first := d.DetectAll(responses, questions, evals, scores)
	second := d.DetectAll(responses, questions, evals, scores)

	if len(first) == 0 {
		t.Fatal("snapshot should produce patterns")
	}
	if len(first) != len(second) {
		t.Fatalf("re-running on the same snapshot changed the result: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].PatternType != second[i].PatternType || !approx(first[i].Confidence, second[i].Confidence) {
			t.Fatalf("emission %d differs between runs", i)
		}
	}
}

func TestDedupePatterns(t *testing.T) {
	patterns := []model.GamingPattern{
		{StudentID: 1, PatternType: model.PatternRationaleMining, Confidence: 0.4},
		{StudentID: 1, PatternType: model.PatternRationaleMining, Confidence: 0.9},
		{StudentID: 1, PatternType: model.PatternNoVariance, Confidence: 0.5},
		{StudentID: 2, PatternType: model.PatternRationaleMining, Confidence: 0.3},
	}

	out := DedupePatterns(patterns)
	if len(out) != 3 {
		t.Fatalf("expected 3 deduped patterns, got %d", len(out))
	}
	if !approx(out[0].Confidence, 0.9) {
		t.Fatalf("dedup must keep the highest confidence, got %f", out[0].Confidence)
	}
}
