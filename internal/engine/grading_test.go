package engine

import (
	"math"
	"strings"
	"testing"

	"cptncf_backend/internal/model"
)

func response(questionID, answerID uint, rationaleID *uint, seconds int) model.ResponseRecord {
	return model.ResponseRecord{
		StudentID:      7,
		AssessmentID:   1,
		QuestionID:     questionID,
		AnswerID:       answerID,
		RationaleID:    rationaleID,
		TimeOnQuestion: seconds,
	}
}

func ptrUint(v uint) *uint { return &v }

func TestCalculator_AssessmentScore(t *testing.T) {
	c := NewCalculator()
	questions := testQuestions(2)

	// Both phases correct on q1, answer only on q2: (1.0 + 0.7) / 2.
	responses := []model.ResponseRecord{
		response(1, 11, ptrUint(101), 30),
		response(2, 21, ptrUint(202), 30),
	}
	if got := c.AssessmentScore(responses, questions); got != 85.0 {
		t.Fatalf("expected 85.0, got %f", got)
	}

	// A correct rationale behind a wrong answer still earns its 0.3.
	responses = []model.ResponseRecord{response(1, 12, ptrUint(101), 30)}
	if got := c.AssessmentScore(responses, questions); got != 30.0 {
		t.Fatalf("expected 30.0, got %f", got)
	}

	// Responses to questions outside the catalog are skipped entirely.
	responses = []model.ResponseRecord{
		response(1, 11, ptrUint(101), 30),
		response(99, 11, ptrUint(101), 30),
	}
	if got := c.AssessmentScore(responses, questions); got != 100.0 {
		t.Fatalf("unknown question must not dilute the score, got %f", got)
	}

	if got := c.AssessmentScore(nil, questions); got != 0 {
		t.Fatalf("no responses should score 0, got %f", got)
	}
}

func TestCalculator_TeachingScore(t *testing.T) {
	c := NewCalculator()

	received := []model.PeerEvaluation{{TotalScore: 90}, {TotalScore: 90}}

	// Peer mean 90 against a test average of 60 exceeds the margin: scaled
	// by 0.75.
	if got := c.TeachingScore(received, nil, 60); got != 67.5 {
		t.Fatalf("inflated mean should scale to 67.5, got %f", got)
	}

	// Within the margin the mean passes through.
	if got := c.TeachingScore(received, nil, 85); got != 90 {
		t.Fatalf("uninflated mean should pass through, got %f", got)
	}

	// Deviation beyond 15% of the faculty benchmark pulls to the midpoint.
	benchmarks := []model.PeerEvaluation{{TotalScore: 70, IsFacultyBenchmark: true}}
	if got := c.TeachingScore(received, benchmarks, 85); got != 80 {
		t.Fatalf("benchmark calibration should give the midpoint 80, got %f", got)
	}

	// Deviation inside 15% leaves the score alone.
	benchmarks[0].TotalScore = 95
	if got := c.TeachingScore(received, benchmarks, 85); got != 90 {
		t.Fatalf("small benchmark deviation must not calibrate, got %f", got)
	}

	if got := c.TeachingScore(nil, benchmarks, 85); got != 0 {
		t.Fatalf("no evaluations received should score 0, got %f", got)
	}
}

func TestCalculator_GroupPerformance(t *testing.T) {
	c := NewCalculator()
	questions := testQuestions(1)

	groupResponses := map[uint][]model.ResponseRecord{
		1: {response(1, 11, ptrUint(101), 30)}, // 100
		2: {response(1, 12, nil, 30)},          // 0
		// member 3 has no responses and is skipped
	}
	got := c.GroupPerformance([]uint{1, 2, 3}, groupResponses, questions)
	if got != 50 {
		t.Fatalf("expected mean of 50 over contributing members, got %f", got)
	}

	if got := c.GroupPerformance([]uint{3}, groupResponses, questions); got != 0 {
		t.Fatalf("no contributing members should score 0, got %f", got)
	}
}

func TestCalculator_EngagementScore(t *testing.T) {
	c := NewCalculator()

	// 60s average time maxes the time component; both responses completed
	// the rationale phase; 3 evaluations given; 90% attendance.
	responses := []model.ResponseRecord{
		response(1, 11, ptrUint(101), 60),
		response(2, 21, ptrUint(201), 60),
	}
	given := make([]model.PeerEvaluation, 3)
	got := c.EngagementScore(responses, given, 0.9)
	if !approx(got, 30+30+12+18) {
		t.Fatalf("expected 90, got %f", got)
	}

	// Degenerate input scores 0, never NaN.
	got = c.EngagementScore(nil, nil, 0)
	if math.IsNaN(got) || got != 0 {
		t.Fatalf("empty input should score 0, got %f", got)
	}
}

func TestCalculator_FeedbackQuality(t *testing.T) {
	c := NewCalculator()

	detailed := model.PeerEvaluation{
		ContentMastery:          28,
		ProfessionalApplication: 20,
		TeachingMethodology:     15,
		ProfessionalDelivery:    10,
		Comments:                strings.Repeat("specific observation ", 4),
	}
	// Variance component caps at 100, comment over 50 chars earns 100,
	// section range 18/30 earns 60: 100*0.3 + 100*0.4 + 60*0.3.
	if got := c.FeedbackQuality([]model.PeerEvaluation{detailed}); !approx(got, 88) {
		t.Fatalf("expected 88, got %f", got)
	}

	flat := model.PeerEvaluation{
		ContentMastery:          20,
		ProfessionalApplication: 20,
		TeachingMethodology:     20,
		ProfessionalDelivery:    20,
	}
	if got := c.FeedbackQuality([]model.PeerEvaluation{flat}); got != 0 {
		t.Fatalf("flat uncommented rubric should score 0, got %f", got)
	}

	if got := c.FeedbackQuality(nil); got != 0 {
		t.Fatalf("no evaluations given should score 0, got %f", got)
	}
}

func TestCalculator_ReflectionScore(t *testing.T) {
	c := NewCalculator()

	if got := c.ReflectionScore(2, 60); got != 55 {
		t.Fatalf("expected 55, got %f", got)
	}
	// Quantity caps at 4 reflections.
	if got := c.ReflectionScore(10, 80); got != 90 {
		t.Fatalf("expected 90, got %f", got)
	}
	if got := c.ReflectionScore(0, 0); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestCalculator_GamingPenalty(t *testing.T) {
	c := NewCalculator()

	full := func(n int) []model.GamingPattern {
		out := make([]model.GamingPattern, n)
		for i := range out {
			out[i] = model.GamingPattern{Confidence: 1}
		}
		return out
	}

	// 4 full-confidence patterns reach the cap exactly.
	adjusted, penalty := c.GamingPenalty(80, full(4))
	if penalty != 20 || adjusted != 60 {
		t.Fatalf("expected penalty 20 and grade 60, got %f / %f", penalty, adjusted)
	}

	// A fifth pattern does not pass the cap.
	_, penalty = c.GamingPenalty(80, full(5))
	if penalty != 20 {
		t.Fatalf("penalty must cap at 20, got %f", penalty)
	}

	// Penalties scale with confidence.
	_, penalty = c.GamingPenalty(80, []model.GamingPattern{{Confidence: 0.62}})
	if !approx(penalty, 3.1) {
		t.Fatalf("expected 3.1, got %f", penalty)
	}

	// The grade floors at 0 while the reported penalty stays intact.
	adjusted, penalty = c.GamingPenalty(10, full(4))
	if adjusted != 0 || penalty != 20 {
		t.Fatalf("expected floor 0 with penalty 20, got %f / %f", adjusted, penalty)
	}
}

func TestWeightedTotal(t *testing.T) {
	components := GradeComponents{
		Quizzes:          82.5,
		Exams:            78.3,
		Final:            0,
		Teaching:         88.2,
		GroupPerformance: 76.5,
		Engagement:       91,
		FeedbackQuality:  85,
		Reflection:       80,
	}
	got := weightedTotal(components)
	if !approx(round1(got), 69.8) {
		t.Fatalf("expected 69.8, got %f", got)
	}
	if letter := LetterGrade(got); letter != "D+" {
		t.Fatalf("expected D+, got %s", letter)
	}
}

func TestCalculator_CalculateEmptyInput(t *testing.T) {
	c := NewCalculator()

	result := c.Calculate(GradeInput{StudentID: 7})
	if result.FinalGrade != 0 || result.LetterGrade != "F" {
		t.Fatalf("empty input should grade 0/F, got %f/%s", result.FinalGrade, result.LetterGrade)
	}
	if math.IsNaN(result.FinalGrade) {
		t.Fatal("empty input must not produce NaN")
	}
}

func TestSummarizeAttempt(t *testing.T) {
	questions := testQuestions(4)

	// Accuracies are out of the whole catalog, not only answered questions.
	responses := []model.ResponseRecord{
		response(1, 11, ptrUint(101), 30), // both phases correct
		response(2, 21, ptrUint(202), 30), // answer only
	}
	summary := SummarizeAttempt(responses, questions)
	if summary.AnswerAccuracy != 50 {
		t.Fatalf("expected answer accuracy 50, got %f", summary.AnswerAccuracy)
	}
	if summary.RationaleAccuracy != 25 {
		t.Fatalf("expected rationale accuracy 25, got %f", summary.RationaleAccuracy)
	}
	if summary.Score != 40 {
		t.Fatalf("expected score 40, got %f", summary.Score)
	}

	if s := SummarizeAttempt(responses, nil); s != (AttemptSummary{}) {
		t.Fatalf("empty catalog should zero the summary, got %+v", s)
	}
}

func TestLetterGrade(t *testing.T) {
	cases := []struct {
		grade float64
		want  string
	}{
		{96, "A"}, {93, "A"}, {92.9, "A-"}, {90, "A-"},
		{87, "B+"}, {83, "B"}, {80, "B-"},
		{77, "C+"}, {73, "C"}, {70, "C-"},
		{69.8, "D+"}, {67, "D+"}, {63, "D"}, {60, "D-"},
		{59.9, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		if got := LetterGrade(tc.grade); got != tc.want {
			t.Fatalf("LetterGrade(%v) = %s, want %s", tc.grade, got, tc.want)
		}
	}
}

func TestCalculator_Report(t *testing.T) {
	c := NewCalculator()

	report := c.Report(GradeResult{
		StudentID:     7,
		FinalGrade:    69.8,
		LetterGrade:   "D+",
		GamingPenalty: 3.1,
	})
	for _, want := range []string{"Student 7", "69.8", "D+", "-3.1"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}
