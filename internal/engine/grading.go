package engine

import (
	"fmt"
	"math"
	"strings"

	"cptncf_backend/internal/model"
)

// Component weights of the CPTNCF framework; they sum to 1.00.
const (
	weightQuizzes          = 0.15
	weightExams            = 0.30
	weightFinal            = 0.15
	weightTeaching         = 0.15
	weightGroupPerformance = 0.10
	weightEngagement       = 0.08
	weightFeedbackQuality  = 0.04
	weightReflection       = 0.03
)

// Per-question split between the two phases.
const (
	answerPhaseWeight    = 0.7
	rationalePhaseWeight = 0.3
)

const (
	peerAdjustmentFactor      = 0.75 // scale applied to inflated peer teaching means
	peerInflationMargin       = 20.0 // points the peer mean may exceed the test average
	facultyDeviationThreshold = 0.15 // relative deviation before benchmark calibration kicks in
	gamingPenaltyFactor       = 0.05 // 5 percentage points per full-confidence pattern
	gamingPenaltyCap          = 20.0
)

// GradeInput is the full snapshot the calculator needs for one student.
// Missing slices degrade the matching component to 0; nothing errors.
type GradeInput struct {
	StudentID   uint
	Responses   []model.ResponseRecord
	Questions   []model.Question
	Assessments []model.Assessment

	EvaluationsReceived []model.PeerEvaluation
	EvaluationsGiven    []model.PeerEvaluation
	FacultyBenchmarks   []model.PeerEvaluation

	GroupMemberIDs []uint
	GroupResponses map[uint][]model.ResponseRecord

	Patterns []model.GamingPattern

	AttendanceRate    float64 // 0..1
	ReflectionCount   int
	ReflectionQuality float64 // 0..100
}

type GradeComponents struct {
	Quizzes          float64 `json:"quizzes"`
	Exams            float64 `json:"exams"`
	Final            float64 `json:"final"`
	Teaching         float64 `json:"teaching"`
	GroupPerformance float64 `json:"groupPerformance"`
	Engagement       float64 `json:"engagement"`
	FeedbackQuality  float64 `json:"feedbackQuality"`
	Reflection       float64 `json:"reflection"`
}

type GradeResult struct {
	StudentID     uint            `json:"studentId"`
	Components    GradeComponents `json:"components"`
	GamingPenalty float64         `json:"gamingPenalty"`
	FinalGrade    float64         `json:"finalGrade"`
	LetterGrade   string          `json:"letterGrade"`
}

// AttemptSummary is the completed-attempt roll-up stored on the attempt row.
type AttemptSummary struct {
	Score             float64
	AnswerAccuracy    float64
	RationaleAccuracy float64
}

// Calculator aggregates per-assessment scores, peer-teaching scores,
// participation metrics and detector output into one weighted grade. It is
// stateless and safe to share.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

// AssessmentScore scores one set of responses with the two-phase split: a
// correct answer earns 0.7 of a point, a correct rationale 0.3, out of one
// point per answered question. Responses whose question is not in the catalog
// are skipped. Returns 0..100 rounded to one decimal.
func (c *Calculator) AssessmentScore(responses []model.ResponseRecord, questions []model.Question) float64 {
	if len(responses) == 0 || len(questions) == 0 {
		return 0
	}
	byID := questionIndex(questions)

	points := 0.0
	answered := 0
	for _, r := range responses {
		q, ok := byID[r.QuestionID]
		if !ok {
			continue
		}
		answered++
		if r.AnswerID == q.CorrectAnswerID {
			points += answerPhaseWeight
		}
		if r.HasRationale() && q.CorrectRationale(*r.RationaleID) {
			points += rationalePhaseWeight
		}
	}
	if answered == 0 {
		return 0
	}

	return round1(points / float64(answered) * 100)
}

// TypeAverage is the mean of per-assessment scores across assessments of the
// given type that have at least one response; 0 if none do.
func (c *Calculator) TypeAverage(in GradeInput, t model.AssessmentType) float64 {
	total := 0.0
	count := 0
	for _, a := range in.Assessments {
		if a.Type != t {
			continue
		}
		responses := responsesForAssessment(in.Responses, a.ID)
		if len(responses) == 0 {
			continue
		}
		total += c.AssessmentScore(responses, questionsForAssessment(in.Questions, a.ID))
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// TeachingScore is the mean of received peer-evaluation totals with two
// corrections: scaled by 0.75 when it exceeds the student's own test average
// by more than 20 points, and replaced by the midpoint with the faculty
// benchmark mean when it deviates from it by more than 15% relatively.
// Clamped to [0,100].
func (c *Calculator) TeachingScore(received, benchmarks []model.PeerEvaluation, testAverage float64) float64 {
	if len(received) == 0 {
		return 0
	}

	adjusted := mean(evaluationTotals(received))
	if adjusted > testAverage+peerInflationMargin {
		adjusted *= peerAdjustmentFactor
	}

	if len(benchmarks) > 0 {
		facultyMean := mean(evaluationTotals(benchmarks))
		if facultyMean != 0 {
			deviation := math.Abs(adjusted-facultyMean) / facultyMean
			if deviation > facultyDeviationThreshold {
				adjusted = (adjusted + facultyMean) / 2
			}
		}
	}

	return math.Min(100, math.Max(0, adjusted))
}

// GroupPerformance averages each group member's two-phase score, skipping
// members with no responses.
func (c *Calculator) GroupPerformance(memberIDs []uint, groupResponses map[uint][]model.ResponseRecord, questions []model.Question) float64 {
	total := 0.0
	members := 0
	for _, id := range memberIDs {
		responses := groupResponses[id]
		if len(responses) == 0 {
			continue
		}
		total += c.AssessmentScore(responses, questions)
		members++
	}
	if members == 0 {
		return 0
	}
	return total / float64(members)
}

// EngagementScore blends time on task (30%, normalized to a 60-second
// reference), completion rate (30%), evaluation participation (20%, 20 points
// per evaluation given) and attendance (20%).
func (c *Calculator) EngagementScore(responses []model.ResponseRecord, evaluationsGiven []model.PeerEvaluation, attendanceRate float64) float64 {
	timeScore := 0.0
	completionScore := 0.0
	if len(responses) > 0 {
		totalTime := 0
		completed := 0
		for _, r := range responses {
			totalTime += r.TimeOnQuestion
			if r.HasRationale() {
				completed++
			}
		}
		avgTime := float64(totalTime) / float64(len(responses))
		timeScore = math.Min(100, avgTime/60*100)
		completionScore = float64(completed) / float64(len(responses)) * 100
	}

	evaluationScore := math.Min(100, float64(len(evaluationsGiven))*20)
	attendanceScore := attendanceRate * 100

	return timeScore*0.3 + completionScore*0.3 + evaluationScore*0.2 + attendanceScore*0.2
}

// FeedbackQuality rates each evaluation given on section-score variance (30%),
// a substantive comment over 50 characters (40%) and the fraction of the
// 0-30 section range actually spanned (30%), averaged across evaluations.
func (c *Calculator) FeedbackQuality(evaluationsGiven []model.PeerEvaluation) float64 {
	if len(evaluationsGiven) == 0 {
		return 0
	}

	total := 0.0
	for _, e := range evaluationsGiven {
		sections := e.SectionScores()
		scores := make([]float64, len(sections))
		minScore, maxScore := float64(sections[0]), float64(sections[0])
		for i, s := range sections {
			scores[i] = float64(s)
			minScore = math.Min(minScore, float64(s))
			maxScore = math.Max(maxScore, float64(s))
		}

		varianceScore := math.Min(100, populationVariance(scores, mean(scores))*1000)

		commentScore := 0.0
		if len(e.Comments) > 50 {
			commentScore = 100
		}

		rangeScore := (maxScore - minScore) / float64(model.MaxContentMastery) * 100

		total += varianceScore*0.3 + commentScore*0.4 + rangeScore*0.3
	}

	return total / float64(len(evaluationsGiven))
}

// ReflectionScore blends quantity (25 points per reflection, capped at 100)
// and an externally supplied quality score, half each.
func (c *Calculator) ReflectionScore(count int, quality float64) float64 {
	quantity := math.Min(100, float64(count)*25)
	return quantity*0.5 + quality*0.5
}

// GamingPenalty deducts 5 confidence-weighted percentage points per pattern,
// capped at 20, flooring the grade at 0.
func (c *Calculator) GamingPenalty(base float64, patterns []model.GamingPattern) (adjusted, penalty float64) {
	for _, p := range patterns {
		penalty += gamingPenaltyFactor * p.Confidence * 100
	}
	penalty = math.Min(gamingPenaltyCap, penalty)
	return math.Max(0, base-penalty), penalty
}

// Calculate produces the full weighted grade for one student.
func (c *Calculator) Calculate(in GradeInput) GradeResult {
	quizzes := c.TypeAverage(in, model.AssessmentQuiz)
	exams := c.TypeAverage(in, model.AssessmentExam)
	final := c.TypeAverage(in, model.AssessmentFinal)

	testAverage := (quizzes + exams + final) / 3
	teaching := c.TeachingScore(in.EvaluationsReceived, in.FacultyBenchmarks, testAverage)
	groupPerformance := c.GroupPerformance(in.GroupMemberIDs, in.GroupResponses, in.Questions)

	engagement := c.EngagementScore(in.Responses, in.EvaluationsGiven, in.AttendanceRate)
	feedbackQuality := c.FeedbackQuality(in.EvaluationsGiven)
	reflection := c.ReflectionScore(in.ReflectionCount, in.ReflectionQuality)

	components := GradeComponents{
		Quizzes:          quizzes,
		Exams:            exams,
		Final:            final,
		Teaching:         teaching,
		GroupPerformance: groupPerformance,
		Engagement:       engagement,
		FeedbackQuality:  feedbackQuality,
		Reflection:       reflection,
	}

	adjusted, penalty := c.GamingPenalty(weightedTotal(components), in.Patterns)

	return GradeResult{
		StudentID:     in.StudentID,
		Components:    components,
		GamingPenalty: penalty,
		FinalGrade:    round1(adjusted),
		LetterGrade:   LetterGrade(adjusted),
	}
}

func weightedTotal(c GradeComponents) float64 {
	return c.Quizzes*weightQuizzes +
		c.Exams*weightExams +
		c.Final*weightFinal +
		c.Teaching*weightTeaching +
		c.GroupPerformance*weightGroupPerformance +
		c.Engagement*weightEngagement +
		c.FeedbackQuality*weightFeedbackQuality +
		c.Reflection*weightReflection
}

// SummarizeAttempt computes the completed-attempt roll-up over the full
// catalog: accuracies are out of all catalog questions, and the headline score
// weights them 60/40.
func SummarizeAttempt(responses []model.ResponseRecord, questions []model.Question) AttemptSummary {
	if len(questions) == 0 {
		return AttemptSummary{}
	}
	byID := questionIndex(questions)

	answerCorrect := 0
	rationaleCorrect := 0
	for _, r := range responses {
		q, ok := byID[r.QuestionID]
		if !ok {
			continue
		}
		if r.AnswerID == q.CorrectAnswerID {
			answerCorrect++
		}
		if r.HasRationale() && q.CorrectRationale(*r.RationaleID) {
			rationaleCorrect++
		}
	}

	answerAccuracy := float64(answerCorrect) / float64(len(questions)) * 100
	rationaleAccuracy := float64(rationaleCorrect) / float64(len(questions)) * 100
	return AttemptSummary{
		Score:             math.Round(answerAccuracy*0.6 + rationaleAccuracy*0.4),
		AnswerAccuracy:    math.Round(answerAccuracy),
		RationaleAccuracy: math.Round(rationaleAccuracy),
	}
}

// LetterGrade maps a numeric grade to the standard plus/minus scale.
func LetterGrade(grade float64) string {
	switch {
	case grade >= 93:
		return "A"
	case grade >= 90:
		return "A-"
	case grade >= 87:
		return "B+"
	case grade >= 83:
		return "B"
	case grade >= 80:
		return "B-"
	case grade >= 77:
		return "C+"
	case grade >= 73:
		return "C"
	case grade >= 70:
		return "C-"
	case grade >= 67:
		return "D+"
	case grade >= 63:
		return "D"
	case grade >= 60:
		return "D-"
	}
	return "F"
}

// Report renders a plain-text grade breakdown for faculty export.
func (c *Calculator) Report(r GradeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grade Report for Student %d\n", r.StudentID)
	b.WriteString("================================================\n\n")
	b.WriteString("INDIVIDUAL COMPONENTS (60%)\n")
	fmt.Fprintf(&b, "  Quizzes (15%%):           %.1f\n", r.Components.Quizzes)
	fmt.Fprintf(&b, "  Exams (30%%):             %.1f\n", r.Components.Exams)
	fmt.Fprintf(&b, "  Final Exam (15%%):        %.1f\n", r.Components.Final)
	b.WriteString("\nGROUP COMPONENTS (25%)\n")
	fmt.Fprintf(&b, "  Teaching Quality (15%%):  %.1f\n", r.Components.Teaching)
	fmt.Fprintf(&b, "  Group Performance (10%%): %.1f\n", r.Components.GroupPerformance)
	b.WriteString("\nPARTICIPATION (15%)\n")
	fmt.Fprintf(&b, "  Engagement (8%%):         %.1f\n", r.Components.Engagement)
	fmt.Fprintf(&b, "  Feedback Quality (4%%):   %.1f\n", r.Components.FeedbackQuality)
	fmt.Fprintf(&b, "  Reflections (3%%):        %.1f\n", r.Components.Reflection)
	b.WriteString("\nADJUSTMENTS\n")
	fmt.Fprintf(&b, "  Gaming Penalty:          -%.1f\n", r.GamingPenalty)
	b.WriteString("\nFINAL GRADE\n")
	fmt.Fprintf(&b, "  Numerical Grade:         %.1f\n", r.FinalGrade)
	fmt.Fprintf(&b, "  Letter Grade:            %s\n", r.LetterGrade)
	return b.String()
}

func responsesForAssessment(responses []model.ResponseRecord, assessmentID uint) []model.ResponseRecord {
	var out []model.ResponseRecord
	for _, r := range responses {
		if r.AssessmentID == assessmentID {
			out = append(out, r)
		}
	}
	return out
}

func questionsForAssessment(questions []model.Question, assessmentID uint) []model.Question {
	var out []model.Question
	for _, q := range questions {
		if q.AssessmentID == assessmentID {
			out = append(out, q)
		}
	}
	return out
}

func evaluationTotals(evaluations []model.PeerEvaluation) []float64 {
	totals := make([]float64, len(evaluations))
	for i, e := range evaluations {
		totals[i] = e.TotalScore
	}
	return totals
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
