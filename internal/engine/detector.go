package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"cptncf_backend/internal/model"
)

// Detection thresholds. Comparisons against them are strict.
const (
	rationaleAccuracyThreshold = 30.0 // percentage points of rationale-over-answer accuracy
	peerTestThreshold          = 20.0 // points a peer score may exceed the evaluator's own test score
	varianceThreshold          = 0.1  // minimum coefficient of variation across an evaluator's scores
	mismatchThreshold          = 0.3  // answer/rationale correctness disagreement rate
	rapidResponseSeconds       = 5    // under this time-on-question a response counts as rapid
	rapidRateThreshold         = 0.5

	responseMinSamples   = 5 // rationale mining, answer-rationale mismatch
	rapidMinSamples      = 3
	evaluationMinSamples = 3 // no variance, per evaluator
)

// Detector holds stateless detection functions over immutable snapshots of the
// response ledger and peer-evaluation records. Every function is deterministic
// and idempotent for a fixed input; callers re-run them after each ledger
// mutation and replace, not append, the resulting pattern set. Degenerate
// statistics (zero mean, empty denominators) yield no pattern rather than an
// error: a missed signal is preferred over a crash in the grading pipeline.
type Detector struct {
	clock Clock
}

func NewDetector(clock Clock) *Detector {
	if clock == nil {
		clock = SystemClock()
	}
	return &Detector{clock: clock}
}

// RationaleMining flags students whose rationale accuracy exceeds their answer
// accuracy by more than 30 percentage points across at least 5 responses:
// consistently correct rationales despite incorrect answers suggest external
// lookup rather than reasoning from the locked answer.
func (d *Detector) RationaleMining(responses []model.ResponseRecord, questions []model.Question) *model.GamingPattern {
	if len(responses) < responseMinSamples {
		return nil
	}
	byID := questionIndex(questions)

	correctAnswers := 0
	correctRationales := 0
	total := 0
	for _, r := range responses {
		q, ok := byID[r.QuestionID]
		if !ok || !r.HasRationale() {
			continue
		}
		total++
		if r.AnswerID == q.CorrectAnswerID {
			correctAnswers++
		}
		if q.CorrectRationale(*r.RationaleID) {
			correctRationales++
		}
	}
	if total == 0 {
		return nil
	}

	answerAccuracy := float64(correctAnswers) / float64(total) * 100
	rationaleAccuracy := float64(correctRationales) / float64(total) * 100
	difference := rationaleAccuracy - answerAccuracy
	if difference <= rationaleAccuracyThreshold {
		return nil
	}

	return d.pattern(responses[0].StudentID, model.PatternRationaleMining,
		math.Min(difference/50, 1),
		map[string]any{
			"answerAccuracy":    round2(answerAccuracy),
			"rationaleAccuracy": round2(rationaleAccuracy),
			"difference":        round2(difference),
			"sampleSize":        total,
		})
}

// AnswerRationaleMismatch flags responses whose answer correctness disagrees
// with their rationale correctness more than 30% of the time.
func (d *Detector) AnswerRationaleMismatch(responses []model.ResponseRecord, questions []model.Question) *model.GamingPattern {
	if len(responses) < responseMinSamples {
		return nil
	}
	byID := questionIndex(questions)

	mismatches := 0
	total := 0
	for _, r := range responses {
		q, ok := byID[r.QuestionID]
		if !ok || !r.HasRationale() {
			continue
		}
		total++
		answerCorrect := r.AnswerID == q.CorrectAnswerID
		rationaleCorrect := q.CorrectRationale(*r.RationaleID)
		if answerCorrect != rationaleCorrect {
			mismatches++
		}
	}
	if total == 0 {
		return nil
	}

	rate := float64(mismatches) / float64(total)
	if rate <= mismatchThreshold {
		return nil
	}

	return d.pattern(responses[0].StudentID, model.PatternAnswerRationaleMismatch,
		math.Min(rate/0.5, 1),
		map[string]any{
			"mismatchCount":  mismatches,
			"totalEvaluated": total,
			"mismatchRate":   fmt.Sprintf("%.2f%%", rate*100),
		})
}

// RapidResponse flags attempts where more than half of at least 3 responses
// were locked in under 5 seconds.
func (d *Detector) RapidResponse(responses []model.ResponseRecord) *model.GamingPattern {
	if len(responses) < rapidMinSamples {
		return nil
	}

	rapid := 0
	totalTime := 0
	for _, r := range responses {
		totalTime += r.TimeOnQuestion
		if r.TimeOnQuestion < rapidResponseSeconds {
			rapid++
		}
	}

	rate := float64(rapid) / float64(len(responses))
	if rate <= rapidRateThreshold {
		return nil
	}

	return d.pattern(responses[0].StudentID, model.PatternRapidResponse,
		rate,
		map[string]any{
			"rapidResponseCount":     rapid,
			"totalResponses":         len(responses),
			"averageTime":            round2(float64(totalTime) / float64(len(responses))),
			"rapidResponseThreshold": rapidResponseSeconds,
		})
}

// ReciprocalInflation flags pairs of students who evaluated each other and
// whose mutual totals both exceed each evaluator's own test score by more than
// 20 points. Each unordered pair is considered once; one pattern is emitted
// per evaluator with fixed confidence 0.8.
func (d *Detector) ReciprocalInflation(evaluations []model.PeerEvaluation, testScores map[uint]float64) []model.GamingPattern {
	var patterns []model.GamingPattern
	seen := make(map[string]bool)

	for i := range evaluations {
		e1 := &evaluations[i]
		if e1.IsFacultyBenchmark {
			continue
		}
		e2 := findReciprocal(evaluations, e1)
		if e2 == nil {
			continue
		}

		key := pairKey(e1.EvaluatorID, e1.TeacherID)
		if seen[key] {
			continue
		}
		seen[key] = true

		score1 := testScores[e1.EvaluatorID]
		score2 := testScores[e1.TeacherID]
		if e1.TotalScore <= score1+peerTestThreshold || e2.TotalScore <= score2+peerTestThreshold {
			continue
		}

		patterns = append(patterns,
			*d.pattern(e1.EvaluatorID, model.PatternReciprocalInflation, 0.8, map[string]any{
				"pairedWith": e1.TeacherID,
				"peerScore":  e1.TotalScore,
				"testScore":  score1,
				"difference": e1.TotalScore - score1,
			}),
			*d.pattern(e2.EvaluatorID, model.PatternReciprocalInflation, 0.8, map[string]any{
				"pairedWith": e2.TeacherID,
				"peerScore":  e2.TotalScore,
				"testScore":  score2,
				"difference": e2.TotalScore - score2,
			}))
	}

	return patterns
}

// NoVariance flags evaluators who scored at least 3 peers with a coefficient
// of variation under 0.1: rubber-stamped rubrics carry no signal. A zero mean
// makes the coefficient undefined and emits nothing.
func (d *Detector) NoVariance(evaluations []model.PeerEvaluation) []model.GamingPattern {
	byEvaluator := make(map[uint][]float64)
	for _, e := range evaluations {
		if e.IsFacultyBenchmark {
			continue
		}
		byEvaluator[e.EvaluatorID] = append(byEvaluator[e.EvaluatorID], e.TotalScore)
	}

	evaluators := make([]uint, 0, len(byEvaluator))
	for id := range byEvaluator {
		evaluators = append(evaluators, id)
	}
	sort.Slice(evaluators, func(i, j int) bool { return evaluators[i] < evaluators[j] })

	var patterns []model.GamingPattern
	for _, evaluatorID := range evaluators {
		scores := byEvaluator[evaluatorID]
		if len(scores) < evaluationMinSamples {
			continue
		}

		m := mean(scores)
		if m <= 0 {
			continue
		}
		sd := math.Sqrt(populationVariance(scores, m))
		cv := sd / m
		if cv >= varianceThreshold {
			continue
		}

		patterns = append(patterns, *d.pattern(evaluatorID, model.PatternNoVariance,
			1-cv,
			map[string]any{
				"scores":                 scores,
				"mean":                   round2(m),
				"standardDeviation":      round2(sd),
				"coefficientOfVariation": math.Round(cv*10000) / 10000,
				"evaluationCount":        len(scores),
			}))
	}

	return patterns
}

// DetectAll runs every detector over the supplied snapshot. The result is the
// complete current pattern set; stored patterns should be replaced with it.
func (d *Detector) DetectAll(
	responses []model.ResponseRecord,
	questions []model.Question,
	evaluations []model.PeerEvaluation,
	testScores map[uint]float64,
) []model.GamingPattern {
	var patterns []model.GamingPattern

	if p := d.RationaleMining(responses, questions); p != nil {
		patterns = append(patterns, *p)
	}
	if p := d.AnswerRationaleMismatch(responses, questions); p != nil {
		patterns = append(patterns, *p)
	}
	if p := d.RapidResponse(responses); p != nil {
		patterns = append(patterns, *p)
	}
	patterns = append(patterns, d.ReciprocalInflation(evaluations, testScores)...)
	patterns = append(patterns, d.NoVariance(evaluations)...)

	return patterns
}

// DedupePatterns collapses a pattern list to one entry per
// (student, pattern type), keeping the highest confidence. Order of first
// appearance is preserved.
func DedupePatterns(patterns []model.GamingPattern) []model.GamingPattern {
	type key struct {
		student uint
		ptype   model.PatternType
	}
	index := make(map[key]int)
	out := make([]model.GamingPattern, 0, len(patterns))
	for _, p := range patterns {
		k := key{p.StudentID, p.PatternType}
		if i, ok := index[k]; ok {
			if p.Confidence > out[i].Confidence {
				out[i] = p
			}
			continue
		}
		index[k] = len(out)
		out = append(out, p)
	}
	return out
}

func (d *Detector) pattern(studentID uint, ptype model.PatternType, confidence float64, details map[string]any) *model.GamingPattern {
	payload, _ := json.Marshal(details)
	return &model.GamingPattern{
		StudentID:   studentID,
		PatternType: ptype,
		Confidence:  confidence,
		DetectedAt:  d.clock.Now(),
		Details:     payload,
	}
}

func findReciprocal(evaluations []model.PeerEvaluation, e *model.PeerEvaluation) *model.PeerEvaluation {
	for i := range evaluations {
		other := &evaluations[i]
		if other.IsFacultyBenchmark {
			continue
		}
		if other.EvaluatorID == e.TeacherID && other.TeacherID == e.EvaluatorID {
			return other
		}
	}
	return nil
}

func pairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

func questionIndex(questions []model.Question) map[uint]*model.Question {
	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	return byID
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationVariance(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
