package service

import (
	"testing"
	"time"

	"cptncf_backend/internal/config"
	"cptncf_backend/internal/model"
)

func detectionCfg() config.DetectionConfig {
	return config.DetectionConfig{AlertConfidence: 0.7, CriticalConfidence: 0.8}
}

func TestAlertDecision_Thresholds(t *testing.T) {
	cases := []struct {
		confidence float64
		emit       bool
		priority   model.AlertPriority
	}{
		{0.5, false, ""},
		{0.7, false, ""}, // strictly above, not at
		{0.71, true, model.AlertMedium},
		{0.8, true, model.AlertMedium}, // escalation is strictly above too
		{0.81, true, model.AlertHigh},
		{1.0, true, model.AlertHigh},
	}

	for _, tc := range cases {
		emit, priority := alertDecision(tc.confidence, detectionCfg())
		if emit != tc.emit {
			t.Fatalf("confidence %.2f: emit = %v, want %v", tc.confidence, emit, tc.emit)
		}
		if priority != tc.priority {
			t.Fatalf("confidence %.2f: priority = %q, want %q", tc.confidence, priority, tc.priority)
		}
	}
}

func TestRefreshOrNewAlert_NewWhenNonePending(t *testing.T) {
	alert, created := refreshOrNewAlert(nil, 42, "rapid answering without reading", model.AlertMedium)
	if !created {
		t.Fatal("expected a new alert when none is pending")
	}
	if alert.Type != "individual" {
		t.Fatalf("type = %q, want individual", alert.Type)
	}
	if alert.TargetID != 42 {
		t.Fatalf("target = %d, want 42", alert.TargetID)
	}
	if alert.Status != model.AlertPending {
		t.Fatalf("status = %q, want pending", alert.Status)
	}
	if alert.Priority != model.AlertMedium {
		t.Fatalf("priority = %q, want medium", alert.Priority)
	}
}

func TestRefreshOrNewAlert_UpdatesPendingInPlace(t *testing.T) {
	existing := &model.InterventionAlert{
		Type:     "individual",
		TargetID: 42,
		Reason:   "rapid answering without reading",
		Priority: model.AlertMedium,
		Status:   model.AlertPending,
	}

	alert, created := refreshOrNewAlert(existing, 42, "rapid answering without reading", model.AlertHigh)
	if created {
		t.Fatal("pending alert must be refreshed, not duplicated")
	}
	if alert != existing {
		t.Fatal("expected the pending alert itself back")
	}
	if alert.Priority != model.AlertHigh {
		t.Fatalf("priority = %q, want high after escalation", alert.Priority)
	}
}

func TestWeeklyTrends(t *testing.T) {
	byWeek := map[int][]model.AssessmentAttempt{
		2: {
			{Status: model.AttemptComplete, Score: 80, AnswerAccuracy: 75, RationaleAccuracy: 70},
			{Status: model.AttemptComplete, Score: 60, AnswerAccuracy: 65, RationaleAccuracy: 50, SuspiciousBehavior: true},
			{Status: model.AttemptInProgress, Score: 0},
		},
		1: {
			{Status: model.AttemptComplete, Score: 90, AnswerAccuracy: 100, RationaleAccuracy: 80},
		},
		3: {
			{Status: model.AttemptAbandoned},
		},
	}

	trends := weeklyTrends(byWeek)
	if len(trends) != 2 {
		t.Fatalf("expected 2 trend rows, got %d", len(trends))
	}
	if trends[0].Week != 1 || trends[1].Week != 2 {
		t.Fatalf("rows out of week order: %v", trends)
	}

	w2 := trends[1]
	if w2.StudentsCompleted != 2 {
		t.Fatalf("week 2 completed = %d, want 2 (in-progress excluded)", w2.StudentsCompleted)
	}
	if w2.AverageScore != 70 {
		t.Fatalf("week 2 average = %.1f, want 70", w2.AverageScore)
	}
	if w2.AnswerAccuracy != 70 {
		t.Fatalf("week 2 answer accuracy = %.1f, want 70", w2.AnswerAccuracy)
	}
	if w2.RationaleAccuracy != 60 {
		t.Fatalf("week 2 rationale accuracy = %.1f, want 60", w2.RationaleAccuracy)
	}
	if w2.SuspiciousAttempts != 1 {
		t.Fatalf("week 2 suspicious = %d, want 1", w2.SuspiciousAttempts)
	}
}

func TestCategoryAccuracy(t *testing.T) {
	questions := []model.Question{
		{BaseModel: model.BaseModel{ID: 1}, Category: "diabetes", CorrectAnswerID: 11},
		{BaseModel: model.BaseModel{ID: 2}, Category: "diabetes", CorrectAnswerID: 21},
		{BaseModel: model.BaseModel{ID: 3}, Category: "immunity", CorrectAnswerID: 31},
	}
	responses := []model.ResponseRecord{
		{QuestionID: 1, AnswerID: 11, AnswerLockedAt: time.Now()},
		{QuestionID: 2, AnswerID: 23, AnswerLockedAt: time.Now()},
		{QuestionID: 3, AnswerID: 31, AnswerLockedAt: time.Now()},
		{QuestionID: 99, AnswerID: 1, AnswerLockedAt: time.Now()}, // unknown question, skipped
	}

	acc := categoryAccuracy(responses, questions)
	if len(acc) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(acc))
	}
	if acc["diabetes"] != 50 {
		t.Fatalf("diabetes = %.1f, want 50", acc["diabetes"])
	}
	if acc["immunity"] != 100 {
		t.Fatalf("immunity = %.1f, want 100", acc["immunity"])
	}
}
