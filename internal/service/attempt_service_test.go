package service

import (
	"testing"

	"cptncf_backend/internal/model"
)

func TestSummarizeResults(t *testing.T) {
	assessment := &model.Assessment{BaseModel: model.BaseModel{ID: 7}, Title: "Week 3 quiz"}
	questions := []model.Question{
		{BaseModel: model.BaseModel{ID: 1}, Category: "diabetes", CorrectAnswerID: 11},
		{BaseModel: model.BaseModel{ID: 2}, Category: "immunity", CorrectAnswerID: 21},
	}
	attempts := []model.AssessmentAttempt{
		{
			Status: model.AttemptComplete,
			Score:  90,
			Responses: []model.ResponseRecord{
				{QuestionID: 1, AnswerID: 11},
				{QuestionID: 2, AnswerID: 21},
			},
		},
		{
			Status:             model.AttemptComplete,
			Score:              50,
			SuspiciousBehavior: true,
			Responses: []model.ResponseRecord{
				{QuestionID: 1, AnswerID: 12},
				{QuestionID: 2, AnswerID: 21},
			},
		},
		{
			Status: model.AttemptInProgress,
			Score:  0,
			Responses: []model.ResponseRecord{
				{QuestionID: 1, AnswerID: 13},
			},
		},
	}

	results := summarizeResults(assessment, attempts, questions)

	if len(results.Attempts) != 3 {
		t.Fatalf("all attempts should be listed, got %d", len(results.Attempts))
	}
	if results.CompletedCount != 2 {
		t.Fatalf("completed = %d, want 2", results.CompletedCount)
	}
	if results.AverageScore != 70 {
		t.Fatalf("average = %.1f, want 70 (in-progress excluded)", results.AverageScore)
	}
	if results.SuspiciousCount != 1 {
		t.Fatalf("suspicious = %d, want 1", results.SuspiciousCount)
	}
	if results.PerformanceByCategory["diabetes"] != 50 {
		t.Fatalf("diabetes accuracy = %.1f, want 50", results.PerformanceByCategory["diabetes"])
	}
	if results.PerformanceByCategory["immunity"] != 100 {
		t.Fatalf("immunity accuracy = %.1f, want 100", results.PerformanceByCategory["immunity"])
	}
}

func TestSummarizeResults_NoCompletedAttempts(t *testing.T) {
	assessment := &model.Assessment{BaseModel: model.BaseModel{ID: 7}}
	results := summarizeResults(assessment, []model.AssessmentAttempt{
		{Status: model.AttemptInProgress},
	}, nil)

	if results.AverageScore != 0 || results.CompletedCount != 0 {
		t.Fatalf("empty summary expected, got avg %.1f completed %d",
			results.AverageScore, results.CompletedCount)
	}
	if len(results.PerformanceByCategory) != 0 {
		t.Fatalf("no categories expected, got %v", results.PerformanceByCategory)
	}
}
