package service

import (
	"encoding/json"
	"errors"
	"testing"

	"cptncf_backend/internal/model"
	"cptncf_backend/internal/util"
)

func rubric(cm, pa, tm, pd int) *model.PeerEvaluation {
	return &model.PeerEvaluation{
		ContentMastery:          cm,
		ProfessionalApplication: pa,
		TeachingMethodology:     tm,
		ProfessionalDelivery:    pd,
	}
}

func withIndicators(e *model.PeerEvaluation, indicators ...model.NegativeIndicator) *model.PeerEvaluation {
	payload, _ := json.Marshal(indicators)
	e.NegativeIndicators = payload
	return e
}

func TestScore(t *testing.T) {
	total, err := Score(rubric(28, 22, 20, 18))
	if err != nil {
		t.Fatal(err)
	}
	if total != 88 {
		t.Fatalf("expected 88, got %f", total)
	}
}

func TestScore_AppliedDeductionsOnly(t *testing.T) {
	e := withIndicators(rubric(28, 22, 20, 18),
		model.NegativeIndicator{Item: "read directly from slides", Deduction: 5, Applied: true},
		model.NegativeIndicator{Item: "materials not submitted in advance", Deduction: 3, Applied: false},
	)
	total, err := Score(e)
	if err != nil {
		t.Fatal(err)
	}
	if total != 83 {
		t.Fatalf("unapplied indicators must not deduct: expected 83, got %f", total)
	}
}

func TestScore_FloorsAtZero(t *testing.T) {
	e := withIndicators(rubric(1, 0, 0, 0),
		model.NegativeIndicator{Item: "session cut short", Deduction: 10, Applied: true},
	)
	total, err := Score(e)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("total must floor at 0, got %f", total)
	}
}

func TestScore_SectionBounds(t *testing.T) {
	cases := []*model.PeerEvaluation{
		rubric(31, 0, 0, 0),
		rubric(0, 26, 0, 0),
		rubric(0, 0, 26, 0),
		rubric(0, 0, 0, 21),
		rubric(-1, 0, 0, 0),
	}
	for i, e := range cases {
		if _, err := Score(e); !errors.Is(err, util.ErrSectionOutOfRange) {
			t.Fatalf("case %d: expected range error, got %v", i, err)
		}
	}
}

func TestScore_MaximumRubric(t *testing.T) {
	total, err := Score(rubric(
		model.MaxContentMastery,
		model.MaxProfessionalApplication,
		model.MaxTeachingMethodology,
		model.MaxProfessionalDelivery,
	))
	if err != nil {
		t.Fatal(err)
	}
	if total != 100 {
		t.Fatalf("section maxima must sum to 100, got %f", total)
	}
}
