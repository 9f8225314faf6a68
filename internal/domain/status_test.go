package domain

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{
		StatusDraft, StatusSubmittedByStudent, StatusSubmittedByEstablishment,
		StatusUnderReview, StatusValidated, StatusPublished, StatusRejected, StatusArchived,
	} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if Status("LIMBO").Valid() {
		t.Fatalf("unknown status reported valid")
	}
	if Status("").Valid() {
		t.Fatalf("empty status reported valid")
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := map[Status]bool{
		StatusDraft:                    false,
		StatusSubmittedByStudent:       false,
		StatusSubmittedByEstablishment: false,
		StatusUnderReview:              false,
		StatusValidated:                false,
		StatusPublished:                false,
		StatusRejected:                 true,
		StatusArchived:                 true,
	}
	for s, want := range cases {
		if got := s.Terminal(); got != want {
			t.Fatalf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
}

func TestStatusReviewable(t *testing.T) {
	cases := map[Status]bool{
		StatusDraft:                    false,
		StatusSubmittedByStudent:       true,
		StatusSubmittedByEstablishment: true,
		StatusUnderReview:              true,
		StatusValidated:                false,
		StatusPublished:                false,
		StatusRejected:                 false,
		StatusArchived:                 false,
	}
	for s, want := range cases {
		if got := s.Reviewable(); got != want {
			t.Fatalf("%s.Reviewable() = %v, want %v", s, got, want)
		}
	}
}

func TestInitialEstablishmentStatus(t *testing.T) {
	cases := []struct {
		saveAsDraft bool
		isLegacy    bool
		want        Status
	}{
		{false, false, StatusSubmittedByEstablishment},
		{false, true, StatusArchived},
		{true, false, StatusDraft},
		// A draft is never auto-archived, legacy or not.
		{true, true, StatusDraft},
	}
	for _, tc := range cases {
		got := InitialEstablishmentStatus(tc.saveAsDraft, tc.isLegacy)
		if got != tc.want {
			t.Fatalf("InitialEstablishmentStatus(%v, %v) = %s, want %s", tc.saveAsDraft, tc.isLegacy, got, tc.want)
		}
	}
}
