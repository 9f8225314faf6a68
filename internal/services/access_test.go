package services

import (
	"testing"
	"time"

	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
)

func TestDecideFileAccess(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name       string
		doc        *types.Document
		wantAllow  bool
		wantReason string
	}{
		{
			name:       "nil document",
			doc:        nil,
			wantAllow:  false,
			wantReason: DenyNotPublished,
		},
		{
			name:       "draft",
			doc:        &types.Document{Status: types.StatusDraft},
			wantAllow:  false,
			wantReason: DenyNotPublished,
		},
		{
			name:       "under review",
			doc:        &types.Document{Status: types.StatusUnderReview},
			wantAllow:  false,
			wantReason: DenyNotPublished,
		},
		{
			name:       "rejected",
			doc:        &types.Document{Status: types.StatusRejected},
			wantAllow:  false,
			wantReason: DenyNotPublished,
		},
		{
			name:       "archived keeps published_at but denies",
			doc:        &types.Document{Status: types.StatusArchived, PublishedAt: &past},
			wantAllow:  false,
			wantReason: DenyNotPublished,
		},
		{
			name:      "published plain",
			doc:       &types.Document{Status: types.StatusPublished},
			wantAllow: true,
		},
		{
			name:       "published but confidential",
			doc:        &types.Document{Status: types.StatusPublished, IsConfidential: true},
			wantAllow:  false,
			wantReason: DenyConfidential,
		},
		{
			name:       "published under embargo",
			doc:        &types.Document{Status: types.StatusPublished, EmbargoUntil: &future},
			wantAllow:  false,
			wantReason: DenyEmbargoed,
		},
		{
			name:      "published with elapsed embargo",
			doc:       &types.Document{Status: types.StatusPublished, EmbargoUntil: &past},
			wantAllow: true,
		},
		{
			name:      "embargo expiring exactly now",
			doc:       &types.Document{Status: types.StatusPublished, EmbargoUntil: &now},
			wantAllow: true,
		},
		{
			name:       "confidential wins over embargo in reporting",
			doc:        &types.Document{Status: types.StatusPublished, IsConfidential: true, EmbargoUntil: &future},
			wantAllow:  false,
			wantReason: DenyConfidential,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecideFileAccess(tc.doc, now)
			if got.Allowed != tc.wantAllow {
				t.Fatalf("Allowed = %v, want %v", got.Allowed, tc.wantAllow)
			}
			if got.Reason != tc.wantReason {
				t.Fatalf("Reason = %q, want %q", got.Reason, tc.wantReason)
			}
		})
	}
}

func TestDecideFileAccessDoesNotMutate(t *testing.T) {
	future := time.Now().UTC().Add(time.Hour)
	doc := &types.Document{Status: types.StatusPublished, IsConfidential: true, EmbargoUntil: &future}
	before := *doc

	_ = DecideFileAccess(doc, time.Now().UTC())
	_ = DecideFileAccess(doc, time.Now().UTC())

	if doc.Status != before.Status || doc.IsConfidential != before.IsConfidential || doc.EmbargoUntil != before.EmbargoUntil {
		t.Fatalf("decision mutated the document")
	}
}
