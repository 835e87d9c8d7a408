package dedupe

import (
	"path/filepath"
	"testing"

	"github.com/akvasu/braingym/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *database.DB, content string, url *string) database.Insight {
	t.Helper()
	id, err := db.InsertInsight(database.NewInsight{
		Content:        content,
		SourceURL:      url,
		Category:       database.CategoryNote,
		QualityScore:   6,
		UsefulForDaily: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in, err := db.GetInsight(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return *in
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		high bool
	}{
		{"pricing is positioning", "pricing is positioning", true},
		{"Pricing is positioning.", "pricing is positioning", true},
		{"raise prices until someone flinches", "raise prices until somebody flinches", true},
		{"raise prices until someone flinches", "write every day for thirty days", false},
		{"", "", false},
		{"a", "ab", false},
	}
	for _, tt := range tests {
		sim := Similarity(tt.a, tt.b)
		if tt.high && sim < similarityThreshold {
			t.Errorf("Similarity(%q, %q) = %v, expected >= %v", tt.a, tt.b, sim, similarityThreshold)
		}
		if !tt.high && sim >= similarityThreshold {
			t.Errorf("Similarity(%q, %q) = %v, expected < %v", tt.a, tt.b, sim, similarityThreshold)
		}
	}
}

func TestRunMarksURLDuplicate(t *testing.T) {
	db := openTestDB(t)
	url := "https://example.com/pricing-post"
	first := seed(t, db, "great pricing article", &url)
	second := seed(t, db, "someone shared this link again with a different comment", &url)

	result, err := New(db).Run([]database.Insight{second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duplicates != 1 {
		t.Fatalf("expected 1 duplicate, got %d", result.Duplicates)
	}

	in, _ := db.GetInsight(second.ID)
	if !in.IsDuplicate {
		t.Error("expected second insight marked duplicate")
	}
	if in.DuplicateOf == nil || *in.DuplicateOf != first.ID {
		t.Errorf("expected back-reference to %d, got %v", first.ID, in.DuplicateOf)
	}
	if in.UsefulForDaily {
		t.Error("duplicates must leave the daily pool")
	}
}

func TestRunMarksSimilarTextDuplicate(t *testing.T) {
	db := openTestDB(t)
	first := seed(t, db, "raise prices until someone flinches, then explain the value", nil)
	second := seed(t, db, "raise prices until somebody flinches, then explain the value", nil)

	result, err := New(db).Run([]database.Insight{second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duplicates != 1 {
		t.Fatalf("expected 1 duplicate, got %d", result.Duplicates)
	}
	in, _ := db.GetInsight(second.ID)
	if in.DuplicateOf == nil || *in.DuplicateOf != first.ID {
		t.Errorf("expected back-reference to %d, got %v", first.ID, in.DuplicateOf)
	}
}

func TestRunLeavesDistinctInsightsAlone(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "a note about pricing experiments", nil)
	second := seed(t, db, "a completely different reflection on writing habits", nil)

	result, err := New(db).Run([]database.Insight{second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duplicates != 0 {
		t.Errorf("expected no duplicates, got %d", result.Duplicates)
	}
}

func TestDuplicateSurvivesCanonicalArchive(t *testing.T) {
	db := openTestDB(t)
	url := "https://example.com/post"
	first := seed(t, db, "the canonical capture", &url)
	second := seed(t, db, "the repeat capture", &url)

	if _, err := New(db).Run([]database.Insight{second}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.ArchiveInsight(first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in, err := db.GetInsight(second.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in.IsDuplicate || in.DuplicateOf == nil {
		t.Error("duplicate marking must survive archiving the canonical insight")
	}
}
