package pipeline

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/database"
)

func newTestPipeline(t *testing.T) (*Pipeline, *database.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(config.Default(), db), db
}

const export = `[25/12/23, 10:30:15] Alice: I keep coming back to the idea that pricing is positioning, not arithmetic. The number you charge tells the market who you are for.
[25/12/23, 10:31:00] Bob: ok
[25/12/23, 10:32:00] Alice: image omitted
[25/12/23, 10:33:00] Bob: I keep coming back to the idea that pricing is positioning, not arithmetic. The number you charge tells the market who you are for.`

func TestImportRunsAllSteps(t *testing.T) {
	p, db := newTestPipeline(t)

	result := p.Import(strings.NewReader(export))
	if len(result.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(result.Steps))
	}
	for _, step := range result.Steps {
		if step.Err != nil {
			t.Fatalf("step %s failed: %v", step.Name, step.Err)
		}
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 messages survive parsing (the media notice is dropped):
	// the long note, the "ok" junk, and the repeated note.
	if stats.TotalInsights != 3 {
		t.Errorf("expected 3 stored insights, got %d", stats.TotalInsights)
	}
}

func TestImportMarksRepeatAsDuplicate(t *testing.T) {
	p, db := newTestPipeline(t)
	p.Import(strings.NewReader(export))

	recent, err := db.GetRecentInsights(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var duplicates int
	for _, in := range recent {
		if in.IsDuplicate {
			duplicates++
			if in.DuplicateOf == nil {
				t.Error("duplicate without back-reference")
			}
		}
	}
	if duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", duplicates)
	}
}

func TestImportClassifiesJunk(t *testing.T) {
	p, db := newTestPipeline(t)
	p.Import(strings.NewReader(export))

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ByCategory[database.CategoryJunk] != 1 {
		t.Errorf("expected 1 junk insight, got %d", stats.ByCategory[database.CategoryJunk])
	}
	if stats.ByCategory[database.CategoryNote] != 2 {
		t.Errorf("expected 2 notes, got %d", stats.ByCategory[database.CategoryNote])
	}
}

func TestImportFileMissing(t *testing.T) {
	p, _ := newTestPipeline(t)
	result := p.ImportFile("/nonexistent/export.txt")
	if len(result.Steps) != 1 || result.Steps[0].Err == nil {
		t.Error("expected a parse step error for a missing file")
	}
}
