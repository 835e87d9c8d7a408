package daily

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/akvasu/braingym/internal/config"
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

func newTestSelector(db *database.DB) *Selector {
	return New(db, config.Default().Daily)
}

func seedNote(t *testing.T, db *database.DB, content string, quality int) int64 {
	t.Helper()
	id, err := db.InsertInsight(database.NewInsight{
		Content:        content,
		Category:       database.CategoryNote,
		QualityScore:   quality,
		UsefulForDaily: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return id
}

func candidate(id int64, category string, quality int, lastShown *string) database.Insight {
	return database.Insight{
		ID:            id,
		Content:       fmt.Sprintf("insight %d", id),
		Category:      category,
		QualityScore:  quality,
		Status:        database.StatusPending,
		LastShownDate: lastShown,
	}
}

func TestSelectEmptyStore(t *testing.T) {
	db := openTestDB(t)
	got, err := newTestSelector(db).Select()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty selection, got %d", len(got))
	}
}

func TestSelectSkipsHandledInsights(t *testing.T) {
	db := openTestDB(t)

	archivedID := seedNote(t, db, "already archived note", 9)
	if err := db.ArchiveInsight(archivedID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	respondedID := seedNote(t, db, "already responded note", 9)
	if _, err := db.AddResponse(respondedID, "my reflection"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	junkID, err := db.InsertInsight(database.NewInsight{
		Content:      "ok",
		Category:     database.CategoryJunk,
		QualityScore: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eligible := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		eligible[seedNote(t, db, fmt.Sprintf("eligible note %d", i), 7)] = true
	}

	got, err := newTestSelector(db).Select()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(got))
	}
	for _, in := range got {
		if !eligible[in.ID] {
			t.Errorf("selected ineligible insight %d", in.ID)
		}
		if in.ID == archivedID || in.ID == respondedID || in.ID == junkID {
			t.Errorf("selected handled or junk insight %d", in.ID)
		}
	}
}

func TestSelectRecordsExposure(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 4; i++ {
		seedNote(t, db, fmt.Sprintf("note %d", i), 8)
	}

	got, err := newTestSelector(db).Select()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(got))
	}

	today := database.GetToday()
	for _, picked := range got {
		in, err := db.GetInsight(picked.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if in.TimesShown != 1 {
			t.Errorf("insight %d: expected times_shown 1, got %d", in.ID, in.TimesShown)
		}
		if in.LastShownDate == nil || *in.LastShownDate != today {
			t.Errorf("insight %d: expected last_shown_date %q, got %v", in.ID, today, in.LastShownDate)
		}
		if in.Status != database.StatusPending {
			t.Errorf("insight %d: showing must not change status, got %q", in.ID, in.Status)
		}
	}

	session, err := db.GetSession(today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session == nil {
		t.Fatal("expected a logged session for today")
	}
	if len(session.InsightIDs) != 3 {
		t.Errorf("expected 3 session ids, got %d", len(session.InsightIDs))
	}
}

func TestPickIncludesHighTier(t *testing.T) {
	s := newTestSelector(nil)
	pool := []database.Insight{candidate(1, database.CategoryNote, 9, nil)}
	for i := int64(2); i <= 10; i++ {
		pool = append(pool, candidate(i, database.CategoryNote, 4, nil))
	}

	for trial := 0; trial < 20; trial++ {
		got := s.pick(pool)
		if len(got) != 3 {
			t.Fatalf("expected 3 picks, got %d", len(got))
		}
		foundHigh := false
		for _, in := range got {
			if in.QualityScore >= s.cfg.HighTier {
				foundHigh = true
			}
		}
		if !foundHigh {
			t.Fatal("expected at least one high-tier insight in every selection")
		}
	}
}

func TestPickCooldownExcludesRecentlyShown(t *testing.T) {
	s := newTestSelector(nil)
	today := time.Now().Format("2006-01-02")

	pool := []database.Insight{candidate(1, database.CategoryNote, 9, &today)}
	for i := int64(2); i <= 8; i++ {
		pool = append(pool, candidate(i, database.CategoryNote, 9, nil))
	}

	for trial := 0; trial < 20; trial++ {
		for _, in := range s.pick(pool) {
			if in.ID == 1 {
				t.Fatal("insight shown today must not be reselected while fresh candidates exist")
			}
		}
	}
}

func TestPickCooldownWaivedWhenPoolIsThin(t *testing.T) {
	s := newTestSelector(nil)
	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	pool := []database.Insight{
		candidate(1, database.CategoryNote, 9, &today),
		candidate(2, database.CategoryNote, 9, &yesterday),
		candidate(3, database.CategoryNote, 9, &yesterday),
	}
	got := s.pick(pool)
	if len(got) != 3 {
		t.Errorf("expected cooldown waiver to fill 3 slots, got %d", len(got))
	}
}

func TestPickVariesCategories(t *testing.T) {
	s := newTestSelector(nil)
	var pool []database.Insight
	categories := []string{database.CategoryNote, database.CategoryArticle, database.CategoryVideo}
	for i := int64(1); i <= 9; i++ {
		pool = append(pool, candidate(i, categories[int(i)%3], 9, nil))
	}

	for trial := 0; trial < 20; trial++ {
		got := s.pick(pool)
		for i := 1; i < len(got); i++ {
			if got[i].Category == got[i-1].Category {
				t.Fatalf("consecutive picks share category %q despite variety in the pool", got[i].Category)
			}
		}
	}
}

func TestPickLetsAnotherTierBreakCategoryRuns(t *testing.T) {
	s := newTestSelector(nil)
	// One candidate per tier; only the low tier offers a second category,
	// so it must be interleaved between the two notes.
	pool := []database.Insight{
		candidate(1, database.CategoryNote, 9, nil),
		candidate(2, database.CategoryNote, 6, nil),
		candidate(3, database.CategoryArticle, 3, nil),
	}

	for trial := 0; trial < 20; trial++ {
		got := s.pick(pool)
		if len(got) != 3 {
			t.Fatalf("expected 3 picks, got %d", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Category == got[i-1].Category {
				t.Fatalf("consecutive picks share category %q while another category remained", got[i].Category)
			}
		}
	}
}

func TestPickRepeatsCategoryOnlyWhenUnavoidable(t *testing.T) {
	s := newTestSelector(nil)
	pool := []database.Insight{
		candidate(1, database.CategoryNote, 9, nil),
		candidate(2, database.CategoryNote, 6, nil),
		candidate(3, database.CategoryNote, 3, nil),
	}
	if got := s.pick(pool); len(got) != 3 {
		t.Errorf("an all-one-category pool must still fill the set, got %d", len(got))
	}
}

func TestPickIsNotDeterministic(t *testing.T) {
	s := newTestSelector(nil)
	var pool []database.Insight
	for i := int64(1); i <= 12; i++ {
		pool = append(pool, candidate(i, database.CategoryNote, 9, nil))
	}

	seen := make(map[string]bool)
	for trial := 0; trial < 50; trial++ {
		got := s.pick(pool)
		key := ""
		for _, in := range got {
			key += fmt.Sprintf("%d,", in.ID)
		}
		seen[key] = true
	}
	if len(seen) < 2 {
		t.Error("expected selection to vary across runs over an interchangeable pool")
	}
}
