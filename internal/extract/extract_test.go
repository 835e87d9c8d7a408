package extract

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akvasu/braingym/internal/classify"
	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/database"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Why Underpricing Kills Startups</title></head>
<body>
<article>
<h1>Why Underpricing Kills Startups</h1>
<p>Most early-stage founders anchor their price to competitors rather than to the
value their product delivers, leaving margin on the table and attracting the
wrong customers. The cheapest buyers are the loudest complainers.</p>
<p>Doubling prices on the next five deals is the fastest experiment you can
run. If nobody flinches, you are still underpriced. If everyone walks, you
learned where the ceiling is for your current positioning.</p>
</article>
</body>
</html>`

func newTestExtractor(t *testing.T) (*Extractor, *database.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	classifier := classify.New(config.Default().Classifier)
	return New(db, classifier, 5*time.Second), db
}

func seedLink(t *testing.T, db *database.DB, pageURL string) int64 {
	t.Helper()
	id, err := db.InsertInsight(database.NewInsight{
		Content:        pageURL,
		SourceURL:      &pageURL,
		Category:       database.CategoryArticle,
		QualityScore:   5,
		UsefulForDaily: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return id
}

func TestExtractPendingStoresText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	e, db := newTestExtractor(t)
	id := seedLink(t, db, srv.URL+"/pricing")

	result := e.ExtractPending(0)
	if result.Extracted != 1 {
		t.Fatalf("expected 1 extraction, got %d (failed %d)", result.Extracted, result.Failed)
	}

	in, err := db.GetInsight(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.ExtractionStatus != database.ExtractionSuccess {
		t.Errorf("expected status success, got %q", in.ExtractionStatus)
	}
	if in.ExtractedText == nil || !strings.Contains(*in.ExtractedText, "Doubling prices") {
		t.Errorf("expected article text stored, got %v", in.ExtractedText)
	}
	if in.QualityScore <= 5 {
		t.Errorf("expected quality rescored upward after extraction, got %d", in.QualityScore)
	}
}

func TestExtractMarksFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e, db := newTestExtractor(t)
	id := seedLink(t, db, srv.URL+"/gone")

	result := e.ExtractPending(0)
	if result.Failed != 1 {
		t.Fatalf("expected 1 failure, got %d", result.Failed)
	}

	in, err := db.GetInsight(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.ExtractionStatus != database.ExtractionFailed {
		t.Errorf("expected status failed, got %q", in.ExtractionStatus)
	}
	// Failed insights leave the pending pool.
	remaining, err := db.GetInsightsNeedingExtraction(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty pending pool, got %d", len(remaining))
	}
}

func TestExtractSkipsDomainAfterHTTPError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	e, db := newTestExtractor(t)
	for i := 0; i < 3; i++ {
		seedLink(t, db, fmt.Sprintf("%s/page/%d", srv.URL, i))
	}

	result := e.ExtractPending(0)
	if result.Failed != 3 {
		t.Errorf("expected 3 failures, got %d", result.Failed)
	}
	if hits != 1 {
		t.Errorf("expected a single request before the domain was skipped, got %d", hits)
	}
}

func TestExtractShortContentIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>too short</p></body></html>"))
	}))
	defer srv.Close()

	e, db := newTestExtractor(t)
	id := seedLink(t, db, srv.URL+"/stub")

	result := e.ExtractPending(0)
	if result.Extracted != 0 || result.Failed != 1 {
		t.Fatalf("expected short content to count as failure, got %+v", result)
	}
	in, _ := db.GetInsight(id)
	if in.ExtractionStatus != database.ExtractionFailed {
		t.Errorf("expected status failed, got %q", in.ExtractionStatus)
	}
}
