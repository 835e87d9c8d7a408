// Package extract pulls readable article text for link insights and
// rescores them once full text is available.
package extract

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/akvasu/braingym/internal/classify"
	"github.com/akvasu/braingym/internal/database"
)

// Result holds the results of an extraction run.
type Result struct {
	Extracted int
	Failed    int
}

// Extractor fetches full text via HTTP + readability extraction.
type Extractor struct {
	db         *database.DB
	classifier *classify.Classifier
	client     *http.Client
}

// New creates an Extractor.
func New(db *database.DB, classifier *classify.Classifier, timeout time.Duration) *Extractor {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		db:         db,
		classifier: classifier,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// ExtractPending fetches text for up to limit insights still awaiting
// extraction. A domain that errors once is skipped for the rest of the run.
// Successful extractions get their quality rescored with the full text.
func (e *Extractor) ExtractPending(limit int) *Result {
	insights, err := e.db.GetInsightsNeedingExtraction(limit)
	if err != nil {
		log.Printf("Error getting insights needing extraction: %v", err)
		return &Result{}
	}
	if len(insights) == 0 {
		log.Println("No insights need extraction")
		return &Result{}
	}

	result := &Result{}
	failedDomains := make(map[string]struct{})

	for _, in := range insights {
		if in.SourceURL == nil {
			continue
		}
		domain := classify.Domain(*in.SourceURL)

		if _, failed := failedDomains[domain]; failed {
			e.markFailed(in.ID, result)
			continue
		}

		text, httpErr := e.fetchText(*in.SourceURL)
		if httpErr != nil {
			e.markFailed(in.ID, result)
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s, skipping remaining from %s", *in.SourceURL, domain)
			continue
		}
		if text == "" {
			e.markFailed(in.ID, result)
			log.Printf("No extractable content from %s", *in.SourceURL)
			continue
		}

		if err := e.db.UpdateExtraction(in.ID, &text, database.ExtractionSuccess); err != nil {
			log.Printf("Error storing extraction for insight %d: %v", in.ID, err)
			result.Failed++
			continue
		}
		e.rescore(in, text)
		result.Extracted++
	}

	log.Printf("Extraction complete: %d extracted, %d failed", result.Extracted, result.Failed)
	return result
}

// rescore recomputes quality now that the full text is known. A rescore
// failure is logged, never fatal; the extracted text is already saved.
func (e *Extractor) rescore(in database.Insight, text string) {
	in.ExtractedText = &text
	quality := e.classifier.Rescore(&in)
	if err := e.db.UpdateQuality(in.ID, quality); err != nil {
		log.Printf("Error rescoring insight %d: %v", in.ID, err)
	}
}

func (e *Extractor) markFailed(insightID int64, result *Result) {
	if err := e.db.UpdateExtraction(insightID, nil, database.ExtractionFailed); err != nil {
		log.Printf("Error marking extraction failed for insight %d: %v", insightID, err)
	}
	result.Failed++
}

// fetchText returns extracted article text of at least 100 characters, or
// empty. Connection errors and parse errors are soft failures; an HTTP
// status >= 400 is returned as an error so the caller can blacklist the
// domain for the run.
func (e *Extractor) fetchText(pageURL string) (string, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "braingym/1.0 (personal knowledge base)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > 100 {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
