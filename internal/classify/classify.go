// Package classify assigns a category, topical tags, and a quality score to
// raw captured content. Classification is rule-ordered and deterministic:
//
//  1. personal keywords force the personal category
//  2. URL host rules fix the category for link-derived content
//  3. short or system-message text is junk
//  4. everything else is a note
//
// Malformed input never errors; it degrades to junk with no tags and the
// minimum score.
package classify

import (
	"net/url"
	"sort"
	"strings"

	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/database"
)

// Result is the classifier's verdict for one piece of content.
type Result struct {
	Category       string
	Tags           []string
	QualityScore   int
	UsefulForDaily bool
}

// Classifier applies the rule tables with configured thresholds.
type Classifier struct {
	cfg config.Classifier
}

// New creates a Classifier with the given thresholds.
func New(cfg config.Classifier) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify maps raw text and an optional source URL to a category, tag set,
// and quality score.
func (c *Classifier) Classify(content, sourceURL string) Result {
	text := strings.ToLower(strings.TrimSpace(content))

	category := c.categorize(text, sourceURL)
	tags := matchTags(text)
	quality := c.Score(category, len(text), false, sourceURL)

	return Result{
		Category:       category,
		Tags:           tags,
		QualityScore:   quality,
		UsefulForDaily: UsefulForDaily(category),
	}
}

// Rescore recomputes an insight's quality after its inputs changed, e.g.
// when extraction succeeded. The same deterministic formula as Classify.
func (c *Classifier) Rescore(in *database.Insight) int {
	textLen := len(in.Content)
	hasExtracted := in.ExtractedText != nil && *in.ExtractedText != ""
	if hasExtracted {
		textLen = len(*in.ExtractedText)
	}
	sourceURL := ""
	if in.SourceURL != nil {
		sourceURL = *in.SourceURL
	}
	return c.Score(in.Category, textLen, hasExtracted, sourceURL)
}

// Score computes the quality score from category base plus length,
// extraction, and domain bonuses, clamped to the configured range.
func (c *Classifier) Score(category string, textLen int, hasExtracted bool, sourceURL string) int {
	score := categoryBase(category)

	if textLen > c.cfg.LongThreshold {
		score++
	}
	if textLen > c.cfg.LongerThreshold {
		score++
	}
	if hasExtracted {
		score++
	}
	if domainAllowListed(sourceURL) {
		score++
	}

	if score < c.cfg.MinQuality {
		score = c.cfg.MinQuality
	}
	if score > c.cfg.MaxQuality {
		score = c.cfg.MaxQuality
	}
	return score
}

func (c *Classifier) categorize(text, sourceURL string) string {
	if isPersonal(text) {
		return database.CategoryPersonal
	}

	if sourceURL != "" {
		return categorizeURL(sourceURL)
	}

	if c.isJunk(text) {
		return database.CategoryJunk
	}
	return database.CategoryNote
}

func (c *Classifier) isJunk(text string) bool {
	if len(text) < c.cfg.MinNoteLength {
		return true
	}
	for _, phrase := range junkPhrases {
		if text == phrase {
			return true
		}
	}
	for _, phrase := range systemPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func isPersonal(text string) bool {
	matches := 0
	for _, kw := range personalKeywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	if matches >= 2 {
		return true
	}
	for _, indicator := range emotionalIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}

func categorizeURL(sourceURL string) string {
	host := Domain(sourceURL)
	switch {
	case hostMatches(host, socialHosts):
		return database.CategorySocial
	case hostMatches(host, videoHosts):
		return database.CategoryVideo
	case hostMatches(host, codeHosts):
		return database.CategoryCode
	case hostMatches(host, discussionHosts):
		return database.CategoryDiscussion
	default:
		return database.CategoryArticle
	}
}

func matchTags(text string) []string {
	if text == "" {
		return nil
	}

	set := make(map[string]struct{})
	for tag, keywords := range themeKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				set[tag] = struct{}{}
				break
			}
		}
	}
	for tag, patterns := range typePatterns {
		for _, p := range patterns {
			if strings.Contains(text, p) {
				set[tag] = struct{}{}
				break
			}
		}
	}
	if len(set) == 0 {
		return nil
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// UsefulForDaily reports whether a category is eligible for selection
// surfaces. Junk and personal content never is.
func UsefulForDaily(category string) bool {
	return category != database.CategoryJunk && category != database.CategoryPersonal
}

// Domain extracts the lower-cased host from a URL, dropping a www. prefix.
// Returns "" for unparseable or empty input.
func Domain(sourceURL string) string {
	if sourceURL == "" {
		return ""
	}
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// domainAllowListed reports whether the URL's host falls under one of the
// curated quality domains.
func domainAllowListed(sourceURL string) bool {
	host := Domain(sourceURL)
	if host == "" {
		return false
	}
	return hostMatches(host, qualityDomains)
}

func hostMatches(host string, patterns []string) bool {
	for _, p := range patterns {
		if host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}

func categoryBase(category string) int {
	switch category {
	case database.CategoryNote:
		return 6
	case database.CategoryArticle, database.CategoryVideo, database.CategoryCode:
		return 5
	case database.CategorySocial, database.CategoryDiscussion:
		return 4
	default: // junk, personal
		return 1
	}
}
