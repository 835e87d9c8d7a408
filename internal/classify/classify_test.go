package classify

import (
	"strings"
	"testing"

	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/database"
)

func newTestClassifier() *Classifier {
	return New(config.Default().Classifier)
}

func TestSocialHostForcesCategory(t *testing.T) {
	c := newTestClassifier()
	urls := []string{
		"https://twitter.com/someone/status/123",
		"https://x.com/someone/status/123",
		"https://www.linkedin.com/posts/someone",
	}
	for _, u := range urls {
		// Category must hold regardless of content length.
		for _, content := range []string{"x", strings.Repeat("a long piece of text ", 100)} {
			r := c.Classify(content, u)
			if r.Category != database.CategorySocial {
				t.Errorf("url %s content len %d: expected social_reference, got %q", u, len(content), r.Category)
			}
		}
	}
}

func TestVideoHostForcesCategory(t *testing.T) {
	c := newTestClassifier()
	for _, u := range []string{"https://youtube.com/watch?v=abc", "https://youtu.be/abc"} {
		r := c.Classify("watch this", u)
		if r.Category != database.CategoryVideo {
			t.Errorf("url %s: expected video, got %q", u, r.Category)
		}
	}
}

func TestURLHostTable(t *testing.T) {
	c := newTestClassifier()
	cases := []struct {
		url      string
		category string
	}{
		{"https://github.com/user/repo", database.CategoryCode},
		{"https://reddit.com/r/golang/comments/1", database.CategoryDiscussion},
		{"https://example.com/essay", database.CategoryArticle},
		{"https://fs.blog/mental-models/", database.CategoryArticle},
	}
	for _, tc := range cases {
		r := c.Classify("interesting link", tc.url)
		if r.Category != tc.category {
			t.Errorf("url %s: expected %q, got %q", tc.url, tc.category, r.Category)
		}
	}
}

func TestShortTextIsJunk(t *testing.T) {
	c := newTestClassifier()
	r := c.Classify("ok", "")
	if r.Category != database.CategoryJunk {
		t.Errorf("expected junk, got %q", r.Category)
	}
	if len(r.Tags) != 0 {
		t.Errorf("expected empty tag set, got %v", r.Tags)
	}
	if r.QualityScore != 1 {
		t.Errorf("expected minimum quality 1, got %d", r.QualityScore)
	}
	if r.UsefulForDaily {
		t.Error("junk must not be useful for daily")
	}
}

func TestEmptyTextIsJunk(t *testing.T) {
	c := newTestClassifier()
	r := c.Classify("", "")
	if r.Category != database.CategoryJunk {
		t.Errorf("expected junk for empty text, got %q", r.Category)
	}
	if len(r.Tags) != 0 {
		t.Errorf("expected empty tags, got %v", r.Tags)
	}
	if r.QualityScore != 1 {
		t.Errorf("expected minimum quality, got %d", r.QualityScore)
	}
}

func TestJunkPhrases(t *testing.T) {
	// Lower the length floor so the phrase rule is what fires.
	cfg := config.Default().Classifier
	cfg.MinNoteLength = 2
	c := New(cfg)

	for _, phrase := range []string{"thanks", "Thank you", "lol", "  okay  "} {
		r := c.Classify(phrase, "")
		if r.Category != database.CategoryJunk {
			t.Errorf("phrase %q: expected junk, got %q", phrase, r.Category)
		}
	}

	// A real short thought is not on the phrase list.
	r := c.Classify("ship weekly", "")
	if r.Category != database.CategoryNote {
		t.Errorf("expected note for short non-phrase text, got %q", r.Category)
	}
}

func TestSystemMessageIsJunk(t *testing.T) {
	c := newTestClassifier()
	r := c.Classify("image omitted and then some trailing text here", "")
	if r.Category != database.CategoryJunk {
		t.Errorf("expected junk for system message, got %q", r.Category)
	}
}

func TestPersonalKeywordsForcePersonal(t *testing.T) {
	c := newTestClassifier()
	r := c.Classify("thinking about our relationship and how much i love you", "")
	if r.Category != database.CategoryPersonal {
		t.Errorf("expected personal, got %q", r.Category)
	}
	if r.UsefulForDaily {
		t.Error("personal must not be useful for daily")
	}

	// Personal wins even when a URL is present.
	r = c.Classify("i miss you, sending this", "https://example.com/song")
	if r.Category != database.CategoryPersonal {
		t.Errorf("expected personal over URL rule, got %q", r.Category)
	}
}

func TestLongTextIsNote(t *testing.T) {
	c := newTestClassifier()
	content := "The core idea behind deep work is that focused, undistracted time compounds. Most knowledge work rewards depth over breadth, yet calendars are optimized for the opposite."
	r := c.Classify(content, "")
	if r.Category != database.CategoryNote {
		t.Errorf("expected note, got %q", r.Category)
	}
	if !r.UsefulForDaily {
		t.Error("expected note to be useful for daily")
	}
}

func TestTagMatching(t *testing.T) {
	c := newTestClassifier()
	r := c.Classify("A framework for startup founders: how to find product-market fit through deep work and focus.", "")

	want := map[string]bool{}
	for _, tag := range r.Tags {
		want[tag] = true
	}
	for _, expected := range []string{"startups", "productivity", "mental_models", "tactical"} {
		if !want[expected] {
			t.Errorf("expected tag %q in %v", expected, r.Tags)
		}
	}

	// Tags are deduplicated and sorted.
	for i := 1; i < len(r.Tags); i++ {
		if r.Tags[i-1] >= r.Tags[i] {
			t.Errorf("tags not sorted/deduplicated: %v", r.Tags)
		}
	}
}

func TestQualityLengthBonuses(t *testing.T) {
	c := newTestClassifier()

	short := c.Classify("A useful observation about testing discipline in teams.", "")
	long := c.Classify(strings.Repeat("A useful observation about testing discipline in teams. ", 12), "")
	longest := c.Classify(strings.Repeat("A useful observation about testing discipline in teams. ", 25), "")

	if long.QualityScore != short.QualityScore+1 {
		t.Errorf("expected +1 for >500 chars: short=%d long=%d", short.QualityScore, long.QualityScore)
	}
	if longest.QualityScore != short.QualityScore+2 {
		t.Errorf("expected +2 for >1000 chars: short=%d longest=%d", short.QualityScore, longest.QualityScore)
	}
}

func TestQualityDomainBonus(t *testing.T) {
	c := newTestClassifier()
	plain := c.Classify("an interesting essay worth reading later", "https://example.com/essay")
	curated := c.Classify("an interesting essay worth reading later", "https://medium.com/@a/essay")
	if curated.QualityScore != plain.QualityScore+1 {
		t.Errorf("expected +1 for curated domain: plain=%d curated=%d", plain.QualityScore, curated.QualityScore)
	}

	// Subdomains of a curated domain count too.
	sub := c.Classify("an interesting essay worth reading later", "https://someone.substack.com/p/essay")
	if sub.QualityScore != plain.QualityScore+1 {
		t.Errorf("expected +1 for curated subdomain: plain=%d sub=%d", plain.QualityScore, sub.QualityScore)
	}
}

func TestDomainAllowListed(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://medium.com/@a/post", true},
		{"https://www.fs.blog/mental-models/", true},
		{"https://writer.substack.com/p/post", true},
		{"https://example.com/essay", false},
		{"https://notmedium.com/post", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := domainAllowListed(tc.url); got != tc.want {
			t.Errorf("domainAllowListed(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestScoreClamped(t *testing.T) {
	c := newTestClassifier()
	score := c.Score(database.CategoryNote, 5000, true, "https://medium.com/x")
	if score > 11 {
		t.Errorf("expected score clamped to 11, got %d", score)
	}
	score = c.Score(database.CategoryJunk, 0, false, "")
	if score < 1 {
		t.Errorf("expected score clamped to 1, got %d", score)
	}
}

func TestRescoreAfterExtraction(t *testing.T) {
	c := newTestClassifier()
	url := "https://example.com/essay"
	in := &database.Insight{
		Content:   "an interesting essay",
		SourceURL: &url,
		Category:  database.CategoryArticle,
	}
	before := c.Rescore(in)

	extracted := strings.Repeat("extracted article body text ", 50)
	in.ExtractedText = &extracted
	after := c.Rescore(in)

	if after <= before {
		t.Errorf("expected higher score after extraction: before=%d after=%d", before, after)
	}
}

func TestDomain(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.medium.com/@a/post", "medium.com"},
		{"https://github.com/x/y", "github.com"},
		{"", ""},
		{"not a url", ""},
	}
	for _, tc := range cases {
		if got := Domain(tc.url); got != tc.want {
			t.Errorf("Domain(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
