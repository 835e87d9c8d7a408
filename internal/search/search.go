// Package search scores and ranks insights against a free-text topic.
// The final score is relevance multiplied by quality, so an irrelevant
// candidate never surfaces no matter how good it is.
package search

import (
	"sort"
	"strings"

	"github.com/akvasu/braingym/internal/classify"
	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/database"
)

// Match is one ranked search result.
type Match struct {
	Insight   database.Insight
	Relevance float64
	Score     float64
}

// Engine ranks candidate insights for a topic.
type Engine struct {
	cfg config.Search
}

// New creates an Engine with the given weights and caps.
func New(cfg config.Search) *Engine {
	return &Engine{cfg: cfg}
}

// Rank scores the candidate pool against the topic and returns at most
// cfg.Limit matches, diversity-capped by source domain and category.
// An empty topic or a pool with no positive scores yields an empty list;
// that is a valid outcome, not an error.
func (e *Engine) Rank(topic string, candidates []database.Insight) []Match {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}

	keywords := Keywords(topic)
	topicLower := strings.ToLower(topic)

	var matches []Match
	for _, in := range candidates {
		relevance := e.relevance(in, topicLower, keywords)
		if relevance <= 0 {
			continue
		}
		quality := in.QualityScore
		if quality < 1 {
			quality = 1
		}
		score := relevance * float64(quality)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{Insight: in, Relevance: relevance, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		ci, cj := createdAt(matches[i].Insight), createdAt(matches[j].Insight)
		if ci != cj {
			return ci > cj // more recent first
		}
		return matches[i].Insight.ID < matches[j].Insight.ID
	})

	return e.diversify(matches)
}

// relevance computes the additive subscore from phrase, keyword, tag,
// and flat bonuses.
func (e *Engine) relevance(in database.Insight, topicLower string, keywords []string) float64 {
	var text strings.Builder
	text.WriteString(strings.ToLower(in.Content))
	if in.ExtractedText != nil {
		text.WriteByte(' ')
		text.WriteString(strings.ToLower(*in.ExtractedText))
	}
	if in.ContextMessage != nil {
		text.WriteByte(' ')
		text.WriteString(strings.ToLower(*in.ContextMessage))
	}
	searchable := text.String()

	tagsLower := strings.ToLower(strings.Join(in.Tags, " "))

	score := 0.0
	if strings.Contains(searchable, topicLower) {
		score += e.cfg.PhraseBonus
	}
	for _, kw := range keywords {
		if strings.Contains(searchable, kw) {
			score += e.cfg.KeywordBonus
		}
		if strings.Contains(tagsLower, kw) {
			score += e.cfg.TagBonus
		}
	}
	if score == 0 {
		return 0
	}

	score += float64(in.QualityScore) / 10.0
	if in.ExtractedText != nil && *in.ExtractedText != "" {
		score += e.cfg.ExtractBonus
	}
	if in.Category == database.CategoryNote {
		score += e.cfg.NoteBonus
	}
	return score
}

// diversify walks the sorted matches, deferring candidates whose domain or
// category already hit the cap. Deferred candidates fill remaining slots if
// the strict pass cannot, so slots never stay empty while eligible
// candidates exist.
func (e *Engine) diversify(matches []Match) []Match {
	limit := e.cfg.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(matches) <= limit {
		return matches
	}

	domainCount := make(map[string]int)
	categoryCount := make(map[string]int)
	selected := make([]Match, 0, limit)
	var deferred []Match

	for _, m := range matches {
		if len(selected) >= limit {
			break
		}
		domain := insightDomain(m.Insight)
		category := m.Insight.Category

		if (domain != "" && domainCount[domain] >= e.cfg.DomainCap) ||
			categoryCount[category] >= e.cfg.CategoryCap {
			deferred = append(deferred, m)
			continue
		}

		selected = append(selected, m)
		if domain != "" {
			domainCount[domain]++
		}
		categoryCount[category]++
	}

	// Relax the cap if the strict pass under-filled.
	for _, m := range deferred {
		if len(selected) >= limit {
			break
		}
		selected = append(selected, m)
	}
	return selected
}

// Keywords tokenizes a topic into lower-cased keywords with stop-words and
// short tokens removed.
func Keywords(topic string) []string {
	fields := strings.FieldsFunc(strings.ToLower(topic), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})

	var keywords []string
	for _, f := range fields {
		if len(f) <= 2 || stopWords[f] {
			continue
		}
		keywords = append(keywords, f)
	}
	return keywords
}

var stopWords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true,
	"from": true, "are": true, "was": true, "were": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "does": true,
	"did": true, "will": true, "would": true, "should": true, "could": true,
	"may": true, "might": true, "must": true, "you": true, "she": true,
	"they": true, "what": true, "which": true, "who": true, "when": true,
	"where": true, "why": true, "how": true, "about": true, "this": true,
	"that": true, "not": true,
}

func insightDomain(in database.Insight) string {
	if in.SourceURL == nil {
		return ""
	}
	return classify.Domain(*in.SourceURL)
}

func createdAt(in database.Insight) string {
	if in.CreatedAt == nil {
		return ""
	}
	return *in.CreatedAt
}
