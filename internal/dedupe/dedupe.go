// Package dedupe finds repeated captures: the same link shared twice, or
// near-identical text pasted again. The later insight is marked as the
// duplicate and points back at the first.
package dedupe

import (
	"log"
	"strings"

	"github.com/akvasu/braingym/internal/database"
)

// similarityThreshold is the bigram dice coefficient above which two texts
// count as the same insight.
const similarityThreshold = 0.8

// Result holds the results of a dedupe run.
type Result struct {
	Checked    int
	Duplicates int
}

// Deduper marks duplicate insights in the store.
type Deduper struct {
	db *database.DB
}

// New creates a Deduper.
func New(db *database.DB) *Deduper {
	return &Deduper{db: db}
}

// Run compares recent insights against the rest of the pool and marks
// duplicates. Already-marked duplicates are never compared again.
func (d *Deduper) Run(recent []database.Insight) (*Result, error) {
	pool, err := d.db.GetSearchCandidates()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, in := range recent {
		if in.IsDuplicate {
			continue
		}
		result.Checked++

		canonical := findOriginal(in, pool)
		if canonical == 0 {
			continue
		}
		if err := d.db.MarkDuplicate(in.ID, canonical); err != nil {
			log.Printf("Error marking insight %d duplicate of %d: %v", in.ID, canonical, err)
			continue
		}
		result.Duplicates++
	}
	return result, nil
}

// findOriginal returns the ID of the earliest insight that in duplicates,
// or 0 when it is original.
func findOriginal(in database.Insight, pool []database.Insight) int64 {
	for _, other := range pool {
		if other.ID >= in.ID || other.IsDuplicate {
			continue
		}
		if IsDuplicate(in, other) {
			return other.ID
		}
	}
	return 0
}

// IsDuplicate reports whether two insights capture the same thing: an
// identical source URL, or highly similar text.
func IsDuplicate(a, b database.Insight) bool {
	if a.SourceURL != nil && b.SourceURL != nil &&
		*a.SourceURL != "" && *a.SourceURL == *b.SourceURL {
		return true
	}
	return Similarity(a.Content, b.Content) >= similarityThreshold
}

// Similarity computes the dice coefficient over character bigrams of the
// lower-cased texts. 1 means identical, 0 means nothing shared.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigramsA := bigrams(a)
	bigramsB := bigrams(b)

	var shared int
	for bg, countA := range bigramsA {
		if countB := bigramsB[bg]; countB > 0 {
			shared += min(countA, countB)
		}
	}

	totalA := len([]rune(a)) - 1
	totalB := len([]rune(b)) - 1
	return 2 * float64(shared) / float64(totalA+totalB)
}

func bigrams(s string) map[string]int {
	runes := []rune(s)
	grams := make(map[string]int, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
