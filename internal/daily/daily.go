// Package daily picks the day's review set: a small, varied batch of
// pending insights, biased toward high quality but never the same three
// every run.
package daily

import (
	"math/rand"
	"time"

	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/database"
)

// Selector chooses insights for a daily session.
type Selector struct {
	db  *database.DB
	cfg config.Daily
	now func() time.Time
}

// New creates a Selector backed by the given store.
func New(db *database.DB, cfg config.Daily) *Selector {
	return &Selector{db: db, cfg: cfg, now: time.Now}
}

// Select picks up to cfg.Count insights, records them as shown, and logs
// the session. Fewer candidates than cfg.Count is not an error; an empty
// store yields an empty set.
func (s *Selector) Select() ([]database.Insight, error) {
	candidates, err := s.db.GetDailyCandidates()
	if err != nil {
		return nil, err
	}

	picked := s.pick(candidates)
	if len(picked) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(picked))
	for i, in := range picked {
		ids[i] = in.ID
	}
	today := s.now().Format("2006-01-02")
	if err := s.db.RecordShown(ids, today); err != nil {
		return nil, err
	}
	if err := s.db.LogSession(today, ids); err != nil {
		return nil, err
	}
	return picked, nil
}

// pick applies cooldown, quality tiers, and category variety to the
// candidate pool. Tiers are shuffled so repeated runs over the same pool
// produce different sets.
func (s *Selector) pick(candidates []database.Insight) []database.Insight {
	count := s.cfg.Count
	if count <= 0 {
		count = 3
	}

	pool := s.applyCooldown(candidates, count)

	var high, mid, low []database.Insight
	for _, in := range pool {
		switch {
		case in.QualityScore >= s.cfg.HighTier:
			high = append(high, in)
		case in.QualityScore >= s.cfg.MidTier:
			mid = append(mid, in)
		default:
			low = append(low, in)
		}
	}
	shuffle(high)
	shuffle(mid)
	shuffle(low)

	// Round-robin across tiers starting with high, so the set always
	// includes a high-quality item when one exists, without becoming
	// all-high every day.
	tiers := [][]database.Insight{high, mid, low}
	picked := make([]database.Insight, 0, count)
	for len(picked) < count {
		progress := false
		for ti := range tiers {
			if len(picked) >= count {
				break
			}
			idx := pickVaried(tiers[ti], picked)
			if idx < 0 {
				continue
			}
			picked = append(picked, tiers[ti][idx])
			tiers[ti] = append(tiers[ti][:idx], tiers[ti][idx+1:]...)
			progress = true
		}
		if !progress {
			// A full round found no category alternative in any tier.
			// Repeat the category rather than return a short set.
			ti := firstNonEmpty(tiers)
			if ti < 0 {
				break
			}
			picked = append(picked, tiers[ti][0])
			tiers[ti] = tiers[ti][1:]
		}
	}
	return picked
}

func firstNonEmpty(tiers [][]database.Insight) int {
	for ti, tier := range tiers {
		if len(tier) > 0 {
			return ti
		}
	}
	return -1
}

// applyCooldown drops candidates shown within the last cfg.CooldownDays.
// If that leaves fewer than count, cooled-down items are waived back in,
// least recently shown first.
func (s *Selector) applyCooldown(candidates []database.Insight, count int) []database.Insight {
	if s.cfg.CooldownDays <= 0 {
		return candidates
	}
	cutoff := s.now().AddDate(0, 0, -s.cfg.CooldownDays).Format("2006-01-02")

	var fresh, cooling []database.Insight
	for _, in := range candidates {
		if in.LastShownDate != nil && *in.LastShownDate > cutoff {
			cooling = append(cooling, in)
			continue
		}
		fresh = append(fresh, in)
	}
	if len(fresh) >= count {
		return fresh
	}

	// Waiver: not enough fresh material, so reuse the least recently
	// shown items rather than returning a short set.
	for i := 1; i < len(cooling); i++ {
		for j := i; j > 0 && *cooling[j].LastShownDate < *cooling[j-1].LastShownDate; j-- {
			cooling[j], cooling[j-1] = cooling[j-1], cooling[j]
		}
	}
	for _, in := range cooling {
		if len(fresh) >= count {
			break
		}
		fresh = append(fresh, in)
	}
	return fresh
}

// pickVaried returns the index of the first candidate whose category differs
// from the previously picked item. Returns -1 when the tier is empty or every
// remaining candidate repeats the category, so another tier can supply the
// alternative.
func pickVaried(tier, picked []database.Insight) int {
	if len(tier) == 0 {
		return -1
	}
	if len(picked) == 0 {
		return 0
	}
	last := picked[len(picked)-1].Category
	for i, in := range tier {
		if in.Category != last {
			return i
		}
	}
	return -1
}

func shuffle(insights []database.Insight) {
	rand.Shuffle(len(insights), func(i, j int) {
		insights[i], insights[j] = insights[j], insights[i]
	})
}
