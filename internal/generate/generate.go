// Package generate turns a topic plus a set of ranked insights into draft
// content: a LinkedIn post, a Twitter thread, and a blog outline, produced
// in one LLM call and stored together.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/database"
	"github.com/akvasu/braingym/internal/llm"
	"github.com/akvasu/braingym/internal/search"
)

const draftPrompt = `You are a ghostwriter turning a founder's collected insights into content drafts.

Topic: %s

Source material, most relevant first:
%s
%s
Produce all three formats. Use EXACTLY these section headers:

### LINKEDIN POST
A 150-300 word post in a personal, direct voice. Hook in the first line. No hashtag spam.

### TWITTER THREAD
5-8 tweets. Number each tweet on its own line as "1/", "2/", and so on.

### BLOG POST
A markdown outline: a working title, section headings, and one-line notes per section.

Ground every claim in the source material. Do not invent statistics.`

// Orchestrator runs draft generation with retry and persistence.
type Orchestrator struct {
	db       *database.DB
	provider llm.Provider
	cfg      config.Generation

	backoff time.Duration
	sleep   func(time.Duration)
}

// New creates an Orchestrator.
func New(db *database.DB, provider llm.Provider, cfg config.Generation) *Orchestrator {
	return &Orchestrator{
		db:       db,
		provider: provider,
		cfg:      cfg,
		backoff:  2 * time.Second,
		sleep:    time.Sleep,
	}
}

// Generate produces drafts for a topic from ranked search matches and stores
// the result. Nothing is persisted unless generation and parsing both
// succeed.
func (o *Orchestrator) Generate(ctx context.Context, topic string, matches []search.Match) (*database.Generation, error) {
	if o.provider == nil {
		return nil, fmt.Errorf("no LLM provider available")
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no relevant insights found for topic %q", topic)
	}

	insights := make([]database.Insight, len(matches))
	for i, m := range matches {
		insights[i] = m.Insight
	}
	contextText, sourceIDs := o.buildContext(insights)

	prompt := fmt.Sprintf(draftPrompt, topic, contextText, "")
	reply, err := o.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	draft, err := ParseDraft(reply)
	if err != nil {
		return nil, err
	}
	return o.persist(topic, sourceIDs, draft, nil)
}

// Regenerate produces a fresh draft for an existing generation, steering the
// model with user feedback. The original row is kept; a new one is added.
func (o *Orchestrator) Regenerate(ctx context.Context, generationID int64, feedback string) (*database.Generation, error) {
	if o.provider == nil {
		return nil, fmt.Errorf("no LLM provider available")
	}

	prev, err := o.db.GetGeneration(generationID)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, fmt.Errorf("generation %d not found", generationID)
	}

	var insights []database.Insight
	for _, id := range prev.SourceIDs {
		in, err := o.db.GetInsight(id)
		if err != nil {
			return nil, err
		}
		if in != nil {
			insights = append(insights, *in)
		}
	}
	if len(insights) == 0 {
		return nil, fmt.Errorf("no source insights remain for generation %d", generationID)
	}
	contextText, sourceIDs := o.buildContext(insights)

	steering := fmt.Sprintf("\nA previous draft was rejected with this feedback, address it:\n%s\n\nPrevious LinkedIn post for reference:\n%s\n", feedback, prev.LinkedInPost)
	prompt := fmt.Sprintf(draftPrompt, prev.Topic, contextText, steering)

	reply, err := o.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	draft, err := ParseDraft(reply)
	if err != nil {
		return nil, err
	}
	return o.persist(prev.Topic, sourceIDs, draft, &feedback)
}

// complete calls the provider, retrying transient failures with exponential
// backoff. Auth, rate-limit, and malformed failures are terminal on the
// first attempt.
func (o *Orchestrator) complete(ctx context.Context, prompt string) (string, error) {
	maxAttempts := o.cfg.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reply, err := o.provider.Generate(ctx, prompt, o.cfg.MaxTokens)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		var apiErr *llm.APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return "", fmt.Errorf("generation failed after %d attempt(s), not retryable: %w", attempt, err)
		}
		if attempt == maxAttempts {
			break
		}
		wait := o.backoff << (attempt - 1)
		log.Printf("Generation attempt %d/%d failed (%v), retrying in %s", attempt, maxAttempts, err, wait)
		o.sleep(wait)
	}
	return "", fmt.Errorf("generation failed after %d attempt(s): %w", maxAttempts, lastErr)
}

// buildContext formats ranked insights into prompt blocks, dropping whole
// low-ranked insights once the character cap is reached. The top insight is
// always included.
func (o *Orchestrator) buildContext(insights []database.Insight) (string, []int64) {
	charCap := o.cfg.ContextCharCap
	if charCap <= 0 {
		charCap = 12000
	}

	var blocks []string
	var ids []int64
	total := 0
	for i, in := range insights {
		block := formatInsight(i+1, in)
		if i > 0 && total+len(block) > charCap {
			break
		}
		blocks = append(blocks, block)
		ids = append(ids, in.ID)
		total += len(block)
	}
	return strings.Join(blocks, "\n"), ids
}

func formatInsight(n int, in database.Insight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Insight %d (%s", n, in.Category)
	if len(in.Tags) > 0 {
		fmt.Fprintf(&b, ", tags: %s", strings.Join(in.Tags, ", "))
	}
	b.WriteString(") ---\n")
	b.WriteString(in.Content)
	b.WriteByte('\n')
	if in.ExtractedText != nil && *in.ExtractedText != "" {
		b.WriteString(*in.ExtractedText)
		b.WriteByte('\n')
	}
	if in.SourceURL != nil {
		fmt.Fprintf(&b, "Source: %s\n", *in.SourceURL)
	}
	return b.String()
}

func (o *Orchestrator) persist(topic string, sourceIDs []int64, draft *Draft, feedback *string) (*database.Generation, error) {
	id, err := o.db.InsertGeneration(topic, sourceIDs, draft.LinkedInPost, draft.TwitterThread, draft.BlogOutline, feedback)
	if err != nil {
		return nil, err
	}
	return o.db.GetGeneration(id)
}
