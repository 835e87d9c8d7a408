// Package pipeline runs the import flow: parse a chat export, store and
// classify its messages, mark duplicates, then extract link content.
package pipeline

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/akvasu/braingym/internal/classify"
	"github.com/akvasu/braingym/internal/config"
	"github.com/akvasu/braingym/internal/database"
	"github.com/akvasu/braingym/internal/dedupe"
	"github.com/akvasu/braingym/internal/extract"
	"github.com/akvasu/braingym/internal/ingest"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full import run.
type Result struct {
	Steps []StepResult
}

// Pipeline orchestrates the 4-step import pipeline.
type Pipeline struct {
	cfg        *config.Config
	db         *database.DB
	classifier *classify.Classifier
}

// New creates a new import pipeline.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		db:         db,
		classifier: classify.New(cfg.Classifier),
	}
}

// ImportFile runs the pipeline over a chat export file.
func (p *Pipeline) ImportFile(path string) *Result {
	f, err := os.Open(path)
	if err != nil {
		return &Result{Steps: []StepResult{{Name: "Parse", Err: err}}}
	}
	defer f.Close()
	return p.Import(f)
}

// Import runs the pipeline over chat export text.
func (p *Pipeline) Import(r io.Reader) *Result {
	result := &Result{}

	log.Println("Step 1/4: Parsing chat export...")
	messages, err := ingest.ParseChatLog(r)
	if err != nil {
		result.Steps = append(result.Steps, StepResult{Name: "Parse", Err: err})
		return result
	}
	result.Steps = append(result.Steps, StepResult{
		Name:    "Parse",
		Summary: fmt.Sprintf("Parsed %d messages", len(messages)),
	})

	step, stored := p.runStore(messages)
	result.Steps = append(result.Steps, step)
	if step.Err != nil {
		return result
	}

	result.Steps = append(result.Steps, p.runDedupe(stored))
	result.Steps = append(result.Steps, p.runExtract())
	return result
}

// ImportFeeds pulls configured feeds and stores their entries as link
// insights, then dedupes and extracts, same as a chat import.
func (p *Pipeline) ImportFeeds(daysBack int) *Result {
	result := &Result{}

	log.Println("Step 1/4: Pulling feeds...")
	entries := ingest.NewFeedParser(p.cfg.Ingest.Feeds).ParseAll(daysBack)
	result.Steps = append(result.Steps, StepResult{
		Name:    "Feeds",
		Summary: fmt.Sprintf("Pulled %d entries from %d feeds", len(entries), len(p.cfg.Ingest.Feeds)),
	})

	step, stored := p.runStoreFeeds(entries)
	result.Steps = append(result.Steps, step)
	if step.Err != nil {
		return result
	}

	result.Steps = append(result.Steps, p.runDedupe(stored))
	result.Steps = append(result.Steps, p.runExtract())
	return result
}

// runStore classifies and persists parsed messages. Junk still gets stored
// so the same export can be re-imported and deduped, it just never surfaces.
func (p *Pipeline) runStore(messages []ingest.Message) (StepResult, []database.Insight) {
	log.Println("Step 2/4: Classifying and storing...")

	var stored []database.Insight
	var junk int
	for _, m := range messages {
		sourceURL := ""
		if m.URL != nil {
			sourceURL = *m.URL
		}
		c := p.classifier.Classify(m.Text, sourceURL)
		if c.Category == database.CategoryJunk {
			junk++
		}

		in := database.NewInsight{
			Content:        m.Text,
			SourceURL:      m.URL,
			ContextMessage: m.Context,
			Category:       c.Category,
			Tags:           c.Tags,
			QualityScore:   c.QualityScore,
			UsefulForDaily: c.UsefulForDaily,
		}
		if m.Sender != "" {
			sender := m.Sender
			in.SharedBy = &sender
		}
		if m.SharedDate != "" {
			date := m.SharedDate
			in.SharedDate = &date
		}

		id, err := p.db.InsertInsight(in)
		if err != nil {
			return StepResult{Name: "Store", Err: err}, nil
		}
		full, err := p.db.GetInsight(id)
		if err != nil {
			return StepResult{Name: "Store", Err: err}, nil
		}
		stored = append(stored, *full)
	}

	return StepResult{
		Name:    "Store",
		Summary: fmt.Sprintf("Stored %d insights (%d junk)", len(stored), junk),
	}, stored
}

func (p *Pipeline) runStoreFeeds(entries []ingest.FeedEntry) (StepResult, []database.Insight) {
	log.Println("Step 2/4: Classifying and storing feed entries...")

	var stored []database.Insight
	for _, entry := range entries {
		content := entry.Title
		if entry.Summary != "" {
			content += "\n\n" + entry.Summary
		}
		c := p.classifier.Classify(content, entry.URL)

		entryURL := entry.URL
		in := database.NewInsight{
			Content:        content,
			SourceURL:      &entryURL,
			Category:       c.Category,
			Tags:           c.Tags,
			QualityScore:   c.QualityScore,
			UsefulForDaily: c.UsefulForDaily,
		}
		if entry.Source != "" {
			source := entry.Source
			in.SharedBy = &source
		}
		if entry.PublishedDate != "" {
			date := entry.PublishedDate
			in.SharedDate = &date
		}

		id, err := p.db.InsertInsight(in)
		if err != nil {
			return StepResult{Name: "Store", Err: err}, nil
		}
		full, err := p.db.GetInsight(id)
		if err != nil {
			return StepResult{Name: "Store", Err: err}, nil
		}
		stored = append(stored, *full)
	}

	return StepResult{
		Name:    "Store",
		Summary: fmt.Sprintf("Stored %d insights", len(stored)),
	}, stored
}

func (p *Pipeline) runDedupe(stored []database.Insight) StepResult {
	log.Println("Step 3/4: Marking duplicates...")
	result, err := dedupe.New(p.db).Run(stored)
	if err != nil {
		return StepResult{Name: "Dedupe", Err: err}
	}
	return StepResult{
		Name:    "Dedupe",
		Summary: fmt.Sprintf("Checked %d insights, %d duplicates", result.Checked, result.Duplicates),
	}
}

func (p *Pipeline) runExtract() StepResult {
	log.Println("Step 4/4: Extracting link content...")
	extractor := extract.New(p.db, p.classifier, 15*time.Second)
	result := extractor.ExtractPending(0)
	return StepResult{
		Name:    "Extract",
		Summary: fmt.Sprintf("Extracted %d, %d failed", result.Extracted, result.Failed),
	}
}
