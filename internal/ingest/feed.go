package ingest

import (
	"log"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/akvasu/braingym/internal/config"
)

const maxPerFeed = 20

// FeedEntry is one feed item ready to be stored as a link insight.
type FeedEntry struct {
	URL           string
	Title         string
	PublishedDate string // YYYY-MM-DD or empty
	Summary       string
	Source        string
}

// FeedParser pulls entries from configured RSS/Atom feeds.
type FeedParser struct {
	feeds []config.Feed
}

// NewFeedParser creates a FeedParser over the configured feeds.
func NewFeedParser(feeds []config.Feed) *FeedParser {
	return &FeedParser{feeds: feeds}
}

// ParseAll parses every configured feed and returns entries published within
// daysBack, capped per feed. A broken feed is logged and skipped.
func (fp *FeedParser) ParseAll(daysBack int) []FeedEntry {
	cutoff := time.Now().AddDate(0, 0, -daysBack)
	var all []FeedEntry

	parser := gofeed.NewParser()
	for _, fc := range fp.feeds {
		entries, err := parseFeed(parser, fc, cutoff)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", fc.URL, err)
			continue
		}
		all = append(all, entries...)
		log.Printf("Parsed %d entries from %s (within %d days)", len(entries), fc.Name, daysBack)
	}
	return all
}

func parseFeed(parser *gofeed.Parser, fc config.Feed, cutoff time.Time) ([]FeedEntry, error) {
	feed, err := parser.ParseURL(fc.URL)
	if err != nil {
		return nil, err
	}

	var entries []FeedEntry
	for _, item := range feed.Items {
		if len(entries) >= maxPerFeed {
			break
		}
		entry := parseFeedItem(item, fc.Name)
		if entry == nil {
			continue
		}
		if withinWindow(entry.PublishedDate, cutoff) {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

func parseFeedItem(item *gofeed.Item, source string) *FeedEntry {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	title := strings.TrimSpace(item.Title)
	if itemURL == "" || title == "" {
		return nil
	}

	var published string
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.Format("2006-01-02")
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.Format("2006-01-02")
	}

	summary := item.Description
	if summary == "" {
		summary = item.Content
	}

	return &FeedEntry{
		URL:           itemURL,
		Title:         title,
		PublishedDate: published,
		Summary:       stripHTML(summary),
		Source:        source,
	}
}

// withinWindow gives undated entries the benefit of the doubt.
func withinWindow(publishedDate string, cutoff time.Time) bool {
	if publishedDate == "" {
		return true
	}
	pub, err := time.Parse("2006-01-02", publishedDate)
	if err != nil {
		return true
	}
	return !pub.Before(cutoff)
}

func stripHTML(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	return strings.Join(strings.Fields(s), " ")
}
