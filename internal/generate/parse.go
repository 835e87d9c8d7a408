package generate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/akvasu/braingym/internal/llm"
)

// Draft is a parsed generation reply.
type Draft struct {
	LinkedInPost  string
	TwitterThread []string
	BlogOutline   string
}

var tweetMarker = regexp.MustCompile(`^\d+/`)

// ParseDraft splits a model reply into its three sections. All three are
// required; a reply missing any of them is malformed and rejected whole.
func ParseDraft(reply string) (*Draft, error) {
	sections := splitSections(llm.StripCodeFence(reply))

	for _, header := range []string{"LINKEDIN POST", "TWITTER THREAD", "BLOG POST"} {
		if sections[header] == "" {
			return nil, fmt.Errorf("malformed reply: missing %s section", header)
		}
	}

	return &Draft{
		LinkedInPost:  sections["LINKEDIN POST"],
		TwitterThread: parseThread(sections["TWITTER THREAD"]),
		BlogOutline:   sections["BLOG POST"],
	}, nil
}

// splitSections collects text under each "### HEADER" line, keyed by the
// upper-cased header text.
func splitSections(text string) map[string]string {
	sections := make(map[string]string)
	var current string
	var body []string

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "### ") {
			flush()
			current = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(trimmed, "### ")))
			continue
		}
		body = append(body, line)
	}
	flush()
	return sections
}

// parseThread splits a thread section into tweets on "1/", "2/" markers.
// A section without markers becomes a single tweet.
func parseThread(section string) []string {
	if section == "" {
		return nil
	}

	var tweets []string
	var current []string

	flush := func() {
		joined := strings.TrimSpace(strings.Join(current, "\n"))
		if joined != "" {
			tweets = append(tweets, joined)
		}
		current = nil
	}

	for _, line := range strings.Split(section, "\n") {
		if tweetMarker.MatchString(strings.TrimSpace(line)) {
			flush()
		}
		current = append(current, line)
	}
	flush()
	return tweets
}
