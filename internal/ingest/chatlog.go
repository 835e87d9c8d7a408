// Package ingest parses raw capture sources into messages ready for
// classification: chat export files and RSS/Atom feeds.
package ingest

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
)

// Message is one parsed chat message.
type Message struct {
	Sender     string
	Text       string
	SharedDate string // YYYY-MM-DD or empty
	URL        *string
	Context    *string // text around the URL, when the message is more than a bare link
}

// Chat export line formats. Bracketed:
//
//	[25/12/23, 10:30:15] Alice: check this out
//
// Dashed:
//
//	12/25/23, 10:30 AM - Alice: check this out
var (
	bracketLine = regexp.MustCompile(`^\[([^\]]+)\]\s+([^:]+):\s?(.*)$`)
	dashLine    = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4},?\s+\d{1,2}:\d{2}(?::\d{2})?(?:\s?[AP]M)?)\s+-\s+([^:]+):\s?(.*)$`)
	urlPattern  = regexp.MustCompile(`https?://[^\s<>"]+`)
)

// System notices and media placeholders that carry no content.
var systemPhrases = []string{
	"image omitted",
	"video omitted",
	"audio omitted",
	"sticker omitted",
	"gif omitted",
	"document omitted",
	"<media omitted>",
	"this message was deleted",
	"you deleted this message",
	"missed voice call",
	"missed video call",
	"messages and calls are end-to-end encrypted",
	"created group",
	"added you",
	"changed the subject",
	"changed this group's icon",
}

// ParseChatLog reads a chat export and returns its messages, joined across
// continuation lines and with system notices dropped.
func ParseChatLog(r io.Reader) ([]Message, error) {
	var messages []Message
	var current *Message

	flush := func() {
		if current == nil {
			return
		}
		if m := finalize(*current); m != nil {
			messages = append(messages, *m)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := normalizeSpaces(scanner.Text())

		if ts, sender, text, ok := matchMessageLine(line); ok {
			flush()
			current = &Message{
				Sender:     strings.TrimSpace(sender),
				Text:       text,
				SharedDate: parseShareDate(ts),
			}
			continue
		}
		// Continuation of a multiline message. Lines before the first
		// message header are noise.
		if current != nil {
			current.Text += "\n" + line
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func matchMessageLine(line string) (timestamp, sender, text string, ok bool) {
	if m := bracketLine.FindStringSubmatch(line); m != nil {
		return m[1], m[2], m[3], true
	}
	if m := dashLine.FindStringSubmatch(line); m != nil {
		return m[1], m[2], m[3], true
	}
	return "", "", "", false
}

// finalize trims the message, drops system notices, and pulls out the first
// URL. Returns nil when nothing worth keeping remains.
func finalize(m Message) *Message {
	m.Text = strings.TrimSpace(m.Text)
	if m.Text == "" || isSystemMessage(m.Text) {
		return nil
	}

	if u := urlPattern.FindString(m.Text); u != "" {
		u = strings.TrimRight(u, ".,;:!?)")
		m.URL = &u
		if ctx := strings.TrimSpace(strings.Replace(m.Text, u, "", 1)); ctx != "" {
			m.Context = &ctx
		}
	}
	return &m
}

func isSystemMessage(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range systemPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// parseShareDate turns an export timestamp into YYYY-MM-DD. Exports mix
// DD/MM/YY and MM/DD/YYYY orders; dateparse resolves the unambiguous ones
// and an unparseable timestamp just means no date.
func parseShareDate(ts string) string {
	ts = strings.TrimSpace(strings.ReplaceAll(ts, ",", ""))
	if ts == "" {
		return ""
	}
	t, err := dateparse.ParseAny(ts)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// Some exports use narrow no-break spaces around AM/PM markers.
func normalizeSpaces(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, " ", " ")
	return s
}
