package messages

import (
	"strings"

	"github.com/mcoot/sovereign-client/internal/model"
)

// QuoteTimeFormat renders the original timestamp in a quote header
const QuoteTimeFormat = "2006-01-02 15:04 MST"

// ReplySubject prefixes subject with "Re: " unless it already carries one
func ReplySubject(subject string) string {
	subject = strings.TrimSpace(subject)
	switch {
	case subject == "":
		return "Re:"
	case strings.HasPrefix(strings.ToLower(subject), "re:"):
		return subject
	default:
		return "Re: " + subject
	}
}

// QuoteBody renders the block appended to a reply: a blank line, an
// attribution header, then every original line behind a "> " marker.
func QuoteBody(msg model.Message) string {
	var b strings.Builder
	b.WriteString("\n\nOn ")
	b.WriteString(msg.CreatedAt.Format(QuoteTimeFormat))
	b.WriteString(", ")
	b.WriteString(msg.From)
	b.WriteString(" wrote:")
	for _, line := range strings.Split(msg.Body, "\n") {
		b.WriteString("\n> ")
		b.WriteString(line)
	}
	return b.String()
}
