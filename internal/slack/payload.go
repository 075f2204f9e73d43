package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// Attachment colours.
const (
	ColorDefault = "#36a64f"
	ColorAlert   = "#ff9900"
	ColorError   = "#ff0000"
)

// Message is one notification as received from the notification channel.
// Severity is empty when the publisher did not attach one.
type Message struct {
	Subject   string
	Body      string
	Severity  models.Severity
	Timestamp time.Time
}

// Color picks the attachment colour from the severity attribute, falling back
// to keywords in the subject.
func Color(m Message) string {
	switch m.Severity {
	case models.SeverityAlert:
		return ColorAlert
	case models.SeverityError:
		return ColorError
	case models.SeveritySummary:
		return ColorDefault
	}
	switch {
	case strings.Contains(m.Subject, "Alert"):
		return ColorAlert
	case strings.Contains(m.Subject, "Error"):
		return ColorError
	}
	return ColorDefault
}

// Payload is the incoming-webhook request body.
type Payload struct {
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	Color  string  `json:"color"`
	Blocks []Block `json:"blocks"`
}

type Block struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Elements []Text `json:"elements,omitempty"`
}

type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// maxHeaderLen is the webhook limit, in characters, for plain_text header blocks.
const maxHeaderLen = 150

// BuildPayload renders m as a single coloured attachment with a header, the
// body in a code block, and a timestamp context line.
func BuildPayload(m Message) Payload {
	header := m.Subject
	if r := []rune(header); len(r) > maxHeaderLen {
		header = string(r[:maxHeaderLen-3]) + "..."
	}
	ts := m.Timestamp.UTC()
	blocks := []Block{
		{Type: "header", Text: &Text{Type: "plain_text", Text: header, Emoji: true}},
		{Type: "section", Text: &Text{Type: "mrkdwn", Text: "```" + strings.TrimSpace(m.Body) + "```"}},
		{Type: "context", Elements: []Text{{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Timestamp:* <!date^%d^{date_short_pretty} at {time}|%s>", ts.Unix(), ts.Format(time.RFC3339)),
		}}},
	}
	return Payload{Attachments: []Attachment{{Color: Color(m), Blocks: blocks}}}
}
