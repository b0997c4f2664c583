package parse

import (
	"strings"
	"time"
)

const (
	signalFrom       = "From: "
	signalSent       = "Sent: "
	signalAttachment = "Attachment: "
)

// signalLabels are block lines that never become message text.
var signalLabels = []string{"Type: ", "Received: ", "Conversation: "}

var signalTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// signalBlock accumulates one message while its lines are read.
type signalBlock struct {
	msg  Message
	sent time.Time // as written, zone preserved
	open bool
}

// ParseSignal parses a labeled plain-text Signal export. A message starts at
// each "From:" line; lines before the first one are ignored.
func ParseSignal(text string) *ParseResult {
	raw := strings.Split(text, "\n")
	result := &ParseResult{
		Meta: ExportMeta{Format: FormatSignal, Lines: len(raw)},
	}

	var b signalBlock
	flush := func() {
		if !b.open {
			return
		}
		b.msg.ID = len(result.Messages)
		result.Messages = append(result.Messages, b.msg)
		b = signalBlock{}
	}

	for i, l := range raw {
		l = strings.TrimSpace(controlChars.Replace(l))
		if l == "" {
			continue
		}

		if strings.HasPrefix(l, signalFrom) {
			flush()
			b.open = true
			b.msg.Username = strings.TrimSpace(strings.TrimPrefix(l, signalFrom))
			b.msg.LineNumber = i + 1
			continue
		}
		if !b.open {
			continue
		}
		b.readLine(l)
	}
	flush()

	return result
}

func (b *signalBlock) readLine(l string) {
	msg := &b.msg

	if loc, ok := SearchEncodedLocation(l); ok {
		msg.Location = &loc
		msg.File = ""
		msg.FileType = FileNone
		return
	}

	switch {
	case strings.HasPrefix(l, signalSent):
		raw := strings.TrimSpace(strings.TrimPrefix(l, signalSent))
		if t, ok := parseSignalTime(raw); ok {
			b.sent = t
			msg.Time = t.UTC()
		}
		return
	case strings.HasPrefix(l, signalAttachment):
		if msg.Location != nil {
			return
		}
		rest := strings.TrimPrefix(l, signalAttachment)
		if loc := mediaExtRe.FindStringSubmatchIndex(rest); loc != nil && loc[0] > 0 {
			msg.File = stripPath(strings.TrimSpace(rest[:loc[1]]))
			msg.FileType = extTypes[strings.ToLower(rest[loc[2]:loc[3]])]
			return
		}
		if strings.Contains(rest, "no filename") && strings.Contains(rest, "jpeg") {
			msg.File = "attachment-" + b.sent.Format("2006-01-02-15-04-05") + ".jpg"
			msg.FileType = FileImage
		}
		return
	}

	for _, label := range signalLabels {
		if strings.HasPrefix(l, label) {
			return
		}
	}
	if msg.File == "" && msg.Message == "" {
		msg.Message = l
	}
}

func parseSignalTime(s string) (time.Time, bool) {
	for _, layout := range signalTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
