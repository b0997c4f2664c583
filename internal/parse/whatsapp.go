package parse

import (
	"regexp"
	"strings"
	"time"
)

type Dialect int

const (
	DialectUnknown Dialect = iota
	DialectIOS
	DialectAndroid
)

func (d Dialect) String() string {
	switch d {
	case DialectIOS:
		return "iOS"
	case DialectAndroid:
		return "Android"
	default:
		return "unknown"
	}
}

// dialectScanLines bounds how far DetectDialect looks for a message line.
const dialectScanLines = 500

const datePrefix = `\d{1,4}[./-]\d{1,2}[./-]\d{1,4}`

// Each dialect captures (1) the date/time header, (2) the username and
// (3) the message text.
var dialectPatterns = map[Dialect]*regexp.Regexp{
	// [08/01/25, 6:02:14 p.m.] Ann: Look how nice
	DialectIOS: regexp.MustCompile(`^\[(` + datePrefix + `[^\]]*)\] (.+?): (.*)$`),
	// 17/10/2024, 3:37 p. m. - Ann: hi
	DialectAndroid: regexp.MustCompile(`^(` + datePrefix + `[^\[\]]*?) - (.+?): (.*)$`),
}

// datedHeaderRe matches any line that starts like a message header, including
// system lines without a username.
var datedHeaderRe = regexp.MustCompile(`^\[?` + datePrefix)

// systemNotices are boilerplate lines WhatsApp writes in the export's locale.
var systemNotices = []string{
	"Messages and calls are end-to-end encrypted",
	"Los mensajes y las llamadas están cifrados de extremo a extremo",
	"Les messages et les appels sont chiffrés de bout en bout",
	"As mensagens e as chamadas são protegidas com a criptografia de ponta a ponta",
	"Nachrichten und Anrufe sind Ende-zu-Ende-verschlüsselt",
	"I messaggi e le chiamate sono crittografati end-to-end",
	"Pesan dan panggilan terenkripsi secara end-to-end",
	"<Media omitted>",
	"<Multimedia omitido>",
	"<Médias omis>",
	"This message was deleted",
	"You deleted this message",
	"Se eliminó este mensaje",
	"Eliminaste este mensaje",
}

var controlChars = strings.NewReplacer(
	"\u200e", "", "\u200f", "", "\u200b", "", "\ufeff", "",
	"\u202a", "", "\u202b", "", "\u202c", "", "\u202d", "", "\u202e", "",
	"\u00a0", " ", "\u202f", " ",
	"\r", "",
)

type line struct {
	number int
	text   string
}

// splitLines strips bidi and zero-width characters and drops blank lines.
func splitLines(text string) ([]line, int) {
	raw := strings.Split(text, "\n")
	lines := make([]line, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSpace(controlChars.Replace(l))
		if l == "" {
			continue
		}
		lines = append(lines, line{number: i + 1, text: l})
	}
	return lines, len(raw)
}

// DetectDialect returns the dialect of the first message-shaped line.
func DetectDialect(lines []string) Dialect {
	for i, l := range lines {
		if i >= dialectScanLines {
			break
		}
		l = controlChars.Replace(l)
		if dialectPatterns[DialectIOS].MatchString(l) {
			return DialectIOS
		}
		if dialectPatterns[DialectAndroid].MatchString(l) {
			return DialectAndroid
		}
	}
	return DialectUnknown
}

// ParseWhatsApp parses a WhatsApp chat export. An export whose dialect cannot
// be recognized yields no messages.
func ParseWhatsApp(text string, extraIgnore ...string) *ParseResult {
	lines, total := splitLines(text)
	result := &ParseResult{
		Meta: ExportMeta{Format: FormatWhatsApp, Lines: total},
	}

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.text
	}
	dialect := DetectDialect(texts)
	result.Meta.Dialect = dialect
	if dialect == DialectUnknown {
		return result
	}
	pattern := dialectPatterns[dialect]

	ignore := make([]string, 0, len(systemNotices)+len(extraIgnore))
	ignore = append(ignore, systemNotices...)
	ignore = append(ignore, extraIgnore...)

	// first pass: infer the date field order over every dated line
	var resolver DateResolver
	for _, l := range lines {
		if m := pattern.FindStringSubmatch(l.text); m != nil {
			date, _ := splitHeader(m[1])
			resolver.Observe(date)
		}
	}
	order := resolver.Order()
	result.Meta.DateOrder = &order

	last := -1
	for _, l := range lines {
		m := pattern.FindStringSubmatch(l.text)
		if m == nil {
			// wrapped text from the previous message
			if last >= 0 && !datedHeaderRe.MatchString(l.text) {
				appendContinuation(&result.Messages[last], l.text)
			}
			continue
		}

		if isIgnored(m[3], ignore) {
			last = -1
			continue
		}

		username := m[2]
		if i := strings.Index(username, ":"); i > -1 {
			username = username[:i]
		}

		date, clock := splitHeader(m[1])
		ts, err := order.Parse(date, clock)
		if err != nil {
			ts = time.Time{}
		}

		msg := Message{
			ID:         len(result.Messages),
			Time:       ts,
			Username:   username,
			Message:    m[3],
			LineNumber: l.number,
		}
		// media is only announced on the header line
		if name, typ, ok := FindMediaFile(msg.Message); ok {
			msg.File = name
			msg.FileType = typ
			msg.Message = ""
		}
		result.Messages = append(result.Messages, msg)
		last = len(result.Messages) - 1
	}

	return result
}

// appendContinuation adds a wrapped line to a message. On a media message
// it becomes the caption.
func appendContinuation(m *Message, text string) {
	if m.Message == "" {
		m.Message = text
		return
	}
	m.Message += " " + text
}

func isIgnored(msg string, ignore []string) bool {
	for _, s := range ignore {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
