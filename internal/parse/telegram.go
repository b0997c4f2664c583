package parse

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type telegramExport struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Messages []telegramMessage `json:"messages"`
}

type telegramMessage struct {
	ID                  int64           `json:"id"`
	Type                string          `json:"type"`
	Date                string          `json:"date"`
	DateUnix            string          `json:"date_unixtime"`
	From                string          `json:"from"`
	Text                json.RawMessage `json:"text"`
	Photo               string          `json:"photo"`
	File                string          `json:"file"`
	MimeType            string          `json:"mime_type"`
	LocationInformation *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location_information"`
}

type telegramSpan struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Href string `json:"href"`
}

var telegramAudioMimes = map[string]bool{
	"audio/ogg":  true,
	"audio/opus": true,
	"audio/mp3":  true,
	"audio/mpeg": true,
	"audio/m4a":  true,
	"audio/wav":  true,
}

// ParseTelegram parses a Telegram Desktop JSON export (result.json).
func ParseTelegram(text string) (*ParseResult, error) {
	var export telegramExport
	if err := json.Unmarshal([]byte(text), &export); err != nil {
		return nil, fmt.Errorf("telegram: %w: %v", ErrUnsupportedExport, err)
	}

	result := &ParseResult{
		Meta: ExportMeta{
			Format: FormatTelegram,
			Chat:   export.Name,
			Lines:  strings.Count(text, "\n") + 1,
		},
	}

	for _, tm := range export.Messages {
		if tm.Type == "service" {
			continue
		}

		msg := Message{
			ID:       len(result.Messages),
			Time:     parseTelegramTime(tm.Date, tm.DateUnix),
			Username: tm.From,
			Message:  extractTelegramText(tm.Text),
		}

		if li := tm.LocationInformation; li != nil {
			msg.Location = &Location{Lat: li.Latitude, Lon: li.Longitude}
		}

		switch {
		case tm.Photo != "":
			msg.File = stripPath(tm.Photo)
			msg.FileType = FileImage
		case tm.File != "" && tm.MimeType == "video/mp4":
			msg.File = stripPath(tm.File)
			msg.FileType = FileVideo
		case tm.File != "" && telegramAudioMimes[tm.MimeType]:
			msg.File = stripPath(tm.File)
			msg.FileType = FileAudio
		}

		result.Messages = append(result.Messages, msg)
	}

	return result, nil
}

// extractTelegramText returns plain text, or for a list of rich-text spans
// only the hyperlinks joined by a space.
func extractTelegramText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	// try string first
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	// list of plain strings and span objects
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	var links []string
	for _, item := range items {
		var span telegramSpan
		if err := json.Unmarshal(item, &span); err != nil {
			continue
		}
		if link := span.link(); link != "" {
			links = append(links, link)
		}
	}
	return strings.Join(links, " ")
}

// link is the URL a span points to: the text of a bare link, the href of a
// hyperlink.
func (s telegramSpan) link() string {
	switch s.Type {
	case "link":
		return s.Text
	case "text_link":
		if s.Href != "" {
			return s.Href
		}
		return s.Text
	}
	return ""
}

func parseTelegramTime(date, unix string) time.Time {
	if t, err := time.Parse("2006-01-02T15:04:05", date); err == nil {
		return t
	}
	if secs, err := strconv.ParseInt(unix, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	return time.Time{}
}
