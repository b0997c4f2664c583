package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const telegramExportJSON = `{
 "name": "Road trip",
 "type": "private_group",
 "id": 42,
 "messages": [
  {"id": 1, "type": "service", "date": "2025-01-08T18:00:00", "actor": "Ann", "action": "create_group", "text": ""},
  {"id": 2, "type": "message", "date": "2025-01-08T18:01:00", "date_unixtime": "1736359260", "from": "Ann", "text": "  Look how nice "},
  {"id": 3, "type": "message", "date": "2025-01-08T18:02:00", "from": "Ann", "text": "",
   "location_information": {"latitude": 20.672598, "longitude": -100.446259}},
  {"id": 4, "type": "message", "date": "2025-01-08T18:03:00", "from": "Ann",
   "photo": "photos/photo_1@08-01-2025_18-03-00.jpg", "width": 1280, "height": 960, "text": ""},
  {"id": 5, "type": "message", "date": "2025-01-08T18:04:00", "from": "Bob",
   "file": "video_files/clip.mp4", "mime_type": "video/mp4", "text": ""},
  {"id": 6, "type": "message", "date": "2025-01-08T18:05:00", "from": "Bob",
   "file": "voice_messages/audio_1.ogg", "mime_type": "audio/ogg", "text": ""},
  {"id": 7, "type": "message", "date": "bogus", "date_unixtime": "1736359560", "from": "Bob",
   "text": ["see ", {"type": "link", "text": "https://example.org"}, {"type": "bold", "text": "this"},
            {"type": "text_link", "text": "here", "href": "https://example.com"}]},
  {"id": 8, "type": "message", "date": "2025-01-08T18:07:00", "from": "Bob",
   "file": "files/report.pdf", "mime_type": "application/pdf", "text": "report"}
 ]
}`

func TestParseTelegram(t *testing.T) {
	res, err := ParseTelegram(telegramExportJSON)
	require.NoError(t, err)

	assert.Equal(t, FormatTelegram, res.Meta.Format)
	assert.Equal(t, "Road trip", res.Meta.Chat)
	require.Len(t, res.Messages, 7)

	for i, m := range res.Messages {
		assert.Equal(t, i, m.ID)
	}

	text := res.Messages[0]
	assert.Equal(t, "Ann", text.Username)
	assert.Equal(t, "Look how nice", text.Message)
	assert.Equal(t, time.Date(2025, 1, 8, 18, 1, 0, 0, time.UTC), text.Time)

	loc := res.Messages[1]
	require.NotNil(t, loc.Location)
	assert.Equal(t, Location{Lat: 20.672598, Lon: -100.446259}, *loc.Location)

	photo := res.Messages[2]
	assert.Equal(t, "photo_1@08-01-2025_18-03-00.jpg", photo.File)
	assert.Equal(t, FileImage, photo.FileType)

	assert.Equal(t, "clip.mp4", res.Messages[3].File)
	assert.Equal(t, FileVideo, res.Messages[3].FileType)
	assert.Equal(t, "audio_1.ogg", res.Messages[4].File)
	assert.Equal(t, FileAudio, res.Messages[4].FileType)

	links := res.Messages[5]
	assert.Equal(t, "https://example.org https://example.com", links.Message)
	assert.Equal(t, time.Unix(1736359560, 0).UTC(), links.Time)

	other := res.Messages[6]
	assert.Empty(t, other.File)
	assert.Equal(t, FileNone, other.FileType)
	assert.Equal(t, "report", other.Message)
}

func TestParseTelegram_Corrupted(t *testing.T) {
	_, err := ParseTelegram(`{"messages": [`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedExport)
}

func TestTelegramSpanLink(t *testing.T) {
	tests := []struct {
		span telegramSpan
		want string
	}{
		{telegramSpan{Type: "link", Text: "https://maps.google.com/?q=1.5,2.5"}, "https://maps.google.com/?q=1.5,2.5"},
		{telegramSpan{Type: "text_link", Text: "the bar", Href: "https://maps.google.com/?q=1.5,2.5"}, "https://maps.google.com/?q=1.5,2.5"},
		{telegramSpan{Type: "text_link", Text: "https://example.com"}, "https://example.com"},
		{telegramSpan{Type: "bold", Text: "loud"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.span.link())
	}
}
