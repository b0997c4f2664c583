package parse

import "time"

type FileType string

const (
	FileNone  FileType = ""
	FileImage FileType = "image"
	FileVideo FileType = "video"
	FileAudio FileType = "audio"
)

// Location is a coordinate pair in decimal degrees, stored lat first.
type Location struct {
	Lat float64
	Lon float64
}

type Message struct {
	ID         int
	Time       time.Time // zero when the export's date could not be parsed
	Username   string
	Message    string
	File       string
	FileType   FileType
	Location   *Location
	Related    *int // only set on records re-imported from GeoJSON
	LineNumber int  // line number in original file, 0 when unknown
}

// HasTime reports whether the record carries a usable timestamp.
func (m *Message) HasTime() bool {
	return !m.Time.IsZero()
}

type ExportMeta struct {
	Format    Format
	Chat      string  // chat name, when the export carries one
	Dialect   Dialect // WhatsApp only
	DateOrder *DateOrder
	SessionID string   // _chatmapId of a re-imported collection
	Sources   []string // _sources of a re-imported collection
	Lines     int
}

type ParseResult struct {
	Meta     ExportMeta
	Messages []Message
}

// Locate returns the location function the pairer should use for this
// result's records.
func (r *ParseResult) Locate() LocateFunc {
	return r.Meta.Format.Locator()
}
