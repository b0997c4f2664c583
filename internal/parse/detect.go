package parse

import (
	"errors"
	"strings"
)

// ErrUnsupportedExport is returned when a structured export cannot be decoded.
var ErrUnsupportedExport = errors.New("unsupported or corrupted export")

// SessionMarker is the property this tool writes on its own GeoJSON output.
const SessionMarker = "_chatmapId"

type Format int

const (
	FormatWhatsApp Format = iota
	FormatTelegram
	FormatSignal
	FormatGeoJSON
)

func (f Format) String() string {
	switch f {
	case FormatTelegram:
		return "Telegram"
	case FormatSignal:
		return "Signal"
	case FormatGeoJSON:
		return "GeoJSON"
	default:
		return "WhatsApp"
	}
}

// Locator returns the function used to find a record's location for this
// format. WhatsApp locations live in the message text; every other format
// resolves them while parsing.
func (f Format) Locator() LocateFunc {
	if f == FormatWhatsApp {
		return locateInText
	}
	return locateField
}

// byteOrderMark is written ahead of some exports saved on Windows.
const byteOrderMark = "\ufeff"

func trimBOM(text string) string {
	return strings.TrimPrefix(text, byteOrderMark)
}

// Detect sniffs raw export text. WhatsApp is the catch-all.
func Detect(text string) Format {
	text = trimBOM(strings.TrimSpace(trimBOM(text)))
	switch {
	case strings.Contains(text, SessionMarker):
		return FormatGeoJSON
	case strings.HasPrefix(text, "{"):
		return FormatTelegram
	case strings.Contains(text, "group-v2-change"):
		return FormatSignal
	default:
		return FormatWhatsApp
	}
}

type options struct {
	ignore []string
}

// Option configures Parse.
type Option func(*options)

// WithIgnore adds system-notice strings to the WhatsApp ignore list.
func WithIgnore(notices ...string) Option {
	return func(o *options) {
		for _, n := range notices {
			if n = strings.TrimSpace(n); n != "" {
				o.ignore = append(o.ignore, n)
			}
		}
	}
}

// Parse dispatches text to the parser for format.
func Parse(format Format, text string, opts ...Option) (*ParseResult, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	text = trimBOM(text)

	switch format {
	case FormatTelegram:
		return ParseTelegram(text)
	case FormatSignal:
		return ParseSignal(text), nil
	case FormatGeoJSON:
		return ParseGeoJSON(text)
	default:
		return ParseWhatsApp(text, o.ignore...), nil
	}
}
