package chatmap

import (
	"time"

	"github.com/Zuo-Peng/chatmap/internal/parse"
)

// LocationOnlyNote marks a point that found no content to pair with.
const LocationOnlyNote = "location only"

type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lon, lat]
}

type Properties struct {
	ID       int            `json:"id"`
	Related  *int           `json:"related,omitempty"`
	Username string         `json:"username"`
	Time     time.Time      `json:"time"`
	Message  string         `json:"message,omitempty"`
	File     string         `json:"file,omitempty"`
	FileType parse.FileType `json:"file_type,omitempty"`
	Note     string         `json:"note,omitempty"`
}

type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Location returns the feature's point.
func (f *Feature) Location() parse.Location {
	return parse.Location{Lat: f.Geometry.Coordinates[1], Lon: f.Geometry.Coordinates[0]}
}

// LocationOnly reports whether the point has no paired content.
func (f *Feature) LocationOnly() bool {
	return f.Properties.Related == nil
}

type FeatureCollection struct {
	Type      string    `json:"type"`
	Features  []Feature `json:"features"`
	SessionID string    `json:"_chatmapId,omitempty"`
	Sources   []string  `json:"_sources,omitempty"`
}

func newCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

func newPoint(loc parse.Location) Feature {
	return Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "Point", Coordinates: loc.Coordinates()},
	}
}

// pairedFeature copies the content record's fields onto a point taken from
// the location record.
func pairedFeature(loc parse.Location, locID int, content *parse.Message) Feature {
	f := newPoint(loc)
	related := content.ID
	f.Properties = Properties{
		ID:       locID,
		Related:  &related,
		Username: content.Username,
		Time:     content.Time,
		Message:  content.Message,
		File:     content.File,
		FileType: content.FileType,
	}
	return f
}

func locationOnlyFeature(loc parse.Location, m *parse.Message) Feature {
	f := newPoint(loc)
	f.Properties = Properties{
		ID:       m.ID,
		Username: m.Username,
		Time:     m.Time,
		Note:     LocationOnlyNote,
	}
	return f
}
