package parse

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type geoCollection struct {
	Type      string       `json:"type"`
	SessionID string       `json:"_chatmapId"`
	Sources   []string     `json:"_sources"`
	Features  []geoFeature `json:"features"`
}

type geoFeature struct {
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		ID       *int   `json:"id"`
		Related  *int   `json:"related"`
		Username string `json:"username"`
		Time     string `json:"time"`
		Message  string `json:"message"`
		File     string `json:"file"`
		FileType string `json:"file_type"`
		Note     string `json:"note"`
	} `json:"properties"`
}

// ParseGeoJSON reads a collection previously written by this tool back into
// records. Each feature becomes one record carrying its point as Location.
func ParseGeoJSON(text string) (*ParseResult, error) {
	var fc geoCollection
	if err := json.Unmarshal([]byte(text), &fc); err != nil {
		return nil, fmt.Errorf("geojson: %w: %v", ErrUnsupportedExport, err)
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("geojson: %w: type %q", ErrUnsupportedExport, fc.Type)
	}

	result := &ParseResult{
		Meta: ExportMeta{
			Format:    FormatGeoJSON,
			SessionID: fc.SessionID,
			Sources:   fc.Sources,
			Lines:     strings.Count(text, "\n") + 1,
		},
	}

	for i, f := range fc.Features {
		p := f.Properties
		msg := Message{
			ID:       i,
			Username: p.Username,
			Message:  p.Message,
			File:     p.File,
			FileType: FileType(p.FileType),
			Related:  p.Related,
		}
		if p.ID != nil {
			msg.ID = *p.ID
		}
		if p.Time != "" {
			if t, err := time.Parse(time.RFC3339Nano, p.Time); err == nil {
				msg.Time = t.UTC()
			}
		}
		if c := f.Geometry.Coordinates; f.Geometry.Type == "Point" && len(c) >= 2 {
			msg.Location = &Location{Lat: c[1], Lon: c[0]}
		}
		result.Messages = append(result.Messages, msg)
	}

	return result, nil
}
