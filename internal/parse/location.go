package parse

import (
	"math"
	"regexp"
	"strconv"
)

// latitude in [-90, 90], longitude in [-180, 180], e.g. -31.006037,-64.262794
const (
	latPattern = `([-+]?(?:[1-8]?\d(?:\.\d+)?|90(?:\.0+)?))`
	lonPattern = `([-+]?(?:180(?:\.0+)?|(?:1[0-7]\d|[1-9]?\d)(?:\.\d+)?))`
)

var (
	locationRe        = regexp.MustCompile(latPattern + `,\s*` + lonPattern)
	encodedLocationRe = regexp.MustCompile(latPattern + `%2C\s*` + lonPattern)
)

// LocateFunc extracts a location from a parsed record.
type LocateFunc func(m *Message) (Location, bool)

// SearchLocation looks for a "<lat>,<lon>" pair anywhere in text.
func SearchLocation(text string) (Location, bool) {
	return searchWith(locationRe, text)
}

// SearchEncodedLocation is SearchLocation for URLs that percent-encode the
// separator ("<lat>%2C<lon>").
func SearchEncodedLocation(text string) (Location, bool) {
	return searchWith(encodedLocationRe, text)
}

func searchWith(re *regexp.Regexp, text string) (Location, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Location{}, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Location{}, false
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Location{}, false
	}
	return Location{Lat: lat, Lon: lon}, true
}

// Valid reports whether both axes carry a fractional part. Plain integer
// pairs ("3,4") that happen to fit the pattern are rejected.
func (l Location) Valid() bool {
	return hasFraction(l.Lat) && hasFraction(l.Lon)
}

func hasFraction(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return math.Mod(v, 1) != 0
}

// Coordinates returns the GeoJSON axis order [lon, lat].
func (l Location) Coordinates() [2]float64 {
	return [2]float64{l.Lon, l.Lat}
}

func locateInText(m *Message) (Location, bool) {
	if m.Message == "" {
		return Location{}, false
	}
	return SearchLocation(m.Message)
}

func locateField(m *Message) (Location, bool) {
	if m.Location == nil {
		return Location{}, false
	}
	return *m.Location, true
}
