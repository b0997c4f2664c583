package chatmap

import (
	"slices"
	"time"

	"github.com/Zuo-Peng/chatmap/internal/parse"
)

// PairWindow is the largest time gap between a location and the content it
// is paired with.
const PairWindow = 30 * time.Minute

// Options selects which kinds of content may be paired with a location.
type Options struct {
	IncludePhotos bool
	IncludeVideos bool
	IncludeAudios bool
	IncludeText   bool
}

func DefaultOptions() Options {
	return Options{IncludePhotos: true, IncludeVideos: true, IncludeAudios: true, IncludeText: true}
}

func (o Options) eligible(m *parse.Message) bool {
	switch m.FileType {
	case parse.FileImage:
		if o.IncludePhotos {
			return true
		}
	case parse.FileVideo:
		if o.IncludeVideos {
			return true
		}
	case parse.FileAudio:
		if o.IncludeAudios {
			return true
		}
	}
	return o.IncludeText && m.Message != ""
}

// Session pairs the locations of one parsed export with nearby content.
// Claims accumulate across Pair, so a session must not be reused after the
// options change; build a new one instead.
type Session struct {
	messages  []parse.Message
	locate    parse.LocateFunc
	opts      Options
	locations []*parse.Location
	claimed   map[int]bool
}

// NewSession copies messages; the caller's slice is never written.
func NewSession(messages []parse.Message, locate parse.LocateFunc, opts Options) *Session {
	return &Session{
		messages: slices.Clone(messages),
		locate:   locate,
		opts:     opts,
		claimed:  make(map[int]bool),
	}
}

// Pair emits one point per valid location, in record order.
func (s *Session) Pair() *FeatureCollection {
	s.resolveLocations()

	fc := newCollection()
	for i := range s.messages {
		loc := s.locations[i]
		if loc == nil {
			continue
		}
		m := &s.messages[i]
		if !m.HasTime() {
			continue
		}

		content := s.closest(i)
		if content < 0 {
			fc.Features = append(fc.Features, locationOnlyFeature(*loc, m))
			continue
		}
		s.claimed[content] = true
		fc.Features = append(fc.Features, pairedFeature(*loc, m.ID, &s.messages[content]))
	}
	return fc
}

// Claimed reports whether the record at index i was used as content.
func (s *Session) Claimed(i int) bool {
	return s.claimed[i]
}

func (s *Session) resolveLocations() {
	s.locations = make([]*parse.Location, len(s.messages))
	for i := range s.messages {
		m := &s.messages[i]
		l, ok := s.locate(m)
		if !ok || !l.Valid() {
			m.Location = nil
			continue
		}
		m.Location = &l
		s.locations[i] = &l
	}
}

// closest returns the index of the content record to pair with the location
// at index i, or -1.
func (s *Session) closest(i int) int {
	prev := s.scan(i, -1)
	next := s.scan(i, 1)

	switch {
	case prev < 0:
		return next
	case next < 0:
		return prev
	}

	at := s.messages[i].Time
	dPrev := at.Sub(s.messages[prev].Time).Abs()
	dNext := s.messages[next].Time.Sub(at).Abs()
	if dPrev < dNext || (dPrev == dNext && !s.claimed[prev]) {
		return prev
	}
	return next
}

// scan walks away from the location at index i in direction dir and returns
// the first eligible record from the same user. Another location from that
// user ends the walk.
func (s *Session) scan(i, dir int) int {
	origin := &s.messages[i]
	for j := i + dir; j >= 0 && j < len(s.messages); j += dir {
		m := &s.messages[j]
		if m.Username != origin.Username {
			continue
		}
		if s.locations[j] != nil {
			return -1
		}
		if s.claimed[j] || !m.HasTime() {
			continue
		}
		if m.Time.Sub(origin.Time).Abs() >= PairWindow {
			continue
		}
		if s.opts.eligible(m) {
			return j
		}
	}
	return -1
}
