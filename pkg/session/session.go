package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/spiderfy/pkg/document"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default session lifetime.
const DefaultTTL = 24 * time.Hour

// Marker is one item attached to the anchor.
type Marker struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Color    string `json:"color,omitempty"`
	LegColor string `json:"leg_color,omitempty"`

	Handlers Handlers `json:"-"`
}

// Placement joins a marker with its computed record.
type Placement struct {
	Marker Marker
	Record spider.Record
}

// Session is one spiderfied anchor.
type Session struct {
	ID      string            `json:"id"`
	Anchor  document.Anchor   `json:"anchor"`
	Markers []Marker          `json:"markers"`
	Params  spider.Parameters `json:"params"`
	Layout  spider.Layout     `json:"layout"`

	// Version increments every time the layout is recomputed.
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Handlers applies to markers without handlers of their own.
	Handlers Handlers `json:"-"`
}

// New creates a session with a fresh ID and computes the initial layout.
// Nil markers and markers without an ID are dropped.
func New(anchor document.Anchor, markers []*Marker, params spider.Parameters, ttl time.Duration) *Session {
	now := time.Now()
	kept := filterMarkers(markers)
	return &Session{
		ID:        uuid.NewString(),
		Anchor:    anchor,
		Markers:   kept,
		Params:    params,
		Layout:    spider.Compute(len(kept), params),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session has passed its expiry time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch extends the session's expiry to ttl from now.
func (s *Session) Touch(ttl time.Duration) {
	s.ExpiresAt = time.Now().Add(ttl)
}

// Update replaces the markers and parameters. The layout is recomputed only
// when the marker count or a relayout field changed; otherwise the cached
// records are kept as they are, including their Animate and AnimationSpeed.
// It reports whether a relayout happened.
func (s *Session) Update(markers []*Marker, params spider.Parameters) bool {
	kept := filterMarkers(markers)
	relaid := spider.NeedsRelayout(len(s.Markers), s.Params, len(kept), params)

	s.Markers = kept
	s.Params = params
	s.UpdatedAt = time.Now()
	if relaid {
		s.Layout = spider.Compute(len(kept), params)
		s.Version++
	}
	return relaid
}

// MoveTo changes the anchor. The layout is planar, so it is not recomputed.
func (s *Session) MoveTo(anchor document.Anchor) {
	s.Anchor = anchor
	s.UpdatedAt = time.Now()
}

// Placements joins markers with records by index. Markers without a record
// are left out.
func (s *Session) Placements() []Placement {
	n := min(len(s.Markers), len(s.Layout.Records))
	out := make([]Placement, n)
	for i := range n {
		out[i] = Placement{Marker: s.Markers[i], Record: s.Layout.Records[i]}
	}
	return out
}

// Document converts the session into a serializable layout document.
func (s *Session) Document() document.Document {
	markers := make([]document.Marker, len(s.Markers))
	for i, m := range s.Markers {
		markers[i] = document.Marker{ID: m.ID, Label: m.Label, Color: m.Color, LegColor: m.LegColor}
	}
	return document.FromLayout(s.Layout, s.Anchor, markers)
}

// Dispatch routes ev for the marker at index to its handler, falling back to
// the session-level handlers. It reports whether a handler ran.
func (s *Session) Dispatch(index int, ev Event) bool {
	if index < 0 || index >= len(s.Markers) || index >= len(s.Layout.Records) {
		return false
	}
	p := Placement{Marker: s.Markers[index], Record: s.Layout.Records[index]}
	if p.Marker.Handlers.Dispatch(ev, p) {
		return true
	}
	return s.Handlers.Dispatch(ev, p)
}

// clone returns a deep copy suitable for handing out of a store.
func (s *Session) clone() *Session {
	c := *s
	c.Markers = append([]Marker(nil), s.Markers...)
	c.Layout.Records = append([]spider.Record(nil), s.Layout.Records...)
	return &c
}

func filterMarkers(markers []*Marker) []Marker {
	kept := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if m == nil || m.ID == "" {
			continue
		}
		kept = append(kept, *m)
	}
	return kept
}
