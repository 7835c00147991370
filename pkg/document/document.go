package document

import (
	"math"

	"github.com/matzehuels/spiderfy/pkg/spider"
)

// Version is the current document format version.
const Version = 1

// Document is the serialized form of a spiderfied layout.
type Document struct {
	Version int               `json:"version" bson:"version"`
	Anchor  Anchor            `json:"anchor" bson:"anchor"`
	Mode    spider.Mode       `json:"mode" bson:"mode"`
	Count   int               `json:"count" bson:"count"`
	Params  spider.Parameters `json:"params" bson:"params"`
	Markers []Marker          `json:"markers,omitempty" bson:"markers,omitempty"`
	Records []spider.Record   `json:"records" bson:"records"`
	Bounds  Bounds            `json:"bounds" bson:"bounds"`
}

// Anchor is the shared geographic point the markers explode from.
// It is carried for the host's benefit only; the layout is purely planar.
type Anchor struct {
	Lng float64 `json:"lng" bson:"lng"`
	Lat float64 `json:"lat" bson:"lat"`
}

// Marker is optional display metadata for the marker at the same index.
type Marker struct {
	ID       string `json:"id" bson:"id"`
	Label    string `json:"label,omitempty" bson:"label,omitempty"`
	Color    string `json:"color,omitempty" bson:"color,omitempty"`
	LegColor string `json:"leg_color,omitempty" bson:"leg_color,omitempty"`
}

// Bounds is the axis-aligned box enclosing the anchor origin and all markers.
type Bounds struct {
	MinX float64 `json:"min_x" bson:"min_x"`
	MinY float64 `json:"min_y" bson:"min_y"`
	MaxX float64 `json:"max_x" bson:"max_x"`
	MaxY float64 `json:"max_y" bson:"max_y"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// FromLayout builds a Document from a computed layout. markers may be nil;
// when given, only the first l.Count entries are kept.
func FromLayout(l spider.Layout, anchor Anchor, markers []Marker) Document {
	records := l.Records
	if records == nil {
		records = []spider.Record{}
	}
	if len(markers) > l.Count {
		markers = markers[:l.Count]
	}
	return Document{
		Version: Version,
		Anchor:  anchor,
		Mode:    l.Mode,
		Count:   l.Count,
		Params:  l.Params,
		Markers: markers,
		Records: records,
		Bounds:  ComputeBounds(records),
	}
}

// Layout converts the document back into a spider.Layout.
func (d Document) Layout() spider.Layout {
	return spider.Layout{
		Mode:    d.Mode,
		Count:   d.Count,
		Params:  d.Params,
		Records: d.Records,
	}
}

// MarkerAt returns the marker metadata for index, or a zero Marker.
func (d Document) MarkerAt(index int) Marker {
	if index < 0 || index >= len(d.Markers) {
		return Marker{}
	}
	return d.Markers[index]
}

// ComputeBounds returns the box enclosing the origin and every record position.
func ComputeBounds(records []spider.Record) Bounds {
	b := Bounds{}
	for _, r := range records {
		b.MinX = math.Min(b.MinX, r.X)
		b.MinY = math.Min(b.MinY, r.Y)
		b.MaxX = math.Max(b.MaxX, r.X)
		b.MaxY = math.Max(b.MaxY, r.Y)
	}
	return b
}
