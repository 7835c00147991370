// Package document defines the serialization format for spiderfied layouts.
//
// A [Document] is what spiderfy writes to disk, returns from its HTTP API and
// stores in caches. It carries the computed records together with everything
// needed to reproduce or render them: the anchor coordinates, the parameters,
// optional marker metadata and a precomputed bounding box.
//
// # Format
//
//	{
//	  "version": 1,
//	  "anchor": {"lng": 13.405, "lat": 52.52},
//	  "mode": "circle",
//	  "count": 3,
//	  "params": {...},
//	  "markers": [{"id": "a", "label": "Cafe"}],
//	  "records": [{"index": 0, "angle": 0, "leg_length": 57.29, "x": 57.29, "y": 0, ...}],
//	  "bounds": {"min_x": -28.6, "min_y": -49.6, "max_x": 57.3, "max_y": 49.6}
//	}
//
// # Usage
//
//	l := spider.Compute(3, spider.DefaultParameters())
//	doc := document.FromLayout(l, document.Anchor{Lng: 13.405, Lat: 52.52}, nil)
//	data, _ := document.Marshal(doc)
//	parsed, err := document.Unmarshal(data)
//
// [Unmarshal] rejects documents whose records do not match their count or
// whose indices are not contiguous, so a loaded document is always safe to
// render.
package document
