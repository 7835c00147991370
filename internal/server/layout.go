package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/spiderfy/pkg/buildinfo"
	"github.com/matzehuels/spiderfy/pkg/document"
	"github.com/matzehuels/spiderfy/pkg/pipeline"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

// layoutResponse wraps a document with the cache outcome.
type layoutResponse struct {
	Cached   bool              `json:"cached"`
	Document document.Document `json:"document"`
}

func (s *Server) handleLayoutQuery(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.layout(w, r, opts)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.layout(w, r, opts)
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	doc, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{Cached: hit, Document: doc})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := decodeOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeArtifact(w, format, res.Artifacts[format], res.CacheInfo.RenderHit)
}

// decodeOptions reads pipeline options from a JSON body. Parameters missing
// from the body keep their defaults.
func decodeOptions(r *http.Request) (pipeline.Options, error) {
	params := spider.DefaultParameters()
	opts := pipeline.Options{Params: &params}
	if err := decodeJSON(r, &opts); err != nil {
		return pipeline.Options{}, err
	}
	if opts.Params == nil {
		opts.Params = &params
	}
	opts.Markers = compactMarkers(opts.Markers)
	return opts, nil
}

// compactMarkers drops entries without an ID, which includes JSON nulls.
func compactMarkers(markers []document.Marker) []document.Marker {
	if markers == nil {
		return nil
	}
	out := markers[:0]
	for _, m := range markers {
		if m.ID != "" {
			out = append(out, m)
		}
	}
	return out
}

// optionsFromQuery builds layout options from query parameters. Every
// layout parameter can be set by its JSON name, e.g. ?count=12&spiral_length_factor=4.
func optionsFromQuery(q url.Values) (pipeline.Options, error) {
	params := spider.DefaultParameters()
	opts := pipeline.Options{Params: &params}

	var err error
	if opts.Count, err = queryInt(q, "count", 0); err != nil {
		return opts, err
	}
	if opts.Anchor.Lng, err = queryFloat(q, "lng", 0); err != nil {
		return opts, err
	}
	if opts.Anchor.Lat, err = queryFloat(q, "lat", 0); err != nil {
		return opts, err
	}
	if opts.Refresh, err = queryBool(q, "refresh", false); err != nil {
		return opts, err
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"circle_foot_separation", &params.CircleFootSeparation},
		{"spiral_foot_separation", &params.SpiralFootSeparation},
		{"spiral_length_start", &params.SpiralLengthStart},
		{"spiral_length_factor", &params.SpiralLengthFactor},
		{"animation_speed", &params.AnimationSpeed},
		{"anchor_offset_x", &params.AnchorOffsetX},
		{"anchor_offset_y", &params.AnchorOffsetY},
	}
	for _, f := range floats {
		if *f.dst, err = queryFloat(q, f.name, *f.dst); err != nil {
			return opts, err
		}
	}
	if params.CircleSpiralSwitchover, err = queryInt(q, "circle_spiral_switchover", params.CircleSpiralSwitchover); err != nil {
		return opts, err
	}
	if params.Animate, err = queryBool(q, "animate", params.Animate); err != nil {
		return opts, err
	}
	if params.ForceLegsWhenSingle, err = queryBool(q, "force_legs_when_single", params.ForceLegsWhenSingle); err != nil {
		return opts, err
	}
	return opts, nil
}

// renderOptionsFromQuery reads the render fields of opts from query parameters.
func renderOptionsFromQuery(q url.Values, opts *pipeline.Options) error {
	var err error
	if opts.Width, err = queryFloat(q, "width", 0); err != nil {
		return err
	}
	if opts.Height, err = queryFloat(q, "height", 0); err != nil {
		return err
	}
	if opts.Scale, err = queryFloat(q, "scale", 0); err != nil {
		return err
	}
	if opts.MarkerRadius, err = queryFloat(q, "marker_radius", 0); err != nil {
		return err
	}
	if opts.Labels, err = queryBool(q, "labels", false); err != nil {
		return err
	}
	opts.Theme = q.Get("theme")
	return nil
}

func queryInt(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest(err, "query parameter %s", name)
	}
	return n, nil
}

func queryFloat(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, badRequest(err, "query parameter %s", name)
	}
	return f, nil
}

func queryBool(q url.Values, name string, def bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest(err, "query parameter %s", name)
	}
	return b, nil
}
