package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spiderfy/pkg/cache"
	"github.com/matzehuels/spiderfy/pkg/document"
	"github.com/matzehuels/spiderfy/pkg/pipeline"
	"github.com/matzehuels/spiderfy/pkg/session"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.MemoryStore) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	logger := log.New(io.Discard)
	store := session.NewMemoryStore()
	srv := New(pipeline.NewRunner(c, nil, logger), store, logger, Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func wantError(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d", resp.StatusCode, status)
	}
	body := decode[errorResponse](t, resp)
	if body.Error.Code != code {
		t.Errorf("error code = %q, want %q (message %q)", body.Error.Code, code, body.Error.Message)
	}
	if body.Error.RequestID == "" {
		t.Error("error response has no request_id")
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("missing request ID header")
	}
	body := decode[healthResponse](t, resp)
	if body.Status != "ok" || body.Build.Version == "" {
		t.Errorf("health = %+v", body)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	ts, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestLayoutQuery(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name    string
		query   string
		mode    spider.Mode
		records int
	}{
		{"circle", "count=3", spider.ModeCircle, 3},
		{"spiral", "count=9", spider.ModeSpiral, 9},
		{"switchover raised", "count=9&circle_spiral_switchover=10", spider.ModeCircle, 9},
		{"empty", "count=0", spider.ModeCircle, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodGet, ts.URL+"/v1/layout?"+tt.query, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			body := decode[layoutResponse](t, resp)
			if body.Document.Mode != tt.mode {
				t.Errorf("mode = %v, want %v", body.Document.Mode, tt.mode)
			}
			if len(body.Document.Records) != tt.records {
				t.Errorf("records = %d, want %d", len(body.Document.Records), tt.records)
			}
		})
	}
}

func TestLayoutQueryErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		query string
		code  string
	}{
		{"count=-1", "INVALID_COUNT"},
		{"count=abc", "INVALID_INPUT"},
		{"count=3&spiral_length_start=0", "INVALID_PARAMETERS"},
		{"count=9&spiral_foot_separation=0", "INVALID_PARAMETERS"},
		{"count=3&animate=maybe", "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := do(t, http.MethodGet, ts.URL+"/v1/layout?"+tt.query, "")
			wantError(t, resp, http.StatusBadRequest, tt.code)
		})
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q is not JSON: %v", rec.Body.String(), err)
	}
	if body.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("error code = %q, want INTERNAL_ERROR", body.Error.Code)
	}
}

func TestLayoutPost(t *testing.T) {
	ts, _ := newTestServer(t)

	body := `{"count": 12, "params": {"circle_spiral_switchover": 20}, "anchor": {"lng": 13.4, "lat": 52.5}}`
	resp := do(t, http.MethodPost, ts.URL+"/v1/layout", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[layoutResponse](t, resp)
	if got.Cached {
		t.Error("first layout reported as cached")
	}
	doc := got.Document
	if doc.Mode != spider.ModeCircle {
		t.Errorf("mode = %v, want circle", doc.Mode)
	}
	if doc.Params.CircleFootSeparation != spider.DefaultCircleFootSeparation {
		t.Errorf("unset parameter lost its default: %v", doc.Params.CircleFootSeparation)
	}
	if doc.Anchor.Lng != 13.4 || doc.Anchor.Lat != 52.5 {
		t.Errorf("anchor = %+v", doc.Anchor)
	}

	resp = do(t, http.MethodPost, ts.URL+"/v1/layout", body)
	if again := decode[layoutResponse](t, resp); !again.Cached {
		t.Error("second identical layout not served from cache")
	}
}

func TestLayoutPostMarkers(t *testing.T) {
	ts, _ := newTestServer(t)

	body := `{"markers": [{"id": "a"}, null, {"id": "b", "label": "B"}]}`
	resp := do(t, http.MethodPost, ts.URL+"/v1/layout", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	doc := decode[layoutResponse](t, resp).Document
	if doc.Count != 2 || len(doc.Markers) != 2 {
		t.Fatalf("count = %d, markers = %d, want 2 and 2", doc.Count, len(doc.Markers))
	}
	if doc.Markers[1].Label != "B" {
		t.Errorf("markers[1] = %+v", doc.Markers[1])
	}
}

func TestLayoutPostErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"count":`, "INVALID_INPUT"},
		{"unknown field", `{"count": 3, "colour": "red"}`, "INVALID_INPUT"},
		{"trailing value", `{"count": 3} {"count": 4}`, "INVALID_INPUT"},
		{"marker mismatch", `{"count": 3, "markers": [{"id": "a"}]}`, "INVALID_INPUT"},
		{"negative separation", `{"count": 3, "params": {"circle_foot_separation": -1}}`, "INVALID_PARAMETERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/v1/layout", tt.body)
			wantError(t, resp, http.StatusBadRequest, tt.code)
		})
	}
}

func TestRender(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		format      string
		contentType string
		prefix      []byte
	}{
		{"svg", "image/svg+xml", []byte("<svg")},
		{"json", "application/json", []byte("{")},
		{"dot", "text/vnd.graphviz; charset=utf-8", []byte("graph spiderfy")},
		{"png", "image/png", []byte("\x89PNG")},
		{"webp", "image/webp", []byte("RIFF")},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/v1/render/"+tt.format, `{"count": 5}`)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if got := resp.Header.Get("X-Spiderfy-Cache"); got != "miss" {
				t.Errorf("X-Spiderfy-Cache = %q, want miss", got)
			}
			data, _ := io.ReadAll(resp.Body)
			if !bytes.HasPrefix(bytes.TrimSpace(data), tt.prefix) {
				t.Errorf("body starts with %q, want prefix %q", data[:min(len(data), 16)], tt.prefix)
			}
		})
	}
}

func TestRenderCached(t *testing.T) {
	ts, _ := newTestServer(t)

	do(t, http.MethodPost, ts.URL+"/v1/render/svg", `{"count": 4, "theme": "dark"}`)
	resp := do(t, http.MethodPost, ts.URL+"/v1/render/svg", `{"count": 4, "theme": "dark"}`)
	if got := resp.Header.Get("X-Spiderfy-Cache"); got != "hit" {
		t.Errorf("X-Spiderfy-Cache = %q, want hit", got)
	}
}

func TestRenderErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/v1/render/gif", `{"count": 4}`)
	wantError(t, resp, http.StatusBadRequest, "INVALID_FORMAT")

	resp = do(t, http.MethodPost, ts.URL+"/v1/render/svg", `{"count": 4, "theme": "neon"}`)
	wantError(t, resp, http.StatusBadRequest, "INVALID_INPUT")
}

func TestRouting(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/nope", "")
	wantError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = do(t, http.MethodDelete, ts.URL+"/v1/layout", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	logger := log.New(io.Discard)
	srv := New(pipeline.NewRunner(nil, nil, logger), nil, logger, Options{MaxBodyBytes: 16})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := do(t, http.MethodPost, ts.URL+"/v1/layout", `{"count": 3, "anchor": {"lng": 1, "lat": 2}}`)
	if resp.StatusCode == http.StatusOK {
		t.Error("oversized body accepted")
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts, store := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/v1/sessions/",
		`{"anchor": {"lng": 2.35, "lat": 48.86}, "markers": [{"id": "a"}, {"id": "b"}, {"id": "c"}]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decode[session.Session](t, resp)
	if created.Version != 1 || len(created.Layout.Records) != 3 {
		t.Fatalf("created = version %d, %d records", created.Version, len(created.Layout.Records))
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/sessions/"+created.ID {
		t.Errorf("Location = %q", loc)
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d sessions, want 1", store.Len())
	}
	url := ts.URL + "/v1/sessions/" + created.ID

	resp = do(t, http.MethodGet, url, "")
	if got := decode[session.Session](t, resp); got.ID != created.ID || len(got.Markers) != 3 {
		t.Errorf("get = %+v", got)
	}

	// Animation speed alone keeps the cached layout.
	resp = do(t, http.MethodPut, url, `{"params": {"animation_speed": 900}}`)
	upd := decode[updateSessionResponse](t, resp)
	if upd.Relaid || upd.Session.Version != 1 {
		t.Errorf("speed change: relaid=%v version=%d, want false 1", upd.Relaid, upd.Session.Version)
	}
	if upd.Session.Params.AnimationSpeed != 900 {
		t.Errorf("params not stored: %+v", upd.Session.Params)
	}
	if upd.Session.Layout.Records[1].AnimationSpeed != spider.DefaultAnimationSpeed {
		t.Error("cached records were recomputed")
	}

	// Moving the anchor never relayouts.
	resp = do(t, http.MethodPut, url, `{"anchor": {"lng": 0, "lat": 0}}`)
	if upd := decode[updateSessionResponse](t, resp); upd.Relaid || upd.Session.Anchor.Lng != 0 {
		t.Errorf("anchor move: relaid=%v anchor=%+v", upd.Relaid, upd.Session.Anchor)
	}

	resp = do(t, http.MethodPut, url, `{"params": {"circle_foot_separation": 120}}`)
	upd = decode[updateSessionResponse](t, resp)
	if !upd.Relaid || upd.Session.Version != 2 {
		t.Errorf("separation change: relaid=%v version=%d, want true 2", upd.Relaid, upd.Session.Version)
	}
	if upd.Session.Params.AnimationSpeed != 900 {
		t.Error("earlier parameter change was lost")
	}

	resp = do(t, http.MethodPut, url, `{"markers": [{"id": "a"}, null]}`)
	upd = decode[updateSessionResponse](t, resp)
	if !upd.Relaid || len(upd.Session.Layout.Records) != 1 {
		t.Errorf("marker change: relaid=%v records=%d", upd.Relaid, len(upd.Session.Layout.Records))
	}
	if upd.Session.Layout.Records[0].ShouldRenderLeg {
		t.Error("single marker renders a leg")
	}

	resp = do(t, http.MethodGet, url+"/document", "")
	doc := decode[document.Document](t, resp)
	if doc.Count != 1 || doc.Markers[0].ID != "a" {
		t.Errorf("document = count %d markers %+v", doc.Count, doc.Markers)
	}

	resp = do(t, http.MethodGet, url+"/render/svg?theme=dark&labels=true", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Errorf("render: status %d type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp = do(t, http.MethodDelete, url, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, url, "")
	wantError(t, resp, http.StatusNotFound, "SESSION_NOT_FOUND")
}

func TestSessionErrors(t *testing.T) {
	ts, store := newTestServer(t)

	expired := session.New(document.Anchor{}, []*session.Marker{{ID: "x"}}, spider.DefaultParameters(), -time.Second)
	if err := store.Set(context.Background(), expired); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed id", http.MethodGet, "/v1/sessions/not-a-uuid", "", http.StatusBadRequest, "INVALID_SESSION"},
		{"unknown id", http.MethodGet, "/v1/sessions/6f1c1c38-0c1e-4a57-9d0e-8d2f2b0b6d11", "", http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"expired", http.MethodGet, "/v1/sessions/" + expired.ID, "", http.StatusGone, "SESSION_EXPIRED"},
		{"bad params", http.MethodPost, "/v1/sessions/", `{"markers": [], "params": {"spiral_length_start": -5}}`, http.StatusBadRequest, "INVALID_PARAMETERS"},
		{"negative ttl", http.MethodPost, "/v1/sessions/", `{"markers": [], "ttl_seconds": -1}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad render format", http.MethodGet, "/v1/sessions/6f1c1c38-0c1e-4a57-9d0e-8d2f2b0b6d11/render/bmp", "", http.StatusBadRequest, "INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, ts.URL+tt.path, tt.body)
			wantError(t, resp, tt.status, tt.code)
		})
	}
}
