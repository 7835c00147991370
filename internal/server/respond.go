package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/spiderfy/pkg/errors"
	"github.com/matzehuels/spiderfy/pkg/observability"
	"github.com/matzehuels/spiderfy/pkg/pipeline"
)

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func errorBody(code, message string) errorResponse {
	return errorResponse{Error: apiError{Code: code, Message: message}}
}

// writeJSON encodes v before touching the response, so a value that cannot
// be encoded becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.MarshalIndent(errorBody(string(errs.ErrCodeInternal), "internal error"), "", "  ")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// writeError responds with the error's code and status. Errors without a
// code are reported as internal errors without leaking their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	status := errs.HTTPStatus(err)
	code := errs.GetCode(err)
	msg := errs.UserMessage(err)
	if code == "" {
		code = errs.ErrCodeInternal
		msg = "internal error"
	}
	body := errorBody(string(code), msg)
	body.Error.RequestID = middleware.GetReqID(r.Context())
	writeJSON(w, status, body)
}

func notFound(format string, args ...any) error {
	return errs.New(errs.ErrCodeNotFound, format, args...)
}

func badRequest(err error, format string, args ...any) error {
	return errs.Wrap(errs.ErrCodeInvalidInput, err, format, args...)
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(err, "invalid JSON body")
	}
	if dec.More() {
		return errs.New(errs.ErrCodeInvalidInput, "request body must contain a single JSON value")
	}
	return nil
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:    "image/svg+xml",
	pipeline.FormatJSON:   "application/json",
	pipeline.FormatDOT:    "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatDOTSVG: "image/svg+xml",
	pipeline.FormatDOTPNG: "image/png",
	pipeline.FormatPNG:    "image/png",
	pipeline.FormatWebP:   "image/webp",
	pipeline.FormatPDF:    "application/pdf",
}

func writeArtifact(w http.ResponseWriter, format string, data []byte, cached bool) {
	ct, ok := contentTypes[format]
	if !ok {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	if cached {
		w.Header().Set("X-Spiderfy-Cache", "hit")
	} else {
		w.Header().Set("X-Spiderfy-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
