package web

// errors.go provides unified error response handling for the web layer.
//
// Technical errors are logged with the request id; clients only see the
// localized user message and its support code. The format follows the
// request: an HTMX alert fragment, or JSON for everything else.

import (
	"errors"
	"net/http"

	"golang.org/x/text/language"

	"github.com/JonMunkholm/proposals/internal/core"
	"github.com/JonMunkholm/proposals/internal/i18n"
	"github.com/JonMunkholm/proposals/internal/logging"
	"github.com/JonMunkholm/proposals/internal/web/templates"
)

// Catalog keys for failures that happen outside a form.
const (
	KeyFormNotFound = "web.error.form_not_found"
	KeyTooManyForms = "web.error.too_many_forms"
	KeyBadRequest   = "web.error.bad_request"
	KeyRateLimited  = "web.error.rate_limited"
)

// CatalogKeys lists the web keys every locale must define.
var CatalogKeys = []string{KeyFormNotFound, KeyTooManyForms, KeyBadRequest, KeyRateLimited}

// errBadRequest marks a body or parameter that could not be parsed.
var errBadRequest = errors.New("bad request")

// ErrorResponse is the JSON body of an error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// mapWebError extends core.MapError with the session errors.
func mapWebError(err error) core.UserMessage {
	switch {
	case errors.Is(err, ErrFormNotFound):
		return core.UserMessage{Kind: core.KindError, Key: KeyFormNotFound, Code: "WEB001"}
	case errors.Is(err, ErrTooManyForms):
		return core.UserMessage{Kind: core.KindError, Key: KeyTooManyForms, Code: "WEB002"}
	case errors.Is(err, errBadRequest):
		return core.UserMessage{Kind: core.KindError, Key: KeyBadRequest, Code: "WEB003"}
	}
	return core.MapError(err)
}

// statusFor picks the HTTP status for a request-level error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrFormNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManyForms):
		return http.StatusServiceUnavailable
	case errors.Is(err, errBadRequest), core.IsUserFacing(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := mapWebError(err)

	logger := logging.FromContext(r.Context())
	args := []any{"path", r.URL.Path, "method", r.Method, "status", status, "code", msg.Code, "error", err}
	if status >= 500 {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	s.writeMessage(w, r, msg, status)
}

// writeMessage writes a standalone user message.
func (s *Server) writeMessage(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	tag := s.translator.ResolveTag(r)
	text := s.translator.Message(tag, msg)

	if isHTMX(r) {
		s.renderAlert(w, r, tag, msg, status)
		return
	}
	writeJSONStatus(w, status, ErrorResponse{Error: text, Code: msg.Code})
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (s *Server) renderAlert(w http.ResponseWriter, r *http.Request, tag language.Tag, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	alert := templates.Alert{
		Kind:      string(msg.Kind),
		Text:      s.translator.Message(tag, msg),
		CodeLabel: s.translator.Text(tag, i18n.KeyAlertCode),
		Code:      msg.Code,
	}
	if err := templates.StatusAlert(alert).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render alert", "error", err)
	}
}
