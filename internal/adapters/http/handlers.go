package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"

	"ezlearn/internal/adapters/http/middleware"
	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/application/console"
	"ezlearn/internal/application/orchestrators"
	"ezlearn/internal/domain/notice"
	"ezlearn/internal/domain/schedule"
)

// timeNow is a variable for testability.
var timeNow = time.Now

var validate = validator.New(validator.WithRequiredStructEnabled())

// maxUpload bounds thumbnail and lecture uploads.
const maxUpload = 64 << 20

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeValid decodes a JSON body and validates its tags.
func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(r, v); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// failure is the body sent when the platform did not complete a request.
type failure struct {
	Error  string         `json:"error"`
	Notice *notice.Notice `json:"notice,omitempty"`
	View   any            `json:"view,omitempty"`
}

// respond writes the view for a console operation. Refused edits answer 409
// with the unchanged view; platform failures answer 502 with the notice the
// console raised, if any.
func respond(w http.ResponseWriter, c *console.Console, view any, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, view)
	case console.IsRejected(err):
		writeJSON(w, http.StatusConflict, view)
	case errors.Is(err, console.ErrClassNotOpen), errors.Is(err, console.ErrPageNotOpen):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, platform.ErrRequestFailed):
		body := failure{Error: "platform request failed", View: view}
		if n, visible := c.Notice(); visible {
			body.Notice = &n
		}
		writeJSON(w, http.StatusBadGateway, body)
	case isInputError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		internalError(w, err)
	}
}

func isInputError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve) ||
		errors.Is(err, orchestrators.ErrNoSessions) ||
		errors.Is(err, schedule.ErrInvalidRange) ||
		errors.Is(err, schedule.ErrRangeTooLong)
}

// consoleFor returns the console of the signed-in admin.
// PRE: the route is wrapped by authed
func consoleFor(r *http.Request) *console.Console {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return workspace.Open(sess.Token, platform.Session{ViewerID: sess.ViewerID, Credential: sess.Credential})
}

// readUpload reads one multipart file field.
func readUpload(r *http.Request, field string) (*multipart.FileHeader, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}
	return header, data, nil
}

type sessionRequest struct {
	ViewerID   string `json:"viewerId" validate:"required"`
	Credential string `json:"credential" validate:"required"`
}

// handleSessionCreate handles POST /api/session.
// The credential is not checked here; the platform verifies it on every call.
func handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeValid(w, r, &req) {
		return
	}
	token, err := sessions.Create(req.ViewerID, req.Credential)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	slog.Info("session_event", "event", "signed_in", "viewer_id", req.ViewerID)
	writeJSON(w, http.StatusCreated, map[string]string{"viewerId": req.ViewerID})
}

// handleSessionGet handles GET /api/session. The CSRF token it returns must
// accompany multipart uploads in the X-CSRF-Token header.
func handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"viewerId":  sess.ViewerID,
		"csrfToken": csrf.Token(r),
	})
}

// handleSessionDelete handles DELETE /api/session.
func handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	workspace.Close(sess.Token)
	sessions.Delete(sess.Token)
	middleware.ClearSessionCookie(w)
	slog.Info("session_event", "event", "signed_out", "viewer_id", sess.ViewerID)
	w.WriteHeader(http.StatusNoContent)
}

// handleNotice handles GET /api/notice. It answers 204 once the notice has
// dismissed itself.
func handleNotice(w http.ResponseWriter, r *http.Request) {
	n, visible := consoleFor(r).Notice()
	if !visible {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handlePerf handles GET /api/perf?window=15m&top=10.
func handlePerf(w http.ResponseWriter, r *http.Request) {
	window := 15 * time.Minute
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "window must be a positive duration", http.StatusBadRequest)
			return
		}
		window = d
	}
	top := 10
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "top must be a non-negative integer", http.StatusBadRequest)
			return
		}
		top = n
	}
	if perfCollector == nil {
		writeJSON(w, http.StatusOK, map[string]any{"written": 0, "kinds": map[string]any{}})
		return
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), top))
}
