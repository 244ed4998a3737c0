package web

import (
	"net/http"

	"ezlearn/internal/adapters/http/middleware"
)

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/session", handleSessionCreate)
	mux.HandleFunc("GET /api/session", authed(handleSessionGet))
	mux.HandleFunc("DELETE /api/session", authed(handleSessionDelete))
	mux.HandleFunc("GET /api/notice", authed(handleNotice))
	mux.HandleFunc("GET /api/perf", authed(handlePerf))

	mux.HandleFunc("POST /api/classes", authed(handleClassCreate))
	mux.HandleFunc("GET /api/classes/{id}", authed(handleClassOpen))
	mux.HandleFunc("GET /api/classes/{id}/teachers", authed(handleClassTeachers))
	mux.HandleFunc("POST /api/classes/{id}/draft", authed(handleClassDraft))
	mux.HandleFunc("POST /api/classes/{id}/sessions", authed(handleSessionAdd))
	mux.HandleFunc("PATCH /api/classes/{id}/sessions/{index}", authed(handleSessionEdit))
	mux.HandleFunc("POST /api/classes/{id}/sessions/{index}/removal", authed(handleRemovalRequest))
	mux.HandleFunc("POST /api/classes/{id}/removal/confirm", authed(handleRemovalConfirm))
	mux.HandleFunc("DELETE /api/classes/{id}/removal", authed(handleRemovalCancel))
	mux.HandleFunc("POST /api/classes/{id}/thumbnail", authed(handleClassThumbnail))
	mux.HandleFunc("POST /api/classes/{id}/commit", authed(handleClassCommit))

	const unit = "/api/courses/{course}/units/{unit}"
	mux.HandleFunc("GET "+unit, authed(handleUnitOpen))
	mux.HandleFunc("GET "+unit+"/page", authed(handleUnitPage))
	mux.HandleFunc("POST "+unit+"/page/tab", authed(handleUnitTab))
	mux.HandleFunc("POST "+unit+"/page/loaded", authed(handleUnitLoaded))
	mux.HandleFunc("POST "+unit+"/page/edit", authed(handleUnitBeginEdit))
	mux.HandleFunc("POST "+unit+"/page/draft", authed(handleUnitType))
	mux.HandleFunc("POST "+unit+"/page/save", authed(handleUnitSaveDraft))
	mux.HandleFunc("POST "+unit+"/page/cancel", authed(handleUnitCancelEdit))
	mux.HandleFunc("POST "+unit+"/page/media", authed(handleUnitMedia))
	mux.HandleFunc("POST "+unit+"/page/goto", authed(handleUnitGoTo))
	mux.HandleFunc("POST "+unit+"/page/submit", authed(handleUnitSubmit))
}

func authed(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireSession(h).ServeHTTP
}
