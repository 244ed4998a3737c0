package web

import (
	"bytes"
	"net/http"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"ezlearn/internal/application/console"
	"ezlearn/internal/domain/navigator"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// unitView is the page view plus the rendered overview.
type unitView struct {
	navigator.View
	OverviewHTML string `json:"overviewHtml"`
}

func renderUnit(v navigator.View) unitView {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(v.Overview), &buf); err != nil {
		return unitView{View: v}
	}
	return unitView{View: v, OverviewHTML: buf.String()}
}

// respondUnit renders a page view and writes it like respond does.
func respondUnit(w http.ResponseWriter, c *console.Console, v navigator.View, err error) {
	respond(w, c, renderUnit(v), err)
}

func unitAddress(r *http.Request) (string, string) {
	return r.PathValue("course"), r.PathValue("unit")
}

// handleUnitOpen handles GET /api/courses/{course}/units/{unit}: opens a
// fresh page and resolves the unit with its neighbours.
func handleUnitOpen(w http.ResponseWriter, r *http.Request) {
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.OpenUnit(r.Context(), navigator.Target{CourseID: courseID, UnitID: unitID})
	respondUnit(w, c, v, err)
}

// handleUnitPage handles GET /api/courses/{course}/units/{unit}/page.
func handleUnitPage(w http.ResponseWriter, r *http.Request) {
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.Page(courseID, unitID)
	respondUnit(w, c, v, err)
}

type tabRequest struct {
	Tab navigator.Tab `json:"tab" validate:"required"`
}

// handleUnitTab handles POST .../page/tab.
func handleUnitTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if !decodeValid(w, r, &req) {
		return
	}
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.SwitchTab(courseID, unitID, req.Tab)
	respondUnit(w, c, v, err)
}

// handleUnitLoaded handles POST .../page/loaded, sent by the embedded
// document viewer once it has rendered.
func handleUnitLoaded(w http.ResponseWriter, r *http.Request) {
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.DocumentLoaded(courseID, unitID)
	respondUnit(w, c, v, err)
}

// handleUnitBeginEdit handles POST .../page/edit.
func handleUnitBeginEdit(w http.ResponseWriter, r *http.Request) {
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.BeginEdit(courseID, unitID)
	respondUnit(w, c, v, err)
}

type typeRequest struct {
	Text string `json:"text"`
}

// handleUnitType handles POST .../page/draft.
func handleUnitType(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if !decodeValid(w, r, &req) {
		return
	}
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.Type(courseID, unitID, req.Text)
	respondUnit(w, c, v, err)
}

// handleUnitSaveDraft handles POST .../page/save. Nothing is sent to the
// platform until submit.
func handleUnitSaveDraft(w http.ResponseWriter, r *http.Request) {
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.SaveDraft(courseID, unitID)
	respondUnit(w, c, v, err)
}

// handleUnitCancelEdit handles POST .../page/cancel.
func handleUnitCancelEdit(w http.ResponseWriter, r *http.Request) {
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.CancelEdit(courseID, unitID)
	respondUnit(w, c, v, err)
}

// handleUnitMedia handles POST .../page/media.
// Accepts multipart form data with the replacement in the "fileInput" field.
func handleUnitMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "request too large or malformed", http.StatusBadRequest)
		return
	}
	header, data, err := readUpload(r, "fileInput")
	if err != nil {
		http.Error(w, "fileInput is required", http.StatusBadRequest)
		return
	}
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.ReplaceMedia(courseID, unitID, header.Filename, header.Header.Get("Content-Type"), data)
	respondUnit(w, c, v, err)
}

type gotoRequest struct {
	Direction navigator.Direction `json:"direction" validate:"required"`
}

// handleUnitGoTo handles POST .../page/goto. The view's target names the
// unit now shown; a missing neighbour leaves it unchanged.
func handleUnitGoTo(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if !decodeValid(w, r, &req) {
		return
	}
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.GoTo(r.Context(), courseID, unitID, req.Direction)
	respondUnit(w, c, v, err)
}

// handleUnitSubmit handles POST .../page/submit.
// POST: 200 with the view, or 502 with the view and the failure notice
func handleUnitSubmit(w http.ResponseWriter, r *http.Request) {
	courseID, unitID := unitAddress(r)
	c := consoleFor(r)
	v, err := c.Submit(r.Context(), courseID, unitID)
	respondUnit(w, c, v, err)
}
