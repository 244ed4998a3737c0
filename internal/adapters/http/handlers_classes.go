package web

import (
	"errors"
	"net/http"
	"strconv"

	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/application/console"
	"ezlearn/internal/application/orchestrators"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/schedule"
)

type createClassRequest struct {
	Name        string                `json:"className"`
	Language    string                `json:"language"`
	TeacherID   string                `json:"teacherId"`
	MaxStudents int                   `json:"maxStudent"`
	ClassURL    string                `json:"classUrl"`
	Price       float64               `json:"price"`
	PriceType   class.PriceType       `json:"priceType"`
	ClassType   schedule.ClassType    `json:"classType"`
	Date        string                `json:"date"`
	TimeFrom    string                `json:"timeFrom"`
	TimeTo      string                `json:"timeTo"`
	Slots       []schedule.WeeklySlot `json:"schedule"`
	StartDate   string                `json:"startDate"`
	EndDate     string                `json:"endDate"`
}

// handleClassCreate handles POST /api/classes.
// PRE: body names a teacher of the chosen language
// POST: 201 with the created class, or 400 on invalid input
func handleClassCreate(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	c := consoleFor(r)
	created, err := c.CreateClass(r.Context(), orchestrators.CreateClassInput{
		Name:        req.Name,
		Language:    req.Language,
		TeacherID:   req.TeacherID,
		MaxStudents: req.MaxStudents,
		ClassURL:    req.ClassURL,
		Price:       req.Price,
		PriceType:   req.PriceType,
		ClassType:   req.ClassType,
		Date:        req.Date,
		TimeFrom:    req.TimeFrom,
		TimeTo:      req.TimeTo,
		Slots:       req.Slots,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if errors.Is(err, platform.ErrRequestFailed) {
		respond(w, c, nil, err)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleClassOpen handles GET /api/classes/{id}: fetches the record and
// starts a fresh draft of it.
func handleClassOpen(w http.ResponseWriter, r *http.Request) {
	c := consoleFor(r)
	v, err := c.OpenClass(r.Context(), r.PathValue("id"))
	if err != nil {
		respond(w, c, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleClassTeachers handles GET /api/classes/{id}/teachers.
func handleClassTeachers(w http.ResponseWriter, r *http.Request) {
	c := consoleFor(r)
	list, err := c.Teachers(r.Context(), r.PathValue("id"))
	respond(w, c, list, err)
}

type draftRequest struct {
	Name      *string  `json:"className"`
	Price     *float64 `json:"price"`
	ClassURL  *string  `json:"classUrl" validate:"omitempty,url"`
	TeacherID *string  `json:"teacherId"`
}

// handleClassDraft handles POST /api/classes/{id}/draft.
func handleClassDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeValid(w, r, &req) {
		return
	}
	c := consoleFor(r)
	v, err := c.EditClass(r.PathValue("id"), console.ClassPatch{
		Name:      req.Name,
		Price:     req.Price,
		ClassURL:  req.ClassURL,
		TeacherID: req.TeacherID,
	})
	respond(w, c, v, err)
}

// handleSessionAdd handles POST /api/classes/{id}/sessions.
func handleSessionAdd(w http.ResponseWriter, r *http.Request) {
	c := consoleFor(r)
	v, err := c.AddSession(r.PathValue("id"))
	respond(w, c, v, err)
}

type sessionEditRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// handleSessionEdit handles PATCH /api/classes/{id}/sessions/{index}.
func handleSessionEdit(w http.ResponseWriter, r *http.Request) {
	index, ok := sessionIndex(w, r)
	if !ok {
		return
	}
	var req sessionEditRequest
	if !decodeValid(w, r, &req) {
		return
	}
	c := consoleFor(r)
	v, err := c.EditSession(r.PathValue("id"), index, req.Field, req.Value)
	respond(w, c, v, err)
}

// handleRemovalRequest handles POST /api/classes/{id}/sessions/{index}/removal.
func handleRemovalRequest(w http.ResponseWriter, r *http.Request) {
	index, ok := sessionIndex(w, r)
	if !ok {
		return
	}
	c := consoleFor(r)
	v, err := c.RequestRemoval(r.PathValue("id"), index)
	respond(w, c, v, err)
}

// handleRemovalConfirm handles POST /api/classes/{id}/removal/confirm.
func handleRemovalConfirm(w http.ResponseWriter, r *http.Request) {
	c := consoleFor(r)
	v, err := c.ConfirmRemoval(r.PathValue("id"))
	respond(w, c, v, err)
}

// handleRemovalCancel handles DELETE /api/classes/{id}/removal.
func handleRemovalCancel(w http.ResponseWriter, r *http.Request) {
	c := consoleFor(r)
	v, err := c.CancelRemoval(r.PathValue("id"))
	respond(w, c, v, err)
}

// handleClassThumbnail handles POST /api/classes/{id}/thumbnail.
// Accepts multipart form data with an image in the "thumbnail" field. The
// image is held on the draft until the next commit.
func handleClassThumbnail(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "request too large or malformed", http.StatusBadRequest)
		return
	}
	header, data, err := readUpload(r, "thumbnail")
	if err != nil {
		http.Error(w, "thumbnail file is required", http.StatusBadRequest)
		return
	}
	c := consoleFor(r)
	v, err := c.SetThumbnail(r.PathValue("id"), class.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	respond(w, c, v, err)
}

// handleClassCommit handles POST /api/classes/{id}/commit.
// POST: 200 with the saved view, or 502 with the kept draft and the notice
func handleClassCommit(w http.ResponseWriter, r *http.Request) {
	c := consoleFor(r)
	v, err := c.CommitClass(r.Context(), r.PathValue("id"))
	respond(w, c, v, err)
}

func sessionIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "session index must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}
