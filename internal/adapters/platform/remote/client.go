// Package remote talks to a hosted education platform over its admin and
// course HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ezlearn/internal/adapters/platform"
	"ezlearn/internal/domain/class"
	"ezlearn/internal/domain/course"
	"ezlearn/internal/domain/schedule"
	"ezlearn/internal/domain/teacher"
)

// DefaultTimeout bounds a single platform round trip.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Client implements platform.Platform against a remote base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ platform.Platform = (*Client)(nil)

// New returns a client for baseURL. A nil httpClient gets DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// wireClass is the class record as the platform encodes it: the session
// list is a bare array and the class type sits beside it.
type wireClass struct {
	ID             string             `json:"_id"`
	Name           string             `json:"className"`
	TeacherID      string             `json:"teacherId"`
	TeacherName    string             `json:"teacherName"`
	Language       string             `json:"language"`
	MaxStudents    int                `json:"maxStudent,omitempty"`
	CurrentStudent int                `json:"currentStudent"`
	Price          float64            `json:"price"`
	PriceType      class.PriceType    `json:"priceType"`
	Status         class.Status       `json:"status"`
	ClassType      schedule.ClassType `json:"classType"`
	Schedule       []schedule.Session `json:"schedule"`
	ClassURL       string             `json:"classUrl"`
	Thumbnail      string             `json:"thumbnail,omitempty"`
}

func (w wireClass) toDomain() class.Class {
	return class.Class{
		ID:                  w.ID,
		Name:                w.Name,
		TeacherID:           w.TeacherID,
		TeacherName:         w.TeacherName,
		Language:            w.Language,
		MaxStudents:         w.MaxStudents,
		Price:               w.Price,
		PriceType:           w.PriceType,
		Status:              w.Status,
		Schedule:            schedule.Model{Type: w.ClassType, Sessions: w.Schedule},
		CurrentStudentCount: w.CurrentStudent,
		ClassURL:            w.ClassURL,
		ThumbnailRef:        w.Thumbnail,
	}
}

// FetchClass calls GET /admin/fetch-class/{id}.
func (c *Client) FetchClass(ctx context.Context, sess platform.Session, classID string) (platform.ClassDetail, error) {
	var body struct {
		ClassInfo   wireClass       `json:"classInfo"`
		StudentInfo []class.Student `json:"studentInfo"`
	}
	req, err := c.newRequest(ctx, sess, http.MethodGet, "/admin/fetch-class/"+url.PathEscape(classID), nil, "")
	if err != nil {
		return platform.ClassDetail{}, platform.Failed("FetchClass", err)
	}
	if err := c.do(req, &body); err != nil {
		return platform.ClassDetail{}, platform.Failed("FetchClass", err)
	}
	return platform.ClassDetail{Class: body.ClassInfo.toDomain(), Students: body.StudentInfo}, nil
}

// CommitClass calls POST /admin/update-class/{id} with a multipart form.
func (c *Client) CommitClass(ctx context.Context, sess platform.Session, in platform.ClassCommit) (class.Class, error) {
	sessions := in.Schedule.Sessions
	if sessions == nil {
		sessions = []schedule.Session{}
	}
	sched, err := json.Marshal(sessions)
	if err != nil {
		return class.Class{}, platform.Failed("CommitClass", err)
	}
	form := newForm()
	form.field("className", in.Name)
	form.field("teacherId", in.TeacherID)
	form.field("price", strconv.FormatFloat(in.Price, 'f', -1, 64))
	form.field("schedule", string(sched))
	form.field("classUrl", in.ClassURL)
	if in.Thumbnail != nil {
		form.file("thumbnail", in.Thumbnail)
	}
	body, contentType, err := form.close()
	if err != nil {
		return class.Class{}, platform.Failed("CommitClass", err)
	}

	req, err := c.newRequest(ctx, sess, http.MethodPost, "/admin/update-class/"+url.PathEscape(in.ClassID), body, contentType)
	if err != nil {
		return class.Class{}, platform.Failed("CommitClass", err)
	}
	var saved wireClass
	if err := c.do(req, &saved); err != nil {
		return class.Class{}, platform.Failed("CommitClass", err)
	}
	return saved.toDomain(), nil
}

// CreateClass calls POST /admin/create-class. Weekly classes are sent
// already expanded into dated sessions.
func (c *Client) CreateClass(ctx context.Context, sess platform.Session, in platform.NewClass) (class.Class, error) {
	payload := map[string]any{
		"className":        in.Name,
		"teachingLanguage": in.Language,
		"teacherName":      in.TeacherName,
		"teacherId":        in.TeacherID,
		"maxStudent":       in.MaxStudents,
		"classUrl":         in.ClassURL,
		"classType":        in.Schedule.Type,
		"schedule":         in.Schedule.Sessions,
		"price":            in.Price,
		"priceType":        in.PriceType,
	}
	if in.Schedule.Type == schedule.Single && len(in.Schedule.Sessions) == 1 {
		payload["timeFrom"] = in.Schedule.Sessions[0].TimeFrom
		payload["timeTo"] = in.Schedule.Sessions[0].TimeTo
	}
	var created wireClass
	if err := c.postJSON(ctx, sess, "/admin/create-class", payload, &created); err != nil {
		return class.Class{}, platform.Failed("CreateClass", err)
	}
	return created.toDomain(), nil
}

// ListTeachers calls POST /admin/fetch-teacher-list.
func (c *Client) ListTeachers(ctx context.Context, sess platform.Session, language string) ([]teacher.Candidate, error) {
	var list []teacher.Candidate
	err := c.postJSON(ctx, sess, "/admin/fetch-teacher-list", map[string]string{"teachingLanguage": language}, &list)
	if err != nil {
		return nil, platform.Failed("ListTeachers", err)
	}
	if list == nil {
		list = []teacher.Candidate{}
	}
	return list, nil
}

// ResolveUnit calls POST /course/get-unit-content.
func (c *Client) ResolveUnit(ctx context.Context, sess platform.Session, ref platform.UnitRef) (course.Resolution, error) {
	payload := map[string]string{
		"lectureId": ref.UnitID,
		"courseId":  ref.CourseID,
		"userId":    ref.ViewerID,
	}
	var res course.Resolution
	if err := c.postJSON(ctx, sess, "/course/get-unit-content", payload, &res); err != nil {
		return course.Resolution{}, platform.Failed("ResolveUnit", err)
	}
	res.Content.MediaKind = course.ParseMediaKind(string(res.Content.MediaKind))
	return res, nil
}

// CommitUnit calls POST /course/edit-course. Empty fields are left out of
// the form so the platform keeps what it has.
func (c *Client) CommitUnit(ctx context.Context, sess platform.Session, in platform.UnitCommit) error {
	form := newForm()
	if in.UnitID != "" {
		form.field("unitId", in.UnitID)
	}
	if in.CourseID != "" {
		form.field("courseId", in.CourseID)
	}
	if in.File != nil {
		form.file("fileInput", in.File)
	}
	if in.Overview != "" {
		form.field("overview", in.Overview)
	}
	body, contentType, err := form.close()
	if err != nil {
		return platform.Failed("CommitUnit", err)
	}
	req, err := c.newRequest(ctx, sess, http.MethodPost, "/course/edit-course", body, contentType)
	if err != nil {
		return platform.Failed("CommitUnit", err)
	}
	if err := c.do(req, nil); err != nil {
		return platform.Failed("CommitUnit", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, sess platform.Session, path string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, sess, http.MethodPost, path, bytes.NewReader(b), "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, sess platform.Session, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if sess.Credential != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Credential)
	}
	return req, nil
}

// StatusError is a non-2xx platform response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return &StatusError{Code: resp.StatusCode, Body: snippet}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// form builds a multipart body, remembering the first write error.
type form struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newForm() *form {
	f := &form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *form) field(name, value string) {
	if f.err == nil {
		f.err = f.w.WriteField(name, value)
	}
}

func (f *form) file(name string, file *platform.File) {
	if f.err != nil {
		return
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, file.Filename))
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(file.Data)
}

func (f *form) close() (io.Reader, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if err := f.w.Close(); err != nil {
		return nil, "", err
	}
	return &f.buf, f.w.FormDataContentType(), nil
}
