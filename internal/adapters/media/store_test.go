package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.newID = func() string { return "fixed-id" }
	return s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSaveThumbnail_FitsBox(t *testing.T) {
	s := newTestStore(t)

	ref, err := s.SaveThumbnail("cover photo.png", pngBytes(t, 1280, 960))
	if err != nil {
		t.Fatalf("SaveThumbnail: %v", err)
	}
	if ref != "/media/thumbnails/fixed-id-cover_photo.jpg" {
		t.Errorf("ref = %q", ref)
	}

	f, err := os.Open(filepath.Join(s.root, FolderThumbnails, "fixed-id-cover_photo.jpg"))
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if cfg.Width != 480 || cfg.Height != 360 {
		t.Errorf("thumbnail = %dx%d, want 480x360", cfg.Width, cfg.Height)
	}
}

func TestSaveThumbnail_SmallImageKeepsSize(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveThumbnail("tiny.png", pngBytes(t, 40, 30)); err != nil {
		t.Fatalf("SaveThumbnail: %v", err)
	}
	f, _ := os.Open(filepath.Join(s.root, FolderThumbnails, "fixed-id-tiny.jpg"))
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("size = %dx%d, want 40x30", cfg.Width, cfg.Height)
	}
}

func TestSaveThumbnail_Rejects(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveThumbnail("x.png", nil); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty err = %v", err)
	}
	if _, err := s.SaveThumbnail("x.png", []byte("not an image")); !errors.Is(err, ErrNotImage) {
		t.Errorf("garbage err = %v", err)
	}
}

func TestSaveLecture_ServedByHandler(t *testing.T) {
	s := newTestStore(t)
	ref, err := s.SaveLecture("../../week 1.pdf", []byte("%PDF-1.4 lecture"))
	if err != nil {
		t.Fatalf("SaveLecture: %v", err)
	}
	if ref != "/media/lectures/fixed-id-week_1.pdf" {
		t.Errorf("ref = %q", ref)
	}

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL + ref)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "%PDF") {
		t.Errorf("body = %q", body)
	}
}

func TestHandler_NoFolderListings(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SavePreview("draft.pdf", []byte("%PDF")); err != nil {
		t.Fatal(err)
	}
	h := s.Handler()
	for _, p := range []string{"/media/", "/media/previews/", "/media/previews", "/media/lectures/"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, p, nil))
		if rr.Code != http.StatusNotFound {
			t.Errorf("GET %s: status = %d, want 404", p, rr.Code)
		}
		if strings.Contains(rr.Body.String(), "draft.pdf") {
			t.Errorf("GET %s listed stored files", p)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/media/previews/fixed-id-draft.pdf", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("GET stored preview: status = %d, want 200", rr.Code)
	}
}

func TestSavePreview_UniqueNames(t *testing.T) {
	s, err := NewStore(t.TempDir(), "/media/")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := s.SavePreview("clip.mp4", []byte{1})
	b, _ := s.SavePreview("clip.mp4", []byte{2})
	if a == b {
		t.Errorf("two previews share a reference: %q", a)
	}
	if !strings.HasPrefix(a, "/media/previews/") || !strings.HasSuffix(a, "-clip.mp4") {
		t.Errorf("ref = %q", a)
	}
	if s.Prefix() != "/media" {
		t.Errorf("Prefix = %q", s.Prefix())
	}
}
