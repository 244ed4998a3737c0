// Package media keeps uploaded class thumbnails, lecture files and local
// replacement previews on disk and serves them back under one URL prefix.
package media

import (
	"bytes"
	"errors"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Folders under the media root.
const (
	FolderThumbnails = "thumbnails"
	FolderLectures   = "lectures"
	FolderPreviews   = "previews"
)

// Thumbnails are fitted inside this box, keeping their aspect ratio.
const (
	ThumbnailWidth  = 640
	ThumbnailHeight = 360
)

var (
	ErrEmptyFile = errors.New("uploaded file is empty")
	ErrNotImage  = errors.New("thumbnail is not a decodable image")
)

// Store writes files beneath Root and names them by URLPrefix.
type Store struct {
	root      string
	urlPrefix string
	newID     func() string
}

// NewStore prepares root and its folders.
// PRE: urlPrefix starts with "/"
// POST: Returns a store whose folders exist on disk
func NewStore(root, urlPrefix string) (*Store, error) {
	for _, folder := range []string{FolderThumbnails, FolderLectures, FolderPreviews} {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("create media folder %s: %w", folder, err)
		}
	}
	return &Store{
		root:      root,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		newID:     func() string { return uuid.New().String() },
	}, nil
}

// SaveThumbnail decodes data as an image, fits it inside the thumbnail box
// and stores it as JPEG.
// PRE: data holds a jpeg, png or gif
// POST: Returns the public reference of the stored thumbnail
func (s *Store) SaveThumbnail(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	b := img.Bounds()
	if b.Dx() > ThumbnailWidth || b.Dy() > ThumbnailHeight {
		img = imaging.Fit(img, ThumbnailWidth, ThumbnailHeight, imaging.Lanczos)
	}
	name := s.uniqueName(filename, ".jpg")
	if err := imaging.Save(img, filepath.Join(s.root, FolderThumbnails, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}
	return s.ref(FolderThumbnails, name), nil
}

// SaveLecture stores a lecture document or video unchanged.
func (s *Store) SaveLecture(filename string, data []byte) (string, error) {
	return s.saveRaw(FolderLectures, filename, data)
}

// SavePreview stores a locally chosen replacement so the console can show
// it before it is submitted.
func (s *Store) SavePreview(filename string, data []byte) (string, error) {
	return s.saveRaw(FolderPreviews, filename, data)
}

// Handler serves stored files under the URL prefix. Folders are never
// listed; asking for one is a 404.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(s.urlPrefix+"/", http.FileServer(filesOnly{http.Dir(s.root)}))
}

// filesOnly hides directories from http.FileServer.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

// Prefix is the URL path every reference starts with.
func (s *Store) Prefix() string {
	return s.urlPrefix
}

func (s *Store) saveRaw(folder, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	name := s.uniqueName(filename, "")
	if err := os.WriteFile(filepath.Join(s.root, folder, name), data, 0o644); err != nil {
		return "", fmt.Errorf("save %s file: %w", folder, err)
	}
	return s.ref(folder, name), nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// uniqueName prefixes a sanitised filename with a uuid. ext, when set,
// replaces the original extension.
func (s *Store) uniqueName(filename, ext string) string {
	base := filepath.Base(filename)
	if ext != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	}
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if base == "" || base == strings.TrimPrefix(ext, ".") {
		base = "file" + ext
	}
	return s.newID() + "-" + base
}

func (s *Store) ref(folder, name string) string {
	return path.Join(s.urlPrefix, folder, name)
}
