package profile

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxPhotoSize is the largest photo accepted, in bytes
const MaxPhotoSize = 10 << 20

var (
	ErrPhotoTooLarge = errors.New("photo is larger than 10MB")
	ErrNotAnImage    = errors.New("file is not an image")
)

// PhotoDir is where imported photos live under the data directory
func PhotoDir(dataDir string) string {
	return filepath.Join(dataDir, "photos")
}

// ImportPhoto copies the image at src into the photo directory under a
// fresh name and returns its file:// URL.
func ImportPhoto(src, dataDir string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if info.Size() > MaxPhotoSize {
		return "", ErrPhotoTooLarge
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, mtype.String())
	}

	dir := PhotoDir(dataDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create photo directory: %w", err)
	}
	dst := filepath.Join(dir, uuid.NewString()+mtype.Extension())
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}

	abs, err := filepath.Abs(dst)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// RemovePhoto deletes the file behind ref when it was imported into the
// photo directory. Remote URLs and files elsewhere are left alone.
func RemovePhoto(ref, dataDir string) error {
	path, ok := LocalPath(ref)
	if !ok {
		return nil
	}
	dir, err := filepath.Abs(PhotoDir(dataDir))
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if filepath.Dir(abs) != dir {
		return nil
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}

// LocalPath returns the filesystem path of a file:// URL or bare path
func LocalPath(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "file":
		return filepath.FromSlash(u.Path), true
	case "":
		return ref, true
	default:
		return "", false
	}
}
