package export

import (
	"encoding/base64"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// photoSource turns a profile photo reference into an img src. Remote
// images are linked, local files are inlined so the page stays standalone.
// Anything unusable renders no photo.
func photoSource(ref string) template.URL {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "data:image/") {
		return template.URL(ref)
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	path := ref
	switch u.Scheme {
	case "http", "https":
		return template.URL(u.String())
	case "file":
		path = filepath.FromSlash(u.Path)
	case "":
	default:
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return ""
	}
	return template.URL("data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data))
}
