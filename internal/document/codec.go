package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/khrees2412/cvbuilder/pkg/models"
	"gopkg.in/yaml.v3"
)

// Format is a document file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension, defaulting to JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Encode writes doc in the given format
func Encode(w io.Writer, doc models.CVDocument, format Format) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	switch format {
	case FormatJSON:
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		// YAML goes through the JSON form so narrative version tags and
		// field names stay identical across both encodings.
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Decode reads a document in the given format
func Decode(r io.Reader, format Format) (models.CVDocument, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.CVDocument{}, fmt.Errorf("read document: %w", err)
	}

	switch format {
	case FormatJSON:
	case FormatYAML:
		var tree any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return models.CVDocument{}, fmt.Errorf("decode yaml: %w", err)
		}
		if raw, err = json.Marshal(tree); err != nil {
			return models.CVDocument{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return models.CVDocument{}, fmt.Errorf("unsupported format %q", format)
	}

	doc := models.NewDocument()
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.CVDocument{}, fmt.Errorf("decode document: %w", err)
	}
	return doc.Normalized(), nil
}

// LoadDraft reads the working document kept between CLI invocations.
// A missing draft file yields the empty document.
func LoadDraft(path string) (models.CVDocument, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewDocument(), nil
	}
	if err != nil {
		return models.CVDocument{}, fmt.Errorf("open draft: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, FormatJSON)
	if err != nil {
		return models.CVDocument{}, fmt.Errorf("load draft %s: %w", path, err)
	}
	return doc, nil
}

// SaveDraft writes doc atomically to path
func SaveDraft(path string, doc models.CVDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create draft directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".draft-*.json")
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, doc, FormatJSON); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
