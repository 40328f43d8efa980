package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factline/internal/model"
	"github.com/ppiankov/factline/internal/segment"
)

// rosterFile is the YAML sidecar format carrying participant metadata
// for a transcript. All fields are optional.
type rosterFile struct {
	Captured     string `yaml:"captured"` // YYYY-MM-DD
	Participants []struct {
		Name        string `yaml:"name"`
		Role        string `yaml:"role"`
		Affiliation string `yaml:"affiliation"`
	} `yaml:"participants"`
}

// FileLoader reads transcript files from disk. HTML inputs are reduced
// to text before segmentation; a roster sidecar next to the transcript
// (or an explicit override path) supplies participants and the capture
// date used to anchor relative dates.
type FileLoader struct {
	RosterPath string    // Explicit roster; overrides the sidecar
	CapturedAt time.Time // Explicit capture date; overrides the roster's
}

// NewFileLoader creates a loader with no overrides.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load reads one transcript into a Document. The document id is the
// file name without its extension, so reruns over the same tree produce
// the same ids.
func (l *FileLoader) Load(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript %s: %w", path, err)
	}

	text := string(data)
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		text = segment.StripHTML(text)
	}

	doc := &model.Document{
		ID:         docID(path),
		Text:       text,
		CapturedAt: l.CapturedAt,
	}

	rosterPath := l.RosterPath
	if rosterPath == "" {
		rosterPath = sidecarPath(path)
	}
	if rosterPath != "" {
		if err := applyRoster(doc, rosterPath, l.RosterPath != ""); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func docID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sidecarPath returns the roster sidecar next to the transcript, or ""
// when none exists. Both .yaml and .yml spellings are accepted.
func sidecarPath(transcript string) string {
	stem := strings.TrimSuffix(transcript, filepath.Ext(transcript))
	for _, ext := range []string{".roster.yaml", ".roster.yml"} {
		p := stem + ext
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyRoster merges a roster file into the document. A missing
// implicit sidecar is not an error; an explicit roster must load.
func applyRoster(doc *model.Document, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return fmt.Errorf("failed to read roster %s: %w", path, err)
		}
		return nil
	}

	var roster rosterFile
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return fmt.Errorf("failed to parse roster %s: %w", path, err)
	}

	for _, p := range roster.Participants {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		doc.Participants = append(doc.Participants, model.Participant{
			Name:        strings.TrimSpace(p.Name),
			Role:        p.Role,
			Affiliation: p.Affiliation,
		})
	}

	if doc.CapturedAt.IsZero() && roster.Captured != "" {
		t, err := time.Parse("2006-01-02", roster.Captured)
		if err != nil {
			return fmt.Errorf("invalid captured date %q in %s: %w", roster.Captured, path, err)
		}
		doc.CapturedAt = t
	}

	return nil
}
