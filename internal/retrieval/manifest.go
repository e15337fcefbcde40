package retrieval

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	manifestFile  = "manifest.yaml"
	vectorsFile   = "vectors.idx"
	documentsFile = "documents.db"
)

// Manifest describes a built index directory.
type Manifest struct {
	BuildID    string    `yaml:"build_id"`
	Model      string    `yaml:"model"`
	Dimensions int       `yaml:"dimensions"`
	Count      int       `yaml:"count"`
	IndexType  string    `yaml:"index_type"`
	CreatedAt  time.Time `yaml:"created_at"`
}

func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse manifest: %v", ErrIndexCorrupt, err)
	}
	if m.BuildID == "" || m.Dimensions <= 0 || m.Count < 0 {
		return nil, fmt.Errorf("%w: incomplete manifest", ErrIndexCorrupt)
	}
	return &m, nil
}

// writeManifest writes through a temp file so a crashed build never leaves a
// manifest that points at partial data.
func writeManifest(dir string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	tmp := filepath.Join(dir, manifestFile+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, manifestFile)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
