package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/csheth/logopreview/internal/editor"
)

// Manifest records the parameters an exported artifact was rendered with.
type Manifest struct {
	Artifact   string    `yaml:"artifact"`
	Mode       string    `yaml:"mode"`
	Horizontal int       `yaml:"horizontal_offset"`
	Vertical   int       `yaml:"vertical_offset"`
	Scale      float64   `yaml:"scale_factor"`
	Source     string    `yaml:"source,omitempty"`
	Text       string    `yaml:"text,omitempty"`
	Generation uint64    `yaml:"generation"`
	ExportedAt time.Time `yaml:"exported_at"`
}

// NewManifest describes the artifact rendered from s.
func NewManifest(s editor.State, name string) Manifest {
	m := Manifest{
		Artifact:   name,
		Mode:       s.Mode.String(),
		Horizontal: s.Horizontal,
		Vertical:   s.Vertical,
		Scale:      s.Scale,
		Generation: s.Generation,
	}
	if s.Mode == editor.ModeText {
		m.Text = strings.TrimSpace(s.Text)
	} else if f := s.ActiveFile(); f != nil {
		m.Source = f.Path
	}
	return m
}

// Export copies the stored artifact into dir and writes a YAML manifest
// beside it. It returns the path of the copied artifact.
func Export(storePath, dir string, m Manifest) (string, error) {
	if m.Artifact == "" {
		m.Artifact = filepath.Base(storePath)
	}
	name, err := sanitizeName(m.Artifact)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	target := filepath.Join(dir, name)
	if err := copyFile(storePath, target); err != nil {
		return "", fmt.Errorf("export artifact: %w", err)
	}

	if m.ExportedAt.IsZero() {
		m.ExportedAt = time.Now().UTC()
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(ManifestPath(target), data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return target, nil
}

// ManifestPath is the sidecar path for an exported artifact.
func ManifestPath(artifactPath string) string {
	return strings.TrimSuffix(artifactPath, filepath.Ext(artifactPath)) + ".yaml"
}

// ReadManifest loads a manifest written by Export.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + partialSuffix
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
