package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	cacheEnvVar        = "LOGOPREVIEW_CACHE_DIR"
	cacheSubdir        = "logopreview/artifacts"
	partialSuffix      = ".part"
	metaSuffix         = ".meta"
	defaultHTTPTimeout = 30 * time.Second
)

// ErrBadName is returned for artifact names that are not a plain file name.
var ErrBadName = errors.New("invalid artifact name")

// Store keeps downloaded artifacts on disk. The service may reuse a file
// name for a new render, so every Fetch revalidates with the stored ETag
// and Last-Modified values instead of trusting the local copy.
type Store struct {
	dir    string
	client *http.Client
	group  singleflight.Group
}

type storeMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	FetchedAt    time.Time `json:"fetchedAt"`
	Size         int64     `json:"size"`
}

// NewStore opens the store in LOGOPREVIEW_CACHE_DIR or the user cache dir.
func NewStore(client *http.Client) (*Store, error) {
	dir := os.Getenv(cacheEnvVar)
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "logopreview-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	return NewStoreAt(dir, client)
}

// NewStoreAt opens a store rooted at dir.
func NewStoreAt(dir string, client *http.Client) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Store{dir: dir, client: client}, nil
}

// Dir is the directory holding the artifacts.
func (s *Store) Dir() string { return s.dir }

// Fetch downloads the artifact called name from url and returns its local
// path. Concurrent fetches of one name share a single download.
func (s *Store) Fetch(ctx context.Context, url, name string) (string, error) {
	local, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	v, err, _ := s.group.Do(local, func() (any, error) {
		return s.fetch(ctx, url, local)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Store) fetch(ctx context.Context, url, local string) (string, error) {
	path, metaPath, partialPath := s.pathsFor(local)
	meta, _ := readMeta(metaPath)
	info, _ := os.Stat(path)
	return s.download(ctx, url, path, metaPath, partialPath, meta, info)
}

func (s *Store) download(ctx context.Context, url, path, metaPath, partialPath string, meta storeMeta, current os.FileInfo) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if current != nil && current.Size() > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if current != nil && current.Size() > 0 {
			meta.FetchedAt = time.Now().UTC()
			_ = writeMeta(metaPath, meta)
			return path, nil
		}
		return s.download(ctx, url, path, metaPath, partialPath, storeMeta{}, nil)
	case http.StatusOK:
		return s.saveBody(resp, path, metaPath, partialPath)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("artifact download failed: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}
}

func (s *Store) saveBody(resp *http.Response, path, metaPath, partialPath string) (string, error) {
	file, err := os.OpenFile(partialPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(partialPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(partialPath, path); err != nil {
		return "", err
	}

	meta := storeMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		FetchedAt:    time.Now().UTC(),
	}
	if info, err := os.Stat(path); err == nil {
		meta.Size = info.Size()
	}
	if err := writeMeta(metaPath, meta); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) pathsFor(local string) (string, string, string) {
	base := filepath.Join(s.dir, local)
	return base, base + metaSuffix, base + partialSuffix
}

// sanitizeName accepts the bare file names the service hands out.
func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if strings.HasSuffix(name, metaSuffix) || strings.HasSuffix(name, partialSuffix) {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return name, nil
}

func readMeta(path string) (storeMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return storeMeta{}, err
	}
	var meta storeMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return storeMeta{}, err
	}
	return meta, nil
}

func writeMeta(path string, meta storeMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
