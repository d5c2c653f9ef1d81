package editor

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxUpload matches the render service's request size cap.
const DefaultMaxUpload = 16 << 20

// Validation errors are reported before any request reaches the render service.
var (
	ErrNoFile          = errors.New("Select a logo file first.")
	ErrNoCardFile      = errors.New("Select a logo for the card first.")
	ErrEmptyText       = errors.New("Enter some text first.")
	ErrUnsupportedType = errors.New("Unsupported file type. Use PNG, JPG, JPEG, GIF or SVG.")
	ErrEmptyFile       = errors.New("The selected file is empty.")
	ErrTooLarge        = errors.New("File too large.")
)

var allowedTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/gif":     true,
	"image/svg+xml": true,
}

// Allowed reports whether a MIME type is on the upload allow-list.
func Allowed(mime string) bool {
	return allowedTypes[strings.ToLower(strings.TrimSpace(mime))]
}

// DetectMIME sniffs the content type of an upload. SVG is text to the
// standard sniffer, so it is recognised by extension or root element.
func DetectMIME(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if strings.EqualFold(filepath.Ext(name), ".svg") || bytes.Contains(bytes.ToLower(head), []byte("<svg")) {
		if sniffed == "text/xml" || sniffed == "text/plain" || sniffed == "text/html" {
			return "image/svg+xml"
		}
	}
	return sniffed
}

// LoadFile reads and validates a logo file.
func LoadFile(path string, maxBytes int64) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open logo: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open logo: %s is a directory", path)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUpload
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("%w Maximum size is %dMB.", ErrTooLarge, maxBytes>>20)
	}
	if info.Size() == 0 {
		return nil, ErrEmptyFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	mime := DetectMIME(info.Name(), data)
	if !Allowed(mime) {
		return nil, ErrUnsupportedType
	}
	return &File{
		Name:    info.Name(),
		Path:    path,
		MIME:    mime,
		Data:    data,
		ModTime: info.ModTime(),
	}, nil
}

// Validate returns the validation error blocking a submit in the active mode.
func Validate(s State) error {
	switch s.Mode {
	case ModeImage:
		if s.Image == nil {
			return ErrNoFile
		}
		if !Allowed(s.Image.MIME) {
			return ErrUnsupportedType
		}
	case ModeCard:
		if s.Card == nil {
			return ErrNoCardFile
		}
		if !Allowed(s.Card.MIME) {
			return ErrUnsupportedType
		}
	case ModeText:
		if strings.TrimSpace(s.Text) == "" {
			return ErrEmptyText
		}
	}
	return nil
}
