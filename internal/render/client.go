package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/csheth/logopreview/internal/editor"
	"github.com/csheth/logopreview/internal/preview"
)

const (
	defaultEndpoint = "http://localhost:5000"
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 1 << 20
)

// Config describes how to reach the render service.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the render service.
type Client struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// Response is the JSON body of /process_logo and /process_card.
type Response struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// TransportError means the service could not be reached or did not answer
// in time.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a response the service produced but that carries no artifact.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("render service returned status %d", e.Status)
	}
	return e.Message
}

// NewFromEnv builds a client from cfg, falling back to LOGOPREVIEW_SERVER
// and then http://localhost:5000 for the endpoint.
func NewFromEnv(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		if env := os.Getenv("LOGOPREVIEW_SERVER"); env != "" {
			endpoint = env
		} else {
			endpoint = defaultEndpoint
		}
	}
	endpoint = strings.TrimRight(endpoint, "/")
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", endpoint)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		client:   pickHTTPClient(cfg.HTTPClient, timeout),
	}, nil
}

func pickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	return &http.Client{Timeout: timeout}
}

// Endpoint is the base URL of the service.
func (c *Client) Endpoint() string { return c.endpoint }

// HTTP exposes the underlying client for artifact downloads.
func (c *Client) HTTP() *http.Client { return c.client }

// Timeout is the per-request deadline.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Process sends one render request and decodes the answer.
func (c *Client) Process(ctx context.Context, req preview.Request) (Response, error) {
	path, body, contentType, err := encodeRequest(req)
	if err != nil {
		return Response{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, body)
	if err != nil {
		return Response{}, &TransportError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, &TransportError{Op: "POST " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Response{}, &TransportError{Op: "read response", Err: err}
	}

	var parsed Response
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil {
			msg = strings.TrimSpace(parsed.Error)
		}
		return Response{}, &ServiceError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return Response{}, &ServiceError{Status: resp.StatusCode, Message: ""}
	}
	if !parsed.Success {
		return parsed, &ServiceError{Status: resp.StatusCode, Message: strings.TrimSpace(parsed.Error)}
	}
	if strings.TrimSpace(parsed.Filename) == "" {
		return parsed, &ServiceError{Status: resp.StatusCode, Message: "render service returned no filename"}
	}
	return parsed, nil
}

// Preview runs Process under the client timeout and folds every outcome into
// a result tagged with the request's generation.
func (c *Client) Preview(ctx context.Context, req preview.Request) preview.Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.Process(ctx, req)
	if err == nil {
		return preview.Succeeded(req.Generation, resp.Filename)
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return preview.FailedResult(req.Generation, preview.ErrorService, svcErr.Message)
	}
	return preview.FailedResult(req.Generation, preview.ErrorTransport, "")
}

// ArtifactURL is the cache-busted URL of a rendered artifact.
func (c *Client) ArtifactURL(name, token string, download bool) string {
	q := url.Values{}
	if token != "" {
		q.Set("t", token)
	}
	if download {
		q.Set("download", "true")
	}
	u := c.endpoint + "/processed/" + url.PathEscape(name)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// encodeRequest builds the multipart form for req and picks its path.
func encodeRequest(req preview.Request) (string, io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	path := "/process_logo"
	switch req.Mode {
	case editor.ModeImage:
		if req.File == nil {
			return "", nil, "", editor.ErrNoFile
		}
		if err := writeFile(w, "logo", req.File); err != nil {
			return "", nil, "", err
		}
		if err := w.WriteField("type", req.Mode.FormType()); err != nil {
			return "", nil, "", err
		}
	case editor.ModeText:
		if strings.TrimSpace(req.Text) == "" {
			return "", nil, "", editor.ErrEmptyText
		}
		if err := w.WriteField("logo-text", req.Text); err != nil {
			return "", nil, "", err
		}
		if err := w.WriteField("type", req.Mode.FormType()); err != nil {
			return "", nil, "", err
		}
	case editor.ModeCard:
		if req.File == nil {
			return "", nil, "", editor.ErrNoCardFile
		}
		path = "/process_card"
		if err := writeFile(w, "logo", req.File); err != nil {
			return "", nil, "", err
		}
	default:
		return "", nil, "", fmt.Errorf("unknown mode %d", req.Mode)
	}

	fields := [][2]string{
		{"horizontal_offset", strconv.Itoa(req.Horizontal)},
		{"vertical_offset", strconv.Itoa(req.Vertical)},
		{"scale_factor", FormatScale(req.Scale)},
	}
	if o := req.Override.Override(); o != "" {
		fields = append(fields, [2]string{"override", o})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return "", nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, "", err
	}
	return path, &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, f *editor.File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	contentType := f.MIME
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Data)
	return err
}

// FormatScale renders a scale factor as the shortest decimal, e.g. 1.15 or 1.
func FormatScale(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
