package gestagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// FilePart is a file attached to a multipart request.
type FilePart struct {
	Field    string
	Name     string
	MIMEType string
	Data     []byte
}

// Request describes one call against the service. Exactly one of JSON or
// File is normally set; GET requests leave both empty.
type Request struct {
	Method string
	Path   string
	JSON   interface{}
	File   *FilePart
	Fields map[string]string
}

// Response is the outcome of a call that reached the service.
// Non-2xx statuses are returned as responses, never as errors.
type Response struct {
	StatusCode int
	// Body is the decoded JSON value, or the raw text when the payload is not JSON.
	Body    interface{}
	Raw     []byte
	Elapsed time.Duration
}

// IsJSON reports whether the body decoded as JSON.
func (r *Response) IsJSON() bool {
	_, isText := r.Body.(string)
	return r.Body != nil && !isText
}

// Object returns the body as a JSON object, if it is one.
func (r *Response) Object() (map[string]interface{}, bool) {
	obj, ok := r.Body.(map[string]interface{})
	return obj, ok
}

// Snippet returns at most n bytes of the raw body, for log lines.
func (r *Response) Snippet(n int) string {
	s := strings.TrimSpace(string(r.Raw))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// TransportError reports a request that never produced an HTTP response:
// connection refused, reset, DNS failure and so on.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client talks to a GestAgent instance rooted at a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for baseURL. The default http.Client has no
// timeout: a hanging service hangs the run, which is what latency
// measurements need.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.log = c.log.WithField("component", "gestagent-client")

	return c
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends body as JSON to path.
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, JSON: body})
}

// GetJSON fetches path.
func (c *Client) GetJSON(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// PostMultipart uploads file plus extra form fields to path.
func (c *Client) PostMultipart(ctx context.Context, path string, file FilePart, fields map[string]string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, File: &file, Fields: fields})
}

// Do executes req. The elapsed time covers the full round trip including
// reading the body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	url := c.baseURL + req.Path

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %s %s: %w", method, req.Path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, req.Path, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"url":    url,
	}).Debug("Sending request")

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Raw:        raw,
		Elapsed:    time.Since(start),
	}

	var decoded interface{}
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &decoded) == nil {
		resp.Body = decoded
	} else {
		resp.Body = string(raw)
	}

	c.log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": resp.Elapsed,
		"body":    resp.Snippet(200),
	}).Debug("Received response")

	return resp, nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	switch {
	case req.File != nil:
		return encodeMultipart(req.File, req.Fields)
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	default:
		return nil, "", nil
	}
}

func encodeMultipart(file *FilePart, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	field := file.Field
	if field == "" {
		field = "file"
	}

	mimeType := file.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
	header.Set("Content-Type", mimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
