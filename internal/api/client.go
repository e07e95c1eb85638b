// Package api is the typed gateway to the study backend.
//
// Every method either returns a decoded result or an *Error carrying a Kind.
// Nothing here retries; callers decide what a failure means.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/logging"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// CredentialSource supplies the bearer token for authenticated calls.
// An error means there is no usable credential.
type CredentialSource interface {
	Token() (string, error)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout bounds each request. Zero means none.
	Timeout     time.Duration
	Credentials CredentialSource
	Logger      *logging.Logger
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the study backend.
type Client struct {
	base  *url.URL
	http  *http.Client
	creds CredentialSource
	log   *logging.Logger
}

// New returns a Client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &Client{base: base, http: hc, creds: opts.Credentials, log: log.Named("api")}, nil
}

// call describes one backend request.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	auth   bool

	// At most one of json, form and upload is set.
	json   any
	form   url.Values
	upload *upload

	// schema validates the response body before decoding into out.
	schema *responseSchema
	out    any
}

type upload struct {
	field    string
	filename string
	body     io.Reader
}

func (c *Client) do(ctx context.Context, cl call) error {
	var token string
	if cl.auth {
		if c.creds == nil {
			return &Error{Kind: KindUnauthenticated, Op: cl.op, Err: errors.New("no credential source")}
		}
		t, err := c.creds.Token()
		if err != nil {
			return &Error{Kind: KindUnauthenticated, Op: cl.op, Err: err}
		}
		token = t
	}

	body, contentType, err := encodeBody(cl)
	if err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Err: err}
	}

	u := c.base.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed",
			zap.String("op", cl.op),
			zap.String("method", cl.method),
			zap.String("path", u.Path),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return &Error{Kind: KindTransport, Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.log.Debug(ctx, "request",
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", u.Path),
		zap.Bool("bearer", token != ""),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Kind:   classifyStatus(resp.StatusCode),
			Op:     cl.op,
			Status: resp.StatusCode,
			Detail: parseDetail(raw),
		}
	}

	if cl.out == nil {
		return nil
	}
	if err := validateBody(cl.schema, raw); err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Status: resp.StatusCode, Err: err}
	}
	if err := json.Unmarshal(raw, cl.out); err != nil {
		return &Error{Kind: KindTransport, Op: cl.op, Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

func encodeBody(cl call) (io.Reader, string, error) {
	switch {
	case cl.json != nil:
		data, err := json.Marshal(cl.json)
		if err != nil {
			return nil, "", fmt.Errorf("encode request: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	case cl.form != nil:
		return strings.NewReader(cl.form.Encode()), "application/x-www-form-urlencoded", nil
	case cl.upload != nil:
		return encodeMultipart(cl.upload)
	}
	return nil, "", nil
}

func encodeMultipart(up *upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, up.field, filepath.Base(up.filename)))
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(up.filename)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}
	if _, err := io.Copy(part, up.body); err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// parseDetail extracts the human-readable message from an error body. The
// backend sends {"detail": "..."} for its own errors and FastAPI's
// {"detail": [{"msg": "..."}]} for request validation errors.
func parseDetail(raw []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return truncate(strings.TrimSpace(string(raw)), 200)
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(envelope.Detail)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func setPath(prefix string, id ID, suffix string) string {
	return prefix + url.PathEscape(id.String()) + suffix
}
