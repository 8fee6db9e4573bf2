package api

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
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/model"
)

// Client talks to the drilling-fleet REST API. Every request carries the session token,
// and a 401 from any endpoint invalidates the session.
type Client struct {
	baseURL string
	media   string
	http    *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

type Options struct {
	BaseURL      string
	MediaBaseURL string
	Timeout      time.Duration
	// Transport overrides the underlying round tripper; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

func NewClient(opts Options, tokens TokenSource, log zerolog.Logger) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	media := strings.TrimRight(opts.MediaBaseURL, "/")
	if media == "" {
		media = origin(opts.BaseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		media:   media,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &authTransport{base: base, tokens: tokens},
		},
		tokens: tokens,
		log:    log.With().Str("component", "api").Logger(),
	}
}

// MediaURL resolves a relative upload path against the media host.
func (c *Client) MediaURL(path string) string {
	if resolved := mediaURL(c.media, &path); resolved != nil {
		return *resolved
	}
	return ""
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, true)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, true)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out, true)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	return c.send(ctx, method, path, reader, "application/json", out, authed)
}

// formFile is one file part of a multipart body.
type formFile struct {
	field string
	image *model.ReportImage
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, fields map[string]string, files []formFile, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range files {
		if f.image == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.image.FileName))
		ct := f.image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create part %s: %w", f.field, err)
		}
		if _, err := part.Write(f.image.Data); err != nil {
			return fmt.Errorf("write part %s: %w", f.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}
	return c.send(ctx, method, path, &buf, w.FormDataContentType(), out, true)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, out any, authed bool) error {
	if authed && c.tokens.Token() == "" {
		return ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", ErrNetwork, method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: parseErrorBody(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// IsUnauthorized reports whether err ended the session.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoToken)
}
