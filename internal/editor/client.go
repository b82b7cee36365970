package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"remember_galleries/internal/transport/http/dto"
	"remember_galleries/internal/transport/http/dto/response"
)

const defaultTimeout = 30 * time.Second

// APIError is a failed envelope returned by the service.
type APIError struct {
	Status          int
	Code            string
	Message         string
	ConflictingName string
}

func (e *APIError) Error() string {
	if e.ConflictingName != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.ConflictingName)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client talks to the galleries HTTP API. The cookie jar keeps the
// editor session so drafts survive between calls.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL, token string, opts ...ClientOption) (*Client, error) {
	const op = "editor.NewClient"

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Jar: jar, Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}

	return c, nil
}

func (c *Client) SearchGalleries(ctx context.Context, term string) ([]dto.GallerySearchResult, error) {
	var out []dto.GallerySearchResult
	err := c.do(ctx, http.MethodPost, "/api/v1/galleries/search", dto.SearchGalleriesRequest{Term: term}, &out)
	return out, err
}

func (c *Client) SaveGallery(ctx context.Context, req dto.SaveGalleryRequest) (dto.SavedGalleryResponse, error) {
	var out dto.SavedGalleryResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/galleries/save", req, &out)
	return out, err
}

func (c *Client) GetGallery(ctx context.Context, id int64) (dto.GalleryResponse, error) {
	var out dto.GalleryResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/galleries/%d", id), nil, &out)
	return out, err
}

func (c *Client) QueryAttachments(ctx context.Context, ids []int64) ([]dto.AttachmentResponse, error) {
	raw := make([]any, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id)
	}

	var out []dto.AttachmentResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/attachments/query", dto.QueryAttachmentsRequest{IDs: raw}, &out)
	return out, err
}

func (c *Client) ExpandShortcodes(ctx context.Context, content string) (dto.ExpandShortcodesResponse, error) {
	var out dto.ExpandShortcodesResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/shortcodes/expand", dto.ExpandShortcodesRequest{Content: content}, &out)
	return out, err
}

func (c *Client) GetDraft(ctx context.Context) (dto.DraftResponse, error) {
	var out dto.DraftResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/drafts", nil, &out)
	return out, err
}

func (c *Client) SaveDraft(ctx context.Context, req dto.DraftRequest) (dto.DraftResponse, error) {
	var out dto.DraftResponse
	err := c.do(ctx, http.MethodPut, "/api/v1/drafts", req, &out)
	return out, err
}

func (c *Client) DeleteDraft(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/drafts", nil, nil)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	const op = "editor.Client.do"

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: %s %s: status %d: %w", op, method, path, resp.StatusCode, err)
	}

	if !env.Success {
		var data response.ErrorData
		if len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &data)
		}
		return &APIError{
			Status:          resp.StatusCode,
			Code:            data.Code,
			Message:         data.Message,
			ConflictingName: data.Name,
		}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
