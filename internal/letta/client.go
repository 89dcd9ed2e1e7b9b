package letta

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"votcletta/internal/domain"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultBaseURL is where a locally started Letta server listens.
	DefaultBaseURL = "http://localhost:8283"

	toolsPath  = "/v1/tools/"
	healthPath = "/v1/health/"

	listPageSize = 100
	maxErrorBody = 4 << 10
)

// Client talks to the tool registry of a Letta server. It never retries:
// registration is a one-shot operation and failures are reported to the user.
type Client struct {
	baseURL  string
	token    string
	password string
	client   *http.Client
	logger   *slog.Logger
}

type Config struct {
	BaseURL  string
	Token    string // sent as a bearer token
	Password string // self-hosted servers started with a password
	Timeout  time.Duration
	Logger   *slog.Logger
}

func NewClient(cfg Config) *Client {
	return NewClientWithHTTP(cfg, SharedHTTPClient(cfg.Timeout))
}

// NewClientWithHTTP is NewClient with a caller-supplied transport, used by tests.
func NewClientWithHTTP(cfg Config, client *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		password: cfg.Password,
		client:   client,
		logger:   cfg.Logger,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// createToolRequest matches the Letta ToolCreate body.
type createToolRequest struct {
	SourceCode  string          `json:"source_code"`
	SourceType  string          `json:"source_type"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	JSONSchema  *toolJSONSchema `json:"json_schema,omitempty"`
}

type toolJSONSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Create stores desc in the server registry. A name collision returns an
// error matching ErrConflict.
func (c *Client) Create(ctx context.Context, desc domain.ToolDescriptor) (*domain.ToolRecord, error) {
	doc := desc.Documentation
	if doc == "" {
		doc = desc.Description
	}
	body := createToolRequest{
		SourceCode:  desc.SourceCode,
		SourceType:  "python",
		Description: desc.Description,
		Tags:        desc.Tags,
		JSONSchema: &toolJSONSchema{
			Name:        desc.Name,
			Description: doc,
			Parameters:  desc.Parameters,
		},
	}

	var rec domain.ToolRecord
	if err := c.do(ctx, http.MethodPost, toolsPath, nil, body, &rec); err != nil {
		return nil, errors.Wrapf(err, "create tool %s", desc.Name)
	}
	if rec.ID == "" {
		return nil, errors.Newf("create tool %s: server returned no id", desc.Name)
	}
	return &rec, nil
}

// List returns every tool in the registry, following the server's cursor
// pagination.
func (c *Client) List(ctx context.Context) ([]domain.ToolRecord, error) {
	var all []domain.ToolRecord
	after := ""
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(listPageSize))
		if after != "" {
			q.Set("after", after)
		}

		var page []domain.ToolRecord
		if err := c.do(ctx, http.MethodGet, toolsPath, q, nil, &page); err != nil {
			return nil, errors.Wrap(err, "list tools")
		}
		all = append(all, page...)

		if len(page) < listPageSize || page[len(page)-1].ID == "" || page[len(page)-1].ID == after {
			return all, nil
		}
		after = page[len(page)-1].ID
	}
}

// Health is the server's /v1/health/ payload.
type Health struct {
	Version string `json:"version"`
	Status  string `json:"status"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, healthPath, nil, nil, &h); err != nil {
		return nil, errors.Wrap(err, "letta server not reachable")
	}
	return &h, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.password != "" {
		req.Header.Set("X-BARE-PASSWORD", "password "+c.password)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("letta request failed", "method", method, "path", path, "duration", time.Since(start), "err", err)
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	c.logger.Debug("letta request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

var _ domain.ToolRegistry = (*Client)(nil)
