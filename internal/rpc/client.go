// Package rpc is a minimal JSON-RPC 2.0 client for the timetable server.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	appLog "untiscal/internal/log"
)

// DefaultEndpoint is the URL template of a WebUntis JSON-RPC endpoint.
// The two verbs are the server host and the school name.
const DefaultEndpoint = "https://%s/WebUntis/jsonrpc.do?school=%s"

// SessionCookie carries the upstream session id.
const SessionCookie = "JSESSIONID"

// Error is a fault reported by the remote side, either as a JSON-RPC error
// object or as a non-2xx HTTP status (Code 0, HTTPStatus set).
type Error struct {
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
	HTTPStatus int             `json:"-"`
}

func (e *Error) Error() string {
	if e.HTTPStatus != 0 && e.Code == 0 {
		return fmt.Sprintf("rpc: http status %d: %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("rpc: fault %d: %s", e.Code, e.Message)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// Options tune the HTTP transport.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Client issues JSON-RPC calls against one endpoint URL. It is not meant to be
// shared between sessions: the session cookie lives on the client.
type Client struct {
	http *resty.Client
	url  string
}

// NewClient creates a Client for the given endpoint URL.
func NewClient(endpointURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "untiscal"
	}
	hc := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.UserAgent).
		// The session cookie is managed explicitly via SetSession.
		SetCookieJar(nil)

	return &Client{http: hc, url: endpointURL}
}

// Endpoint expands an endpoint template for server and school.
func Endpoint(template, server, school string) (string, error) {
	if template == "" {
		template = DefaultEndpoint
	}
	if server == "" || school == "" {
		return "", errors.New("rpc: server and school are required")
	}
	if strings.ContainsAny(server, "/?#@ ") {
		return "", fmt.Errorf("rpc: invalid server %q", server)
	}
	u := fmt.Sprintf(template, server, url.QueryEscape(school))
	if _, err := url.Parse(u); err != nil {
		return "", fmt.Errorf("rpc: invalid endpoint: %w", err)
	}
	return u, nil
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// SetSession attaches the upstream session id to every following call.
func (c *Client) SetSession(id string) {
	c.ClearSession()
	c.http.SetCookie(&http.Cookie{Name: SessionCookie, Value: id})
}

// ClearSession drops the session cookie.
func (c *Client) ClearSession() {
	c.http.Cookies = nil
}

// Call invokes method with params and decodes the result into result (which
// may be nil to discard it). Remote faults are returned as *Error; transport
// failures are returned wrapped.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	req := request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}

	var envelope response
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&envelope).
		SetError(&envelope).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}

	appLog.Debug("rpc call",
		"method", method,
		"id", req.ID,
		"status", resp.StatusCode(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if envelope.Error != nil {
		return envelope.Error
	}
	if resp.IsError() {
		return &Error{HTTPStatus: resp.StatusCode(), Message: resp.Status()}
	}
	if result == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("rpc %s: decode result: %w", method, err)
	}
	return nil
}
