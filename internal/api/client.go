// Package api is the HTTP client for the diabetes REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/identity"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/metrics"
)

// DefaultDays is the look-back used when a caller passes 0 days.
const DefaultDays = 30

// HeaderRequestID correlates a call with the request that caused it.
const HeaderRequestID = "X-Request-ID"

// Client talks to the diabetes API. Identity headers are taken from the
// context of every call and never stored on the client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// call describes one API request. route is the path template used as the
// metrics label.
type call struct {
	op     string
	method string
	route  string
	path   string
	query  url.Values
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, cl call) error {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return apperrors.ErrMissingIdentity
	}

	var reader io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return apperrors.NewInternalError(fmt.Errorf("failed to marshal %s request: %w", cl.op, err))
		}
		reader = bytes.NewReader(data)
	}

	target := c.BaseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, reader)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("failed to create %s request: %w", cl.op, err))
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	id.SetHeaders(req.Header)

	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(HeaderRequestID, requestID)

	log := logger.WithContext(ctx).With("op", cl.op, "method", cl.method, "route", cl.route)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		observe(cl, "error", start)
		log.Warn("API request failed", "error", err)
		return apperrors.NewTransportError(err, cl.op)
	}
	defer resp.Body.Close()
	observe(cl, strconv.Itoa(resp.StatusCode), start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewTransportError(fmt.Errorf("failed to read %s response: %w", cl.op, err), cl.op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("API returned error status", "status", resp.StatusCode)
		return remoteError(resp.StatusCode, body, cl.op)
	}

	if cl.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, cl.out); err != nil {
		appErr := apperrors.NewRemoteError(resp.StatusCode, "", cl.op)
		appErr.Internal = fmt.Errorf("failed to parse %s response: %w", cl.op, err)
		return appErr
	}
	return nil
}

// remoteError keeps the server's message verbatim when the body carries one.
func remoteError(status int, body []byte, op string) error {
	var eb errorBody
	msg := ""
	if err := json.Unmarshal(body, &eb); err == nil {
		msg = eb.Error
		if msg == "" {
			msg = eb.Message
		}
	}
	return apperrors.NewRemoteError(status, msg, op)
}

func observe(cl call, status string, start time.Time) {
	metrics.APIRequestsTotal.WithLabelValues(cl.method, cl.route, status).Inc()
	metrics.APIRequestDurationSeconds.WithLabelValues(cl.method, cl.route, status).Observe(time.Since(start).Seconds())
}

func daysQuery(days int) url.Values {
	if days <= 0 {
		days = DefaultDays
	}
	return url.Values{"days": []string{strconv.Itoa(days)}}
}

func userQuery(userID int64) url.Values {
	return url.Values{"user_id": []string{strconv.FormatInt(userID, 10)}}
}

func idPath(prefix string, id int64, suffix string) string {
	return prefix + "/" + strconv.FormatInt(id, 10) + suffix
}

var _ domain.Gateway = (*Client)(nil)
