package webhook

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gatehook/gatehook/pkg/logger"
)

// ErrResponseTooLarge is returned when the webhook response body
// exceeds the configured cap. No actions are executed in that case.
var ErrResponseTooLarge = errors.New("webhook response body exceeds size limit")

// Options configures the HTTP sender.
type Options struct {
	Timeout             time.Duration
	ConnectTimeout      time.Duration
	Insecure            bool
	MaxResponseBodySize int64
	MaxActions          int
}

// HTTPSender delivers event payloads to the operator's webhook
// endpoint as JSON POST requests and parses the typed response. The
// client instance is shared and immutable.
type HTTPSender struct {
	client     *http.Client
	endpoint   *url.URL
	maxBody    int64
	maxActions int
}

func NewHTTPSender(endpoint *url.URL, opts Options) *HTTPSender {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
	}
	if opts.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &HTTPSender{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		endpoint:   endpoint,
		maxBody:    opts.MaxResponseBodySize,
		maxActions: opts.MaxActions,
	}
}

// Send POSTs the payload to {endpoint}?handler={handler} and parses
// the response. Any HTTP status is accepted: a parseable body yields
// actions, an unparseable one yields an empty response. Payload
// encoding, request, transport and read failures and an oversized body
// surface as errors.
func (s *HTTPSender) Send(ctx context.Context, handler string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", handler, err)
	}

	u := *s.endpoint
	q := u.Query()
	q.Set("handler", handler)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting %s event to webhook: %w", handler, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading webhook response: %w", err)
	}
	if int64(len(data)) > s.maxBody {
		return nil, fmt.Errorf("%s response over %d bytes: %w", handler, s.maxBody, ErrResponseTooLarge)
	}

	return s.parseResponse(handler, resp.StatusCode, data), nil
}

func (s *HTTPSender) parseResponse(handler string, status int, data []byte) *Response {
	success := status >= 200 && status < 300

	if len(bytes.TrimSpace(data)) == 0 {
		logger.DebugCF("webhook", "Empty webhook response", map[string]interface{}{
			"handler": handler,
			"status":  status,
		})
		return &Response{}
	}

	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		// Non-success statuses often carry error pages rather than
		// action JSON; only a malformed success body is noteworthy.
		if success {
			logger.WarnCF("webhook", "Webhook response could not be parsed, ignoring actions", map[string]interface{}{
				"handler": handler,
				"status":  status,
				"error":   err.Error(),
			})
		} else {
			logger.DebugCF("webhook", "Webhook returned error status without parseable body", map[string]interface{}{
				"handler": handler,
				"status":  status,
				"error":   err.Error(),
			})
		}
		return &Response{}
	}

	if !success && len(r.Actions) > 0 {
		logger.WarnCF("webhook", "Webhook returned non-success status but included actions", map[string]interface{}{
			"handler": handler,
			"status":  status,
			"actions": len(r.Actions),
		})
	}

	if len(r.Actions) > s.maxActions {
		logger.WarnCF("webhook", "Action count over limit, dropping tail", map[string]interface{}{
			"handler": handler,
			"limit":   s.maxActions,
			"dropped": len(r.Actions) - s.maxActions,
		})
		r.Actions = r.Actions[:s.maxActions]
	}

	return &r
}
