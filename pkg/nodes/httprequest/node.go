// Package httprequest provides the HTTP request action node.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
	"github.com/jalleo/nodion/pkg/template"
)

// Config defines the configuration for HTTP request nodes.
type Config struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body,omitempty"`
	Timeout int               `json:"timeout"`
	Retries RetryConfig       `json:"retries"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	Attempts int `json:"attempts"`
	Delay    int `json:"delay"`
}

// Node implements the HTTP request action.
type Node struct {
	id     string
	config Config
	client *http.Client
}

// NewNode creates an HTTP request node.
func NewNode(id string, data map[string]any) (*Node, error) {
	config := Config{
		Method:  http.MethodGet,
		Headers: make(map[string]string),
		Timeout: 30,
		Retries: RetryConfig{Attempts: 1, Delay: 0},
	}

	url, ok := data["url"].(string)
	if !ok || url == "" {
		return nil, errors.New("missing required field 'url'")
	}

	config.URL = url

	if method, ok := data["method"].(string); ok {
		method = strings.ToUpper(method)
		if !validMethods[method] {
			return nil, fmt.Errorf("invalid HTTP method: %s", method)
		}

		config.Method = method
	}

	if headers, ok := data["headers"].(map[string]any); ok {
		for k, v := range headers {
			if strVal, ok := v.(string); ok {
				config.Headers[k] = strVal
			}
		}
	}

	if body, ok := data["body"].(string); ok {
		config.Body = body
	}

	if timeout, ok := data["timeout"].(float64); ok {
		if timeout < 1 || timeout > 300 {
			return nil, errors.New("timeout must be between 1 and 300 seconds")
		}

		config.Timeout = int(timeout)
	}

	if retries, ok := data["retries"].(map[string]any); ok {
		if err := parseRetries(retries, &config.Retries); err != nil {
			return nil, err
		}
	}

	return &Node{
		id:     id,
		config: config,
		client: &http.Client{Timeout: time.Duration(config.Timeout) * time.Second},
	}, nil
}

var validMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true,
	http.MethodDelete: true, http.MethodPatch: true, http.MethodHead: true,
	http.MethodOptions: true,
}

func parseRetries(retries map[string]any, out *RetryConfig) error {
	if attempts, ok := retries["attempts"].(float64); ok {
		if attempts < 1 || attempts > 10 {
			return errors.New("retry attempts must be between 1 and 10")
		}

		out.Attempts = int(attempts)
	}

	if delay, ok := retries["delay"].(float64); ok {
		if delay < 0 || delay > 30000 {
			return errors.New("retry delay must be between 0 and 30000 milliseconds")
		}

		out.Delay = int(delay)
	}

	return nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return models.NodeTypeHTTPRequest
}

// Category returns the node category.
func (n *Node) Category() models.Category {
	return models.CategoryAction
}

// InputPorts returns the input ports for the node.
func (n *Node) InputPorts() []models.Port {
	return protocol.ExecInputPorts()
}

// OutputPorts returns the output ports for the node.
func (n *Node) OutputPorts() []models.Port {
	return protocol.ActionOutputPorts()
}

// DefaultData returns the configuration defaults.
func (n *Node) DefaultData() map[string]any {
	return map[string]any{
		"method":  http.MethodGet,
		"headers": map[string]any{},
		"timeout": 30.0,
		"retries": map[string]any{"attempts": 1.0, "delay": 0.0},
	}
}

// Execute performs the HTTP request. Request failures route through the
// error port instead of failing the execution.
func (n *Node) Execute(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) models.ExecutionResult {
	return protocol.RunAction(ctx, n.id, ectx, inputs, n.request)
}

func (n *Node) request(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) (any, error) {
	renderedURL, err := template.RenderWithContext(n.config.URL, ectx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to render URL template: %w", err)
	}

	urlStr, ok := renderedURL.(string)
	if !ok {
		return nil, fmt.Errorf("URL template must render to a string, got %T", renderedURL)
	}

	body, err := n.renderBody(ectx, inputs)
	if err != nil {
		return nil, err
	}

	headers := n.renderHeaders(ectx, inputs)

	var lastErr error

	for attempt := 1; attempt <= n.config.Retries.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(n.config.Retries.Delay) * time.Millisecond):
			}
		}

		result, err := n.perform(ctx, urlStr, body, headers)
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Client errors will not improve on retry; server and network
		// errors might.
		httpErr := &HTTPError{}
		if errors.As(err, &httpErr) && httpErr.StatusCode < 500 {
			break
		}
	}

	return nil, fmt.Errorf("HTTP request failed after %d attempts: %w", n.config.Retries.Attempts, lastErr)
}

func (n *Node) renderBody(ectx *models.ExecutionContext, inputs map[string]any) (string, error) {
	if n.config.Body == "" {
		return "", nil
	}

	rendered, err := template.RenderWithContext(n.config.Body, ectx, inputs)
	if err != nil {
		return "", fmt.Errorf("failed to render body template: %w", err)
	}

	if s, ok := rendered.(string); ok {
		return s, nil
	}

	// Structured render results go back on the wire as JSON.
	encoded, err := json.Marshal(rendered)
	if err != nil {
		return "", fmt.Errorf("failed to encode rendered body: %w", err)
	}

	return string(encoded), nil
}

func (n *Node) renderHeaders(ectx *models.ExecutionContext, inputs map[string]any) map[string]string {
	rendered := make(map[string]string, len(n.config.Headers))

	for key, value := range n.config.Headers {
		renderedValue, err := template.RenderWithContext(value, ectx, inputs)
		if err != nil {
			rendered[key] = value

			continue
		}

		if strVal, ok := renderedValue.(string); ok {
			rendered[key] = strVal
		} else {
			rendered[key] = value
		}
	}

	return rendered
}

// HTTPError represents an HTTP error response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (n *Node) perform(ctx context.Context, url, body string, headers map[string]string) (map[string]any, error) {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, n.config.Method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	respHeaders := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		respHeaders[key] = strings.Join(values, ", ")
	}

	result := map[string]any{
		"status_code": resp.StatusCode,
		"headers":     respHeaders,
		"body":        string(respBody),
	}

	var jsonBody any
	if err := json.Unmarshal(respBody, &jsonBody); err == nil {
		result["json"] = jsonBody
	}

	return result, nil
}

// Validate checks the node configuration templates.
func (n *Node) Validate() *models.ValidationReport {
	report := models.NewValidationReport()

	if err := template.Check(n.config.URL); err != nil {
		report.AddError(fmt.Sprintf("url: %v", err))
	}

	if n.config.Body != "" {
		if err := template.Check(n.config.Body); err != nil {
			report.AddError(fmt.Sprintf("body: %v", err))
		}
	}

	for key, value := range n.config.Headers {
		if err := template.Check(value); err != nil {
			report.AddError(fmt.Sprintf("header %s: %v", key, err))
		}
	}

	return report
}
