package httprequest

import (
	"context"
	"net/http"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

// Factory creates HTTP request nodes.
type Factory struct{}

// NewFactory creates a new HTTP request node factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

// Create builds an HTTP request node from configuration data.
func (f *Factory) Create(_ context.Context, id string, data map[string]any) (protocol.Node, error) {
	return NewNode(id, data)
}

// ID returns the node type handled by this factory.
func (f *Factory) ID() string {
	return models.NodeTypeHTTPRequest
}

// Category returns the node category.
func (f *Factory) Category() models.Category {
	return models.CategoryAction
}

// Name returns a human readable name.
func (f *Factory) Name() string {
	return "HTTP Request"
}

// Description explains what the node does.
func (f *Factory) Description() string {
	return "Performs an HTTP request with retry support, routing the response or failure through the action ports"
}

// Schema returns the JSON schema for the node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "HTTP Request Configuration",
		"description": "Configuration for performing an HTTP request",
		"type":        "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "URL to request; supports templates",
				"examples": []string{
					"https://api.example.com/orders",
					"https://{{.variables.api_host}}/positions/{{.payload.symbol}}",
				},
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method",
				"default":     http.MethodGet,
				"enum": []string{
					http.MethodGet, http.MethodPost, http.MethodPut,
					http.MethodDelete, http.MethodPatch, http.MethodHead,
					http.MethodOptions,
				},
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "HTTP headers; values support templates",
				"examples": []map[string]any{
					{"Authorization": "Bearer {{.env.API_TOKEN}}"},
					{"Content-Type": "application/json"},
				},
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Request body; supports templates",
				"examples": []string{
					`{"symbol": "{{.payload.symbol}}", "price": {{.payload.current_price}}}`,
				},
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds",
				"default":     30,
				"minimum":     1,
				"maximum":     300,
			},
			"retries": map[string]any{
				"type":        "object",
				"description": "Retry configuration for failed requests",
				"properties": map[string]any{
					"attempts": map[string]any{
						"type":        "number",
						"description": "Total attempts, including the initial request",
						"default":     1,
						"minimum":     1,
						"maximum":     10,
					},
					"delay": map[string]any{
						"type":        "number",
						"description": "Delay between attempts in milliseconds",
						"default":     0,
						"minimum":     0,
						"maximum":     30000,
					},
				},
			},
		},
		"required": []string{"url"},
	}
}
