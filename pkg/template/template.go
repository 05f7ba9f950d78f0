// Package template renders Go templates against a workflow execution's
// state for dynamic node configuration.
package template

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/jalleo/nodion/pkg/models"
)

// RenderWithContext renders input against the execution's data bag:
// variables, trigger payload, namespaced node inputs, and environment.
func RenderWithContext(input string, ectx *models.ExecutionContext, inputs map[string]any) (any, error) {
	data := map[string]any{
		"variables": ectx.Variables,
		"vars":      ectx.Variables,
		"payload":   ectx.Payload,
		"inputs":    inputs,
		"env":       envVars(),
		"execution": map[string]any{
			"id":              ectx.ExecutionID,
			"workflow_id":     ectx.WorkflowID,
			"trigger_node_id": ectx.TriggerNodeID,
			"trigger_type":    ectx.TriggerType,
		},
	}

	return Render(input, data)
}

// Render executes the template and coerces the output: JSON-looking text is
// re-parsed, then numbers and booleans, falling back to the raw string.
func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("render").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}

				num := make([]byte, 1)
				if _, err := rand.Read(num); err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any
		if err := json.Unmarshal([]byte(result), &jsonResult); err != nil {
			return nil, fmt.Errorf("failed to parse json '%s': %w", result, err)
		}

		return jsonResult, nil
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}

// Check reports whether the template parses, without executing it.
func Check(templateStr string) error {
	if _, err := template.New("check").Funcs(template.FuncMap{
		"now":  func() string { return "" },
		"rand": func(int) int { return 0 },
	}).Parse(templateStr); err != nil {
		return fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	return nil
}

func envVars() map[string]any {
	envMap := make(map[string]any)

	for _, env := range os.Environ() {
		if k, v, ok := strings.Cut(env, "="); ok {
			envMap[k] = v
		}
	}

	return envMap
}
