package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalleo/nodion/pkg/models"
)

func TestRenderCoercesTypes(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     any
		want     any
	}{
		{name: "plain string", template: "hello", want: "hello"},
		{name: "number", template: "42.5", want: 42.5},
		{name: "boolean", template: "true", want: true},
		{
			name:     "json object reparsed",
			template: `{"symbol": "{{ .symbol }}"}`,
			data:     map[string]any{"symbol": "ETH-USD"},
			want:     map[string]any{"symbol": "ETH-USD"},
		},
		{
			name:     "json array reparsed",
			template: `[1, 2, 3]`,
			want:     []any{1.0, 2.0, 3.0},
		},
		{
			name:     "field access",
			template: "{{ .price }}",
			data:     map[string]any{"price": 220.0},
			want:     220.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.template, tt.data)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderParseError(t *testing.T) {
	_, err := Render("{{ .broken", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestRenderInvalidJSONOutput(t *testing.T) {
	_, err := Render(`{not json}`, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse json")
}

func TestRenderWithContextExposesExecutionState(t *testing.T) {
	wf := &models.Workflow{
		ID:        "wf-1",
		Name:      "price watch",
		Nodes:     []*models.Node{{ID: "trigger-1", Type: models.NodeTypePositionTrigger, Category: models.CategoryTrigger, Name: "t", Enabled: true}},
		Variables: map[string]any{"threshold": 2.0},
	}
	ectx := models.NewExecutionContext("exec-1", wf, wf.Nodes[0], map[string]any{"symbol": "ETH-USD"})

	tests := []struct {
		name     string
		template string
		want     any
	}{
		{name: "variables", template: "{{ .variables.threshold }}", want: 2.0},
		{name: "vars alias", template: "{{ .vars.threshold }}", want: 2.0},
		{name: "payload", template: "{{ .payload.symbol }}", want: "ETH-USD"},
		{name: "execution metadata", template: "{{ .execution.workflow_id }}", want: "wf-1"},
		{name: "trigger provenance", template: "{{ .execution.trigger_node_id }}", want: "trigger-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderWithContext(tt.template, ectx, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderWithContextExposesInputs(t *testing.T) {
	wf := &models.Workflow{
		ID:    "wf-1",
		Name:  "price watch",
		Nodes: []*models.Node{{ID: "trigger-1", Type: models.NodeTypePositionTrigger, Category: models.CategoryTrigger, Name: "t", Enabled: true}},
	}
	ectx := models.NewExecutionContext("exec-1", wf, wf.Nodes[0], nil)
	inputs := map[string]any{"in": true, "cond-1.false": true}

	got, err := RenderWithContext("{{ .inputs.in }}", ectx, inputs)

	require.NoError(t, err)
	assert.Equal(t, true, got)
}
