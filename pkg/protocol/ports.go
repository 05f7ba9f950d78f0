package protocol

import "github.com/jalleo/nodion/pkg/models"

// Port IDs written by the category runners. Node types that keep the
// default wrapper behavior declare these through the helper port sets.
const (
	InputPortIn = "in"

	OutputPortTrue  = "true"
	OutputPortFalse = "false"

	OutputPortSuccess      = "success"
	OutputPortError        = "error"
	OutputPortResult       = "result"
	OutputPortErrorMessage = "error_message"

	OutputPortFired   = "fired"
	OutputPortPayload = "payload"

	OutputPortDone = "done"
)

// ExecInputPorts is the single execution input most non-trigger nodes use.
func ExecInputPorts() []models.Port {
	return []models.Port{
		{ID: InputPortIn, Kind: models.PortKindExecution, Description: "Execution input"},
	}
}

// ConditionOutputPorts is the true/false pair RunCondition writes.
func ConditionOutputPorts() []models.Port {
	return []models.Port{
		{ID: OutputPortTrue, Kind: models.PortKindCondition, Description: "Fires when the condition holds"},
		{ID: OutputPortFalse, Kind: models.PortKindCondition, Description: "Fires when the condition does not hold"},
	}
}

// ActionOutputPorts is the port set RunAction writes: an execution pair for
// routing plus data ports carrying the result or the absorbed error.
func ActionOutputPorts() []models.Port {
	return []models.Port{
		{ID: OutputPortSuccess, Kind: models.PortKindExecution, Description: "Fires when the action succeeded"},
		{ID: OutputPortError, Kind: models.PortKindExecution, Description: "Fires when the action failed"},
		{ID: OutputPortResult, Kind: models.PortKindData, Description: "Action result value"},
		{ID: OutputPortErrorMessage, Kind: models.PortKindData, ValueType: "string", Description: "Failure message when the action failed"},
	}
}

// TriggerOutputPorts is the port set trigger nodes emit when an execution
// starts from them.
func TriggerOutputPorts() []models.Port {
	return []models.Port{
		{ID: OutputPortFired, Kind: models.PortKindExecution, Description: "Fires once per trigger event"},
		{ID: OutputPortPayload, Kind: models.PortKindData, Description: "Trigger event payload"},
	}
}

// TriggerOutputs is what a trigger node emits when a traversal enters it:
// the fired marker plus the payload its listener captured.
func TriggerOutputs(ectx *models.ExecutionContext) map[string]any {
	return map[string]any{
		OutputPortFired:   true,
		OutputPortPayload: ectx.Payload,
	}
}
