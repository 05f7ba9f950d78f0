package protocol

import (
	"context"
	"fmt"

	"github.com/jalleo/nodion/pkg/models"
)

// ConditionFunc evaluates a condition node's predicate.
type ConditionFunc func(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) (bool, error)

// ActionFunc performs an action node's side effect and returns its result.
type ActionFunc func(ctx context.Context, ectx *models.ExecutionContext, inputs map[string]any) (any, error)

// RunCondition is the default condition-category behavior: it evaluates the
// predicate and emits exactly one of the true/false ports. An evaluation
// error (or panic) yields Success=false, which fails the execution; a false
// outcome is a normal result, not a failure.
func RunCondition(ctx context.Context, nodeID string, ectx *models.ExecutionContext, inputs map[string]any, eval ConditionFunc) (result models.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.ExecutionResult{
				Success: false,
				Error:   fmt.Sprintf("condition node %s panicked: %v", nodeID, r),
			}
		}
	}()

	ok, err := eval(ctx, ectx, inputs)
	if err != nil {
		return models.ExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("condition evaluation failed: %v", err),
		}
	}

	port := OutputPortFalse
	if ok {
		port = OutputPortTrue
	}

	return models.ExecutionResult{
		Success: true,
		Outputs: map[string]any{port: true},
	}
}

// RunAction is the default action-category behavior: a perform error (or
// panic) is absorbed into the error/error_message outputs with Success kept
// true, so one failed side effect routes through the error port instead of
// failing the execution.
func RunAction(ctx context.Context, nodeID string, ectx *models.ExecutionContext, inputs map[string]any, perform ActionFunc) (result models.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = actionFailure(fmt.Sprintf("action node %s panicked: %v", nodeID, r))
		}
	}()

	value, err := perform(ctx, ectx, inputs)
	if err != nil {
		return actionFailure(err.Error())
	}

	return models.ExecutionResult{
		Success: true,
		Outputs: map[string]any{
			OutputPortSuccess: true,
			OutputPortResult:  value,
		},
	}
}

func actionFailure(msg string) models.ExecutionResult {
	return models.ExecutionResult{
		Success: true,
		Outputs: map[string]any{
			OutputPortError:        true,
			OutputPortErrorMessage: msg,
		},
	}
}

// Succeed builds a successful result with the given outputs. Utility nodes
// use it directly.
func Succeed(outputs map[string]any) models.ExecutionResult {
	return models.ExecutionResult{Success: true, Outputs: outputs}
}

// Failf builds a failing result. A failing node fails its execution; action
// nodes should rely on RunAction instead.
func Failf(format string, args ...any) models.ExecutionResult {
	return models.ExecutionResult{Success: false, Error: fmt.Sprintf(format, args...)}
}
