package protocol

import "context"

// FireFunc is invoked by a listening trigger node each time its external
// event occurs. The payload becomes the execution's trigger payload. The
// returned error is the trigger's to log; it must not stop the listener.
type FireFunc func(ctx context.Context, payload map[string]any) error

// TriggerNode is a Node that can arm an external listener. StartListening
// must not block beyond setup; the listener runs on its own goroutine and
// calls fire once per event. StopListening cancels the listener
// deterministically: after it returns, fire is never called again.
type TriggerNode interface {
	Node

	StartListening(ctx context.Context, fire FireFunc) error
	StopListening(ctx context.Context) error
}
