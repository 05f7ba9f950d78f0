package registry

import (
	"log/slog"

	"github.com/jalleo/nodion/pkg/nodes/delay"
	"github.com/jalleo/nodion/pkg/nodes/expression"
	"github.com/jalleo/nodion/pkg/nodes/httprequest"
	"github.com/jalleo/nodion/pkg/nodes/kafka"
	"github.com/jalleo/nodion/pkg/nodes/log"
	"github.com/jalleo/nodion/pkg/nodes/loop"
	"github.com/jalleo/nodion/pkg/nodes/position"
	"github.com/jalleo/nodion/pkg/nodes/pricemultiple"
	"github.com/jalleo/nodion/pkg/nodes/queue"
	"github.com/jalleo/nodion/pkg/nodes/schedule"
	"github.com/jalleo/nodion/pkg/nodes/sellposition"
	"github.com/jalleo/nodion/pkg/nodes/transform"
	"github.com/jalleo/nodion/pkg/trading"
)

// Deps carries the collaborators the built-in node types are bound to.
type Deps struct {
	Logger *slog.Logger
	Feed   trading.PositionFeed
	Trader trading.Trader
}

// RegisterDefaultNodes registers all built-in node factories with the
// registry.
func (r *Registry) RegisterDefaultNodes(deps Deps) {
	// Triggers
	r.Register(position.NewFactory(deps.Feed, deps.Logger))
	r.Register(schedule.NewFactory(deps.Logger))
	r.Register(queue.NewFactory(deps.Logger))
	r.Register(kafka.NewFactory(deps.Logger))

	// Conditions
	r.Register(pricemultiple.NewFactory())
	r.Register(expression.NewFactory())

	// Actions
	r.Register(sellposition.NewFactory(deps.Trader))
	r.Register(httprequest.NewFactory())

	// Utilities
	r.Register(log.NewFactory(deps.Logger))
	r.Register(delay.NewFactory())
	r.Register(loop.NewFactory())
	r.Register(transform.NewFactory())
}
