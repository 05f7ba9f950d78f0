package models

// Category groups node types by their behavioral contract.
type Category string

const (
	CategoryTrigger   Category = "trigger"   // Entry points that listen for external events
	CategoryCondition Category = "condition" // Boolean routing (true/false output pair)
	CategoryAction    Category = "action"    // Side effects (trade, http, ...)
	CategoryUtility   Category = "utility"   // Plumbing (log, delay, loop, transform)
)

// Built-in node types.
const (
	NodeTypeScheduleTrigger = "trigger:schedule"
	NodeTypeQueueTrigger    = "trigger:queue"
	NodeTypeKafkaTrigger    = "trigger:kafka"
	NodeTypePositionTrigger = "trigger:position"

	NodeTypePriceMultiple = "condition:price-multiple"
	NodeTypeExpression    = "condition:expression"

	NodeTypeSellPosition = "action:sell-position"
	NodeTypeHTTPRequest  = "action:http-request"

	NodeTypeLog       = "utility:log"
	NodeTypeDelay     = "utility:delay"
	NodeTypeLoop      = "utility:loop"
	NodeTypeTransform = "utility:transform"
)

// Node is a node instance in a workflow graph: a type reference plus the
// opaque configuration the node implementation receives at construction.
type Node struct {
	ID        string         `json:"id"       validate:"required"`
	Type      string         `json:"type"     validate:"required"`
	Category  Category       `json:"category" validate:"required,oneof=trigger condition action utility"`
	Name      string         `json:"name"     validate:"required,min=1"`
	Data      map[string]any `json:"data,omitempty"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
	Enabled   bool           `json:"enabled"`
}

func (n *Node) IsTrigger() bool {
	return n.Category == CategoryTrigger
}
