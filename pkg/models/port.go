package models

// PortKind describes what flows through a port.
type PortKind string

const (
	PortKindExecution PortKind = "execution" // Control flow; value is a truthy marker
	PortKindData      PortKind = "data"      // Arbitrary value passed downstream
	PortKindCondition PortKind = "condition" // Boolean routing pair (true/false)
)

// Port is a named connection point a node type declares. Port IDs are
// unique per node per direction; connections reference them together with
// the owning node ID.
type Port struct {
	ID          string   `json:"id" validate:"required"`
	Kind        PortKind `json:"kind"`
	ValueType   string   `json:"value_type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required,omitempty"` // Inputs only
}
