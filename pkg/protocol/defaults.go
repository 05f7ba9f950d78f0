package protocol

import "dario.cat/mergo"

// MergeDefaults layers instance data over the node type's defaults: every
// key the instance sets wins, everything else falls back to the default.
// Nested maps merge key-wise.
func MergeDefaults(data, defaults map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(defaults)+len(data))

	if err := mergo.Merge(&merged, defaults); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&merged, data, mergo.WithOverride); err != nil {
		return nil, err
	}

	return merged, nil
}
