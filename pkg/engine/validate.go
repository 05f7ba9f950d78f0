package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jalleo/nodion/pkg/models"
	"github.com/jalleo/nodion/pkg/protocol"
)

var structValidator = validator.New()

// ValidateGraph checks a workflow definition against the registry: model
// constraints, unique IDs, node construction, declared ports, node data
// schemas, and cycle legality. It never runs on the execution path;
// callers decide when a workflow is worth checking.
func (e *Engine) ValidateGraph(ctx context.Context, wf *models.Workflow) *models.ValidationReport {
	report := models.NewValidationReport()

	if wf == nil {
		report.AddError("workflow is nil")

		return report
	}

	if err := structValidator.Struct(wf); err != nil {
		report.AddError(fmt.Sprintf("workflow model: %v", err))
	}

	nodes := make(map[string]*models.Node, len(wf.Nodes))
	instances := make(map[string]protocol.Node, len(wf.Nodes))

	for _, def := range wf.Nodes {
		if _, dup := nodes[def.ID]; dup {
			report.AddError(fmt.Sprintf("duplicate node id %q", def.ID))

			continue
		}

		nodes[def.ID] = def

		if instance := e.validateNode(ctx, report, def); instance != nil {
			instances[def.ID] = instance
		}
	}

	if len(wf.TriggerNodes()) == 0 {
		report.AddWarning("workflow has no enabled trigger nodes; it can only run manually")
	}

	for i, conn := range wf.Connections {
		validateConnection(report, nodes, instances, i, conn)
	}

	validateCycles(report, wf, nodes)

	return report
}

// validateNode checks one node definition and, when it constructs, returns
// the instance so connection checks can see its declared ports.
func (e *Engine) validateNode(ctx context.Context, report *models.ValidationReport, def *models.Node) protocol.Node {
	catalogDef, known := e.registry.Definition(def.Type)
	if !known {
		report.AddError(fmt.Sprintf("node %q references unknown type %q", def.ID, def.Type))

		return nil
	}

	if catalogDef.Category != def.Category {
		report.AddError(fmt.Sprintf("node %q declares category %q but type %q is %q",
			def.ID, def.Category, def.Type, catalogDef.Category))
	}

	if len(def.Data) > 0 && len(catalogDef.Schema) > 0 {
		if err := validateAgainstSchema(def.Data, catalogDef.Schema); err != nil {
			report.AddError(fmt.Sprintf("node %q data: %v", def.ID, err))
		}
	}

	instance, err := e.registry.Create(ctx, def.Type, def.ID, def.Data)
	if err != nil {
		report.AddError(fmt.Sprintf("node %q: %v", def.ID, err))

		return nil
	}

	if nodeReport := instance.Validate(); nodeReport != nil {
		for _, msg := range nodeReport.Errors {
			report.AddError(fmt.Sprintf("node %q: %s", def.ID, msg))
		}

		for _, msg := range nodeReport.Warnings {
			report.AddWarning(fmt.Sprintf("node %q: %s", def.ID, msg))
		}
	}

	return instance
}

func validateConnection(report *models.ValidationReport, nodes map[string]*models.Node, instances map[string]protocol.Node, index int, conn *models.Connection) {
	name := conn.ID
	if name == "" {
		name = fmt.Sprintf("#%d", index)
	}

	source, ok := nodes[conn.SourceNodeID]
	if !ok {
		report.AddError(fmt.Sprintf("connection %s references unknown source node %q", name, conn.SourceNodeID))

		return
	}

	target, ok := nodes[conn.TargetNodeID]
	if !ok {
		report.AddError(fmt.Sprintf("connection %s references unknown target node %q", name, conn.TargetNodeID))

		return
	}

	if target.IsTrigger() {
		report.AddWarning(fmt.Sprintf("connection %s targets trigger node %q; triggers re-emit their payload when re-entered", name, target.ID))
	}

	if instance, ok := instances[conn.SourceNodeID]; ok {
		if !hasPort(instance.OutputPorts(), conn.SourcePort) {
			report.AddError(fmt.Sprintf("connection %s uses output port %q which type %q does not declare",
				name, conn.SourcePort, source.Type))
		}
	}

	if instance, ok := instances[conn.TargetNodeID]; ok {
		if !hasPort(instance.InputPorts(), conn.TargetPort) {
			report.AddWarning(fmt.Sprintf("connection %s binds input port %q which type %q does not declare",
				name, conn.TargetPort, target.Type))
		}
	}
}

// validateCycles walks the connection graph and rejects any cycle that does
// not pass through a loop node. Loop nodes bound their visits through the
// execution context, so cycles through them terminate; any other cycle
// would recurse until the stack gives out.
func validateCycles(report *models.ValidationReport, wf *models.Workflow, nodes map[string]*models.Node) {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	state := make(map[string]int, len(nodes))
	stack := make([]string, 0, len(nodes))

	var walk func(id string)
	walk = func(id string) {
		state[id] = inStack
		stack = append(stack, id)

		for _, conn := range wf.ConnectionsFrom(id) {
			next := conn.TargetNodeID
			if _, ok := nodes[next]; !ok {
				continue // dangling targets reported elsewhere
			}

			switch state[next] {
			case unvisited:
				walk(next)
			case inStack:
				cycle := extractCycle(stack, next)
				if !cycleHasLoopNode(cycle, nodes) {
					report.AddError(fmt.Sprintf("cycle without a loop node: %s", strings.Join(cycle, " -> ")))
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
	}

	for _, def := range wf.Nodes {
		if state[def.ID] == unvisited {
			walk(def.ID)
		}
	}
}

func extractCycle(stack []string, from string) []string {
	for i, id := range stack {
		if id == from {
			cycle := make([]string, len(stack)-i)
			copy(cycle, stack[i:])

			return cycle
		}
	}

	return nil
}

func cycleHasLoopNode(cycle []string, nodes map[string]*models.Node) bool {
	for _, id := range cycle {
		if def, ok := nodes[id]; ok && def.Type == models.NodeTypeLoop {
			return true
		}
	}

	return false
}

func hasPort(ports []models.Port, id string) bool {
	for _, p := range ports {
		if p.ID == id {
			return true
		}
	}

	return false
}

func validateAgainstSchema(data, schema map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			msgs = append(msgs, resultError.String())
		}

		return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
	}

	return nil
}
