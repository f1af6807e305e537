/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package host declares the collaborators the core consumes from its
// transactional host: a script evaluator for the factory's
// execute_script_selector, and an event sink for the three emitted events
// named in spec §6.2 (FactorySet, NewCaseCreated, MessageSent).
package host

import (
	"bpmn-token-engine/src/core/models"
	"bpmn-token-engine/src/core/types"
)

// ScriptEvaluator materialises data contracts and evaluates scripted
// conditions on the host's behalf. The executor calls it for sub-process
// instantiation (new_instance) and for script-task/split-gateway firing
// (execute_script).
type ScriptEvaluator interface {
	// NewInstance materialises a fresh data contract for flowID, returning
	// an opaque contract/instance handle (spec §4.4).
	NewInstance(flowID models.FlowID, factory models.Factory) (models.InstanceHandle, error)

	// ExecuteScript runs the factory's execute_script_selector against the
	// named element and returns the resulting u128 (script task output or
	// split-gateway chosen branch, spec §4.2).
	ExecuteScript(flowID models.FlowID, elementIndex models.ElementIndex, selector string) (types.U128, error)
}

// EventSink is where the core publishes the three events spec §6.2 names.
type EventSink interface {
	FactorySet(flowID models.FlowID, dataHash string)
	NewCaseCreated(contractID string)
	MessageSent(eventCode models.EventCode)
}
