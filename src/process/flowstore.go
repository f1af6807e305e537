/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package process implements the Flow Model Store and Execution Engine
// described in spec §4: FlowStore for model-loading time mutators, Executor
// for the BFS token-firing loop, and EventRouter for event propagation.
package process

import (
	"bpmn-token-engine/src/core/logger"
	"bpmn-token-engine/src/core/models"
	"bpmn-token-engine/src/core/types"
	"bpmn-token-engine/src/host"
	"bpmn-token-engine/src/storage"
)

// FlowStore implements the three model-loading-time command-surface entry
// points (spec §6.2 commands 1-3). FlowDefinition mutation must not
// interleave with execution of any instance of that flow (spec §5); callers
// are expected to serialize per-flow access the same way Engine stripes
// per-instance locks.
type FlowStore struct {
	registry storage.Registry
	sink     host.EventSink
}

// NewFlowStore creates a FlowStore over the given registry and event sink.
func NewFlowStore(registry storage.Registry, sink host.EventSink) *FlowStore {
	return &FlowStore{registry: registry, sink: sink}
}

// loadOrCreate fetches a flow definition, creating an empty one on first
// use (spec §3.3: "FlowDefinition created empty by first set_element
// against a fresh FlowId").
func (fs *FlowStore) loadOrCreate(flowID models.FlowID) (*models.FlowDefinition, error) {
	flow, err := fs.registry.LoadFlow(flowID)
	if err == storage.ErrNotFound {
		return models.NewFlowDefinition(flowID), nil
	}
	if err != nil {
		return nil, err
	}
	return flow, nil
}

// SetElement implements spec §6.2 command 1.
func (fs *FlowStore) SetElement(
	flowID models.FlowID,
	elementIndex models.ElementIndex,
	pre, post, typeInfo types.U128,
	eventCode models.EventCode,
	nextElem []models.ElementIndex,
) error {
	flow, err := fs.loadOrCreate(flowID)
	if err != nil {
		return err
	}

	if err := flow.SetElement(elementIndex, pre, post, typeInfo, eventCode, nextElem); err != nil {
		return err
	}

	if err := fs.registry.SaveFlow(flow); err != nil {
		return err
	}

	logger.Debug("set_element",
		logger.String("flow_id", flowID),
		logger.Int64("element_index", int64(elementIndex)))
	return nil
}

// LinkSubProcess implements spec §6.2 command 2.
func (fs *FlowStore) LinkSubProcess(
	flowID models.FlowID,
	parentIndex models.ElementIndex,
	childFlowID models.FlowID,
	attachedEvents []models.ElementIndex,
	countInstances types.U128,
) error {
	flow, err := fs.loadOrCreate(flowID)
	if err != nil {
		return err
	}

	if err := flow.LinkSubProcess(parentIndex, childFlowID, attachedEvents, countInstances); err != nil {
		return err
	}

	if err := fs.registry.SaveFlow(flow); err != nil {
		return err
	}

	logger.Debug("link_sub_process",
		logger.String("flow_id", flowID),
		logger.Int64("parent_index", int64(parentIndex)),
		logger.String("child_flow_id", childFlowID))
	return nil
}

// SetFactoryInstance implements spec §6.2 command 3, emitting FactorySet.
func (fs *FlowStore) SetFactoryInstance(
	flowID models.FlowID,
	dataHash, instantiateSelector, executeScriptSelector string,
) error {
	flow, err := fs.loadOrCreate(flowID)
	if err != nil {
		return err
	}

	flow.SetFactoryInstance(dataHash, instantiateSelector, executeScriptSelector)

	if err := fs.registry.SaveFlow(flow); err != nil {
		return err
	}

	fs.sink.FactorySet(flowID, dataHash)
	return nil
}

// GetFlow exposes a read-only lookup for callers outside FlowStore (the
// Executor and EventRouter read flows directly through the registry, but
// the REST surface uses this for inspection endpoints).
func (fs *FlowStore) GetFlow(flowID models.FlowID) (*models.FlowDefinition, error) {
	return fs.registry.LoadFlow(flowID)
}
